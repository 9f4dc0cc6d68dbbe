package ioutils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile writes data to path, creating or truncating it with mode 0644.
func WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755. An existing directory is not an error.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// RemoveFiles deletes every file in paths.
//
// Files that are already gone are skipped. All other failures are collected,
// so one undeletable file does not keep the rest on disk.
//
//	if err := RemoveFiles(book.TrackPaths()); err != nil {
//	    return fmt.Errorf("cleanup: %w", err)
//	}
func RemoveFiles(paths []string) error {
	var errs []error
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s: %w", filepath.Base(path), err))
		}
	}
	return errors.Join(errs...)
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
