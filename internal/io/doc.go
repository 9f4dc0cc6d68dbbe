// Package ioutils provides file system and image processing utilities.
//
// # File Operations
//
//	// Ensure the download directory exists
//	err := ioutils.EnsureDir("./downloads")
//
//	// Write a playlist next to the merged output
//	err := ioutils.WriteFile("./audiobooks/Book.m3u", []byte("#EXTM3U\n"))
//
//	// Remove transient track files once they are merged
//	err := ioutils.RemoveFiles(book.TrackPaths())
//
// # Image Processing
//
// The ImageService prepares cover art for embedding:
//
//	svc := ioutils.NewImageService()
//	cover, err := svc.PrepareCover(ctx, imageData, 1000)
package ioutils
