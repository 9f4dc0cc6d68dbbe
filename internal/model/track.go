package model

import (
	"fmt"
	"path/filepath"
)

// Track is one sequentially numbered remote audio file of an Audiobook.
type Track struct {
	// Audiobook is a reference to the parent audiobook.
	Audiobook *Audiobook

	// Number is the 1-based track index.
	Number int

	// URL is the confirmed remote location.
	URL string

	// Path is the local transient file, "audio_<NN>.<ext>" inside the
	// audiobook's download directory.
	Path string
}

// NewTrack creates a Track with its local path computed.
func NewTrack(book *Audiobook, number int, url string) *Track {
	return &Track{
		Audiobook: book,
		Number:    number,
		URL:       url,
		Path:      filepath.Join(book.DownloadDir, TrackFileName(number, book.TrackExtension)),
	}
}

// Label returns the zero-padded track number used in messages.
func (t *Track) Label() string {
	return TrackNumber(t.Number)
}

// TrackNumber formats n as at least two zero-padded digits.
func TrackNumber(n int) string {
	return fmt.Sprintf("%02d", n)
}

// TrackFileName returns the transient file name for track n.
func TrackFileName(n int, ext string) string {
	return fmt.Sprintf("audio_%s.%s", TrackNumber(n), ext)
}
