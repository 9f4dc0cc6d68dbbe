package audio

import (
	"fmt"
	"strings"

	"github.com/handiism/audiobook-downloader/internal/model"
)

// PlaylistCreator generates a playlist of an audiobook's remote tracks.
//
// The playlist references the confirmed track URLs, so it stays usable for
// streaming after the transient local copies have been removed.
//
//	creator := NewPlaylistCreator(model.PlaylistFormatM3U, true)
//	content := creator.CreatePlaylist(book)
//
//	// #EXTM3U
//	// #EXTINF:-1,Book - 01
//	// https://host/x/Book/01.mp3?_=1
type PlaylistCreator struct {
	format   model.PlaylistFormat
	extended bool // M3U only: include #EXTINF lines
}

// NewPlaylistCreator creates a new PlaylistCreator.
func NewPlaylistCreator(format model.PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// CreatePlaylist returns the playlist content for book.
func (p *PlaylistCreator) CreatePlaylist(book *model.Audiobook) string {
	switch p.format {
	case model.PlaylistFormatPLS:
		return p.createPLS(book)
	default:
		return p.createM3U(book)
	}
}

// createM3U generates an M3U playlist. Durations are unknown before
// download, so extended entries use -1.
func (p *PlaylistCreator) createM3U(book *model.Audiobook) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
		sb.WriteString(fmt.Sprintf("#PLAYLIST:%s\n", book.Name))
	}

	for _, track := range book.Tracks {
		if p.extended {
			sb.WriteString(fmt.Sprintf("#EXTINF:-1,%s - %s\n", book.Name, track.Label()))
		}
		sb.WriteString(track.URL + "\n")
	}

	return sb.String()
}

// createPLS generates a PLS playlist.
//
//	[playlist]
//	File1=https://host/x/Book/01.mp3?_=1
//	Title1=Book - 01
//	Length1=-1
//	NumberOfEntries=1
//	Version=2
func (p *PlaylistCreator) createPLS(book *model.Audiobook) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")

	for i, track := range book.Tracks {
		idx := i + 1
		sb.WriteString(fmt.Sprintf("File%d=%s\n", idx, track.URL))
		sb.WriteString(fmt.Sprintf("Title%d=%s - %s\n", idx, book.Name, track.Label()))
		sb.WriteString(fmt.Sprintf("Length%d=-1\n", idx))
	}

	sb.WriteString(fmt.Sprintf("NumberOfEntries=%d\n", len(book.Tracks)))
	sb.WriteString("Version=2\n")

	return sb.String()
}
