package model

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultName is used when no usable name can be derived from the base URL.
const DefaultName = "audiobook"

// Audiobook represents one sequentially numbered run of remote tracks and
// the single file they are merged into.
//
// Paths are computed when the audiobook is created via NewAudiobook:
//
//	cfg := &PathConfig{
//	    DownloadDir:    "./downloads",
//	    OutputDir:      "./audiobooks",
//	    TrackExtension: "mp3",
//	}
//	book := NewAudiobook("https://host/x/Book", "", cfg)
//	// book.Name = "Book"
//	// book.OutputPath = "audiobooks/Book.mp3"
type Audiobook struct {
	// BaseURL is the location numbered track names are appended to.
	BaseURL string

	// Name is the output name (without extension).
	Name string

	// TrackExtension is the file extension of remote and local tracks, without the dot.
	TrackExtension string

	// DownloadDir holds the transient per-track files.
	DownloadDir string

	// OutputPath is the merged audiobook file.
	OutputPath string

	// PlaylistPath is where the optional track playlist is written.
	PlaylistPath string

	// Tracks are the confirmed tracks in discovery order.
	Tracks []*Track
}

// PathConfig holds path settings for audiobooks and their tracks.
type PathConfig struct {
	// DownloadDir is the directory for transient track files.
	DownloadDir string

	// OutputDir is the directory the merged file is written to.
	// It is expected to exist already.
	OutputDir string

	// TrackExtension is the track file extension, e.g. "mp3".
	TrackExtension string

	// PlaylistFormat determines the playlist file extension.
	PlaylistFormat PlaylistFormat
}

// NewAudiobook creates an Audiobook with computed paths.
//
// If name is empty it is derived from the last path segment of baseURL.
// Invalid filename characters are replaced with underscores.
func NewAudiobook(baseURL, name string, cfg *PathConfig) *Audiobook {
	baseURL = strings.TrimSpace(baseURL)
	if strings.TrimSpace(name) == "" {
		name = DeriveName(baseURL)
	}
	name = sanitizeFileName(name)
	if name == "" {
		name = DefaultName
	}

	ext := strings.TrimPrefix(cfg.TrackExtension, ".")
	if ext == "" {
		ext = "mp3"
	}

	book := &Audiobook{
		BaseURL:        baseURL,
		Name:           name,
		TrackExtension: ext,
		DownloadDir:    cfg.DownloadDir,
	}
	book.OutputPath = filepath.Join(cfg.OutputDir, name+"."+ext)
	book.PlaylistPath = filepath.Join(cfg.OutputDir, name+cfg.PlaylistFormat.Extension())

	return book
}

// DeriveName returns the last path segment of a base location.
//
// Trailing slashes are ignored, so "https://host/x/Book/" yields "Book".
// Percent-encoded segments are decoded.
func DeriveName(baseURL string) string {
	p := baseURL
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		p = u.Path
	}
	p = strings.TrimRight(p, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		p = p[i+1:]
	}
	if unescaped, err := url.PathUnescape(p); err == nil {
		p = unescaped
	}
	return p
}

// TrackURL returns the candidate location of track n.
func (b *Audiobook) TrackURL(n int) string {
	return TrackURL(b.BaseURL, n, b.TrackExtension)
}

// AddTrack appends a confirmed track and returns it.
//
// Tracks are numbered by their position, so AddTrack must be called in
// discovery order.
func (b *Audiobook) AddTrack(trackURL string) *Track {
	track := NewTrack(b, len(b.Tracks)+1, trackURL)
	b.Tracks = append(b.Tracks, track)
	return track
}

// TrackPaths returns the local track paths in track order.
func (b *Audiobook) TrackPaths() []string {
	paths := make([]string, len(b.Tracks))
	for i, track := range b.Tracks {
		paths[i] = track.Path
	}
	return paths
}

// TrackURLs returns the remote track locations in track order.
func (b *Audiobook) TrackURLs() []string {
	urls := make([]string, len(b.Tracks))
	for i, track := range b.Tracks {
		urls[i] = track.URL
	}
	return urls
}

// TrackURL returns "<baseURL>/<NN>.<ext>?_=1" for track n.
func TrackURL(baseURL string, n int, ext string) string {
	return fmt.Sprintf("%s/%s.%s?_=1", strings.TrimRight(baseURL, "/"), TrackNumber(n), ext)
}

// PlaylistFormat represents supported playlist file formats.
type PlaylistFormat int

const (
	// PlaylistFormatM3U creates .m3u playlist files.
	PlaylistFormatM3U PlaylistFormat = iota

	// PlaylistFormatPLS creates .pls playlist files.
	PlaylistFormatPLS
)

// ParsePlaylistFormat maps a settings value to a PlaylistFormat.
// Unknown values map to M3U.
func ParsePlaylistFormat(s string) PlaylistFormat {
	if strings.EqualFold(s, "pls") {
		return PlaylistFormatPLS
	}
	return PlaylistFormatM3U
}

// Extension returns the file extension for the playlist format, including the dot.
func (pf PlaylistFormat) Extension() string {
	switch pf {
	case PlaylistFormatPLS:
		return ".pls"
	default:
		return ".m3u"
	}
}

var (
	invalidChars   = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots   = regexp.MustCompile(`\.+$`)
	repeatedSpaces = regexp.MustCompile(`\s+`)
)

// sanitizeFileName removes or replaces characters that are invalid in file names.
//
//	sanitizeFileName("Book: Part 1/2") // "Book_ Part 1_2"
func sanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = repeatedSpaces.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}
