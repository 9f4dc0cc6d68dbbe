package download

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/handiism/audiobook-downloader/internal/audio"
	"github.com/handiism/audiobook-downloader/internal/config"
	"github.com/handiism/audiobook-downloader/internal/discovery"
	"github.com/handiism/audiobook-downloader/internal/http"
	ioutils "github.com/handiism/audiobook-downloader/internal/io"
	"github.com/handiism/audiobook-downloader/internal/model"
	"golang.org/x/sync/errgroup"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Result describes a finished run.
type Result struct {
	Book *model.Audiobook

	// Empty is set when track 01 does not exist. Nothing was downloaded or
	// merged in that case.
	Empty bool

	// OutputPath is the merged file. Empty when Empty is set.
	OutputPath string
}

// Option configures a Manager.
type Option func(*Manager)

// WithMerger replaces the merger selected by settings.Merger.
func WithMerger(merger audio.Merger) Option {
	return func(m *Manager) {
		m.merger = merger
	}
}

// WithHTTPClient replaces the client built from settings.
func WithHTTPClient(client *http.Client) Option {
	return func(m *Manager) {
		m.httpClient = client
	}
}

// Manager runs the audiobook pipeline: discover, download, merge, tag and
// clean up.
type Manager struct {
	settings     *config.Settings
	httpClient   *http.Client
	merger       audio.Merger
	tagger       *audio.Tagger
	playlist     *audio.PlaylistCreator
	imageService *ioutils.ImageService

	stage           atomic.Int32
	totalBytes      int64
	receivedBytes   int64
	totalFiles      int32
	downloadedFiles int32

	onProgress func(ProgressEvent)
	mu         sync.Mutex
}

// NewManager creates a new download Manager.
//
// onProgress may be nil. It is called from several goroutines during the
// download stage, but never concurrently.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent), opts ...Option) (*Manager, error) {
	m := &Manager{
		settings: settings,
		httpClient: http.NewClient(http.ClientConfig{
			UserAgent: settings.UserAgent,
			Timeout:   settings.Timeout,
			Headers:   settings.Headers,
		}),
		tagger: audio.NewTagger(&audio.TagConfig{
			Artist:        settings.Artist,
			Genre:         audio.DefaultGenre,
			SourceComment: true,
		}),
		playlist:     audio.NewPlaylistCreator(model.ParsePlaylistFormat(settings.PlaylistFormat), settings.M3UExtended),
		imageService: ioutils.NewImageService(),
		onProgress:   onProgress,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.merger == nil {
		merger, err := audio.NewMerger(settings.Merger, settings.FFmpegPath)
		if err != nil {
			return nil, err
		}
		m.merger = merger
	}

	return m, nil
}

// NewAudiobook creates an audiobook for baseURL using the configured paths.
// An empty name is derived from baseURL.
func (m *Manager) NewAudiobook(baseURL, name string) *model.Audiobook {
	return model.NewAudiobook(baseURL, name, m.settings.ToPathConfig())
}

// Discover probes the tracks of book and adds every confirmed track to it.
//
// It can be used on its own for a dry run.
func (m *Manager) Discover(ctx context.Context, book *model.Audiobook) error {
	d := discovery.NewDiscoverer(m.httpClient, m.settings.MaxTracks)
	d.OnProbe(func(r discovery.Result) {
		if r.Found {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Found track %s", model.TrackNumber(r.Number)), Level: LevelInfo})
		} else {
			m.progress(ProgressEvent{Message: fmt.Sprintf("No file found for track %s. Stopping.", model.TrackNumber(r.Number)), Level: LevelInfo})
		}
	})

	urls, err := d.Discover(ctx, book)
	if err != nil {
		return err
	}

	book.Tracks = nil
	for _, u := range urls {
		book.AddTrack(u)
	}
	return nil
}

// Run executes the whole pipeline for book.
//
// A book without tracks is not an error: Run returns a Result with Empty set.
// On failure the returned error wraps a *StageError. Temporary track files
// are only removed after a successful merge.
func (m *Manager) Run(ctx context.Context, book *model.Audiobook) (*Result, error) {
	result := &Result{Book: book}

	m.setStage(StageDiscovering)
	if err := ioutils.EnsureDir(book.DownloadDir); err != nil {
		return nil, m.fail(StageDiscovering, fmt.Errorf("create download directory: %w", err))
	}
	if dir := filepath.Dir(book.OutputPath); !ioutils.IsDir(dir) {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Output directory %s does not exist, merging will fail", dir), Level: LevelWarning})
	}
	if err := m.Discover(ctx, book); err != nil {
		return nil, m.fail(StageDiscovering, err)
	}

	if len(book.Tracks) == 0 {
		m.progress(ProgressEvent{Message: "No audio files found. Exiting.", Level: LevelWarning})
		result.Empty = true
		m.setStage(StageDone)
		return result, nil
	}

	m.setStage(StageDownloading)
	if err := m.downloadTracks(ctx, book); err != nil {
		return nil, m.fail(StageDownloading, err)
	}

	m.setStage(StageMerging)
	m.progress(ProgressEvent{Message: fmt.Sprintf("Merging %d tracks...", len(book.Tracks)), Level: LevelInfo})
	if err := m.merger.Merge(ctx, book.TrackPaths(), book.OutputPath); err != nil {
		return nil, m.fail(StageMerging, err)
	}
	result.OutputPath = book.OutputPath
	m.progress(ProgressEvent{Message: fmt.Sprintf("All tracks merged into: %s", book.OutputPath), Level: LevelSuccess})

	m.setStage(StageTagging)
	m.finishOutput(ctx, book)

	m.setStage(StageCleaning)
	if m.settings.KeepTracks {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Keeping track files in %s", book.DownloadDir), Level: LevelVerbose})
	} else {
		if err := ioutils.RemoveFiles(book.TrackPaths()); err != nil {
			return nil, m.fail(StageCleaning, err)
		}
		m.progress(ProgressEvent{Message: "Temporary files deleted", Level: LevelVerbose})
	}

	m.setStage(StageDone)
	return result, nil
}

// downloadTracks fetches every track concurrently. The first failure
// cancels the remaining downloads.
func (m *Manager) downloadTracks(ctx context.Context, book *model.Audiobook) error {
	atomic.StoreInt32(&m.totalFiles, int32(len(book.Tracks)))
	atomic.StoreInt32(&m.downloadedFiles, 0)
	atomic.StoreInt64(&m.totalBytes, 0)
	atomic.StoreInt64(&m.receivedBytes, 0)

	g, ctx := errgroup.WithContext(ctx)
	if m.settings.MaxConcurrentDownloads > 0 {
		g.SetLimit(m.settings.MaxConcurrentDownloads)
	}

	for _, track := range book.Tracks {
		track := track
		g.Go(func() error {
			return m.downloadTrack(ctx, track)
		})
	}

	return g.Wait()
}

func (m *Manager) downloadTrack(ctx context.Context, track *model.Track) error {
	var last int64
	var sized bool
	err := m.httpClient.DownloadFile(ctx, track.URL, track.Path, func(written, total int64) {
		if !sized && total > 0 {
			sized = true
			atomic.AddInt64(&m.totalBytes, total)
		}
		atomic.AddInt64(&m.receivedBytes, written-last)
		last = written
	})
	if err != nil {
		return fmt.Errorf("download track %s: %w", track.Label(), err)
	}

	atomic.AddInt32(&m.downloadedFiles, 1)
	m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded: %s", filepath.Base(track.Path)), Level: LevelVerbose})
	return nil
}

// finishOutput tags the merged file and writes the playlist. Failures here
// leave a usable output, so they are reported as warnings.
func (m *Manager) finishOutput(ctx context.Context, book *model.Audiobook) {
	if m.settings.ModifyTags {
		artwork := m.downloadCover(ctx)
		if err := m.tagger.SaveTags(book, artwork); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error tagging %s: %v", book.OutputPath, err), Level: LevelWarning})
		} else {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Tagged %s", filepath.Base(book.OutputPath)), Level: LevelVerbose})
		}
	}

	if m.settings.CreatePlaylist {
		content := m.playlist.CreatePlaylist(book)
		if err := ioutils.WriteFile(book.PlaylistPath, []byte(content)); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating playlist: %v", err), Level: LevelWarning})
		} else {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Created playlist: %s", book.PlaylistPath), Level: LevelSuccess})
		}
	}
}

func (m *Manager) downloadCover(ctx context.Context) []byte {
	if m.settings.CoverURL == "" {
		return nil
	}

	data, err := m.httpClient.DownloadBytes(ctx, m.settings.CoverURL)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading cover art: %v", err), Level: LevelWarning})
		return nil
	}

	cover, err := m.imageService.PrepareCover(ctx, data, m.settings.CoverMaxSize)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error processing cover art: %v", err), Level: LevelWarning})
		return nil
	}

	m.progress(ProgressEvent{Message: "Downloaded cover art", Level: LevelVerbose})
	return cover
}

// GetProgress returns current download progress.
//
// total only counts tracks whose size the server reported so far.
func (m *Manager) GetProgress() (received, total int64, filesReceived, filesTotal int32) {
	return atomic.LoadInt64(&m.receivedBytes), atomic.LoadInt64(&m.totalBytes),
		atomic.LoadInt32(&m.downloadedFiles), atomic.LoadInt32(&m.totalFiles)
}

// Stage returns the current pipeline stage.
func (m *Manager) Stage() Stage {
	return Stage(m.stage.Load())
}

func (m *Manager) setStage(s Stage) {
	m.stage.Store(int32(s))
}

func (m *Manager) fail(stage Stage, err error) error {
	m.setStage(StageFailed)
	m.progress(ProgressEvent{Message: fmt.Sprintf("Failed while %s: %v", stage, err), Level: LevelError})
	return &StageError{Stage: stage, Err: err}
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onProgress(event)
}
