package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/audiobook-downloader/internal/config"
	"github.com/handiism/audiobook-downloader/internal/download"
	"github.com/handiism/audiobook-downloader/internal/logger"
	"github.com/handiism/audiobook-downloader/internal/model"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

var (
	configPath  string
	saveConfig  string
	downloadDir string
	outputDir   string
	trackExt    string
	concurrency int
	maxTracks   int
	merger      string
	ffmpegPath  string
	userAgent   string
	timeout     time.Duration
	headers     []string
	coverURL    string
	artist      string
	playlist    string
	noTags      bool
	dryRun      bool
	keep        bool
	verbose     bool
)

var bannerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FF6B6B"))

// newRootCmd builds the root command. Registering the flags also resets
// the flag variables to their defaults.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audiobook-dl <baseLocation> [name]",
		Short: "Download numbered audio tracks and merge them into one audiobook",
		Long: `audiobook-dl probes <baseLocation>/01.mp3, 02.mp3, ... until a track is
missing, downloads every track found and merges them into
<output-dir>/<name>.mp3. The name defaults to the last path segment
of the base location.`,
		Version:       Version,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file")
	cmd.Flags().StringVar(&saveConfig, "save-config", "", "Write the effective settings to this YAML file before running")
	cmd.Flags().StringVarP(&downloadDir, "download-dir", "d", "", "Directory for temporary track files (default \"downloads\")")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for the merged audiobook (default \"audiobooks\")")
	cmd.Flags().StringVar(&trackExt, "ext", "", "Track file extension (default \"mp3\")")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "n", -1, "Maximum parallel downloads, 0 for no limit")
	cmd.Flags().IntVar(&maxTracks, "max-tracks", -1, "Stop discovery after this many tracks, 0 for no limit")
	cmd.Flags().StringVarP(&merger, "merger", "m", "", "Merge backend: ffmpeg or concat")
	cmd.Flags().StringVar(&ffmpegPath, "ffmpeg", "", "Path to the ffmpeg binary")
	cmd.Flags().StringVarP(&userAgent, "user-agent", "a", "", "User agent")
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 0, "Per-request timeout (eg. 30s, 5m), 0 for none")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", []string{}, "Custom header ('Name: value'); can be specified multiple times")
	cmd.Flags().StringVar(&coverURL, "cover", "", "Cover image URL to embed in the output")
	cmd.Flags().StringVar(&artist, "artist", "", "Artist tag for the output")
	cmd.Flags().StringVar(&playlist, "playlist", "", "Also write a playlist of the remote tracks: m3u or pls")
	cmd.Flags().BoolVar(&noTags, "no-tags", false, "Do not write ID3 tags to the output")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Discover and list tracks without downloading")
	cmd.Flags().BoolVar(&keep, "keep", false, "Keep temporary track files after merging")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

// Execute runs the root command and exits with 1 on failure or 130 on
// interrupt.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	settings, err := config.Load(configPath)
	if err != nil {
		logger.Init(verbose)
		log := logger.Get("cli")
		log.Error().Err(err).Msg("Error loading config")
		return err
	}
	applyFlags(cmd, settings)
	logger.Init(settings.Verbose)
	log := logger.Get("cli")

	if err := settings.Validate(); err != nil {
		log.Error().Err(err).Msg("Invalid settings")
		return err
	}

	if saveConfig != "" {
		if err := settings.Save(saveConfig); err != nil {
			log.Error().Err(err).Msg("Error saving config")
			return err
		}
		log.Info().Str("path", saveConfig).Msg("Settings saved")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipelineLog := logger.Get("pipeline")
	manager, err := download.NewManager(settings, func(event download.ProgressEvent) {
		pipelineLog.WithLevel(levelFor(event.Level)).Msg(event.Message)
	})
	if err != nil {
		log.Error().Err(err).Msg("Error creating downloader")
		return err
	}

	name := ""
	if len(args) > 1 {
		name = args[1]
	}
	book := manager.NewAudiobook(args[0], name)

	fmt.Fprintln(os.Stderr, bannerStyle.Render("🎧 Audiobook Downloader"))
	log.Info().Str("name", book.Name).Str("base", book.BaseURL).Msg("Starting")

	if dryRun {
		return listTracks(ctx, manager, book)
	}

	result, err := manager.Run(ctx, book)
	if err != nil {
		if ctx.Err() != nil {
			log.Warn().Msg("Interrupted, download cancelled")
			return context.Canceled
		}
		// The manager already reported the failure as an error event.
		if stage, ok := download.FailedStage(err); ok && stage >= download.StageMerging {
			log.Info().Str("dir", book.DownloadDir).Msg("Downloaded tracks kept")
		}
		return err
	}
	if result.Empty {
		return nil
	}

	received, _, files, _ := manager.GetProgress()
	log.Info().
		Int32("tracks", files).
		Str("size", fmt.Sprintf("%.2f MB", float64(received)/1024/1024)).
		Str("output", result.OutputPath).
		Msg("Complete")
	return nil
}

// listTracks discovers the tracks of book and prints their URLs without
// downloading anything.
func listTracks(ctx context.Context, manager *download.Manager, book *model.Audiobook) error {
	log := logger.Get("cli")
	if err := manager.Discover(ctx, book); err != nil {
		if ctx.Err() != nil {
			log.Warn().Msg("Interrupted, discovery cancelled")
			return context.Canceled
		}
		log.Error().Err(err).Msg("Discovery failed")
		return err
	}

	if len(book.Tracks) == 0 {
		log.Warn().Msg("No audio files found")
		return nil
	}

	for _, u := range book.TrackURLs() {
		fmt.Println(u)
	}
	log.Info().Int("tracks", len(book.Tracks)).Str("output", book.OutputPath).Msg("Dry run, nothing downloaded")
	return nil
}

// applyFlags overrides loaded settings with the flags the user set.
func applyFlags(cmd *cobra.Command, s *config.Settings) {
	flags := cmd.Flags()
	if flags.Changed("download-dir") {
		s.DownloadDir = downloadDir
	}
	if flags.Changed("output-dir") {
		s.OutputDir = outputDir
	}
	if flags.Changed("ext") {
		s.TrackExtension = trackExt
	}
	if flags.Changed("concurrency") {
		s.MaxConcurrentDownloads = concurrency
	}
	if flags.Changed("max-tracks") {
		s.MaxTracks = maxTracks
	}
	if flags.Changed("merger") {
		s.Merger = merger
	}
	if flags.Changed("ffmpeg") {
		s.FFmpegPath = ffmpegPath
	}
	if flags.Changed("user-agent") {
		s.UserAgent = userAgent
	}
	if flags.Changed("timeout") {
		s.Timeout = timeout
	}
	if len(headers) > 0 {
		if s.Headers == nil {
			s.Headers = map[string]string{}
		}
		for k, v := range parseHeaderArgs(headers) {
			s.Headers[k] = v
		}
	}
	if flags.Changed("cover") {
		s.CoverURL = coverURL
	}
	if flags.Changed("artist") {
		s.Artist = artist
	}
	if flags.Changed("playlist") {
		s.CreatePlaylist = true
		s.PlaylistFormat = playlist
	}
	if noTags {
		s.ModifyTags = false
	}
	if keep {
		s.KeepTracks = true
	}
	if verbose {
		s.Verbose = true
	}
}

// parseHeaderArgs turns "Name: value" pairs into a header map. Malformed
// entries are skipped.
func parseHeaderArgs(args []string) map[string]string {
	result := make(map[string]string, len(args))
	for _, h := range args {
		name, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(name) == "" {
			continue
		}
		result[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return result
}

func levelFor(level download.ProgressLevel) zerolog.Level {
	switch level {
	case download.LevelVerbose:
		return zerolog.DebugLevel
	case download.LevelWarning:
		return zerolog.WarnLevel
	case download.LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
