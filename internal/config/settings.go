package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/handiism/audiobook-downloader/internal/model"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variables overriding settings,
// e.g. AUDIOBOOK_MAX_CONCURRENT_DOWNLOADS.
const EnvPrefix = "AUDIOBOOK"

// Settings holds all configuration options.
type Settings struct {
	// Paths
	DownloadDir    string `mapstructure:"download_dir" yaml:"download_dir"`
	OutputDir      string `mapstructure:"output_dir" yaml:"output_dir"`
	TrackExtension string `mapstructure:"track_extension" yaml:"track_extension"`

	// Discovery and download
	MaxTracks              int               `mapstructure:"max_tracks" yaml:"max_tracks"`                             // 0 = unlimited
	MaxConcurrentDownloads int               `mapstructure:"max_concurrent_downloads" yaml:"max_concurrent_downloads"` // 0 = all at once
	UserAgent              string            `mapstructure:"user_agent" yaml:"user_agent"`
	Timeout                time.Duration     `mapstructure:"timeout" yaml:"timeout"` // 0 = transport default
	Headers                map[string]string `mapstructure:"headers" yaml:"headers,omitempty"`

	// Merge
	Merger     string `mapstructure:"merger" yaml:"merger"` // ffmpeg, concat
	FFmpegPath string `mapstructure:"ffmpeg_path" yaml:"ffmpeg_path,omitempty"`
	KeepTracks bool   `mapstructure:"keep_tracks" yaml:"keep_tracks"`

	// Tag settings
	ModifyTags   bool   `mapstructure:"modify_tags" yaml:"modify_tags"`
	Artist       string `mapstructure:"artist" yaml:"artist,omitempty"`
	CoverURL     string `mapstructure:"cover_url" yaml:"cover_url,omitempty"`
	CoverMaxSize int    `mapstructure:"cover_max_size" yaml:"cover_max_size"`

	// Playlist settings
	CreatePlaylist bool   `mapstructure:"create_playlist" yaml:"create_playlist"`
	PlaylistFormat string `mapstructure:"playlist_format" yaml:"playlist_format"` // m3u, pls
	M3UExtended    bool   `mapstructure:"m3u_extended" yaml:"m3u_extended"`

	Verbose bool `mapstructure:"verbose" yaml:"verbose"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		DownloadDir:    "downloads",
		OutputDir:      "audiobooks",
		TrackExtension: "mp3",

		MaxTracks:              0,
		MaxConcurrentDownloads: 0,
		UserAgent:              "AudiobookDownloader",
		Timeout:                0,

		Merger: "ffmpeg",

		ModifyTags:   true,
		CoverMaxSize: 1000,

		CreatePlaylist: false,
		PlaylistFormat: "m3u",
		M3UExtended:    true,
	}
}

// Load reads settings from a YAML file and the environment.
//
// An empty path or a missing file yields the defaults with environment
// overrides applied.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v, DefaultSettings())

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &settings, nil
}

func setDefaults(v *viper.Viper, d *Settings) {
	v.SetDefault("download_dir", d.DownloadDir)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("track_extension", d.TrackExtension)
	v.SetDefault("max_tracks", d.MaxTracks)
	v.SetDefault("max_concurrent_downloads", d.MaxConcurrentDownloads)
	v.SetDefault("user_agent", d.UserAgent)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("headers", map[string]string{})
	v.SetDefault("merger", d.Merger)
	v.SetDefault("ffmpeg_path", d.FFmpegPath)
	v.SetDefault("keep_tracks", d.KeepTracks)
	v.SetDefault("modify_tags", d.ModifyTags)
	v.SetDefault("artist", d.Artist)
	v.SetDefault("cover_url", d.CoverURL)
	v.SetDefault("cover_max_size", d.CoverMaxSize)
	v.SetDefault("create_playlist", d.CreatePlaylist)
	v.SetDefault("playlist_format", d.PlaylistFormat)
	v.SetDefault("m3u_extended", d.M3UExtended)
	v.SetDefault("verbose", d.Verbose)
}

// Save writes settings to a YAML file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks the settings for values the pipeline cannot work with.
func (s *Settings) Validate() error {
	if s.DownloadDir == "" {
		return fmt.Errorf("download_dir is required")
	}
	if s.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if strings.Trim(s.TrackExtension, ". ") == "" {
		return fmt.Errorf("track_extension is required")
	}
	if s.MaxTracks < 0 {
		return fmt.Errorf("max_tracks must not be negative")
	}
	if s.MaxConcurrentDownloads < 0 {
		return fmt.Errorf("max_concurrent_downloads must not be negative")
	}
	if s.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if s.CoverMaxSize < 0 {
		return fmt.Errorf("cover_max_size must not be negative")
	}

	switch strings.ToLower(s.Merger) {
	case "ffmpeg", "concat":
	default:
		return fmt.Errorf("merger must be ffmpeg or concat, got %q", s.Merger)
	}

	switch strings.ToLower(s.PlaylistFormat) {
	case "m3u", "pls":
	default:
		return fmt.Errorf("playlist_format must be m3u or pls, got %q", s.PlaylistFormat)
	}

	return nil
}

// ToPathConfig converts settings to PathConfig.
func (s *Settings) ToPathConfig() *model.PathConfig {
	return &model.PathConfig{
		DownloadDir:    s.DownloadDir,
		OutputDir:      s.OutputDir,
		TrackExtension: s.TrackExtension,
		PlaylistFormat: model.ParsePlaylistFormat(s.PlaylistFormat),
	}
}
