package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/handiism/audiobook-downloader/internal/config"
	"github.com/handiism/audiobook-downloader/internal/download"
	"github.com/rs/zerolog"
)

func TestParseHeaderArgs(t *testing.T) {
	got := parseHeaderArgs([]string{
		"Referer: https://host/",
		"Cookie:a=b; c=d",
		"malformed",
		": empty name",
	})

	if len(got) != 2 {
		t.Fatalf("got %d headers, want 2: %v", len(got), got)
	}
	if got["Referer"] != "https://host/" {
		t.Errorf("Referer = %q", got["Referer"])
	}
	if got["Cookie"] != "a=b; c=d" {
		t.Errorf("Cookie = %q", got["Cookie"])
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		level download.ProgressLevel
		want  zerolog.Level
	}{
		{download.LevelVerbose, zerolog.DebugLevel},
		{download.LevelInfo, zerolog.InfoLevel},
		{download.LevelSuccess, zerolog.InfoLevel},
		{download.LevelWarning, zerolog.WarnLevel},
		{download.LevelError, zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		if got := levelFor(tt.level); got != tt.want {
			t.Errorf("levelFor(%d) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestApplyFlags(t *testing.T) {
	cmd := newRootCmd()
	if err := cmd.Flags().Parse([]string{"--output-dir", "/books", "--concurrency", "0", "--playlist", "pls", "--keep"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	s := config.DefaultSettings()
	s.MaxConcurrentDownloads = 4
	applyFlags(cmd, s)

	if s.OutputDir != "/books" {
		t.Errorf("OutputDir = %q", s.OutputDir)
	}
	if s.MaxConcurrentDownloads != 0 {
		t.Errorf("MaxConcurrentDownloads = %d, want 0", s.MaxConcurrentDownloads)
	}
	if !s.CreatePlaylist || s.PlaylistFormat != "pls" {
		t.Errorf("playlist = %v %q", s.CreatePlaylist, s.PlaylistFormat)
	}
	if !s.KeepTracks {
		t.Error("KeepTracks should be set")
	}
	if s.DownloadDir != "downloads" {
		t.Errorf("unset flag changed DownloadDir to %q", s.DownloadDir)
	}
}

func TestRootCmd_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown merger", "merger: sox\n"},
		{"negative max tracks", "max_tracks: -2\n"},
		{"malformed yaml", "output_dir: [unclosed\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			cmd := newRootCmd()
			cmd.SetArgs([]string{"--config", path, "https://host/x/Book"})
			if err := cmd.Execute(); err == nil {
				t.Fatal("expected error but got none")
			}
		})
	}
}

func TestRootCmd_SaveConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "saved", "config.yaml")

	cmd := newRootCmd()
	cmd.SetArgs([]string{
		srv.URL + "/x/Book",
		"--dry-run",
		"--merger", "concat",
		"--output-dir", filepath.Join(dir, "books"),
		"--concurrency", "2",
		"--save-config", path,
	})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s, err := config.Load(path)
	if err != nil {
		t.Fatalf("load saved config: %v", err)
	}
	if s.Merger != "concat" {
		t.Errorf("Merger = %q, want concat", s.Merger)
	}
	if s.OutputDir != filepath.Join(dir, "books") {
		t.Errorf("OutputDir = %q", s.OutputDir)
	}
	if s.MaxConcurrentDownloads != 2 {
		t.Errorf("MaxConcurrentDownloads = %d, want 2", s.MaxConcurrentDownloads)
	}
	if s.DownloadDir != "downloads" {
		t.Errorf("DownloadDir = %q, want default", s.DownloadDir)
	}
}

func TestRootCmd_SaveConfigSkippedOnInvalidFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"https://host/x/Book", "--merger", "sox", "--save-config", path})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error but got none")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("config written despite invalid settings: %v", err)
	}
}

func TestRootCmd_MergeFailureKeepsTracks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/x/Book/01.mp3" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("not mpeg audio"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	downloads := filepath.Join(dir, "downloads")

	cmd := newRootCmd()
	cmd.SetArgs([]string{
		srv.URL + "/x/Book",
		"--merger", "concat",
		"--download-dir", downloads,
		"--output-dir", dir,
		"--no-tags",
	})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error but got none")
	}

	if _, err := os.Stat(filepath.Join(downloads, "01.mp3")); err != nil {
		t.Errorf("downloaded track not kept: %v", err)
	}
}
