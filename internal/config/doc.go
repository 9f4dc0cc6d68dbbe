// Package config provides configuration management for audiobook-downloader.
//
// Settings are built once at startup and passed down to the pipeline.
// Values come from, in increasing priority:
//
//  1. DefaultSettings
//  2. an optional YAML file
//  3. AUDIOBOOK_* environment variables
//  4. command-line flags (applied by the caller)
//
// # Loading
//
//	settings, err := config.Load("audiobook.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// A missing file is not an error; defaults and environment still apply.
//
// # Saving
//
//	settings.MaxConcurrentDownloads = 4
//	err := settings.Save("audiobook.yaml")
package config
