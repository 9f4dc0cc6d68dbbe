package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestGet(t *testing.T) {
	var buf bytes.Buffer
	Init(false)
	SetOutput(&buf)

	log := Get("discovery")
	log.Info().Msg("Found track 01")
	log.Debug().Msg("hidden")

	out := buf.String()
	if !strings.Contains(out, "component=") || !strings.Contains(out, "discovery") {
		t.Errorf("missing component field: %q", out)
	}
	if !strings.Contains(out, "Found track 01") {
		t.Errorf("missing message: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Error("debug message should be filtered without verbose")
	}
}

func TestInit_Verbose(t *testing.T) {
	Init(true)
	defer Init(false)

	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Errorf("GlobalLevel = %v, want debug", zerolog.GlobalLevel())
	}
}
