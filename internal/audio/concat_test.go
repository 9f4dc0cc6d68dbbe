package audio

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Third header byte: 128 kbit/s, no padding, at 44.1 kHz or 48 kHz.
const (
	rate44100 byte = 0x90
	rate48000 byte = 0x94
)

// mpegFrame builds an MPEG-1 Layer III frame filled with fill. A non-empty
// marker is written where encoders put their Xing/Info/VBRI header.
func mpegFrame(t *testing.T, rate byte, mono bool, marker string, fill byte) []byte {
	t.Helper()
	header := []byte{0xff, 0xfb, rate, 0x00}
	if mono {
		header[3] = 0xc0
	}
	h, err := parseFrameHeader(header)
	if err != nil {
		t.Fatalf("parseFrameHeader: %v", err)
	}

	frame := bytes.Repeat([]byte{fill}, int(h.frameLength()))
	copy(frame, header)
	switch marker {
	case "":
	case "VBRI":
		copy(frame[mpegHeaderSize+32:], marker)
	default:
		copy(frame[mpegHeaderSize+h.sideInfoSize():], marker)
	}
	return frame
}

func join(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

func id3v2Header(payload int) []byte {
	return []byte{'I', 'D', '3', 3, 0, 0, 0, byte(payload >> 14 & 0x7f), byte(payload >> 7 & 0x7f), byte(payload & 0x7f)}
}

func id3v1Trailer() []byte {
	trailer := make([]byte, id3v1TagSize)
	copy(trailer, "TAG")
	return trailer
}

func TestConcatMerger_StripsTagsAndKeepsOrder(t *testing.T) {
	dir := t.TempDir()

	a := mpegFrame(t, rate44100, false, "", 'A')
	b := mpegFrame(t, rate44100, false, "", 'B')
	c := mpegFrame(t, rate44100, false, "", 'C')

	inputs := []string{
		writeFile(t, dir, "audio_01.mp3", join(id3v2Header(200), make([]byte, 200), a)),
		writeFile(t, dir, "audio_02.mp3", join(b, id3v1Trailer())),
		writeFile(t, dir, "audio_03.mp3", c),
	}
	output := filepath.Join(dir, "Book.mp3")

	if err := NewConcatMerger().Merge(context.Background(), inputs, output); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	got, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.Equal(got, join(a, b, c)) {
		t.Errorf("output is %d bytes, want the three audio frames in order (%d bytes)", len(got), len(a)+len(b)+len(c))
	}
}

func TestConcatMerger_DropsVBRHeaderFrames(t *testing.T) {
	dir := t.TempDir()

	a := mpegFrame(t, rate44100, false, "", 'A')
	b := mpegFrame(t, rate44100, false, "", 'B')
	c := mpegFrame(t, rate44100, false, "", 'C')

	inputs := []string{
		writeFile(t, dir, "audio_01.mp3", join(mpegFrame(t, rate44100, false, "Info", 0), a)),
		writeFile(t, dir, "audio_02.mp3", join(mpegFrame(t, rate44100, false, "Xing", 0), b)),
		writeFile(t, dir, "audio_03.mp3", join(mpegFrame(t, rate44100, false, "VBRI", 0), c)),
	}
	output := filepath.Join(dir, "Book.mp3")

	if err := NewConcatMerger().Merge(context.Background(), inputs, output); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	got, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	for _, marker := range []string{"Info", "Xing", "VBRI"} {
		if n := bytes.Count(got, []byte(marker)); n != 0 {
			t.Errorf("output holds %d %s headers, want 0", n, marker)
		}
	}
	if !bytes.Equal(got, join(a, b, c)) {
		t.Errorf("output is %d bytes, want %d", len(got), len(a)+len(b)+len(c))
	}
}

func TestConcatMerger_FormatMismatch(t *testing.T) {
	tests := []struct {
		name   string
		second []byte
	}{
		{"sample rate", mpegFrame(t, rate48000, false, "", 'B')},
		{"channels", mpegFrame(t, rate44100, true, "", 'B')},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			inputs := []string{
				writeFile(t, dir, "audio_01.mp3", mpegFrame(t, rate44100, false, "", 'A')),
				writeFile(t, dir, "audio_02.mp3", tt.second),
			}
			output := filepath.Join(dir, "Book.mp3")

			err := NewConcatMerger().Merge(context.Background(), inputs, output)
			if !IsMergeError(err) {
				t.Fatalf("expected *MergeError, got %v", err)
			}
			if !strings.Contains(err.Error(), "first track") {
				t.Errorf("error should name the mismatch: %v", err)
			}
			if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
				t.Error("partial output should be removed")
			}
		})
	}
}

func TestConcatMerger_InvalidInputs(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"not mpeg audio", []byte("plain text, no frames here")},
		{"tag larger than file", join(id3v2Header(5000), make([]byte, 20))},
		{"tag only", join(id3v2Header(20), make([]byte, 20))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			inputs := []string{writeFile(t, dir, "audio_01.mp3", tt.data)}

			err := NewConcatMerger().Merge(context.Background(), inputs, filepath.Join(dir, "Book.mp3"))
			if !IsMergeError(err) {
				t.Errorf("expected *MergeError, got %v", err)
			}
		})
	}
}

func TestConcatMerger_MissingInput(t *testing.T) {
	dir := t.TempDir()
	inputs := []string{
		writeFile(t, dir, "audio_01.mp3", mpegFrame(t, rate44100, false, "", 'A')),
		filepath.Join(dir, "audio_02.mp3"),
	}
	output := filepath.Join(dir, "Book.mp3")

	err := NewConcatMerger().Merge(context.Background(), inputs, output)
	if !IsMergeError(err) {
		t.Fatalf("expected *MergeError, got %v", err)
	}
	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Error("partial output should be removed")
	}
	if _, statErr := os.Stat(inputs[0]); statErr != nil {
		t.Errorf("input should be left in place: %v", statErr)
	}
}

func TestConcatMerger_NoInputs(t *testing.T) {
	err := NewConcatMerger().Merge(context.Background(), nil, filepath.Join(t.TempDir(), "out.mp3"))
	if !errors.Is(err, ErrNoInputs) {
		t.Errorf("err = %v, want ErrNoInputs", err)
	}
}

func TestID3v2Length(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want int64
	}{
		{"no tag", []byte("plain audio data"), 0},
		{"short file", []byte("ID3"), 0},
		{"tag", join(id3v2Header(300), make([]byte, 300)), 310},
		{"v2.4 tag with footer", []byte{'I', 'D', '3', 4, 0, id3v2FooterFlag, 0, 0, 0, 10}, 30},
		{"v2.3 ignores footer flag", []byte{'I', 'D', '3', 3, 0, id3v2FooterFlag, 0, 0, 0, 10}, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := id3v2Length(bytes.NewReader(tt.data))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("id3v2Length() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseFrameHeader(t *testing.T) {
	tests := []struct {
		name       string
		header     []byte
		wantLength int64
		wantRate   int
		wantErr    bool
	}{
		{"mpeg1 layer3 128k 44.1k", []byte{0xff, 0xfb, 0x90, 0x00}, 417, 44100, false},
		{"with padding", []byte{0xff, 0xfb, 0x92, 0x00}, 418, 44100, false},
		{"mpeg1 layer3 128k 48k", []byte{0xff, 0xfb, 0x94, 0x00}, 384, 48000, false},
		{"mpeg2 layer3 64k 22.05k", []byte{0xff, 0xf3, 0x80, 0x00}, 208, 22050, false},
		{"bad bitrate index", []byte{0xff, 0xfb, 0xf0, 0x00}, 0, 0, true},
		{"free format", []byte{0xff, 0xfb, 0x00, 0x00}, 0, 0, true},
		{"reserved sample rate", []byte{0xff, 0xfb, 0x9c, 0x00}, 0, 0, true},
		{"no sync", []byte{0x00, 0xfb, 0x90, 0x00}, 0, 0, true},
		{"short", []byte{0xff, 0xfb}, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := parseFrameHeader(tt.header)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := h.frameLength(); got != tt.wantLength {
				t.Errorf("frameLength() = %d, want %d", got, tt.wantLength)
			}
			if h.sampleRate != tt.wantRate {
				t.Errorf("sampleRate = %d, want %d", h.sampleRate, tt.wantRate)
			}
		})
	}
}
