package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Merger kinds accepted by NewMerger.
const (
	MergerFFmpeg = "ffmpeg"
	MergerConcat = "concat"
)

// FFmpeg invocation constants
const (
	FFmpegCommand     = "ffmpeg"
	ConcatListPrefix  = ".concat-"
	ConcatListSuffix  = ".txt"
	ConcatDemuxer     = "concat"
	StreamCopyCodec   = "copy"
	FFmpegLogLevel    = "error"
	concatListFileCmd = "file"
)

// ErrNoInputs is returned when Merge is called without input files.
var ErrNoInputs = errors.New("no input files to merge")

// Merger joins an ordered list of audio files into one output file.
//
// Implementations must keep the input order and must return a *MergeError
// on any failure.
type Merger interface {
	Merge(ctx context.Context, inputs []string, output string) error
}

// NewMerger returns the Merger for kind ("ffmpeg" or "concat").
//
// ffmpegPath is only used by the ffmpeg merger; empty means "ffmpeg" from PATH.
func NewMerger(kind, ffmpegPath string) (Merger, error) {
	switch strings.ToLower(kind) {
	case "", MergerFFmpeg:
		return NewFFmpegMerger(ffmpegPath), nil
	case MergerConcat:
		return NewConcatMerger(), nil
	default:
		return nil, fmt.Errorf("unknown merger %q", kind)
	}
}

// FFmpegMerger merges files with ffmpeg's concat demuxer, copying streams
// without re-encoding.
type FFmpegMerger struct {
	command string
}

// NewFFmpegMerger creates an FFmpegMerger running command.
func NewFFmpegMerger(command string) *FFmpegMerger {
	if command == "" {
		command = FFmpegCommand
	}
	return &FFmpegMerger{command: command}
}

// Merge writes a concat list next to the first input, runs ffmpeg and
// removes the list again.
func (m *FFmpegMerger) Merge(ctx context.Context, inputs []string, output string) error {
	if len(inputs) == 0 {
		return &MergeError{Output: output, Err: ErrNoInputs}
	}

	listPath := filepath.Join(filepath.Dir(inputs[0]), ConcatListPrefix+uuid.NewString()+ConcatListSuffix)
	if err := WriteConcatList(listPath, inputs); err != nil {
		return &MergeError{Output: output, Err: err}
	}
	defer os.Remove(listPath)

	cmd := exec.CommandContext(ctx, m.command, BuildFFmpegArgs(listPath, output)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return &MergeError{Output: output, Err: fmt.Errorf("%s: %w: %s", m.command, err, strings.TrimSpace(string(out)))}
	}
	return nil
}

// BuildFFmpegArgs returns the ffmpeg arguments for concatenating the files
// listed in listPath into output.
func BuildFFmpegArgs(listPath, output string) []string {
	return []string{
		"-hide_banner",
		"-loglevel", FFmpegLogLevel,
		"-f", ConcatDemuxer,
		"-safe", "0",
		"-i", listPath,
		"-c", StreamCopyCodec,
		"-y",
		output,
	}
}

// WriteConcatList writes an ffmpeg concat demuxer list.
//
// Paths are made absolute because ffmpeg resolves relative entries against
// the list file's directory.
func WriteConcatList(listPath string, inputs []string) error {
	var sb strings.Builder
	for _, input := range inputs {
		abs, err := filepath.Abs(input)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", input, err)
		}
		sb.WriteString(concatListFileCmd + " " + quoteConcatPath(abs) + "\n")
	}
	if err := os.WriteFile(listPath, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	return nil
}

// quoteConcatPath single-quotes p for the concat demuxer.
func quoteConcatPath(p string) string {
	return "'" + strings.ReplaceAll(p, "'", `'\''`) + "'"
}
