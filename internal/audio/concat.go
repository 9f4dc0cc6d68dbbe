package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
)

const (
	id3v2HeaderSize = 10
	id3v2FooterFlag = 0x10
	id3v1TagSize    = 128
)

// ConcatMerger joins MP3 files natively by appending their frame data.
//
// Per-file ID3v2 headers, ID3v1 trailers and encoder Xing/Info/VBRI frames
// are dropped, so the output is one plain frame stream without a header that
// describes only the first track. All inputs must share the sample rate and
// channel count of the first one.
type ConcatMerger struct{}

// NewConcatMerger creates a ConcatMerger.
func NewConcatMerger() *ConcatMerger {
	return &ConcatMerger{}
}

// Merge writes the audio payload of every input, in order, to output.
//
// A partially written output is removed on failure; inputs are never touched.
func (m *ConcatMerger) Merge(ctx context.Context, inputs []string, output string) (err error) {
	if len(inputs) == 0 {
		return &MergeError{Output: output, Err: ErrNoInputs}
	}

	out, err := os.Create(output)
	if err != nil {
		return &MergeError{Output: output, Err: err}
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = &MergeError{Output: output, Err: cerr}
		}
		if err != nil {
			os.Remove(output)
		}
	}()

	var want *audioFormat
	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			return &MergeError{Output: output, Err: err}
		}
		format, err := appendAudio(out, input, want)
		if err != nil {
			return &MergeError{Output: output, Err: err}
		}
		if want == nil {
			want = &format
		}
	}
	return nil
}

// appendAudio copies the frame data of the file at path to w and returns
// its format. A non-nil want must match the file's format.
func appendAudio(w io.Writer, path string, want *audioFormat) (audioFormat, error) {
	f, err := os.Open(path)
	if err != nil {
		return audioFormat{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return audioFormat{}, err
	}
	size := info.Size()

	start, err := id3v2Length(f)
	if err != nil {
		return audioFormat{}, fmt.Errorf("read header of %s: %w", path, err)
	}
	if start >= size {
		return audioFormat{}, fmt.Errorf("%s: ID3v2 tag of %d bytes leaves no audio in %d byte file", path, start, size)
	}

	end := size
	if size-start >= id3v1TagSize {
		hasTrailer, err := hasID3v1(f, size)
		if err != nil {
			return audioFormat{}, fmt.Errorf("read trailer of %s: %w", path, err)
		}
		if hasTrailer {
			end -= id3v1TagSize
		}
	}

	head := make([]byte, mpegPeekSize)
	n, err := f.ReadAt(head, start)
	if err != nil && err != io.EOF {
		return audioFormat{}, fmt.Errorf("read %s: %w", path, err)
	}
	header, err := parseFrameHeader(head[:n])
	if err != nil {
		return audioFormat{}, fmt.Errorf("%s: %w at offset %d", path, err, start)
	}

	format := header.format()
	if want != nil && format != *want {
		return audioFormat{}, fmt.Errorf("%s is %s, first track is %s", path, format, *want)
	}

	if header.isVBRHeader(head[:n]) {
		start += header.frameLength()
	}

	if start >= end {
		return format, nil
	}
	if _, err := f.Seek(start, io.SeekStart); err != nil {
		return audioFormat{}, err
	}
	if _, err := io.CopyN(w, f, end-start); err != nil {
		return audioFormat{}, fmt.Errorf("copy %s: %w", path, err)
	}
	return format, nil
}

// id3v2Length returns the number of leading bytes taken by an ID3v2 tag,
// or 0 if the file does not start with one.
func id3v2Length(r io.ReaderAt) (int64, error) {
	header := make([]byte, id3v2HeaderSize)
	n, err := r.ReadAt(header, 0)
	if err != nil && err != io.EOF {
		return 0, err
	}
	if n < id3v2HeaderSize || !bytes.Equal(header[:3], []byte("ID3")) {
		return 0, nil
	}

	// Tag size is a 28-bit syncsafe integer excluding the header.
	size := int64(header[6]&0x7f)<<21 | int64(header[7]&0x7f)<<14 | int64(header[8]&0x7f)<<7 | int64(header[9]&0x7f)
	size += id3v2HeaderSize
	// Footers only exist in ID3v2.4.
	if header[3] == 4 && header[5]&id3v2FooterFlag != 0 {
		size += id3v2HeaderSize
	}
	return size, nil
}

// hasID3v1 reports whether the last 128 bytes of a file of the given size
// are an ID3v1 tag.
func hasID3v1(r io.ReaderAt, size int64) (bool, error) {
	marker := make([]byte, 3)
	if _, err := r.ReadAt(marker, size-id3v1TagSize); err != nil {
		return false, err
	}
	return bytes.Equal(marker, []byte("TAG")), nil
}
