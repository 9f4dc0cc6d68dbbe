package audio

import (
	"bytes"
	"errors"
	"fmt"
)

// mpegHeaderSize is the size of an MPEG audio frame header.
const mpegHeaderSize = 4

// mpegPeekSize covers a frame header, the largest side info block and a
// 4-byte VBR header marker.
const mpegPeekSize = mpegHeaderSize + 32 + 4

var errNoFrame = errors.New("no MPEG audio frame")

const (
	mpegVersion25 = 0
	mpegVersion2  = 2
	mpegVersion1  = 3

	layer3 = 1
	layer2 = 2
	layer1 = 3

	channelModeMono = 3
)

// Bitrates in kbit/s by bitrate index.
var (
	bitratesV1L1 = [15]int{0, 32, 64, 96, 128, 160, 192, 224, 256, 288, 320, 352, 384, 416, 448}
	bitratesV1L2 = [15]int{0, 32, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 384}
	bitratesV1L3 = [15]int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320}
	bitratesV2L1 = [15]int{0, 32, 48, 56, 64, 80, 96, 112, 128, 144, 160, 176, 192, 224, 256}
	bitratesV2L3 = [15]int{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160}
)

var sampleRates = map[int][3]int{
	mpegVersion1:  {44100, 48000, 32000},
	mpegVersion2:  {22050, 24000, 16000},
	mpegVersion25: {11025, 12000, 8000},
}

// frameHeader is a decoded MPEG audio frame header.
type frameHeader struct {
	version     int
	layer       int
	bitrate     int // kbit/s
	sampleRate  int
	padding     bool
	channelMode int
}

// audioFormat is what every input of a native merge must agree on.
type audioFormat struct {
	sampleRate int
	mono       bool
}

func (f audioFormat) String() string {
	channels := "stereo"
	if f.mono {
		channels = "mono"
	}
	return fmt.Sprintf("%d Hz %s", f.sampleRate, channels)
}

// parseFrameHeader decodes the 4-byte header at the start of b.
func parseFrameHeader(b []byte) (frameHeader, error) {
	if len(b) < mpegHeaderSize || b[0] != 0xff || b[1]&0xe0 != 0xe0 {
		return frameHeader{}, errNoFrame
	}

	h := frameHeader{
		version:     int(b[1]>>3) & 0x03,
		layer:       int(b[1]>>1) & 0x03,
		padding:     b[2]&0x02 != 0,
		channelMode: int(b[3]>>6) & 0x03,
	}
	bitrateIndex := int(b[2]>>4) & 0x0f
	rateIndex := int(b[2]>>2) & 0x03

	// Reserved values, and free-format streams whose frame size cannot be
	// computed from the header.
	if h.version == 1 || h.layer == 0 || bitrateIndex == 0 || bitrateIndex == 15 || rateIndex == 3 {
		return frameHeader{}, errNoFrame
	}

	h.sampleRate = sampleRates[h.version][rateIndex]
	switch {
	case h.version == mpegVersion1 && h.layer == layer1:
		h.bitrate = bitratesV1L1[bitrateIndex]
	case h.version == mpegVersion1 && h.layer == layer2:
		h.bitrate = bitratesV1L2[bitrateIndex]
	case h.version == mpegVersion1:
		h.bitrate = bitratesV1L3[bitrateIndex]
	case h.layer == layer1:
		h.bitrate = bitratesV2L1[bitrateIndex]
	default:
		h.bitrate = bitratesV2L3[bitrateIndex]
	}
	return h, nil
}

// frameLength returns the size of the frame in bytes, header included.
func (h frameHeader) frameLength() int64 {
	pad := 0
	if h.padding {
		pad = 1
	}
	bitrate := h.bitrate * 1000
	switch {
	case h.layer == layer1:
		return int64((12*bitrate/h.sampleRate + pad) * 4)
	case h.layer == layer3 && h.version != mpegVersion1:
		return int64(72*bitrate/h.sampleRate + pad)
	default:
		return int64(144*bitrate/h.sampleRate + pad)
	}
}

func (h frameHeader) format() audioFormat {
	return audioFormat{sampleRate: h.sampleRate, mono: h.channelMode == channelModeMono}
}

// sideInfoSize is the Layer III side info length that precedes a Xing or
// Info tag.
func (h frameHeader) sideInfoSize() int {
	mono := h.channelMode == channelModeMono
	switch {
	case h.version == mpegVersion1 && mono:
		return 17
	case h.version == mpegVersion1:
		return 32
	case mono:
		return 9
	default:
		return 17
	}
}

// isVBRHeader reports whether frame, which starts with h, carries an encoder
// Xing, Info or VBRI header instead of audio.
func (h frameHeader) isVBRHeader(frame []byte) bool {
	if h.layer != layer3 {
		return false
	}
	if hasMarker(frame, mpegHeaderSize+h.sideInfoSize(), "Xing") || hasMarker(frame, mpegHeaderSize+h.sideInfoSize(), "Info") {
		return true
	}
	return hasMarker(frame, mpegHeaderSize+32, "VBRI")
}

func hasMarker(b []byte, offset int, marker string) bool {
	return len(b) >= offset+len(marker) && bytes.Equal(b[offset:offset+len(marker)], []byte(marker))
}
