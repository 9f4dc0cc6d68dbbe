package ioutils

import (
	"bytes"
	"context"
	"image"
	_ "image/gif" // GIF decoder registration
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"golang.org/x/image/draw"
)

// JPEGQuality is the quality used when re-encoding cover art.
const JPEGQuality = 90

// ImageService prepares cover art for embedding in ID3 tags.
//
//	svc := NewImageService()
//	coverData, _ := client.DownloadBytes(ctx, coverURL)
//	cover, err := svc.PrepareCover(ctx, coverData, 1000)
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// PrepareCover decodes data, scales it down to fit within maxSize x maxSize
// and returns it JPEG-encoded.
//
// The aspect ratio is preserved and images are never scaled up. A maxSize of
// 0 or less only converts the image to JPEG.
//
//	// A 1500x1000 image becomes 1000x666
//	cover, err := svc.PrepareCover(ctx, data, 1000)
func (s *ImageService) PrepareCover(ctx context.Context, data []byte, maxSize int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	if maxSize > 0 {
		img = fit(img, maxSize, maxSize)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fit scales img down to fit within maxWidth x maxHeight.
func fit(img image.Image, maxWidth, maxHeight int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width <= maxWidth && height <= maxHeight {
		return img
	}

	ratio := float64(width) / float64(height)
	if float64(maxWidth)/float64(maxHeight) > ratio {
		// Height is the limiting factor
		width = int(float64(maxHeight) * ratio)
		height = maxHeight
	} else {
		height = int(float64(maxWidth) / ratio)
		width = maxWidth
	}

	dst := image.NewRGBA(image.Rect(0, 0, max(width, 1), max(height, 1)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
