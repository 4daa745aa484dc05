package converter

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/disintegration/imaging"

	"github.com/AnyUserName/heic2png-cli/internal/heif"
)

// ConvertError wraps a per-file conversion failure with the offending
// source path. The underlying decode/encode/write error is available
// through Unwrap.
type ConvertError struct {
	File string
	Err  error
}

func (e *ConvertError) Error() string { return fmt.Sprintf("converting %s: %v", e.File, e.Err) }
func (e *ConvertError) Unwrap() error { return e.Err }

// ConvertOne decodes src, flattens it to opaque RGB, and writes it as a
// PNG to dst, overwriting any existing file. The encode happens fully in
// memory, so a failure before the final write leaves no partial file.
// All failures come back as *ConvertError.
func ConvertOne(src, dst string) (string, error) {
	img, err := heif.DecodeFile(src)
	if err != nil {
		return "", &ConvertError{File: src, Err: err}
	}

	data, err := encodePNG(flatten(img))
	if err != nil {
		return "", &ConvertError{File: src, Err: err}
	}

	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", &ConvertError{File: src, Err: err}
	}
	return dst, nil
}

// flatten normalizes any decoded image to opaque NRGBA. Images carrying
// transparency are composited over a white background using their alpha
// channel; everything else is converted in place. The PNG encoder drops
// the alpha channel for fully opaque images, so outputs are 24-bit RGB.
func flatten(img image.Image) *image.NRGBA {
	if !HasAlpha(img) {
		return imaging.Clone(img)
	}
	bounds := img.Bounds()
	bg := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

// encodePNG serializes the image with maximum deflate effort.
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(512 * 1024) // pre-alloc 512KB

	enc := &png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// HasAlpha reports whether any pixel is not fully opaque.
func HasAlpha(img image.Image) bool {
	switch src := img.(type) {
	case *image.NRGBA:
		for i := 3; i < len(src.Pix); i += 4 {
			if src.Pix[i] < 255 {
				return true
			}
		}
		return false
	case *image.RGBA:
		for i := 3; i < len(src.Pix); i += 4 {
			if src.Pix[i] < 255 {
				return true
			}
		}
		return false
	case *image.YCbCr, *image.Gray:
		return false
	default:
		bounds := img.Bounds()
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				_, _, _, a := img.At(x, y).RGBA()
				if a < 65535 {
					return true
				}
			}
		}
		return false
	}
}
