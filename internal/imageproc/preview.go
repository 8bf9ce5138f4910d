// Package imageproc renders local best-effort previews of a transformation
// config, so the studio can show the geometric and enhancement subset
// without a CDN round trip. AI edits and overlays are CDN-only and are
// ignored here.
package imageproc

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
	"github.com/leca/mediastudio/internal/model"
)

// DetectFormat inspects the raw bytes and returns the image format:
// "jpeg", "png", "gif", "webp", or "" if unknown.
func DetectFormat(data []byte) string {
	// JPEG: starts with FF D8 FF
	if len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "jpeg"
	}
	// PNG: starts with 89 50 4E 47 0D 0A 1A 0A
	if len(data) >= 8 && data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 &&
		data[4] == 0x0D && data[5] == 0x0A && data[6] == 0x1A && data[7] == 0x0A {
		return "png"
	}
	// GIF: starts with GIF87a or GIF89a
	if len(data) >= 6 && data[0] == 'G' && data[1] == 'I' && data[2] == 'F' {
		return "gif"
	}
	// WebP: starts with RIFF....WEBP
	if len(data) >= 12 && data[0] == 'R' && data[1] == 'I' && data[2] == 'F' && data[3] == 'F' &&
		data[8] == 'W' && data[9] == 'E' && data[10] == 'B' && data[11] == 'P' {
		return "webp"
	}
	return ""
}

// Preview applies the locally renderable subset of cfg to the source image
// and returns the encoded result plus its format.
func Preview(src io.Reader, cfg *model.TransformationConfig) ([]byte, string, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, "", fmt.Errorf("reading source: %w", err)
	}

	format := DetectFormat(data)

	// GIF and WebP pass through untouched: no local gif frame processing
	// and no webp decoder is registered, so the CDN renders those.
	if format == "gif" || format == "webp" {
		return data, format, nil
	}
	if format == "" {
		return nil, "", fmt.Errorf("unsupported or unrecognized image format")
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decoding image: %w", err)
	}

	if cfg != nil && cfg.Type == model.MediaTypeImage {
		img = applyBasics(img, cfg.Basics)
		img = applyEnhancements(img, cfg.Enhancements)
	}

	out, err := encodeImage(img, format)
	if err != nil {
		return nil, "", fmt.Errorf("encoding image: %w", err)
	}
	return out, format, nil
}

func applyBasics(img image.Image, b *model.Basics) image.Image {
	if b == nil {
		return img
	}

	if b.Rotation != nil && *b.Rotation%360 != 0 {
		img = imaging.Rotate(img, float64(-*b.Rotation), color.Transparent)
	}

	targetW, targetH := 0, 0
	if b.Width != nil {
		targetW = *b.Width
	}
	if b.Height != nil {
		targetH = *b.Height
	}
	if targetW <= 0 && targetH <= 0 {
		return img
	}
	if targetW <= 0 {
		targetW = img.Bounds().Dx()
	}
	if targetH <= 0 {
		targetH = img.Bounds().Dy()
	}

	mode := "maintain_ratio"
	if b.CropMode != nil {
		mode = *b.CropMode
	}
	switch mode {
	case "force":
		return imaging.Resize(img, targetW, targetH, imaging.Lanczos)
	case "at_max":
		return imaging.Fit(img, targetW, targetH, imaging.Lanczos)
	case "extract":
		return imaging.CropCenter(img, targetW, targetH)
	default:
		// maintain_ratio: cover the target box, then center-crop.
		return imaging.Fill(img, targetW, targetH, imaging.Center, imaging.Lanczos)
	}
}

func applyEnhancements(img image.Image, e *model.Enhancements) image.Image {
	if e == nil {
		return img
	}
	if e.Blur != nil && *e.Blur > 0 {
		img = imaging.Blur(img, float64(*e.Blur)/2)
	}
	if e.Sharpen != nil && *e.Sharpen > 0 {
		img = imaging.Sharpen(img, float64(*e.Sharpen))
	}
	if e.Contrast != nil && *e.Contrast {
		img = imaging.AdjustContrast(img, 20)
	}
	if e.Grayscale != nil && *e.Grayscale {
		img = imaging.Grayscale(img)
	}
	return img
}

// encodeImage encodes an image to the specified format and returns the bytes.
func encodeImage(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case "jpeg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
			return nil, err
		}
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	case "gif":
		if err := gif.Encode(&buf, img, nil); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
	return buf.Bytes(), nil
}
