package cdn

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/leca/mediastudio/internal/model"
)

// BuildURL derives the transformed media URL by appending the CDN's "tr"
// query parameter to the original URL. Absent config fields emit nothing;
// a field explicitly set to zero still emits its directive. VIDEO configs
// are opaque to this service, so the original URL is returned unchanged.
func BuildURL(originalURL string, cfg *model.TransformationConfig) string {
	if cfg == nil || cfg.Type != model.MediaTypeImage {
		return originalURL
	}

	var parts []string
	parts = append(parts, basicsParams(cfg.Basics)...)
	parts = append(parts, enhancementParams(cfg.Enhancements)...)
	parts = append(parts, aiMagicParams(cfg.AIMagic)...)
	for _, o := range cfg.Overlays {
		parts = append(parts, overlayParams(o)...)
	}
	if len(parts) == 0 {
		return originalURL
	}

	sep := "?"
	if strings.Contains(originalURL, "?") {
		sep = "&"
	}
	return originalURL + sep + "tr=" + strings.Join(parts, ",")
}

func basicsParams(b *model.Basics) []string {
	if b == nil {
		return nil
	}
	var parts []string
	if b.Width != nil {
		parts = append(parts, "w-"+strconv.Itoa(*b.Width))
	}
	if b.Height != nil {
		parts = append(parts, "h-"+strconv.Itoa(*b.Height))
	}
	if b.AspectRatio != nil {
		parts = append(parts, "ar-"+strings.ReplaceAll(*b.AspectRatio, ":", "-"))
	}
	if b.CropMode != nil {
		parts = append(parts, "c-"+*b.CropMode)
	}
	if b.Focus != nil {
		parts = append(parts, "fo-"+*b.Focus)
	}
	if b.Rotation != nil {
		parts = append(parts, "rt-"+strconv.Itoa(*b.Rotation))
	}
	if b.Radius != nil {
		parts = append(parts, "r-"+strconv.Itoa(*b.Radius))
	}
	if b.Quality != nil {
		parts = append(parts, "q-"+strconv.Itoa(*b.Quality))
	}
	if b.Format != nil {
		parts = append(parts, "f-"+*b.Format)
	}
	return parts
}

func enhancementParams(e *model.Enhancements) []string {
	if e == nil {
		return nil
	}
	var parts []string
	if e.Blur != nil {
		parts = append(parts, "bl-"+strconv.Itoa(*e.Blur))
	}
	if e.Sharpen != nil {
		parts = append(parts, "e-sharpen-"+strconv.Itoa(*e.Sharpen))
	}
	if e.Contrast != nil && *e.Contrast {
		parts = append(parts, "e-contrast")
	}
	if e.Grayscale != nil && *e.Grayscale {
		parts = append(parts, "e-grayscale")
	}
	if s := e.Shadow; s != nil {
		var opts []string
		if s.Blur != nil {
			opts = append(opts, "bl-"+strconv.Itoa(*s.Blur))
		}
		if s.Saturation != nil {
			opts = append(opts, "st-"+strconv.Itoa(*s.Saturation))
		}
		if s.OffsetX != nil {
			opts = append(opts, "x-"+signed(*s.OffsetX))
		}
		if s.OffsetY != nil {
			opts = append(opts, "y-"+signed(*s.OffsetY))
		}
		if len(opts) == 0 {
			parts = append(parts, "e-shadow")
		} else {
			parts = append(parts, "e-shadow-"+strings.Join(opts, "_"))
		}
	}
	if b := e.Background; b != nil && b.Type != nil {
		switch *b.Type {
		case "solid":
			if b.Color != nil {
				parts = append(parts, "bg-"+*b.Color)
			}
		case "blurred":
			v := "bg-blurred"
			if b.BlurIntensity != nil {
				if b.BlurIntensity.Auto {
					v += "_auto"
				} else {
					v += "_" + strconv.Itoa(b.BlurIntensity.Value)
				}
			}
			if b.Brightness != nil {
				v += "_" + signed(*b.Brightness)
			}
			parts = append(parts, v)
		case "dominant":
			parts = append(parts, "bg-dominant")
		}
	}
	return parts
}

func aiMagicParams(ai *model.AIMagic) []string {
	if ai == nil {
		return nil
	}
	var parts []string
	if b := ai.Background; b != nil {
		if b.Remove != nil && *b.Remove {
			if b.Mode != nil && *b.Mode == "economy" {
				parts = append(parts, "e-bgremove")
			} else {
				parts = append(parts, "e-removedotbg")
			}
		}
		if b.ChangePrompt != nil {
			parts = append(parts, "e-changebg-prompt-"+escapePrompt(*b.ChangePrompt))
		}
	}
	if ed := ai.Editing; ed != nil {
		if ed.Prompt != nil {
			parts = append(parts, "e-edit-prompt-"+escapePrompt(*ed.Prompt))
		}
		if ed.Retouch != nil && *ed.Retouch {
			parts = append(parts, "e-retouch")
		}
		if ed.Upscale != nil && *ed.Upscale {
			parts = append(parts, "e-upscale")
		}
	}
	if sl := ai.ShadowLighting; sl != nil && sl.DropShadow != nil {
		ds := sl.DropShadow
		var opts []string
		if ds.Azimuth != nil {
			opts = append(opts, "az-"+strconv.Itoa(*ds.Azimuth))
		}
		if ds.Elevation != nil {
			opts = append(opts, "el-"+strconv.Itoa(*ds.Elevation))
		}
		if ds.Saturation != nil {
			opts = append(opts, "st-"+strconv.Itoa(*ds.Saturation))
		}
		if len(opts) == 0 {
			parts = append(parts, "e-dropshadow")
		} else {
			parts = append(parts, "e-dropshadow-"+strings.Join(opts, "_"))
		}
	}
	if g := ai.Generation; g != nil {
		if g.TextPrompt != nil {
			parts = append(parts, "e-genimg-prompt-"+escapePrompt(*g.TextPrompt))
		}
		if g.Variation != nil && *g.Variation {
			parts = append(parts, "e-genvar")
		}
	}
	if cr := ai.Cropping; cr != nil {
		if cr.Type != nil {
			switch *cr.Type {
			case "smart":
				parts = append(parts, "fo-auto")
			case "face":
				parts = append(parts, "fo-face")
			case "object":
				if cr.ObjectName != nil {
					parts = append(parts, "fo-"+escapePrompt(*cr.ObjectName))
				}
			}
		}
		if cr.Width != nil {
			parts = append(parts, "w-"+strconv.Itoa(*cr.Width))
		}
		if cr.Height != nil {
			parts = append(parts, "h-"+strconv.Itoa(*cr.Height))
		}
	}
	return parts
}

// overlayParams emits one l-...,l-end group per overlay. Group order in the
// parameter string follows sequence order, which is the rendering z-order.
func overlayParams(o model.Overlay) []string {
	switch o.Kind {
	case model.OverlayText:
		t := o.Text
		parts := []string{"l-text", "i-" + escapePrompt(t.Text)}
		if t.FontSize != nil {
			parts = append(parts, "fs-"+strconv.Itoa(*t.FontSize))
		}
		if t.Color != nil {
			parts = append(parts, "co-"+*t.Color)
		}
		if t.BackgroundColor != nil {
			parts = append(parts, "bg-"+*t.BackgroundColor)
		}
		if t.Align != nil {
			parts = append(parts, "ia-"+*t.Align)
		}
		switch {
		case boolSet(t.Bold) && boolSet(t.Italic):
			parts = append(parts, "tg-bi")
		case boolSet(t.Bold):
			parts = append(parts, "tg-b")
		case boolSet(t.Italic):
			parts = append(parts, "tg-i")
		}
		return append(parts, "l-end")
	case model.OverlayImage:
		img := o.Image
		parts := []string{"l-image", "i-" + escapePrompt(img.Src)}
		if img.Width != nil {
			parts = append(parts, "w-"+strconv.Itoa(*img.Width))
		}
		if img.Height != nil {
			parts = append(parts, "h-"+strconv.Itoa(*img.Height))
		}
		if img.X != nil {
			parts = append(parts, "lx-"+signed(*img.X))
		}
		if img.Y != nil {
			parts = append(parts, "ly-"+signed(*img.Y))
		}
		return append(parts, "l-end")
	case model.OverlaySolid:
		s := o.Solid
		return []string{
			"l-image", "i-ik_canvas",
			"bg-" + s.Color,
			"w-" + strconv.Itoa(s.Width),
			"h-" + strconv.Itoa(s.Height),
			"l-end",
		}
	case model.OverlayGradient:
		g := o.Gradient
		direction := 180
		if g.Direction != nil {
			direction = *g.Direction
		}
		return []string{
			"l-image", "i-ik_canvas",
			fmt.Sprintf("e-gradient-ld-%d_from-%s_to-%s", direction, g.FromColor, g.ToColor),
			"l-end",
		}
	}
	return nil
}

// signed renders negative numbers with the CDN's N prefix (y-N5 for -5).
func signed(n int) string {
	if n < 0 {
		return "N" + strconv.Itoa(-n)
	}
	return strconv.Itoa(n)
}

func escapePrompt(s string) string {
	return url.QueryEscape(s)
}

func boolSet(b *bool) bool {
	return b != nil && *b
}
