package model

import (
	"encoding/json"
	"fmt"
)

// OverlayKind discriminates the overlay union.
type OverlayKind string

const (
	OverlayText     OverlayKind = "text"
	OverlayImage    OverlayKind = "image"
	OverlaySolid    OverlayKind = "solid"
	OverlayGradient OverlayKind = "gradient"
)

// Overlay is a closed union of the four compositing layer kinds. Exactly one
// of the variant pointers is non-nil, matching Kind. Overlays are kept in an
// ordered sequence; the order is the rendering z-order and must survive
// serialization exactly.
type Overlay struct {
	Kind     OverlayKind
	Text     *TextOverlay
	Image    *ImageOverlay
	Solid    *SolidOverlay
	Gradient *GradientOverlay
}

// TextOverlay renders a string on top of the image.
type TextOverlay struct {
	Text            string  `json:"text"`
	FontSize        *int    `json:"fontSize,omitempty"`
	Color           *string `json:"color,omitempty"`
	BackgroundColor *string `json:"backgroundColor,omitempty"`
	Align           *string `json:"align,omitempty"`
	Bold            *bool   `json:"bold,omitempty"`
	Italic          *bool   `json:"italic,omitempty"`
}

// ImageOverlay composites another image.
type ImageOverlay struct {
	Src    string `json:"src"`
	Width  *int   `json:"width,omitempty"`
	Height *int   `json:"height,omitempty"`
	X      *int   `json:"x,omitempty"`
	Y      *int   `json:"y,omitempty"`
}

// SolidOverlay is a filled rectangle. Color and dimensions are required.
type SolidOverlay struct {
	Color  string `json:"color"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// GradientOverlay is a two-color linear gradient. Direction is degrees,
// defaulting to 180 (top to bottom) when absent.
type GradientOverlay struct {
	FromColor string `json:"fromColor"`
	ToColor   string `json:"toColor"`
	Direction *int   `json:"direction,omitempty"`
}

func (o *Overlay) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type OverlayKind `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	switch probe.Type {
	case OverlayText:
		v := &TextOverlay{}
		if err := json.Unmarshal(data, v); err != nil {
			return err
		}
		*o = Overlay{Kind: OverlayText, Text: v}
	case OverlayImage:
		v := &ImageOverlay{}
		if err := json.Unmarshal(data, v); err != nil {
			return err
		}
		*o = Overlay{Kind: OverlayImage, Image: v}
	case OverlaySolid:
		v := &SolidOverlay{}
		if err := json.Unmarshal(data, v); err != nil {
			return err
		}
		*o = Overlay{Kind: OverlaySolid, Solid: v}
	case OverlayGradient:
		v := &GradientOverlay{}
		if err := json.Unmarshal(data, v); err != nil {
			return err
		}
		*o = Overlay{Kind: OverlayGradient, Gradient: v}
	default:
		return fmt.Errorf("unknown overlay type %q", probe.Type)
	}
	return nil
}

func (o Overlay) MarshalJSON() ([]byte, error) {
	switch o.Kind {
	case OverlayText:
		return json.Marshal(struct {
			Type OverlayKind `json:"type"`
			*TextOverlay
		}{OverlayText, o.Text})
	case OverlayImage:
		return json.Marshal(struct {
			Type OverlayKind `json:"type"`
			*ImageOverlay
		}{OverlayImage, o.Image})
	case OverlaySolid:
		return json.Marshal(struct {
			Type OverlayKind `json:"type"`
			*SolidOverlay
		}{OverlaySolid, o.Solid})
	case OverlayGradient:
		return json.Marshal(struct {
			Type OverlayKind `json:"type"`
			*GradientOverlay
		}{OverlayGradient, o.Gradient})
	}
	return nil, fmt.Errorf("overlay has no kind set")
}
