package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// TransformationConfig is the tree of requested edits for one media item.
// Every leaf is optional: a nil field means "do not apply this effect",
// which is distinct from a field explicitly set to its zero value. IMAGE
// configs carry the typed sub-trees below; VIDEO configs are opaque and
// round-trip byte-for-byte.
type TransformationConfig struct {
	Type         MediaType
	Basics       *Basics
	Overlays     []Overlay
	Enhancements *Enhancements
	AIMagic      *AIMagic

	// raw holds the verbatim JSON of a VIDEO config.
	raw json.RawMessage
}

// Category names one top-level sub-tree of an IMAGE config.
type Category string

const (
	CategoryBasics       Category = "basics"
	CategoryOverlays     Category = "overlays"
	CategoryEnhancements Category = "enhancements"
	CategoryAIMagic      Category = "aiMagic"
)

// ParseCategory validates a category name from a URL or payload.
func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategoryBasics, CategoryOverlays, CategoryEnhancements, CategoryAIMagic:
		return Category(s), true
	}
	return "", false
}

// Basics are the plain geometric adjustments.
type Basics struct {
	Width       *int    `json:"width,omitempty"`
	Height      *int    `json:"height,omitempty"`
	AspectRatio *string `json:"aspectRatio,omitempty"`
	CropMode    *string `json:"cropMode,omitempty"`
	Focus       *string `json:"focus,omitempty"`
	Rotation    *int    `json:"rotation,omitempty"`
	Radius      *int    `json:"radius,omitempty"`
	Quality     *int    `json:"quality,omitempty"`
	Format      *string `json:"format,omitempty"`
}

// Enhancements are the non-AI visual effects.
type Enhancements struct {
	Blur       *int        `json:"blur,omitempty"`
	Sharpen    *int        `json:"sharpen,omitempty"`
	Contrast   *bool       `json:"contrast,omitempty"`
	Grayscale  *bool       `json:"grayscale,omitempty"`
	Shadow     *Shadow     `json:"shadow,omitempty"`
	Background *Background `json:"background,omitempty"`
}

// Shadow describes a non-AI drop shadow.
type Shadow struct {
	Blur       *int `json:"blur,omitempty"`
	Saturation *int `json:"saturation,omitempty"`
	OffsetX    *int `json:"offsetX,omitempty"`
	OffsetY    *int `json:"offsetY,omitempty"`
}

// Background replaces the area behind the subject.
// Type is one of "solid", "blurred", "dominant".
type Background struct {
	Type          *string        `json:"type,omitempty"`
	Color         *string        `json:"color,omitempty"`
	BlurIntensity *BlurIntensity `json:"blurIntensity,omitempty"`
	Brightness    *int           `json:"brightness,omitempty"`
}

// BlurIntensity is either the literal "auto" or a numeric intensity.
type BlurIntensity struct {
	Auto  bool
	Value int
}

func (b BlurIntensity) MarshalJSON() ([]byte, error) {
	if b.Auto {
		return json.Marshal("auto")
	}
	return json.Marshal(b.Value)
}

func (b *BlurIntensity) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte(`"auto"`)) {
		*b = BlurIntensity{Auto: true}
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("blurIntensity must be a number or \"auto\"")
	}
	*b = BlurIntensity{Value: v}
	return nil
}

// AIMagic groups the AI-assisted edits.
type AIMagic struct {
	Background     *AIBackground     `json:"background,omitempty"`
	Editing        *AIEditing        `json:"editing,omitempty"`
	ShadowLighting *AIShadowLighting `json:"shadowLighting,omitempty"`
	Generation     *AIGeneration     `json:"generation,omitempty"`
	Cropping       *AICropping       `json:"cropping,omitempty"`
}

// AIBackground removes or replaces the background.
// Mode is "standard" or "economy".
type AIBackground struct {
	Remove       *bool   `json:"remove,omitempty"`
	Mode         *string `json:"mode,omitempty"`
	ChangePrompt *string `json:"changePrompt,omitempty"`
}

// AIEditing is prompt-driven retouching.
type AIEditing struct {
	Prompt  *string `json:"prompt,omitempty"`
	Retouch *bool   `json:"retouch,omitempty"`
	Upscale *bool   `json:"upscale,omitempty"`
}

// AIShadowLighting controls the generated drop shadow.
type AIShadowLighting struct {
	DropShadow *DropShadow `json:"dropShadow,omitempty"`
}

// DropShadow positions the AI drop shadow by light direction.
type DropShadow struct {
	Azimuth    *int `json:"azimuth,omitempty"`
	Elevation  *int `json:"elevation,omitempty"`
	Saturation *int `json:"saturation,omitempty"`
}

// AIGeneration produces new image content from a prompt.
type AIGeneration struct {
	TextPrompt *string `json:"textPrompt,omitempty"`
	Variation  *bool   `json:"variation,omitempty"`
}

// AICropping is content-aware cropping. Type is "smart", "face" or
// "object"; ObjectName applies to "object" only.
type AICropping struct {
	Type       *string `json:"type,omitempty"`
	ObjectName *string `json:"objectName,omitempty"`
	Width      *int    `json:"width,omitempty"`
	Height     *int    `json:"height,omitempty"`
}

// imageConfigWire is the JSON shape of an IMAGE config.
type imageConfigWire struct {
	Type         MediaType     `json:"type"`
	Basics       *Basics       `json:"basics,omitempty"`
	Overlays     []Overlay     `json:"overlays,omitempty"`
	Enhancements *Enhancements `json:"enhancements,omitempty"`
	AIMagic      *AIMagic      `json:"aiMagic,omitempty"`
}

func (c *TransformationConfig) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type MediaType `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	switch probe.Type {
	case MediaTypeImage:
		var w imageConfigWire
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		*c = TransformationConfig{
			Type:         MediaTypeImage,
			Basics:       w.Basics,
			Overlays:     w.Overlays,
			Enhancements: w.Enhancements,
			AIMagic:      w.AIMagic,
		}
		return nil
	case MediaTypeVideo:
		*c = TransformationConfig{
			Type: MediaTypeVideo,
			raw:  append(json.RawMessage(nil), data...),
		}
		return nil
	}
	return fmt.Errorf("unknown transformation config type %q", probe.Type)
}

func (c TransformationConfig) MarshalJSON() ([]byte, error) {
	if c.Type == MediaTypeVideo {
		if len(c.raw) > 0 {
			return c.raw, nil
		}
		return []byte(`{"type":"VIDEO"}`), nil
	}
	return json.Marshal(imageConfigWire{
		Type:         MediaTypeImage,
		Basics:       c.Basics,
		Overlays:     c.Overlays,
		Enhancements: c.Enhancements,
		AIMagic:      c.AIMagic,
	})
}

// PatchCategory applies a partial patch to one category of an IMAGE config,
// leaving every other category untouched. The merge is shallow at the
// category level and recursive within nested descriptors, so patching
// shadow.blur keeps shadow.saturation. Overlays are an ordered sequence and
// are replaced wholesale. A JSON null payload resets the category.
func (c *TransformationConfig) PatchCategory(cat Category, payload json.RawMessage) error {
	if c.Type != MediaTypeImage {
		return fmt.Errorf("category patches apply to IMAGE configs only")
	}
	if len(bytes.TrimSpace(payload)) == 0 || bytes.Equal(bytes.TrimSpace(payload), []byte("null")) {
		c.Reset(cat)
		return nil
	}

	switch cat {
	case CategoryBasics:
		var p Basics
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("invalid basics patch: %w", err)
		}
		c.Basics = mergeBasics(c.Basics, &p)
	case CategoryEnhancements:
		var p Enhancements
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("invalid enhancements patch: %w", err)
		}
		c.Enhancements = mergeEnhancements(c.Enhancements, &p)
	case CategoryAIMagic:
		var p AIMagic
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("invalid aiMagic patch: %w", err)
		}
		c.AIMagic = mergeAIMagic(c.AIMagic, &p)
	case CategoryOverlays:
		var p []Overlay
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("invalid overlays patch: %w", err)
		}
		c.Overlays = p
	default:
		return fmt.Errorf("unknown category %q", cat)
	}
	return nil
}

// Reset discards all fields of one category.
func (c *TransformationConfig) Reset(cat Category) {
	switch cat {
	case CategoryBasics:
		c.Basics = nil
	case CategoryOverlays:
		c.Overlays = nil
	case CategoryEnhancements:
		c.Enhancements = nil
	case CategoryAIMagic:
		c.AIMagic = nil
	}
}

// pick returns a copy of patch when it is set, otherwise a copy of base.
func pick[T any](base, patch *T) *T {
	if patch != nil {
		v := *patch
		return &v
	}
	if base != nil {
		v := *base
		return &v
	}
	return nil
}

func mergeBasics(base, patch *Basics) *Basics {
	if patch == nil {
		return base
	}
	if base == nil {
		base = &Basics{}
	}
	return &Basics{
		Width:       pick(base.Width, patch.Width),
		Height:      pick(base.Height, patch.Height),
		AspectRatio: pick(base.AspectRatio, patch.AspectRatio),
		CropMode:    pick(base.CropMode, patch.CropMode),
		Focus:       pick(base.Focus, patch.Focus),
		Rotation:    pick(base.Rotation, patch.Rotation),
		Radius:      pick(base.Radius, patch.Radius),
		Quality:     pick(base.Quality, patch.Quality),
		Format:      pick(base.Format, patch.Format),
	}
}

func mergeEnhancements(base, patch *Enhancements) *Enhancements {
	if patch == nil {
		return base
	}
	if base == nil {
		base = &Enhancements{}
	}
	return &Enhancements{
		Blur:       pick(base.Blur, patch.Blur),
		Sharpen:    pick(base.Sharpen, patch.Sharpen),
		Contrast:   pick(base.Contrast, patch.Contrast),
		Grayscale:  pick(base.Grayscale, patch.Grayscale),
		Shadow:     mergeShadow(base.Shadow, patch.Shadow),
		Background: mergeBackground(base.Background, patch.Background),
	}
}

func mergeShadow(base, patch *Shadow) *Shadow {
	if patch == nil {
		return base
	}
	if base == nil {
		base = &Shadow{}
	}
	return &Shadow{
		Blur:       pick(base.Blur, patch.Blur),
		Saturation: pick(base.Saturation, patch.Saturation),
		OffsetX:    pick(base.OffsetX, patch.OffsetX),
		OffsetY:    pick(base.OffsetY, patch.OffsetY),
	}
}

func mergeBackground(base, patch *Background) *Background {
	if patch == nil {
		return base
	}
	if base == nil {
		base = &Background{}
	}
	return &Background{
		Type:          pick(base.Type, patch.Type),
		Color:         pick(base.Color, patch.Color),
		BlurIntensity: pick(base.BlurIntensity, patch.BlurIntensity),
		Brightness:    pick(base.Brightness, patch.Brightness),
	}
}

func mergeAIMagic(base, patch *AIMagic) *AIMagic {
	if patch == nil {
		return base
	}
	if base == nil {
		base = &AIMagic{}
	}
	out := &AIMagic{
		Background:     base.Background,
		Editing:        base.Editing,
		ShadowLighting: base.ShadowLighting,
		Generation:     base.Generation,
		Cropping:       base.Cropping,
	}
	if patch.Background != nil {
		b := out.Background
		if b == nil {
			b = &AIBackground{}
		}
		out.Background = &AIBackground{
			Remove:       pick(b.Remove, patch.Background.Remove),
			Mode:         pick(b.Mode, patch.Background.Mode),
			ChangePrompt: pick(b.ChangePrompt, patch.Background.ChangePrompt),
		}
	}
	if patch.Editing != nil {
		e := out.Editing
		if e == nil {
			e = &AIEditing{}
		}
		out.Editing = &AIEditing{
			Prompt:  pick(e.Prompt, patch.Editing.Prompt),
			Retouch: pick(e.Retouch, patch.Editing.Retouch),
			Upscale: pick(e.Upscale, patch.Editing.Upscale),
		}
	}
	if patch.ShadowLighting != nil {
		s := out.ShadowLighting
		if s == nil {
			s = &AIShadowLighting{}
		}
		out.ShadowLighting = &AIShadowLighting{
			DropShadow: mergeDropShadow(s.DropShadow, patch.ShadowLighting.DropShadow),
		}
	}
	if patch.Generation != nil {
		g := out.Generation
		if g == nil {
			g = &AIGeneration{}
		}
		out.Generation = &AIGeneration{
			TextPrompt: pick(g.TextPrompt, patch.Generation.TextPrompt),
			Variation:  pick(g.Variation, patch.Generation.Variation),
		}
	}
	if patch.Cropping != nil {
		cr := out.Cropping
		if cr == nil {
			cr = &AICropping{}
		}
		out.Cropping = &AICropping{
			Type:       pick(cr.Type, patch.Cropping.Type),
			ObjectName: pick(cr.ObjectName, patch.Cropping.ObjectName),
			Width:      pick(cr.Width, patch.Cropping.Width),
			Height:     pick(cr.Height, patch.Cropping.Height),
		}
	}
	return out
}

func mergeDropShadow(base, patch *DropShadow) *DropShadow {
	if patch == nil {
		return base
	}
	if base == nil {
		base = &DropShadow{}
	}
	return &DropShadow{
		Azimuth:    pick(base.Azimuth, patch.Azimuth),
		Elevation:  pick(base.Elevation, patch.Elevation),
		Saturation: pick(base.Saturation, patch.Saturation),
	}
}

// ParseOptionalInt parses free-text numeric input. Anything that is not a
// whole number yields nil, never zero, so an untouched field stays absent.
func ParseOptionalInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}
