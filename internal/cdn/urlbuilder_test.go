package cdn

import (
	"strings"
	"testing"
	"time"

	"github.com/leca/mediastudio/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int       { return &v }
func boolp(v bool) *bool    { return &v }
func strp(v string) *string { return &v }

func TestBuildURLNilConfig(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/a.jpg", BuildURL("https://cdn.example.com/a.jpg", nil))
}

func TestBuildURLEmptyConfig(t *testing.T) {
	cfg := &model.TransformationConfig{Type: model.MediaTypeImage}
	assert.Equal(t, "https://cdn.example.com/a.jpg", BuildURL("https://cdn.example.com/a.jpg", cfg))
}

func TestBuildURLVideoPassthrough(t *testing.T) {
	cfg := &model.TransformationConfig{Type: model.MediaTypeVideo}
	assert.Equal(t, "https://cdn.example.com/a.mp4", BuildURL("https://cdn.example.com/a.mp4", cfg))
}

func TestBuildURLBasics(t *testing.T) {
	cfg := &model.TransformationConfig{
		Type: model.MediaTypeImage,
		Basics: &model.Basics{
			Width:       intp(800),
			Height:      intp(600),
			AspectRatio: strp("16:9"),
			CropMode:    strp("maintain_ratio"),
			Rotation:    intp(90),
			Quality:     intp(80),
			Format:      strp("webp"),
		},
	}
	got := BuildURL("https://cdn.example.com/a.jpg", cfg)
	assert.Equal(t, "https://cdn.example.com/a.jpg?tr=w-800,h-600,ar-16-9,c-maintain_ratio,rt-90,q-80,f-webp", got)
}

func TestBuildURLAppendsToExistingQuery(t *testing.T) {
	cfg := &model.TransformationConfig{
		Type:   model.MediaTypeImage,
		Basics: &model.Basics{Width: intp(100)},
	}
	got := BuildURL("https://cdn.example.com/a.jpg?v=2", cfg)
	assert.Equal(t, "https://cdn.example.com/a.jpg?v=2&tr=w-100", got)
}

func TestBuildURLZeroValuesEmit(t *testing.T) {
	// blur:0 is a set field and must appear in the URL.
	cfg := &model.TransformationConfig{
		Type:         model.MediaTypeImage,
		Enhancements: &model.Enhancements{Blur: intp(0)},
	}
	got := BuildURL("https://cdn.example.com/a.jpg", cfg)
	assert.Equal(t, "https://cdn.example.com/a.jpg?tr=bl-0", got)
}

func TestBuildURLEnhancements(t *testing.T) {
	cfg := &model.TransformationConfig{
		Type: model.MediaTypeImage,
		Enhancements: &model.Enhancements{
			Sharpen:   intp(5),
			Contrast:  boolp(true),
			Grayscale: boolp(true),
			Shadow: &model.Shadow{
				Blur:       intp(10),
				Saturation: intp(30),
				OffsetX:    intp(2),
				OffsetY:    intp(-3),
			},
		},
	}
	got := BuildURL("https://cdn.example.com/a.jpg", cfg)
	assert.Equal(t, "https://cdn.example.com/a.jpg?tr=e-sharpen-5,e-contrast,e-grayscale,e-shadow-bl-10_st-30_x-2_y-N3", got)
}

func TestBuildURLBackgrounds(t *testing.T) {
	cases := []struct {
		name string
		bg   *model.Background
		want string
	}{
		{"solid", &model.Background{Type: strp("solid"), Color: strp("FF0000")}, "bg-FF0000"},
		{"blurred auto", &model.Background{Type: strp("blurred"), BlurIntensity: &model.BlurIntensity{Auto: true}}, "bg-blurred_auto"},
		{"blurred value", &model.Background{Type: strp("blurred"), BlurIntensity: &model.BlurIntensity{Value: 40}, Brightness: intp(-50)}, "bg-blurred_40_N50"},
		{"dominant", &model.Background{Type: strp("dominant")}, "bg-dominant"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &model.TransformationConfig{
				Type:         model.MediaTypeImage,
				Enhancements: &model.Enhancements{Background: tc.bg},
			}
			got := BuildURL("https://cdn.example.com/a.jpg", cfg)
			assert.Equal(t, "https://cdn.example.com/a.jpg?tr="+tc.want, got)
		})
	}
}

func TestBuildURLAIMagic(t *testing.T) {
	cfg := &model.TransformationConfig{
		Type: model.MediaTypeImage,
		AIMagic: &model.AIMagic{
			Background: &model.AIBackground{Remove: boolp(true), Mode: strp("economy")},
			Editing:    &model.AIEditing{Prompt: strp("remove scratches"), Upscale: boolp(true)},
			ShadowLighting: &model.AIShadowLighting{
				DropShadow: &model.DropShadow{Azimuth: intp(215), Elevation: intp(45)},
			},
		},
	}
	got := BuildURL("https://cdn.example.com/a.jpg", cfg)
	assert.Contains(t, got, "e-bgremove")
	assert.Contains(t, got, "e-edit-prompt-remove+scratches")
	assert.Contains(t, got, "e-upscale")
	assert.Contains(t, got, "e-dropshadow-az-215_el-45")
}

func TestBuildURLOverlayGroups(t *testing.T) {
	cfg := &model.TransformationConfig{
		Type: model.MediaTypeImage,
		Overlays: []model.Overlay{
			{Kind: model.OverlayText, Text: &model.TextOverlay{Text: "hello world", FontSize: intp(24), Bold: boolp(true)}},
			{Kind: model.OverlaySolid, Solid: &model.SolidOverlay{Color: "00FF00", Width: 200, Height: 100}},
			{Kind: model.OverlayGradient, Gradient: &model.GradientOverlay{FromColor: "FF0000", ToColor: "0000FF"}},
		},
	}
	got := BuildURL("https://cdn.example.com/a.jpg", cfg)

	assert.Contains(t, got, "l-text,i-hello+world,fs-24,tg-b,l-end")
	assert.Contains(t, got, "l-image,i-ik_canvas,bg-00FF00,w-200,h-100,l-end")
	assert.Contains(t, got, "e-gradient-ld-180_from-FF0000_to-0000FF")

	// Layer groups keep sequence order, which is the z-order.
	assert.Less(t, strings.Index(got, "l-text"), strings.Index(got, "bg-00FF00"))
	assert.Less(t, strings.Index(got, "bg-00FF00"), strings.Index(got, "e-gradient"))
}

func TestBuildURLImageOverlayNegativeOffset(t *testing.T) {
	cfg := &model.TransformationConfig{
		Type: model.MediaTypeImage,
		Overlays: []model.Overlay{
			{Kind: model.OverlayImage, Image: &model.ImageOverlay{Src: "logo.png", X: intp(-10), Y: intp(5)}},
		},
	}
	got := BuildURL("https://cdn.example.com/a.jpg", cfg)
	assert.Contains(t, got, "l-image,i-logo.png,lx-N10,ly-5,l-end")
}

func TestUploadAuthSignature(t *testing.T) {
	ua := NewUploadAuth("public_abc", "private_xyz", 30*time.Minute)
	require.NotEmpty(t, ua.Token)
	assert.Equal(t, "public_abc", ua.PublicKey)
	assert.Greater(t, ua.Expire, int64(0))

	// Signature is reproducible from the same inputs.
	assert.Equal(t, Sign("private_xyz", ua.Token, ua.Expire), ua.Signature)
	// And bound to the key.
	assert.NotEqual(t, Sign("other_key", ua.Token, ua.Expire), ua.Signature)
}

func TestSignKnownVector(t *testing.T) {
	// hex(HMAC-SHA1("key", "token1700000000"))
	got := Sign("key", "token", 1700000000)
	assert.Len(t, got, 40)
	assert.Equal(t, Sign("key", "token", 1700000000), got)
	assert.NotEqual(t, Sign("key", "token", 1700000001), got)
}
