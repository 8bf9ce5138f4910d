package model

import (
	"strings"
	"time"
)

// MediaType distinguishes the two kinds of media the studio can edit.
type MediaType string

const (
	MediaTypeImage MediaType = "IMAGE"
	MediaTypeVideo MediaType = "VIDEO"
)

// NormalizeMediaType maps a free-form filter value ("image", "Video", ...)
// onto the stored enumeration. ok is false for anything else.
func NormalizeMediaType(s string) (MediaType, bool) {
	switch MediaType(strings.ToUpper(strings.TrimSpace(s))) {
	case MediaTypeImage:
		return MediaTypeImage, true
	case MediaTypeVideo:
		return MediaTypeVideo, true
	}
	return "", false
}

// Media is one uploaded item. The original bytes live at the CDN; this row
// stores the source URL, the transformation tree and the derived URL.
type Media struct {
	ID             string                `json:"id"`
	UserID         string                `json:"userId"`
	FileName       string                `json:"fileName"`
	OriginalURL    string                `json:"originalUrl"`
	MediaType      MediaType             `json:"mediaType"`
	Transforms     *TransformationConfig `json:"transformationConfig,omitempty"`
	TransformedURL string                `json:"transformedUrl,omitempty"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
}
