package handler

import (
	"net/http"
	"time"

	"github.com/leca/mediastudio/internal/api"
	"github.com/leca/mediastudio/internal/imageproc"
	"github.com/leca/mediastudio/internal/model"
)

var previewClient = &http.Client{Timeout: 15 * time.Second}

// PreviewMedia handles GET /api/media/{media_id}/preview. It fetches the
// original and renders the locally supported subset of the stored config,
// so the studio can preview basics and enhancements without spending CDN
// transformations. This is the one endpoint that returns bytes instead of
// the JSON envelope; errors still use the envelope.
func (h *Handler) PreviewMedia(w http.ResponseWriter, r *http.Request) {
	media := h.ownedMedia(w, r)
	if media == nil {
		return
	}
	if media.MediaType != model.MediaTypeImage {
		api.BadRequest(w, "previews are supported for images only")
		return
	}

	resp, err := previewClient.Get(media.OriginalURL)
	if err != nil {
		api.Upstream(w, "failed to fetch original")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		api.Upstream(w, "failed to fetch original")
		return
	}

	out, format, err := imageproc.Preview(resp.Body, media.Transforms)
	if err != nil {
		api.Internal(w, "failed to render preview")
		return
	}

	w.Header().Set("Content-Type", "image/"+format)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}
