package handler

import (
	"net/http"

	"github.com/leca/mediastudio/internal/api"
	"github.com/leca/mediastudio/internal/cdn"
)

// UploadAuth handles GET /api/upload-auth. It mints the short-lived signed
// parameters a browser needs to upload directly to the CDN.
func (h *Handler) UploadAuth(w http.ResponseWriter, r *http.Request) {
	if h.Config.CDNPrivateKey == "" {
		api.Upstream(w, "Upload authentication is not configured")
		return
	}

	params := cdn.NewUploadAuth(h.Config.CDNPublicKey, h.Config.CDNPrivateKey, h.Config.UploadTokenTTL)
	api.Success(w, http.StatusOK, params)
}
