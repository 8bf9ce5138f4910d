package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/leca/mediastudio/internal/api"
	"github.com/leca/mediastudio/internal/cdn"
	"github.com/leca/mediastudio/internal/database"
	"github.com/leca/mediastudio/internal/model"
	"github.com/leca/mediastudio/internal/validate"
)

type createMediaRequest struct {
	FileName             string                      `json:"fileName" validate:"required"`
	OriginalURL          string                      `json:"originalUrl" validate:"required,url"`
	MediaType            string                      `json:"mediaType" validate:"required"`
	TransformationConfig *model.TransformationConfig `json:"transformationConfig"`
}

type updateMediaRequest struct {
	TransformationConfig *model.TransformationConfig `json:"transformationConfig" validate:"required"`
}

type listMediaQuery struct {
	Page     int    `json:"page" validate:"gte=1"`
	PageSize int    `json:"pageSize" validate:"gte=1"`
	Filter   string `json:"filter"`
}

// CreateMedia handles POST /api/media. The insert is quota-gated: it only
// lands while the user's media count is below their plan limit.
func (h *Handler) CreateMedia(w http.ResponseWriter, r *http.Request) {
	claims := api.Session(r.Context())

	var req createMediaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "invalid JSON body")
		return
	}
	if fields := validate.Struct(req); fields != nil {
		api.FailFields(w, "invalid media", fields)
		return
	}

	mediaType, ok := model.NormalizeMediaType(req.MediaType)
	if !ok {
		api.FailFields(w, "invalid media", map[string]string{"mediaType": "must be IMAGE or VIDEO"})
		return
	}
	if req.TransformationConfig != nil && req.TransformationConfig.Type != mediaType {
		api.FailFields(w, "invalid media", map[string]string{
			"transformationConfig": "config type must match mediaType",
		})
		return
	}

	user, err := h.DB.GetUser(claims.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			api.NotFound(w, "User not found")
			return
		}
		api.Internal(w, "failed to load user")
		return
	}

	now := time.Now().UTC()
	media := &model.Media{
		ID:             uuid.New().String(),
		UserID:         user.ID,
		FileName:       req.FileName,
		OriginalURL:    req.OriginalURL,
		MediaType:      mediaType,
		Transforms:     req.TransformationConfig,
		TransformedURL: cdn.BuildURL(req.OriginalURL, req.TransformationConfig),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.DB.CreateMedia(media, user.UploadLimit); err != nil {
		if errors.Is(err, database.ErrQuotaExceeded) {
			api.Conflict(w, api.CodeQuotaExceeded, "Upload limit reached. Upgrade to Pro plan for more uploads.")
			return
		}
		api.Internal(w, "failed to create media record")
		return
	}

	api.Success(w, http.StatusCreated, media)
}

// GetMedia handles GET /api/media/{media_id}.
func (h *Handler) GetMedia(w http.ResponseWriter, r *http.Request) {
	media := h.ownedMedia(w, r)
	if media == nil {
		return
	}
	api.Success(w, http.StatusOK, media)
}

// ListMedia handles GET /api/media. Without a session it degrades to an
// empty page rather than failing, so the gallery can always render.
func (h *Handler) ListMedia(w http.ResponseWriter, r *http.Request) {
	claims := api.Session(r.Context())
	if claims == nil {
		api.Success(w, http.StatusOK, map[string]interface{}{
			"media":  []*model.Media{},
			"isNext": false,
		})
		return
	}

	q := listMediaQuery{Page: 1, PageSize: 10}
	if v := r.URL.Query().Get("page"); v != "" {
		q.Page, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("pageSize"); v != "" {
		q.PageSize, _ = strconv.Atoi(v)
	}
	q.Filter = r.URL.Query().Get("filter")

	if fields := validate.Struct(q); fields != nil {
		api.FailFields(w, "invalid pagination query", fields)
		return
	}

	var kind model.MediaType
	if q.Filter != "" {
		normalized, ok := model.NormalizeMediaType(q.Filter)
		if !ok {
			api.FailFields(w, "invalid pagination query", map[string]string{"filter": "must be IMAGE or VIDEO"})
			return
		}
		kind = normalized
	}

	items, total, err := h.DB.ListMedia(claims.UserID, kind, q.Page, q.PageSize)
	if err != nil {
		api.Internal(w, "failed to list media")
		return
	}
	if items == nil {
		items = []*model.Media{}
	}

	api.Success(w, http.StatusOK, map[string]interface{}{
		"media":  items,
		"isNext": total > (q.Page-1)*q.PageSize+q.PageSize,
	})
}

// UpdateMedia handles PATCH /api/media/{media_id}: a full-tree replace of
// the transformation config. The derived URL is recomputed on every save.
func (h *Handler) UpdateMedia(w http.ResponseWriter, r *http.Request) {
	media := h.ownedMedia(w, r)
	if media == nil {
		return
	}

	var req updateMediaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "invalid JSON body")
		return
	}
	if fields := validate.Struct(req); fields != nil {
		api.FailFields(w, "invalid media update", fields)
		return
	}
	if req.TransformationConfig.Type != media.MediaType {
		api.FailFields(w, "invalid media update", map[string]string{
			"transformationConfig": "config type must match mediaType",
		})
		return
	}

	h.saveTransforms(w, media, req.TransformationConfig)
}

// PatchTransforms handles PATCH /api/media/{media_id}/transforms/{category}.
// The body is a partial patch for one category, shallow-merged at the
// category level and recursively within nested descriptors; other
// categories are untouched. A JSON null body resets the category.
func (h *Handler) PatchTransforms(w http.ResponseWriter, r *http.Request) {
	media := h.ownedMedia(w, r)
	if media == nil {
		return
	}

	cat, ok := model.ParseCategory(chi.URLParam(r, "category"))
	if !ok {
		api.BadRequest(w, "unknown transformation category")
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		api.BadRequest(w, "failed to read body")
		return
	}

	cfg := media.Transforms
	if cfg == nil {
		cfg = &model.TransformationConfig{Type: media.MediaType}
	}
	if err := cfg.PatchCategory(cat, payload); err != nil {
		api.BadRequest(w, err.Error())
		return
	}

	h.saveTransforms(w, media, cfg)
}

// saveTransforms persists a new config tree for media and responds with the
// updated record.
func (h *Handler) saveTransforms(w http.ResponseWriter, media *model.Media, cfg *model.TransformationConfig) {
	transformedURL := cdn.BuildURL(media.OriginalURL, cfg)
	if err := h.DB.UpdateMediaTransforms(media.ID, cfg, transformedURL); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			api.NotFound(w, "Media not found")
			return
		}
		api.Internal(w, "failed to update media")
		return
	}

	media.Transforms = cfg
	media.TransformedURL = transformedURL
	media.UpdatedAt = time.Now().UTC()
	api.Success(w, http.StatusOK, media)
}

// ownedMedia loads the media row from the URL and enforces ownership.
// It writes the error response and returns nil when the request cannot
// proceed.
func (h *Handler) ownedMedia(w http.ResponseWriter, r *http.Request) *model.Media {
	claims := api.Session(r.Context())
	mediaID := chi.URLParam(r, "media_id")

	media, err := h.DB.GetMedia(mediaID)
	if err != nil {
		api.NotFound(w, "Media not found")
		return nil
	}
	if media.UserID != claims.UserID {
		api.Forbidden(w, "You do not own this media")
		return nil
	}
	return media
}
