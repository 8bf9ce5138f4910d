package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/leca/mediastudio/internal/api"
	"github.com/leca/mediastudio/internal/auth"
	"github.com/leca/mediastudio/internal/billing"
	"github.com/leca/mediastudio/internal/database"
	"github.com/leca/mediastudio/internal/model"
	"github.com/leca/mediastudio/internal/validate"
)

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Signup handles POST /api/auth/signup.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "invalid JSON body")
		return
	}
	if fields := validate.Struct(req); fields != nil {
		api.FailFields(w, "invalid signup request", fields)
		return
	}

	if _, err := h.DB.GetUserByEmail(req.Email); err == nil {
		api.Conflict(w, api.CodeDuplicate, "User already exists")
		return
	} else if !errors.Is(err, database.ErrNotFound) {
		api.Internal(w, "failed to look up user")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		api.Internal(w, "failed to create user")
		return
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:          uuid.New().String(),
		Email:       req.Email,
		Password:    hash,
		Name:        req.Name,
		Plan:        billing.Free.Name,
		UploadLimit: billing.Free.UploadLimit,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.DB.CreateUser(user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			api.Conflict(w, api.CodeDuplicate, "User already exists")
			return
		}
		api.Internal(w, "failed to create user")
		return
	}

	api.Success(w, http.StatusCreated, user)
}

// Login handles POST /api/auth/login. On success it sets the session cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "invalid JSON body")
		return
	}
	if fields := validate.Struct(req); fields != nil {
		api.FailFields(w, "invalid login request", fields)
		return
	}

	user, err := h.DB.GetUserByEmail(req.Email)
	if err != nil || !auth.CheckPassword(user.Password, req.Password) {
		// Same answer for unknown email and wrong password.
		api.Fail(w, http.StatusUnauthorized, api.CodeUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.Sessions.IssueToken(user.ID, user.Email)
	if err != nil {
		api.Internal(w, "failed to create session")
		return
	}
	h.Sessions.SetCookie(w, token)

	api.Success(w, http.StatusOK, user)
}

// Logout handles POST /api/auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.ClearCookie(w)
	api.Success(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// UploadLimit handles GET /api/auth/upload-limit.
func (h *Handler) UploadLimit(w http.ResponseWriter, r *http.Request) {
	claims := api.Session(r.Context())

	user, err := h.DB.GetUser(claims.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			api.NotFound(w, "User not found")
			return
		}
		api.Internal(w, "failed to load user")
		return
	}
	count, err := h.DB.CountMedia(user.ID)
	if err != nil {
		api.Internal(w, "failed to count uploads")
		return
	}

	api.Success(w, http.StatusOK, map[string]interface{}{
		"canUpload":      count < user.UploadLimit,
		"currentUploads": count,
		"uploadLimit":    user.UploadLimit,
	})
}
