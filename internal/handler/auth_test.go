package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/leca/mediastudio/internal/cdn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestSignupCreatesUser(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()

	resp, got := env.do(c, http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
		"name":     "Alice",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, got.Success)

	// Password hash never leaves the server.
	assert.NotContains(t, string(got.Data), "password")
	assert.Contains(t, string(got.Data), `"plan":"free"`)
}

func TestSignupDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.signup(env.client(), "alice@example.com")

	resp, got := env.do(env.client(), http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
		"name":     "Other Alice",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	require.NotNil(t, got.Error)
	assert.Equal(t, "duplicate", got.Error.Code)
}

func TestSignupValidationListsEveryField(t *testing.T) {
	env := newTestEnv(t)

	resp, got := env.do(env.client(), http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    "not-an-email",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, got.Error)
	assert.Equal(t, "validation", got.Error.Code)
	assert.Len(t, got.Error.Fields, 3)
	assert.Contains(t, got.Error.Fields, "email")
	assert.Contains(t, got.Error.Fields, "password")
	assert.Contains(t, got.Error.Fields, "name")
}

func TestLoginWrongCredentialsIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	env.signup(env.client(), "alice@example.com")

	resp, wrongPassword := env.do(env.client(), http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, unknownEmail := env.do(env.client(), http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Unknown email and wrong password get the same answer.
	require.NotNil(t, wrongPassword.Error)
	require.NotNil(t, unknownEmail.Error)
	assert.Equal(t, wrongPassword.Error.Message, unknownEmail.Error.Message)
}

func TestLoginSetsSessionCookie(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()
	env.signup(c, "alice@example.com")

	// A session-only route works with the jarred cookie.
	resp, got := env.do(c, http.MethodGet, "/api/auth/upload-limit", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var limits struct {
		CanUpload      bool `json:"canUpload"`
		CurrentUploads int  `json:"currentUploads"`
		UploadLimit    int  `json:"uploadLimit"`
	}
	require.NoError(t, json.Unmarshal(got.Data, &limits))
	assert.True(t, limits.CanUpload)
	assert.Zero(t, limits.CurrentUploads)
	assert.Equal(t, 2, limits.UploadLimit)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{
		"/api/auth/upload-limit",
		"/api/upload-auth",
		"/api/subscription",
	} {
		resp, got := env.do(env.client(), http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		require.NotNil(t, got.Error)
		assert.Equal(t, "unauthorized", got.Error.Code)
	}
}

func TestUploadLimitStoreFailureIsInternal(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()
	env.signup(c, "alice@example.com")

	// A failing store must not masquerade as a missing user.
	require.NoError(t, env.db.Close())

	resp, got := env.do(c, http.MethodGet, "/api/auth/upload-limit", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.NotNil(t, got.Error)
	assert.Equal(t, "internal", got.Error.Code)
}

func TestLogoutEndsSession(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()
	env.signup(c, "alice@example.com")

	resp, _ := env.do(c, http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(c, http.MethodGet, "/api/auth/upload-limit", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUploadAuthMintsSignedParams(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()
	env.signup(c, "alice@example.com")

	resp, got := env.do(c, http.MethodGet, "/api/upload-auth", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var params struct {
		Token     string `json:"token"`
		Expire    int64  `json:"expire"`
		Signature string `json:"signature"`
		PublicKey string `json:"publicKey"`
	}
	require.NoError(t, json.Unmarshal(got.Data, &params))
	assert.NotEmpty(t, params.Token)
	assert.Equal(t, "public_test", params.PublicKey)
	// Verifiable with the configured private key.
	assert.Equal(t, cdn.Sign("private_test", params.Token, params.Expire), params.Signature)
}
