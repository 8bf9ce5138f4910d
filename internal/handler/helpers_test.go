package handler_test

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/leca/mediastudio/internal/auth"
	"github.com/leca/mediastudio/internal/billing"
	"github.com/leca/mediastudio/internal/config"
	"github.com/leca/mediastudio/internal/database"
	"github.com/leca/mediastudio/internal/model"
	"github.com/leca/mediastudio/internal/router"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test"

type testEnv struct {
	t      *testing.T
	server *httptest.Server
	db     database.Database
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.NewSQLiteDB("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		BaseURL:             "http://localhost:3000",
		JWTSecret:           "test-secret",
		SessionTTL:          time.Hour,
		CDNPublicKey:        "public_test",
		CDNPrivateKey:       "private_test",
		UploadTokenTTL:      30 * time.Minute,
		StripeWebhookSecret: testWebhookSecret,
	}
	sessions := auth.NewSessions(cfg.JWTSecret, cfg.SessionTTL, false)
	bill := billing.New(db, "", cfg.StripeWebhookSecret, "price_test", cfg.BaseURL)

	srv := router.New(db, cfg, sessions, bill)
	server := httptest.NewServer(srv.Router)
	t.Cleanup(server.Close)

	return &testEnv{t: t, server: server, db: db}
}

// client returns an HTTP client with its own cookie jar, i.e. its own session.
func (e *testEnv) client() *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(e.t, err)
	return &http.Client{Jar: jar}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func (e *testEnv) do(c *http.Client, method, path string, body interface{}) (*http.Response, envelope) {
	e.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(e.t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Do(req)
	require.NoError(e.t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(e.t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

// signup registers a user and logs the client in, returning the user record.
func (e *testEnv) signup(c *http.Client, email string) *model.User {
	e.t.Helper()

	resp, env := e.do(c, http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    email,
		"password": "password123",
		"name":     "Test User",
	})
	require.Equal(e.t, http.StatusCreated, resp.StatusCode)

	var user model.User
	require.NoError(e.t, json.Unmarshal(env.Data, &user))

	resp, _ = e.do(c, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": "password123",
	})
	require.Equal(e.t, http.StatusOK, resp.StatusCode)

	return &user
}

// createMedia uploads a media record through the API and returns it.
func (e *testEnv) createMedia(c *http.Client, fileName string, cfg *model.TransformationConfig) *model.Media {
	e.t.Helper()

	body := map[string]interface{}{
		"fileName":    fileName,
		"originalUrl": "https://cdn.example.com/" + fileName,
		"mediaType":   "IMAGE",
	}
	if cfg != nil {
		body["transformationConfig"] = cfg
	}
	resp, env := e.do(c, http.MethodPost, "/api/media", body)
	require.Equal(e.t, http.StatusCreated, resp.StatusCode)

	var m model.Media
	require.NoError(e.t, json.Unmarshal(env.Data, &m))
	return &m
}

// postWebhook delivers a raw event payload with a signature computed under
// the given secret, the same scheme the provider uses: v1 is
// HMAC-SHA256(secret, "<timestamp>.<payload>").
func (e *testEnv) postWebhook(payload []byte, secret string) (*http.Response, envelope) {
	e.t.Helper()

	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	sig := fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))

	req, err := http.NewRequest(http.MethodPost, e.server.URL+"/api/stripe/webhook", bytes.NewReader(payload))
	require.NoError(e.t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", sig)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(e.t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(e.t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func intp(v int) *int { return &v }
