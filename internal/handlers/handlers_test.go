package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/geminiweb/backend/internal/config"
	"github.com/geminiweb/backend/internal/database"
	"github.com/geminiweb/backend/internal/handlers"
	"github.com/geminiweb/backend/internal/routes"
	"github.com/geminiweb/backend/internal/services"
	"github.com/geminiweb/backend/internal/upstream"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, upstreamURL string) *fiber.App {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:       "test-secret",
		TokenExpiry:     time.Hour,
		UpstreamBaseURL: upstreamURL,
		UpstreamTimeout: 5 * time.Second,
	}

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	authService := services.NewAuthService(db, cfg)
	settingsService := services.NewSettingsService(db)
	historyService := services.NewHistoryService(db)
	client := upstream.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamTimeout)

	app := fiber.New()
	routes.Setup(app, cfg,
		handlers.NewAuthHandler(authService),
		handlers.NewSettingsHandler(settingsService),
		handlers.NewProxyHandler(client),
		handlers.NewChatHandler(settingsService, historyService, client),
		handlers.NewHealthHandler(db),
	)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &parsed), "body: %s", raw)
	}
	return resp, parsed
}

func TestRegisterLoginMeFlow(t *testing.T) {
	app := newTestApp(t, "http://unused.invalid")

	resp, body := doJSON(t, app, http.MethodPost, "/api/register", "",
		map[string]string{"username": "alice", "password": "s3cret"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "alice", body["username"])
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	resp, body = doJSON(t, app, http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice", body["username"])

	resp, _ = doJSON(t, app, http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodPost, "/api/login", "",
		map[string]string{"username": "alice", "password": "s3cret"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["token"])
}

func TestRegisterValidationAndConflict(t *testing.T) {
	app := newTestApp(t, "http://unused.invalid")

	resp, body := doJSON(t, app, http.MethodPost, "/api/register", "",
		map[string]string{"username": "bob", "password": "abc"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, body["error"])

	resp, _ = doJSON(t, app, http.MethodPost, "/api/register", "",
		map[string]string{"username": "bob", "password": "abcd"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodPost, "/api/register", "",
		map[string]string{"username": "bob", "password": "other"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
}

func TestLoginErrorsAreDistinguishable(t *testing.T) {
	app := newTestApp(t, "http://unused.invalid")

	doJSON(t, app, http.MethodPost, "/api/register", "",
		map[string]string{"username": "carol", "password": "password"})

	resp, _ := doJSON(t, app, http.MethodPost, "/api/login", "",
		map[string]string{"username": "nobody", "password": "password"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/login", "",
		map[string]string{"username": "carol", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSettingsOverHTTP(t *testing.T) {
	app := newTestApp(t, "http://unused.invalid")

	_, body := doJSON(t, app, http.MethodPost, "/api/register", "",
		map[string]string{"username": "dav", "password": "password"})
	token := body["token"].(string)

	resp, body := doJSON(t, app, http.MethodGet, "/api/settings", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "", body["apiUrl"])
	assert.Equal(t, config.DefaultModel, body["defaultModel"])

	resp, _ = doJSON(t, app, http.MethodPost, "/api/settings", token,
		map[string]string{"apiUrl": "https://api.example.com", "apiKey": "K", "defaultModel": "gemini-3-flash"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Partial payload clears the omitted fields.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/settings", token,
		map[string]string{"apiUrl": "https://api.example.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = doJSON(t, app, http.MethodGet, "/api/settings", token, nil)
	assert.Equal(t, "https://api.example.com", body["apiUrl"])
	assert.Equal(t, "", body["apiKey"])
	assert.Equal(t, config.DefaultModel, body["defaultModel"])

	resp, _ = doJSON(t, app, http.MethodGet, "/api/settings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProxyRequiresAPIKey(t *testing.T) {
	var hits atomic.Int32
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"models":[]}`))
	}))
	defer stub.Close()

	app := newTestApp(t, stub.URL)

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1beta/models", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
	assert.EqualValues(t, 0, hits.Load(), "proxy must reject before any network call")
}

func TestProxyRelaysUpstream(t *testing.T) {
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models", r.URL.Path)
		assert.Equal(t, "user-key", r.Header.Get("x-goog-api-key"))
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"message":"API key not valid"}}`))
	}))
	defer stub.Close()

	app := newTestApp(t, stub.URL)

	req := httptest.NewRequest(http.MethodGet, "/api/v1beta/models", nil)
	req.Header.Set("x-goog-api-key", "user-key")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"error":{"message":"API key not valid"}}`, string(raw))
}

func TestTestConnectionEndpoint(t *testing.T) {
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"models":[{},{},{}]}`))
	}))
	defer stub.Close()

	app := newTestApp(t, "http://unused.invalid")

	resp, body := doJSON(t, app, http.MethodPost, "/api/test-connection", "",
		map[string]string{"apiUrl": "", "apiKey": "k"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])

	resp, body = doJSON(t, app, http.MethodPost, "/api/test-connection", "",
		map[string]string{"apiUrl": stub.URL, "apiKey": "k"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 3, body["modelCount"])
}

func TestGenerateUsesStoredSettings(t *testing.T) {
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-3-pro-preview:generateContent", r.URL.Path)
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"hello back"}]}}]}`))
	}))
	defer stub.Close()

	app := newTestApp(t, "http://unused.invalid")

	_, body := doJSON(t, app, http.MethodPost, "/api/register", "",
		map[string]string{"username": "eve", "password": "password"})
	token := body["token"].(string)

	// Unconfigured settings → caller is told to configure first.
	resp, _ := doJSON(t, app, http.MethodPost, "/api/generate", token,
		map[string]string{"message": "hi"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	doJSON(t, app, http.MethodPost, "/api/settings", token,
		map[string]string{"apiUrl": stub.URL, "apiKey": "K"})

	resp, body = doJSON(t, app, http.MethodPost, "/api/generate", token,
		map[string]string{"message": "hi"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hello back", body["text"])
	assert.Equal(t, "gemini-3-pro-preview", body["model"])

	_, body = doJSON(t, app, http.MethodGet, "/api/history", token, nil)
	messages := body["messages"].([]interface{})
	require.Len(t, messages, 1)
	first := messages[0].(map[string]interface{})
	assert.Equal(t, "hi", first["userMessage"])
	assert.Equal(t, "hello back", first["aiMessage"])
}
