package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abaevpavel/pdfer-base/config"
	"github.com/abaevpavel/pdfer-base/handler"
	"github.com/abaevpavel/pdfer-base/render"
	"github.com/abaevpavel/pdfer-base/service"
)

func testRouter(t *testing.T, jwtSecret string) (http.Handler, string) {
	t.Helper()
	return testRouterWith(t, func(cfg *config.Config) { cfg.Auth.JWTSecret = jwtSecret })
}

func testRouterWith(t *testing.T, configure func(*config.Config)) (http.Handler, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Server:  config.ServerConfig{Port: 8080, RateLimit: 100, RateLimitWindow: 60},
		Output:  config.OutputConfig{RootURL: "http://reports.test", OutputDir: dir},
		Storage: config.StorageConfig{Driver: config.StorageLocal},
		Auth:    config.AuthConfig{TokenExpireHours: 1},
		Users:   []config.User{{Username: "u", Password: "p", Tenant: "t"}},
	}
	configure(cfg)

	storage := service.NewLocalStorage(&cfg.Output)
	renderer, err := render.NewHTMLRenderer()
	require.NoError(t, err)
	store := service.NewReportStore(10)

	return newRouter(cfg,
		handler.NewAuthHandler(cfg),
		handler.NewScopeHandler(storage, service.NativeExporter{}, renderer, store, cfg.Server.MaxBodyBytes),
		handler.NewReportHandler(storage, store),
	), dir
}

func TestRouterHealth(t *testing.T) {
	router, _ := testRouter(t, "")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouterGenerateAndServeArtifact(t *testing.T) {
	router, dir := testRouter(t, "")

	body := `{"categories":[{"name":"Paint","total":"1,500","subcategories":[{"items":[{"longDescription":"EXP[2+2]EXP coats"}]}]}]}`
	req := httptest.NewRequest("POST", "/api/internal-scope", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response handler.GenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Contains(t, response.Body.Data, `"longDescription":"4 coats"`)
	assert.Contains(t, response.Body.Data, `"totalFormatted":"1,500"`)
	require.True(t, strings.HasPrefix(response.Body.InternalScope, "http://reports.test/static/internal_scope_"))

	name := strings.TrimPrefix(response.Body.InternalScope, "http://reports.test/static/")
	_, err := os.Stat(filepath.Join(dir, name))
	require.NoError(t, err)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/static/"+name, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
}

func TestRouterRequiresTokenWhenAuthEnabled(t *testing.T) {
	router, _ := testRouter(t, "secret")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/internal-scope/resolve", strings.NewReader("{}")))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	login := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(`{"username":"u","password":"p"}`))
	login.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, login)
	require.Equal(t, http.StatusOK, w.Code)

	var token handler.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &token))

	w = httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/internal-scope/resolve", strings.NewReader("{}"))
	req.Header.Set("Authorization", "Bearer "+token.Token)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterRateLimitsReportGeneration(t *testing.T) {
	router, _ := testRouterWith(t, func(cfg *config.Config) {
		cfg.Server.RateLimit = 2
		cfg.Server.RateLimitWindow = 3600
	})

	send := func(method, path string) int {
		req := httptest.NewRequest(method, path, strings.NewReader("{}"))
		req.RemoteAddr = "10.0.0.7:4000"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("POST", "/api/internal-scope/resolve"))
	assert.Equal(t, http.StatusOK, send("POST", "/api/internal-scope/preview"))
	assert.Equal(t, http.StatusTooManyRequests, send("POST", "/api/internal-scope"), "generation shares the caller's quota")

	// other routes are not counted
	assert.Equal(t, http.StatusOK, send("GET", "/api/reports"))
	assert.Equal(t, http.StatusOK, send("GET", "/health"))
}
