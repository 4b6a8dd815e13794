package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCORSPreflight(t *testing.T) {
	router := gin.New()
	router.Use(CORS())
	router.POST("/api/internal-scope", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest("OPTIONS", "/api/internal-scope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected Access-Control-Allow-Origin header")
	}
}

func TestCacheControl(t *testing.T) {
	router := gin.New()
	router.Use(CacheControl("/static"))
	router.GET("/api/reports", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/static/:name", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		path     string
		expected string
	}{
		{"/api/reports", "no-cache, no-store, must-revalidate"},
		{"/static/internal_scope_1.2.pdf", "public, max-age=86400, immutable"},
		{"/static/readme.txt", ""},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", tt.path, nil))
		if got := w.Header().Get("Cache-Control"); got != tt.expected {
			t.Errorf("%s: expected Cache-Control %q, got %q", tt.path, tt.expected, got)
		}
	}
}
