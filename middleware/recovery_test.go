package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func recoveryRouter() *gin.Engine {
	router := gin.New()
	router.Use(RequestID())
	router.Use(Recovery())
	router.Use(Anonymous())
	router.GET("/panic", func(c *gin.Context) {
		panic("template exploded")
	})
	router.GET("/partial", func(c *gin.Context) {
		c.String(http.StatusOK, "partial")
		panic("late failure")
	})
	router.GET("/abort", func(c *gin.Context) {
		panic(http.ErrAbortHandler)
	})
	return router
}

func TestRecoveryAnswersWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))

	req := httptest.NewRequest("GET", "/panic", nil)
	req.Header.Set(RequestIDHeader, "req-panic-1")
	w := httptest.NewRecorder()
	recoveryRouter().ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if body["request_id"] != "req-panic-1" {
		t.Errorf("Expected request id in response, got %v", body)
	}

	logOutput := buf.String()
	for _, want := range []string{"panic recovered", "template exploded", "request_id=req-panic-1", "tenant=" + AnonymousTenant} {
		if !strings.Contains(logOutput, want) {
			t.Errorf("Expected %q in log, got %s", want, logOutput)
		}
	}
}

func TestRecoveryKeepsWrittenResponse(t *testing.T) {
	w := httptest.NewRecorder()
	recoveryRouter().ServeHTTP(w, httptest.NewRequest("GET", "/partial", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected the already sent status 200, got %d", w.Code)
	}
	if w.Body.String() != "partial" {
		t.Errorf("Expected body to be left alone, got %q", w.Body.String())
	}
}

func TestRecoveryRepanicsAbortHandler(t *testing.T) {
	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Errorf("Expected http.ErrAbortHandler to propagate, got %v", rec)
		}
	}()

	recoveryRouter().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/abort", nil))
}
