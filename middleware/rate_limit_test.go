package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abaevpavel/pdfer-base/config"
	"github.com/gin-gonic/gin"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestLimiter(rate int, window time.Duration) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	limiter := NewRateLimiter(rate, window)
	limiter.now = clock.now
	return limiter, clock
}

func TestRateLimiterWindowIsPerKey(t *testing.T) {
	limiter, clock := newTestLimiter(2, time.Minute)

	limiter.Allow("a")
	clock.advance(40 * time.Second)
	limiter.Allow("a")
	limiter.Allow("b")

	if ok, _ := limiter.Allow("a"); ok {
		t.Fatal("Expected a to be limited after 2 requests")
	}

	// a's window opened 40s before b's and ends first
	clock.advance(25 * time.Second)
	if ok, _ := limiter.Allow("a"); !ok {
		t.Error("Expected a's window to have reset")
	}
	limiter.Allow("b")
	if ok, retry := limiter.Allow("b"); ok || retry != 35*time.Second {
		t.Errorf("Expected b to stay limited for 35s, got ok=%v retry=%v", ok, retry)
	}
}

func TestRateLimiterSweepsExpiredWindows(t *testing.T) {
	limiter, clock := newTestLimiter(1, time.Second)
	for _, key := range []string{"a", "b", "c"} {
		limiter.Allow(key)
	}

	clock.advance(2 * time.Second)
	limiter.Allow("d")

	if len(limiter.windows) != 1 {
		t.Errorf("Expected only the live window to remain, got %d", len(limiter.windows))
	}
}

func TestRateLimitRetryAfter(t *testing.T) {
	limiter, clock := newTestLimiter(1, time.Minute)

	router := gin.New()
	router.Use(RateLimit(limiter, func(c *gin.Context) string { return "all" }))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/test", nil))
	clock.advance(30*time.Second + time.Millisecond)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected status 429, got %d", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "30" {
		t.Errorf("Expected Retry-After 30, got %q", got)
	}
}

func TestCallerKey(t *testing.T) {
	tests := []struct {
		name     string
		tenant   string
		expected string
	}{
		{"authenticated tenant", "acme", "tenant:acme"},
		{"anonymous", AnonymousTenant, "ip:10.1.2.3"},
		{"no identity", "", "ip:10.1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/", nil)
			c.Request.RemoteAddr = "10.1.2.3:5555"
			if tt.tenant != "" {
				c.Set("tenant", tt.tenant)
			}
			if got := CallerKey(c); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestRateLimitFromConfigPerTenant(t *testing.T) {
	auth := &config.AuthConfig{JWTSecret: "test-secret-key", TokenExpireHours: 1}
	server := &config.ServerConfig{RateLimit: 2, RateLimitWindow: 60}

	router := gin.New()
	router.Use(AuthMiddleware(auth))
	router.Use(RateLimitFromConfig(server))
	router.POST("/api/internal-scope", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(tenant string) int {
		token, _, err := GenerateToken("user-"+tenant, tenant, auth)
		if err != nil {
			t.Fatalf("Failed to generate token: %v", err)
		}
		req := httptest.NewRequest("POST", "/api/internal-scope", nil)
		req.RemoteAddr = "192.168.1.1:12345" // shared proxy address
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 2; i++ {
		if code := send("acme"); code != http.StatusOK {
			t.Fatalf("Request %d: expected status 200, got %d", i+1, code)
		}
	}
	if code := send("acme"); code != http.StatusTooManyRequests {
		t.Errorf("Expected acme to be limited, got %d", code)
	}
	if code := send("globex"); code != http.StatusOK {
		t.Errorf("Expected another tenant behind the same IP to pass, got %d", code)
	}
}

func TestRateLimitFromConfigDisabled(t *testing.T) {
	router := gin.New()
	router.Use(RateLimitFromConfig(&config.ServerConfig{RateLimit: -1, RateLimitWindow: 60}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 50; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("Request %d: expected status 200, got %d", i+1, w.Code)
		}
	}
}
