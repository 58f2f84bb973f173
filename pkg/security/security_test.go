package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimiter_AllowAndUpdate(t *testing.T) {
	l := NewRateLimiter(2, time.Hour)
	defer l.Stop()

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatalf("first two requests should pass")
	}
	if l.Allow("a") {
		t.Fatalf("third request should be limited")
	}
	if !l.Allow("b") {
		t.Fatalf("other clients have their own bucket")
	}

	l.Update(100, time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	if !l.Allow("a") {
		t.Fatalf("raised limit should apply to existing visitors")
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := NewRateLimiter(1, time.Hour)
	defer l.Stop()

	r := gin.New()
	r.Use(CORS([]string{"http://allowed.test"}), Secure(), l.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://allowed.test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://allowed.test" {
		t.Fatalf("allowed origin not echoed")
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("secure headers missing")
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.test")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("unknown origin must not be allowed")
	}
}
