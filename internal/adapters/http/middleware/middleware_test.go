package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimiter_BurstThenRefill(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1)
	rl.now = func() time.Time { return now }

	// burst is twice the rate
	if !rl.Allow("10.0.0.1") || !rl.Allow("10.0.0.1") {
		t.Fatal("burst requests rejected")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("third request inside the same second allowed")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("other IP shares the bucket")
	}
	now = now.Add(time.Second)
	if !rl.Allow("10.0.0.1") {
		t.Error("token not refilled after a second")
	}
}

func TestRateLimiter_Sweep(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(5)
	rl.now = func() time.Time { return now }
	rl.Allow("a")
	now = now.Add(4 * time.Minute)
	rl.Allow("b")
	now = now.Add(2 * time.Minute)
	if n := rl.Sweep(); n != 1 {
		t.Errorf("Sweep = %d, want 1", n)
	}
	if _, ok := rl.visitors["b"]; !ok {
		t.Error("recent visitor swept")
	}
}

func TestRateLimit_Middleware(t *testing.T) {
	h := RateLimit(NewRateLimiter(0.5))(okHandler)
	codes := []int{}
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "192.0.2.7:5000"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("codes = %v", codes)
	}
}

func TestSecurityHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	SecurityHeaders(okHandler).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	for _, h := range []string{"Content-Security-Policy", "X-Frame-Options", "X-Content-Type-Options", "Referrer-Policy"} {
		if rr.Header().Get(h) == "" {
			t.Errorf("%s missing", h)
		}
	}
}

func TestCSRF_Exemptions(t *testing.T) {
	key := []byte(strings.Repeat("k", 32))
	h := CSRF(key, CSRFOptions{})(okHandler)

	tests := []struct {
		name   string
		header map[string]string
		want   int
	}{
		{name: "form post without token", header: map[string]string{"Content-Type": "application/x-www-form-urlencoded"}, want: http.StatusForbidden},
		{name: "json post", header: map[string]string{"Content-Type": "application/json"}, want: http.StatusOK},
		{name: "bearer post", header: map[string]string{"Authorization": "Bearer abc"}, want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/login", strings.NewReader("email=a"))
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/login", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("safe method status = %d", rr.Code)
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	Chain(okHandler, mark("inner"), mark("outer")).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	if strings.Join(order, ",") != "outer,inner" {
		t.Errorf("order = %v", order)
	}
}
