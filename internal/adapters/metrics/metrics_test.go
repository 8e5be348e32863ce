package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"coachhub/internal/adapters/metrics"
)

func TestCanonicalPath(t *testing.T) {
	tests := []struct{ in, want string }{
		{"/", "/"},
		{"/api/coaches", "/api/coaches"},
		{"/api/coaches/6f1c2a4e-9b7d-4a51-8f3e-2c6b1d0e9a77/slots", "/api/coaches/:id/slots"},
		{"/api/bookings/b-20260510/confirm", "/api/bookings/:id/confirm"},
		{"/api/admin/outbox/", "/api/admin/outbox"},
	}
	for _, tt := range tests {
		if got := metrics.CanonicalPath(tt.in); got != tt.want {
			t.Errorf("CanonicalPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInstrumentHandlerExposesCounters(t *testing.T) {
	h := metrics.InstrumentHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/sports", nil))
	metrics.Booking("created")
	metrics.Signup("recovered")
	metrics.OutboxAction("email", false)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`coachhub_http_requests_total{method="GET",path="/api/sports",status="418"} 1`,
		`coachhub_bookings_total{outcome="created"} 1`,
		`coachhub_signups_total{outcome="recovered"} 1`,
		`coachhub_outbox_actions_total{action="email",result="failure"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}
