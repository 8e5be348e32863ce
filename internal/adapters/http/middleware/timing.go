package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"coachhub/internal/adapters/http/perf"
	"coachhub/internal/adapters/metrics"
)

// DefaultSlowRequestMs is the default threshold for slow_request warnings.
const DefaultSlowRequestMs = 500

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

const requestIDContextKey contextKey = "request_id"

var requestSeq uint64

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

var statusWriterPool = sync.Pool{
	New: func() any { return &statusWriter{} },
}

// RequestID returns the id Timing assigned to the request, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}

// requestIDFor keeps a caller-supplied id when it is short and printable.
func requestIDFor(r *http.Request) string {
	if in := r.Header.Get(RequestIDHeader); in != "" && len(in) <= 64 && !strings.ContainsFunc(in, func(c rune) bool { return c < 0x21 || c > 0x7e }) {
		return in
	}
	return "req-" + strconv.FormatUint(atomic.AddUint64(&requestSeq, 1), 10)
}

// Timing tags each request with an id and logs how long it took, together
// with the signed-in user when there is one. Static assets are skipped.
// PRE: runs inside Auth so the session is already in the context
// POST: requests at or above slowMs log slow_request at WARN, the rest log at DEBUG;
// slowMs <= 0 selects DefaultSlowRequestMs
// POST: collector (when non-nil) receives one entry per request keyed by
// method and canonical path, so /api/bookings/{id} hits share one row
func Timing(collector *perf.Collector, slowMs int) func(http.Handler) http.Handler {
	if slowMs <= 0 {
		slowMs = DefaultSlowRequestMs
	}
	threshold := float64(slowMs)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/static/") {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			reqID := requestIDFor(r)
			w.Header().Set(RequestIDHeader, reqID)
			r = r.WithContext(context.WithValue(r.Context(), requestIDContextKey, reqID))

			sw := statusWriterPool.Get().(*statusWriter)
			sw.ResponseWriter = w
			sw.status = http.StatusOK
			defer func() {
				durationMs := float64(time.Since(start).Microseconds()) / 1000.0
				attrs := []any{
					"request_id", reqID,
					"method", r.Method,
					"path", r.URL.Path,
					"status", sw.status,
					"duration_ms", durationMs,
				}
				if sess, ok := GetSessionFromContext(r.Context()); ok {
					attrs = append(attrs, "user_id", sess.UserID, "role", sess.Role)
				}
				if durationMs >= threshold {
					slog.Warn("slow_request", attrs...)
				} else {
					slog.Debug("request", attrs...)
				}

				if collector != nil {
					collector.Record(perf.Entry{
						Kind:       perf.KindRequest,
						Path:       r.Method + " " + metrics.CanonicalPath(r.URL.Path),
						StatusCode: sw.status,
						DurationMs: durationMs,
						Timestamp:  start,
					})
				}

				sw.ResponseWriter = nil
				statusWriterPool.Put(sw)
			}()

			next.ServeHTTP(sw, r)
		})
	}
}
