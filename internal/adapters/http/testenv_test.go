package web

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"testing"
	"time"

	"coachhub/internal/adapters/drafts"
	"coachhub/internal/adapters/email"
	"coachhub/internal/adapters/http/middleware"
	"coachhub/internal/adapters/http/perf"
	"coachhub/internal/adapters/identity"
	accountStore "coachhub/internal/adapters/storage/account"
	auditStore "coachhub/internal/adapters/storage/audit"
	availabilityStore "coachhub/internal/adapters/storage/availability"
	bookingStore "coachhub/internal/adapters/storage/booking"
	cityStore "coachhub/internal/adapters/storage/city"
	coachStore "coachhub/internal/adapters/storage/coach"
	serviceStore "coachhub/internal/adapters/storage/coachservice"
	courtStore "coachhub/internal/adapters/storage/court"
	outboxStore "coachhub/internal/adapters/storage/outbox"
	reviewStore "coachhub/internal/adapters/storage/review"
	sportStore "coachhub/internal/adapters/storage/sport"
	"coachhub/internal/adapters/storage/storagetest"
	timeoffStore "coachhub/internal/adapters/storage/timeoff"
	userStore "coachhub/internal/adapters/storage/user"
	"coachhub/internal/application/orchestrators"
)

// testNow is a Monday morning; 2026-03-04 is the Wednesday after.
var testNow = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

type testEnv struct {
	db       *sql.DB
	handler  http.Handler
	mail     *email.LogSender
	sessions *middleware.SessionStore
	stores   *Stores
}

// newTestEnv wires the full mux over a migrated SQLite database seeded with
// one sport, one city and a published coach c1 offering s1 (60 min, $50).
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := storagetest.Open(t)
	storagetest.SeedSport(t, db, "tennis", "Tennis")
	storagetest.SeedCity(t, db, "akl", "Auckland")
	storagetest.SeedCoach(t, db, "c1")
	storagetest.SeedService(t, db, "s1", "c1", "tennis", 60, 5000)

	st := &Stores{
		Users:        userStore.NewSQLiteStore(db),
		Coaches:      coachStore.NewSQLiteStore(db),
		Services:     serviceStore.NewSQLiteStore(db),
		Sports:       sportStore.NewSQLiteStore(db),
		Cities:       cityStore.NewSQLiteStore(db),
		Courts:       courtStore.NewSQLiteStore(db),
		Availability: availabilityStore.NewSQLiteStore(db),
		TimeOff:      timeoffStore.NewSQLiteStore(db),
		Bookings:     bookingStore.NewSQLiteStore(db),
		Reviews:      reviewStore.NewSQLiteStore(db),
		Audit:        auditStore.NewSQLiteStore(db),
		Outbox:       outboxStore.NewSQLiteStore(db),
	}
	mail := email.NewLogSender(20)
	notifier := &orchestrators.Notifier{Email: mail, Outbox: st.Outbox, BaseURL: "http://coachhub.test"}
	signer := identity.NewTokenSigner("test-signing-secret-0123456789abcdef", time.Hour, "coachhub")
	sessions := middleware.NewSessionStore()

	h := NewMux(Options{
		Stores:   st,
		Identity: identity.NewLocalProvider(accountStore.NewSQLiteStore(db), signer),
		Notifier: notifier,
		Drafts:   drafts.NewMemoryStore(),
		Outbox:   orchestrators.NewOutboxProcessor(st.Outbox, nil),
		Perf:     perf.NewCollector(100),
		DB:       db,
		Sessions: sessions,
		Limiter:  middleware.NewRateLimiter(1000),
		Location: time.UTC,
		CSRFKey:  bytes.Repeat([]byte("k"), 32),
		Now:      func() time.Time { return testNow },
	})
	return &testEnv{db: db, handler: h, mail: mail, sessions: sessions, stores: st}
}

// cookieFor starts a session for a seeded profile.
func (e *testEnv) cookieFor(t *testing.T, userID, role string) *http.Cookie {
	t.Helper()
	token, err := e.sessions.Create(userID, userID+"@example.com", role)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return &http.Cookie{Name: middleware.SessionCookieName, Value: token}
}

type reqOpt func(*http.Request)

func withCookie(c *http.Cookie) reqOpt {
	return func(r *http.Request) { r.AddCookie(c) }
}

func withBearer(token string) reqOpt {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

// do sends a JSON request through the full middleware chain.
func (e *testEnv) do(t *testing.T, method, path string, body any, opts ...reqOpt) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	for _, o := range opts {
		o(req)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, want, rec.Body.String())
	}
}

var tokenInLink = regexp.MustCompile(`token=([^"&]+)`)

// lastVerificationToken pulls the token out of the newest email sent.
func (e *testEnv) lastVerificationToken(t *testing.T) string {
	t.Helper()
	sent := e.mail.Sent()
	if len(sent) == 0 {
		t.Fatal("no email sent")
	}
	m := tokenInLink.FindStringSubmatch(sent[len(sent)-1].HTML)
	if m == nil {
		t.Fatalf("no token in %q", sent[len(sent)-1].HTML)
	}
	token, err := url.QueryUnescape(m[1])
	if err != nil {
		t.Fatalf("unescape token: %v", err)
	}
	return token
}
