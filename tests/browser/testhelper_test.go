package browser_test

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	"coachhub/internal/adapters/drafts"
	"coachhub/internal/adapters/email"
	web "coachhub/internal/adapters/http"
	"coachhub/internal/adapters/http/middleware"
	"coachhub/internal/adapters/http/perf"
	"coachhub/internal/adapters/identity"
	"coachhub/internal/adapters/storage"
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

const (
	adminEmail    = "admin@test.com"
	adminPassword = "TestPass123!"
)

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL string
	DB      *sql.DB
	Server  *http.Server
	PW      *playwright.Playwright
	Browser playwright.Browser
	Stores  *web.Stores
	Mail    *email.LogSender
}

// newTestApp creates a fully wired app over a temp SQLite file, seeds an
// admin plus a published tennis coach, and starts an HTTP server.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}

	stores := &web.Stores{
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
	idp := identity.NewLocalProvider(accountStore.NewSQLiteStore(db),
		identity.NewTokenSigner("browser-test-secret-0123456789abcdef", time.Hour, "coachhub"))

	ctx := context.Background()
	if err := orchestrators.ExecuteSeedAdmin(ctx, adminEmail, adminPassword, orchestrators.SeedAdminDeps{
		Identity:      idp,
		ProvisionDeps: orchestrators.ProvisionDeps{Users: stores.Users, Coaches: stores.Coaches, Outbox: stores.Outbox},
	}); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}
	storagetest.SeedSport(t, db, "tennis", "Tennis")
	storagetest.SeedCity(t, db, "akl", "Auckland")
	storagetest.SeedCoach(t, db, "c1")
	storagetest.SeedService(t, db, "s1", "c1", "tennis", 60, 5000)

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)

	mail := email.NewLogSender(50)
	mux := web.NewMux(web.Options{
		Stores:         stores,
		Identity:       idp,
		Notifier:       &orchestrators.Notifier{Email: mail, Outbox: stores.Outbox, BaseURL: baseURL},
		Drafts:         drafts.NewMemoryStore(),
		Outbox:         orchestrators.NewOutboxProcessor(stores.Outbox, nil),
		Perf:           perf.NewCollector(1000),
		DB:             db,
		Sessions:       middleware.NewSessionStore(),
		Limiter:        middleware.NewRateLimiter(1000),
		Location:       time.UTC,
		CSRFKey:        []byte("0123456789abcdef0123456789abcdef"),
		TrustedOrigins: []string{fmt.Sprintf("127.0.0.1:%d", port)},
	})
	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	// Wait for server to be ready
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/healthz")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	pw, err := playwright.Run()
	if err != nil {
		srv.Close()
		t.Skipf("playwright driver unavailable: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		pw.Stop()
		srv.Close()
		t.Skipf("chromium unavailable: %v", err)
	}

	app := &testApp{
		BaseURL: baseURL,
		DB:      db,
		Server:  srv,
		PW:      pw,
		Browser: browser,
		Stores:  stores,
		Mail:    mail,
	}
	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		db.Close()
	})
	return app
}

// newPage creates a new browser page (tab).
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

// goTo navigates and fails on a non-2xx response.
func (a *testApp) goTo(t *testing.T, page playwright.Page, path string) {
	t.Helper()
	resp, err := page.Goto(a.BaseURL + path)
	if err != nil {
		t.Fatalf("navigate to %s: %v", path, err)
	}
	if resp != nil && !resp.Ok() {
		t.Fatalf("GET %s: status %d", path, resp.Status())
	}
}

// fill sets a form field, failing the test on error.
func fill(t *testing.T, page playwright.Page, selector, value string) {
	t.Helper()
	if err := page.Locator(selector).Fill(value); err != nil {
		t.Fatalf("fill %s: %v", selector, err)
	}
}

// login signs in through the form and waits for the dashboard.
func (a *testApp) login(t *testing.T, page playwright.Page, email, password string) {
	t.Helper()
	a.goTo(t, page, "/login")
	fill(t, page, "input[name=email]", email)
	fill(t, page, "input[name=password]", password)
	if err := page.Locator("form.auth button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to click login: %v", err)
	}
	if err := page.WaitForURL(a.BaseURL+"/dashboard", playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("login did not redirect to dashboard: %v", err)
	}
}

var verifyLink = regexp.MustCompile(`href="([^"]*/verify\?token=[^"]+)"`)

// lastVerifyLink returns the confirmation link from the newest email.
func (a *testApp) lastVerifyLink(t *testing.T) string {
	t.Helper()
	sent := a.Mail.Sent()
	if len(sent) == 0 {
		t.Fatal("no email sent")
	}
	m := verifyLink.FindStringSubmatch(sent[len(sent)-1].HTML)
	if m == nil {
		t.Fatalf("no verify link in %q", sent[len(sent)-1].HTML)
	}
	return m[1]
}
