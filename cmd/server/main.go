package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"coachhub/internal/adapters/drafts"
	"coachhub/internal/adapters/email"
	"coachhub/internal/adapters/events"
	web "coachhub/internal/adapters/http"
	"coachhub/internal/adapters/http/middleware"
	"coachhub/internal/adapters/http/perf"
	"coachhub/internal/adapters/identity"
	"coachhub/internal/adapters/sms"
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
	timeoffStore "coachhub/internal/adapters/storage/timeoff"
	userStore "coachhub/internal/adapters/storage/user"
	"coachhub/internal/application/orchestrators"
	"coachhub/internal/config"
	"coachhub/internal/domain/outbox"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// outboxRetentionDays is how long delivered and abandoned outbox entries are kept.
const outboxRetentionDays = 7

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	slog.SetDefault(cfg.NewLogger())
	loc, _ := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open applies the embedded migrations.
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, cfg.SlowQueryMs)
	defer timedDB.Close()

	stores := &web.Stores{
		Users:        userStore.NewSQLiteStore(timedDB),
		Coaches:      coachStore.NewSQLiteStore(timedDB),
		Services:     serviceStore.NewSQLiteStore(timedDB),
		Sports:       sportStore.NewSQLiteStore(timedDB),
		Cities:       cityStore.NewSQLiteStore(timedDB),
		Courts:       courtStore.NewSQLiteStore(timedDB),
		Availability: availabilityStore.NewSQLiteStore(timedDB),
		TimeOff:      timeoffStore.NewSQLiteStore(timedDB),
		Bookings:     bookingStore.NewSQLiteStore(timedDB),
		Reviews:      reviewStore.NewSQLiteStore(timedDB),
		Audit:        auditStore.NewSQLiteStore(timedDB),
		Outbox:       outboxStore.NewSQLiteStore(timedDB),
	}

	// Identity
	var idp identity.Provider
	var local *identity.LocalProvider
	switch cfg.IdentityProvider {
	case config.ProviderSupabase:
		idp = identity.NewSupabaseProvider(identity.SupabaseConfig{
			URL:        cfg.SupabaseURL,
			AnonKey:    cfg.SupabaseAnonKey,
			ServiceKey: cfg.SupabaseServiceKey,
			JWTSecret:  cfg.SupabaseJWTSecret,
		}, nil)
		slog.Info("identity_configured", "provider", "supabase")
	default:
		secret := cfg.JWTSecret
		if secret == "" {
			secret = randomHex(32)
			slog.Warn("identity_configured", "provider", "local", "warning", "COACHHUB_JWT_SECRET not set; tokens will not survive a restart")
		}
		local = identity.NewLocalProvider(accountStore.NewSQLiteStore(timedDB), identity.NewTokenSigner(secret, cfg.JWTTTL, "coachhub"))
		idp = local
	}

	// Delivery channels
	var mailer email.Sender
	if cfg.ResendKey != "" {
		mailer = email.NewResendSender(cfg.ResendKey, cfg.EmailFrom, cfg.ReplyTo)
		slog.Info("email_configured", "sender", "resend")
	} else {
		mailer = email.NewLogSender(100)
		if cfg.IsProduction() {
			slog.Warn("email_configured", "sender", "log", "warning", "COACHHUB_RESEND_KEY is not set; email delivery is DISABLED in production")
		} else {
			slog.Info("email_configured", "sender", "log")
		}
	}
	var texter sms.Sender = sms.LogSender{}
	if cfg.TwilioAccountSID != "" {
		texter = sms.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFrom)
		slog.Info("sms_configured", "sender", "twilio")
	}
	var publisher events.Publisher = events.LogPublisher{}
	if cfg.AMQPURL != "" {
		amqpPub, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Fatalf("failed to connect to broker: %v", err)
		}
		defer amqpPub.Close()
		publisher = amqpPub
		slog.Info("events_configured", "publisher", "amqp", "exchange", cfg.AMQPExchange)
	}

	notifier := &orchestrators.Notifier{
		Email:   mailer,
		SMS:     texter,
		Events:  publisher,
		Outbox:  stores.Outbox,
		BaseURL: cfg.BaseURL,
	}

	// Booking drafts
	var draftStore drafts.Store
	var memDrafts *drafts.MemoryStore
	if cfg.RedisURL != "" {
		rs, err := drafts.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer rs.Close()
		draftStore = rs
	} else {
		memDrafts = drafts.NewMemoryStore()
		draftStore = memDrafts
	}

	// Seed
	provision := orchestrators.ProvisionDeps{Users: stores.Users, Coaches: stores.Coaches, Outbox: stores.Outbox}
	if err := orchestrators.ExecuteSeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, orchestrators.SeedAdminDeps{
		Identity:      idp,
		ProvisionDeps: provision,
	}); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	if err := orchestrators.ExecuteSeedCatalog(ctx, orchestrators.SeedCatalogDeps{
		Sports:     stores.Sports,
		Cities:     stores.Cities,
		GenerateID: func() string { return uuid.New().String() },
	}); err != nil {
		log.Fatalf("failed to seed catalog: %v", err)
	}

	// Background jobs
	processor := orchestrators.NewOutboxProcessor(stores.Outbox, map[string]orchestrators.ActionExecutor{
		outbox.ActionIdentityCleanup: &orchestrators.IdentityCleanupExecutor{Identity: idp, Users: stores.Users},
		outbox.ActionEmail:           &orchestrators.EmailExecutor{Sender: mailer},
		outbox.ActionSMS:             &orchestrators.SMSExecutor{Sender: texter},
		outbox.ActionEvent:           &orchestrators.EventExecutor{Publisher: publisher},
	})
	sessions := middleware.NewSessionStore()
	limiter := middleware.NewRateLimiter(cfg.RateLimit)
	go limiter.Run(ctx)

	jobs := []orchestrators.Job{
		{Name: "outbox", Spec: "@every 1m", Run: func(ctx context.Context) error {
			_, err := processor.ProcessPending(ctx)
			return err
		}},
		{Name: "booking_housekeeping", Spec: "@every 10m", Run: func(ctx context.Context) error {
			res, err := orchestrators.ExecuteBookingHousekeeping(ctx, orchestrators.HousekeepingDeps{
				Bookings: stores.Bookings,
				Users:    stores.Users,
				Services: stores.Services,
				Notifier: notifier,
				Audit:    stores.Audit,
				Location: loc,
			})
			if res.Completed+res.Expired > 0 {
				slog.Info("booking_event", "event", "housekeeping", "completed", res.Completed, "expired", res.Expired)
			}
			return err
		}},
		{Name: "outbox_purge", Spec: "@daily", Run: func(ctx context.Context) error {
			n, err := stores.Outbox.Purge(ctx, time.Now().AddDate(0, 0, -outboxRetentionDays))
			if n > 0 {
				slog.Info("outbox_purged", "count", n)
			}
			return err
		}},
		{Name: "session_sweep", Spec: "@every 15m", Run: func(context.Context) error {
			if n := sessions.Sweep(); n > 0 {
				slog.Debug("sessions_swept", "count", n)
			}
			return nil
		}},
	}
	if local != nil {
		jobs = append(jobs, orchestrators.Job{Name: "token_purge", Spec: "@hourly", Run: func(ctx context.Context) error {
			_, err := local.PurgeExpiredTokens(ctx)
			return err
		}})
	}
	if memDrafts != nil {
		jobs = append(jobs, orchestrators.Job{Name: "draft_sweep", Spec: "@every 30m", Run: func(context.Context) error {
			memDrafts.Sweep()
			return nil
		}})
	}
	scheduler, err := orchestrators.StartScheduler(jobs)
	if err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}

	csrfKey, err := cfg.CSRFKeyBytes()
	if err != nil {
		csrfKey, _ = hex.DecodeString(randomHex(32))
		slog.Warn("csrf_key_generated", "warning", "COACHHUB_CSRF_KEY not set; form tokens will not survive a restart")
	}

	handler := web.NewMux(web.Options{
		Stores:        stores,
		Identity:      idp,
		Notifier:      notifier,
		Drafts:        draftStore,
		Outbox:        processor,
		Perf:          collector,
		DB:            timedDB,
		Sessions:      sessions,
		Limiter:       limiter,
		Location:      loc,
		CSRFKey:       csrfKey,
		Secure:        cfg.IsProduction(),
		SlowRequestMs: cfg.SlowRequestMs,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	go func() {
		slog.Info("server_starting", "version", version, "addr", cfg.Addr, "env", cfg.Env, "schema", storage.LatestSchemaVersion())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown_failed", "error", err)
	}
	<-scheduler.Stop().Done()
}

// randomHex returns n random bytes hex-encoded.
func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		log.Fatalf("read random: %v", err)
	}
	return hex.EncodeToString(b)
}
