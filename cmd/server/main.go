package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	emailPkg "studio/internal/adapters/email"
	web "studio/internal/adapters/http"
	"studio/internal/adapters/http/perf"
	"studio/internal/adapters/storage"
	appointmentStore "studio/internal/adapters/storage/appointment"
	bookingStore "studio/internal/adapters/storage/booking"
	classEventStore "studio/internal/adapters/storage/classevent"
	memberStore "studio/internal/adapters/storage/member"
	payrollStore "studio/internal/adapters/storage/payroll"
	progressStore "studio/internal/adapters/storage/progress"
	"studio/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_invalid", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(cfg.NewLogger(os.Stderr))

	if err := run(cfg); err != nil {
		slog.Error("server_failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.PingContext(ctx); err != nil {
		return err
	}
	if err := storage.MigrateDB(db); err != nil {
		return err
	}

	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, cfg.SlowQuery)
	stores := newStores(timedDB)

	var sender emailPkg.Sender
	if cfg.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.EmailFrom)
		slog.Info("email_sender_configured", "provider", "resend")
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			slog.Warn("email_sender_configured", "provider", "noop", "reason", "STUDIO_RESEND_KEY is not set; payout notifications are disabled")
		} else {
			slog.Info("email_sender_configured", "provider", "noop")
		}
	}

	handler := web.NewMux(ctx, stores, collector, web.Options{
		Fees:          cfg.Fees,
		Sender:        sender,
		EmailFrom:     cfg.EmailFrom,
		CSRFKey:       cfg.CSRFKey,
		SecureCookies: cfg.IsProduction(),
		SlowRequest:   cfg.SlowRequest,
		RateLimit:     20,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_starting", "version", version, "addr", cfg.Addr, "env", cfg.Env,
			"schema", storage.LatestSchemaVersion(), "fee_rate", cfg.Fees.Rate, "fee_fixed_cents", cfg.Fees.FixedCents)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newStores(db storage.SQLDB) *web.Stores {
	return &web.Stores{
		MemberStore:         memberStore.NewSQLiteStore(db),
		ClassEventStore:     classEventStore.NewSQLiteStore(db),
		AppointmentStore:    appointmentStore.NewSQLiteStore(db),
		BookingStore:        bookingStore.NewSQLiteStore(db),
		PayrollConfigStore:  payrollStore.NewSQLiteConfigStore(db),
		PayoutStore:         payrollStore.NewSQLitePayoutStore(db),
		ProgressMetricStore: progressStore.NewSQLiteMetricStore(db),
		ProgressEntryStore:  progressStore.NewSQLiteEntryStore(db),
	}
}
