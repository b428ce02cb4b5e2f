package web

import (
	"context"
	"crypto/rand"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"studio/internal/adapters/email"
	"studio/internal/adapters/http/middleware"
	"studio/internal/adapters/http/perf"
	appointmentStore "studio/internal/adapters/storage/appointment"
	bookingStore "studio/internal/adapters/storage/booking"
	classEventStore "studio/internal/adapters/storage/classevent"
	memberStore "studio/internal/adapters/storage/member"
	payrollStore "studio/internal/adapters/storage/payroll"
	progressStore "studio/internal/adapters/storage/progress"
	domainPayroll "studio/internal/domain/payroll"
)

// Stores holds all storage dependencies.
type Stores struct {
	MemberStore         memberStore.Store
	ClassEventStore     classEventStore.Store
	AppointmentStore    appointmentStore.Store
	BookingStore        bookingStore.Store
	PayrollConfigStore  payrollStore.ConfigStore
	PayoutStore         payrollStore.PayoutStore
	ProgressMetricStore progressStore.MetricStore
	ProgressEntryStore  progressStore.EntryStore
}

// Options carries the non-store settings of the HTTP surface.
type Options struct {
	Fees           domainPayroll.FeePolicy
	Sender         email.Sender
	EmailFrom      string
	CSRFKey        []byte // nil generates a per-process key
	SecureCookies  bool
	TrustedOrigins []string
	SlowRequest    time.Duration
	RateLimit      int // requests per second per tenant and client; 0 disables limiting
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Payroll settings (set by NewMux)
var (
	feePolicy   = domainPayroll.DefaultFeePolicy
	emailSender email.Sender = email.NewNoopSender()
	emailFrom   string
)

// Clock and ID source, replaced in tests.
var (
	now        = func() time.Time { return time.Now().UTC() }
	generateID = func() string { return uuid.New().String() }
)

// NewMux wires HTTP handlers for the app.
// The context bounds background work such as rate limiter cleanup.
func NewMux(ctx context.Context, s *Stores, collector *perf.Collector, opts Options) http.Handler {
	stores = s
	perfCollector = collector
	feePolicy = opts.Fees
	emailFrom = opts.EmailFrom
	if opts.Sender != nil {
		emailSender = opts.Sender
	}

	mux := http.NewServeMux()
	registerRoutes(mux)

	csrfKey := opts.CSRFKey
	if csrfKey == nil {
		csrfKey = make([]byte, 32)
		if _, err := rand.Read(csrfKey); err != nil {
			panic("generate csrf key: " + err.Error())
		}
		slog.Warn("csrf_key_generated", "reason", "STUDIO_CSRF_KEY not set; form tokens won't survive restart")
	}

	chain := []func(http.Handler) http.Handler{
		middleware.Identify,
		middleware.CSRF(csrfKey, opts.SecureCookies, opts.TrustedOrigins),
		middleware.SecurityHeaders,
	}
	if opts.RateLimit > 0 {
		chain = append(chain, middleware.RateLimit(middleware.NewRateLimiter(ctx, opts.RateLimit, time.Second)))
	}
	chain = append(chain, middleware.Timing(collector, opts.SlowRequest))

	// Timing -> RateLimit -> SecurityHeaders -> CSRF -> Identify -> Mux
	return middleware.Chain(mux, chain...)
}

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)

	mux.HandleFunc("GET /api/payroll/preview", handlePayrollPreview)
	mux.HandleFunc("POST /api/payroll/commit", handlePayrollCommit)
	mux.HandleFunc("POST /api/payroll/approve", handlePayrollApprove)
	mux.HandleFunc("GET /api/payroll/payouts", handlePayrollPayouts)
	mux.HandleFunc("GET /api/payroll/export", handlePayrollExport)
	mux.HandleFunc("GET /api/payroll/profitability", handlePayrollProfitability)
	mux.HandleFunc("/api/payroll/configs", handlePayrollConfigs)

	mux.HandleFunc("/api/progress/metrics", handleProgressMetrics)
	mux.HandleFunc("POST /api/progress/metrics/seed", handleProgressSeed)
	mux.HandleFunc("GET /api/progress/stats", handleProgressStats)
	mux.HandleFunc("/api/progress/entries", handleProgressEntries)

	mux.HandleFunc("GET /api/admin/perf", handleAdminPerf)
}
