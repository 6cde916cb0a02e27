// Package http exposes the ledger as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/repository"
	"fintrack/internal/services"
)

// Options tunes a Server. Zero fields fall back to the defaults below.
type Options struct {
	Logger            *log.Logger
	MaxImportBytes    int64
	CacheSize         int
	CacheTTL          time.Duration
	RequestsPerMinute int
}

const (
	defaultMaxImportBytes = 1 << 20
	defaultCacheSize      = 64
	defaultCacheTTL       = 5 * time.Minute
	maxJSONBytes          = 64 << 10
)

type Server struct {
	http.Server
	svc  *services.TransactionService
	repo *repository.TransactionRepository

	// monthly summaries keyed by month, purged on every ledger write;
	// generation counts writes so a summary computed across one is not stored
	summaries  cache.Cache[core.Month, core.MonthSummary]
	summaryMu  sync.Mutex
	generation uint64

	limiter        *ratelimit.Limiter
	maxImportBytes int64
	shutdownOnce   sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc *services.TransactionService, repo *repository.TransactionRepository, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	if opts.MaxImportBytes <= 0 {
		opts.MaxImportBytes = defaultMaxImportBytes
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}

	s := &Server{
		svc:            svc,
		repo:           repo,
		summaries:      cache.NewLRUCache[core.Month, core.MonthSummary](opts.CacheSize, opts.CacheTTL),
		limiter:        ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMinute}),
		maxImportBytes: opts.MaxImportBytes,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PATCH /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/balance", s.handleBalance)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /category_data", s.handleCategoryData)

	mux.HandleFunc("POST /api/import", s.handleImport)

	mux.HandleFunc("GET /api/budgets", s.handleListBudgets)
	mux.HandleFunc("GET /api/budgets/{category}", s.handleGetBudget)
	mux.HandleFunc("PUT /api/budgets/{category}", s.handleSetBudget)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(security.ClientIP, handleRateLimited)(handler)
	handler = security.Headers(security.DefaultHeadersConfig())(handler)
	handler = log.Middleware(opts.Logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// SummaryCache exposes the summary cache for periodic expiry.
func (s *Server) SummaryCache() cache.Cleaner {
	return s.summaries
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// ledgerChanged drops cached summaries after a write.
func (s *Server) ledgerChanged() {
	s.summaryMu.Lock()
	defer s.summaryMu.Unlock()
	s.generation++
	s.summaries.Purge()
}

func (s *Server) summaryGeneration() uint64 {
	s.summaryMu.Lock()
	defer s.summaryMu.Unlock()
	return s.generation
}

// storeSummary caches summary unless the ledger changed since gen was read.
func (s *Server) storeSummary(gen uint64, summary core.MonthSummary) bool {
	s.summaryMu.Lock()
	defer s.summaryMu.Unlock()
	if s.generation != gen {
		return false
	}
	s.summaries.Set(summary.Month, summary)
	return true
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, security.ClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded, try again later")
}
