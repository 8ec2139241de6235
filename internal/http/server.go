package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"finanzapp/internal/cache"
	"finanzapp/internal/core"
	"finanzapp/internal/ledger"
	"finanzapp/internal/log"
)

const (
	summaryCacheSize = 64
	summaryCacheTTL  = time.Minute
	cleanupInterval  = 5 * time.Minute
	writeLimit       = 60 // mutating requests per client and window
	writeWindow      = time.Minute
)

type Server struct {
	http.Server
	ledger   *ledger.Ledger
	logger   *log.Logger
	location *time.Location
	started  time.Time

	summaryCache *cache.LRUCache[[]core.DayTotal]
	cacheManager *cache.Manager
	limiter      *rateLimiter
	metrics      securityMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
// Calendar days are computed in loc; nil means time.Local.
func NewServer(addr string, l *ledger.Ledger, logger *log.Logger, loc *time.Location) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	if loc == nil {
		loc = time.Local
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		ledger:       l,
		logger:       logger,
		location:     loc,
		started:      time.Now(),
		summaryCache: cache.NewLRUCache[[]core.DayTotal](summaryCacheSize, summaryCacheTTL),
		cacheManager: cache.NewManager(logger),
		limiter:      newRateLimiter(writeLimit, writeWindow),
	}
	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.limiter)
	s.cacheManager.StartCleanup(cleanupInterval)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/api/expenses", s.handleExpenses)
	mux.HandleFunc("/api/expenses/recurring", s.handleCreateRecurring)
	mux.HandleFunc("/api/limit", s.handleLimit)
	mux.HandleFunc("/api/today", s.handleToday)
	mux.HandleFunc("/api/summary", s.handleSummary)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           log.RequestMiddleware(logger, requestID)(s.withSecurity(mux)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// InvalidateCaches drops derived views after the ledger changed outside
// the handlers, for example through the recurring processor.
func (s *Server) InvalidateCaches() {
	s.summaryCache.Clear()
}

// Shutdown stops background cleanup and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
