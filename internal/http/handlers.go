package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"finanzapp/internal/core"
	"finanzapp/internal/log"
	"finanzapp/internal/notify"
)

type (
	limitResponse struct {
		Limit     decimal.Decimal `json:"limit"`
		Formatted string          `json:"formatted"`
		Enabled   bool            `json:"enabled"`
	}

	todayResponse struct {
		Date       string          `json:"date"`
		Spent      decimal.Decimal `json:"spent"`
		Limit      decimal.Decimal `json:"limit"`
		Percentage int64           `json:"percentage"`
		Band       notify.Band     `json:"band"`
		Display    struct {
			Spent      string `json:"spent"`
			Limit      string `json:"limit"`
			Percentage string `json:"percentage"`
		} `json:"display"`
	}

	categoryTotal struct {
		Name   string          `json:"name"`
		Amount decimal.Decimal `json:"amount"`
	}

	dayTotalResponse struct {
		Day        string          `json:"day"`
		Total      decimal.Decimal `json:"total"`
		Count      int             `json:"count"`
		ByCategory []categoryTotal `json:"byCategory"`
	}
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{
		"status":          "ok",
		"uptime":          time.Since(s.started).Round(time.Second).String(),
		"rate_limit_hits": atomic.LoadInt64(&s.metrics.rateLimitHits),
	}).Write(w)
}

// handleReady reports 503 until the ledger finished its first load.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil || s.ledger.IsLoading() {
		ErrorResponse(http.StatusServiceUnavailable, "loading").Write(w)
		return
	}
	NewJSONResponse().Body(map[string]string{"status": "ready"}).Write(w)
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		NewJSONResponse().Body(s.ledger.Expenses()).Write(w)
	case http.MethodPost:
		s.handleCreateExpense(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	draft, err := core.NewExpenseDraft(p.Get("category"), p.Get("amount"), p.Get("description"))
	if err != nil {
		s.fail(w, r, log.OpAdd, err)
		return
	}
	rec, err := s.ledger.AddExpense(r.Context(), draft)
	if err != nil {
		s.fail(w, r, log.OpAdd, err)
		return
	}
	s.summaryCache.Clear()
	NewJSONResponse().Status(http.StatusCreated).Body(rec).Write(w)
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodPost); resp != nil {
		resp.Write(w)
		return
	}
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	draft, err := core.NewExpenseDraft(p.Get("category"), p.Get("amount"), p.Get("description"))
	if err == nil {
		draft.Frequency, err = core.ParseFrequency(p.Get("frequency"))
	}
	if err != nil {
		s.fail(w, r, log.OpAdd, err)
		return
	}
	rec, err := s.ledger.AddRecurringExpense(r.Context(), draft)
	if err != nil {
		s.fail(w, r, log.OpAdd, err)
		return
	}
	s.summaryCache.Clear()
	NewJSONResponse().Status(http.StatusCreated).Body(rec).Write(w)
}

func (s *Server) handleLimit(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPut:
		p := NewRequestBodyParser(r)
		if err := p.Parse(); err != nil {
			BadRequestError(err.Error()).Write(w)
			return
		}
		value, err := core.ParseLimit(p.Get("limit"))
		if err == nil {
			err = s.ledger.SetDailyLimit(r.Context(), value)
		}
		if err != nil {
			s.fail(w, r, log.OpSetLimit, err)
			return
		}
	default:
		MethodNotAllowedError("GET, PUT").Write(w)
		return
	}

	limit := s.ledger.DailyLimit()
	NewJSONResponse().Body(limitResponse{
		Limit:     limit,
		Formatted: core.FormatCurrency(limit),
		Enabled:   limit.IsPositive(),
	}).Write(w)
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	now := s.ledger.Now().In(s.location)
	spent := s.ledger.TodayTotal(now)
	limit := s.ledger.DailyLimit()
	d := notify.Classify(spent, limit)

	resp := todayResponse{
		Date:       now.Format(dateLayout),
		Spent:      spent,
		Limit:      limit,
		Percentage: d.Display,
		Band:       d.Band,
	}
	resp.Display.Spent = core.FormatCurrency(spent)
	resp.Display.Limit = core.FormatCurrency(limit)
	resp.Display.Percentage = core.FormatPercentage(core.CalculatePercentage(spent, limit))
	NewJSONResponse().Body(resp).Write(w)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	rng, err := ParseDateRange(r.URL.Query(), s.ledger.Now(), s.location)
	if err != nil {
		s.fail(w, r, "summary", err)
		return
	}

	key := rng.From.Format(dateLayout) + "|" + rng.To.Format(dateLayout)
	totals, found := s.summaryCache.Get(key)
	if found {
		log.FromContext(r.Context()).DebugContext(r.Context(), "Summary cache hit", "range", key)
	} else {
		totals, err = s.ledger.DayTotals(rng.From, rng.To)
		if err != nil {
			s.fail(w, r, "summary", err)
			return
		}
		s.summaryCache.Set(key, totals)
	}

	out := make([]dayTotalResponse, 0, len(totals))
	for _, t := range totals {
		day := dayTotalResponse{
			Day:        t.Day.Format(dateLayout),
			Total:      t.Total,
			Count:      t.Count,
			ByCategory: make([]categoryTotal, 0, len(t.ByCategory)),
		}
		for _, c := range t.ByCategory {
			day.ByCategory = append(day.ByCategory, categoryTotal{Name: c.Name, Amount: c.Amount})
		}
		out = append(out, day)
	}
	NewJSONResponse().Body(out).Write(w)
}

// fail logs err with the request logger and writes the mapped response.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	level := slog.LevelError
	if errorType(err) == log.ErrorTypeValidation {
		level = slog.LevelInfo
	}
	log.FromContext(r.Context()).Event(r.Context(), level, fmt.Sprintf("Request failed: %s", op),
		log.NewFields().WithOperation(op).WithError(err, errorType(err)))
	ErrorFor(err).Write(w)
}
