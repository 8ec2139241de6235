package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"finanzapp/internal/core"
)

func TestParseDateRange(t *testing.T) {
	loc := time.UTC
	now := time.Date(2025, 6, 15, 18, 30, 0, 0, loc)

	tests := []struct {
		name      string
		query     url.Values
		wantFrom  string
		wantTo    string
		wantField string
	}{
		{
			name:     "defaults to last seven days",
			query:    url.Values{},
			wantFrom: "2025-06-09",
			wantTo:   "2025-06-15",
		},
		{
			name:     "explicit range",
			query:    url.Values{"from": {"2025-05-01"}, "to": {"2025-05-31"}},
			wantFrom: "2025-05-01",
			wantTo:   "2025-05-31",
		},
		{
			name:     "only from",
			query:    url.Values{"from": {"2025-06-01"}},
			wantFrom: "2025-06-01",
			wantTo:   "2025-06-15",
		},
		{
			name:      "bad from",
			query:     url.Values{"from": {"01/06/2025"}},
			wantField: "from",
		},
		{
			name:      "bad to",
			query:     url.Values{"to": {"tomorrow"}},
			wantField: "to",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseDateRange(tt.query, now, loc)
			if tt.wantField != "" {
				var verr *core.ValidationError
				if !errors.As(err, &verr) || verr.Field != tt.wantField {
					t.Fatalf("expected validation error on %q, got %v", tt.wantField, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := r.From.Format(dateLayout); got != tt.wantFrom {
				t.Errorf("From = %s, want %s", got, tt.wantFrom)
			}
			if got := r.To.Format(dateLayout); got != tt.wantTo {
				t.Errorf("To = %s, want %s", got, tt.wantTo)
			}
		})
	}
}

func TestRequestBodyParser(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		wantJSON    bool
		want        map[string]string
	}{
		{
			name:        "json object",
			body:        `{"category":" Food ","amount":"12,50"}`,
			contentType: "application/json",
			wantJSON:    true,
			want:        map[string]string{"category": "Food", "amount": "12,50"},
		},
		{
			name:     "json number keeps literal",
			body:     `{"amount": 0.10}`,
			wantJSON: true,
			want:     map[string]string{"amount": "0.10", "missing": ""},
		},
		{
			name:        "form encoded",
			body:        "category=Transport&amount=3.20",
			contentType: "application/x-www-form-urlencoded",
			want:        map[string]string{"category": "Transport", "amount": "3.20"},
		},
		{
			name: "empty body",
			body: "",
			want: map[string]string{"category": ""},
		},
		{
			name: "control characters stripped",
			body: "description=caf%C3%A9%00%07",
			want: map[string]string{"description": "café"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/expenses", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			p := NewRequestBodyParser(req)
			if err := p.Parse(); err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			if p.IsJSON() != tt.wantJSON {
				t.Errorf("IsJSON() = %v, want %v", p.IsJSON(), tt.wantJSON)
			}
			for k, v := range tt.want {
				if got := p.Get(k); got != v {
					t.Errorf("Get(%q) = %q, want %q", k, got, v)
				}
			}
		})
	}
}

func TestRequestBodyParser_Errors(t *testing.T) {
	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":`))
		if err := NewRequestBodyParser(req).Parse(); err == nil {
			t.Fatal("expected error for malformed JSON")
		}
	})

	t.Run("body too large", func(t *testing.T) {
		big := "description=" + strings.Repeat("a", maxBodyBytes+1)
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
		p := NewRequestBodyParser(req)
		if err := p.Parse(); err == nil {
			t.Fatal("expected error for oversized body")
		}
		// Parse is memoized.
		if err := p.Parse(); err == nil {
			t.Fatal("second Parse should return the same error")
		}
	})
}

func TestRequireMethod(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if resp := RequireMethod(req, http.MethodGet, http.MethodPost); resp != nil {
		t.Fatal("GET should be allowed")
	}

	resp := RequireMethod(req, http.MethodPost, http.MethodPut)
	if resp == nil {
		t.Fatal("GET should be rejected")
	}
	rec := httptest.NewRecorder()
	resp.Write(rec)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
	if got := rec.Header().Get("Allow"); got != "POST, PUT" {
		t.Errorf("Allow = %q", got)
	}
}

func TestRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	if got := requestID(req); got != "abc-123" {
		t.Errorf("requestID() = %q, want client value", got)
	}

	req.Header.Set("X-Request-ID", "bad id with spaces")
	if got := requestID(req); !strings.HasPrefix(got, "req_") {
		t.Errorf("requestID() = %q, want generated ID", got)
	}
}
