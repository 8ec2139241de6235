package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finanzapp/internal/core"
	"finanzapp/internal/notify"
)

func TestColorForBand(t *testing.T) {
	tests := []struct {
		band notify.Band
		want string
	}{
		{notify.BandNone, string(ColorGreen)},
		{notify.BandWarning, string(ColorYellow)},
		{notify.BandReached, string(ColorRed)},
	}
	for _, tt := range tests {
		if got := string(ColorForBand(tt.band)); got != tt.want {
			t.Errorf("ColorForBand(%s) = %s, want %s", tt.band, got, tt.want)
		}
	}
}

func TestRenderToday(t *testing.T) {
	tests := []struct {
		name       string
		spent      string
		limit      string
		wantFilled int
		contains   []string
	}{
		{"no limit", "12.5", "0", 0, []string{"12,50 €", "Sin límite diario"}},
		{"quarter", "12.5", "50", 7, []string{"12,50 €", "25%", "de 50,00 €"}},
		{"over the limit", "55", "50", barWidth, []string{"55,00 €", "100%"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := RenderToday(decimal.RequireFromString(tt.spent), decimal.RequireFromString(tt.limit))
			for _, s := range tt.contains {
				if !strings.Contains(out, s) {
					t.Errorf("output missing %q:\n%s", s, out)
				}
			}
			if got := strings.Count(out, "█"); got != tt.wantFilled {
				t.Errorf("filled cells = %d, want %d", got, tt.wantFilled)
			}
		})
	}
}

func TestRenderExpenses(t *testing.T) {
	if out := RenderExpenses(nil); !strings.Contains(out, "No hay gastos") {
		t.Errorf("empty list output = %q", out)
	}

	out := RenderExpenses([]core.Expense{
		{Category: "food", Amount: decimal.RequireFromString("12.5"), Description: "lunch", Date: time.Now()},
		{Category: "rent", Amount: decimal.RequireFromString("12345"), Date: time.Now(), IsRecurring: true, Frequency: core.Monthly},
	})
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "lunch") || !strings.Contains(lines[0], "12,50 €") {
		t.Errorf("first line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "12.345,00 €") || !strings.Contains(lines[1], "monthly") {
		t.Errorf("second line = %q", lines[1])
	}
}
