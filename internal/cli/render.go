package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"finanzapp/internal/core"
	"finanzapp/internal/notify"
)

var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorYellow    = lipgloss.Color("#D0A215")
	ColorRed       = lipgloss.Color("#D14D41")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)
)

const barWidth = 30

// ColorForBand returns green below 80%, yellow from 80% and red once the
// limit is reached.
func ColorForBand(b notify.Band) lipgloss.Color {
	switch b {
	case notify.BandReached:
		return ColorRed
	case notify.BandWarning:
		return ColorYellow
	default:
		return ColorGreen
	}
}

// RenderTitle renders a title in a rounded box.
func RenderTitle(title string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1).
		Render(titleStyle.Render(title))
}

// RenderToday renders today's total against the daily limit with a
// progress bar colored by band.
func RenderToday(spent, limit decimal.Decimal) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Gastado hoy"))
	b.WriteString("  ")
	b.WriteString(core.FormatCurrency(spent))
	b.WriteString("\n")

	if !limit.IsPositive() {
		b.WriteString(mutedStyle.Render("Sin límite diario"))
		return b.String()
	}

	d := notify.Classify(spent, limit)
	style := lipgloss.NewStyle().Foreground(ColorForBand(d.Band))
	pct := core.CalculatePercentage(spent, limit)

	filled := int(pct.Mul(decimal.NewFromInt(barWidth)).Div(decimal.NewFromInt(100)).IntPart())
	if filled > barWidth {
		filled = barWidth
	}
	b.WriteString(style.Render(strings.Repeat("█", filled)))
	b.WriteString(mutedStyle.Render(strings.Repeat("░", barWidth-filled)))
	b.WriteString(" ")
	b.WriteString(style.Bold(true).Render(core.FormatPercentage(pct)))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  de %s", core.FormatCurrency(limit))))
	return b.String()
}

// RenderExpenses renders one line per expense, oldest first.
func RenderExpenses(expenses []core.Expense) string {
	if len(expenses) == 0 {
		return mutedStyle.Render("No hay gastos registrados")
	}
	var b strings.Builder
	for i, e := range expenses {
		if i > 0 {
			b.WriteString("\n")
		}
		line := fmt.Sprintf("%s  %-14s %12s",
			e.Date.Local().Format("2006-01-02 15:04"),
			e.Category,
			core.FormatCurrency(e.Amount))
		b.WriteString(line)
		if e.Description != "" {
			b.WriteString("  ")
			b.WriteString(mutedStyle.Render(e.Description))
		}
		if e.IsRecurring {
			b.WriteString("  ")
			b.WriteString(headerStyle.Render("↻ " + string(e.Frequency)))
		}
	}
	return b.String()
}
