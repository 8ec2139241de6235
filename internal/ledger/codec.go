package ledger

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"finanzapp/internal/core"
)

// Expenses are stored as a JSON array in insertion order. Amounts are written
// as decimal strings; numeric amounts from older blobs are still accepted.
func encodeExpenses(expenses []core.Expense) (string, error) {
	if expenses == nil {
		expenses = []core.Expense{}
	}
	b, err := json.Marshal(expenses)
	if err != nil {
		return "", fmt.Errorf("encode expenses: %w", err)
	}
	return string(b), nil
}

// decodeExpenses drops records with a negative amount and returns their IDs
// as skipped.
func decodeExpenses(raw string) (expenses []core.Expense, skipped []string, err error) {
	if strings.TrimSpace(raw) == "" {
		return []core.Expense{}, nil, nil
	}
	var decoded []core.Expense
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, nil, fmt.Errorf("decode expenses: %w", err)
	}
	expenses = make([]core.Expense, 0, len(decoded))
	for _, e := range decoded {
		if e.Amount.IsNegative() {
			skipped = append(skipped, e.ID)
			continue
		}
		expenses = append(expenses, e)
	}
	return expenses, skipped, nil
}

func encodeLimit(v decimal.Decimal) string {
	return v.String()
}

func decodeLimit(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("decode daily limit %q: %w", raw, err)
	}
	if v.IsNegative() {
		return decimal.Zero, fmt.Errorf("decode daily limit %q: %w", raw, core.ErrInvalidLimit)
	}
	return v, nil
}
