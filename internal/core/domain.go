package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

const maxDescriptionLen = 200

type (
	Frequency string

	// Expense is the single persisted shape of an expense record. JSON keys
	// match the blobs written by the mobile app.
	Expense struct {
		ID           string          `json:"id"`
		Category     string          `json:"category"`
		Amount       decimal.Decimal `json:"amount"`
		Description  string          `json:"description,omitempty"`
		Date         time.Time       `json:"date"`
		IsRecurring  bool            `json:"isRecurring"`
		Frequency    Frequency       `json:"frequency,omitempty"`
		RecurrenceOf string          `json:"recurrenceOf,omitempty"` // template ID for generated records
	}

	// ExpenseDraft is user input that has not been committed to the ledger yet.
	ExpenseDraft struct {
		Category    string
		Amount      decimal.Decimal
		Description string
		Frequency   Frequency // empty for one-off expenses
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidLimit       = errors.New("invalid daily limit")
	ErrEmptyCategory      = errors.New("empty category")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrInvalidFrequency   = errors.New("invalid frequency")
)

// Valid reports whether f is one of the supported frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	default:
		return false
	}
}

// ParseFrequency accepts the frequency names case-insensitively.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", &ValidationError{Field: "frequency", Err: ErrInvalidFrequency}
	}
	return f, nil
}

// NewExpenseDraft builds a draft from raw form input.
func NewExpenseDraft(category, amount, description string) (ExpenseDraft, error) {
	value, err := ParseAmount(amount)
	if err != nil {
		return ExpenseDraft{}, err
	}
	d := ExpenseDraft{
		Category:    strings.TrimSpace(category),
		Amount:      value,
		Description: strings.TrimSpace(description),
	}
	if err := d.Validate(); err != nil {
		return ExpenseDraft{}, err
	}
	return d, nil
}

func (d ExpenseDraft) Validate() error {
	if strings.TrimSpace(d.Category) == "" {
		return &ValidationError{Field: "category", Err: ErrEmptyCategory}
	}
	if !d.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	if utf8.RuneCountInString(d.Description) > maxDescriptionLen {
		return &ValidationError{Field: "description", Err: ErrDescriptionTooLong}
	}
	if d.Frequency != "" && !d.Frequency.Valid() {
		return &ValidationError{Field: "frequency", Err: ErrInvalidFrequency}
	}
	return nil
}

// ValidateLimit checks a daily limit value. Zero disables the limit.
func ValidateLimit(v decimal.Decimal) error {
	if v.IsNegative() {
		return &ValidationError{Field: "limit", Err: ErrInvalidLimit}
	}
	return nil
}

// SameDay reports whether t falls on the local calendar day of ref, using
// ref's location.
func SameDay(t, ref time.Time) bool {
	y1, m1, d1 := t.In(ref.Location()).Date()
	y2, m2, d2 := ref.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
