package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDescriptionLimitCountsCharacters(t *testing.T) {
	for _, desc := range []string{strings.Repeat("ñ", 200), strings.Repeat("€", 150) + strings.Repeat("a", 50)} {
		d := ExpenseDraft{Category: "a", Amount: decimal.NewFromInt(1), Description: desc}
		if err := d.Validate(); err != nil {
			t.Fatalf("%d characters should be accepted, got %v", len([]rune(desc)), err)
		}
	}
}

func TestExpenseDraftValidate(t *testing.T) {
	good := ExpenseDraft{
		Category:    "food",
		Amount:      decimal.RequireFromString("12.50"),
		Description: "lunch",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		draft ExpenseDraft
		want  error
	}{
		{ExpenseDraft{Category: " ", Amount: decimal.NewFromInt(1)}, ErrEmptyCategory},
		{ExpenseDraft{Category: "a", Amount: decimal.Zero}, ErrInvalidAmount},
		{ExpenseDraft{Category: "a", Amount: decimal.NewFromInt(-3)}, ErrInvalidAmount},
		{ExpenseDraft{Category: "a", Amount: decimal.NewFromInt(1), Description: strings.Repeat("x", 201)}, ErrDescriptionTooLong},
		{ExpenseDraft{Category: "a", Amount: decimal.NewFromInt(1), Description: strings.Repeat("ñ", 201)}, ErrDescriptionTooLong},
		{ExpenseDraft{Category: "a", Amount: decimal.NewFromInt(1), Frequency: "hourly"}, ErrInvalidFrequency},
	}
	for i, tc := range bads {
		err := tc.draft.Validate()
		if !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("case %d expected *ValidationError, got %T", i, err)
		}
	}
}

func TestNewExpenseDraft(t *testing.T) {
	d, err := NewExpenseDraft(" food ", "12,50", " lunch ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Category != "food" || d.Description != "lunch" {
		t.Fatalf("fields not trimmed: %+v", d)
	}
	if !d.Amount.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("amount = %s", d.Amount)
	}

	if _, err := NewExpenseDraft("food", "abc", ""); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	if _, err := NewExpenseDraft("", "1", ""); !errors.Is(err, ErrEmptyCategory) {
		t.Fatalf("expected empty category, got %v", err)
	}
}

func TestParseFrequency(t *testing.T) {
	for _, in := range []string{"daily", "Weekly", " MONTHLY ", "yearly"} {
		if _, err := ParseFrequency(in); err != nil {
			t.Fatalf("%q: unexpected error %v", in, err)
		}
	}
	if _, err := ParseFrequency("fortnightly"); !errors.Is(err, ErrInvalidFrequency) {
		t.Fatalf("expected ErrInvalidFrequency, got %v", err)
	}
}

func TestValidateLimit(t *testing.T) {
	if err := ValidateLimit(decimal.Zero); err != nil {
		t.Fatalf("zero limit should be allowed: %v", err)
	}
	if err := ValidateLimit(decimal.NewFromInt(-1)); !errors.Is(err, ErrInvalidLimit) {
		t.Fatalf("expected ErrInvalidLimit, got %v", err)
	}
}

func TestSameDay(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	ref := time.Date(2025, 3, 10, 0, 30, 0, 0, loc)

	cases := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"same instant", ref, true},
		{"late same day", time.Date(2025, 3, 10, 23, 59, 0, 0, loc), true},
		// 23:10 UTC on the 9th is 00:10 on the 10th in CET
		{"other zone same local day", time.Date(2025, 3, 9, 23, 10, 0, 0, time.UTC), true},
		{"previous day", time.Date(2025, 3, 9, 23, 59, 0, 0, loc), false},
		{"within 24h but next day", time.Date(2025, 3, 11, 0, 1, 0, 0, loc), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SameDay(tc.t, ref); got != tc.want {
				t.Errorf("SameDay(%v, %v) = %v, want %v", tc.t, ref, got, tc.want)
			}
		})
	}
}

func TestStorageErrorsUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	var err error = &StorageWriteError{Key: "k", Err: cause}
	if !errors.Is(err, cause) {
		t.Fatal("StorageWriteError should unwrap to its cause")
	}
	err = &StorageReadError{Key: "k", Err: cause}
	if !errors.Is(err, cause) {
		t.Fatal("StorageReadError should unwrap to its cause")
	}
	if got := err.Error(); got != "read k: disk full" {
		t.Fatalf("unexpected message %q", got)
	}
}
