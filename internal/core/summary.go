package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// DayTotal is the amount spent on one calendar day.
type DayTotal struct {
	Day        time.Time // midnight, local
	Total      decimal.Decimal
	Count      int
	ByCategory []CategoryAmount
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount decimal.Decimal
}
