// Package ledger implements the in-memory account model: histories,
// accounts, transaction commands and clients with their daily policies.
package ledger

import (
	"time"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// History is the append-only record sequence of one account.
type History struct {
	records []domain.Record
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{}
}

// Append records the signed amount at the given time.
func (h *History) Append(amount decimal.Decimal, at time.Time) domain.Record {
	r := domain.Record{Amount: amount, CreatedAt: at}
	h.records = append(h.records, r)

	return r
}

// All returns a copy of every record in insertion order.
func (h *History) All() []domain.Record {
	out := make([]domain.Record, len(h.records))
	copy(out, h.records)

	return out
}

// Len returns the number of records.
func (h *History) Len() int {
	return len(h.records)
}

// RecordsOn returns the records whose calendar date equals the date of day.
func (h *History) RecordsOn(day time.Time) []domain.Record {
	var out []domain.Record

	for _, r := range h.records {
		if sameDate(r.CreatedAt, day) {
			out = append(out, r)
		}
	}

	return out
}

// Sum returns the sum of all recorded amounts.
func (h *History) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, r := range h.records {
		sum = sum.Add(r.Amount)
	}

	return sum
}

func (h *History) countOn(day time.Time, match func(domain.Record) bool) int {
	n := 0

	for _, r := range h.records {
		if sameDate(r.CreatedAt, day) && match(r) {
			n++
		}
	}

	return n
}

// sameDate compares calendar dates as seen in each time's own location.
func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()

	return ay == by && am == bm && ad == bd
}
