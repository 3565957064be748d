package domain

import "github.com/shopspring/decimal"

// Limits holds the ledger policies read once at startup.
type Limits struct {
	MaxWithdrawalsPerDay  int
	MaxWithdrawalAmount   decimal.Decimal
	MaxTransactionsPerDay int
}

// DefaultLimits returns the limits used when nothing is configured.
func DefaultLimits() Limits {
	return Limits{
		MaxWithdrawalsPerDay:  3,
		MaxWithdrawalAmount:   decimal.NewFromInt(500),
		MaxTransactionsPerDay: 10,
	}
}
