package ledger

import (
	"time"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// Transaction is a ledger movement that applies itself to an account.
type Transaction interface {
	// Amount returns the requested, unsigned amount.
	Amount() decimal.Decimal
	// Signed returns the amount as it is recorded in the history.
	Signed() decimal.Decimal
	// ApplyTo posts the transaction to the account.
	ApplyTo(a *Account, now time.Time) (domain.Record, error)
}

var (
	_ Transaction = Deposit{}
	_ Transaction = Withdrawal{}
)

// Deposit credits an account.
type Deposit struct {
	amount decimal.Decimal
}

// NewDeposit returns a deposit of the given amount.
func NewDeposit(amount decimal.Decimal) (Deposit, error) {
	if amount.IsNegative() {
		return Deposit{}, domain.ErrInvalidAmount
	}

	return Deposit{amount: amount}, nil
}

// Amount returns the deposited amount.
func (d Deposit) Amount() decimal.Decimal { return d.amount }

// Signed returns the positive amount.
func (d Deposit) Signed() decimal.Decimal { return d.amount }

// ApplyTo deposits into a.
func (d Deposit) ApplyTo(a *Account, now time.Time) (domain.Record, error) {
	return a.Deposit(d.amount, now)
}

// Withdrawal debits an account.
type Withdrawal struct {
	amount decimal.Decimal
}

// NewWithdrawal returns a withdrawal of the given amount.
func NewWithdrawal(amount decimal.Decimal) (Withdrawal, error) {
	if amount.IsNegative() {
		return Withdrawal{}, domain.ErrInvalidAmount
	}

	return Withdrawal{amount: amount}, nil
}

// Amount returns the withdrawn amount.
func (w Withdrawal) Amount() decimal.Decimal { return w.amount }

// Signed returns the negated amount.
func (w Withdrawal) Signed() decimal.Decimal { return w.amount.Neg() }

// ApplyTo withdraws from a.
func (w Withdrawal) ApplyTo(a *Account, now time.Time) (domain.Record, error) {
	return a.Withdraw(w.amount, now)
}
