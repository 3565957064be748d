package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount indicates a non-positive deposit or withdrawal amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInsufficientBalance indicates that the account does not have sufficient balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrPolicyViolation indicates that an account withdrawal limit is exceeded.
	ErrPolicyViolation = errors.New("withdrawal policy violation")
	// ErrWithdrawalAmountLimit indicates that the amount is above the single withdrawal ceiling.
	ErrWithdrawalAmountLimit = fmt.Errorf("%w: withdrawal amount limit exceeded", ErrPolicyViolation)
	// ErrWithdrawalCountLimit indicates that the daily number of withdrawals is reached.
	ErrWithdrawalCountLimit = fmt.Errorf("%w: daily withdrawals limit reached", ErrPolicyViolation)
	// ErrQuotaExceeded indicates that the client reached the daily transactions quota.
	ErrQuotaExceeded = errors.New("daily transactions quota exceeded")
)

// StatementTimeLayout is the layout of the record time in statement lines.
const StatementTimeLayout = "Mon Jan _2 15:04:05 2006"

// Record is one immutable ledger movement.
type Record struct {
	Amount    decimal.Decimal `json:"amount"` // negative for withdrawals
	CreatedAt time.Time       `json:"created_at"`
}

// IsWithdrawal reports whether the record debits the account.
func (r Record) IsWithdrawal() bool {
	return r.Amount.IsNegative()
}

// String formats the record as a statement line.
func (r Record) String() string {
	sign := "+"
	if r.IsWithdrawal() {
		sign = "-"
	}

	return fmt.Sprintf("%s %s R$%s", r.CreatedAt.Format(StatementTimeLayout), sign, r.Amount.Abs().StringFixed(2))
}

// Transaction is the persisted form of a Record.
type Transaction struct {
	Owner         string          `json:"owner"`
	AccountNumber int32           `json:"account_number"`
	Amount        decimal.Decimal `json:"amount"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Record returns the ledger record of the transaction.
func (t Transaction) Record() Record {
	return Record{Amount: t.Amount, CreatedAt: t.CreatedAt}
}

// StatementFilter selects the records of a statement by amount sign.
type StatementFilter int

// Statement filters.
const (
	FilterAll StatementFilter = iota
	FilterDeposits
	FilterWithdrawals
)

// Match reports whether the record passes the filter.
func (f StatementFilter) Match(r Record) bool {
	switch f {
	case FilterDeposits:
		return !r.IsWithdrawal()
	case FilterWithdrawals:
		return r.IsWithdrawal()
	default:
		return true
	}
}
