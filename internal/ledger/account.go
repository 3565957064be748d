package ledger

import (
	"time"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// withdrawalPolicy validates a withdrawal against account kind specific limits.
type withdrawalPolicy interface {
	check(h *History, amount decimal.Decimal, now time.Time) error
}

type checkingPolicy struct {
	maxAmount decimal.Decimal
	maxPerDay int
}

func (p checkingPolicy) check(h *History, amount decimal.Decimal, now time.Time) error {
	if amount.GreaterThan(p.maxAmount) {
		return domain.ErrWithdrawalAmountLimit
	}

	// Exactly maxPerDay withdrawals are allowed per calendar day.
	if h.countOn(now, domain.Record.IsWithdrawal) >= p.maxPerDay {
		return domain.ErrWithdrawalCountLimit
	}

	return nil
}

func policyFor(kind domain.AccountKind, limits domain.Limits) withdrawalPolicy {
	switch kind {
	case domain.KindChecking:
		return checkingPolicy{maxAmount: limits.MaxWithdrawalAmount, maxPerDay: limits.MaxWithdrawalsPerDay}
	default:
		panic("ledger: unknown account kind " + string(kind))
	}
}

// Account holds a balance and the history that produced it.
type Account struct {
	number  int32
	owner   string
	kind    domain.AccountKind
	balance decimal.Decimal
	history *History
	policy  withdrawalPolicy
}

// NewAccount returns an empty account of the given kind owned by the client with the given tax id.
func NewAccount(number int32, owner string, kind domain.AccountKind, limits domain.Limits) *Account {
	return &Account{
		number:  number,
		owner:   owner,
		kind:    kind,
		balance: decimal.Zero,
		history: NewHistory(),
		policy:  policyFor(kind, limits),
	}
}

// Number returns the account number.
func (a *Account) Number() int32 { return a.number }

// Owner returns the owner tax id.
func (a *Account) Owner() string { return a.owner }

// Balance returns the current balance.
func (a *Account) Balance() decimal.Decimal { return a.balance }

// History returns the account history.
func (a *Account) History() *History { return a.history }

// Snapshot returns the account as a domain value.
func (a *Account) Snapshot() domain.Account {
	return domain.Account{
		Number:  a.number,
		Owner:   a.owner,
		Branch:  domain.Branch,
		Kind:    a.kind,
		Balance: a.balance,
	}
}

// Deposit credits a positive amount.
func (a *Account) Deposit(amount decimal.Decimal, now time.Time) (domain.Record, error) {
	if !amount.IsPositive() {
		return domain.Record{}, domain.ErrInvalidAmount
	}

	return a.post(amount, now), nil
}

// Withdraw debits the amount. Checks run in order: amount sign, single
// withdrawal ceiling, daily withdrawals count, balance.
func (a *Account) Withdraw(amount decimal.Decimal, now time.Time) (domain.Record, error) {
	if !amount.IsPositive() {
		return domain.Record{}, domain.ErrInvalidAmount
	}

	if err := a.policy.check(a.history, amount, now); err != nil {
		return domain.Record{}, err
	}

	if amount.GreaterThan(a.balance) {
		return domain.Record{}, domain.ErrInsufficientBalance
	}

	return a.post(amount.Neg(), now), nil
}

// replay appends a persisted record without validation.
func (a *Account) replay(r domain.Record) {
	a.history.Append(r.Amount, r.CreatedAt)
}

func (a *Account) post(signed decimal.Decimal, now time.Time) domain.Record {
	a.balance = a.balance.Add(signed)
	return a.history.Append(signed, now)
}

// RestoreAccount rebuilds an account from persisted records. The starting
// balance is the sum of the records, which are then replayed in order with
// their original timestamps. No policy is checked.
func RestoreAccount(number int32, owner string, kind domain.AccountKind, limits domain.Limits, records []domain.Record) *Account {
	a := NewAccount(number, owner, kind, limits)

	for _, r := range records {
		a.balance = a.balance.Add(r.Amount)
	}

	for _, r := range records {
		a.replay(r)
	}

	return a
}
