// Package domain provides defenitions of all ledger entities.
package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrAccountNotFound indicates that the account is not found or is not owned by the given client.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountAlreadyExists indicates that the account number is already taken.
	ErrAccountAlreadyExists = errors.New("account already exists")
)

// Branch is the agency code shared by every account.
const Branch = "0001"

// AccountKind selects the withdrawal policy applied to an account.
type AccountKind string

// Supported account kinds.
const (
	KindChecking AccountKind = "checking"
)

// Account holds client balance data.
type Account struct {
	Number  int32           `json:"number"`
	Owner   string          `json:"owner"`
	Branch  string          `json:"branch"`
	Kind    AccountKind     `json:"kind"`
	Balance decimal.Decimal `json:"balance"`
}
