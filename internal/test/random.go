package test

import (
	"time"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
)

// RandomClient returns random client.
func RandomClient() domain.Client {
	return domain.Client{
		TaxID:     randompkg.TaxID(),
		Name:      randompkg.Name(),
		BirthDate: randompkg.BirthDate(),
		Address:   randompkg.String(20),
	}
}

// RandomAccount returns random empty checking account owned by the given owner.
func RandomAccount(owner string) domain.Account {
	return domain.Account{
		Number: randompkg.IntBetween(1, 1_000_000),
		Owner:  owner,
		Branch: domain.Branch,
		Kind:   domain.KindChecking,
	}
}

// RandomTransaction returns random transaction of the given account.
func RandomTransaction(a domain.Account) domain.Transaction {
	amount := randompkg.MoneyAmountBetween(1, 500)
	if randompkg.Intn(2) == 0 {
		amount = amount.Neg()
	}

	return domain.Transaction{
		Owner:         a.Owner,
		AccountNumber: a.Number,
		Amount:        amount,
		CreatedAt:     time.Now().Truncate(time.Second),
	}
}
