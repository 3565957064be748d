// Package test provides shared test helpers.
package test

import (
	"context"
	"testing"

	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/clientrepo"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/transactionrepo"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
)

// SeedClient creates random Client inside a test transaction.
func SeedClient(t *testing.T, tx dbpkg.SQLInterface) domain.Client {
	t.Helper()

	arg := RandomClient()

	client, err := clientrepo.NewRepo(tx).Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("clientRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return client
}

// SeedAccount creates random Account of the given owner inside a test transaction.
func SeedAccount(t *testing.T, tx dbpkg.SQLInterface, owner string) domain.Account {
	t.Helper()

	arg := RandomAccount(owner)

	account, err := accountrepo.NewRepo(tx).Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("accountRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return account
}

// SeedTransaction creates random Transaction of the given account inside a test transaction.
func SeedTransaction(t *testing.T, tx dbpkg.SQLInterface, a domain.Account) domain.Transaction {
	t.Helper()

	arg := RandomTransaction(a)

	transaction, err := transactionrepo.NewRepo(tx).Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("transactionRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return transaction
}
