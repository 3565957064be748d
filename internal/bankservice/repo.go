package bankservice

import (
	"context"

	"github.com/go-petr/pet-ledger/internal/domain"
)

// ClientRepo provides client persistence needed by the bank service.
//
//go:generate mockgen -source repo.go -destination repo_mock.go -package bankservice
type ClientRepo interface {
	Create(ctx context.Context, c domain.Client) (domain.Client, error)
	List(ctx context.Context) ([]domain.Client, error)
}

// AccountRepo provides account persistence needed by the bank service.
type AccountRepo interface {
	Create(ctx context.Context, a domain.Account) (domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
}

// TransactionRepo provides the append-only transaction log needed by the bank service.
type TransactionRepo interface {
	Create(ctx context.Context, t domain.Transaction) (domain.Transaction, error)
	List(ctx context.Context) ([]domain.Transaction, error)
}

// Repos bundles the persistence collaborators.
type Repos struct {
	Clients      ClientRepo
	Accounts     AccountRepo
	Transactions TransactionRepo
}

// Snapshot is the persisted state the service is rebuilt from.
type Snapshot struct {
	Clients      []domain.Client
	Accounts     []domain.Account
	Transactions []domain.Transaction
}

// LoadSnapshot reads the whole persisted state.
func LoadSnapshot(ctx context.Context, repos Repos) (Snapshot, error) {
	var (
		s   Snapshot
		err error
	)

	if s.Clients, err = repos.Clients.List(ctx); err != nil {
		return Snapshot{}, err
	}

	if s.Accounts, err = repos.Accounts.List(ctx); err != nil {
		return Snapshot{}, err
	}

	if s.Transactions, err = repos.Transactions.List(ctx); err != nil {
		return Snapshot{}, err
	}

	return s, nil
}
