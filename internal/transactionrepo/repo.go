// Package transactionrepo manages repository layer of the append-only transaction log.
package transactionrepo

import (
	"context"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Repo facilitates transaction repository layer logic.
type Repo struct {
	db dbpkg.SQLInterface
}

// NewRepo returns transaction Repo.
func NewRepo(db dbpkg.SQLInterface) *Repo {
	return &Repo{db: db}
}

const createQuery = `
INSERT INTO
    transactions (owner, account_number, amount, created_at)
VALUES
    ($1, $2, $3, $4)
RETURNING id
`

// Create appends the transaction to the log and then returns it.
func (r *Repo) Create(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, t.Owner, t.AccountNumber, t.Amount.String(), t.CreatedAt)

	var id int64

	if err := row.Scan(&id); err != nil {
		l.Error().Err(err).Send()

		if dbpkg.ViolationOf(err) == dbpkg.ForeignKeyViolation {
			return domain.Transaction{}, domain.ErrAccountNotFound
		}

		return domain.Transaction{}, errorspkg.ErrInternal
	}

	l.Debug().Int64("id", id).Int32("account", t.AccountNumber).Msg("transaction appended")

	return t, nil
}

const listQuery = `
SELECT
    owner, account_number, amount, created_at
FROM transactions
ORDER BY id
`

// List returns the whole log in append order.
func (r *Repo) List(ctx context.Context) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Transaction{}

	for rows.Next() {
		t, err := scan(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, t)
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scan reads one transaction. Timestamps are returned in the local zone the
// ledger computes calendar days in.
func scan(s scanner) (domain.Transaction, error) {
	var (
		t      domain.Transaction
		amount string
	)

	if err := s.Scan(&t.Owner, &t.AccountNumber, &amount, &t.CreatedAt); err != nil {
		return t, err
	}

	a, err := decimal.NewFromString(amount)
	if err != nil {
		return domain.Transaction{}, err
	}

	t.Amount = a
	t.CreatedAt = t.CreatedAt.Local()

	return t, nil
}
