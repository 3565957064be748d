// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"

	"github.com/rs/zerolog"
)

// Repo facilitates account repository layer logic.
type Repo struct {
	db dbpkg.SQLInterface
}

// NewRepo returns account Repo.
func NewRepo(db dbpkg.SQLInterface) *Repo {
	return &Repo{
		db: db,
	}
}

const createQuery = `
INSERT INTO
    accounts (number, owner, branch, kind)
VALUES
    ($1, $2, $3, $4)
RETURNING number, owner, branch, kind
`

// Create stores the account and then returns it. The balance is not stored,
// it is derived from the account transactions.
func (r *Repo) Create(ctx context.Context, a domain.Account) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, a.Number, a.Owner, a.Branch, a.Kind)

	var got domain.Account

	err := row.Scan(
		&got.Number,
		&got.Owner,
		&got.Branch,
		&got.Kind,
	)

	if err != nil {
		l.Error().Err(err).Send()

		switch dbpkg.ViolationOf(err) {
		case dbpkg.UniqueViolation:
			return domain.Account{}, domain.ErrAccountAlreadyExists
		case dbpkg.ForeignKeyViolation:
			return domain.Account{}, domain.ErrClientNotFound
		}

		return domain.Account{}, errorspkg.ErrInternal
	}

	got.Balance = a.Balance

	return got, nil
}

const listQuery = `
SELECT
    number, owner, branch, kind
FROM accounts
ORDER BY number
`

// List returns every stored account ordered by number.
func (r *Repo) List(ctx context.Context) ([]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Account{}

	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.Number, &a.Owner, &a.Branch, &a.Kind); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, a)
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
