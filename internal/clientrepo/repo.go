// Package clientrepo manages repository layer of clients.
package clientrepo

import (
	"context"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/rs/zerolog"
)

// Repo facilitates client repository layer logic.
type Repo struct {
	db dbpkg.SQLInterface
}

// NewRepo returns client Repo.
func NewRepo(db dbpkg.SQLInterface) *Repo {
	return &Repo{db: db}
}

const createQuery = `
INSERT INTO
    clients (tax_id, name, birth_date, address)
VALUES
    ($1, $2, $3, $4)
RETURNING tax_id, name, address
`

// Create stores the client and then returns it. The birth date is echoed
// from c since SQLite reports no column type for RETURNING values.
func (r *Repo) Create(ctx context.Context, c domain.Client) (domain.Client, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, c.TaxID, c.Name, c.BirthDate, c.Address)

	var got domain.Client

	err := row.Scan(
		&got.TaxID,
		&got.Name,
		&got.Address,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if dbpkg.ViolationOf(err) == dbpkg.UniqueViolation {
			return domain.Client{}, domain.ErrClientAlreadyExists
		}

		return domain.Client{}, errorspkg.ErrInternal
	}

	got.BirthDate = c.BirthDate

	return got, nil
}

const listQuery = `
SELECT
    tax_id, name, birth_date, address
FROM clients
ORDER BY created_at, tax_id
`

// List returns every stored client.
func (r *Repo) List(ctx context.Context) ([]domain.Client, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Client{}

	for rows.Next() {
		var c domain.Client
		if err := rows.Scan(&c.TaxID, &c.Name, &c.BirthDate, &c.Address); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, c)
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
