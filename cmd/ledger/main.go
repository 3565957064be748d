// Package main runs the ledger text menu on the terminal.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/bankservice"
	"github.com/go-petr/pet-ledger/internal/clientrepo"
	"github.com/go-petr/pet-ledger/internal/menudelivery"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/internal/transactionrepo"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.GetLogger(config)

	ctx := logger.WithContext(context.Background())

	db, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to database")
	}
	defer db.Close()

	handler, err := createHandler(ctx, db, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create ledger")
	}

	logger.Info().Msg("LEDGER HAS STARTED")

	if err := handler.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("menu stopped")
	}

	logger.Info().Msg("LEDGER HAS STOPPED")
}

func createHandler(ctx context.Context, db *sql.DB, logger zerolog.Logger, config configpkg.Config) (*menudelivery.Handler, error) {
	limits, err := config.Limits()
	if err != nil {
		return nil, fmt.Errorf("invalid limits: %w", err)
	}

	if err := dbpkg.Migrate(ctx, db, config.DBDriver); err != nil {
		return nil, err
	}

	repos := bankservice.Repos{
		Clients:      clientrepo.NewRepo(db),
		Accounts:     accountrepo.NewRepo(db),
		Transactions: transactionrepo.NewRepo(db),
	}

	service, err := bankservice.Load(ctx, repos, limits, bankservice.WithAudit(middleware.AuditLogger(logger)))
	if err != nil {
		return nil, fmt.Errorf("cannot restore ledger: %w", err)
	}

	return menudelivery.NewHandler(service, os.Stdin, os.Stdout), nil
}
