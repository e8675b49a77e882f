// Package main runs the wallet ledger API.
package main

import (
	"database/sql"

	"github.com/rs/zerolog/log"

	"github.com/go-petr/wallet-ledger/cmd/httpserver"
	"github.com/go-petr/wallet-ledger/internal/middleware"
	"github.com/go-petr/wallet-ledger/pkg/configpkg"
	"github.com/go-petr/wallet-ledger/pkg/dbpkg"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.CreateLogger(config)

	var db *sql.DB

	if config.Store != configpkg.StoreMemory {
		db, err = dbpkg.Setup(config.DBDriver, config.DBSource)
		if err != nil {
			logger.Fatal().Err(err).Msg("cannot connect to database")
		}
		defer db.Close()
	}

	server, err := httpserver.New(db, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}
	defer server.Close()

	logger.Info().Str("store", config.Store).Msg("WALLET LEDGER API SERVER HAS STARTED")

	err = server.Engine.Run(config.ServerAddress)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}
