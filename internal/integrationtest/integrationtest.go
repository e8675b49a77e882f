// Package integrationtest provides db helpers used in integration tests.
package integrationtest

import (
	"context"
	"database/sql"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/wallet-ledger/cmd/httpserver"
	"github.com/go-petr/wallet-ledger/internal/balancerepo"
	"github.com/go-petr/wallet-ledger/internal/domain"
	"github.com/go-petr/wallet-ledger/internal/middleware"
	"github.com/go-petr/wallet-ledger/internal/walletrepo"
	"github.com/go-petr/wallet-ledger/pkg/configpkg"
	"github.com/go-petr/wallet-ledger/pkg/dbpkg"
	"github.com/go-petr/wallet-ledger/pkg/passpkg"
	"github.com/go-petr/wallet-ledger/pkg/randompkg"
)

// ConfigPath is the configs directory relative to a package two levels deep.
const ConfigPath = "../../configs"

// LoadConfig loads the application config for integration tests.
func LoadConfig(t *testing.T) configpkg.Config {
	t.Helper()

	config, err := configpkg.Load(ConfigPath)
	if err != nil {
		t.Fatalf(`configpkg.Load(%q) returned error: %v`, ConfigPath, err)
	}

	return config
}

// SetupServer returns test server that cleans up database after each integration test.
func SetupServer(t *testing.T) *httpserver.Server {
	config := LoadConfig(t)
	config.Store = configpkg.StorePostgres
	config.RedisAddress = ""

	zerolog.SetGlobalLevel(zerolog.FatalLevel)

	logger := middleware.CreateLogger(config)

	db := SetupDB(t, config.DBDriver, config.DBSource)

	gin.SetMode(gin.ReleaseMode)

	server, err := httpserver.New(db, logger, config)
	if err != nil {
		t.Fatalf(`httpserver.New(db, logger, config) returned error: %v`, err)
	}

	return server
}

// Flush removes all wallets and their records. Seeded currencies are kept.
func Flush(t *testing.T, db *sql.DB) {
	t.Helper()

	const query = `TRUNCATE TABLE transfers, conversions, movements, balances, wallets RESTART IDENTITY CASCADE`

	if _, err := db.Exec(query); err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}
}

// SetupDB sets up connection with database for testing and then cleans it.
func SetupDB(t *testing.T, driver, source string) *sql.DB {
	t.Helper()

	db, err := dbpkg.Setup(driver, source)
	if err != nil {
		t.Fatalf("db initialization failed. err: %v", err)
	}

	t.Cleanup(func() {
		Flush(t, db)

		if err := db.Close(); err != nil {
			t.Fatalf("db cleanup failed. err: %v", err)
		}
	})

	return db
}

// SetupTX sets up a database transaction to be used in tests.
//
// Once the tests are done it will rollback the transaction.
func SetupTX(t *testing.T, driver, source string) *sql.Tx {
	t.Helper()

	db, err := dbpkg.Setup(driver, source)
	if err != nil {
		t.Fatalf("db initialization failed. err: %v", err)
	}

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("db.Begin() failed: %v", err)
	}

	t.Cleanup(func() {
		if err := tx.Rollback(); err != nil {
			t.Fatalf("tx.Rollback() failed: %v", err)
		}
		if err := db.Close(); err != nil {
			t.Fatalf("db.Close() failed: %v", err)
		}
	})

	return tx
}

// SeedWallet creates an active wallet with zero balances and returns it with its secret.
func SeedWallet(t *testing.T, db dbpkg.SQLInterface) (domain.Wallet, string) {
	t.Helper()

	address, err := randompkg.Hex(20)
	if err != nil {
		t.Fatalf("randompkg.Hex(20) returned error: %v", err)
	}

	secret := randompkg.String(32)

	secretHash, err := passpkg.Hash(secret)
	if err != nil {
		t.Fatalf("passpkg.Hash(%q) returned error: %v", secret, err)
	}

	ctx := context.Background()

	w, err := walletrepo.NewRepoPGS(db).Create(ctx, address, secretHash)
	if err != nil {
		t.Fatalf("walletrepo Create(%q) returned error: %v", address, err)
	}

	if err := balancerepo.NewRepoPGS(db).Init(ctx, address); err != nil {
		t.Fatalf("balancerepo Init(%q) returned error: %v", address, err)
	}

	return w, secret
}

// SeedBalance overwrites one wallet balance.
func SeedBalance(t *testing.T, db dbpkg.SQLInterface, address, currencyCode, amount string) {
	t.Helper()

	const query = `UPDATE balances SET amount = $3 WHERE wallet_address = $1 AND currency_code = $2`

	if _, err := db.ExecContext(context.Background(), query, address, currencyCode, amount); err != nil {
		t.Fatalf("seeding balance %s %s failed: %v", address, currencyCode, err)
	}
}
