// Package walletrepo manages repository layer of wallets.
package walletrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog"

	"github.com/go-petr/wallet-ledger/internal/domain"
	"github.com/go-petr/wallet-ledger/pkg/dbpkg"
	"github.com/go-petr/wallet-ledger/pkg/errorspkg"
)

// RepoPGS facilitates wallet repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns wallet RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

func scanWallet(row interface{ Scan(...any) error }) (domain.Wallet, error) {
	var w domain.Wallet

	err := row.Scan(
		&w.Address,
		&w.SecretHash,
		&w.Status,
		&w.CreatedAt,
	)

	return w, err
}

const createQuery = `
INSERT INTO
    wallets (address, secret_hash)
VALUES
    ($1, $2)
RETURNING address, secret_hash, status, created_at
`

// Create creates the wallet and then returns it.
func (r *RepoPGS) Create(ctx context.Context, address, secretHash string) (domain.Wallet, error) {
	l := zerolog.Ctx(ctx)

	w, err := scanWallet(r.db.QueryRowContext(ctx, createQuery, address, secretHash))
	if err != nil {
		if dbpkg.Constraint(err) == "wallets_pkey" {
			l.Warn().Err(err).Send()
			return w, domain.ErrDuplicateAddress
		}

		l.Error().Err(err).Send()

		return w, errorspkg.ErrStoreUnavailable
	}

	return w, nil
}

const getQuery = `
SELECT
	address, secret_hash, status, created_at
FROM wallets
WHERE address = $1
`

// Get returns the wallet with the given address.
func (r *RepoPGS) Get(ctx context.Context, address string) (domain.Wallet, error) {
	return r.get(ctx, getQuery, address)
}

const getForShareQuery = getQuery + `FOR SHARE
`

// GetForShare returns the wallet and holds a share lock on it until the
// transaction ends, so its status cannot change underneath the caller.
func (r *RepoPGS) GetForShare(ctx context.Context, address string) (domain.Wallet, error) {
	return r.get(ctx, getForShareQuery, address)
}

func (r *RepoPGS) get(ctx context.Context, query, address string, args ...any) (domain.Wallet, error) {
	l := zerolog.Ctx(ctx)

	args = append([]any{address}, args...)

	w, err := scanWallet(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			l.Info().Err(err).Str("address", address).Send()
			return w, domain.ErrWalletNotFound
		}

		l.Error().Err(err).Send()

		return w, errorspkg.ErrStoreUnavailable
	}

	return w, nil
}

const listQuery = `
SELECT
	address, secret_hash, status, created_at
FROM wallets
ORDER BY created_at, address
`

// List returns all wallets ordered by creation time.
func (r *RepoPGS) List(ctx context.Context) ([]domain.Wallet, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrStoreUnavailable
	}
	defer rows.Close()

	items := []domain.Wallet{}

	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrStoreUnavailable
		}

		items = append(items, w)
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrStoreUnavailable
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrStoreUnavailable
	}

	return items, nil
}

const setStatusQuery = `
UPDATE wallets
SET status = $2
WHERE address = $1
RETURNING address, secret_hash, status, created_at
`

// SetStatus changes the wallet status and returns the changed wallet.
func (r *RepoPGS) SetStatus(ctx context.Context, address, status string) (domain.Wallet, error) {
	return r.get(ctx, setStatusQuery, address, status)
}
