// Package balancerepo manages repository layer of wallet balances and the
// currencies they are held in.
package balancerepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog"

	"github.com/go-petr/wallet-ledger/internal/domain"
	"github.com/go-petr/wallet-ledger/pkg/dbpkg"
	"github.com/go-petr/wallet-ledger/pkg/errorspkg"
)

// RepoPGS facilitates balance repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns balance RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const initQuery = `
INSERT INTO
    balances (wallet_address, currency_code, amount)
SELECT $1, code, 0
FROM currencies
`

// Init creates a zero balance of every known currency for the wallet.
func (r *RepoPGS) Init(ctx context.Context, address string) error {
	l := zerolog.Ctx(ctx)

	if _, err := r.db.ExecContext(ctx, initQuery, address); err != nil {
		l.Error().Err(err).Send()

		if dbpkg.Constraint(err) == "balances_wallet_address_fkey" {
			return domain.ErrWalletNotFound
		}

		return errorspkg.ErrStoreUnavailable
	}

	return nil
}

const listQuery = `
SELECT
	b.currency_code, c.name, c.kind, b.amount
FROM balances b
JOIN currencies c ON c.code = b.currency_code
WHERE b.wallet_address = $1
ORDER BY c.kind, c.code
`

// List returns the wallet balances ordered by currency kind then code.
func (r *RepoPGS) List(ctx context.Context, address string) ([]domain.Balance, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, address)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrStoreUnavailable
	}
	defer rows.Close()

	items := []domain.Balance{}

	for rows.Next() {
		var b domain.Balance
		if err := rows.Scan(&b.CurrencyCode, &b.Name, &b.Kind, &b.Amount); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrStoreUnavailable
		}

		items = append(items, b)
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

const getForUpdateQuery = `
SELECT amount
FROM balances
WHERE wallet_address = $1 AND currency_code = $2
FOR UPDATE
`

// GetForUpdate returns the balance amount and locks its row until the
// transaction ends.
func (r *RepoPGS) GetForUpdate(ctx context.Context, address, currencyCode string) (string, error) {
	l := zerolog.Ctx(ctx)

	var amount string

	err := r.db.QueryRowContext(ctx, getForUpdateQuery, address, currencyCode).Scan(&amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			l.Warn().Err(err).Str("address", address).Str("currency", currencyCode).Send()
			return "", domain.ErrBalanceNotFound
		}

		l.Error().Err(err).Send()

		return "", errorspkg.ErrStoreUnavailable
	}

	return amount, nil
}

const setQuery = `
UPDATE balances
SET amount = $3
WHERE wallet_address = $1 AND currency_code = $2
`

// Set overwrites the balance amount.
func (r *RepoPGS) Set(ctx context.Context, address, currencyCode, amount string) error {
	l := zerolog.Ctx(ctx)

	res, err := r.db.ExecContext(ctx, setQuery, address, currencyCode, amount)
	if err != nil {
		l.Error().Err(err).Send()

		if dbpkg.Constraint(err) == "balances_amount_check" {
			return domain.ErrInsufficientFunds
		}

		if dbpkg.NumericOverflow(err) {
			return domain.ErrBalanceLimit
		}

		return errorspkg.ErrStoreUnavailable
	}

	n, err := res.RowsAffected()
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrStoreUnavailable
	}

	if n == 0 {
		return domain.ErrBalanceNotFound
	}

	return nil
}

const getCurrencyQuery = `
SELECT code, name, kind
FROM currencies
WHERE code = $1
`

// GetCurrency returns the currency with the given code.
func (r *RepoPGS) GetCurrency(ctx context.Context, code string) (domain.Currency, error) {
	l := zerolog.Ctx(ctx)

	var c domain.Currency

	err := r.db.QueryRowContext(ctx, getCurrencyQuery, code).Scan(&c.Code, &c.Name, &c.Kind)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			l.Info().Err(err).Str("currency", code).Send()
			return c, domain.ErrCurrencyNotFound
		}

		l.Error().Err(err).Send()

		return c, errorspkg.ErrStoreUnavailable
	}

	return c, nil
}
