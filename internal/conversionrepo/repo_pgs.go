// Package conversionrepo manages repository layer of currency conversions.
package conversionrepo

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/go-petr/wallet-ledger/internal/domain"
	"github.com/go-petr/wallet-ledger/pkg/dbpkg"
	"github.com/go-petr/wallet-ledger/pkg/errorspkg"
)

// RepoPGS facilitates conversion repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns conversion RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{db: db}
}

const columns = `id, wallet_address, source_currency, target_currency, source_amount, quote_rate, fee_rate, fee,
	target_amount, source_balance_before, source_balance_after, target_balance_before, target_balance_after, created_at`

func scanConversion(row interface{ Scan(...any) error }) (domain.Conversion, error) {
	var c domain.Conversion

	err := row.Scan(
		&c.ID,
		&c.WalletAddress,
		&c.SourceCurrency,
		&c.TargetCurrency,
		&c.SourceAmount,
		&c.QuoteRate,
		&c.FeeRate,
		&c.Fee,
		&c.TargetAmount,
		&c.SourceBalanceBefore,
		&c.SourceBalanceAfter,
		&c.TargetBalanceBefore,
		&c.TargetBalanceAfter,
		&c.CreatedAt,
	)

	return c, err
}

const createQuery = `
INSERT INTO
    conversions (wallet_address, source_currency, target_currency, source_amount, quote_rate, fee_rate, fee,
	target_amount, source_balance_before, source_balance_after, target_balance_before, target_balance_after)
VALUES
    ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING ` + columns

// Create creates the conversion and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateConversionParams) (domain.Conversion, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.WalletAddress,
		arg.SourceCurrency,
		arg.TargetCurrency,
		arg.SourceAmount,
		arg.QuoteRate,
		arg.FeeRate,
		arg.Fee,
		arg.TargetAmount,
		arg.SourceBalanceBefore,
		arg.SourceBalanceAfter,
		arg.TargetBalanceBefore,
		arg.TargetBalanceAfter,
	)

	c, err := scanConversion(row)
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %+v)", arg)

		switch dbpkg.Constraint(err) {
		case "conversions_wallet_address_fkey":
			return c, domain.ErrWalletNotFound
		case "conversions_source_currency_fkey", "conversions_target_currency_fkey":
			return c, domain.ErrCurrencyNotFound
		case "conversions_check":
			return c, domain.ErrSameCurrency
		}

		if dbpkg.NumericOverflow(err) {
			return c, domain.ErrBalanceLimit
		}

		return c, errorspkg.ErrStoreUnavailable
	}

	return c, nil
}

const listQuery = `
SELECT ` + columns + `
FROM conversions
WHERE wallet_address = $1
ORDER BY id
LIMIT $2 OFFSET $3
`

// List returns a page of the wallet conversions ordered by id.
func (r *RepoPGS) List(ctx context.Context, address string, limit, offset int32) ([]domain.Conversion, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, address, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrStoreUnavailable
	}
	defer rows.Close()

	items := []domain.Conversion{}

	for rows.Next() {
		c, err := scanConversion(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrStoreUnavailable
		}

		items = append(items, c)
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
