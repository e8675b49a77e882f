// Package transferrepo manages repository layer of transfers.
package transferrepo

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/go-petr/wallet-ledger/internal/domain"
	"github.com/go-petr/wallet-ledger/pkg/dbpkg"
	"github.com/go-petr/wallet-ledger/pkg/errorspkg"
)

// RepoPGS facilitates transfer repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns transfer RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const columns = `id, from_address, to_address, currency_code, amount, fee,
	from_balance_before, from_balance_after, to_balance_before, to_balance_after, created_at`

func scanTransfer(row interface{ Scan(...any) error }) (domain.Transfer, error) {
	var t domain.Transfer

	err := row.Scan(
		&t.ID,
		&t.FromAddress,
		&t.ToAddress,
		&t.CurrencyCode,
		&t.Amount,
		&t.Fee,
		&t.FromBalanceBefore,
		&t.FromBalanceAfter,
		&t.ToBalanceBefore,
		&t.ToBalanceAfter,
		&t.CreatedAt,
	)

	return t, err
}

const createQuery = `
INSERT INTO
    transfers (from_address, to_address, currency_code, amount, fee,
	from_balance_before, from_balance_after, to_balance_before, to_balance_after)
VALUES
    ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + columns

// Create creates the transfer and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateTransferParams) (domain.Transfer, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.FromAddress,
		arg.ToAddress,
		arg.CurrencyCode,
		arg.Amount,
		arg.Fee,
		arg.FromBalanceBefore,
		arg.FromBalanceAfter,
		arg.ToBalanceBefore,
		arg.ToBalanceAfter,
	)

	t, err := scanTransfer(row)
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %+v)", arg)

		switch dbpkg.Constraint(err) {
		case "transfers_from_address_fkey":
			return t, domain.ErrWalletNotFound
		case "transfers_to_address_fkey":
			return t, domain.ErrDestinationNotFound
		case "transfers_currency_code_fkey":
			return t, domain.ErrCurrencyNotFound
		case "transfers_amount_check":
			return t, domain.ErrNonPositiveAmount
		case "transfers_check":
			return t, domain.ErrSameWallet
		}

		if dbpkg.NumericOverflow(err) {
			return t, domain.ErrBalanceLimit
		}

		return t, errorspkg.ErrStoreUnavailable
	}

	return t, nil
}

const listQuery = `
SELECT ` + columns + `
FROM transfers
WHERE
    from_address = $1 OR to_address = $1
ORDER BY id
LIMIT $2 OFFSET $3
`

// List returns a page of the transfers sent or received by the wallet.
func (r *RepoPGS) List(ctx context.Context, address string, limit, offset int32) ([]domain.Transfer, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, address, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrStoreUnavailable
	}
	defer rows.Close()

	items := []domain.Transfer{}

	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrStoreUnavailable
		}

		items = append(items, t)
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
