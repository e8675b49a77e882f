// Package movementrepo manages repository layer of deposits and withdrawals.
package movementrepo

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/go-petr/wallet-ledger/internal/domain"
	"github.com/go-petr/wallet-ledger/pkg/dbpkg"
	"github.com/go-petr/wallet-ledger/pkg/errorspkg"
)

// RepoPGS facilitates movement repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns movement RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{db: db}
}

const columns = `id, wallet_address, currency_code, kind, amount, fee, net_amount, balance_before, balance_after, created_at`

func scanMovement(row interface{ Scan(...any) error }) (domain.Movement, error) {
	var m domain.Movement

	err := row.Scan(
		&m.ID,
		&m.WalletAddress,
		&m.CurrencyCode,
		&m.Kind,
		&m.Amount,
		&m.Fee,
		&m.NetAmount,
		&m.BalanceBefore,
		&m.BalanceAfter,
		&m.CreatedAt,
	)

	return m, err
}

const createQuery = `
INSERT INTO
    movements (wallet_address, currency_code, kind, amount, fee, net_amount, balance_before, balance_after)
VALUES
    ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + columns

// Create creates the movement and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateMovementParams) (domain.Movement, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.WalletAddress,
		arg.CurrencyCode,
		arg.Kind,
		arg.Amount,
		arg.Fee,
		arg.NetAmount,
		arg.BalanceBefore,
		arg.BalanceAfter,
	)

	m, err := scanMovement(row)
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %+v)", arg)

		switch dbpkg.Constraint(err) {
		case "movements_wallet_address_fkey":
			return m, domain.ErrWalletNotFound
		case "movements_currency_code_fkey":
			return m, domain.ErrCurrencyNotFound
		case "movements_amount_check":
			return m, domain.ErrNonPositiveAmount
		}

		if dbpkg.NumericOverflow(err) {
			return m, domain.ErrBalanceLimit
		}

		return m, errorspkg.ErrStoreUnavailable
	}

	return m, nil
}

const listQuery = `
SELECT ` + columns + `
FROM movements
WHERE wallet_address = $1
ORDER BY id
LIMIT $2 OFFSET $3
`

// List returns a page of the wallet movements ordered by id.
func (r *RepoPGS) List(ctx context.Context, address string, limit, offset int32) ([]domain.Movement, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, address, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrStoreUnavailable
	}
	defer rows.Close()

	items := []domain.Movement{}

	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrStoreUnavailable
		}

		items = append(items, m)
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
