// Package ledgerrepo composes the wallet, balance and record repositories
// into the ledger store backed by PostgreSQL.
package ledgerrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog"

	"github.com/go-petr/wallet-ledger/internal/balancerepo"
	"github.com/go-petr/wallet-ledger/internal/conversionrepo"
	"github.com/go-petr/wallet-ledger/internal/domain"
	"github.com/go-petr/wallet-ledger/internal/ledgerservice"
	"github.com/go-petr/wallet-ledger/internal/movementrepo"
	"github.com/go-petr/wallet-ledger/internal/transferrepo"
	"github.com/go-petr/wallet-ledger/internal/walletrepo"
	"github.com/go-petr/wallet-ledger/pkg/dbpkg"
	"github.com/go-petr/wallet-ledger/pkg/errorspkg"
)

// repos groups the table repositories bound to one connection or transaction.
type repos struct {
	wallets     *walletrepo.RepoPGS
	balances    *balancerepo.RepoPGS
	movements   *movementrepo.RepoPGS
	conversions *conversionrepo.RepoPGS
	transfers   *transferrepo.RepoPGS
}

func newRepos(db dbpkg.SQLInterface) repos {
	return repos{
		wallets:     walletrepo.NewRepoPGS(db),
		balances:    balancerepo.NewRepoPGS(db),
		movements:   movementrepo.NewRepoPGS(db),
		conversions: conversionrepo.NewRepoPGS(db),
		transfers:   transferrepo.NewRepoPGS(db),
	}
}

// RepoPGS facilitates ledger repository layer logic.
type RepoPGS struct {
	repos
	conn *sql.DB
}

var _ ledgerservice.Repo = (*RepoPGS)(nil)

// NewRepoPGS returns ledger RepoPGS with connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		repos: newRepos(db),
		conn:  db,
	}
}

// inTx runs fn inside a transaction and commits it when fn returns nil.
func (r *RepoPGS) inTx(ctx context.Context, fn func(repos) error) error {
	l := zerolog.Ctx(ctx)

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrStoreUnavailable
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			l.Error().Err(err).Send()
		}
	}()

	if err := fn(newRepos(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrStoreUnavailable
	}

	return nil
}

// CreateWallet creates the wallet with a zero balance of every currency.
func (r *RepoPGS) CreateWallet(ctx context.Context, address, secretHash string) (domain.Wallet, error) {
	var w domain.Wallet

	err := r.inTx(ctx, func(txr repos) error {
		var err error

		w, err = txr.wallets.Create(ctx, address, secretHash)
		if err != nil {
			return err
		}

		return txr.balances.Init(ctx, address)
	})
	if err != nil {
		return domain.Wallet{}, err
	}

	return w, nil
}

// GetWallet returns the wallet with the given address.
func (r *RepoPGS) GetWallet(ctx context.Context, address string) (domain.Wallet, error) {
	return r.wallets.Get(ctx, address)
}

// ListWallets returns all wallets ordered by creation time.
func (r *RepoPGS) ListWallets(ctx context.Context) ([]domain.Wallet, error) {
	return r.wallets.List(ctx)
}

// SetStatus changes the wallet status.
func (r *RepoPGS) SetStatus(ctx context.Context, address, status string) (domain.Wallet, error) {
	return r.wallets.SetStatus(ctx, address, status)
}

// ListBalances returns the wallet balances ordered by currency kind then code.
func (r *RepoPGS) ListBalances(ctx context.Context, address string) ([]domain.Balance, error) {
	return r.balances.List(ctx, address)
}

// GetCurrency returns the currency with the given code.
func (r *RepoPGS) GetCurrency(ctx context.Context, code string) (domain.Currency, error) {
	return r.balances.GetCurrency(ctx, code)
}

// ListMovements returns a page of the wallet movements.
func (r *RepoPGS) ListMovements(ctx context.Context, address string, limit, offset int32) ([]domain.Movement, error) {
	return r.movements.List(ctx, address, limit, offset)
}

// ListConversions returns a page of the wallet conversions.
func (r *RepoPGS) ListConversions(ctx context.Context, address string, limit, offset int32) ([]domain.Conversion, error) {
	return r.conversions.List(ctx, address, limit, offset)
}

// ListTransfers returns a page of the wallet transfers.
func (r *RepoPGS) ListTransfers(ctx context.Context, address string, limit, offset int32) ([]domain.Transfer, error) {
	return r.transfers.List(ctx, address, limit, offset)
}

// ExecTx runs fn in one database transaction.
func (r *RepoPGS) ExecTx(ctx context.Context, fn func(ledgerservice.Tx) error) error {
	return r.inTx(ctx, func(txr repos) error {
		return fn(&txRepo{txr})
	})
}

// txRepo is the ledgerservice.Tx view of a transaction.
type txRepo struct {
	repos
}

func (t *txRepo) GetWallet(ctx context.Context, address string) (domain.Wallet, error) {
	return t.wallets.GetForShare(ctx, address)
}

func (t *txRepo) GetBalanceForUpdate(ctx context.Context, address, currencyCode string) (string, error) {
	return t.balances.GetForUpdate(ctx, address, currencyCode)
}

func (t *txRepo) SetBalance(ctx context.Context, address, currencyCode, amount string) error {
	return t.balances.Set(ctx, address, currencyCode, amount)
}

func (t *txRepo) CreateMovement(ctx context.Context, arg domain.CreateMovementParams) (domain.Movement, error) {
	return t.movements.Create(ctx, arg)
}

func (t *txRepo) CreateConversion(ctx context.Context, arg domain.CreateConversionParams) (domain.Conversion, error) {
	return t.conversions.Create(ctx, arg)
}

func (t *txRepo) CreateTransfer(ctx context.Context, arg domain.CreateTransferParams) (domain.Transfer, error) {
	return t.transfers.Create(ctx, arg)
}
