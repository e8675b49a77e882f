package memrepo

import (
	"context"
	"time"

	"github.com/go-petr/wallet-ledger/internal/domain"
	"github.com/go-petr/wallet-ledger/pkg/moneypkg"
)

type tx struct {
	state *state
	now   func() time.Time
}

func (t *tx) GetWallet(ctx context.Context, address string) (domain.Wallet, error) {
	return t.state.wallet(address)
}

func (t *tx) GetBalanceForUpdate(ctx context.Context, address, currencyCode string) (string, error) {
	amount, ok := t.state.balances[balanceKey{address, currencyCode}]
	if !ok {
		return "", domain.ErrBalanceNotFound
	}

	return amount, nil
}

// SetBalance mirrors the non-negative check of the balances table.
func (t *tx) SetBalance(ctx context.Context, address, currencyCode, amount string) error {
	key := balanceKey{address, currencyCode}

	if _, ok := t.state.balances[key]; !ok {
		return domain.ErrBalanceNotFound
	}

	d, err := moneypkg.ParseStored(amount)
	if err != nil {
		return domain.ErrInvalidAmount
	}

	if d.IsNegative() {
		return domain.ErrInsufficientFunds
	}

	t.state.balances[key] = moneypkg.Format(d)

	return nil
}

func (t *tx) checkRefs(addresses []string, currencies ...string) error {
	for _, a := range addresses {
		if _, ok := t.state.wallets[a]; !ok {
			return domain.ErrWalletNotFound
		}
	}

	for _, c := range currencies {
		if _, ok := t.state.currencies[c]; !ok {
			return domain.ErrCurrencyNotFound
		}
	}

	return nil
}

func (t *tx) CreateMovement(ctx context.Context, arg domain.CreateMovementParams) (domain.Movement, error) {
	if err := t.checkRefs([]string{arg.WalletAddress}, arg.CurrencyCode); err != nil {
		return domain.Movement{}, err
	}

	m := domain.Movement{
		ID:            int64(len(t.state.movements) + 1),
		WalletAddress: arg.WalletAddress,
		CurrencyCode:  arg.CurrencyCode,
		Kind:          arg.Kind,
		Amount:        arg.Amount,
		Fee:           arg.Fee,
		NetAmount:     arg.NetAmount,
		BalanceBefore: arg.BalanceBefore,
		BalanceAfter:  arg.BalanceAfter,
		CreatedAt:     t.now(),
	}

	t.state.movements = append(t.state.movements, m)

	return m, nil
}

func (t *tx) CreateConversion(ctx context.Context, arg domain.CreateConversionParams) (domain.Conversion, error) {
	if err := t.checkRefs([]string{arg.WalletAddress}, arg.SourceCurrency, arg.TargetCurrency); err != nil {
		return domain.Conversion{}, err
	}

	if arg.SourceCurrency == arg.TargetCurrency {
		return domain.Conversion{}, domain.ErrSameCurrency
	}

	c := domain.Conversion{
		ID:                  int64(len(t.state.conversions) + 1),
		WalletAddress:       arg.WalletAddress,
		SourceCurrency:      arg.SourceCurrency,
		TargetCurrency:      arg.TargetCurrency,
		SourceAmount:        arg.SourceAmount,
		QuoteRate:           arg.QuoteRate,
		FeeRate:             arg.FeeRate,
		Fee:                 arg.Fee,
		TargetAmount:        arg.TargetAmount,
		SourceBalanceBefore: arg.SourceBalanceBefore,
		SourceBalanceAfter:  arg.SourceBalanceAfter,
		TargetBalanceBefore: arg.TargetBalanceBefore,
		TargetBalanceAfter:  arg.TargetBalanceAfter,
		CreatedAt:           t.now(),
	}

	t.state.conversions = append(t.state.conversions, c)

	return c, nil
}

func (t *tx) CreateTransfer(ctx context.Context, arg domain.CreateTransferParams) (domain.Transfer, error) {
	if err := t.checkRefs([]string{arg.FromAddress, arg.ToAddress}, arg.CurrencyCode); err != nil {
		return domain.Transfer{}, err
	}

	if arg.FromAddress == arg.ToAddress {
		return domain.Transfer{}, domain.ErrSameWallet
	}

	tr := domain.Transfer{
		ID:                int64(len(t.state.transfers) + 1),
		FromAddress:       arg.FromAddress,
		ToAddress:         arg.ToAddress,
		CurrencyCode:      arg.CurrencyCode,
		Amount:            arg.Amount,
		Fee:               arg.Fee,
		FromBalanceBefore: arg.FromBalanceBefore,
		FromBalanceAfter:  arg.FromBalanceAfter,
		ToBalanceBefore:   arg.ToBalanceBefore,
		ToBalanceAfter:    arg.ToBalanceAfter,
		CreatedAt:         t.now(),
	}

	t.state.transfers = append(t.state.transfers, tr)

	return tr, nil
}
