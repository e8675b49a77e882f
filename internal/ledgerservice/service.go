// Package ledgerservice manages business logic layer of the wallet ledger.
//
// Every money movement validates its input, authorizes the wallet, and then
// reads, checks and writes the affected balances together with an immutable
// record inside one store transaction. Balances are read under a row lock so
// concurrent operations on the same balance serialize.
package ledgerservice

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/go-petr/wallet-ledger/internal/domain"
	"github.com/go-petr/wallet-ledger/pkg/errorspkg"
	"github.com/go-petr/wallet-ledger/pkg/moneypkg"
	"github.com/go-petr/wallet-ledger/pkg/passpkg"
	"github.com/go-petr/wallet-ledger/pkg/randompkg"
)

// Repo provides data access layer interface needed by ledger service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package ledgerservice
type Repo interface {
	CreateWallet(ctx context.Context, address, secretHash string) (domain.Wallet, error)
	GetWallet(ctx context.Context, address string) (domain.Wallet, error)
	ListWallets(ctx context.Context) ([]domain.Wallet, error)
	SetStatus(ctx context.Context, address, status string) (domain.Wallet, error)
	ListBalances(ctx context.Context, address string) ([]domain.Balance, error)
	GetCurrency(ctx context.Context, code string) (domain.Currency, error)
	ListMovements(ctx context.Context, address string, limit, offset int32) ([]domain.Movement, error)
	ListConversions(ctx context.Context, address string, limit, offset int32) ([]domain.Conversion, error)
	ListTransfers(ctx context.Context, address string, limit, offset int32) ([]domain.Transfer, error)

	// ExecTx runs fn in one transaction. It commits when fn returns nil and
	// rolls back otherwise.
	ExecTx(ctx context.Context, fn func(Tx) error) error
}

// Tx is the view of the store inside a transaction.
type Tx interface {
	// GetWallet returns the wallet and keeps its status stable until the transaction ends.
	GetWallet(ctx context.Context, address string) (domain.Wallet, error)
	// GetBalanceForUpdate returns the amount and locks the balance until the transaction ends.
	GetBalanceForUpdate(ctx context.Context, address, currencyCode string) (string, error)
	SetBalance(ctx context.Context, address, currencyCode, amount string) error
	CreateMovement(ctx context.Context, arg domain.CreateMovementParams) (domain.Movement, error)
	CreateConversion(ctx context.Context, arg domain.CreateConversionParams) (domain.Conversion, error)
	CreateTransfer(ctx context.Context, arg domain.CreateTransferParams) (domain.Transfer, error)
}

// QuoteProvider supplies spot exchange rates.
type QuoteProvider interface {
	GetQuote(ctx context.Context, base, quote string) (decimal.Decimal, error)
}

// Config holds the ledger parameters.
type Config struct {
	WithdrawalFeeRate decimal.Decimal
	ConversionFeeRate decimal.Decimal
	TransferFeeRate   decimal.Decimal

	// AddressSize and SecretSize are in random bytes; both are hex encoded.
	AddressSize int
	SecretSize  int

	QuoteTimeout time.Duration
}

// DefaultConfig returns the ledger defaults.
func DefaultConfig() Config {
	return Config{
		WithdrawalFeeRate: decimal.RequireFromString("0.01"),
		ConversionFeeRate: decimal.RequireFromString("0.02"),
		TransferFeeRate:   decimal.RequireFromString("0.005"),
		AddressSize:       20,
		SecretSize:        32,
		QuoteTimeout:      10 * time.Second,
	}
}

const (
	createWalletAttempts = 3
	defaultPageSize      = 10
)

// Service facilitates ledger service layer logic.
type Service struct {
	repo   Repo
	quotes QuoteProvider
	config Config
}

// New returns ledger service struct to manage wallets and money movements.
func New(repo Repo, quotes QuoteProvider, config Config) *Service {
	return &Service{
		repo:   repo,
		quotes: quotes,
		config: config,
	}
}

func validAddress(address string) error {
	if strings.TrimSpace(address) == "" {
		return domain.ErrInvalidAddress
	}

	return nil
}

func validSecret(secret string) error {
	if secret == "" {
		return domain.ErrSecretRequired
	}

	return nil
}

func parseAmount(amount string) (decimal.Decimal, error) {
	d, err := moneypkg.Parse(amount)

	switch {
	case err == nil:
		return d, nil
	case errors.Is(err, moneypkg.ErrNonPositive):
		return d, domain.ErrNonPositiveAmount
	default:
		return d, domain.ErrInvalidAmount
	}
}

// activeWallet loads the wallet and checks that it is active.
func (s *Service) activeWallet(ctx context.Context, address string) (domain.Wallet, error) {
	w, err := s.repo.GetWallet(ctx, address)
	if err != nil {
		return w, err
	}

	if !w.IsActive() {
		return w, domain.ErrWalletBlocked
	}

	return w, nil
}

func verifySecret(ctx context.Context, w domain.Wallet, secret string) error {
	err := passpkg.Check(secret, w.SecretHash)
	if err == nil {
		return nil
	}

	if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		zerolog.Ctx(ctx).Error().Err(err).Str("address", w.Address).Msg("stored secret digest is unusable")
	}

	return domain.ErrInvalidSecret
}

// recheckActive reloads the wallet inside tx so a concurrent block cannot
// slip between the checks and the writes.
func recheckActive(ctx context.Context, tx Tx, address string, blocked error) error {
	w, err := tx.GetWallet(ctx, address)
	if err != nil {
		return err
	}

	if !w.IsActive() {
		return blocked
	}

	return nil
}

// lockBalance reads and locks a balance inside tx. Every wallet holds a row
// for every currency, so a missing or unreadable row is a store fault.
func lockBalance(ctx context.Context, tx Tx, address, currencyCode string) (decimal.Decimal, error) {
	l := zerolog.Ctx(ctx)

	amount, err := tx.GetBalanceForUpdate(ctx, address, currencyCode)
	if err != nil {
		if errors.Is(err, domain.ErrBalanceNotFound) {
			l.Error().Str("address", address).Str("currency", currencyCode).Msg("balance row is missing")
			return decimal.Decimal{}, domain.ErrLedgerInconsistent
		}

		return decimal.Decimal{}, err
	}

	d, err := moneypkg.ParseStored(amount)
	if err != nil {
		l.Error().Err(err).Str("address", address).Str("currency", currencyCode).Send()
		return decimal.Decimal{}, domain.ErrLedgerInconsistent
	}

	return d, nil
}

func insufficient(required, available decimal.Decimal) error {
	return &domain.InsufficientFundsError{
		Required:  moneypkg.Format(required),
		Available: moneypkg.Format(available),
	}
}

// credit adds value to before, failing when the result cannot be stored.
func credit(ctx context.Context, before, value decimal.Decimal) (decimal.Decimal, error) {
	after := before.Add(value)
	if !moneypkg.InRange(after) {
		zerolog.Ctx(ctx).Info().Str("balance", moneypkg.Format(before)).Str("credit", moneypkg.Format(value)).
			Msg("balance limit exceeded")

		return decimal.Decimal{}, domain.ErrBalanceLimit
	}

	return after, nil
}

// CreateWallet creates a wallet with a fresh address and secret.
// The plaintext secret is returned only here.
func (s *Service) CreateWallet(ctx context.Context) (domain.CreatedWallet, error) {
	l := zerolog.Ctx(ctx)

	secret, err := randompkg.Hex(s.config.SecretSize)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.CreatedWallet{}, errorspkg.ErrInternal
	}

	secretHash, err := passpkg.Hash(secret)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.CreatedWallet{}, errorspkg.ErrInternal
	}

	for attempt := 1; attempt <= createWalletAttempts; attempt++ {
		address, err := randompkg.Hex(s.config.AddressSize)
		if err != nil {
			l.Error().Err(err).Send()
			return domain.CreatedWallet{}, errorspkg.ErrInternal
		}

		w, err := s.repo.CreateWallet(ctx, address, secretHash)
		if errors.Is(err, domain.ErrDuplicateAddress) {
			l.Warn().Int("attempt", attempt).Msg("wallet address collision")
			continue
		}

		if err != nil {
			return domain.CreatedWallet{}, err
		}

		return domain.CreatedWallet{Wallet: w, Secret: secret}, nil
	}

	return domain.CreatedWallet{}, domain.ErrDuplicateAddress
}

// GetWallet returns the wallet with the given address.
func (s *Service) GetWallet(ctx context.Context, address string) (domain.Wallet, error) {
	if err := validAddress(address); err != nil {
		return domain.Wallet{}, err
	}

	return s.repo.GetWallet(ctx, address)
}

// ListWallets returns all wallets ordered by creation time.
func (s *Service) ListWallets(ctx context.Context) ([]domain.Wallet, error) {
	return s.repo.ListWallets(ctx)
}

// BlockWallet blocks the wallet. Blocking a blocked wallet is a no-op.
func (s *Service) BlockWallet(ctx context.Context, address string) (domain.Wallet, error) {
	if err := validAddress(address); err != nil {
		return domain.Wallet{}, err
	}

	w, err := s.repo.GetWallet(ctx, address)
	if err != nil {
		return w, err
	}

	if !w.IsActive() {
		return w, nil
	}

	w, err = s.repo.SetStatus(ctx, address, domain.StatusBlocked)
	if err != nil {
		return w, err
	}

	zerolog.Ctx(ctx).Info().Str("address", address).Msg("wallet blocked")

	return w, nil
}

// GetBalances returns the wallet balances ordered by currency kind then code.
func (s *Service) GetBalances(ctx context.Context, address string) ([]domain.Balance, error) {
	if err := validAddress(address); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetWallet(ctx, address); err != nil {
		return nil, err
	}

	return s.repo.ListBalances(ctx, address)
}

// Deposit credits amount to the wallet balance. Deposits are free and need no secret.
func (s *Service) Deposit(ctx context.Context, address, currencyCode, amount string) (domain.Movement, error) {
	l := zerolog.Ctx(ctx)

	if err := validAddress(address); err != nil {
		return domain.Movement{}, err
	}

	value, err := parseAmount(amount)
	if err != nil {
		l.Info().Err(err).Str("amount", amount).Send()
		return domain.Movement{}, err
	}

	if _, err := s.activeWallet(ctx, address); err != nil {
		return domain.Movement{}, err
	}

	if _, err := s.repo.GetCurrency(ctx, currencyCode); err != nil {
		return domain.Movement{}, err
	}

	var movement domain.Movement

	err = s.repo.ExecTx(ctx, func(tx Tx) error {
		if err := recheckActive(ctx, tx, address, domain.ErrWalletBlocked); err != nil {
			return err
		}

		before, err := lockBalance(ctx, tx, address, currencyCode)
		if err != nil {
			return err
		}

		after, err := credit(ctx, before, value)
		if err != nil {
			return err
		}

		if err := tx.SetBalance(ctx, address, currencyCode, moneypkg.Format(after)); err != nil {
			return err
		}

		movement, err = tx.CreateMovement(ctx, domain.CreateMovementParams{
			WalletAddress: address,
			CurrencyCode:  currencyCode,
			Kind:          domain.MovementDeposit,
			Amount:        moneypkg.Format(value),
			Fee:           moneypkg.Format(moneypkg.Zero),
			NetAmount:     moneypkg.Format(value),
			BalanceBefore: moneypkg.Format(before),
			BalanceAfter:  moneypkg.Format(after),
		})

		return err
	})
	if err != nil {
		return domain.Movement{}, err
	}

	return movement, nil
}

// Withdraw debits amount plus the withdrawal fee from the wallet balance.
func (s *Service) Withdraw(ctx context.Context, address, currencyCode, amount, secret string) (domain.Movement, error) {
	l := zerolog.Ctx(ctx)

	if err := validAddress(address); err != nil {
		return domain.Movement{}, err
	}

	if err := validSecret(secret); err != nil {
		return domain.Movement{}, err
	}

	value, err := parseAmount(amount)
	if err != nil {
		l.Info().Err(err).Str("amount", amount).Send()
		return domain.Movement{}, err
	}

	w, err := s.activeWallet(ctx, address)
	if err != nil {
		return domain.Movement{}, err
	}

	if err := verifySecret(ctx, w, secret); err != nil {
		return domain.Movement{}, err
	}

	if _, err := s.repo.GetCurrency(ctx, currencyCode); err != nil {
		return domain.Movement{}, err
	}

	fee := moneypkg.ApplyRate(value, s.config.WithdrawalFeeRate)
	total := value.Add(fee)

	var movement domain.Movement

	err = s.repo.ExecTx(ctx, func(tx Tx) error {
		if err := recheckActive(ctx, tx, address, domain.ErrWalletBlocked); err != nil {
			return err
		}

		before, err := lockBalance(ctx, tx, address, currencyCode)
		if err != nil {
			return err
		}

		if before.LessThan(total) {
			return insufficient(total, before)
		}

		after := before.Sub(total)

		if err := tx.SetBalance(ctx, address, currencyCode, moneypkg.Format(after)); err != nil {
			return err
		}

		movement, err = tx.CreateMovement(ctx, domain.CreateMovementParams{
			WalletAddress: address,
			CurrencyCode:  currencyCode,
			Kind:          domain.MovementWithdrawal,
			Amount:        moneypkg.Format(value),
			Fee:           moneypkg.Format(fee),
			NetAmount:     moneypkg.Format(value),
			BalanceBefore: moneypkg.Format(before),
			BalanceAfter:  moneypkg.Format(after),
		})

		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientFunds) {
			l.Info().Err(err).Str("address", address).Send()
		}

		return domain.Movement{}, err
	}

	return movement, nil
}

// quote fetches the rate for base->quote bounded by the configured timeout.
func (s *Service) quote(ctx context.Context, base, quote string) (decimal.Decimal, error) {
	l := zerolog.Ctx(ctx)

	qctx, cancel := context.WithTimeout(ctx, s.config.QuoteTimeout)
	defer cancel()

	rate, err := s.quotes.GetQuote(qctx, base, quote)
	if err != nil {
		l.Warn().Err(err).Str("pair", base+"-"+quote).Send()

		if errors.Is(err, domain.ErrQuoteUnavailable) {
			return decimal.Decimal{}, err
		}

		return decimal.Decimal{}, fmt.Errorf("%w: %v", domain.ErrQuoteUnavailable, err)
	}

	if !rate.IsPositive() {
		l.Warn().Str("rate", rate.String()).Str("pair", base+"-"+quote).Msg("non-positive quote")
		return decimal.Decimal{}, domain.ErrQuoteUnavailable
	}

	return rate, nil
}

// sourceBalance reads the current balance outside of any transaction.
func (s *Service) sourceBalance(ctx context.Context, address, currencyCode string) (decimal.Decimal, error) {
	balances, err := s.repo.ListBalances(ctx, address)
	if err != nil {
		return decimal.Decimal{}, err
	}

	for _, b := range balances {
		if b.CurrencyCode == currencyCode {
			d, err := moneypkg.ParseStored(b.Amount)
			if err != nil {
				zerolog.Ctx(ctx).Error().Err(err).Str("address", address).Send()
				return decimal.Decimal{}, domain.ErrLedgerInconsistent
			}

			return d, nil
		}
	}

	zerolog.Ctx(ctx).Error().Str("address", address).Str("currency", currencyCode).Msg("balance row is missing")

	return decimal.Decimal{}, domain.ErrLedgerInconsistent
}

// Convert exchanges amount of source currency into target currency inside one wallet.
//
// The source is debited exactly amount. The target is credited
// amount x rate minus the conversion fee, which is taken on the target side.
// The quote is fetched before the transaction starts.
func (s *Service) Convert(ctx context.Context, address, source, target, amount, secret string) (domain.Conversion, error) {
	l := zerolog.Ctx(ctx)

	if err := validAddress(address); err != nil {
		return domain.Conversion{}, err
	}

	if err := validSecret(secret); err != nil {
		return domain.Conversion{}, err
	}

	value, err := parseAmount(amount)
	if err != nil {
		l.Info().Err(err).Str("amount", amount).Send()
		return domain.Conversion{}, err
	}

	w, err := s.activeWallet(ctx, address)
	if err != nil {
		return domain.Conversion{}, err
	}

	if err := verifySecret(ctx, w, secret); err != nil {
		return domain.Conversion{}, err
	}

	for _, code := range []string{source, target} {
		if _, err := s.repo.GetCurrency(ctx, code); err != nil {
			return domain.Conversion{}, err
		}
	}

	if source == target {
		return domain.Conversion{}, domain.ErrSameCurrency
	}

	available, err := s.sourceBalance(ctx, address, source)
	if err != nil {
		return domain.Conversion{}, err
	}

	if available.LessThan(value) {
		err := insufficient(value, available)
		l.Info().Err(err).Str("address", address).Send()

		return domain.Conversion{}, err
	}

	rate, err := s.quote(ctx, source, target)
	if err != nil {
		return domain.Conversion{}, err
	}

	gross := moneypkg.ApplyRate(value, rate)
	fee := moneypkg.ApplyRate(gross, s.config.ConversionFeeRate)
	credited := gross.Sub(fee)

	if !moneypkg.InRange(gross) {
		l.Info().Str("amount", moneypkg.Format(gross)).Msg("converted amount exceeds the limit")
		return domain.Conversion{}, domain.ErrBalanceLimit
	}

	var conversion domain.Conversion

	err = s.repo.ExecTx(ctx, func(tx Tx) error {
		if err := recheckActive(ctx, tx, address, domain.ErrWalletBlocked); err != nil {
			return err
		}

		codes := []string{source, target}
		sort.Strings(codes)

		before := make(map[string]decimal.Decimal, 2)

		for _, code := range codes {
			amount, err := lockBalance(ctx, tx, address, code)
			if err != nil {
				return err
			}

			before[code] = amount
		}

		if before[source].LessThan(value) {
			return insufficient(value, before[source])
		}

		sourceAfter := before[source].Sub(value)
		targetAfter, err := credit(ctx, before[target], credited)
		if err != nil {
			return err
		}

		if err := tx.SetBalance(ctx, address, source, moneypkg.Format(sourceAfter)); err != nil {
			return err
		}

		if err := tx.SetBalance(ctx, address, target, moneypkg.Format(targetAfter)); err != nil {
			return err
		}


		conversion, err = tx.CreateConversion(ctx, domain.CreateConversionParams{
			WalletAddress:       address,
			SourceCurrency:      source,
			TargetCurrency:      target,
			SourceAmount:        moneypkg.Format(value),
			QuoteRate:           rate.String(),
			FeeRate:             s.config.ConversionFeeRate.String(),
			Fee:                 moneypkg.Format(fee),
			TargetAmount:        moneypkg.Format(credited),
			SourceBalanceBefore: moneypkg.Format(before[source]),
			SourceBalanceAfter:  moneypkg.Format(sourceAfter),
			TargetBalanceBefore: moneypkg.Format(before[target]),
			TargetBalanceAfter:  moneypkg.Format(targetAfter),
		})

		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientFunds) {
			l.Info().Err(err).Str("address", address).Send()
		}

		return domain.Conversion{}, err
	}

	return conversion, nil
}

// Transfer moves amount of one currency from one wallet to another.
//
// Only the source secret is required. The source pays amount plus the
// transfer fee and the destination receives amount.
func (s *Service) Transfer(ctx context.Context, from, to, currencyCode, amount, secret string) (domain.Transfer, error) {
	l := zerolog.Ctx(ctx)

	if err := validAddress(from); err != nil {
		return domain.Transfer{}, err
	}

	if err := validAddress(to); err != nil {
		return domain.Transfer{}, err
	}

	if err := validSecret(secret); err != nil {
		return domain.Transfer{}, err
	}

	value, err := parseAmount(amount)
	if err != nil {
		l.Info().Err(err).Str("amount", amount).Send()
		return domain.Transfer{}, err
	}

	w, err := s.activeWallet(ctx, from)
	if err != nil {
		return domain.Transfer{}, err
	}

	if _, err := s.activeWallet(ctx, to); err != nil {
		switch {
		case errors.Is(err, domain.ErrWalletNotFound):
			return domain.Transfer{}, domain.ErrDestinationNotFound
		case errors.Is(err, domain.ErrWalletBlocked):
			return domain.Transfer{}, domain.ErrDestinationBlocked
		}

		return domain.Transfer{}, err
	}

	if err := verifySecret(ctx, w, secret); err != nil {
		return domain.Transfer{}, err
	}

	if _, err := s.repo.GetCurrency(ctx, currencyCode); err != nil {
		return domain.Transfer{}, err
	}

	if from == to {
		return domain.Transfer{}, domain.ErrSameWallet
	}

	fee := moneypkg.ApplyRate(value, s.config.TransferFeeRate)
	total := value.Add(fee)

	var transfer domain.Transfer

	err = s.repo.ExecTx(ctx, func(tx Tx) error {
		// Rows are always locked in address order so two opposite transfers
		// cannot deadlock.
		addresses := []string{from, to}
		sort.Strings(addresses)

		blocked := map[string]error{from: domain.ErrWalletBlocked, to: domain.ErrDestinationBlocked}

		for _, a := range addresses {
			if err := recheckActive(ctx, tx, a, blocked[a]); err != nil {
				return err
			}
		}

		before := make(map[string]decimal.Decimal, 2)

		for _, a := range addresses {
			amount, err := lockBalance(ctx, tx, a, currencyCode)
			if err != nil {
				return err
			}

			before[a] = amount
		}

		if before[from].LessThan(total) {
			return insufficient(total, before[from])
		}

		fromAfter := before[from].Sub(total)
		toAfter, err := credit(ctx, before[to], value)
		if err != nil {
			return err
		}

		if err := tx.SetBalance(ctx, from, currencyCode, moneypkg.Format(fromAfter)); err != nil {
			return err
		}

		if err := tx.SetBalance(ctx, to, currencyCode, moneypkg.Format(toAfter)); err != nil {
			return err
		}


		transfer, err = tx.CreateTransfer(ctx, domain.CreateTransferParams{
			FromAddress:       from,
			ToAddress:         to,
			CurrencyCode:      currencyCode,
			Amount:            moneypkg.Format(value),
			Fee:               moneypkg.Format(fee),
			FromBalanceBefore: moneypkg.Format(before[from]),
			FromBalanceAfter:  moneypkg.Format(fromAfter),
			ToBalanceBefore:   moneypkg.Format(before[to]),
			ToBalanceAfter:    moneypkg.Format(toAfter),
		})

		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientFunds) {
			l.Info().Err(err).Str("address", from).Send()
		}

		return domain.Transfer{}, err
	}

	return transfer, nil
}

func page(pageSize, pageID int32) (limit, offset int32) {
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	if pageID < 1 {
		pageID = 1
	}

	return pageSize, (pageID - 1) * pageSize
}

// ListMovements returns a page of the wallet deposits and withdrawals.
func (s *Service) ListMovements(ctx context.Context, address string, pageSize, pageID int32) ([]domain.Movement, error) {
	if err := validAddress(address); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetWallet(ctx, address); err != nil {
		return nil, err
	}

	limit, offset := page(pageSize, pageID)

	return s.repo.ListMovements(ctx, address, limit, offset)
}

// ListConversions returns a page of the wallet conversions.
func (s *Service) ListConversions(ctx context.Context, address string, pageSize, pageID int32) ([]domain.Conversion, error) {
	if err := validAddress(address); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetWallet(ctx, address); err != nil {
		return nil, err
	}

	limit, offset := page(pageSize, pageID)

	return s.repo.ListConversions(ctx, address, limit, offset)
}

// ListTransfers returns a page of the transfers sent or received by the wallet.
func (s *Service) ListTransfers(ctx context.Context, address string, pageSize, pageID int32) ([]domain.Transfer, error) {
	if err := validAddress(address); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetWallet(ctx, address); err != nil {
		return nil, err
	}

	limit, offset := page(pageSize, pageID)

	return s.repo.ListTransfers(ctx, address, limit, offset)
}
