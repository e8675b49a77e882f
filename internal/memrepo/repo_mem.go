// Package memrepo provides an in-memory ledger store.
//
// Transactions are serialized with one mutex and write to a staged copy of
// the state that replaces the live state only on commit.
package memrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-petr/wallet-ledger/internal/domain"
	"github.com/go-petr/wallet-ledger/internal/ledgerservice"
	"github.com/go-petr/wallet-ledger/pkg/currencypkg"
	"github.com/go-petr/wallet-ledger/pkg/moneypkg"
)

type balanceKey struct {
	address  string
	currency string
}

type state struct {
	currencies  map[string]domain.Currency
	wallets     map[string]domain.Wallet
	addresses   []string
	balances    map[balanceKey]string
	movements   []domain.Movement
	conversions []domain.Conversion
	transfers   []domain.Transfer
}

// clone copies the maps. Record slices are cut to their length so appends on
// the copy never write into the original backing arrays.
func (s *state) clone() *state {
	c := &state{
		currencies:  s.currencies,
		wallets:     make(map[string]domain.Wallet, len(s.wallets)),
		addresses:   s.addresses[:len(s.addresses):len(s.addresses)],
		balances:    make(map[balanceKey]string, len(s.balances)),
		movements:   s.movements[:len(s.movements):len(s.movements)],
		conversions: s.conversions[:len(s.conversions):len(s.conversions)],
		transfers:   s.transfers[:len(s.transfers):len(s.transfers)],
	}

	for k, v := range s.wallets {
		c.wallets[k] = v
	}

	for k, v := range s.balances {
		c.balances[k] = v
	}

	return c
}

// Repo is the in-memory ledger store.
type Repo struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

var _ ledgerservice.Repo = (*Repo)(nil)

// New returns an empty store seeded with the supported currencies.
func New() *Repo {
	s := &state{
		currencies: make(map[string]domain.Currency, len(currencypkg.SupportedCurrencies)),
		wallets:    map[string]domain.Wallet{},
		balances:   map[balanceKey]string{},
	}

	for _, c := range currencypkg.SupportedCurrencies {
		s.currencies[c.Code] = domain.Currency{Code: c.Code, Name: c.Name, Kind: c.Kind}
	}

	return &Repo{
		state: s,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// CreateWallet creates the wallet with a zero balance of every currency.
func (r *Repo) CreateWallet(ctx context.Context, address, secretHash string) (domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.state.wallets[address]; ok {
		return domain.Wallet{}, domain.ErrDuplicateAddress
	}

	w := domain.Wallet{
		Address:    address,
		Status:     domain.StatusActive,
		SecretHash: secretHash,
		CreatedAt:  r.now(),
	}

	r.state.wallets[address] = w
	r.state.addresses = append(r.state.addresses, address)

	zero := moneypkg.Format(moneypkg.Zero)
	for code := range r.state.currencies {
		r.state.balances[balanceKey{address, code}] = zero
	}

	return w, nil
}

// GetWallet returns the wallet with the given address.
func (r *Repo) GetWallet(ctx context.Context, address string) (domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state.wallet(address)
}

func (s *state) wallet(address string) (domain.Wallet, error) {
	w, ok := s.wallets[address]
	if !ok {
		return domain.Wallet{}, domain.ErrWalletNotFound
	}

	return w, nil
}

// ListWallets returns all wallets ordered by creation time.
func (r *Repo) ListWallets(ctx context.Context) ([]domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]domain.Wallet, 0, len(r.state.addresses))
	for _, a := range r.state.addresses {
		items = append(items, r.state.wallets[a])
	}

	return items, nil
}

// SetStatus changes the wallet status.
func (r *Repo) SetStatus(ctx context.Context, address, status string) (domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, err := r.state.wallet(address)
	if err != nil {
		return w, err
	}

	w.Status = status
	r.state.wallets[address] = w

	return w, nil
}

// ListBalances returns the wallet balances ordered by currency kind then code.
func (r *Repo) ListBalances(ctx context.Context, address string) ([]domain.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := []domain.Balance{}

	for code, c := range r.state.currencies {
		amount, ok := r.state.balances[balanceKey{address, code}]
		if !ok {
			continue
		}

		items = append(items, domain.Balance{
			CurrencyCode: code,
			Name:         c.Name,
			Kind:         c.Kind,
			Amount:       amount,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Kind != items[j].Kind {
			return items[i].Kind < items[j].Kind
		}

		return items[i].CurrencyCode < items[j].CurrencyCode
	})

	return items, nil
}

// GetCurrency returns the currency with the given code.
func (r *Repo) GetCurrency(ctx context.Context, code string) (domain.Currency, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.state.currencies[code]
	if !ok {
		return domain.Currency{}, domain.ErrCurrencyNotFound
	}

	return c, nil
}

func pageOf[T any](items []T, match func(T) bool, limit, offset int32) []T {
	res := []T{}

	var skipped int32

	for _, it := range items {
		if !match(it) {
			continue
		}

		if skipped < offset {
			skipped++
			continue
		}

		if int32(len(res)) == limit {
			break
		}

		res = append(res, it)
	}

	return res
}

// ListMovements returns a page of the wallet movements ordered by id.
func (r *Repo) ListMovements(ctx context.Context, address string, limit, offset int32) ([]domain.Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	match := func(m domain.Movement) bool { return m.WalletAddress == address }

	return pageOf(r.state.movements, match, limit, offset), nil
}

// ListConversions returns a page of the wallet conversions ordered by id.
func (r *Repo) ListConversions(ctx context.Context, address string, limit, offset int32) ([]domain.Conversion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	match := func(c domain.Conversion) bool { return c.WalletAddress == address }

	return pageOf(r.state.conversions, match, limit, offset), nil
}

// ListTransfers returns a page of the transfers sent or received by the wallet.
func (r *Repo) ListTransfers(ctx context.Context, address string, limit, offset int32) ([]domain.Transfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	match := func(t domain.Transfer) bool { return t.FromAddress == address || t.ToAddress == address }

	return pageOf(r.state.transfers, match, limit, offset), nil
}

// ExecTx runs fn against a staged copy of the state and publishes the copy
// when fn returns nil.
func (r *Repo) ExecTx(ctx context.Context, fn func(ledgerservice.Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	staged := r.state.clone()

	if err := fn(&tx{state: staged, now: r.now}); err != nil {
		return err
	}

	r.state = staged

	return nil
}
