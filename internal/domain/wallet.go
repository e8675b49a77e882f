// Package domain provides defenitions of all ledger entities.
package domain

import (
	"errors"
	"fmt"
	"time"
)

// Wallet statuses. A wallet only ever moves from active to blocked.
const (
	StatusActive  = "ACTIVE"
	StatusBlocked = "BLOCKED"
)

var (
	// ErrInvalidAddress indicates an empty or malformed wallet address.
	ErrInvalidAddress = errors.New("invalid wallet address")
	// ErrSecretRequired indicates that the operation needs the wallet secret.
	ErrSecretRequired = errors.New("secret is required")
	// ErrWalletNotFound indicates that the wallet is not found.
	ErrWalletNotFound = errors.New("wallet not found")
	// ErrWalletBlocked indicates that the wallet is blocked.
	ErrWalletBlocked = errors.New("wallet is blocked")
	// ErrInvalidSecret indicates that the given secret does not match the wallet.
	ErrInvalidSecret = errors.New("invalid secret")
	// ErrDuplicateAddress indicates an address collision on wallet creation.
	ErrDuplicateAddress = errors.New("wallet address already exists")
	// ErrSameWallet indicates a transfer to the source wallet itself.
	ErrSameWallet = errors.New("source and destination wallets are the same")

	// ErrDestinationNotFound is ErrWalletNotFound for a transfer destination.
	ErrDestinationNotFound = fmt.Errorf("destination %w", ErrWalletNotFound)
	// ErrDestinationBlocked is ErrWalletBlocked for a transfer destination.
	ErrDestinationBlocked = fmt.Errorf("destination %w", ErrWalletBlocked)
)

// Wallet holds a custodial wallet. SecretHash never leaves the process.
type Wallet struct {
	Address    string    `json:"address"`
	Status     string    `json:"status"`
	SecretHash string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// IsActive reports whether the wallet accepts money movements.
func (w Wallet) IsActive() bool {
	return w.Status == StatusActive
}

// CreatedWallet is returned once on wallet creation with the plaintext secret.
type CreatedWallet struct {
	Wallet
	Secret string `json:"secret"`
}
