package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAmount indicates an amount that is not a decimal with at most 8 fractional digits.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrNonPositiveAmount indicates a zero or negative amount.
	ErrNonPositiveAmount = errors.New("amount must be positive")
	// ErrInsufficientFunds indicates that the balance does not cover the operation.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrBalanceLimit indicates a credit that would push an amount past the largest storable value.
	ErrBalanceLimit = errors.New("balance limit exceeded")
	// ErrBalanceNotFound indicates a missing balance row.
	ErrBalanceNotFound = errors.New("balance not found")
	// ErrLedgerInconsistent indicates store state that breaks ledger invariants.
	ErrLedgerInconsistent = errors.New("ledger is inconsistent")
)

// InsufficientFundsError reports the amount an operation required and what the balance held.
type InsufficientFundsError struct {
	Required  string
	Available string
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("%s: required %s, available %s", ErrInsufficientFunds, e.Required, e.Available)
}

// Is makes errors.Is(err, ErrInsufficientFunds) hold.
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// Balance holds the amount of one currency in a wallet.
type Balance struct {
	CurrencyCode string `json:"currency_code"`
	Name         string `json:"name"`
	Kind         string `json:"kind"`
	Amount       string `json:"amount"`
}
