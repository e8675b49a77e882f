package domain

import (
	"errors"
	"time"
)

// ErrQuoteUnavailable indicates that no exchange rate could be fetched.
var ErrQuoteUnavailable = errors.New("quote unavailable")

// Conversion is an immutable record of an exchange inside one wallet.
// TargetAmount equals SourceAmount x QuoteRate - Fee.
type Conversion struct {
	ID                  int64     `json:"id"`
	WalletAddress       string    `json:"wallet_address"`
	SourceCurrency      string    `json:"source_currency"`
	TargetCurrency      string    `json:"target_currency"`
	SourceAmount        string    `json:"source_amount"`
	QuoteRate           string    `json:"quote_rate"`
	FeeRate             string    `json:"fee_rate"`
	Fee                 string    `json:"fee"`
	TargetAmount        string    `json:"target_amount"`
	SourceBalanceBefore string    `json:"source_balance_before"`
	SourceBalanceAfter  string    `json:"source_balance_after"`
	TargetBalanceBefore string    `json:"target_balance_before"`
	TargetBalanceAfter  string    `json:"target_balance_after"`
	CreatedAt           time.Time `json:"created_at"`
}

// CreateConversionParams holds data needed for Conversion creation.
type CreateConversionParams struct {
	WalletAddress       string
	SourceCurrency      string
	TargetCurrency      string
	SourceAmount        string
	QuoteRate           string
	FeeRate             string
	Fee                 string
	TargetAmount        string
	SourceBalanceBefore string
	SourceBalanceAfter  string
	TargetBalanceBefore string
	TargetBalanceAfter  string
}
