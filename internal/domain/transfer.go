package domain

import "time"

// Transfer is an immutable record of a same-currency move between two wallets.
// The source loses Amount+Fee and the destination gains Amount.
type Transfer struct {
	ID                int64     `json:"id"`
	FromAddress       string    `json:"from_address"`
	ToAddress         string    `json:"to_address"`
	CurrencyCode      string    `json:"currency_code"`
	Amount            string    `json:"amount"`
	Fee               string    `json:"fee"`
	FromBalanceBefore string    `json:"from_balance_before"`
	FromBalanceAfter  string    `json:"from_balance_after"`
	ToBalanceBefore   string    `json:"to_balance_before"`
	ToBalanceAfter    string    `json:"to_balance_after"`
	CreatedAt         time.Time `json:"created_at"`
}

// CreateTransferParams holds data needed for Transfer creation.
type CreateTransferParams struct {
	FromAddress       string
	ToAddress         string
	CurrencyCode      string
	Amount            string
	Fee               string
	FromBalanceBefore string
	FromBalanceAfter  string
	ToBalanceBefore   string
	ToBalanceAfter    string
}
