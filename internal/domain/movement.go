package domain

import "time"

// Movement kinds.
const (
	MovementDeposit    = "DEPOSIT"
	MovementWithdrawal = "WITHDRAWAL"
)

// Movement is an immutable deposit or withdrawal record.
type Movement struct {
	ID            int64     `json:"id"`
	WalletAddress string    `json:"wallet_address"`
	CurrencyCode  string    `json:"currency_code"`
	Kind          string    `json:"kind"`
	Amount        string    `json:"amount"`
	Fee           string    `json:"fee"`
	NetAmount     string    `json:"net_amount"`
	BalanceBefore string    `json:"balance_before"`
	BalanceAfter  string    `json:"balance_after"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateMovementParams holds data needed for Movement creation.
type CreateMovementParams struct {
	WalletAddress string
	CurrencyCode  string
	Kind          string
	Amount        string
	Fee           string
	NetAmount     string
	BalanceBefore string
	BalanceAfter  string
}
