package models

import "time"

// TransactionType represents the kind of fund movement a ledger row records
type TransactionType string

const (
	TransactionTypePayout TransactionType = "payout"
	TransactionTypeFee    TransactionType = "fee"
	TransactionTypeRefund TransactionType = "refund"
)

// TransactionStatus represents the state of a ledger row
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
)

// GameTransaction is one immutable ledger row describing a fund movement
type GameTransaction struct {
	ID          int64             `db:"id"`
	GameID      string            `db:"game_id"`
	Type        TransactionType   `db:"type"`
	ToAddress   string            `db:"to_address"`
	Amount      Lamports          `db:"amount"`
	Status      TransactionStatus `db:"status"`
	TxHash      *string           `db:"tx_hash"`
	CreatedAt   time.Time         `db:"created_at"`
	CompletedAt *time.Time        `db:"completed_at"`
}

// PayoutResult is returned by ProcessGamePayout
type PayoutResult struct {
	Success bool   `json:"success"`
	TxHash  string `json:"txHash,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RefundResult is returned by ProcessGameRefund
type RefundResult struct {
	Success  bool     `json:"success"`
	TxHashes []string `json:"txHashes,omitempty"`
	Error    string   `json:"error,omitempty"`
}
