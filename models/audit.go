package models

import "time"

// AuditAction identifies what a system action log entry records
type AuditAction string

const (
	AuditActionPayoutProcessed AuditAction = "PAYOUT_PROCESSED"
	AuditActionPayoutFailed    AuditAction = "PAYOUT_FAILED"
	AuditActionRefundProcessed AuditAction = "REFUND_PROCESSED"
	AuditActionRefundFailed    AuditAction = "REFUND_FAILED"
	AuditActionGameCreated     AuditAction = "GAME_CREATED"
	AuditActionGameCancelled   AuditAction = "GAME_CANCELLED"
)

// AuditLogEntry is an append-only record of a system or admin action.
// Entries are never mutated or deleted.
type AuditLogEntry struct {
	ID        int64          `db:"id"`
	Action    AuditAction    `db:"action"`
	GameID    *string        `db:"game_id"`
	Details   map[string]any `db:"details"`
	CreatedAt time.Time      `db:"created_at"`
}
