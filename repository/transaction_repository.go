package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"nightfall/database"
	"nightfall/models"
)

// TransactionRepository implements the append-only ledger. Rows are never
// deleted; the only permitted mutation is pending -> completed.
type TransactionRepository struct {
	q queryable
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{q: db.Pool}
}

// newTransactionRepositoryWithTx creates a new transaction repository with a transaction
func newTransactionRepositoryWithTx(tx queryable) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

// ClaimPayout inserts the single payout row a game may ever have. The
// partial unique index on (game_id) WHERE type = 'payout' makes the claim
// atomic: concurrent callers race on the insert, not on a prior read.
// Returns (nil, nil) when the row already exists.
func (r *TransactionRepository) ClaimPayout(ctx context.Context, gameID, toAddress string, amount models.Lamports) (*models.GameTransaction, error) {
	return r.claim(ctx, gameID, models.TransactionTypePayout, toAddress, amount)
}

// ClaimRefund inserts the single refund row a participant may have per game,
// guarded by the partial unique index on (game_id, to_address).
// Returns (nil, nil) when the row already exists.
func (r *TransactionRepository) ClaimRefund(ctx context.Context, gameID, toAddress string, amount models.Lamports) (*models.GameTransaction, error) {
	return r.claim(ctx, gameID, models.TransactionTypeRefund, toAddress, amount)
}

func (r *TransactionRepository) claim(ctx context.Context, gameID string, txType models.TransactionType, toAddress string, amount models.Lamports) (*models.GameTransaction, error) {
	query := `
		INSERT INTO game_transactions (game_id, type, to_address, amount, status)
		VALUES ($1, $2, $3, $4, 'pending')
		ON CONFLICT DO NOTHING
		RETURNING id, game_id, type, to_address, amount, status, tx_hash, created_at, completed_at
	`

	tx, err := r.scanTransaction(r.q.QueryRow(ctx, query, gameID, txType, toAddress, amount))
	if err == pgx.ErrNoRows {
		// Conflict: the row was already claimed
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim %s for game %s: %w", txType, gameID, err)
	}

	return tx, nil
}

// Create inserts a pending ledger row
func (r *TransactionRepository) Create(ctx context.Context, tx *models.GameTransaction) error {
	query := `
		INSERT INTO game_transactions (game_id, type, to_address, amount, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		tx.GameID,
		tx.Type,
		tx.ToAddress,
		tx.Amount,
		models.TransactionStatusPending,
	).Scan(&tx.ID, &tx.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create %s transaction for game %s: %w", tx.Type, tx.GameID, err)
	}

	tx.Status = models.TransactionStatusPending
	return nil
}

// MarkCompleted transitions a pending row to completed with its hash
func (r *TransactionRepository) MarkCompleted(ctx context.Context, id int64, txHash string) error {
	query := `
		UPDATE game_transactions
		SET status = 'completed', tx_hash = $1, completed_at = NOW()
		WHERE id = $2 AND status = 'pending'
	`

	result, err := r.q.Exec(ctx, query, txHash, id)
	if err != nil {
		return fmt.Errorf("failed to complete transaction %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("transaction %d not found or not pending", id)
	}

	return nil
}

// GetByGame returns all ledger rows for a game, oldest first
func (r *TransactionRepository) GetByGame(ctx context.Context, gameID string) ([]*models.GameTransaction, error) {
	query := `
		SELECT id, game_id, type, to_address, amount, status, tx_hash, created_at, completed_at
		FROM game_transactions
		WHERE game_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.q.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions for game %s: %w", gameID, err)
	}
	defer rows.Close()

	var transactions []*models.GameTransaction
	for rows.Next() {
		tx, err := r.scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return transactions, nil
}

// HasCompletedPayout reports whether the game already has a completed payout
func (r *TransactionRepository) HasCompletedPayout(ctx context.Context, gameID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM game_transactions
			WHERE game_id = $1 AND type = 'payout' AND status = 'completed'
		)
	`

	var exists bool
	if err := r.q.QueryRow(ctx, query, gameID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check payout for game %s: %w", gameID, err)
	}

	return exists, nil
}

func (r *TransactionRepository) scanTransaction(row pgx.Row) (*models.GameTransaction, error) {
	var tx models.GameTransaction
	err := row.Scan(
		&tx.ID,
		&tx.GameID,
		&tx.Type,
		&tx.ToAddress,
		&tx.Amount,
		&tx.Status,
		&tx.TxHash,
		&tx.CreatedAt,
		&tx.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}
