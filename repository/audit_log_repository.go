package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"nightfall/database"
	"nightfall/models"
)

// AuditLogRepository implements the append-only audit log
type AuditLogRepository struct {
	q queryable
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *database.DB) *AuditLogRepository {
	return &AuditLogRepository{q: db.Pool}
}

// newAuditLogRepositoryWithTx creates a new audit log repository with a transaction
func newAuditLogRepositoryWithTx(tx queryable) *AuditLogRepository {
	return &AuditLogRepository{q: tx}
}

// Record appends an audit entry
func (r *AuditLogRepository) Record(ctx context.Context, entry *models.AuditLogEntry) error {
	detailsJSON, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal audit details: %w", err)
	}

	query := `
		INSERT INTO audit_log (action, game_id, details)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query, entry.Action, entry.GameID, detailsJSON).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record audit entry %s: %w", entry.Action, err)
	}

	return nil
}

// ListByGame returns audit entries for a game, newest first
func (r *AuditLogRepository) ListByGame(ctx context.Context, gameID string, limit int) ([]*models.AuditLogEntry, error) {
	query := `
		SELECT id, action, game_id, details, created_at
		FROM audit_log
		WHERE game_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, gameID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries for game %s: %w", gameID, err)
	}
	defer rows.Close()

	var entries []*models.AuditLogEntry
	for rows.Next() {
		var entry models.AuditLogEntry
		var detailsJSON []byte
		if err := rows.Scan(&entry.ID, &entry.Action, &entry.GameID, &detailsJSON, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if len(detailsJSON) > 0 {
			if err := json.Unmarshal(detailsJSON, &entry.Details); err != nil {
				return nil, fmt.Errorf("failed to unmarshal audit details: %w", err)
			}
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit entries: %w", err)
	}

	return entries, nil
}
