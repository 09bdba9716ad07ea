package service

import (
	"context"
	"fmt"

	"nightfall/models"
)

// RecordAudit appends an audit entry through the unit of work. This is the
// single entry point for success-path audit writes, so they commit or roll
// back together with the mutation they describe.
func RecordAudit(ctx context.Context, uow UnitOfWork, entry *models.AuditLogEntry) error {
	if err := uow.AuditLogRepository().Record(ctx, entry); err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}
