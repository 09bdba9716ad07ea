package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"nightfall/config"
	"nightfall/events"
	"nightfall/models"
	"nightfall/solana"
)

type settlementService struct {
	uowFactory UnitOfWorkFactory
	rail       solana.PaymentRail
	auditRepo  AuditLogRepository // pool-backed: failure entries must survive rollback
	cfg        *config.Config
}

// NewSettlementService creates a new settlement service
func NewSettlementService(uowFactory UnitOfWorkFactory, rail solana.PaymentRail, auditRepo AuditLogRepository, cfg *config.Config) SettlementService {
	return &settlementService{
		uowFactory: uowFactory,
		rail:       rail,
		auditRepo:  auditRepo,
		cfg:        cfg,
	}
}

// ProcessGamePayout settles a completed game. The payout and fee ledger
// rows, the rail send, the winner's balance credit and the audit entry all
// happen inside one transaction: a failure at any step leaves no partial
// state behind.
func (s *settlementService) ProcessGamePayout(ctx context.Context, gameID, winnerWallet string) *models.PayoutResult {
	txHash, err := s.processPayout(ctx, gameID, winnerWallet)
	if err != nil {
		log.WithFields(log.Fields{
			"gameID": gameID,
			"winner": winnerWallet,
		}).WithError(err).Warn("Payout failed")

		s.recordFailure(ctx, models.AuditActionPayoutFailed, gameID, map[string]any{
			"winner": winnerWallet,
			"error":  err.Error(),
		})
		return &models.PayoutResult{Success: false, Error: err.Error()}
	}

	return &models.PayoutResult{Success: true, TxHash: txHash}
}

func (s *settlementService) processPayout(ctx context.Context, gameID, winnerWallet string) (string, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	game, err := uow.GameRepository().GetByID(ctx, gameID)
	if err != nil {
		return "", fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return "", fmt.Errorf("game %s not found", gameID)
	}

	if game.Status != models.GameStatusCompleted || game.Winner == nil {
		return "", fmt.Errorf("game %s is not completed with a winner (status: %s)", gameID, game.Status)
	}

	netPayout := game.TotalPool - game.PlayingFee
	if netPayout <= 0 {
		return "", fmt.Errorf("net payout must be positive: pool %s minus fee %s", game.TotalPool.SOL(), game.PlayingFee.SOL())
	}

	if err := solana.ValidateAddress(winnerWallet); err != nil {
		return "", fmt.Errorf("invalid winner wallet: %w", err)
	}
	if err := solana.ValidateAddress(s.cfg.PlatformFeeAddress); err != nil {
		return "", fmt.Errorf("invalid platform fee address: %w", err)
	}

	// Atomic double-payment guard: inserting the payout row claims the game
	payoutRow, err := uow.TransactionRepository().ClaimPayout(ctx, gameID, winnerWallet, netPayout)
	if err != nil {
		return "", fmt.Errorf("failed to claim payout: %w", err)
	}
	if payoutRow == nil {
		return "", fmt.Errorf("payout already processed for game %s", gameID)
	}

	feeRow := &models.GameTransaction{
		GameID:    gameID,
		Type:      models.TransactionTypeFee,
		ToAddress: s.cfg.PlatformFeeAddress,
		Amount:    game.PlayingFee,
	}
	if err := uow.TransactionRepository().Create(ctx, feeRow); err != nil {
		return "", fmt.Errorf("failed to create fee row: %w", err)
	}

	payoutReceipt, err := s.rail.Send(ctx, winnerWallet, netPayout)
	if err != nil {
		return "", fmt.Errorf("failed to send payout: %w", err)
	}
	feeReceipt, err := s.rail.Send(ctx, s.cfg.PlatformFeeAddress, game.PlayingFee)
	if err != nil {
		return "", fmt.Errorf("failed to send fee: %w", err)
	}

	if err := uow.TransactionRepository().MarkCompleted(ctx, payoutRow.ID, payoutReceipt.TxHash); err != nil {
		return "", fmt.Errorf("failed to complete payout row: %w", err)
	}
	if err := uow.TransactionRepository().MarkCompleted(ctx, feeRow.ID, feeReceipt.TxHash); err != nil {
		return "", fmt.Errorf("failed to complete fee row: %w", err)
	}

	winner, err := uow.UserRepository().GetOrCreate(ctx, winnerWallet)
	if err != nil {
		return "", fmt.Errorf("failed to get winner: %w", err)
	}
	if err := uow.UserRepository().AddBalance(ctx, winnerWallet, netPayout); err != nil {
		return "", fmt.Errorf("failed to credit winner: %w", err)
	}

	if err := RecordAudit(ctx, uow, &models.AuditLogEntry{
		Action: models.AuditActionPayoutProcessed,
		GameID: &game.ID,
		Details: map[string]any{
			"winner":     winnerWallet,
			"net_payout": netPayout.SOL(),
			"fee":        game.PlayingFee.SOL(),
			"tx_hash":    payoutReceipt.TxHash,
		},
	}); err != nil {
		return "", err
	}

	uow.EventBus().Publish(events.PayoutProcessedEvent{
		GameID:       gameID,
		WinnerWallet: winnerWallet,
		NetPayout:    netPayout,
		PlayingFee:   game.PlayingFee,
		TxHash:       payoutReceipt.TxHash,
	})
	uow.EventBus().Publish(events.BalanceChangeEvent{
		WalletAddress: winnerWallet,
		OldBalance:    winner.Balance,
		NewBalance:    winner.Balance + netPayout,
		ChangeAmount:  netPayout,
		Reason:        models.TransactionTypePayout,
	})

	if err := uow.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"gameID":    gameID,
		"winner":    winnerWallet,
		"netPayout": netPayout.SOL(),
		"txHash":    payoutReceipt.TxHash,
	}).Info("Payout processed")

	return payoutReceipt.TxHash, nil
}

// ProcessGameRefund refunds every participant of a cancelled game. All
// refund rows share one transaction, so a second call (or any mid-run
// failure) refunds either everyone exactly once or nobody.
func (s *settlementService) ProcessGameRefund(ctx context.Context, gameID string) *models.RefundResult {
	txHashes, err := s.processRefund(ctx, gameID)
	if err != nil {
		log.WithField("gameID", gameID).WithError(err).Warn("Refund failed")

		s.recordFailure(ctx, models.AuditActionRefundFailed, gameID, map[string]any{
			"error": err.Error(),
		})
		return &models.RefundResult{Success: false, Error: err.Error()}
	}

	return &models.RefundResult{Success: true, TxHashes: txHashes}
}

func (s *settlementService) processRefund(ctx context.Context, gameID string) ([]string, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	game, err := uow.GameRepository().GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return nil, fmt.Errorf("game %s not found", gameID)
	}

	if game.Status != models.GameStatusCancelled {
		return nil, fmt.Errorf("game %s is not cancelled (status: %s)", gameID, game.Status)
	}

	var txHashes []string
	refunded := 0
	for _, participant := range game.Participants() {
		if participant.Amount <= 0 {
			continue
		}

		if err := solana.ValidateAddress(participant.Wallet); err != nil {
			return nil, fmt.Errorf("invalid participant wallet: %w", err)
		}

		row, err := uow.TransactionRepository().ClaimRefund(ctx, gameID, participant.Wallet, participant.Amount)
		if err != nil {
			return nil, fmt.Errorf("failed to claim refund for %s: %w", participant.Wallet, err)
		}
		if row == nil {
			return nil, fmt.Errorf("refund already processed for game %s", gameID)
		}

		receipt, err := s.rail.Send(ctx, participant.Wallet, participant.Amount)
		if err != nil {
			return nil, fmt.Errorf("failed to send refund to %s: %w", participant.Wallet, err)
		}

		if err := uow.TransactionRepository().MarkCompleted(ctx, row.ID, receipt.TxHash); err != nil {
			return nil, fmt.Errorf("failed to complete refund row: %w", err)
		}

		user, err := uow.UserRepository().GetOrCreate(ctx, participant.Wallet)
		if err != nil {
			return nil, fmt.Errorf("failed to get participant: %w", err)
		}
		if err := uow.UserRepository().AddBalance(ctx, participant.Wallet, participant.Amount); err != nil {
			return nil, fmt.Errorf("failed to credit participant %s: %w", participant.Wallet, err)
		}

		uow.EventBus().Publish(events.BalanceChangeEvent{
			WalletAddress: participant.Wallet,
			OldBalance:    user.Balance,
			NewBalance:    user.Balance + participant.Amount,
			ChangeAmount:  participant.Amount,
			Reason:        models.TransactionTypeRefund,
		})

		txHashes = append(txHashes, receipt.TxHash)
		refunded++
	}

	if err := RecordAudit(ctx, uow, &models.AuditLogEntry{
		Action: models.AuditActionRefundProcessed,
		GameID: &game.ID,
		Details: map[string]any{
			"refunded":  refunded,
			"tx_hashes": txHashes,
		},
	}); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.RefundProcessedEvent{
		GameID:   gameID,
		Refunded: refunded,
		TxHashes: txHashes,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"gameID":   gameID,
		"refunded": refunded,
	}).Info("Refund processed")

	return txHashes, nil
}

// EstimateNetworkFee reports the flat network fee estimate
func (s *settlementService) EstimateNetworkFee() models.Lamports {
	return s.cfg.NetworkFeeEstimate
}

// recordFailure writes a failure audit entry outside any transaction so it
// survives the rollback that produced it
func (s *settlementService) recordFailure(ctx context.Context, action models.AuditAction, gameID string, details map[string]any) {
	entry := &models.AuditLogEntry{
		Action:  action,
		GameID:  &gameID,
		Details: details,
	}
	if err := s.auditRepo.Record(ctx, entry); err != nil {
		log.WithField("gameID", gameID).WithError(err).Error("Failed to record audit entry")
	}
}
