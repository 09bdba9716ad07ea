package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"nightfall/config"
	"nightfall/events"
	"nightfall/models"
	"nightfall/solana"
)

type gameService struct {
	uowFactory UnitOfWorkFactory
	settlement SettlementService
	cfg        *config.Config
}

// NewGameService creates a new game service
func NewGameService(uowFactory UnitOfWorkFactory, settlement SettlementService, cfg *config.Config) GameService {
	return &gameService{
		uowFactory: uowFactory,
		settlement: settlement,
		cfg:        cfg,
	}
}

// CreateGame creates a waiting game staked by its creator. The stake is
// deducted from the creator's cached balance up front and becomes the
// initial pool.
func (s *gameService) CreateGame(ctx context.Context, creatorWallet string, stake models.Lamports, gameData map[string]any) (*models.Game, error) {
	if err := solana.ValidateAddress(creatorWallet); err != nil {
		return nil, fmt.Errorf("invalid creator wallet: %w", err)
	}
	if stake <= 0 {
		return nil, fmt.Errorf("stake amount must be positive")
	}
	if stake <= s.cfg.DefaultPlayingFee {
		return nil, fmt.Errorf("stake amount %s must exceed the playing fee %s", stake.SOL(), s.cfg.DefaultPlayingFee.SOL())
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if _, err := uow.UserRepository().GetOrCreate(ctx, creatorWallet); err != nil {
		return nil, fmt.Errorf("failed to get creator: %w", err)
	}
	if err := uow.UserRepository().DeductBalance(ctx, creatorWallet, stake); err != nil {
		return nil, fmt.Errorf("failed to stake: %w", err)
	}

	game := &models.Game{
		ID:             uuid.NewString(),
		CreatorWallet:  creatorWallet,
		Status:         models.GameStatusWaiting,
		StakeAmount:    stake,
		TotalPool:      stake,
		PlayingFee:     s.cfg.DefaultPlayingFee,
		MinPlayers:     s.cfg.DefaultMinPlayers,
		MaxPlayers:     s.cfg.DefaultMaxPlayers,
		GameData:       gameData,
		CanCancelAfter: time.Now().UTC().Add(s.cfg.CancelCooldown),
	}
	game.SetParticipants([]models.Participant{{Wallet: creatorWallet, Amount: stake}})

	if err := uow.GameRepository().Create(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	if err := RecordAudit(ctx, uow, &models.AuditLogEntry{
		Action: models.AuditActionGameCreated,
		GameID: &game.ID,
		Details: map[string]any{
			"creator": creatorWallet,
			"stake":   stake.SOL(),
		},
	}); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"gameID":  game.ID,
		"creator": creatorWallet,
		"stake":   stake.SOL(),
	}).Info("Game created")

	return game, nil
}

// JoinGame stakes a wallet into a waiting game. The game starts once the
// minimum player count is reached.
func (s *gameService) JoinGame(ctx context.Context, gameID, wallet string) (*models.Game, error) {
	if err := solana.ValidateAddress(wallet); err != nil {
		return nil, fmt.Errorf("invalid wallet: %w", err)
	}

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

	if game.Status != models.GameStatusWaiting {
		return nil, fmt.Errorf("game %s is not accepting players (status: %s)", gameID, game.Status)
	}
	if game.HasParticipant(wallet) {
		return nil, fmt.Errorf("wallet %s already joined game %s", wallet, gameID)
	}

	participants := game.Participants()
	if len(participants) >= game.MaxPlayers {
		return nil, fmt.Errorf("game %s is full", gameID)
	}

	if _, err := uow.UserRepository().GetOrCreate(ctx, wallet); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if err := uow.UserRepository().DeductBalance(ctx, wallet, game.StakeAmount); err != nil {
		return nil, fmt.Errorf("failed to stake: %w", err)
	}

	participants = append(participants, models.Participant{Wallet: wallet, Amount: game.StakeAmount})
	game.SetParticipants(participants)
	game.TotalPool += game.StakeAmount

	if len(participants) >= game.MinPlayers {
		now := time.Now().UTC()
		game.Status = models.GameStatusInProgress
		game.StartedAt = &now
	}

	if err := uow.GameRepository().Update(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"gameID": gameID,
		"wallet": wallet,
		"status": game.Status,
	}).Info("Player joined game")

	return game, nil
}

// CompleteGame marks a game completed with a winner, bumps per-user stats
// and triggers the payout. When the game is already completed the state is
// left untouched and the payout attempt runs anyway; the ledger's claim
// rejects it, so a repeated call can never pay twice.
func (s *gameService) CompleteGame(ctx context.Context, gameID, winnerWallet string) (*models.Game, *models.PayoutResult, error) {
	if err := solana.ValidateAddress(winnerWallet); err != nil {
		return nil, nil, fmt.Errorf("invalid winner wallet: %w", err)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	game, err := uow.GameRepository().GetByID(ctx, gameID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return nil, nil, fmt.Errorf("game %s not found", gameID)
	}

	if game.Status == models.GameStatusCancelled {
		return nil, nil, fmt.Errorf("game %s is cancelled", gameID)
	}

	if game.Status != models.GameStatusCompleted {
		if !game.HasParticipant(winnerWallet) {
			return nil, nil, fmt.Errorf("winner %s is not a participant of game %s", winnerWallet, gameID)
		}

		now := time.Now().UTC()
		game.Status = models.GameStatusCompleted
		game.Winner = &winnerWallet
		game.CompletedAt = &now

		if err := uow.GameRepository().Update(ctx, game); err != nil {
			return nil, nil, fmt.Errorf("failed to update game: %w", err)
		}

		for _, participant := range game.Participants() {
			if err := uow.UserRepository().RecordGameResult(ctx, participant.Wallet, participant.Wallet == winnerWallet); err != nil {
				return nil, nil, fmt.Errorf("failed to record game result: %w", err)
			}
		}

		uow.EventBus().Publish(events.GameCompletedEvent{
			GameID:    gameID,
			Winner:    winnerWallet,
			TotalPool: game.TotalPool,
			NetPayout: game.TotalPool - game.PlayingFee,
		})

		if err := uow.Commit(); err != nil {
			return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
	} else {
		// Already completed: leave the record alone, let the payout guard
		// decide whether anything remains to settle
		uow.Rollback()
	}

	result := s.settlement.ProcessGamePayout(ctx, gameID, winnerWallet)
	return game, result, nil
}

// CancelGame cancels a waiting game after its cooldown elapses, then
// triggers the refund run. Creator-only.
func (s *gameService) CancelGame(ctx context.Context, gameID, requesterWallet string) (*models.Game, *models.RefundResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	game, err := uow.GameRepository().GetByID(ctx, gameID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return nil, nil, fmt.Errorf("game %s not found", gameID)
	}

	if game.CreatorWallet != requesterWallet {
		return nil, nil, fmt.Errorf("only the creator may cancel game %s", gameID)
	}
	if game.Status != models.GameStatusWaiting {
		return nil, nil, fmt.Errorf("game %s cannot be cancelled (status: %s)", gameID, game.Status)
	}

	if remaining := time.Until(game.CanCancelAfter); remaining > 0 {
		seconds := int(math.Ceil(remaining.Seconds()))
		return nil, nil, fmt.Errorf("game %s cannot be cancelled yet: %d seconds remaining", gameID, seconds)
	}

	game.Status = models.GameStatusCancelled

	if err := uow.GameRepository().Update(ctx, game); err != nil {
		return nil, nil, fmt.Errorf("failed to update game: %w", err)
	}

	if err := RecordAudit(ctx, uow, &models.AuditLogEntry{
		Action: models.AuditActionGameCancelled,
		GameID: &game.ID,
		Details: map[string]any{
			"creator": requesterWallet,
		},
	}); err != nil {
		return nil, nil, err
	}

	uow.EventBus().Publish(events.GameCancelledEvent{
		GameID:        gameID,
		CreatorWallet: requesterWallet,
	})

	if err := uow.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"gameID":  gameID,
		"creator": requesterWallet,
	}).Info("Game cancelled")

	result := s.settlement.ProcessGameRefund(ctx, gameID)
	return game, result, nil
}

// GetGame retrieves a game by ID
func (s *gameService) GetGame(ctx context.Context, gameID string) (*models.Game, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	game, err := uow.GameRepository().GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// ListGames returns recent games, optionally filtered by status
func (s *gameService) ListGames(ctx context.Context, status models.GameStatus, limit int) ([]*models.Game, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if status != "" {
		return uow.GameRepository().ListByStatus(ctx, status, limit)
	}
	return uow.GameRepository().List(ctx, limit)
}

// GetTransactions returns the ledger rows for a game
func (s *gameService) GetTransactions(ctx context.Context, gameID string) ([]*models.GameTransaction, error) {
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

	return uow.TransactionRepository().GetByGame(ctx, gameID)
}
