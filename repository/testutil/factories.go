package testutil

import (
	"time"

	"github.com/google/uuid"

	"nightfall/models"
)

// Well-known syntactically valid Solana addresses for tests
const (
	TestWalletA    = "11111111111111111111111111111111"
	TestWalletB    = "So11111111111111111111111111111111111111112"
	TestWalletC    = "SysvarC1ock11111111111111111111111111111111"
	TestFeeAddress = "SysvarRent111111111111111111111111111111111"
)

// CreateTestGame creates a waiting game with default values
func CreateTestGame(creator string, stake models.Lamports) *models.Game {
	game := &models.Game{
		ID:             uuid.NewString(),
		CreatorWallet:  creator,
		Status:         models.GameStatusWaiting,
		StakeAmount:    stake,
		TotalPool:      stake,
		PlayingFee:     100_000,
		MinPlayers:     2,
		MaxPlayers:     8,
		CanCancelAfter: time.Now().UTC().Add(5 * time.Minute),
	}
	game.SetParticipants([]models.Participant{{Wallet: creator, Amount: stake}})
	return game
}

// CreateCompletedGame creates a completed game with the given winner
func CreateCompletedGame(creator, winner string, pool, fee models.Lamports) *models.Game {
	now := time.Now().UTC()
	game := CreateTestGame(creator, pool)
	game.TotalPool = pool
	game.PlayingFee = fee
	game.Status = models.GameStatusCompleted
	game.Winner = &winner
	game.CompletedAt = &now
	return game
}

// CreateCancelledGame creates a cancelled game with the given participants
func CreateCancelledGame(creator string, participants []models.Participant) *models.Game {
	game := CreateTestGame(creator, participants[0].Amount)
	game.Status = models.GameStatusCancelled
	game.SetParticipants(participants)
	var pool models.Lamports
	for _, p := range participants {
		pool += p.Amount
	}
	game.TotalPool = pool
	return game
}
