package api

import (
	"time"

	"nightfall/models"
)

// CreateGameRequest is the payload for POST /api/games
type CreateGameRequest struct {
	CreatorWallet string         `json:"creatorWallet" binding:"required"`
	StakeAmount   string         `json:"stakeAmount" binding:"required"` // decimal SOL
	GameData      map[string]any `json:"gameData"`
}

// JoinGameRequest is the payload for POST /api/games/:id/join
type JoinGameRequest struct {
	Wallet string `json:"wallet" binding:"required"`
}

// CompleteGameRequest is the payload for POST /api/games/:id/complete
type CompleteGameRequest struct {
	Winner string `json:"winner" binding:"required"`
}

// CancelGameRequest is the payload for POST /api/games/:id/cancel
type CancelGameRequest struct {
	Wallet string `json:"wallet" binding:"required"`
}

// ParticipantResponse is one stake entry in a game response
type ParticipantResponse struct {
	Wallet string `json:"wallet"`
	Amount string `json:"amount"`
}

// GameResponse is the wire shape of a game; amounts are decimal SOL strings
type GameResponse struct {
	ID             string                `json:"id"`
	CreatorWallet  string                `json:"creatorWallet"`
	Status         models.GameStatus     `json:"status"`
	Winner         *string               `json:"winner,omitempty"`
	StakeAmount    string                `json:"stakeAmount"`
	TotalPool      string                `json:"totalPool"`
	PlayingFee     string                `json:"playingFee"`
	MinPlayers     int                   `json:"minPlayers"`
	MaxPlayers     int                   `json:"maxPlayers"`
	Participants   []ParticipantResponse `json:"participants"`
	CanCancelAfter time.Time             `json:"canCancelAfter"`
	CreatedAt      time.Time             `json:"createdAt"`
	StartedAt      *time.Time            `json:"startedAt,omitempty"`
	CompletedAt    *time.Time            `json:"completedAt,omitempty"`
}

// TransactionResponse is the wire shape of one ledger row
type TransactionResponse struct {
	ID          int64                    `json:"id"`
	GameID      string                   `json:"gameId"`
	Type        models.TransactionType   `json:"type"`
	ToAddress   string                   `json:"toAddress"`
	Amount      string                   `json:"amount"`
	Status      models.TransactionStatus `json:"status"`
	TxHash      *string                  `json:"txHash,omitempty"`
	CreatedAt   time.Time                `json:"createdAt"`
	CompletedAt *time.Time               `json:"completedAt,omitempty"`
}

// UserResponse is the wire shape of a user
type UserResponse struct {
	WalletAddress string `json:"walletAddress"`
	Balance       string `json:"balance"`
	GamesPlayed   int    `json:"gamesPlayed"`
	GamesWon      int    `json:"gamesWon"`
}

func toGameResponse(game *models.Game) GameResponse {
	participants := game.Participants()
	pr := make([]ParticipantResponse, len(participants))
	for i, p := range participants {
		pr[i] = ParticipantResponse{Wallet: p.Wallet, Amount: p.Amount.SOL()}
	}

	return GameResponse{
		ID:             game.ID,
		CreatorWallet:  game.CreatorWallet,
		Status:         game.Status,
		Winner:         game.Winner,
		StakeAmount:    game.StakeAmount.SOL(),
		TotalPool:      game.TotalPool.SOL(),
		PlayingFee:     game.PlayingFee.SOL(),
		MinPlayers:     game.MinPlayers,
		MaxPlayers:     game.MaxPlayers,
		Participants:   pr,
		CanCancelAfter: game.CanCancelAfter,
		CreatedAt:      game.CreatedAt,
		StartedAt:      game.StartedAt,
		CompletedAt:    game.CompletedAt,
	}
}

func toTransactionResponse(tx *models.GameTransaction) TransactionResponse {
	return TransactionResponse{
		ID:          tx.ID,
		GameID:      tx.GameID,
		Type:        tx.Type,
		ToAddress:   tx.ToAddress,
		Amount:      tx.Amount.SOL(),
		Status:      tx.Status,
		TxHash:      tx.TxHash,
		CreatedAt:   tx.CreatedAt,
		CompletedAt: tx.CompletedAt,
	}
}

func toUserResponse(user *models.User) UserResponse {
	return UserResponse{
		WalletAddress: user.WalletAddress,
		Balance:       user.Balance.SOL(),
		GamesPlayed:   user.GamesPlayed,
		GamesWon:      user.GamesWon,
	}
}
