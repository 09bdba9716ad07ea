package models

import (
	"time"
)

// User represents a wallet-identified player with a cached balance
type User struct {
	WalletAddress string    `db:"wallet_address"`
	Balance       Lamports  `db:"balance"`
	GamesPlayed   int       `db:"games_played"`
	GamesWon      int       `db:"games_won"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}
