package models

import "time"

// GameStatus represents the lifecycle state of a game
type GameStatus string

const (
	GameStatusWaiting    GameStatus = "waiting"
	GameStatusInProgress GameStatus = "in_progress"
	GameStatusCompleted  GameStatus = "completed"
	GameStatusCancelled  GameStatus = "cancelled"
)

// Terminal reports whether no further status transition is allowed
func (s GameStatus) Terminal() bool {
	return s == GameStatusCompleted || s == GameStatusCancelled
}

// Participant is one entry of a game's stake list
type Participant struct {
	Wallet string   `json:"wallet"`
	Amount Lamports `json:"amount"`
}

// Game represents a match/round record
type Game struct {
	ID             string         `db:"id"`
	CreatorWallet  string         `db:"creator_wallet"`
	Status         GameStatus     `db:"status"`
	Winner         *string        `db:"winner"`
	StakeAmount    Lamports       `db:"stake_amount"`
	TotalPool      Lamports       `db:"total_pool"`
	PlayingFee     Lamports       `db:"playing_fee"`
	MinPlayers     int            `db:"min_players"`
	MaxPlayers     int            `db:"max_players"`
	GameData       map[string]any `db:"game_data"`
	CanCancelAfter time.Time      `db:"can_cancel_after"`
	CreatedAt      time.Time      `db:"created_at"`
	StartedAt      *time.Time     `db:"started_at"`
	CompletedAt    *time.Time     `db:"completed_at"`
}

// Participants extracts the stake list from the embedded game_data payload.
// Falls back to the creator staking the game's stake amount when the payload
// carries no list, so older records still refund.
func (g *Game) Participants() []Participant {
	raw, ok := g.GameData["participants"].([]any)
	if !ok || len(raw) == 0 {
		return []Participant{{Wallet: g.CreatorWallet, Amount: g.StakeAmount}}
	}

	participants := make([]Participant, 0, len(raw))
	for _, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		wallet, _ := m["wallet"].(string)
		if wallet == "" {
			continue
		}
		var amount Lamports
		switch v := m["amount"].(type) {
		case float64:
			amount = Lamports(v)
		case int64:
			amount = Lamports(v)
		case string:
			if parsed, err := ParseSOL(v); err == nil {
				amount = parsed
			}
		}
		participants = append(participants, Participant{Wallet: wallet, Amount: amount})
	}

	if len(participants) == 0 {
		return []Participant{{Wallet: g.CreatorWallet, Amount: g.StakeAmount}}
	}
	return participants
}

// HasParticipant reports whether the wallet staked into this game
func (g *Game) HasParticipant(wallet string) bool {
	for _, p := range g.Participants() {
		if p.Wallet == wallet {
			return true
		}
	}
	return false
}

// SetParticipants stores the stake list back into the game_data payload
func (g *Game) SetParticipants(participants []Participant) {
	entries := make([]any, len(participants))
	for i, p := range participants {
		entries[i] = map[string]any{"wallet": p.Wallet, "amount": float64(p.Amount)}
	}
	if g.GameData == nil {
		g.GameData = make(map[string]any)
	}
	g.GameData["participants"] = entries
}
