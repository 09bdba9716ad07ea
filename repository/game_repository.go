package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"nightfall/database"
	"nightfall/models"
)

// GameRepository implements the GameRepository interface
type GameRepository struct {
	q queryable
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *database.DB) *GameRepository {
	return &GameRepository{q: db.Pool}
}

// newGameRepositoryWithTx creates a new game repository with a transaction
func newGameRepositoryWithTx(tx queryable) *GameRepository {
	return &GameRepository{q: tx}
}

const gameColumns = `
	id, creator_wallet, status, winner, stake_amount, total_pool, playing_fee,
	min_players, max_players, game_data, can_cancel_after, created_at,
	started_at, completed_at`

// Create persists a new game
func (r *GameRepository) Create(ctx context.Context, game *models.Game) error {
	gameDataJSON, err := json.Marshal(game.GameData)
	if err != nil {
		return fmt.Errorf("failed to marshal game data: %w", err)
	}

	query := `
		INSERT INTO games
		(id, creator_wallet, status, stake_amount, total_pool, playing_fee,
		 min_players, max_players, game_data, can_cancel_after)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	err = r.q.QueryRow(ctx, query,
		game.ID,
		game.CreatorWallet,
		game.Status,
		game.StakeAmount,
		game.TotalPool,
		game.PlayingFee,
		game.MinPlayers,
		game.MaxPlayers,
		gameDataJSON,
		game.CanCancelAfter,
	).Scan(&game.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create game %s: %w", game.ID, err)
	}

	return nil
}

// GetByID retrieves a game by its ID
func (r *GameRepository) GetByID(ctx context.Context, id string) (*models.Game, error) {
	query := `SELECT` + gameColumns + ` FROM games WHERE id = $1`

	game, err := r.scanGame(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game %s: %w", id, err)
	}

	return game, nil
}

// Update persists mutable game fields
func (r *GameRepository) Update(ctx context.Context, game *models.Game) error {
	gameDataJSON, err := json.Marshal(game.GameData)
	if err != nil {
		return fmt.Errorf("failed to marshal game data: %w", err)
	}

	query := `
		UPDATE games
		SET status = $1, winner = $2, total_pool = $3, game_data = $4,
		    started_at = $5, completed_at = $6
		WHERE id = $7
	`

	result, err := r.q.Exec(ctx, query,
		game.Status,
		game.Winner,
		game.TotalPool,
		gameDataJSON,
		game.StartedAt,
		game.CompletedAt,
		game.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update game %s: %w", game.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("game %s not found", game.ID)
	}

	return nil
}

// ListByStatus returns games in the given status, newest first
func (r *GameRepository) ListByStatus(ctx context.Context, status models.GameStatus, limit int) ([]*models.Game, error) {
	query := `SELECT` + gameColumns + `
		FROM games WHERE status = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.q.Query(ctx, query, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list games by status %s: %w", status, err)
	}
	defer rows.Close()

	return r.collectGames(rows)
}

// List returns recent games regardless of status
func (r *GameRepository) List(ctx context.Context, limit int) ([]*models.Game, error) {
	query := `SELECT` + gameColumns + `
		FROM games ORDER BY created_at DESC LIMIT $1`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	return r.collectGames(rows)
}

func (r *GameRepository) scanGame(row pgx.Row) (*models.Game, error) {
	var game models.Game
	var gameDataJSON []byte

	err := row.Scan(
		&game.ID,
		&game.CreatorWallet,
		&game.Status,
		&game.Winner,
		&game.StakeAmount,
		&game.TotalPool,
		&game.PlayingFee,
		&game.MinPlayers,
		&game.MaxPlayers,
		&gameDataJSON,
		&game.CanCancelAfter,
		&game.CreatedAt,
		&game.StartedAt,
		&game.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(gameDataJSON) > 0 {
		if err := json.Unmarshal(gameDataJSON, &game.GameData); err != nil {
			return nil, fmt.Errorf("failed to unmarshal game data: %w", err)
		}
	}

	return &game, nil
}

func (r *GameRepository) collectGames(rows pgx.Rows) ([]*models.Game, error) {
	var games []*models.Game
	for rows.Next() {
		game, err := r.scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, game)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate games: %w", err)
	}

	return games, nil
}
