package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"nightfall/database"
	"nightfall/models"
)

// UserRepository implements the UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

// GetByWallet retrieves a user by wallet address
func (r *UserRepository) GetByWallet(ctx context.Context, wallet string) (*models.User, error) {
	query := `
		SELECT wallet_address, balance, games_played, games_won, created_at, updated_at
		FROM users
		WHERE wallet_address = $1
	`

	var user models.User
	err := r.q.QueryRow(ctx, query, wallet).Scan(
		&user.WalletAddress,
		&user.Balance,
		&user.GamesPlayed,
		&user.GamesWon,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", wallet, err)
	}

	return &user, nil
}

// GetOrCreate retrieves a user, creating a zero-balance record if needed
func (r *UserRepository) GetOrCreate(ctx context.Context, wallet string) (*models.User, error) {
	query := `
		INSERT INTO users (wallet_address)
		VALUES ($1)
		ON CONFLICT (wallet_address) DO UPDATE SET updated_at = users.updated_at
		RETURNING wallet_address, balance, games_played, games_won, created_at, updated_at
	`

	var user models.User
	err := r.q.QueryRow(ctx, query, wallet).Scan(
		&user.WalletAddress,
		&user.Balance,
		&user.GamesPlayed,
		&user.GamesWon,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create user %s: %w", wallet, err)
	}

	return &user, nil
}

// AddBalance adds to a user's cached balance atomically
func (r *UserRepository) AddBalance(ctx context.Context, wallet string, amount models.Lamports) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE users
		SET balance = balance + $1, updated_at = NOW()
		WHERE wallet_address = $2
	`

	result, err := r.q.Exec(ctx, query, amount, wallet)
	if err != nil {
		return fmt.Errorf("failed to add balance for user %s: %w", wallet, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s not found", wallet)
	}

	return nil
}

// DeductBalance deducts from a user's cached balance atomically, failing when
// the balance is insufficient. The conditional UPDATE makes concurrent
// deductions race on the write, never on a prior read.
func (r *UserRepository) DeductBalance(ctx context.Context, wallet string, amount models.Lamports) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE users
		SET balance = balance - $1, updated_at = NOW()
		WHERE wallet_address = $2 AND balance >= $1
	`

	result, err := r.q.Exec(ctx, query, amount, wallet)
	if err != nil {
		return fmt.Errorf("failed to deduct balance for user %s: %w", wallet, err)
	}

	if result.RowsAffected() == 0 {
		user, err := r.GetByWallet(ctx, wallet)
		if err != nil {
			return fmt.Errorf("failed to check user: %w", err)
		}
		if user == nil {
			return fmt.Errorf("user %s not found", wallet)
		}
		return fmt.Errorf("insufficient balance: have %d, need %d", user.Balance, amount)
	}

	return nil
}

// RecordGameResult bumps games_played, and games_won when won is true
func (r *UserRepository) RecordGameResult(ctx context.Context, wallet string, won bool) error {
	query := `
		UPDATE users
		SET games_played = games_played + 1,
		    games_won = games_won + CASE WHEN $1 THEN 1 ELSE 0 END,
		    updated_at = NOW()
		WHERE wallet_address = $2
	`

	result, err := r.q.Exec(ctx, query, won, wallet)
	if err != nil {
		return fmt.Errorf("failed to record game result for user %s: %w", wallet, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s not found", wallet)
	}

	return nil
}
