package service

import (
	"context"

	"nightfall/events"
	"nightfall/models"
)

// GameRepository defines the interface for game data access
type GameRepository interface {
	// Create persists a new game
	Create(ctx context.Context, game *models.Game) error

	// GetByID retrieves a game by its ID, returning nil when absent
	GetByID(ctx context.Context, id string) (*models.Game, error)

	// Update persists status, winner, pool, payload and timestamp changes
	Update(ctx context.Context, game *models.Game) error

	// ListByStatus returns games in the given status, newest first
	ListByStatus(ctx context.Context, status models.GameStatus, limit int) ([]*models.Game, error)

	// List returns recent games regardless of status
	List(ctx context.Context, limit int) ([]*models.Game, error)
}

// TransactionRepository defines the interface for the append-only ledger
type TransactionRepository interface {
	// ClaimPayout atomically inserts the single payout row allowed per game.
	// Returns (nil, nil) when a payout row already exists for the game.
	ClaimPayout(ctx context.Context, gameID, toAddress string, amount models.Lamports) (*models.GameTransaction, error)

	// ClaimRefund atomically inserts the single refund row allowed per
	// participant per game. Returns (nil, nil) when already claimed.
	ClaimRefund(ctx context.Context, gameID, toAddress string, amount models.Lamports) (*models.GameTransaction, error)

	// Create inserts a pending ledger row (used for fee rows)
	Create(ctx context.Context, tx *models.GameTransaction) error

	// MarkCompleted transitions a row from pending to completed and attaches
	// the transaction hash and completion timestamp
	MarkCompleted(ctx context.Context, id int64, txHash string) error

	// GetByGame returns all ledger rows for a game, oldest first
	GetByGame(ctx context.Context, gameID string) ([]*models.GameTransaction, error)

	// HasCompletedPayout reports whether a completed payout row exists
	HasCompletedPayout(ctx context.Context, gameID string) (bool, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByWallet retrieves a user by wallet address, returning nil when absent
	GetByWallet(ctx context.Context, wallet string) (*models.User, error)

	// GetOrCreate retrieves a user, creating a zero-balance record if needed
	GetOrCreate(ctx context.Context, wallet string) (*models.User, error)

	// AddBalance adds to a user's cached balance atomically
	AddBalance(ctx context.Context, wallet string, amount models.Lamports) error

	// DeductBalance deducts from a user's cached balance atomically,
	// failing if funds are insufficient
	DeductBalance(ctx context.Context, wallet string, amount models.Lamports) error

	// RecordGameResult bumps games_played, and games_won when won is true
	RecordGameResult(ctx context.Context, wallet string, won bool) error
}

// AuditLogRepository defines the interface for the append-only audit log
type AuditLogRepository interface {
	// Record appends an audit entry
	Record(ctx context.Context, entry *models.AuditLogEntry) error

	// ListByGame returns audit entries for a game, newest first
	ListByGame(ctx context.Context, gameID string, limit int) ([]*models.AuditLogEntry, error)
}

// EventPublisher defines the interface for publishing events within a
// unit of work; events are emitted only after the transaction commits
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork provides transactional access to all repositories
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	GameRepository() GameRepository
	TransactionRepository() TransactionRepository
	UserRepository() UserRepository
	AuditLogRepository() AuditLogRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// SettlementService defines the settlement and refund operations
type SettlementService interface {
	// ProcessGamePayout settles a completed game: writes payout and fee
	// ledger rows, sends the funds, and credits the winner's balance
	ProcessGamePayout(ctx context.Context, gameID, winnerWallet string) *models.PayoutResult

	// ProcessGameRefund refunds every participant of a cancelled game
	ProcessGameRefund(ctx context.Context, gameID string) *models.RefundResult

	// EstimateNetworkFee reports the flat network fee estimate
	EstimateNetworkFee() models.Lamports
}

// GameService defines the game lifecycle operations
type GameService interface {
	// CreateGame creates a waiting game staked by its creator
	CreateGame(ctx context.Context, creatorWallet string, stake models.Lamports, gameData map[string]any) (*models.Game, error)

	// JoinGame stakes a wallet into a waiting game, starting it once the
	// minimum player count is reached
	JoinGame(ctx context.Context, gameID, wallet string) (*models.Game, error)

	// CompleteGame marks a game completed with a winner, updates per-user
	// stats and triggers the payout
	CompleteGame(ctx context.Context, gameID, winnerWallet string) (*models.Game, *models.PayoutResult, error)

	// CancelGame cancels a waiting game after its cooldown and triggers
	// the refund run
	CancelGame(ctx context.Context, gameID, requesterWallet string) (*models.Game, *models.RefundResult, error)

	// GetGame retrieves a game by ID
	GetGame(ctx context.Context, gameID string) (*models.Game, error)

	// ListGames returns recent games, optionally filtered by status
	ListGames(ctx context.Context, status models.GameStatus, limit int) ([]*models.Game, error)

	// GetTransactions returns the ledger rows for a game
	GetTransactions(ctx context.Context, gameID string) ([]*models.GameTransaction, error)
}

// UserService defines the interface for user operations
type UserService interface {
	// GetOrCreateUser retrieves an existing user or creates one with zero balance
	GetOrCreateUser(ctx context.Context, wallet string) (*models.User, error)

	// GetUser retrieves a user, returning nil when absent
	GetUser(ctx context.Context, wallet string) (*models.User, error)
}
