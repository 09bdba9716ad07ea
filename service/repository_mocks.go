package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"nightfall/events"
	"nightfall/models"
	"nightfall/solana"
)

// MockGameRepository is a mock implementation of GameRepository
type MockGameRepository struct {
	mock.Mock
}

func (m *MockGameRepository) Create(ctx context.Context, game *models.Game) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *MockGameRepository) GetByID(ctx context.Context, id string) (*models.Game, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Game), args.Error(1)
}

func (m *MockGameRepository) Update(ctx context.Context, game *models.Game) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *MockGameRepository) ListByStatus(ctx context.Context, status models.GameStatus, limit int) ([]*models.Game, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Game), args.Error(1)
}

func (m *MockGameRepository) List(ctx context.Context, limit int) ([]*models.Game, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Game), args.Error(1)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) ClaimPayout(ctx context.Context, gameID, toAddress string, amount models.Lamports) (*models.GameTransaction, error) {
	args := m.Called(ctx, gameID, toAddress, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GameTransaction), args.Error(1)
}

func (m *MockTransactionRepository) ClaimRefund(ctx context.Context, gameID, toAddress string, amount models.Lamports) (*models.GameTransaction, error) {
	args := m.Called(ctx, gameID, toAddress, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GameTransaction), args.Error(1)
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *models.GameTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) MarkCompleted(ctx context.Context, id int64, txHash string) error {
	args := m.Called(ctx, id, txHash)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByGame(ctx context.Context, gameID string) ([]*models.GameTransaction, error) {
	args := m.Called(ctx, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.GameTransaction), args.Error(1)
}

func (m *MockTransactionRepository) HasCompletedPayout(ctx context.Context, gameID string) (bool, error) {
	args := m.Called(ctx, gameID)
	return args.Bool(0), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByWallet(ctx context.Context, wallet string) (*models.User, error) {
	args := m.Called(ctx, wallet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetOrCreate(ctx context.Context, wallet string) (*models.User, error) {
	args := m.Called(ctx, wallet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) AddBalance(ctx context.Context, wallet string, amount models.Lamports) error {
	args := m.Called(ctx, wallet, amount)
	return args.Error(0)
}

func (m *MockUserRepository) DeductBalance(ctx context.Context, wallet string, amount models.Lamports) error {
	args := m.Called(ctx, wallet, amount)
	return args.Error(0)
}

func (m *MockUserRepository) RecordGameResult(ctx context.Context, wallet string, won bool) error {
	args := m.Called(ctx, wallet, won)
	return args.Error(0)
}

// MockAuditLogRepository is a mock implementation of AuditLogRepository
type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Record(ctx context.Context, entry *models.AuditLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditLogRepository) ListByGame(ctx context.Context, gameID string, limit int) ([]*models.AuditLogEntry, error) {
	args := m.Called(ctx, gameID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditLogEntry), args.Error(1)
}

// MockPaymentRail is a mock implementation of solana.PaymentRail
type MockPaymentRail struct {
	mock.Mock
}

func (m *MockPaymentRail) Send(ctx context.Context, toAddress string, amount models.Lamports) (*solana.TxReceipt, error) {
	args := m.Called(ctx, toAddress, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*solana.TxReceipt), args.Error(1)
}

func (m *MockPaymentRail) VerifyTransaction(ctx context.Context, txHash string) (bool, error) {
	args := m.Called(ctx, txHash)
	return args.Bool(0), args.Error(1)
}

// MockSettlementService is a mock implementation of SettlementService
type MockSettlementService struct {
	mock.Mock
}

func (m *MockSettlementService) ProcessGamePayout(ctx context.Context, gameID, winnerWallet string) *models.PayoutResult {
	args := m.Called(ctx, gameID, winnerWallet)
	return args.Get(0).(*models.PayoutResult)
}

func (m *MockSettlementService) ProcessGameRefund(ctx context.Context, gameID string) *models.RefundResult {
	args := m.Called(ctx, gameID)
	return args.Get(0).(*models.RefundResult)
}

func (m *MockSettlementService) EstimateNetworkFee() models.Lamports {
	args := m.Called()
	return args.Get(0).(models.Lamports)
}

// noopPublisher collects published events without dispatching them
type noopPublisher struct {
	published []events.Event
}

func (p *noopPublisher) Publish(e events.Event) {
	p.published = append(p.published, e)
}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
	gameRepo        GameRepository
	transactionRepo TransactionRepository
	userRepo        UserRepository
	auditLogRepo    AuditLogRepository
	publisher       *noopPublisher
}

// SetRepositories wires the repositories returned by this unit of work
func (m *MockUnitOfWork) SetRepositories(games GameRepository, transactions TransactionRepository, users UserRepository, audits AuditLogRepository) {
	m.gameRepo = games
	m.transactionRepo = transactions
	m.userRepo = users
	m.auditLogRepo = audits
	m.publisher = &noopPublisher{}
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) GameRepository() GameRepository {
	return m.gameRepo
}

func (m *MockUnitOfWork) TransactionRepository() TransactionRepository {
	return m.transactionRepo
}

func (m *MockUnitOfWork) UserRepository() UserRepository {
	return m.userRepo
}

func (m *MockUnitOfWork) AuditLogRepository() AuditLogRepository {
	return m.auditLogRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.publisher
}

// PublishedEvents returns events captured by the unit of work's publisher
func (m *MockUnitOfWork) PublishedEvents() []events.Event {
	return m.publisher.published
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
