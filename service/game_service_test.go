package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"nightfall/events"
	"nightfall/models"
)

type gameMocks struct {
	factory    *MockUnitOfWorkFactory
	uow        *MockUnitOfWork
	games      *MockGameRepository
	ledger     *MockTransactionRepository
	users      *MockUserRepository
	audits     *MockAuditLogRepository
	settlement *MockSettlementService
}

func newGameMocks() *gameMocks {
	m := &gameMocks{
		factory:    new(MockUnitOfWorkFactory),
		uow:        new(MockUnitOfWork),
		games:      new(MockGameRepository),
		ledger:     new(MockTransactionRepository),
		users:      new(MockUserRepository),
		audits:     new(MockAuditLogRepository),
		settlement: new(MockSettlementService),
	}
	m.uow.SetRepositories(m.games, m.ledger, m.users, m.audits)
	m.factory.On("Create").Return(m.uow)
	return m
}

func (m *gameMocks) service() GameService {
	return NewGameService(m.factory, m.settlement, testConfig())
}

func waitingGame(stake models.Lamports, participants ...models.Participant) *models.Game {
	game := &models.Game{
		ID:             "game-1",
		CreatorWallet:  testCreator,
		Status:         models.GameStatusWaiting,
		StakeAmount:    stake,
		TotalPool:      stake * models.Lamports(len(participants)),
		PlayingFee:     100_000,
		MinPlayers:     2,
		MaxPlayers:     3,
		CanCancelAfter: time.Now().UTC().Add(-time.Minute),
	}
	game.SetParticipants(participants)
	return game
}

func TestGameService_CreateGame_Success(t *testing.T) {
	ctx := context.Background()
	m := newGameMocks()

	stake := models.Lamports(100_100_000)

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)

	m.users.On("GetOrCreate", ctx, testCreator).Return(&models.User{WalletAddress: testCreator, Balance: stake}, nil)
	m.users.On("DeductBalance", ctx, testCreator, stake).Return(nil)

	m.games.On("Create", ctx, mock.MatchedBy(func(g *models.Game) bool {
		return g.CreatorWallet == testCreator &&
			g.Status == models.GameStatusWaiting &&
			g.StakeAmount == stake &&
			g.TotalPool == stake &&
			g.HasParticipant(testCreator)
	})).Return(nil)

	m.audits.On("Record", ctx, mock.MatchedBy(func(e *models.AuditLogEntry) bool {
		return e.Action == models.AuditActionGameCreated
	})).Return(nil)

	game, err := m.service().CreateGame(ctx, testCreator, stake, map[string]any{"mode": "dice"})

	assert.NoError(t, err)
	assert.NotEmpty(t, game.ID)
	assert.Equal(t, "dice", game.GameData["mode"])
	assert.True(t, game.CanCancelAfter.After(time.Now().UTC()))

	m.games.AssertExpectations(t)
	m.users.AssertExpectations(t)
	m.audits.AssertExpectations(t)
	m.uow.AssertExpectations(t)
}

func TestGameService_CreateGame_StakeBelowFee(t *testing.T) {
	ctx := context.Background()
	m := newGameMocks()

	_, err := m.service().CreateGame(ctx, testCreator, 100_000, nil)

	assert.ErrorContains(t, err, "must exceed the playing fee")
	m.uow.AssertNotCalled(t, "Begin", mock.Anything)
}

func TestGameService_CreateGame_InvalidCreator(t *testing.T) {
	ctx := context.Background()
	m := newGameMocks()

	_, err := m.service().CreateGame(ctx, "bogus", 100_100_000, nil)

	assert.ErrorContains(t, err, "invalid creator wallet")
	m.uow.AssertNotCalled(t, "Begin", mock.Anything)
}

func TestGameService_CreateGame_InsufficientBalance(t *testing.T) {
	ctx := context.Background()
	m := newGameMocks()

	stake := models.Lamports(100_100_000)

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.users.On("GetOrCreate", ctx, testCreator).Return(&models.User{WalletAddress: testCreator}, nil)
	m.users.On("DeductBalance", ctx, testCreator, stake).
		Return(assert.AnError)

	_, err := m.service().CreateGame(ctx, testCreator, stake, nil)

	assert.ErrorContains(t, err, "failed to stake")
	m.games.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.uow.AssertNotCalled(t, "Commit")
}

func TestGameService_JoinGame_Success(t *testing.T) {
	ctx := context.Background()
	m := newGameMocks()

	stake := models.Lamports(100_100_000)
	game := waitingGame(stake, models.Participant{Wallet: testCreator, Amount: stake})

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.games.On("GetByID", ctx, "game-1").Return(game, nil)
	m.users.On("GetOrCreate", ctx, testWinner).Return(&models.User{WalletAddress: testWinner}, nil)
	m.users.On("DeductBalance", ctx, testWinner, stake).Return(nil)
	m.games.On("Update", ctx, mock.MatchedBy(func(g *models.Game) bool {
		return g.HasParticipant(testWinner) && g.TotalPool == 2*stake
	})).Return(nil)

	joined, err := m.service().JoinGame(ctx, "game-1", testWinner)

	assert.NoError(t, err)
	// Min player count reached: the game starts
	assert.Equal(t, models.GameStatusInProgress, joined.Status)
	assert.NotNil(t, joined.StartedAt)

	m.games.AssertExpectations(t)
	m.users.AssertExpectations(t)
}

func TestGameService_JoinGame_StaysWaitingBelowMin(t *testing.T) {
	ctx := context.Background()
	m := newGameMocks()

	stake := models.Lamports(100_100_000)
	game := waitingGame(stake, models.Participant{Wallet: testCreator, Amount: stake})
	game.MinPlayers = 3

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.games.On("GetByID", ctx, "game-1").Return(game, nil)
	m.users.On("GetOrCreate", ctx, testWinner).Return(&models.User{WalletAddress: testWinner}, nil)
	m.users.On("DeductBalance", ctx, testWinner, stake).Return(nil)
	m.games.On("Update", ctx, mock.Anything).Return(nil)

	joined, err := m.service().JoinGame(ctx, "game-1", testWinner)

	assert.NoError(t, err)
	assert.Equal(t, models.GameStatusWaiting, joined.Status)
	assert.Nil(t, joined.StartedAt)
}

func TestGameService_JoinGame_AlreadyJoined(t *testing.T) {
	ctx := context.Background()
	m := newGameMocks()

	stake := models.Lamports(100_100_000)
	game := waitingGame(stake, models.Participant{Wallet: testCreator, Amount: stake})

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.games.On("GetByID", ctx, "game-1").Return(game, nil)

	_, err := m.service().JoinGame(ctx, "game-1", testCreator)

	assert.ErrorContains(t, err, "already joined")
	m.users.AssertNotCalled(t, "DeductBalance", mock.Anything, mock.Anything, mock.Anything)
}

func TestGameService_JoinGame_Full(t *testing.T) {
	ctx := context.Background()
	m := newGameMocks()

	stake := models.Lamports(100_100_000)
	game := waitingGame(stake,
		models.Participant{Wallet: testCreator, Amount: stake},
		models.Participant{Wallet: testWinner, Amount: stake},
		models.Participant{Wallet: testLoser, Amount: stake},
	)

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.games.On("GetByID", ctx, "game-1").Return(game, nil)

	_, err := m.service().JoinGame(ctx, "game-1", "SysvarRent111111111111111111111111111111111")

	assert.ErrorContains(t, err, "is full")
	m.users.AssertNotCalled(t, "DeductBalance", mock.Anything, mock.Anything, mock.Anything)
}

func TestGameService_JoinGame_NotWaiting(t *testing.T) {
	ctx := context.Background()
	m := newGameMocks()

	stake := models.Lamports(100_100_000)
	game := waitingGame(stake, models.Participant{Wallet: testCreator, Amount: stake})
	game.Status = models.GameStatusInProgress

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.games.On("GetByID", ctx, "game-1").Return(game, nil)

	_, err := m.service().JoinGame(ctx, "game-1", testWinner)

	assert.ErrorContains(t, err, "not accepting players")
}

func TestGameService_CompleteGame_Success(t *testing.T) {
	ctx := context.Background()
	m := newGameMocks()

	stake := models.Lamports(100_100_000)
	game := waitingGame(stake,
		models.Participant{Wallet: testCreator, Amount: stake},
		models.Participant{Wallet: testWinner, Amount: stake},
	)
	game.Status = models.GameStatusInProgress

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.games.On("GetByID", ctx, "game-1").Return(game, nil)
	m.games.On("Update", ctx, mock.MatchedBy(func(g *models.Game) bool {
		return g.Status == models.GameStatusCompleted &&
			g.Winner != nil && *g.Winner == testWinner &&
			g.CompletedAt != nil
	})).Return(nil)
	m.users.On("RecordGameResult", ctx, testCreator, false).Return(nil).Once()
	m.users.On("RecordGameResult", ctx, testWinner, true).Return(nil).Once()
	m.settlement.On("ProcessGamePayout", ctx, "game-1", testWinner).
		Return(&models.PayoutResult{Success: true, TxHash: "payout-hash"})

	completed, payout, err := m.service().CompleteGame(ctx, "game-1", testWinner)

	assert.NoError(t, err)
	assert.Equal(t, models.GameStatusCompleted, completed.Status)
	assert.True(t, payout.Success)

	published := m.uow.PublishedEvents()
	if assert.Len(t, published, 1) {
		event := published[0].(events.GameCompletedEvent)
		assert.Equal(t, testWinner, event.Winner)
		assert.Equal(t, 2*stake-game.PlayingFee, event.NetPayout)
	}

	m.games.AssertExpectations(t)
	m.users.AssertExpectations(t)
	m.settlement.AssertExpectations(t)
}

func TestGameService_CompleteGame_AlreadyCompleted(t *testing.T) {
	ctx := context.Background()
	m := newGameMocks()

	stake := models.Lamports(100_100_000)
	winner := testWinner
	game := waitingGame(stake,
		models.Participant{Wallet: testCreator, Amount: stake},
		models.Participant{Wallet: testWinner, Amount: stake},
	)
	game.Status = models.GameStatusCompleted
	game.Winner = &winner

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.games.On("GetByID", ctx, "game-1").Return(game, nil)

	// The record is left untouched but the payout still runs, so the
	// ledger guard gets to reject the duplicate
	m.settlement.On("ProcessGamePayout", ctx, "game-1", testWinner).
		Return(&models.PayoutResult{Success: false, Error: "payout already processed for game game-1"})

	_, payout, err := m.service().CompleteGame(ctx, "game-1", testWinner)

	assert.NoError(t, err)
	assert.False(t, payout.Success)
	assert.Contains(t, payout.Error, "already processed")

	m.games.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	m.users.AssertNotCalled(t, "RecordGameResult", mock.Anything, mock.Anything, mock.Anything)
	m.uow.AssertNotCalled(t, "Commit")
	m.settlement.AssertExpectations(t)
}

func TestGameService_CompleteGame_WinnerNotParticipant(t *testing.T) {
	ctx := context.Background()
	m := newGameMocks()

	stake := models.Lamports(100_100_000)
	game := waitingGame(stake,
		models.Participant{Wallet: testCreator, Amount: stake},
		models.Participant{Wallet: testLoser, Amount: stake},
	)
	game.Status = models.GameStatusInProgress

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.games.On("GetByID", ctx, "game-1").Return(game, nil)

	_, _, err := m.service().CompleteGame(ctx, "game-1", testWinner)

	assert.ErrorContains(t, err, "not a participant")
	m.settlement.AssertNotCalled(t, "ProcessGamePayout", mock.Anything, mock.Anything, mock.Anything)
}

func TestGameService_CompleteGame_Cancelled(t *testing.T) {
	ctx := context.Background()
	m := newGameMocks()

	stake := models.Lamports(100_100_000)
	game := waitingGame(stake, models.Participant{Wallet: testCreator, Amount: stake})
	game.Status = models.GameStatusCancelled

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.games.On("GetByID", ctx, "game-1").Return(game, nil)

	_, _, err := m.service().CompleteGame(ctx, "game-1", testWinner)

	assert.ErrorContains(t, err, "is cancelled")
	m.settlement.AssertNotCalled(t, "ProcessGamePayout", mock.Anything, mock.Anything, mock.Anything)
}

func TestGameService_CancelGame_Success(t *testing.T) {
	ctx := context.Background()
	m := newGameMocks()

	stake := models.Lamports(100_100_000)
	game := waitingGame(stake, models.Participant{Wallet: testCreator, Amount: stake})

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.games.On("GetByID", ctx, "game-1").Return(game, nil)
	m.games.On("Update", ctx, mock.MatchedBy(func(g *models.Game) bool {
		return g.Status == models.GameStatusCancelled
	})).Return(nil)
	m.audits.On("Record", ctx, mock.MatchedBy(func(e *models.AuditLogEntry) bool {
		return e.Action == models.AuditActionGameCancelled
	})).Return(nil)
	m.settlement.On("ProcessGameRefund", ctx, "game-1").
		Return(&models.RefundResult{Success: true, TxHashes: []string{"refund-1"}})

	cancelled, refund, err := m.service().CancelGame(ctx, "game-1", testCreator)

	assert.NoError(t, err)
	assert.Equal(t, models.GameStatusCancelled, cancelled.Status)
	assert.True(t, refund.Success)

	m.games.AssertExpectations(t)
	m.audits.AssertExpectations(t)
	m.settlement.AssertExpectations(t)
}

func TestGameService_CancelGame_BeforeCooldown(t *testing.T) {
	ctx := context.Background()
	m := newGameMocks()

	stake := models.Lamports(100_100_000)
	game := waitingGame(stake, models.Participant{Wallet: testCreator, Amount: stake})
	game.CanCancelAfter = time.Now().UTC().Add(2 * time.Minute)

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.games.On("GetByID", ctx, "game-1").Return(game, nil)

	_, _, err := m.service().CancelGame(ctx, "game-1", testCreator)

	assert.ErrorContains(t, err, "seconds remaining")
	m.games.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	m.settlement.AssertNotCalled(t, "ProcessGameRefund", mock.Anything, mock.Anything)
	m.uow.AssertNotCalled(t, "Commit")
}

func TestGameService_CancelGame_NotCreator(t *testing.T) {
	ctx := context.Background()
	m := newGameMocks()

	stake := models.Lamports(100_100_000)
	game := waitingGame(stake, models.Participant{Wallet: testCreator, Amount: stake})

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.games.On("GetByID", ctx, "game-1").Return(game, nil)

	_, _, err := m.service().CancelGame(ctx, "game-1", testWinner)

	assert.ErrorContains(t, err, "only the creator")
	m.settlement.AssertNotCalled(t, "ProcessGameRefund", mock.Anything, mock.Anything)
}

func TestGameService_CancelGame_NotWaiting(t *testing.T) {
	ctx := context.Background()
	m := newGameMocks()

	stake := models.Lamports(100_100_000)
	game := waitingGame(stake, models.Participant{Wallet: testCreator, Amount: stake})
	game.Status = models.GameStatusInProgress

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.games.On("GetByID", ctx, "game-1").Return(game, nil)

	_, _, err := m.service().CancelGame(ctx, "game-1", testCreator)

	assert.ErrorContains(t, err, "cannot be cancelled")
	m.settlement.AssertNotCalled(t, "ProcessGameRefund", mock.Anything, mock.Anything)
}

func TestGameService_GetTransactions_GameNotFound(t *testing.T) {
	ctx := context.Background()
	m := newGameMocks()

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.games.On("GetByID", ctx, "missing").Return(nil, nil)

	_, err := m.service().GetTransactions(ctx, "missing")

	assert.ErrorContains(t, err, "not found")
	m.ledger.AssertNotCalled(t, "GetByGame", mock.Anything, mock.Anything)
}
