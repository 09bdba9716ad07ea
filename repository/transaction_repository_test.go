package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nightfall/models"
	"nightfall/repository/testutil"
)

func TestTransactionRepository_ClaimPayout(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	games := NewGameRepository(testDB.DB)
	repo := NewTransactionRepository(testDB.DB)
	ctx := context.Background()

	game := testutil.CreateCompletedGame(testutil.TestWalletA, testutil.TestWalletB, 200_200_000, 100_000)
	require.NoError(t, games.Create(ctx, game))

	t.Run("first claim wins", func(t *testing.T) {
		row, err := repo.ClaimPayout(ctx, game.ID, testutil.TestWalletB, 200_100_000)
		require.NoError(t, err)
		require.NotNil(t, row)

		assert.NotZero(t, row.ID)
		assert.Equal(t, models.TransactionTypePayout, row.Type)
		assert.Equal(t, models.TransactionStatusPending, row.Status)
		assert.Equal(t, models.Lamports(200_100_000), row.Amount)
		assert.Nil(t, row.TxHash)
	})

	t.Run("second claim loses", func(t *testing.T) {
		row, err := repo.ClaimPayout(ctx, game.ID, testutil.TestWalletB, 200_100_000)
		require.NoError(t, err)
		assert.Nil(t, row)
	})

	t.Run("second claim loses even with a different recipient", func(t *testing.T) {
		row, err := repo.ClaimPayout(ctx, game.ID, testutil.TestWalletC, 200_100_000)
		require.NoError(t, err)
		assert.Nil(t, row)
	})

	t.Run("other games are unaffected", func(t *testing.T) {
		other := testutil.CreateCompletedGame(testutil.TestWalletA, testutil.TestWalletC, 300_000_000, 100_000)
		require.NoError(t, games.Create(ctx, other))

		row, err := repo.ClaimPayout(ctx, other.ID, testutil.TestWalletC, 299_900_000)
		require.NoError(t, err)
		assert.NotNil(t, row)
	})
}

func TestTransactionRepository_ClaimRefund(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	games := NewGameRepository(testDB.DB)
	repo := NewTransactionRepository(testDB.DB)
	ctx := context.Background()

	stake := models.Lamports(100_100_000)
	game := testutil.CreateCancelledGame(testutil.TestWalletA, []models.Participant{
		{Wallet: testutil.TestWalletA, Amount: stake},
		{Wallet: testutil.TestWalletB, Amount: stake},
	})
	require.NoError(t, games.Create(ctx, game))

	t.Run("one refund per participant", func(t *testing.T) {
		rowA, err := repo.ClaimRefund(ctx, game.ID, testutil.TestWalletA, stake)
		require.NoError(t, err)
		require.NotNil(t, rowA)

		rowB, err := repo.ClaimRefund(ctx, game.ID, testutil.TestWalletB, stake)
		require.NoError(t, err)
		require.NotNil(t, rowB)
	})

	t.Run("repeat claim for the same participant loses", func(t *testing.T) {
		row, err := repo.ClaimRefund(ctx, game.ID, testutil.TestWalletA, stake)
		require.NoError(t, err)
		assert.Nil(t, row)
	})
}

func TestTransactionRepository_MarkCompleted(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	games := NewGameRepository(testDB.DB)
	repo := NewTransactionRepository(testDB.DB)
	ctx := context.Background()

	game := testutil.CreateCompletedGame(testutil.TestWalletA, testutil.TestWalletB, 200_200_000, 100_000)
	require.NoError(t, games.Create(ctx, game))

	row, err := repo.ClaimPayout(ctx, game.ID, testutil.TestWalletB, 200_100_000)
	require.NoError(t, err)
	require.NotNil(t, row)

	t.Run("pending row completes", func(t *testing.T) {
		require.NoError(t, repo.MarkCompleted(ctx, row.ID, "tx-hash-1"))

		rows, err := repo.GetByGame(ctx, game.ID)
		require.NoError(t, err)
		require.Len(t, rows, 1)

		assert.Equal(t, models.TransactionStatusCompleted, rows[0].Status)
		require.NotNil(t, rows[0].TxHash)
		assert.Equal(t, "tx-hash-1", *rows[0].TxHash)
		assert.NotNil(t, rows[0].CompletedAt)
	})

	t.Run("completed row cannot be completed again", func(t *testing.T) {
		err := repo.MarkCompleted(ctx, row.ID, "tx-hash-2")
		assert.ErrorContains(t, err, "not found or not pending")
	})

	t.Run("unknown row", func(t *testing.T) {
		err := repo.MarkCompleted(ctx, 99999, "tx-hash-3")
		assert.ErrorContains(t, err, "not found or not pending")
	})
}

func TestTransactionRepository_GetByGame(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	games := NewGameRepository(testDB.DB)
	repo := NewTransactionRepository(testDB.DB)
	ctx := context.Background()

	game := testutil.CreateCompletedGame(testutil.TestWalletA, testutil.TestWalletB, 200_200_000, 100_000)
	require.NoError(t, games.Create(ctx, game))

	t.Run("empty game", func(t *testing.T) {
		rows, err := repo.GetByGame(ctx, game.ID)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("rows come back oldest first", func(t *testing.T) {
		payout, err := repo.ClaimPayout(ctx, game.ID, testutil.TestWalletB, 200_100_000)
		require.NoError(t, err)
		require.NotNil(t, payout)

		fee := &models.GameTransaction{
			GameID:    game.ID,
			Type:      models.TransactionTypeFee,
			ToAddress: testutil.TestFeeAddress,
			Amount:    100_000,
		}
		require.NoError(t, repo.Create(ctx, fee))

		rows, err := repo.GetByGame(ctx, game.ID)
		require.NoError(t, err)
		require.Len(t, rows, 2)

		assert.Equal(t, models.TransactionTypePayout, rows[0].Type)
		assert.Equal(t, models.TransactionTypeFee, rows[1].Type)
		assert.Equal(t, models.Lamports(100_000), rows[1].Amount)
	})
}

func TestTransactionRepository_HasCompletedPayout(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	games := NewGameRepository(testDB.DB)
	repo := NewTransactionRepository(testDB.DB)
	ctx := context.Background()

	game := testutil.CreateCompletedGame(testutil.TestWalletA, testutil.TestWalletB, 200_200_000, 100_000)
	require.NoError(t, games.Create(ctx, game))

	t.Run("no payout", func(t *testing.T) {
		has, err := repo.HasCompletedPayout(ctx, game.ID)
		require.NoError(t, err)
		assert.False(t, has)
	})

	row, err := repo.ClaimPayout(ctx, game.ID, testutil.TestWalletB, 200_100_000)
	require.NoError(t, err)
	require.NotNil(t, row)

	t.Run("pending payout does not count", func(t *testing.T) {
		has, err := repo.HasCompletedPayout(ctx, game.ID)
		require.NoError(t, err)
		assert.False(t, has)
	})

	t.Run("completed payout counts", func(t *testing.T) {
		require.NoError(t, repo.MarkCompleted(ctx, row.ID, "tx-hash"))

		has, err := repo.HasCompletedPayout(ctx, game.ID)
		require.NoError(t, err)
		assert.True(t, has)
	})
}
