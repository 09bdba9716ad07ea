package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nightfall/models"
	"nightfall/repository/testutil"
)

func TestUserRepository_GetOrCreate(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("creates with zero balance", func(t *testing.T) {
		user, err := repo.GetOrCreate(ctx, testutil.TestWalletA)
		require.NoError(t, err)
		require.NotNil(t, user)

		assert.Equal(t, testutil.TestWalletA, user.WalletAddress)
		assert.Equal(t, models.Lamports(0), user.Balance)
		assert.Zero(t, user.GamesPlayed)
		assert.Zero(t, user.GamesWon)
	})

	t.Run("returns the existing record", func(t *testing.T) {
		require.NoError(t, repo.AddBalance(ctx, testutil.TestWalletA, 500_000))

		user, err := repo.GetOrCreate(ctx, testutil.TestWalletA)
		require.NoError(t, err)
		assert.Equal(t, models.Lamports(500_000), user.Balance)
	})

	t.Run("get by wallet misses unknown users", func(t *testing.T) {
		user, err := repo.GetByWallet(ctx, testutil.TestWalletC)
		require.NoError(t, err)
		assert.Nil(t, user)
	})
}

func TestUserRepository_Balance(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.GetOrCreate(ctx, testutil.TestWalletA)
	require.NoError(t, err)

	t.Run("add then deduct", func(t *testing.T) {
		require.NoError(t, repo.AddBalance(ctx, testutil.TestWalletA, 1_000_000))
		require.NoError(t, repo.DeductBalance(ctx, testutil.TestWalletA, 300_000))

		user, err := repo.GetByWallet(ctx, testutil.TestWalletA)
		require.NoError(t, err)
		assert.Equal(t, models.Lamports(700_000), user.Balance)
	})

	t.Run("deduct past zero fails and leaves the balance alone", func(t *testing.T) {
		err := repo.DeductBalance(ctx, testutil.TestWalletA, 5_000_000)
		assert.ErrorContains(t, err, "insufficient balance")

		user, err := repo.GetByWallet(ctx, testutil.TestWalletA)
		require.NoError(t, err)
		assert.Equal(t, models.Lamports(700_000), user.Balance)
	})

	t.Run("deduct exactly to zero succeeds", func(t *testing.T) {
		require.NoError(t, repo.DeductBalance(ctx, testutil.TestWalletA, 700_000))

		user, err := repo.GetByWallet(ctx, testutil.TestWalletA)
		require.NoError(t, err)
		assert.Equal(t, models.Lamports(0), user.Balance)
	})

	t.Run("non-positive amounts are rejected", func(t *testing.T) {
		assert.Error(t, repo.AddBalance(ctx, testutil.TestWalletA, 0))
		assert.Error(t, repo.DeductBalance(ctx, testutil.TestWalletA, -1))
	})

	t.Run("unknown user", func(t *testing.T) {
		err := repo.AddBalance(ctx, testutil.TestWalletC, 1_000)
		assert.ErrorContains(t, err, "not found")
	})
}

func TestUserRepository_RecordGameResult(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.GetOrCreate(ctx, testutil.TestWalletA)
	require.NoError(t, err)

	require.NoError(t, repo.RecordGameResult(ctx, testutil.TestWalletA, true))
	require.NoError(t, repo.RecordGameResult(ctx, testutil.TestWalletA, false))
	require.NoError(t, repo.RecordGameResult(ctx, testutil.TestWalletA, false))

	user, err := repo.GetByWallet(ctx, testutil.TestWalletA)
	require.NoError(t, err)
	assert.Equal(t, 3, user.GamesPlayed)
	assert.Equal(t, 1, user.GamesWon)
}
