package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ManuelReschke/GiftScout/app/models"
)

func newTestDB(t *testing.T, migrate bool) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if migrate {
		require.NoError(t, db.AutoMigrate(&models.Gift{}))
	}
	return db
}

func gift(id int64, rate float64, lock int) *models.Gift {
	g := &models.Gift{
		ID:            id,
		Name:          "gift",
		Price:         100,
		PeriodType:    models.PeriodTypeFixed,
		VoucherType:   "ONE_TIME",
		EarningRate:   rate,
		GiftEndedTime: "2024-07-01 00:00:00",
		MoneyLockDays: lock,
	}
	g.Description = g.Describe()
	return g
}

func TestGiftRepository_UpsertIsIdempotent(t *testing.T) {
	repo := NewGiftRepository(newTestDB(t, true))
	ctx := context.Background()

	batch := []*models.Gift{gift(1, 3, 10), gift(2, 4, 20)}
	require.NoError(t, repo.UpsertBatch(ctx, batch))
	require.NoError(t, repo.UpsertBatch(ctx, batch))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	got, err := repo.GetByID(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 4.0, got.EarningRate)
	assert.Equal(t, 20, got.MoneyLockDays)
}

func TestGiftRepository_UpsertReplacesAllColumns(t *testing.T) {
	repo := NewGiftRepository(newTestDB(t, true))
	ctx := context.Background()

	days := 15
	first := gift(1, 3, 15)
	first.PeriodDays = &days
	first.Name = "old"
	require.NoError(t, repo.UpsertBatch(ctx, []*models.Gift{first}))

	exp := "2024-08-15 00:00:00"
	second := gift(1, 2.5, 45)
	second.Name = "new"
	second.GiftExpirationTime = &exp
	require.NoError(t, repo.UpsertBatch(ctx, []*models.Gift{second}))

	got, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Name)
	assert.Equal(t, 2.5, got.EarningRate)
	assert.Equal(t, 45, got.MoneyLockDays)
	assert.Nil(t, got.PeriodDays)
	require.NotNil(t, got.GiftExpirationTime)
	assert.Equal(t, exp, *got.GiftExpirationTime)
}

func TestGiftRepository_UpsertDuplicateIDsInBatch(t *testing.T) {
	repo := NewGiftRepository(newTestDB(t, true))
	ctx := context.Background()

	require.NoError(t, repo.UpsertBatch(ctx, []*models.Gift{gift(1, 3, 10), gift(1, 2, 12)}))

	got, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 12, got.MoneyLockDays)
}

func TestGiftRepository_FindQualifying(t *testing.T) {
	repo := NewGiftRepository(newTestDB(t, true))
	ctx := context.Background()

	require.NoError(t, repo.UpsertBatch(ctx, []*models.Gift{
		gift(1, 5, 30),   // in
		gift(2, 5.5, 10), // rate too high
		gift(3, 2, 31),   // lock not below 31
		gift(4, 1, 0),    // zero lock
		gift(5, 3, 30),   // in, better rate than 1
		gift(6, 0.5, 7),  // in
	}))

	got, err := repo.FindQualifying(ctx, 5.0, 31)
	require.NoError(t, err)

	ids := make([]int64, 0, len(got))
	for _, g := range got {
		ids = append(ids, g.ID)
	}
	assert.Equal(t, []int64{5, 1, 6}, ids)
}

func TestGiftRepository_MissingTable(t *testing.T) {
	repo := NewGiftRepository(newTestDB(t, false))
	ctx := context.Background()

	_, err := repo.Count(ctx)
	assert.True(t, errors.Is(err, ErrStorageUnavailable))

	_, err = repo.FindQualifying(ctx, 5, 31)
	assert.True(t, errors.Is(err, ErrStorageUnavailable))
}

func TestGiftRepository_GetByIDMissing(t *testing.T) {
	repo := NewGiftRepository(newTestDB(t, true))

	got, err := repo.GetByID(context.Background(), 404)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFactory_GetGiftRepository(t *testing.T) {
	f := NewFactory(newTestDB(t, true))
	assert.NotNil(t, f.GetGiftRepository())
	assert.Same(t, f.GetRepositories(), f.GetRepositories())
}

func TestFactory_PingAndClose(t *testing.T) {
	f := NewFactory(newTestDB(t, true))
	ctx := context.Background()

	require.NoError(t, f.Ping(ctx))
	require.NoError(t, f.Close())
	assert.Error(t, f.Ping(ctx))
}
