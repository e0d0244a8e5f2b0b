package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestGormSolveRunRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo, err := NewGormSolveRunRepository(db)
	require.NoError(t, err)
	ctx := context.Background()

	run := &SolveRun{
		TraceName:   "trace-a",
		TensorCount: 3,
		BestBytes:   1024,
		Algorithm:   "ManyObjects",
	}
	require.NoError(t, repo.Create(ctx, run))
	assert.NotZero(t, run.ID)
}

func TestGormSolveRunRepository_GetByID(t *testing.T) {
	db := setupTestDB(t)
	repo, err := NewGormSolveRunRepository(db)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("NotFound", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 999)
		assert.Error(t, err)
	})

	t.Run("Success", func(t *testing.T) {
		run := &SolveRun{TraceName: "trace-b", BestBytes: 512}
		require.NoError(t, repo.Create(ctx, run))

		found, err := repo.GetByID(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, "trace-b", found.TraceName)
	})
}

func TestGormSolveRunRepository_ListByTrace(t *testing.T) {
	db := setupTestDB(t)
	repo, err := NewGormSolveRunRepository(db)
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &SolveRun{TraceName: "trace-c", BestBytes: int64(i)}))
	}
	require.NoError(t, repo.Create(ctx, &SolveRun{TraceName: "other-trace"}))

	runs, err := repo.ListByTrace(ctx, "trace-c", 0)
	require.NoError(t, err)
	assert.Len(t, runs, 3)

	limited, err := repo.ListByTrace(ctx, "trace-c", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
