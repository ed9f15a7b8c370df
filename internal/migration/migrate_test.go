package migration

import (
	"testing"
	"time"

	"github.com/colexalia/colexalia-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestRunCreatesTables(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, Run(db))

	for _, table := range []string{"users", "wishlists", "collections"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	// idempotent
	assert.NoError(t, Run(db))
}

func TestCounts(t *testing.T) {
	db := setupDB(t)

	counts, err := Counts(db)
	require.NoError(t, err)
	require.Len(t, counts, 3)
	for _, c := range counts {
		assert.False(t, c.Exists, c.Table)
	}

	require.NoError(t, Run(db))
	require.NoError(t, db.Create(&domain.WishlistItem{
		ID: "w-1", UserID: "u-1", ProductID: "p-1", Name: "Chrono Trigger", DateAdded: time.Now().UTC(),
	}).Error)

	counts, err = Counts(db)
	require.NoError(t, err)
	byTable := map[string]TableCount{}
	for _, c := range counts {
		byTable[c.Table] = c
	}
	assert.True(t, byTable["wishlists"].Exists)
	assert.Equal(t, int64(1), byTable["wishlists"].Rows)
	assert.Equal(t, int64(0), byTable["users"].Rows)
}

func TestReset(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, Run(db))
	require.NoError(t, Reset(db))

	assert.False(t, db.Migrator().HasTable("users"))
	assert.False(t, db.Migrator().HasTable("collections"))
}
