package database

import (
	"testing"

	"github.com/colexalia/colexalia-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

func TestOpenSQLiteMemory(t *testing.T) {
	db, err := Open(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, gormlogger.Silent)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
	assert.NoError(t, sqlDB.Ping())
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "postgres"}, gormlogger.Silent)
	assert.Error(t, err)
}

func TestDialectorForMySQLParsesDSN(t *testing.T) {
	d, err := dialectorFor(config.DatabaseConfig{
		Driver: "mysql", Host: "db", Port: 3306, User: "app", Password: "pw", Name: "colexalia",
	})
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.Name())
}
