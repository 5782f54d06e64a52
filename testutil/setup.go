package testutil

import (
	"testing"

	"github.com/kasuganosora/enemyai/bus"
	"github.com/kasuganosora/enemyai/config"
	dbadapter "github.com/kasuganosora/enemyai/db"
	"github.com/kasuganosora/enemyai/model"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// SetupTestDB creates a private in-memory SQLite DB and runs AutoMigrate.
// It requires no external services and is safe to use in parallel tests.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := dbadapter.Open(config.DatabaseConfig{Mode: dbadapter.ModeMemory})
	require.NoError(t, err, "SetupTestDB: Open")
	require.NoError(t, model.AutoMigrate(db), "SetupTestDB: AutoMigrate")
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// SetupTestBus creates an in-process event bus (no Redis required).
func SetupTestBus(t *testing.T) bus.PubSub {
	t.Helper()
	ps, err := bus.New(config.BusConfig{})
	require.NoError(t, err, "SetupTestBus: New")
	t.Cleanup(func() { ps.Close() })
	return ps
}
