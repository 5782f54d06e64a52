package db

import (
	"fmt"

	"github.com/kasuganosora/enemyai/config"
	dbmysql "github.com/kasuganosora/enemyai/db/mysql"
	dbsqlite "github.com/kasuganosora/enemyai/db/sqlite"
	"gorm.io/gorm"
)

const (
	ModeMemory = "memory"
	ModeSQLite = "sqlite"
	ModeMySQL  = "mysql"
)

// Open returns a *gorm.DB for the configured database mode.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Mode {
	case ModeMemory:
		db, err = dbsqlite.OpenMemory()
	case ModeSQLite:
		db, err = dbsqlite.Open(cfg.SQLitePath)
	case ModeMySQL:
		db, err = dbmysql.Open(cfg.MySQLDSN, cfg.MySQLMaxOpen, cfg.MySQLMaxIdle, cfg.MySQLMaxLife)
	default:
		return nil, fmt.Errorf("db: unknown mode %q", cfg.Mode)
	}
	if err != nil {
		return nil, fmt.Errorf("db: open %s: %w", cfg.Mode, err)
	}
	return db, nil
}
