// Package db provides database connectivity for the SQL-backed record store.
package db

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultSqliteFile is the database file created in the current directory
// when no DSN is supplied.
const DefaultSqliteFile = "sfbilling.db"

// NewDBConnection opens a gorm connection for the given DSN.
// A postgres:// or postgresql:// DSN selects Postgres; anything else is treated as a sqlite DSN.
// An empty DSN opens (or creates) DefaultSqliteFile.
func NewDBConnection(dsn string) (*gorm.DB, error) {
	conf := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	var dialector gorm.Dialector
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		dialector = postgres.Open(dsn)
	case dsn == "":
		dialector = sqlite.Open(DefaultSqliteFile)
	default:
		dialector = sqlite.Open(strings.TrimPrefix(dsn, "sqlite://"))
	}

	db, err := gorm.Open(dialector, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}
