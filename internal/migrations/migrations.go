// Package migrations keeps the record store schema up to date.
package migrations

import (
	"fmt"

	"github.com/sfbilling/sfbilling/internal/model"
	"gorm.io/gorm"
)

// Migrate creates or updates the tables of the SQL record store.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Account{},
		&model.Invoice{},
		&model.Payment{},
		&model.UsageRecord{},
	); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}
	return nil
}
