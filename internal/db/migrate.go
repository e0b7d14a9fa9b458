package db

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mgjeanpierre85-cpu/ml-forex/internal/models"
)

// schemaMigration tracks which migration steps have already been applied, so
// Migrate can run at every startup and only do new work.
type schemaMigration struct {
	Version   int       `gorm:"primaryKey"`
	AppliedAt time.Time `gorm:"type:timestamptz;not null"`
}

func (schemaMigration) TableName() string {
	return "schema_migrations"
}

type migration struct {
	Version int
	Name    string
	Run     func(tx *gorm.DB) error
}

// Ordered, append-only. Never renumber or edit an applied step; add a new one.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create signals table",
		Run: func(tx *gorm.DB) error {
			return tx.Migrator().AutoMigrate(&models.Signal{})
		},
	},
}

// Migrate applies any pending schema migrations in order. It is the only
// schema-touching code path; request serving starts after it returns.
func Migrate(db *DB) error {
	if db == nil || db.Gorm == nil {
		return nil
	}

	if err := db.Gorm.Migrator().AutoMigrate(&schemaMigration{}); err != nil {
		return fmt.Errorf("migrations table: %w", err)
	}

	var applied []schemaMigration
	if err := db.Gorm.Find(&applied).Error; err != nil {
		return fmt.Errorf("read applied migrations: %w", err)
	}
	done := make(map[int]bool, len(applied))
	for _, m := range applied {
		done[m.Version] = true
	}

	for _, m := range migrations {
		if done[m.Version] {
			continue
		}
		err := db.Gorm.Transaction(func(tx *gorm.DB) error {
			if err := m.Run(tx); err != nil {
				return err
			}
			return tx.Create(&schemaMigration{
				Version:   m.Version,
				AppliedAt: NowUTC(),
			}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
	}

	return nil
}
