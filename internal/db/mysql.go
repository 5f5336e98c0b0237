package db

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"notehub/internal/model"
)

// NewMySQL returns a connected GORM DB instance.
func NewMySQL(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	return db, nil
}

// EnsureFulltextIndexes creates the fulltext indexes backing note search.
// AutoMigrate cannot express FULLTEXT, so they are created here after migration.
// The title-only index lets search rank title matches above content-only matches.
func EnsureFulltextIndexes(db *gorm.DB) error {
	indexes := map[string]string{
		"idx_notes_text":  "CREATE FULLTEXT INDEX idx_notes_text ON notes (title, content)",
		"idx_notes_title": "CREATE FULLTEXT INDEX idx_notes_title ON notes (title)",
	}
	for name, stmt := range indexes {
		if db.Migrator().HasIndex(&model.Note{}, name) {
			continue
		}
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index %s: %w", name, err)
		}
	}
	return nil
}
