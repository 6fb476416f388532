package database

import (
	"fmt"

	"gorm.io/gorm"

	"task-tracker/internal/models"
)

// Migrate creates or extends the users and tasks tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Task{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
