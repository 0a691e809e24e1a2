package database

import (
	"fmt"

	"github.com/bugtracker-api/models"
	"gorm.io/gorm"
)

// Models lists every table the API owns, parents first
var Models = []interface{}{
	&models.User{},
	&models.Project{},
	&models.ProjectMember{},
	&models.Issue{},
	&models.Comment{},
}

// Migrate migrates the database schema
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
