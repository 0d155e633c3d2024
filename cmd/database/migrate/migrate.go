package migration

import (
	"fmt"

	"gorm.io/gorm"

	"Pantry-Service/entities"
)

func Migrate(db *gorm.DB) error {
	models := []struct {
		name  string
		model any
	}{
		{"stock item", &entities.StockItem{}},
		{"scan", &entities.Scan{}},
		{"recipe", &entities.Recipe{}},
		{"recipe history", &entities.RecipeHistory{}},
	}

	for _, m := range models {
		if err := db.AutoMigrate(m.model); err != nil {
			return fmt.Errorf("migrating %s table: %w", m.name, err)
		}
	}

	return nil
}
