package migration

import (
	"flavorpal-backend/entities"
	"fmt"
	"log"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	// uuid generation and the vector column type
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\";").Error; err != nil {
		return err
	}
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector;").Error; err != nil {
		return err
	}

	models := []struct {
		name  string
		model interface{}
	}{
		{"product", &entities.Product{}},
		{"history", &entities.History{}},
		{"ai suggestion", &entities.AISuggestion{}},
		{"review", &entities.Review{}},
		{"health flag", &entities.HealthFlag{}},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m.model); err != nil {
			log.Printf("Error migrating %s database: %v", m.name, err)
			return err
		}
	}

	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_products_image_embedding
		ON products USING hnsw (image_embedding vector_cosine_ops);`).Error; err != nil {
		log.Printf("Error creating embedding index: %v", err)
		return err
	}

	fmt.Println("Database migration complete")
	return nil
}
