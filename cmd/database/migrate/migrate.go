package migration

import (
	"freshkeep-backend/entities"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&entities.FoodItem{}); err != nil {
		log.Errorf("Error migrating food item database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.DevicePreference{}); err != nil {
		log.Errorf("Error migrating device preference database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.ScheduledAlert{}); err != nil {
		log.Errorf("Error migrating scheduled alert database: %v", err)
		return err
	}

	log.Info("Database migration complete")
	return nil
}
