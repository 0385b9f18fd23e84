package postgres

import (
	"log"

	"github.com/TechSavvyAce/safeping-sub001/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MustInitDB opens the payment database. Schema creation is owned by the
// migration runner, not by gorm AutoMigrate.
func MustInitDB(cfg *config.SafePingConfig) *gorm.DB {
	dsn := cfg.PaymentDB.Dsn
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	return db
}
