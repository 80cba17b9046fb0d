package database

import (
	"log"

	"autoshop/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM.
// TranslateError is on so unique violations surface as gorm.ErrDuplicatedKey;
// the work order number generator relies on that for its retry loop.
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.User{},
		&model.Vehicle{},
		&model.Service{},
		&model.SparePart{},
		&model.ServiceRequest{},
		&model.WorkOrder{},
		&model.WorkOrderServiceLine{},
		&model.WorkOrderPartLine{},
		&model.AuditLog{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}
