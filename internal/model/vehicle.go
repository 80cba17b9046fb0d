package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vehicle represents a client-owned car serviced by the shop.
// Work orders and service requests reference vehicles read-only.
type Vehicle struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner        *User          `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Make         string         `gorm:"type:varchar(100);not null" json:"make"`
	Model        string         `gorm:"type:varchar(100);not null" json:"model"`
	Year         *int           `json:"year"`
	LicensePlate string         `gorm:"type:varchar(20);not null" json:"license_plate"`
	VIN          string         `gorm:"type:varchar(17)" json:"vin"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// Describe renders "Make Model Year Plate" for report rows and exports.
func (v Vehicle) Describe() string {
	parts := []string{v.Make, v.Model}
	if v.Year != nil {
		parts = append(parts, strconv.Itoa(*v.Year))
	}
	if v.LicensePlate != "" {
		parts = append(parts, v.LicensePlate)
	}
	return strings.Join(parts, " ")
}
