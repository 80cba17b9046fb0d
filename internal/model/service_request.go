package model

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus enum constants
const (
	RequestStatusNew       = "NEW"
	RequestStatusConfirmed = "CONFIRMED"
	RequestStatusCancelled = "CANCELLED"
	RequestStatusCompleted = "COMPLETED"
)

// ServiceRequest is a customer intake record preceding a work order.
// A request backs at most one work order (unique index on work_orders.request_id).
type ServiceRequest struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ClientID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"client_id"`
	Client      *User      `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	VehicleID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"vehicle_id"`
	Vehicle     *Vehicle   `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	ServiceID   *uuid.UUID `gorm:"type:uuid;index" json:"service_id"`
	Service     *Service   `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	DesiredDate *time.Time `json:"desired_date"`
	Comment     string     `gorm:"type:text" json:"comment"`
	Status      string     `gorm:"type:varchar(20);not null;default:'NEW';index" json:"status"` // NEW, CONFIRMED, CANCELLED, COMPLETED
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
