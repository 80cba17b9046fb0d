package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SystemRole enum constants
const (
	RoleAdmin  = "ADMIN"
	RoleWorker = "WORKER"
	RoleClient = "CLIENT"
)

// IsStaffRole reports whether the role may be assigned as a responsible worker.
func IsStaffRole(role string) bool {
	return role == RoleAdmin || role == RoleWorker
}

// User represents the central user entity for logic and database structure
type User struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Surname   string         `gorm:"type:varchar(255)" json:"surname"`
	Email     string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone     string         `gorm:"type:varchar(20)" json:"phone"`
	Password  string         `gorm:"type:varchar(255);not null" json:"-"`   // Omit password from JSON requests/responses
	Role      string         `gorm:"type:varchar(20);not null" json:"role"` // ADMIN, WORKER, CLIENT
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"` // GORM soft delete
}

// FullName joins surname and name the way the client UI displays it.
func (u User) FullName() string {
	if u.Surname == "" {
		return u.Name
	}
	return u.Surname + " " + u.Name
}
