package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service is a labor position from the shop catalog. BasePrice is the
// current price; work order lines snapshot it at insertion time and are
// never repriced when it changes.
type Service struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	BasePrice   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"base_price"`
	DurationMin *int            `json:"duration_min"`
	IsActive    bool            `gorm:"default:true;index" json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// SparePart is a stocked part from the shop catalog.
type SparePart struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name          string          `gorm:"type:varchar(255);not null" json:"name"`
	Article       string          `gorm:"type:varchar(100)" json:"article"`
	Unit          string          `gorm:"type:varchar(20);default:'pcs'" json:"unit"`
	Price         decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"price"`
	StockQuantity int             `gorm:"default:0" json:"stock_quantity"`
	IsActive      bool            `gorm:"default:true;index" json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}
