package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WorkOrderStatus enum constants
const (
	WorkOrderStatusDraft      = "DRAFT"
	WorkOrderStatusPlanned    = "PLANNED"
	WorkOrderStatusInProgress = "IN_PROGRESS"
	WorkOrderStatusCompleted  = "COMPLETED"
	WorkOrderStatusCancelled  = "CANCELLED"
)

// WorkOrderNumberPrefix is the human-readable sequence prefix, e.g. WO-000001.
const WorkOrderNumberPrefix = "WO-"

// WorkOrder is a billable unit of labor and parts against one vehicle.
// The three cached totals are derived values: they are rebuilt from the
// live line rows inside the same transaction as every line mutation and
// must never be patched incrementally. Invariant: TotalCost equals
// TotalLaborCost plus TotalPartsCost at all times.
type WorkOrder struct {
	ID                  uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Number              string          `gorm:"type:varchar(20);uniqueIndex;not null" json:"number"`
	ClientID            uuid.UUID       `gorm:"type:uuid;not null;index" json:"client_id"`
	Client              *User           `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	VehicleID           uuid.UUID       `gorm:"type:uuid;not null;index" json:"vehicle_id"`
	Vehicle             *Vehicle        `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	RequestID           *uuid.UUID      `gorm:"type:uuid;uniqueIndex" json:"request_id"` // at most one order per request
	Request             *ServiceRequest `gorm:"foreignKey:RequestID" json:"request,omitempty"`
	ResponsibleWorkerID *uuid.UUID      `gorm:"type:uuid;index" json:"responsible_worker_id"`
	ResponsibleWorker   *User           `gorm:"foreignKey:ResponsibleWorkerID" json:"responsible_worker,omitempty"`
	Status              string          `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"` // DRAFT, PLANNED, IN_PROGRESS, COMPLETED, CANCELLED
	PlannedDate         *time.Time      `json:"planned_date"`
	CompletedDate       *time.Time      `gorm:"index" json:"completed_date"` // stamped once, on transition into COMPLETED

	TotalLaborCost decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_labor_cost"`
	TotalPartsCost decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_parts_cost"`
	TotalCost      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_cost"`

	ServiceLines []WorkOrderServiceLine `gorm:"foreignKey:WorkOrderID;constraint:OnDelete:CASCADE" json:"service_lines"`
	PartLines    []WorkOrderPartLine    `gorm:"foreignKey:WorkOrderID;constraint:OnDelete:CASCADE" json:"part_lines"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsEditable reports whether line and detail mutations are still allowed.
func (w WorkOrder) IsEditable() bool {
	return w.Status != WorkOrderStatusCompleted && w.Status != WorkOrderStatusCancelled
}

// WorkOrderServiceLine is a labor line owned by one work order. Price is a
// snapshot of the catalog base price taken when the line was created.
type WorkOrderServiceLine struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	WorkOrderID uuid.UUID       `gorm:"type:uuid;not null;index" json:"work_order_id"`
	ServiceID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"service_id"`
	Service     *Service        `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Quantity    int             `gorm:"not null;default:1" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"price"`
	Total       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total"` // price * quantity
	CreatedAt   time.Time       `json:"created_at"`
}

// WorkOrderPartLine is a spare part line owned by one work order, with the
// same frozen-price semantics as WorkOrderServiceLine.
type WorkOrderPartLine struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	WorkOrderID uuid.UUID       `gorm:"type:uuid;not null;index" json:"work_order_id"`
	PartID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"part_id"`
	Part        *SparePart      `gorm:"foreignKey:PartID" json:"part,omitempty"`
	Quantity    int             `gorm:"not null;default:1" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"price"`
	Total       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total"`
	CreatedAt   time.Time       `json:"created_at"`
}
