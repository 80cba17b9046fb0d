package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateWorkOrder      = "CREATE_WORK_ORDER"
	ActionUpdateWorkOrder      = "UPDATE_WORK_ORDER"
	ActionUpdateOrderStatus    = "UPDATE_WORK_ORDER_STATUS"
	ActionAddOrderService      = "ADD_WORK_ORDER_SERVICE"
	ActionRemoveOrderService   = "REMOVE_WORK_ORDER_SERVICE"
	ActionAddOrderPart         = "ADD_WORK_ORDER_PART"
	ActionRemoveOrderPart      = "REMOVE_WORK_ORDER_PART"
	ActionCreateService        = "CREATE_SERVICE"
	ActionUpdateService        = "UPDATE_SERVICE"
	ActionDeleteService        = "DELETE_SERVICE"
	ActionCreateSparePart      = "CREATE_SPARE_PART"
	ActionUpdateSparePart      = "UPDATE_SPARE_PART"
	ActionDeleteSparePart      = "DELETE_SPARE_PART"
	ActionUpdateRequestStatus  = "UPDATE_REQUEST_STATUS"
	ActionCancelServiceRequest = "CANCEL_SERVICE_REQUEST"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated job
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/number)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
