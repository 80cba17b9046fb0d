package repository

import (
	"context"
	"time"

	"autoshop/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WorkOrderFilter narrows the staff listing.
type WorkOrderFilter struct {
	Status              string
	ClientID            *uuid.UUID
	VehicleID           *uuid.UUID
	ResponsibleWorkerID *uuid.UUID
}

type WorkOrderRepository interface {
	Create(ctx context.Context, order *model.WorkOrder) error
	Count(ctx context.Context) (int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.WorkOrder, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.WorkOrder, error)
	FindByRequestID(ctx context.Context, requestID uuid.UUID) (*model.WorkOrder, error)
	List(ctx context.Context, filter WorkOrderFilter) ([]model.WorkOrder, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.WorkOrder, error)
	ListCompletedBetween(ctx context.Context, from, to time.Time) ([]model.WorkOrder, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	UpdateTotals(ctx context.Context, id uuid.UUID, labor, parts, total decimal.Decimal) error

	CreateServiceLine(ctx context.Context, line *model.WorkOrderServiceLine) error
	CreatePartLine(ctx context.Context, line *model.WorkOrderPartLine) error
	FindServiceLine(ctx context.Context, rowID uuid.UUID) (*model.WorkOrderServiceLine, error)
	FindPartLine(ctx context.Context, rowID uuid.UUID) (*model.WorkOrderPartLine, error)
	DeleteServiceLine(ctx context.Context, rowID uuid.UUID) error
	DeletePartLine(ctx context.Context, rowID uuid.UUID) error
	DeleteServiceLinesByOrder(ctx context.Context, workOrderID uuid.UUID) error
	DeletePartLinesByOrder(ctx context.Context, workOrderID uuid.UUID) error
	ListServiceLines(ctx context.Context, workOrderID uuid.UUID) ([]model.WorkOrderServiceLine, error)
	ListPartLines(ctx context.Context, workOrderID uuid.UUID) ([]model.WorkOrderPartLine, error)
}

type workOrderRepository struct {
	db *gorm.DB
}

func NewWorkOrderRepository(db *gorm.DB) WorkOrderRepository {
	return &workOrderRepository{db: db}
}

func (r *workOrderRepository) Create(ctx context.Context, order *model.WorkOrder) error {
	return GetDB(ctx, r.db).Create(order).Error
}

func (r *workOrderRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&model.WorkOrder{}).Count(&total).Error
	return total, err
}

func (r *workOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.WorkOrder, error) {
	var order model.WorkOrder
	if err := GetDB(ctx, r.db).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *workOrderRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.WorkOrder, error) {
	var order model.WorkOrder
	if err := withOrderRelations(GetDB(ctx, r.db)).
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *workOrderRepository) FindByRequestID(ctx context.Context, requestID uuid.UUID) (*model.WorkOrder, error) {
	var order model.WorkOrder
	if err := GetDB(ctx, r.db).First(&order, "request_id = ?", requestID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *workOrderRepository) List(ctx context.Context, filter WorkOrderFilter) ([]model.WorkOrder, error) {
	db := withOrderRelations(GetDB(ctx, r.db))

	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.ClientID != nil {
		db = db.Where("client_id = ?", *filter.ClientID)
	}
	if filter.VehicleID != nil {
		db = db.Where("vehicle_id = ?", *filter.VehicleID)
	}
	if filter.ResponsibleWorkerID != nil {
		db = db.Where("responsible_worker_id = ?", *filter.ResponsibleWorkerID)
	}

	var orders []model.WorkOrder
	if err := db.Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *workOrderRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.WorkOrder, error) {
	var orders []model.WorkOrder
	if err := withOrderRelations(GetDB(ctx, r.db)).
		Where("client_id = ?", clientID).
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListCompletedBetween is the report population: COMPLETED orders whose
// completion date falls in [from, to], both bounds inclusive.
func (r *workOrderRepository) ListCompletedBetween(ctx context.Context, from, to time.Time) ([]model.WorkOrder, error) {
	var orders []model.WorkOrder
	if err := withOrderRelations(GetDB(ctx, r.db)).
		Where("status = ?", model.WorkOrderStatusCompleted).
		Where("completed_date >= ? AND completed_date <= ?", from, to).
		Order("completed_date asc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *workOrderRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return GetDB(ctx, r.db).
		Model(&model.WorkOrder{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *workOrderRepository) UpdateTotals(ctx context.Context, id uuid.UUID, labor, parts, total decimal.Decimal) error {
	return GetDB(ctx, r.db).
		Model(&model.WorkOrder{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_labor_cost": labor,
			"total_parts_cost": parts,
			"total_cost":       total,
		}).Error
}

func (r *workOrderRepository) CreateServiceLine(ctx context.Context, line *model.WorkOrderServiceLine) error {
	return GetDB(ctx, r.db).Create(line).Error
}

func (r *workOrderRepository) CreatePartLine(ctx context.Context, line *model.WorkOrderPartLine) error {
	return GetDB(ctx, r.db).Create(line).Error
}

func (r *workOrderRepository) FindServiceLine(ctx context.Context, rowID uuid.UUID) (*model.WorkOrderServiceLine, error) {
	var line model.WorkOrderServiceLine
	if err := GetDB(ctx, r.db).First(&line, "id = ?", rowID).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *workOrderRepository) FindPartLine(ctx context.Context, rowID uuid.UUID) (*model.WorkOrderPartLine, error) {
	var line model.WorkOrderPartLine
	if err := GetDB(ctx, r.db).First(&line, "id = ?", rowID).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *workOrderRepository) DeleteServiceLine(ctx context.Context, rowID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", rowID).Delete(&model.WorkOrderServiceLine{}).Error
}

func (r *workOrderRepository) DeletePartLine(ctx context.Context, rowID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", rowID).Delete(&model.WorkOrderPartLine{}).Error
}

func (r *workOrderRepository) DeleteServiceLinesByOrder(ctx context.Context, workOrderID uuid.UUID) error {
	return GetDB(ctx, r.db).
		Where("work_order_id = ?", workOrderID).
		Delete(&model.WorkOrderServiceLine{}).Error
}

func (r *workOrderRepository) DeletePartLinesByOrder(ctx context.Context, workOrderID uuid.UUID) error {
	return GetDB(ctx, r.db).
		Where("work_order_id = ?", workOrderID).
		Delete(&model.WorkOrderPartLine{}).Error
}

func (r *workOrderRepository) ListServiceLines(ctx context.Context, workOrderID uuid.UUID) ([]model.WorkOrderServiceLine, error) {
	var lines []model.WorkOrderServiceLine
	if err := GetDB(ctx, r.db).
		Where("work_order_id = ?", workOrderID).
		Order("created_at asc").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *workOrderRepository) ListPartLines(ctx context.Context, workOrderID uuid.UUID) ([]model.WorkOrderPartLine, error) {
	var lines []model.WorkOrderPartLine
	if err := GetDB(ctx, r.db).
		Where("work_order_id = ?", workOrderID).
		Order("created_at asc").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func withOrderRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Client").
		Preload("Vehicle").
		Preload("Request").
		Preload("ResponsibleWorker").
		Preload("ServiceLines").
		Preload("ServiceLines.Service").
		Preload("PartLines").
		Preload("PartLines.Part")
}
