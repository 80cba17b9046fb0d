package repository

import (
	"context"
	"time"

	"autoshop/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ServiceRequestFilter narrows the admin listing.
type ServiceRequestFilter struct {
	Status   string
	ClientID *uuid.UUID
	FromDate *time.Time // desired date lower bound
	ToDate   *time.Time // desired date upper bound
}

type ServiceRequestRepository interface {
	Create(ctx context.Context, request *model.ServiceRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error)
	List(ctx context.Context, filter ServiceRequestFilter) ([]model.ServiceRequest, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.ServiceRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
	ListCreatedBetween(ctx context.Context, from, to time.Time) ([]model.ServiceRequest, error)
}

type serviceRequestRepository struct {
	db *gorm.DB
}

func NewServiceRequestRepository(db *gorm.DB) ServiceRequestRepository {
	return &serviceRequestRepository{db: db}
}

func (r *serviceRequestRepository) Create(ctx context.Context, request *model.ServiceRequest) error {
	return GetDB(ctx, r.db).Create(request).Error
}

func (r *serviceRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error) {
	var request model.ServiceRequest
	if err := GetDB(ctx, r.db).First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *serviceRequestRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error) {
	var request model.ServiceRequest
	if err := GetDB(ctx, r.db).
		Preload("Client").
		Preload("Vehicle").
		Preload("Service").
		First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *serviceRequestRepository) List(ctx context.Context, filter ServiceRequestFilter) ([]model.ServiceRequest, error) {
	db := GetDB(ctx, r.db).
		Preload("Client").
		Preload("Vehicle").
		Preload("Service")

	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.ClientID != nil {
		db = db.Where("client_id = ?", *filter.ClientID)
	}
	if filter.FromDate != nil {
		db = db.Where("desired_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		db = db.Where("desired_date <= ?", *filter.ToDate)
	}

	var requests []model.ServiceRequest
	if err := db.Order("created_at desc").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *serviceRequestRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.ServiceRequest, error) {
	var requests []model.ServiceRequest
	if err := GetDB(ctx, r.db).
		Preload("Vehicle").
		Preload("Service").
		Where("client_id = ?", clientID).
		Order("created_at desc").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *serviceRequestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return GetDB(ctx, r.db).
		Model(&model.ServiceRequest{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *serviceRequestRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).
		Model(&model.ServiceRequest{}).
		Where("created_at >= ? AND created_at <= ?", from, to).
		Count(&total).Error
	return total, err
}

func (r *serviceRequestRepository) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]model.ServiceRequest, error) {
	var requests []model.ServiceRequest
	if err := GetDB(ctx, r.db).
		Preload("Client").
		Preload("Vehicle").
		Where("created_at >= ? AND created_at <= ?", from, to).
		Order("created_at asc").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}
