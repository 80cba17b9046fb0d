package repository

import (
	"context"

	"autoshop/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ServiceRepository is the catalog lookup for labor services. FindActive
// variants exclude deactivated items — a deactivated service behaves as
// missing for ledger purposes.
type ServiceRepository interface {
	Create(ctx context.Context, service *model.Service) error
	Update(ctx context.Context, service *model.Service) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Service, error)
	FindActiveByID(ctx context.Context, id uuid.UUID) (*model.Service, error)
	FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Service, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Service, error)
	List(ctx context.Context, page, limit int, activeOnly bool) ([]model.Service, int64, error)
}

type serviceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) ServiceRepository {
	return &serviceRepository{db: db}
}

func (r *serviceRepository) Create(ctx context.Context, service *model.Service) error {
	return GetDB(ctx, r.db).Create(service).Error
}

func (r *serviceRepository) Update(ctx context.Context, service *model.Service) error {
	return GetDB(ctx, r.db).Save(service).Error
}

func (r *serviceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Service{}).Error
}

func (r *serviceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	var service model.Service
	if err := GetDB(ctx, r.db).First(&service, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *serviceRepository) FindActiveByID(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	var service model.Service
	if err := GetDB(ctx, r.db).
		Where("id = ? AND is_active = ?", id, true).
		First(&service).Error; err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *serviceRepository) FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Service, error) {
	var services []model.Service
	if err := GetDB(ctx, r.db).
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

func (r *serviceRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Service, error) {
	var services []model.Service
	if err := GetDB(ctx, r.db).Where("id IN ?", ids).Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

func (r *serviceRepository) List(ctx context.Context, page, limit int, activeOnly bool) ([]model.Service, int64, error) {
	var services []model.Service
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Service{})
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("name asc").Offset(offset).Limit(limit).Find(&services).Error; err != nil {
		return nil, 0, err
	}

	return services, total, nil
}

// SparePartRepository is the catalog lookup for stocked parts, with the same
// active-only semantics as ServiceRepository.
type SparePartRepository interface {
	Create(ctx context.Context, part *model.SparePart) error
	Update(ctx context.Context, part *model.SparePart) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.SparePart, error)
	FindActiveByID(ctx context.Context, id uuid.UUID) (*model.SparePart, error)
	FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]model.SparePart, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.SparePart, error)
	List(ctx context.Context, page, limit int, activeOnly bool) ([]model.SparePart, int64, error)
}

type sparePartRepository struct {
	db *gorm.DB
}

func NewSparePartRepository(db *gorm.DB) SparePartRepository {
	return &sparePartRepository{db: db}
}

func (r *sparePartRepository) Create(ctx context.Context, part *model.SparePart) error {
	return GetDB(ctx, r.db).Create(part).Error
}

func (r *sparePartRepository) Update(ctx context.Context, part *model.SparePart) error {
	return GetDB(ctx, r.db).Save(part).Error
}

func (r *sparePartRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.SparePart{}).Error
}

func (r *sparePartRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.SparePart, error) {
	var part model.SparePart
	if err := GetDB(ctx, r.db).First(&part, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &part, nil
}

func (r *sparePartRepository) FindActiveByID(ctx context.Context, id uuid.UUID) (*model.SparePart, error) {
	var part model.SparePart
	if err := GetDB(ctx, r.db).
		Where("id = ? AND is_active = ?", id, true).
		First(&part).Error; err != nil {
		return nil, err
	}
	return &part, nil
}

func (r *sparePartRepository) FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]model.SparePart, error) {
	var parts []model.SparePart
	if err := GetDB(ctx, r.db).
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&parts).Error; err != nil {
		return nil, err
	}
	return parts, nil
}

func (r *sparePartRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.SparePart, error) {
	var parts []model.SparePart
	if err := GetDB(ctx, r.db).Where("id IN ?", ids).Find(&parts).Error; err != nil {
		return nil, err
	}
	return parts, nil
}

func (r *sparePartRepository) List(ctx context.Context, page, limit int, activeOnly bool) ([]model.SparePart, int64, error) {
	var parts []model.SparePart
	var total int64

	db := GetDB(ctx, r.db).Model(&model.SparePart{})
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("name asc").Offset(offset).Limit(limit).Find(&parts).Error; err != nil {
		return nil, 0, err
	}

	return parts, total, nil
}
