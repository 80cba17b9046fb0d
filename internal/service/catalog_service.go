package service

import (
	"context"
	"encoding/json"
	"errors"

	"autoshop/internal/model"
	"autoshop/internal/repository"
	"autoshop/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DTOs. Prices travel as strings end to end so no float rounding sneaks in.
type CreateCatalogServiceRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	BasePrice   string `json:"base_price" binding:"required"`
	DurationMin *int   `json:"duration_min" binding:"omitempty,min=1"`
}

type UpdateCatalogServiceRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	BasePrice   *string `json:"base_price"`
	DurationMin *int    `json:"duration_min" binding:"omitempty,min=1"`
	IsActive    *bool   `json:"is_active"`
}

type CatalogServiceResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	BasePrice   string    `json:"base_price"`
	DurationMin *int      `json:"duration_min"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   string    `json:"created_at"`
}

type CreateSparePartRequest struct {
	Name          string `json:"name" binding:"required"`
	Article       string `json:"article"`
	Unit          string `json:"unit"`
	Price         string `json:"price" binding:"required"`
	StockQuantity int    `json:"stock_quantity" binding:"omitempty,min=0"`
}

type UpdateSparePartRequest struct {
	Name          *string `json:"name"`
	Article       *string `json:"article"`
	Unit          *string `json:"unit"`
	Price         *string `json:"price"`
	StockQuantity *int    `json:"stock_quantity" binding:"omitempty,min=0"`
	IsActive      *bool   `json:"is_active"`
}

type SparePartResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Article       string    `json:"article"`
	Unit          string    `json:"unit"`
	Price         string    `json:"price"`
	StockQuantity int       `json:"stock_quantity"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     string    `json:"created_at"`
}

// CatalogService manages the two price lists that work order lines snapshot
// from. Deactivation hides an item from new lines without touching the
// frozen prices on existing ones.
type CatalogService interface {
	CreateService(ctx context.Context, actorID string, req CreateCatalogServiceRequest) (*CatalogServiceResponse, error)
	UpdateService(ctx context.Context, actorID, id string, req UpdateCatalogServiceRequest) (*CatalogServiceResponse, error)
	DeleteService(ctx context.Context, actorID, id string) error
	GetService(ctx context.Context, id string) (*CatalogServiceResponse, error)
	ListServices(ctx context.Context, page, limit int, activeOnly bool) ([]CatalogServiceResponse, int64, error)

	CreatePart(ctx context.Context, actorID string, req CreateSparePartRequest) (*SparePartResponse, error)
	UpdatePart(ctx context.Context, actorID, id string, req UpdateSparePartRequest) (*SparePartResponse, error)
	DeletePart(ctx context.Context, actorID, id string) error
	GetPart(ctx context.Context, id string) (*SparePartResponse, error)
	ListParts(ctx context.Context, page, limit int, activeOnly bool) ([]SparePartResponse, int64, error)
}

type catalogService struct {
	serviceRepo repository.ServiceRepository
	partRepo    repository.SparePartRepository
	auditRepo   repository.AuditRepository
}

func NewCatalogService(serviceRepo repository.ServiceRepository, partRepo repository.SparePartRepository, auditRepo repository.AuditRepository) CatalogService {
	return &catalogService{serviceRepo: serviceRepo, partRepo: partRepo, auditRepo: auditRepo}
}

func parsePrice(value string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, apperror.BadRequest("invalid price format")
	}
	if price.IsNegative() {
		return decimal.Zero, apperror.BadRequest("price must not be negative")
	}
	return price, nil
}

func mapServiceToResponse(s *model.Service) *CatalogServiceResponse {
	return &CatalogServiceResponse{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		BasePrice:   s.BasePrice.StringFixed(2),
		DurationMin: s.DurationMin,
		IsActive:    s.IsActive,
		CreatedAt:   formatTime(s.CreatedAt),
	}
}

func mapPartToResponse(p *model.SparePart) *SparePartResponse {
	return &SparePartResponse{
		ID:            p.ID,
		Name:          p.Name,
		Article:       p.Article,
		Unit:          p.Unit,
		Price:         p.Price.StringFixed(2),
		StockQuantity: p.StockQuantity,
		IsActive:      p.IsActive,
		CreatedAt:     formatTime(p.CreatedAt),
	}
}

// --- Services ---

func (s *catalogService) CreateService(ctx context.Context, actorID string, req CreateCatalogServiceRequest) (*CatalogServiceResponse, error) {
	price, err := parsePrice(req.BasePrice)
	if err != nil {
		return nil, err
	}

	item := &model.Service{
		Name:        req.Name,
		Description: req.Description,
		BasePrice:   price,
		DurationMin: req.DurationMin,
		IsActive:    true,
	}

	if err := s.serviceRepo.Create(ctx, item); err != nil {
		return nil, apperror.Internal("Failed to create service", err)
	}

	s.audit(ctx, actorID, model.ActionCreateService, item.ID.String(), item.Name, nil)
	return mapServiceToResponse(item), nil
}

func (s *catalogService) UpdateService(ctx context.Context, actorID, id string, req UpdateCatalogServiceRequest) (*CatalogServiceResponse, error) {
	serviceID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.BadRequest("invalid service id")
	}

	item, err := s.serviceRepo.FindByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Service not found")
		}
		return nil, apperror.Internal("Failed to fetch service", err)
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.BasePrice != nil {
		price, err := parsePrice(*req.BasePrice)
		if err != nil {
			return nil, err
		}
		item.BasePrice = price
	}
	if req.DurationMin != nil {
		item.DurationMin = req.DurationMin
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	if err := s.serviceRepo.Update(ctx, item); err != nil {
		return nil, apperror.Internal("Failed to update service", err)
	}

	s.audit(ctx, actorID, model.ActionUpdateService, item.ID.String(), item.Name, nil)
	return mapServiceToResponse(item), nil
}

func (s *catalogService) DeleteService(ctx context.Context, actorID, id string) error {
	serviceID, err := uuid.Parse(id)
	if err != nil {
		return apperror.BadRequest("invalid service id")
	}

	item, err := s.serviceRepo.FindByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("Service not found")
		}
		return apperror.Internal("Failed to fetch service", err)
	}

	if err := s.serviceRepo.Delete(ctx, serviceID); err != nil {
		return apperror.Internal("Failed to delete service", err)
	}

	s.audit(ctx, actorID, model.ActionDeleteService, serviceID.String(), item.Name, nil)
	return nil
}

func (s *catalogService) GetService(ctx context.Context, id string) (*CatalogServiceResponse, error) {
	serviceID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.BadRequest("invalid service id")
	}

	item, err := s.serviceRepo.FindByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Service not found")
		}
		return nil, apperror.Internal("Failed to fetch service", err)
	}
	return mapServiceToResponse(item), nil
}

func (s *catalogService) ListServices(ctx context.Context, page, limit int, activeOnly bool) ([]CatalogServiceResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	items, total, err := s.serviceRepo.List(ctx, page, limit, activeOnly)
	if err != nil {
		return nil, 0, apperror.Internal("Failed to list services", err)
	}

	result := make([]CatalogServiceResponse, 0, len(items))
	for i := range items {
		result = append(result, *mapServiceToResponse(&items[i]))
	}
	return result, total, nil
}

// --- Spare parts ---

func (s *catalogService) CreatePart(ctx context.Context, actorID string, req CreateSparePartRequest) (*SparePartResponse, error) {
	price, err := parsePrice(req.Price)
	if err != nil {
		return nil, err
	}

	item := &model.SparePart{
		Name:          req.Name,
		Article:       req.Article,
		Unit:          req.Unit,
		Price:         price,
		StockQuantity: req.StockQuantity,
		IsActive:      true,
	}

	if err := s.partRepo.Create(ctx, item); err != nil {
		return nil, apperror.Internal("Failed to create spare part", err)
	}

	s.audit(ctx, actorID, model.ActionCreateSparePart, item.ID.String(), item.Name, nil)
	return mapPartToResponse(item), nil
}

func (s *catalogService) UpdatePart(ctx context.Context, actorID, id string, req UpdateSparePartRequest) (*SparePartResponse, error) {
	partID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.BadRequest("invalid part id")
	}

	item, err := s.partRepo.FindByID(ctx, partID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Spare part not found")
		}
		return nil, apperror.Internal("Failed to fetch spare part", err)
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Article != nil {
		item.Article = *req.Article
	}
	if req.Unit != nil {
		item.Unit = *req.Unit
	}
	if req.Price != nil {
		price, err := parsePrice(*req.Price)
		if err != nil {
			return nil, err
		}
		item.Price = price
	}
	if req.StockQuantity != nil {
		item.StockQuantity = *req.StockQuantity
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	if err := s.partRepo.Update(ctx, item); err != nil {
		return nil, apperror.Internal("Failed to update spare part", err)
	}

	s.audit(ctx, actorID, model.ActionUpdateSparePart, item.ID.String(), item.Name, nil)
	return mapPartToResponse(item), nil
}

func (s *catalogService) DeletePart(ctx context.Context, actorID, id string) error {
	partID, err := uuid.Parse(id)
	if err != nil {
		return apperror.BadRequest("invalid part id")
	}

	item, err := s.partRepo.FindByID(ctx, partID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("Spare part not found")
		}
		return apperror.Internal("Failed to fetch spare part", err)
	}

	if err := s.partRepo.Delete(ctx, partID); err != nil {
		return apperror.Internal("Failed to delete spare part", err)
	}

	s.audit(ctx, actorID, model.ActionDeleteSparePart, partID.String(), item.Name, nil)
	return nil
}

func (s *catalogService) GetPart(ctx context.Context, id string) (*SparePartResponse, error) {
	partID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.BadRequest("invalid part id")
	}

	item, err := s.partRepo.FindByID(ctx, partID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Spare part not found")
		}
		return nil, apperror.Internal("Failed to fetch spare part", err)
	}
	return mapPartToResponse(item), nil
}

func (s *catalogService) ListParts(ctx context.Context, page, limit int, activeOnly bool) ([]SparePartResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	items, total, err := s.partRepo.List(ctx, page, limit, activeOnly)
	if err != nil {
		return nil, 0, apperror.Internal("Failed to list spare parts", err)
	}

	result := make([]SparePartResponse, 0, len(items))
	for i := range items {
		result = append(result, *mapPartToResponse(&items[i]))
	}
	return result, total, nil
}

// audit writes a best-effort trail entry; a failed write never fails the
// catalog operation itself.
func (s *catalogService) audit(ctx context.Context, actorID, action, entityID, entityName string, details map[string]interface{}) {
	var uid *uuid.UUID
	if parsed, err := uuid.Parse(actorID); err == nil {
		uid = &parsed
	}
	payload, _ := json.Marshal(details)
	_ = s.auditRepo.Log(ctx, &model.AuditLog{
		UserID:     uid,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(payload),
	})
}
