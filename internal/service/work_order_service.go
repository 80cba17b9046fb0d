package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"autoshop/internal/model"
	"autoshop/internal/repository"
	ws "autoshop/internal/websocket"
	"autoshop/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateWorkOrderRequest struct {
	RequestID           string `json:"request_id" binding:"required"`
	ResponsibleWorkerID string `json:"responsible_worker_id"`
	// PlannedDate is a literal wall-clock instant ("2006-01-02T15:04");
	// nil inherits the request's desired date, empty string means none.
	PlannedDate *string `json:"planned_date"`
}

type UpdateWorkOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=DRAFT PLANNED IN_PROGRESS COMPLETED CANCELLED"`
}

type AddServiceLineRequest struct {
	ServiceID string `json:"service_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"omitempty,min=1"`
}

type AddPartLineRequest struct {
	PartID   string `json:"part_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"omitempty,min=1"`
}

type ServiceLineInput struct {
	ServiceID string `json:"service_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"omitempty,min=1"`
}

type PartLineInput struct {
	PartID   string `json:"part_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"omitempty,min=1"`
}

// UpdateWorkOrderRequest is the bulk update. Pointer fields distinguish
// "omitted" from "set to empty": a nil slice leaves that line kind alone,
// an empty slice wipes it.
type UpdateWorkOrderRequest struct {
	Status              *string             `json:"status" binding:"omitempty,oneof=DRAFT PLANNED IN_PROGRESS COMPLETED CANCELLED"`
	PlannedDate         *string             `json:"planned_date"`
	ResponsibleWorkerID *string             `json:"responsible_worker_id"`
	Services            *[]ServiceLineInput `json:"services" binding:"omitempty,dive"`
	Parts               *[]PartLineInput    `json:"parts" binding:"omitempty,dive"`
}

type WorkOrderFilters struct {
	Status              string
	ClientID            string
	VehicleID           string
	ResponsibleWorkerID string
}

type ServiceLineResponse struct {
	ID        string `json:"id"`
	ServiceID string `json:"service_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
	Total     string `json:"total"`
}

type PartLineResponse struct {
	ID       string `json:"id"`
	PartID   string `json:"part_id"`
	Name     string `json:"name"`
	Article  string `json:"article,omitempty"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
	Total    string `json:"total"`
}

type RequestSummary struct {
	ID          string  `json:"id"`
	Status      string  `json:"status"`
	DesiredDate *string `json:"desired_date"`
	CreatedAt   string  `json:"created_at"`
}

type WorkOrderResponse struct {
	ID                  string                `json:"id"`
	Number              string                `json:"number"`
	Status              string                `json:"status"`
	ClientID            string                `json:"client_id"`
	Client              *UserSummary          `json:"client,omitempty"`
	VehicleID           string                `json:"vehicle_id"`
	Vehicle             *VehicleSummary       `json:"vehicle,omitempty"`
	RequestID           *string               `json:"request_id"`
	Request             *RequestSummary       `json:"request,omitempty"`
	ResponsibleWorkerID *string               `json:"responsible_worker_id"`
	ResponsibleWorker   *UserSummary          `json:"responsible_worker,omitempty"`
	PlannedDate         *string               `json:"planned_date"`
	CompletedDate       *string               `json:"completed_date"`
	TotalLaborCost      string                `json:"total_labor_cost"`
	TotalPartsCost      string                `json:"total_parts_cost"`
	TotalCost           string                `json:"total_cost"`
	Services            []ServiceLineResponse `json:"services"`
	Parts               []PartLineResponse    `json:"parts"`
	CreatedAt           string                `json:"created_at"`
}

// --- Interface ---

type WorkOrderService interface {
	CreateFromRequest(ctx context.Context, actorID string, req CreateWorkOrderRequest) (WorkOrderResponse, error)
	GetAll(ctx context.Context, filters WorkOrderFilters) ([]WorkOrderResponse, error)
	GetMyWorkOrders(ctx context.Context, clientID string) ([]WorkOrderResponse, error)
	GetByID(ctx context.Context, id string) (WorkOrderResponse, error)
	UpdateStatus(ctx context.Context, actorID, id string, req UpdateWorkOrderStatusRequest) (WorkOrderResponse, error)
	UpdateWorkOrder(ctx context.Context, actorID, id string, req UpdateWorkOrderRequest) (WorkOrderResponse, error)
	AddServiceLine(ctx context.Context, actorID, workOrderID string, req AddServiceLineRequest) (WorkOrderResponse, error)
	DeleteServiceLine(ctx context.Context, actorID, workOrderID, rowID string) (WorkOrderResponse, error)
	AddPartLine(ctx context.Context, actorID, workOrderID string, req AddPartLineRequest) (WorkOrderResponse, error)
	DeletePartLine(ctx context.Context, actorID, workOrderID, rowID string) (WorkOrderResponse, error)
}

type workOrderService struct {
	orderRepo   repository.WorkOrderRepository
	requestRepo repository.ServiceRequestRepository
	userRepo    repository.UserRepository
	serviceRepo repository.ServiceRepository
	partRepo    repository.SparePartRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	hub         *ws.Hub
}

func NewWorkOrderService(
	orderRepo repository.WorkOrderRepository,
	requestRepo repository.ServiceRequestRepository,
	userRepo repository.UserRepository,
	serviceRepo repository.ServiceRepository,
	partRepo repository.SparePartRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) WorkOrderService {
	return &workOrderService{
		orderRepo:   orderRepo,
		requestRepo: requestRepo,
		userRepo:    userRepo,
		serviceRepo: serviceRepo,
		partRepo:    partRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		hub:         hub,
	}
}

// numberRetries bounds the unique-constraint retry loop of the sequence
// number generator under concurrent creation.
const numberRetries = 5

// --- Lifecycle ---

func (s *workOrderService) CreateFromRequest(ctx context.Context, actorID string, req CreateWorkOrderRequest) (WorkOrderResponse, error) {
	requestID, err := uuid.Parse(req.RequestID)
	if err != nil {
		return WorkOrderResponse{}, apperror.BadRequest("invalid request id")
	}

	request, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return WorkOrderResponse{}, apperror.NotFound("Service request not found")
		}
		return WorkOrderResponse{}, apperror.Internal("Failed to load service request", err)
	}

	if request.Status == model.RequestStatusCancelled {
		return WorkOrderResponse{}, apperror.BadRequest("Cannot create work order from cancelled request")
	}

	if _, err := s.orderRepo.FindByRequestID(ctx, requestID); err == nil {
		return WorkOrderResponse{}, apperror.BadRequest("Work order already exists for this request")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return WorkOrderResponse{}, apperror.Internal("Failed to check existing work order", err)
	}

	var workerID *uuid.UUID
	if req.ResponsibleWorkerID != "" {
		id, err := s.resolveWorker(ctx, req.ResponsibleWorkerID)
		if err != nil {
			return WorkOrderResponse{}, err
		}
		workerID = id
	}

	var plannedDate *time.Time
	if req.PlannedDate != nil {
		if *req.PlannedDate != "" {
			parsed, err := parseLocalDateTime(*req.PlannedDate)
			if err != nil {
				return WorkOrderResponse{}, apperror.BadRequest("Invalid planned date format")
			}
			plannedDate = &parsed
		}
	} else {
		plannedDate = request.DesiredDate
	}

	order := model.WorkOrder{
		ClientID:            request.ClientID,
		VehicleID:           request.VehicleID,
		RequestID:           &request.ID,
		ResponsibleWorkerID: workerID,
		Status:              model.WorkOrderStatusDraft,
		PlannedDate:         plannedDate,
		TotalLaborCost:      decimal.Zero,
		TotalPartsCost:      decimal.Zero,
		TotalCost:           decimal.Zero,
	}

	count, err := s.orderRepo.Count(ctx)
	if err != nil {
		return WorkOrderResponse{}, apperror.Internal("Failed to create work order", err)
	}

	// Count-then-format is racy under concurrent creation; the unique index
	// on number resolves collisions. Each attempt gets its own transaction:
	// postgres aborts a transaction after a constraint violation, so a retry
	// inside the same one would fail no matter the candidate number.
	var createErr error
	for attempt := 0; attempt < numberRetries; attempt++ {
		order.Number = fmt.Sprintf("%s%06d", model.WorkOrderNumberPrefix, count+1+int64(attempt))
		createErr = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			if err := s.orderRepo.Create(txCtx, &order); err != nil {
				return err
			}
			return s.writeAudit(txCtx, actorID, model.ActionCreateWorkOrder, order.ID.String(), order.Number, map[string]interface{}{
				"request_id": request.ID.String(),
			})
		})
		if !errors.Is(createErr, gorm.ErrDuplicatedKey) {
			break
		}
	}
	if createErr != nil {
		return WorkOrderResponse{}, apperror.Internal("Failed to create work order", createErr)
	}

	s.notifyChanged(&order)
	return s.reload(ctx, order.ID)
}

func (s *workOrderService) GetAll(ctx context.Context, filters WorkOrderFilters) ([]WorkOrderResponse, error) {
	repoFilter := repository.WorkOrderFilter{Status: filters.Status}

	var err error
	if repoFilter.ClientID, err = parseOptionalID(filters.ClientID); err != nil {
		return nil, apperror.BadRequest("invalid client id")
	}
	if repoFilter.VehicleID, err = parseOptionalID(filters.VehicleID); err != nil {
		return nil, apperror.BadRequest("invalid vehicle id")
	}
	if repoFilter.ResponsibleWorkerID, err = parseOptionalID(filters.ResponsibleWorkerID); err != nil {
		return nil, apperror.BadRequest("invalid responsible worker id")
	}

	orders, err := s.orderRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, apperror.Internal("Failed to fetch work orders", err)
	}

	result := make([]WorkOrderResponse, 0, len(orders))
	for i := range orders {
		result = append(result, toWorkOrderResponse(&orders[i]))
	}
	return result, nil
}

func (s *workOrderService) GetMyWorkOrders(ctx context.Context, clientID string) ([]WorkOrderResponse, error) {
	id, err := uuid.Parse(clientID)
	if err != nil {
		return nil, apperror.BadRequest("invalid client id")
	}

	orders, err := s.orderRepo.ListByClient(ctx, id)
	if err != nil {
		return nil, apperror.Internal("Failed to fetch work orders", err)
	}

	result := make([]WorkOrderResponse, 0, len(orders))
	for i := range orders {
		result = append(result, toWorkOrderResponse(&orders[i]))
	}
	return result, nil
}

func (s *workOrderService) GetByID(ctx context.Context, id string) (WorkOrderResponse, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return WorkOrderResponse{}, apperror.BadRequest("invalid work order id")
	}

	order, err := s.orderRepo.FindByIDWithRelations(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return WorkOrderResponse{}, apperror.NotFound("Work order not found")
		}
		return WorkOrderResponse{}, apperror.Internal("Failed to fetch work order", err)
	}

	return toWorkOrderResponse(order), nil
}

// UpdateStatus sets the status; the transition table is deliberately loose.
// Only the completion date carries a side effect: it is stamped on the first
// transition into COMPLETED and never touched again.
func (s *workOrderService) UpdateStatus(ctx context.Context, actorID, id string, req UpdateWorkOrderStatusRequest) (WorkOrderResponse, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return WorkOrderResponse{}, apperror.BadRequest("invalid work order id")
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return WorkOrderResponse{}, apperror.NotFound("Work order not found")
		}
		return WorkOrderResponse{}, apperror.Internal("Failed to fetch work order", err)
	}

	fields := map[string]interface{}{"status": req.Status}
	if req.Status == model.WorkOrderStatusCompleted && order.CompletedDate == nil {
		fields["completed_date"] = time.Now()
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.orderRepo.UpdateFields(txCtx, orderID, fields); err != nil {
			return err
		}
		return s.writeAudit(txCtx, actorID, model.ActionUpdateOrderStatus, order.ID.String(), order.Number, map[string]interface{}{
			"from": order.Status,
			"to":   req.Status,
		})
	})
	if err != nil {
		return WorkOrderResponse{}, apperror.Internal("Failed to update work order", err)
	}

	order.Status = req.Status
	s.notifyChanged(order)
	return s.reload(ctx, orderID)
}

// --- Ledger ---

func (s *workOrderService) AddServiceLine(ctx context.Context, actorID, workOrderID string, req AddServiceLineRequest) (WorkOrderResponse, error) {
	orderID, err := s.ensureEditable(ctx, workOrderID)
	if err != nil {
		return WorkOrderResponse{}, err
	}

	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return WorkOrderResponse{}, apperror.BadRequest("invalid service id")
	}

	catalogService, err := s.serviceRepo.FindActiveByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return WorkOrderResponse{}, apperror.NotFound("Service not found")
		}
		return WorkOrderResponse{}, apperror.Internal("Failed to resolve service", err)
	}

	quantity, err := normalizeQuantity(req.Quantity)
	if err != nil {
		return WorkOrderResponse{}, err
	}

	price := catalogService.BasePrice
	line := model.WorkOrderServiceLine{
		WorkOrderID: orderID,
		ServiceID:   catalogService.ID,
		Quantity:    quantity,
		Price:       price,
		Total:       price.Mul(decimal.NewFromInt(int64(quantity))),
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.orderRepo.CreateServiceLine(txCtx, &line); err != nil {
			return err
		}
		if err := s.recalculateTotals(txCtx, orderID); err != nil {
			return err
		}
		return s.writeAudit(txCtx, actorID, model.ActionAddOrderService, orderID.String(), catalogService.Name, map[string]interface{}{
			"service_id": catalogService.ID.String(),
			"quantity":   quantity,
			"price":      price.StringFixed(2),
		})
	})
	if err != nil {
		return WorkOrderResponse{}, apperror.Internal("Failed to add service to work order", err)
	}

	return s.reloadAndNotify(ctx, orderID)
}

func (s *workOrderService) DeleteServiceLine(ctx context.Context, actorID, workOrderID, rowID string) (WorkOrderResponse, error) {
	orderID, err := s.ensureEditable(ctx, workOrderID)
	if err != nil {
		return WorkOrderResponse{}, err
	}

	lineID, err := uuid.Parse(rowID)
	if err != nil {
		return WorkOrderResponse{}, apperror.BadRequest("invalid row id")
	}

	line, err := s.orderRepo.FindServiceLine(ctx, lineID)
	if err != nil || line.WorkOrderID != orderID {
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return WorkOrderResponse{}, apperror.Internal("Failed to load service position", err)
		}
		return WorkOrderResponse{}, apperror.NotFound("Work order service position not found")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.orderRepo.DeleteServiceLine(txCtx, lineID); err != nil {
			return err
		}
		if err := s.recalculateTotals(txCtx, orderID); err != nil {
			return err
		}
		return s.writeAudit(txCtx, actorID, model.ActionRemoveOrderService, orderID.String(), "", map[string]interface{}{
			"row_id": lineID.String(),
		})
	})
	if err != nil {
		return WorkOrderResponse{}, apperror.Internal("Failed to delete service from work order", err)
	}

	return s.reloadAndNotify(ctx, orderID)
}

func (s *workOrderService) AddPartLine(ctx context.Context, actorID, workOrderID string, req AddPartLineRequest) (WorkOrderResponse, error) {
	orderID, err := s.ensureEditable(ctx, workOrderID)
	if err != nil {
		return WorkOrderResponse{}, err
	}

	partID, err := uuid.Parse(req.PartID)
	if err != nil {
		return WorkOrderResponse{}, apperror.BadRequest("invalid part id")
	}

	part, err := s.partRepo.FindActiveByID(ctx, partID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return WorkOrderResponse{}, apperror.NotFound("Spare part not found")
		}
		return WorkOrderResponse{}, apperror.Internal("Failed to resolve spare part", err)
	}

	quantity, err := normalizeQuantity(req.Quantity)
	if err != nil {
		return WorkOrderResponse{}, err
	}

	price := part.Price
	line := model.WorkOrderPartLine{
		WorkOrderID: orderID,
		PartID:      part.ID,
		Quantity:    quantity,
		Price:       price,
		Total:       price.Mul(decimal.NewFromInt(int64(quantity))),
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.orderRepo.CreatePartLine(txCtx, &line); err != nil {
			return err
		}
		if err := s.recalculateTotals(txCtx, orderID); err != nil {
			return err
		}
		return s.writeAudit(txCtx, actorID, model.ActionAddOrderPart, orderID.String(), part.Name, map[string]interface{}{
			"part_id":  part.ID.String(),
			"quantity": quantity,
			"price":    price.StringFixed(2),
		})
	})
	if err != nil {
		return WorkOrderResponse{}, apperror.Internal("Failed to add part to work order", err)
	}

	return s.reloadAndNotify(ctx, orderID)
}

func (s *workOrderService) DeletePartLine(ctx context.Context, actorID, workOrderID, rowID string) (WorkOrderResponse, error) {
	orderID, err := s.ensureEditable(ctx, workOrderID)
	if err != nil {
		return WorkOrderResponse{}, err
	}

	lineID, err := uuid.Parse(rowID)
	if err != nil {
		return WorkOrderResponse{}, apperror.BadRequest("invalid row id")
	}

	line, err := s.orderRepo.FindPartLine(ctx, lineID)
	if err != nil || line.WorkOrderID != orderID {
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return WorkOrderResponse{}, apperror.Internal("Failed to load part position", err)
		}
		return WorkOrderResponse{}, apperror.NotFound("Work order part position not found")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.orderRepo.DeletePartLine(txCtx, lineID); err != nil {
			return err
		}
		if err := s.recalculateTotals(txCtx, orderID); err != nil {
			return err
		}
		return s.writeAudit(txCtx, actorID, model.ActionRemoveOrderPart, orderID.String(), "", map[string]interface{}{
			"row_id": lineID.String(),
		})
	})
	if err != nil {
		return WorkOrderResponse{}, apperror.Internal("Failed to delete part from work order", err)
	}

	return s.reloadAndNotify(ctx, orderID)
}

// UpdateWorkOrder is the bulk path: details plus optional full replacement
// of the service/part line sets. Price resolution happens up front and is
// all-or-nothing; the delete-reinsert-recompute runs in one transaction so a
// failure partway never leaves an order with deleted but unreplaced lines.
func (s *workOrderService) UpdateWorkOrder(ctx context.Context, actorID, id string, req UpdateWorkOrderRequest) (WorkOrderResponse, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return WorkOrderResponse{}, apperror.BadRequest("invalid work order id")
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return WorkOrderResponse{}, apperror.NotFound("Work order not found")
		}
		return WorkOrderResponse{}, apperror.Internal("Failed to fetch work order", err)
	}

	hasEditableChanges := req.PlannedDate != nil ||
		req.ResponsibleWorkerID != nil ||
		req.Services != nil ||
		req.Parts != nil

	if hasEditableChanges && !order.IsEditable() {
		return WorkOrderResponse{}, apperror.BadRequest("Work order is not editable")
	}

	fields := map[string]interface{}{}

	if req.PlannedDate != nil {
		if *req.PlannedDate == "" {
			fields["planned_date"] = nil
		} else {
			parsed, err := parseLocalDateTime(*req.PlannedDate)
			if err != nil {
				return WorkOrderResponse{}, apperror.BadRequest("Invalid planned date format")
			}
			fields["planned_date"] = parsed
		}
	}

	if req.ResponsibleWorkerID != nil {
		if *req.ResponsibleWorkerID == "" {
			fields["responsible_worker_id"] = nil
		} else {
			workerID, err := s.resolveWorker(ctx, *req.ResponsibleWorkerID)
			if err != nil {
				return WorkOrderResponse{}, err
			}
			fields["responsible_worker_id"] = *workerID
		}
	}

	if req.Status != nil {
		fields["status"] = *req.Status
		if *req.Status == model.WorkOrderStatusCompleted && order.CompletedDate == nil {
			fields["completed_date"] = time.Now()
		}
	}

	if len(fields) == 0 && req.Services == nil && req.Parts == nil {
		return WorkOrderResponse{}, apperror.BadRequest("No fields to update")
	}

	// Resolve all referenced catalog prices before touching any line.
	var servicePrices map[uuid.UUID]resolvedService
	if req.Services != nil && len(*req.Services) > 0 {
		servicePrices, err = s.resolveServicePrices(ctx, *req.Services)
		if err != nil {
			return WorkOrderResponse{}, err
		}
	}

	var partPrices map[uuid.UUID]resolvedPart
	if req.Parts != nil && len(*req.Parts) > 0 {
		partPrices, err = s.resolvePartPrices(ctx, *req.Parts)
		if err != nil {
			return WorkOrderResponse{}, err
		}
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if req.Services != nil {
			if err := s.orderRepo.DeleteServiceLinesByOrder(txCtx, orderID); err != nil {
				return err
			}
			for _, input := range *req.Services {
				serviceID, _ := uuid.Parse(input.ServiceID)
				resolved := servicePrices[serviceID]
				quantity, err := normalizeQuantity(input.Quantity)
				if err != nil {
					return err
				}
				line := model.WorkOrderServiceLine{
					WorkOrderID: orderID,
					ServiceID:   serviceID,
					Quantity:    quantity,
					Price:       resolved.price,
					Total:       resolved.price.Mul(decimal.NewFromInt(int64(quantity))),
				}
				if err := s.orderRepo.CreateServiceLine(txCtx, &line); err != nil {
					return err
				}
			}
		}

		if req.Parts != nil {
			if err := s.orderRepo.DeletePartLinesByOrder(txCtx, orderID); err != nil {
				return err
			}
			for _, input := range *req.Parts {
				partID, _ := uuid.Parse(input.PartID)
				resolved := partPrices[partID]
				quantity, err := normalizeQuantity(input.Quantity)
				if err != nil {
					return err
				}
				line := model.WorkOrderPartLine{
					WorkOrderID: orderID,
					PartID:      partID,
					Quantity:    quantity,
					Price:       resolved.price,
					Total:       resolved.price.Mul(decimal.NewFromInt(int64(quantity))),
				}
				if err := s.orderRepo.CreatePartLine(txCtx, &line); err != nil {
					return err
				}
			}
		}

		if len(fields) > 0 {
			if err := s.orderRepo.UpdateFields(txCtx, orderID, fields); err != nil {
				return err
			}
		}

		if req.Services != nil || req.Parts != nil {
			if err := s.recalculateTotals(txCtx, orderID); err != nil {
				return err
			}
		}

		return s.writeAudit(txCtx, actorID, model.ActionUpdateWorkOrder, order.ID.String(), order.Number, map[string]interface{}{
			"services_replaced": req.Services != nil,
			"parts_replaced":    req.Parts != nil,
		})
	})
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return WorkOrderResponse{}, err
		}
		return WorkOrderResponse{}, apperror.Internal("Failed to update work order details", err)
	}

	return s.reloadAndNotify(ctx, orderID)
}

// --- helpers ---

// recalculateTotals rebuilds the three cached totals from the live line
// rows. Always rebuilt in full inside the caller's transaction — never an
// incremental adjustment — so out-of-band line changes can't drift totals.
func (s *workOrderService) recalculateTotals(ctx context.Context, orderID uuid.UUID) error {
	serviceLines, err := s.orderRepo.ListServiceLines(ctx, orderID)
	if err != nil {
		return err
	}
	partLines, err := s.orderRepo.ListPartLines(ctx, orderID)
	if err != nil {
		return err
	}

	labor := decimal.Zero
	for _, line := range serviceLines {
		labor = labor.Add(line.Total)
	}

	parts := decimal.Zero
	for _, line := range partLines {
		parts = parts.Add(line.Total)
	}

	return s.orderRepo.UpdateTotals(ctx, orderID, labor, parts, labor.Add(parts))
}

// ensureEditable resolves the order id and rejects mutations on COMPLETED
// and CANCELLED orders.
func (s *workOrderService) ensureEditable(ctx context.Context, workOrderID string) (uuid.UUID, error) {
	orderID, err := uuid.Parse(workOrderID)
	if err != nil {
		return uuid.Nil, apperror.BadRequest("invalid work order id")
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, apperror.NotFound("Work order not found")
		}
		return uuid.Nil, apperror.Internal("Failed to fetch work order", err)
	}

	if !order.IsEditable() {
		return uuid.Nil, apperror.BadRequest("Work order is not editable")
	}

	return orderID, nil
}

func (s *workOrderService) resolveWorker(ctx context.Context, id string) (*uuid.UUID, error) {
	workerID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.BadRequest("invalid responsible worker id")
	}

	worker, err := s.userRepo.FindByID(ctx, workerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Responsible worker does not exist")
		}
		return nil, apperror.Internal("Failed to resolve responsible worker", err)
	}

	if !model.IsStaffRole(worker.Role) {
		return nil, apperror.BadRequest("Responsible worker must be an Admin or Worker")
	}

	return &workerID, nil
}

type resolvedService struct {
	price decimal.Decimal
}

type resolvedPart struct {
	price decimal.Decimal
}

// resolveServicePrices loads a price snapshot for every referenced service;
// any missing or inactive id fails the whole batch.
func (s *workOrderService) resolveServicePrices(ctx context.Context, inputs []ServiceLineInput) (map[uuid.UUID]resolvedService, error) {
	ids, err := uniqueServiceIDs(inputs)
	if err != nil {
		return nil, err
	}

	services, err := s.serviceRepo.FindActiveByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Internal("Failed to resolve services", err)
	}
	if len(services) != len(ids) {
		return nil, apperror.NotFound("One or more services not found")
	}

	prices := make(map[uuid.UUID]resolvedService, len(services))
	for _, item := range services {
		prices[item.ID] = resolvedService{price: item.BasePrice}
	}
	return prices, nil
}

func (s *workOrderService) resolvePartPrices(ctx context.Context, inputs []PartLineInput) (map[uuid.UUID]resolvedPart, error) {
	ids := make([]uuid.UUID, 0, len(inputs))
	seen := make(map[uuid.UUID]bool, len(inputs))
	for _, input := range inputs {
		id, err := uuid.Parse(input.PartID)
		if err != nil {
			return nil, apperror.BadRequest("invalid part id")
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	parts, err := s.partRepo.FindActiveByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Internal("Failed to resolve spare parts", err)
	}
	if len(parts) != len(ids) {
		return nil, apperror.NotFound("One or more spare parts not found")
	}

	prices := make(map[uuid.UUID]resolvedPart, len(parts))
	for _, item := range parts {
		prices[item.ID] = resolvedPart{price: item.Price}
	}
	return prices, nil
}

func uniqueServiceIDs(inputs []ServiceLineInput) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(inputs))
	seen := make(map[uuid.UUID]bool, len(inputs))
	for _, input := range inputs {
		id, err := uuid.Parse(input.ServiceID)
		if err != nil {
			return nil, apperror.BadRequest("invalid service id")
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// normalizeQuantity applies the quantity-defaults-to-1 rule. A negative
// value reaching this layer means upstream validation was bypassed; that is
// a programming error, not client input.
func normalizeQuantity(quantity int) (int, error) {
	if quantity == 0 {
		return 1, nil
	}
	if quantity < 0 {
		return 0, apperror.Internal("invalid line quantity", nil)
	}
	return quantity, nil
}

// parseLocalDateTime takes the value exactly as entered, as a wall-clock
// instant, without timezone shifting.
func parseLocalDateTime(input string) (time.Time, error) {
	layouts := []string{
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02",
		time.RFC3339,
	}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, input)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func parseOptionalID(value string) (*uuid.UUID, error) {
	if value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (s *workOrderService) writeAudit(ctx context.Context, actorID, action, entityID, entityName string, details map[string]interface{}) error {
	var uid *uuid.UUID
	if parsed, err := uuid.Parse(actorID); err == nil {
		uid = &parsed
	}

	payload, _ := json.Marshal(details)
	return s.auditRepo.Log(ctx, &model.AuditLog{
		UserID:     uid,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(payload),
	})
}

func (s *workOrderService) reload(ctx context.Context, orderID uuid.UUID) (WorkOrderResponse, error) {
	order, err := s.orderRepo.FindByIDWithRelations(ctx, orderID)
	if err != nil {
		return WorkOrderResponse{}, apperror.Internal("Failed to reload work order", err)
	}
	return toWorkOrderResponse(order), nil
}

func (s *workOrderService) reloadAndNotify(ctx context.Context, orderID uuid.UUID) (WorkOrderResponse, error) {
	order, err := s.orderRepo.FindByIDWithRelations(ctx, orderID)
	if err != nil {
		return WorkOrderResponse{}, apperror.Internal("Failed to reload work order", err)
	}
	s.notifyChanged(order)
	return toWorkOrderResponse(order), nil
}

// notifyChanged emits the work-order-changed signal consumed by external
// request-status synchronization (e.g. marking the request CONFIRMED).
func (s *workOrderService) notifyChanged(order *model.WorkOrder) {
	if s.hub == nil {
		return
	}
	requestID := ""
	if order.RequestID != nil {
		requestID = order.RequestID.String()
	}
	s.hub.BroadcastEvent(ws.EventWorkOrderChanged, map[string]interface{}{
		"id":         order.ID.String(),
		"number":     order.Number,
		"status":     order.Status,
		"request_id": requestID,
	})
}

// --- Mapping ---

func toWorkOrderResponse(order *model.WorkOrder) WorkOrderResponse {
	resp := WorkOrderResponse{
		ID:             order.ID.String(),
		Number:         order.Number,
		Status:         order.Status,
		ClientID:       order.ClientID.String(),
		Client:         toUserSummary(order.Client),
		VehicleID:      order.VehicleID.String(),
		Vehicle:        toVehicleSummary(order.Vehicle),
		PlannedDate:    formatTimePtr(order.PlannedDate),
		CompletedDate:  formatTimePtr(order.CompletedDate),
		TotalLaborCost: order.TotalLaborCost.StringFixed(2),
		TotalPartsCost: order.TotalPartsCost.StringFixed(2),
		TotalCost:      order.TotalCost.StringFixed(2),
		CreatedAt:      formatTime(order.CreatedAt),
	}

	if order.RequestID != nil {
		id := order.RequestID.String()
		resp.RequestID = &id
	}
	if order.Request != nil {
		resp.Request = &RequestSummary{
			ID:          order.Request.ID.String(),
			Status:      order.Request.Status,
			DesiredDate: formatTimePtr(order.Request.DesiredDate),
			CreatedAt:   formatTime(order.Request.CreatedAt),
		}
	}
	if order.ResponsibleWorkerID != nil {
		id := order.ResponsibleWorkerID.String()
		resp.ResponsibleWorkerID = &id
	}
	resp.ResponsibleWorker = toUserSummary(order.ResponsibleWorker)

	resp.Services = make([]ServiceLineResponse, 0, len(order.ServiceLines))
	for _, line := range order.ServiceLines {
		item := ServiceLineResponse{
			ID:        line.ID.String(),
			ServiceID: line.ServiceID.String(),
			Quantity:  line.Quantity,
			Price:     line.Price.StringFixed(2),
			Total:     line.Total.StringFixed(2),
		}
		if line.Service != nil {
			item.Name = line.Service.Name
		}
		resp.Services = append(resp.Services, item)
	}

	resp.Parts = make([]PartLineResponse, 0, len(order.PartLines))
	for _, line := range order.PartLines {
		item := PartLineResponse{
			ID:       line.ID.String(),
			PartID:   line.PartID.String(),
			Quantity: line.Quantity,
			Price:    line.Price.StringFixed(2),
			Total:    line.Total.StringFixed(2),
		}
		if line.Part != nil {
			item.Name = line.Part.Name
			item.Article = line.Part.Article
		}
		resp.Parts = append(resp.Parts, item)
	}

	return resp
}
