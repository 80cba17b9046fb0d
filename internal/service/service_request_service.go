package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"autoshop/internal/model"
	"autoshop/internal/repository"
	ws "autoshop/internal/websocket"
	"autoshop/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateServiceRequestRequest struct {
	VehicleID   string `json:"vehicle_id" binding:"required"`
	ServiceID   string `json:"service_id"`
	DesiredDate string `json:"desired_date"`
	Comment     string `json:"comment"`
}

type UpdateRequestStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=NEW CONFIRMED CANCELLED COMPLETED"`
}

type ServiceRequestFilters struct {
	Status   string
	ClientID string
	FromDate string
	ToDate   string
}

type ServiceRequestResponse struct {
	ID          string          `json:"id"`
	ClientID    string          `json:"client_id"`
	Client      *UserSummary    `json:"client,omitempty"`
	VehicleID   string          `json:"vehicle_id"`
	Vehicle     *VehicleSummary `json:"vehicle,omitempty"`
	ServiceID   *string         `json:"service_id"`
	ServiceName string          `json:"service_name,omitempty"`
	DesiredDate *string         `json:"desired_date"`
	Comment     string          `json:"comment"`
	Status      string          `json:"status"`
	CreatedAt   string          `json:"created_at"`
}

type ServiceRequestService interface {
	Create(ctx context.Context, clientID string, req CreateServiceRequestRequest) (*ServiceRequestResponse, error)
	GetByID(ctx context.Context, actorID, actorRole, id string) (*ServiceRequestResponse, error)
	List(ctx context.Context, filters ServiceRequestFilters) ([]ServiceRequestResponse, error)
	ListMy(ctx context.Context, clientID string) ([]ServiceRequestResponse, error)
	UpdateStatus(ctx context.Context, actorID, id string, req UpdateRequestStatusRequest) (*ServiceRequestResponse, error)
	// Cancel is the client-facing withdrawal; only NEW requests qualify.
	Cancel(ctx context.Context, clientID, id string) (*ServiceRequestResponse, error)
}

type serviceRequestService struct {
	repo        repository.ServiceRequestRepository
	vehicleRepo repository.VehicleRepository
	serviceRepo repository.ServiceRepository
	auditRepo   repository.AuditRepository
	hub         *ws.Hub
}

func NewServiceRequestService(
	repo repository.ServiceRequestRepository,
	vehicleRepo repository.VehicleRepository,
	serviceRepo repository.ServiceRepository,
	auditRepo repository.AuditRepository,
	hub *ws.Hub,
) ServiceRequestService {
	return &serviceRequestService{
		repo:        repo,
		vehicleRepo: vehicleRepo,
		serviceRepo: serviceRepo,
		auditRepo:   auditRepo,
		hub:         hub,
	}
}

func mapRequestToResponse(r *model.ServiceRequest) *ServiceRequestResponse {
	resp := &ServiceRequestResponse{
		ID:          r.ID.String(),
		ClientID:    r.ClientID.String(),
		Client:      toUserSummary(r.Client),
		VehicleID:   r.VehicleID.String(),
		Vehicle:     toVehicleSummary(r.Vehicle),
		DesiredDate: formatTimePtr(r.DesiredDate),
		Comment:     r.Comment,
		Status:      r.Status,
		CreatedAt:   formatTime(r.CreatedAt),
	}
	if r.ServiceID != nil {
		id := r.ServiceID.String()
		resp.ServiceID = &id
	}
	if r.Service != nil {
		resp.ServiceName = r.Service.Name
	}
	return resp
}

func (s *serviceRequestService) Create(ctx context.Context, clientID string, req CreateServiceRequestRequest) (*ServiceRequestResponse, error) {
	ownerID, err := uuid.Parse(clientID)
	if err != nil {
		return nil, apperror.BadRequest("invalid user id")
	}

	vehicleID, err := uuid.Parse(req.VehicleID)
	if err != nil {
		return nil, apperror.BadRequest("invalid vehicle id")
	}

	vehicle, err := s.vehicleRepo.FindByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("vehicle not found")
		}
		return nil, apperror.Internal("Failed to resolve vehicle", err)
	}
	if vehicle.OwnerID != ownerID {
		return nil, apperror.Forbidden("vehicle belongs to another user")
	}

	var serviceID *uuid.UUID
	if req.ServiceID != "" {
		id, err := uuid.Parse(req.ServiceID)
		if err != nil {
			return nil, apperror.BadRequest("invalid service id")
		}
		if _, err := s.serviceRepo.FindActiveByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.NotFound("Service not found")
			}
			return nil, apperror.Internal("Failed to resolve service", err)
		}
		serviceID = &id
	}

	var desiredDate *time.Time
	if req.DesiredDate != "" {
		parsed, err := parseLocalDateTime(req.DesiredDate)
		if err != nil {
			return nil, apperror.BadRequest("Invalid desired date format")
		}
		desiredDate = &parsed
	}

	request := &model.ServiceRequest{
		ClientID:    ownerID,
		VehicleID:   vehicleID,
		ServiceID:   serviceID,
		DesiredDate: desiredDate,
		Comment:     req.Comment,
		Status:      model.RequestStatusNew,
	}

	if err := s.repo.Create(ctx, request); err != nil {
		return nil, apperror.Internal("Failed to create service request", err)
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(ws.EventServiceRequestCreated, map[string]interface{}{
			"id":        request.ID.String(),
			"client_id": request.ClientID.String(),
		})
	}

	return s.reload(ctx, request.ID)
}

func (s *serviceRequestService) GetByID(ctx context.Context, actorID, actorRole, id string) (*ServiceRequestResponse, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.BadRequest("invalid request id")
	}

	request, err := s.repo.FindByIDWithRelations(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Service request not found")
		}
		return nil, apperror.Internal("Failed to fetch service request", err)
	}

	if !model.IsStaffRole(actorRole) && request.ClientID.String() != actorID {
		return nil, apperror.Forbidden("service request belongs to another user")
	}

	return mapRequestToResponse(request), nil
}

func (s *serviceRequestService) List(ctx context.Context, filters ServiceRequestFilters) ([]ServiceRequestResponse, error) {
	repoFilter := repository.ServiceRequestFilter{Status: filters.Status}

	var err error
	if repoFilter.ClientID, err = parseOptionalID(filters.ClientID); err != nil {
		return nil, apperror.BadRequest("invalid client id")
	}

	if filters.FromDate != "" {
		parsed, err := time.Parse(reportDateLayout, filters.FromDate)
		if err != nil {
			return nil, apperror.BadRequest("Invalid from date, expected YYYY-MM-DD")
		}
		repoFilter.FromDate = &parsed
	}
	if filters.ToDate != "" {
		parsed, err := time.Parse(reportDateLayout, filters.ToDate)
		if err != nil {
			return nil, apperror.BadRequest("Invalid to date, expected YYYY-MM-DD")
		}
		end := parsed.Add(24*time.Hour - time.Nanosecond)
		repoFilter.ToDate = &end
	}

	requests, err := s.repo.List(ctx, repoFilter)
	if err != nil {
		return nil, apperror.Internal("Failed to list service requests", err)
	}

	result := make([]ServiceRequestResponse, 0, len(requests))
	for i := range requests {
		result = append(result, *mapRequestToResponse(&requests[i]))
	}
	return result, nil
}

func (s *serviceRequestService) ListMy(ctx context.Context, clientID string) ([]ServiceRequestResponse, error) {
	id, err := uuid.Parse(clientID)
	if err != nil {
		return nil, apperror.BadRequest("invalid user id")
	}

	requests, err := s.repo.ListByClient(ctx, id)
	if err != nil {
		return nil, apperror.Internal("Failed to list service requests", err)
	}

	result := make([]ServiceRequestResponse, 0, len(requests))
	for i := range requests {
		result = append(result, *mapRequestToResponse(&requests[i]))
	}
	return result, nil
}

func (s *serviceRequestService) UpdateStatus(ctx context.Context, actorID, id string, req UpdateRequestStatusRequest) (*ServiceRequestResponse, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.BadRequest("invalid request id")
	}

	request, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Service request not found")
		}
		return nil, apperror.Internal("Failed to fetch service request", err)
	}

	if err := s.repo.UpdateStatus(ctx, requestID, req.Status); err != nil {
		return nil, apperror.Internal("Failed to update service request", err)
	}

	s.audit(ctx, actorID, model.ActionUpdateRequestStatus, requestID.String(), map[string]interface{}{
		"from": request.Status,
		"to":   req.Status,
	})

	return s.reload(ctx, requestID)
}

func (s *serviceRequestService) Cancel(ctx context.Context, clientID, id string) (*ServiceRequestResponse, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.BadRequest("invalid request id")
	}

	request, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Service request not found")
		}
		return nil, apperror.Internal("Failed to fetch service request", err)
	}

	if request.ClientID.String() != clientID {
		return nil, apperror.Forbidden("service request belongs to another user")
	}
	if request.Status != model.RequestStatusNew {
		return nil, apperror.BadRequest("Only new requests can be cancelled")
	}

	if err := s.repo.UpdateStatus(ctx, requestID, model.RequestStatusCancelled); err != nil {
		return nil, apperror.Internal("Failed to cancel service request", err)
	}

	s.audit(ctx, clientID, model.ActionCancelServiceRequest, requestID.String(), nil)
	return s.reload(ctx, requestID)
}

func (s *serviceRequestService) reload(ctx context.Context, id uuid.UUID) (*ServiceRequestResponse, error) {
	request, err := s.repo.FindByIDWithRelations(ctx, id)
	if err != nil {
		return nil, apperror.Internal("Failed to reload service request", err)
	}
	return mapRequestToResponse(request), nil
}

// audit records who did what. Request mutations are single-row updates with
// no surrounding transaction, so the entry is advisory: a failed write never
// fails the operation that already persisted.
func (s *serviceRequestService) audit(ctx context.Context, actorID, action, entityID string, details map[string]interface{}) {
	var uid *uuid.UUID
	if parsed, err := uuid.Parse(actorID); err == nil {
		uid = &parsed
	}
	payload, _ := json.Marshal(details)
	_ = s.auditRepo.Log(ctx, &model.AuditLog{
		UserID:   uid,
		Action:   action,
		EntityID: entityID,
		Details:  string(payload),
	})
}
