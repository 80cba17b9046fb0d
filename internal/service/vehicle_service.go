package service

import (
	"context"
	"errors"

	"autoshop/internal/model"
	"autoshop/internal/repository"
	"autoshop/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateVehicleRequest struct {
	OwnerID      string `json:"owner_id"`
	Make         string `json:"make" binding:"required"`
	Model        string `json:"model" binding:"required"`
	Year         *int   `json:"year" binding:"omitempty,min=1900"`
	LicensePlate string `json:"license_plate"`
	VIN          string `json:"vin"`
}

type UpdateVehicleRequest struct {
	Make         string `json:"make"`
	Model        string `json:"model"`
	Year         *int   `json:"year" binding:"omitempty,min=1900"`
	LicensePlate string `json:"license_plate"`
	VIN          string `json:"vin"`
}

type VehicleResponse struct {
	ID           uuid.UUID    `json:"id"`
	OwnerID      uuid.UUID    `json:"owner_id"`
	Owner        *UserSummary `json:"owner,omitempty"`
	Make         string       `json:"make"`
	Model        string       `json:"model"`
	Year         *int         `json:"year"`
	LicensePlate string       `json:"license_plate"`
	VIN          string       `json:"vin"`
	CreatedAt    string       `json:"created_at"`
}

type VehicleService interface {
	// Create registers a vehicle. Clients always own what they create;
	// staff may pass an explicit owner id.
	Create(ctx context.Context, actorID, actorRole string, req CreateVehicleRequest) (*VehicleResponse, error)
	Update(ctx context.Context, actorID, actorRole, id string, req UpdateVehicleRequest) (*VehicleResponse, error)
	Delete(ctx context.Context, actorID, actorRole, id string) error
	GetByID(ctx context.Context, actorID, actorRole, id string) (*VehicleResponse, error)
	ListMy(ctx context.Context, actorID string) ([]VehicleResponse, error)
	List(ctx context.Context, page, limit int) ([]VehicleResponse, int64, error)
}

type vehicleService struct {
	repo     repository.VehicleRepository
	userRepo repository.UserRepository
}

func NewVehicleService(repo repository.VehicleRepository, userRepo repository.UserRepository) VehicleService {
	return &vehicleService{repo: repo, userRepo: userRepo}
}

func mapVehicleToResponse(v *model.Vehicle) *VehicleResponse {
	return &VehicleResponse{
		ID:           v.ID,
		OwnerID:      v.OwnerID,
		Owner:        toUserSummary(v.Owner),
		Make:         v.Make,
		Model:        v.Model,
		Year:         v.Year,
		LicensePlate: v.LicensePlate,
		VIN:          v.VIN,
		CreatedAt:    formatTime(v.CreatedAt),
	}
}

func (s *vehicleService) Create(ctx context.Context, actorID, actorRole string, req CreateVehicleRequest) (*VehicleResponse, error) {
	ownerID, err := uuid.Parse(actorID)
	if err != nil {
		return nil, apperror.BadRequest("invalid user id")
	}

	if req.OwnerID != "" && req.OwnerID != actorID {
		if !model.IsStaffRole(actorRole) {
			return nil, apperror.Forbidden("only staff may register vehicles for other users")
		}
		ownerID, err = uuid.Parse(req.OwnerID)
		if err != nil {
			return nil, apperror.BadRequest("invalid owner id")
		}
		if _, err := s.userRepo.FindByID(ctx, ownerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.NotFound("owner not found")
			}
			return nil, apperror.Internal("Failed to resolve owner", err)
		}
	}

	vehicle := &model.Vehicle{
		OwnerID:      ownerID,
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		LicensePlate: req.LicensePlate,
		VIN:          req.VIN,
	}

	if err := s.repo.Create(ctx, vehicle); err != nil {
		return nil, apperror.Internal("Failed to create vehicle", err)
	}
	return mapVehicleToResponse(vehicle), nil
}

func (s *vehicleService) Update(ctx context.Context, actorID, actorRole, id string, req UpdateVehicleRequest) (*VehicleResponse, error) {
	vehicle, err := s.authorize(ctx, actorID, actorRole, id)
	if err != nil {
		return nil, err
	}

	if req.Make != "" {
		vehicle.Make = req.Make
	}
	if req.Model != "" {
		vehicle.Model = req.Model
	}
	if req.Year != nil {
		vehicle.Year = req.Year
	}
	if req.LicensePlate != "" {
		vehicle.LicensePlate = req.LicensePlate
	}
	if req.VIN != "" {
		vehicle.VIN = req.VIN
	}

	if err := s.repo.Update(ctx, vehicle); err != nil {
		return nil, apperror.Internal("Failed to update vehicle", err)
	}
	return mapVehicleToResponse(vehicle), nil
}

func (s *vehicleService) Delete(ctx context.Context, actorID, actorRole, id string) error {
	vehicle, err := s.authorize(ctx, actorID, actorRole, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, vehicle.ID); err != nil {
		return apperror.Internal("Failed to delete vehicle", err)
	}
	return nil
}

func (s *vehicleService) GetByID(ctx context.Context, actorID, actorRole, id string) (*VehicleResponse, error) {
	vehicle, err := s.authorize(ctx, actorID, actorRole, id)
	if err != nil {
		return nil, err
	}
	return mapVehicleToResponse(vehicle), nil
}

func (s *vehicleService) ListMy(ctx context.Context, actorID string) ([]VehicleResponse, error) {
	ownerID, err := uuid.Parse(actorID)
	if err != nil {
		return nil, apperror.BadRequest("invalid user id")
	}

	vehicles, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperror.Internal("Failed to list vehicles", err)
	}

	result := make([]VehicleResponse, 0, len(vehicles))
	for i := range vehicles {
		result = append(result, *mapVehicleToResponse(&vehicles[i]))
	}
	return result, nil
}

func (s *vehicleService) List(ctx context.Context, page, limit int) ([]VehicleResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	vehicles, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, apperror.Internal("Failed to list vehicles", err)
	}

	result := make([]VehicleResponse, 0, len(vehicles))
	for i := range vehicles {
		result = append(result, *mapVehicleToResponse(&vehicles[i]))
	}
	return result, total, nil
}

// authorize loads the vehicle and rejects clients touching vehicles they do
// not own. Staff see everything.
func (s *vehicleService) authorize(ctx context.Context, actorID, actorRole, id string) (*model.Vehicle, error) {
	vehicleID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.BadRequest("invalid vehicle id")
	}

	vehicle, err := s.repo.FindByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("vehicle not found")
		}
		return nil, apperror.Internal("Failed to fetch vehicle", err)
	}

	if !model.IsStaffRole(actorRole) && vehicle.OwnerID.String() != actorID {
		return nil, apperror.Forbidden("vehicle belongs to another user")
	}
	return vehicle, nil
}
