package service

import (
	"time"

	"autoshop/internal/model"
)

// UserSummary is the slim user projection embedded in other responses.
type UserSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname,omitempty"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Role    string `json:"role"`
}

// VehicleSummary is the slim vehicle projection embedded in other responses.
type VehicleSummary struct {
	ID           string `json:"id"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	Year         *int   `json:"year"`
	LicensePlate string `json:"license_plate"`
}

func toUserSummary(u *model.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:      u.ID.String(),
		Name:    u.Name,
		Surname: u.Surname,
		Email:   u.Email,
		Phone:   u.Phone,
		Role:    u.Role,
	}
}

func toVehicleSummary(v *model.Vehicle) *VehicleSummary {
	if v == nil {
		return nil
	}
	return &VehicleSummary{
		ID:           v.ID.String(),
		Make:         v.Make,
		Model:        v.Model,
		Year:         v.Year,
		LicensePlate: v.LicensePlate,
	}
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
