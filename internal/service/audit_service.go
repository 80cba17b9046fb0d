package service

import (
	"context"
	"encoding/json"

	"autoshop/internal/repository"
	"autoshop/pkg/apperror"
)

type AuditLogResponse struct {
	ID         string                 `json:"id"`
	UserID     *string                `json:"user_id"`
	User       *UserSummary           `json:"user,omitempty"`
	Action     string                 `json:"action"`
	EntityID   string                 `json:"entity_id"`
	EntityName string                 `json:"entity_name,omitempty"`
	Details    map[string]interface{} `json:"details"`
	CreatedAt  string                 `json:"created_at"`
}

type AuditService interface {
	List(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) List(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	entries, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, apperror.Internal("Failed to list audit log", err)
	}

	result := make([]AuditLogResponse, 0, len(entries))
	for i := range entries {
		entry := &entries[i]
		item := AuditLogResponse{
			ID:         entry.ID.String(),
			User:       toUserSummary(entry.User),
			Action:     entry.Action,
			EntityID:   entry.EntityID,
			EntityName: entry.EntityName,
			CreatedAt:  formatTime(entry.CreatedAt),
		}
		if entry.UserID != nil {
			id := entry.UserID.String()
			item.UserID = &id
		}
		if entry.Details != "" {
			// Details is freeform JSON written by the action itself.
			_ = json.Unmarshal([]byte(entry.Details), &item.Details)
		}
		result = append(result, item)
	}
	return result, total, nil
}
