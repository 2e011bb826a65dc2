package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"catering-backend/internal/repository"
	"catering-backend/pkg/apperror"

	"github.com/google/uuid"
)

type AuditFilter struct {
	RequestID string
	Action    string
	Page      int
	Limit     int
}

type AuditResponse struct {
	ID         string                 `json:"id"`
	UserID     *string                `json:"user_id"`
	Username   string                 `json:"username,omitempty"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   string                 `json:"entity_id"`
	RequestID  *string                `json:"request_id"`
	Details    map[string]interface{} `json:"details"`
	CreatedAt  string                 `json:"created_at"`
}

// AuditService is the read side of the audit trail; writes happen inside the
// domain services' transactions.
type AuditService interface {
	ListAuditLogs(ctx context.Context, filter AuditFilter) ([]AuditResponse, int64, error)
}

type auditService struct {
	auditRepo repository.AuditRepository
}

func NewAuditService(auditRepo repository.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

func (s *auditService) ListAuditLogs(ctx context.Context, filter AuditFilter) ([]AuditResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.AuditListFilter{
		Action: filter.Action,
		Page:   filter.Page,
		Limit:  filter.Limit,
	}
	if filter.RequestID != "" {
		requestID, err := uuid.Parse(filter.RequestID)
		if err != nil {
			return nil, 0, apperror.Validation("invalid request id filter", apperror.FieldIssue{Field: "request_id", Message: "must be a uuid"})
		}
		repoFilter.RequestID = &requestID
	}

	entries, total, err := s.auditRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}

	result := make([]AuditResponse, 0, len(entries))
	for i := range entries {
		entry := &entries[i]
		resp := AuditResponse{
			ID:         entry.ID.String(),
			Action:     entry.Action,
			EntityType: entry.EntityType,
			EntityID:   entry.EntityID,
			CreatedAt:  entry.CreatedAt.Format(time.RFC3339),
		}
		if entry.UserID != nil {
			s := entry.UserID.String()
			resp.UserID = &s
		}
		if entry.User != nil {
			resp.Username = entry.User.Username
		}
		if entry.RequestID != nil {
			s := entry.RequestID.String()
			resp.RequestID = &s
		}
		if entry.Details != "" {
			var details map[string]interface{}
			if err := json.Unmarshal([]byte(entry.Details), &details); err == nil {
				resp.Details = details
			}
		}
		result = append(result, resp)
	}
	return result, total, nil
}
