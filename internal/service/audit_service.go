package service

import (
	"context"

	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/andresuchdata/joyeria/backend-go/internal/repository"
)

type AuditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// List returns audit entries newest first.
func (s *AuditService) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	for _, t := range filter.EntityTypes {
		if !domain.IsAuditEntityType(t) {
			return nil, domain.NewValidationError("entity_type", "unknown entity type %q", t)
		}
	}
	if filter.From != nil && filter.To != nil && !filter.To.After(*filter.From) {
		return nil, domain.NewValidationError("to", "must be after from")
	}

	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	return entries, nil
}
