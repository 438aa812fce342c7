package repositories

import (
	"context"

	"github.com/zura-health/orflow/backend/internal/domain/entities"
)

// CaseFlagFilter narrows flag listings.
type CaseFlagFilter struct {
	CaseID   string
	Severity string
	Limit    int
	Offset   int
}

// CaseFlagRepository defines persistence for flags raised by the engine.
type CaseFlagRepository interface {
	// BulkInsert persists a batch of flags in a single statement.
	BulkInsert(ctx context.Context, flags []entities.CaseFlag) error

	// ListByFacility returns flags for a facility, newest first.
	ListByFacility(ctx context.Context, facilityID string, filter CaseFlagFilter) ([]*entities.CaseFlag, error)
}
