package repositories

import (
	"context"

	"github.com/zura-health/orflow/backend/internal/domain/entities"
)

// CaseRepository defines read access to surgical cases with resolved milestones.
type CaseRepository interface {
	// ListByFacilityDateRange returns cases scheduled at a facility between
	// from and to (inclusive, YYYY-MM-DD).
	ListByFacilityDateRange(ctx context.Context, facilityID, from, to string) ([]*entities.SurgicalCase, error)
}
