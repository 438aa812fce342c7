package repositories

import (
	"context"

	"github.com/zura-health/orflow/backend/internal/domain/entities"
)

// FlagRuleRepository defines access to flag rule configuration.
type FlagRuleRepository interface {
	// ListEnabledByFacility returns the enabled rules configured for a facility.
	ListEnabledByFacility(ctx context.Context, facilityID string) ([]*entities.FlagRule, error)
}
