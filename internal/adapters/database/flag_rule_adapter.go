package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	"github.com/zura-health/orflow/backend/internal/domain/entities"
	"github.com/zura-health/orflow/backend/internal/domain/repositories"
	"github.com/zura-health/orflow/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zura-health/orflow/backend/pkg/errors"
)

// FlagRuleAdapter implements the FlagRuleRepository interface
type FlagRuleAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewFlagRuleAdapter creates a new flag rule adapter
func NewFlagRuleAdapter(client *postgres.Client) repositories.FlagRuleRepository {
	return &FlagRuleAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// ListEnabledByFacility retrieves the enabled flag rules for a facility
func (a *FlagRuleAdapter) ListEnabledByFacility(ctx context.Context, facilityID string) ([]*entities.FlagRule, error) {
	query, args, err := a.db.Select(
		"id", "facility_id", "name", "metric_name",
		"start_milestone", "end_milestone",
		"comparison_operator", "threshold_type", "threshold_value", "threshold_max",
		"comparison_scope", "severity", "is_enabled",
	).From("flag_rules").
		Where(goqu.Ex{"facility_id": facilityID, "is_enabled": true}).
		Order(goqu.I("created_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build rule list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list flag rules", err)
	}
	defer rows.Close()

	var rules []*entities.FlagRule
	for rows.Next() {
		rule := &entities.FlagRule{}
		var startMilestone, endMilestone sql.NullString
		var thresholdMax sql.NullFloat64

		err := rows.Scan(
			&rule.ID,
			&rule.FacilityID,
			&rule.Name,
			&rule.MetricName,
			&startMilestone,
			&endMilestone,
			&rule.Operator,
			&rule.ThresholdType,
			&rule.ThresholdValue,
			&thresholdMax,
			&rule.ComparisonScope,
			&rule.Severity,
			&rule.IsEnabled,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan flag rule", err)
		}

		if startMilestone.Valid {
			rule.StartMilestone = &startMilestone.String
		}
		if endMilestone.Valid {
			rule.EndMilestone = &endMilestone.String
		}
		if thresholdMax.Valid {
			rule.ThresholdMax = &thresholdMax.Float64
		}

		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate flag rules", err)
	}

	return rules, nil
}
