package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/zura-health/orflow/backend/internal/domain/entities"
	"github.com/zura-health/orflow/backend/internal/domain/repositories"
	"github.com/zura-health/orflow/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zura-health/orflow/backend/pkg/errors"
)

// CaseFlagAdapter implements the CaseFlagRepository interface
type CaseFlagAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewCaseFlagAdapter creates a new case flag adapter
func NewCaseFlagAdapter(client *postgres.Client) repositories.CaseFlagRepository {
	return &CaseFlagAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// BulkInsert persists a batch of flags in a single statement. IDs and
// creation timestamps are assigned here so the engine output stays
// deterministic.
func (a *CaseFlagAdapter) BulkInsert(ctx context.Context, flags []entities.CaseFlag) error {
	if len(flags) == 0 {
		return nil
	}

	now := time.Now().UTC()
	records := make([]goqu.Record, 0, len(flags))
	for _, flag := range flags {
		id := flag.ID
		if id == "" {
			id = uuid.New().String()
		}
		createdAt := flag.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}

		records = append(records, goqu.Record{
			"id":               id,
			"case_id":          flag.CaseID,
			"facility_id":      flag.FacilityID,
			"flag_type":        string(flag.FlagType),
			"flag_rule_id":     flag.FlagRuleID,
			"metric_value":     flag.MetricValue,
			"threshold_value":  flag.ThresholdValue,
			"comparison_scope": flag.ComparisonScope,
			"delay_type_id":    flag.DelayTypeID,
			"duration_minutes": flag.DurationMinutes,
			"severity":         flag.Severity,
			"note":             flag.Note,
			"created_by":       flag.CreatedBy,
			"created_at":       createdAt,
		})
	}

	query, args, err := a.db.Insert("case_flags").Rows(records).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build flag insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to insert case flags", err)
	}

	return nil
}

// ListByFacility returns flags for a facility, newest first
func (a *CaseFlagAdapter) ListByFacility(ctx context.Context, facilityID string, filter repositories.CaseFlagFilter) ([]*entities.CaseFlag, error) {
	exprs := []goqu.Expression{goqu.Ex{"facility_id": facilityID}}
	if filter.CaseID != "" {
		exprs = append(exprs, goqu.Ex{"case_id": filter.CaseID})
	}
	if filter.Severity != "" {
		exprs = append(exprs, goqu.Ex{"severity": filter.Severity})
	}

	ds := a.db.Select(
		"id", "case_id", "facility_id", "flag_type", "flag_rule_id",
		"metric_value", "threshold_value", "comparison_scope",
		"delay_type_id", "duration_minutes", "severity", "note",
		"created_by", "created_at",
	).From("case_flags").
		Where(exprs...).
		Order(goqu.I("created_at").Desc())

	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build flag list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list case flags", err)
	}
	defer rows.Close()

	var flags []*entities.CaseFlag
	for rows.Next() {
		flag, err := scanCaseFlag(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan case flag", err)
		}
		flags = append(flags, flag)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate case flags", err)
	}

	return flags, nil
}

func scanCaseFlag(rows *sql.Rows) (*entities.CaseFlag, error) {
	flag := &entities.CaseFlag{}
	var flagRuleID, comparisonScope, delayTypeID, note, createdBy sql.NullString
	var metricValue, thresholdValue, durationMinutes sql.NullFloat64

	err := rows.Scan(
		&flag.ID,
		&flag.CaseID,
		&flag.FacilityID,
		&flag.FlagType,
		&flagRuleID,
		&metricValue,
		&thresholdValue,
		&comparisonScope,
		&delayTypeID,
		&durationMinutes,
		&flag.Severity,
		&note,
		&createdBy,
		&flag.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if flagRuleID.Valid {
		flag.FlagRuleID = &flagRuleID.String
	}
	if metricValue.Valid {
		flag.MetricValue = &metricValue.Float64
	}
	if thresholdValue.Valid {
		flag.ThresholdValue = &thresholdValue.Float64
	}
	if comparisonScope.Valid {
		flag.ComparisonScope = &comparisonScope.String
	}
	if delayTypeID.Valid {
		flag.DelayTypeID = &delayTypeID.String
	}
	if durationMinutes.Valid {
		flag.DurationMinutes = &durationMinutes.Float64
	}
	if note.Valid {
		flag.Note = &note.String
	}
	if createdBy.Valid {
		flag.CreatedBy = &createdBy.String
	}

	return flag, nil
}
