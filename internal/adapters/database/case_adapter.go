package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/zura-health/orflow/backend/internal/domain/entities"
	"github.com/zura-health/orflow/backend/internal/domain/repositories"
	"github.com/zura-health/orflow/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zura-health/orflow/backend/pkg/errors"
)

// CaseAdapter implements the CaseRepository interface. It is the milestone
// resolver: raw timestamp columns on surgical_cases become the MilestoneMap
// the flag engine consumes.
type CaseAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewCaseAdapter creates a new surgical case adapter
func NewCaseAdapter(client *postgres.Client) repositories.CaseRepository {
	return &CaseAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// milestoneColumns maps surgical_cases timestamp columns to milestone names,
// in scan order.
var milestoneColumns = []struct {
	column    string
	milestone string
}{
	{"patient_in_at", entities.MilestonePatientIn},
	{"anesthesia_start_at", entities.MilestoneAnesthesiaStart},
	{"incision_at", entities.MilestoneIncision},
	{"closing_at", entities.MilestoneClosing},
	{"anesthesia_end_at", entities.MilestoneAnesthesiaEnd},
	{"patient_out_at", entities.MilestonePatientOut},
}

// ListByFacilityDateRange retrieves cases scheduled at a facility between from
// and to (inclusive), with their milestones resolved.
func (a *CaseAdapter) ListByFacilityDateRange(ctx context.Context, facilityID, from, to string) ([]*entities.SurgicalCase, error) {
	cols := []interface{}{
		"id", "facility_id", "or_room_id", "scheduled_date", "start_time",
		"surgeon_id", "procedure_type_id",
	}
	for _, mc := range milestoneColumns {
		cols = append(cols, mc.column)
	}

	query, args, err := a.db.Select(cols...).
		From("surgical_cases").
		Where(
			goqu.Ex{"facility_id": facilityID},
			goqu.C("scheduled_date").Gte(from),
			goqu.C("scheduled_date").Lte(to),
		).
		Order(goqu.I("scheduled_date").Asc(), goqu.I("start_time").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build case list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list cases", err)
	}
	defer rows.Close()

	var cases []*entities.SurgicalCase
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan case", err)
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate cases", err)
	}

	return cases, nil
}

func scanCase(rows *sql.Rows) (*entities.SurgicalCase, error) {
	c := &entities.SurgicalCase{}
	var scheduledDate time.Time
	var surgeonID, procedureTypeID sql.NullString
	milestoneTimes := make([]sql.NullTime, len(milestoneColumns))

	dest := []interface{}{
		&c.ID,
		&c.FacilityID,
		&c.ORRoomID,
		&scheduledDate,
		&c.StartTime,
		&surgeonID,
		&procedureTypeID,
	}
	for i := range milestoneTimes {
		dest = append(dest, &milestoneTimes[i])
	}

	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}

	c.ScheduledDate = scheduledDate.Format("2006-01-02")
	if surgeonID.Valid {
		c.SurgeonID = &surgeonID.String
	}
	if procedureTypeID.Valid {
		c.ProcedureTypeID = &procedureTypeID.String
	}

	c.Milestones = make(entities.MilestoneMap, len(milestoneColumns))
	for i, mc := range milestoneColumns {
		if milestoneTimes[i].Valid {
			ts := milestoneTimes[i].Time
			c.Milestones[mc.milestone] = &ts
		} else {
			c.Milestones[mc.milestone] = nil
		}
	}

	return c, nil
}
