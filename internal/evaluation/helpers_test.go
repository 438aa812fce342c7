package evaluation

import (
	"time"

	"github.com/zura-health/orflow/backend/internal/domain/entities"
)

// Shared fixtures for the evaluation tests. All cases live on the same
// scheduled day unless a test says otherwise.

const testDay = "2025-03-10"

func at(hhmm string) *time.Time {
	ts, err := time.Parse("2006-01-02 15:04", testDay+" "+hhmm)
	if err != nil {
		panic(err)
	}
	return &ts
}

func atSec(hhmmss string) *time.Time {
	ts, err := time.Parse("2006-01-02 15:04:05", testDay+" "+hhmmss)
	if err != nil {
		panic(err)
	}
	return &ts
}

func strPtr(s string) *string {
	return &s
}

func testCase(id string, milestones entities.MilestoneMap) *entities.SurgicalCase {
	return &entities.SurgicalCase{
		ID:            id,
		FacilityID:    "fac-1",
		ORRoomID:      "or-1",
		ScheduledDate: testDay,
		StartTime:     "08:00",
		Milestones:    milestones,
	}
}

func gtRule(id, metric string, thresholdType entities.ThresholdType, value float64) *entities.FlagRule {
	return &entities.FlagRule{
		ID:              id,
		FacilityID:      "fac-1",
		MetricName:      metric,
		Operator:        entities.OperatorGreaterThan,
		ThresholdType:   thresholdType,
		ThresholdValue:  value,
		ComparisonScope: entities.ScopeFacility,
		Severity:        "warning",
		IsEnabled:       true,
	}
}
