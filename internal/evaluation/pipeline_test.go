package evaluation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/zura-health/orflow/backend/internal/domain/entities"
)

// fullCase builds an evaluable case with the given surgical time and sensible
// surrounding milestones.
func fullCase(id string, surgicalMinutes float64, surgeonID *string) *entities.SurgicalCase {
	incision := at("08:20")
	closing := incision.Add(time.Duration(surgicalMinutes * float64(time.Minute)))
	patientOut := closing.Add(15 * time.Minute)
	c := testCase(id, entities.MilestoneMap{
		entities.MilestonePatientIn:  at("08:00"),
		entities.MilestoneIncision:   incision,
		entities.MilestoneClosing:    &closing,
		entities.MilestonePatientOut: &patientOut,
	})
	c.SurgeonID = surgeonID
	return c
}

func TestEvaluateCasesBatch_EmptyInputs(t *testing.T) {
	rule := gtRule("r1", "surgical_time", entities.ThresholdAbsolute, 60)
	c := fullCase("c1", 90, nil)

	assert.Empty(t, EvaluateCasesBatch(nil, []*entities.FlagRule{rule}))
	assert.Empty(t, EvaluateCasesBatch([]*entities.SurgicalCase{c}, nil))
}

func TestEvaluateCasesBatch_OutlierAgainstOwnBaseline(t *testing.T) {
	values := []float64{40, 42, 45, 41, 43, 44, 46, 42, 160, 43}
	var cases []*entities.SurgicalCase
	for i, v := range values {
		cases = append(cases, fullCase("c"+string(rune('0'+i)), v, nil))
	}

	rule := gtRule("r1", "surgical_time", entities.ThresholdMedianPlusSD, 2)
	flags := EvaluateCasesBatch(cases, []*entities.FlagRule{rule})

	// Median 43, sample stddev ~37.08: only the 160-minute case crosses
	// median + 2 sigma (~117.2).
	assert.Len(t, flags, 1)
	assert.Equal(t, "c8", flags[0].CaseID)
	assert.InDelta(t, 160.0, *flags[0].MetricValue, 1e-9)
	assert.InDelta(t, 117.2, *flags[0].ThresholdValue, 1e-9)
}

func TestEvaluateCasesBatch_PersonalScopeNeverBorrowsFacilityData(t *testing.T) {
	surgeonA := strPtr("surg-a")
	surgeonB := strPtr("surg-b")

	var cases []*entities.SurgicalCase
	for i := 0; i < 10; i++ {
		cases = append(cases, fullCase("a"+string(rune('0'+i)), 50, surgeonA))
	}
	// Surgeon B has only two qualifying cases; the 200-minute one would cross
	// the facility-wide baseline but must not be flagged under a personal rule.
	cases = append(cases, fullCase("b0", 50, surgeonB))
	cases = append(cases, fullCase("b1", 200, surgeonB))

	rule := gtRule("r1", "surgical_time", entities.ThresholdMedianPlusSD, 2)
	rule.ComparisonScope = entities.ScopePersonal

	flags := EvaluateCasesBatch(cases, []*entities.FlagRule{rule})
	assert.Empty(t, flags)
}

func TestEvaluateCasesBatch_TurnoverFlagging(t *testing.T) {
	cases := turnoverSequence("or-1", 20, 25, 45)
	rule := gtRule("r1", MetricTurnoverTime, entities.ThresholdAbsolute, 30)

	flags := EvaluateCasesBatch(cases, []*entities.FlagRule{rule})

	assert.Len(t, flags, 1)
	assert.Equal(t, cases[3].ID, flags[0].CaseID)
	assert.InDelta(t, 45.0, *flags[0].MetricValue, 1e-9)
}

func TestEvaluateCasesBatch_FCOTSOnlyFlagsFirstCaseOfDay(t *testing.T) {
	first := testCase("first", entities.MilestoneMap{
		entities.MilestonePatientIn:  at("08:12"),
		entities.MilestonePatientOut: at("10:00"),
	})
	second := testCase("second", entities.MilestoneMap{
		entities.MilestonePatientIn:  at("10:45"),
		entities.MilestonePatientOut: at("12:00"),
	})
	second.StartTime = "10:15"

	rule := gtRule("r1", MetricFCOTSDelay, entities.ThresholdAbsolute, 10)
	flags := EvaluateCasesBatch([]*entities.SurgicalCase{first, second}, []*entities.FlagRule{rule})

	// The second case started 30 minutes late but is not a first case.
	assert.Len(t, flags, 1)
	assert.Equal(t, "first", flags[0].CaseID)
	assert.InDelta(t, 12.0, *flags[0].MetricValue, 1e-9)
}

func TestEvaluateCasesBatch_Deterministic(t *testing.T) {
	cases := turnoverSequence("or-1", 20, 25, 45)
	surgeon := strPtr("surg-1")
	for i, v := range []float64{40, 44, 48, 52, 140} {
		cases = append(cases, fullCase("s"+string(rune('0'+i)), v, surgeon))
	}

	rules := []*entities.FlagRule{
		gtRule("r1", "surgical_time", entities.ThresholdMedianPlusSD, 1),
		gtRule("r2", MetricTurnoverTime, entities.ThresholdAbsolute, 30),
		gtRule("r3", MetricFCOTSDelay, entities.ThresholdAbsolute, 5),
	}

	first := EvaluateCasesBatch(cases, rules)
	second := EvaluateCasesBatch(cases, rules)
	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}
