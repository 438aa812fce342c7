package evaluation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/zura-health/orflow/backend/internal/domain/entities"
)

func caseWithSurgicalTime(id string, minutes float64, surgeonID, procedureID *string) *entities.SurgicalCase {
	incision := at("09:00")
	closing := incision.Add(time.Duration(minutes * float64(time.Minute)))
	c := testCase(id, entities.MilestoneMap{
		entities.MilestoneIncision: incision,
		entities.MilestoneClosing:  &closing,
	})
	c.SurgeonID = surgeonID
	c.ProcedureTypeID = procedureID
	return c
}

func TestBuildBaselines_RequiresThreeSamples(t *testing.T) {
	cases := []*entities.SurgicalCase{
		caseWithSurgicalTime("c1", 40, nil, nil),
		caseWithSurgicalTime("c2", 44, nil, nil),
	}

	baselines := BuildBaselines(cases, []string{"surgical_time"})
	_, ok := baselines.Facility["surgical_time"]
	assert.False(t, ok, "two samples must not produce a baseline")

	cases = append(cases, caseWithSurgicalTime("c3", 48, nil, nil))
	baselines = BuildBaselines(cases, []string{"surgical_time"})
	stat, ok := baselines.Facility["surgical_time"]
	assert.True(t, ok)
	assert.Equal(t, 3, stat.Count)
	assert.InDelta(t, 44.0, stat.Median, 1e-9)
}

func TestBuildBaselines_MedianOfEvenLengthList(t *testing.T) {
	cases := []*entities.SurgicalCase{
		caseWithSurgicalTime("c1", 40, nil, nil),
		caseWithSurgicalTime("c2", 42, nil, nil),
		caseWithSurgicalTime("c3", 46, nil, nil),
		caseWithSurgicalTime("c4", 50, nil, nil),
	}

	baselines := BuildBaselines(cases, []string{"surgical_time"})
	stat := baselines.Facility["surgical_time"]
	// Mean of the two middle values.
	assert.InDelta(t, 44.0, stat.Median, 1e-9)
}

func TestBuildBaselines_SampleStandardDeviation(t *testing.T) {
	cases := []*entities.SurgicalCase{
		caseWithSurgicalTime("c1", 40, nil, nil),
		caseWithSurgicalTime("c2", 50, nil, nil),
		caseWithSurgicalTime("c3", 60, nil, nil),
	}

	baselines := BuildBaselines(cases, []string{"surgical_time"})
	stat := baselines.Facility["surgical_time"]
	// n-1 denominator: variance (100+0+100)/2 = 100.
	assert.InDelta(t, 10.0, stat.StdDev, 1e-9)
}

func TestBuildBaselines_PopulatesNarrowAndBroadKeys(t *testing.T) {
	surgeon := strPtr("surg-1")
	procedure := strPtr("proc-9")

	var cases []*entities.SurgicalCase
	for i := 0; i < 3; i++ {
		cases = append(cases, caseWithSurgicalTime("c", 45, surgeon, procedure))
	}

	baselines := BuildBaselines(cases, []string{"surgical_time"})

	assert.Contains(t, baselines.Facility, "surgical_time")
	assert.Contains(t, baselines.Facility, "surgical_time:proc-9")
	assert.Contains(t, baselines.Personal, "surgical_time:surg-1")
	assert.Contains(t, baselines.Personal, "surgical_time:surg-1:proc-9")
}

func TestBuildBaselines_DiscardsNonPositiveValues(t *testing.T) {
	cases := []*entities.SurgicalCase{
		caseWithSurgicalTime("c1", 0, nil, nil),   // zero duration
		caseWithSurgicalTime("c2", -15, nil, nil), // closing before incision
		caseWithSurgicalTime("c3", 45, nil, nil),
		caseWithSurgicalTime("c4", 46, nil, nil),
		caseWithSurgicalTime("c5", 47, nil, nil),
	}

	baselines := BuildBaselines(cases, []string{"surgical_time"})
	stat, ok := baselines.Facility["surgical_time"]
	assert.True(t, ok)
	assert.Equal(t, 3, stat.Count)
}

func TestBuildBaselines_SkipsCrossCaseMetrics(t *testing.T) {
	cases := []*entities.SurgicalCase{
		caseWithSurgicalTime("c1", 45, nil, nil),
		caseWithSurgicalTime("c2", 45, nil, nil),
		caseWithSurgicalTime("c3", 45, nil, nil),
	}

	baselines := BuildBaselines(cases, []string{MetricTurnoverTime, MetricFCOTSDelay})
	assert.Empty(t, baselines.Facility)
	assert.Empty(t, baselines.Personal)
}

// turnoverSequence builds back-to-back cases in one room with the given gaps
// between patient_out and the next patient_in.
func turnoverSequence(room string, gaps ...float64) []*entities.SurgicalCase {
	var cases []*entities.SurgicalCase
	start := *at("07:00")
	for i := 0; i <= len(gaps); i++ {
		patientIn := start
		patientOut := patientIn.Add(60 * time.Minute)
		c := testCase(room+"-case-"+string(rune('a'+i)), entities.MilestoneMap{
			entities.MilestonePatientIn:  &patientIn,
			entities.MilestonePatientOut: &patientOut,
		})
		c.ORRoomID = room
		c.StartTime = patientIn.Format("15:04")
		cases = append(cases, c)
		if i < len(gaps) {
			start = patientOut.Add(time.Duration(gaps[i] * float64(time.Minute)))
		}
	}
	return cases
}

func TestBuildTurnoverBaseline_ValidGaps(t *testing.T) {
	cases := turnoverSequence("or-1", 20, 30, 40)

	stat := BuildTurnoverBaseline(cases)
	assert.NotNil(t, stat)
	assert.Equal(t, 3, stat.Count)
	assert.InDelta(t, 30.0, stat.Median, 1e-9)
}

func TestBuildTurnoverBaseline_FiltersBoundaryGaps(t *testing.T) {
	// 0, negative, and >= 180 minute gaps never contribute.
	cases := turnoverSequence("or-1", 0, -10, 180, 250, 25, 35)

	stat := BuildTurnoverBaseline(cases)
	assert.Nil(t, stat, "only two valid gaps remain, below the sample minimum")
}

func TestBuildTurnoverBaseline_InsufficientSamples(t *testing.T) {
	cases := turnoverSequence("or-1", 20, 30)
	assert.Nil(t, BuildTurnoverBaseline(cases))
}

func TestBuildTurnoverByCase_AttributesGapToFollowingCase(t *testing.T) {
	cases := turnoverSequence("or-1", 20, 45)

	turnovers := BuildTurnoverByCase(cases)
	assert.Len(t, turnovers, 2)
	assert.NotContains(t, turnovers, cases[0].ID, "the opening case has no preceding turnover")
	assert.InDelta(t, 20.0, turnovers[cases[1].ID], 1e-9)
	assert.InDelta(t, 45.0, turnovers[cases[2].ID], 1e-9)
}

func TestIdentifyFirstCases_PicksEarliestPerRoomDay(t *testing.T) {
	c1 := testCase("c1", entities.MilestoneMap{})
	c1.StartTime = "09:30"
	c2 := testCase("c2", entities.MilestoneMap{})
	c2.StartTime = "07:45"
	c3 := testCase("c3", entities.MilestoneMap{})
	c3.ORRoomID = "or-2"
	c3.StartTime = "10:00"
	c4 := testCase("c4", entities.MilestoneMap{})
	c4.ScheduledDate = "2025-03-11"
	c4.StartTime = "11:00"

	firstCases := IdentifyFirstCases([]*entities.SurgicalCase{c1, c2, c3, c4})

	assert.Len(t, firstCases, 3)
	assert.Contains(t, firstCases, "c2") // earliest in or-1 on testDay
	assert.Contains(t, firstCases, "c3") // only case in or-2
	assert.Contains(t, firstCases, "c4") // only case on the next day
	assert.NotContains(t, firstCases, "c1")
}
