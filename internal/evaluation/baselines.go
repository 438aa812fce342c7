package evaluation

import (
	"math"
	"sort"

	"github.com/zura-health/orflow/backend/internal/domain/entities"
)

// BuildBaselines scans the historical case set once and accumulates raw metric
// values under every applicable key: facility-wide ("metric",
// "metric:procedure") and per-surgeon ("metric:surgeon",
// "metric:surgeon:procedure"). Both the broad and narrow key receive the value
// whenever a procedure id is known, so lookups can fall back narrow-to-broad
// within a scope.
//
// The cross-case metrics turnover_time and fcots_delay have dedicated builders
// and are skipped here. Values of zero or below are invalid data and never
// contribute. A key only appears in the result when it collected at least
// minBaselineSamples values.
func BuildBaselines(cases []*entities.SurgicalCase, metricNames []string) *FlagBaselines {
	facilityValues := make(map[string][]float64)
	personalValues := make(map[string][]float64)

	for _, c := range cases {
		if c == nil {
			continue
		}
		for _, metric := range metricNames {
			if metric == MetricTurnoverTime || metric == MetricFCOTSDelay {
				continue
			}
			pair, ok := builtinMetrics[metric]
			if !ok {
				continue
			}
			value, ok := minutesBetween(c.Milestones.Get(pair.Start), c.Milestones.Get(pair.End))
			if !ok || value <= 0 {
				continue
			}

			facilityValues[metric] = append(facilityValues[metric], value)
			if c.ProcedureTypeID != nil && *c.ProcedureTypeID != "" {
				key := facilityKey(metric, c.ProcedureTypeID)
				facilityValues[key] = append(facilityValues[key], value)
			}

			if c.SurgeonID != nil && *c.SurgeonID != "" {
				broad := personalKey(metric, *c.SurgeonID, nil)
				personalValues[broad] = append(personalValues[broad], value)
				if c.ProcedureTypeID != nil && *c.ProcedureTypeID != "" {
					narrow := personalKey(metric, *c.SurgeonID, c.ProcedureTypeID)
					personalValues[narrow] = append(personalValues[narrow], value)
				}
			}
		}
	}

	return &FlagBaselines{
		Facility: summarize(facilityValues),
		Personal: summarize(personalValues),
	}
}

// BuildTurnoverBaseline computes the facility-wide turnover baseline: cases
// are grouped by (scheduled date, room), ordered by start time, and the gap
// from one case's patient_out to the next case's patient_in is sampled. Gaps
// outside (0, 180) minutes are discarded. There is no per-surgeon turnover
// baseline. Returns nil with fewer than minBaselineSamples valid gaps.
func BuildTurnoverBaseline(cases []*entities.SurgicalCase) *BaselineStat {
	var gaps []float64
	for _, group := range groupByRoomDay(cases) {
		for i := 1; i < len(group); i++ {
			gap, ok := turnoverGap(group[i-1], group[i])
			if ok {
				gaps = append(gaps, gap)
			}
		}
	}

	if len(gaps) < minBaselineSamples {
		return nil
	}
	stat := newBaselineStat(gaps)
	return &stat
}

// BuildTurnoverByCase precomputes each case's preceding turnover gap in one
// pass per (room, date) group. The gap is attributed to the case it precedes,
// so a turnover rule flags the case whose setup ran long.
func BuildTurnoverByCase(cases []*entities.SurgicalCase) map[string]float64 {
	turnovers := make(map[string]float64)
	for _, group := range groupByRoomDay(cases) {
		for i := 1; i < len(group); i++ {
			if gap, ok := turnoverGap(group[i-1], group[i]); ok {
				turnovers[group[i].ID] = gap
			}
		}
	}
	return turnovers
}

// IdentifyFirstCases returns the ids of the cases opening each (room, date)
// group, selected by lexicographically smallest start time. Only these cases
// are eligible for FCOTS evaluation.
func IdentifyFirstCases(cases []*entities.SurgicalCase) map[string]struct{} {
	firstCases := make(map[string]struct{})
	for _, group := range groupByRoomDay(cases) {
		if len(group) > 0 {
			firstCases[group[0].ID] = struct{}{}
		}
	}
	return firstCases
}

// groupByRoomDay buckets cases by (scheduled date, room) and sorts each bucket
// by start time ascending. The sort is stable so equal start times keep input
// order and batch results stay deterministic.
func groupByRoomDay(cases []*entities.SurgicalCase) map[string][]*entities.SurgicalCase {
	groups := make(map[string][]*entities.SurgicalCase)
	for _, c := range cases {
		if c == nil || c.ScheduledDate == "" || c.ORRoomID == "" {
			continue
		}
		key := c.ScheduledDate + "|" + c.ORRoomID
		groups[key] = append(groups[key], c)
	}
	for _, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].StartTime < group[j].StartTime
		})
	}
	return groups
}

// turnoverGap returns next.patient_in - current.patient_out in minutes, valid
// only within the open interval (0, 180).
func turnoverGap(current, next *entities.SurgicalCase) (float64, bool) {
	gap, ok := minutesBetween(
		current.Milestones.Get(entities.MilestonePatientOut),
		next.Milestones.Get(entities.MilestonePatientIn),
	)
	if !ok || gap <= 0 || gap >= turnoverMaxMinutes {
		return 0, false
	}
	return gap, true
}

func summarize(valuesByKey map[string][]float64) map[string]BaselineStat {
	stats := make(map[string]BaselineStat, len(valuesByKey))
	for key, values := range valuesByKey {
		if len(values) < minBaselineSamples {
			continue
		}
		stats[key] = newBaselineStat(values)
	}
	return stats
}

func newBaselineStat(values []float64) BaselineStat {
	return BaselineStat{
		Median: median(values),
		StdDev: sampleStdDev(values),
		Count:  len(values),
	}
}

// median uses the arithmetic mean of the two middle values for even-length
// input.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// sampleStdDev uses the n-1 denominator; baseline sample sizes are typically
// small, so the sample formula is the fixed contract here.
func sampleStdDev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	var sqDiff float64
	for _, v := range values {
		d := v - mean
		sqDiff += d * d
	}
	return math.Sqrt(sqDiff / float64(n-1))
}
