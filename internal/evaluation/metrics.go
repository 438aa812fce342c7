package evaluation

import (
	"time"

	"github.com/zura-health/orflow/backend/internal/domain/entities"
)

// MilestonePair defines a duration metric as the gap between two milestones.
type MilestonePair struct {
	Start string
	End   string
}

// builtinMetrics is the canonical metric registry. The extractor and the
// baseline builder both read from this single map so the two sides can never
// drift apart.
var builtinMetrics = map[string]MilestonePair{
	"total_case_time":   {Start: entities.MilestonePatientIn, End: entities.MilestonePatientOut},
	"surgical_time":     {Start: entities.MilestoneIncision, End: entities.MilestoneClosing},
	"anesthesia_time":   {Start: entities.MilestoneAnesthesiaStart, End: entities.MilestoneAnesthesiaEnd},
	"pre_incision_time": {Start: entities.MilestonePatientIn, End: entities.MilestoneIncision},
	"emergence_time":    {Start: entities.MilestoneClosing, End: entities.MilestonePatientOut},
}

// BuiltinMetricPair returns the milestone pair backing a built-in metric.
func BuiltinMetricPair(metric string) (MilestonePair, bool) {
	pair, ok := builtinMetrics[metric]
	return pair, ok
}

// ExtractMetricValue computes a metric's value in minutes from a case's
// milestones. An explicit start/end milestone pair (rule-defined metric) takes
// precedence; otherwise the metric name is looked up in the built-in registry.
// fcots_delay is computed from the scheduled start instead of a milestone pair.
//
// The second return value is false whenever the metric cannot be evaluated
// (missing milestone, unknown metric, missing schedule). Missing data never
// panics and is never encoded as a zero value.
func ExtractMetricValue(milestones entities.MilestoneMap, metric string, startMilestone, endMilestone *string, caseData *entities.SurgicalCase) (float64, bool) {
	if startMilestone != nil && endMilestone != nil && *startMilestone != "" && *endMilestone != "" {
		return minutesBetween(milestones.Get(*startMilestone), milestones.Get(*endMilestone))
	}

	if metric == MetricFCOTSDelay {
		return extractFCOTSDelay(milestones, caseData)
	}

	pair, ok := builtinMetrics[metric]
	if !ok {
		return 0, false
	}
	return minutesBetween(milestones.Get(pair.Start), milestones.Get(pair.End))
}

// extractFCOTSDelay returns how many minutes the patient arrived after the
// scheduled start. Positive means late; zero or negative means on time or
// early.
func extractFCOTSDelay(milestones entities.MilestoneMap, caseData *entities.SurgicalCase) (float64, bool) {
	if caseData == nil {
		return 0, false
	}
	scheduled := caseData.ScheduledStart()
	patientIn := milestones.Get(entities.MilestonePatientIn)
	if scheduled == nil || patientIn == nil {
		return 0, false
	}
	return patientIn.Sub(*scheduled).Minutes(), true
}

func minutesBetween(start, end *time.Time) (float64, bool) {
	if start == nil || end == nil {
		return 0, false
	}
	return end.Sub(*start).Minutes(), true
}
