package evaluation

import (
	"math"

	"github.com/rs/zerolog/log"
	"github.com/zura-health/orflow/backend/internal/domain/entities"
)

// EvaluateCase evaluates one case against every enabled rule and returns the
// flags it raised, zero or more. There is no early exit: each matching rule
// produces its own flag.
//
// A case without both patient_in and patient_out cannot be meaningfully
// evaluated against any rule and returns nothing. All other insufficient-data
// outcomes (missing milestone, undersampled baseline, unresolved threshold)
// collapse to a quiet per-rule skip, never an error.
func EvaluateCase(caseData *entities.SurgicalCase, rules []*entities.FlagRule, batchCtx *BatchContext) []entities.CaseFlag {
	if caseData == nil || batchCtx == nil {
		return nil
	}
	if !caseData.Milestones.Has(entities.MilestonePatientIn) || !caseData.Milestones.Has(entities.MilestonePatientOut) {
		return nil
	}

	var flags []entities.CaseFlag
	for _, rule := range rules {
		if rule == nil || !rule.IsEnabled {
			continue
		}

		switch rule.MetricName {
		case MetricTurnoverTime:
			turnover, ok := batchCtx.TurnoverForCase(caseData.ID)
			if !ok || turnover <= 0 || batchCtx.TurnoverBaseline == nil {
				continue
			}
			threshold, ok := ResolveThreshold(rule, batchCtx.TurnoverBaseline)
			if !ok {
				continue
			}
			if CompareValue(turnover, threshold, rule.Operator) {
				flags = append(flags, newThresholdFlag(caseData, rule, turnover, threshold))
			}

		case MetricFCOTSDelay:
			if !batchCtx.IsFirstCase(caseData.ID) {
				continue
			}
			delay, ok := ExtractMetricValue(caseData.Milestones, MetricFCOTSDelay, nil, nil, caseData)
			if !ok {
				continue
			}
			// Scheduling variance is never baselined: the configured value is
			// always the cutoff, whatever strategy the rule declares.
			if CompareValue(delay, rule.ThresholdValue, rule.Operator) {
				flags = append(flags, newThresholdFlag(caseData, rule, delay, rule.ThresholdValue))
			}

		default:
			value, ok := ExtractMetricValue(caseData.Milestones, rule.MetricName, rule.StartMilestone, rule.EndMilestone, caseData)
			if !ok || value <= 0 {
				continue
			}

			var baseline *BaselineStat
			if rule.ThresholdType == entities.ThresholdMedianPlusSD {
				baseline = LookupBaseline(batchCtx.Baselines, rule, caseData.SurgeonID, caseData.ProcedureTypeID)
				if baseline == nil {
					log.Debug().
						Str("rule_id", rule.ID).
						Str("case_id", caseData.ID).
						Str("metric", rule.MetricName).
						Str("scope", string(rule.ComparisonScope)).
						Msg("not enough baseline samples yet, skipping rule")
					continue
				}
			}

			threshold, ok := ResolveThreshold(rule, baseline)
			if !ok {
				continue
			}
			if CompareValue(value, threshold, rule.Operator) {
				flags = append(flags, newThresholdFlag(caseData, rule, value, threshold))
			}
		}
	}
	return flags
}

// newThresholdFlag builds the output flag for a matched rule. Comparison runs
// at full precision; values are rounded to one decimal only here, at the point
// of emission.
func newThresholdFlag(caseData *entities.SurgicalCase, rule *entities.FlagRule, value, threshold float64) entities.CaseFlag {
	ruleID := rule.ID
	metricValue := roundTenth(value)
	thresholdValue := roundTenth(threshold)
	scope := string(rule.ComparisonScope)

	return entities.CaseFlag{
		CaseID:          caseData.ID,
		FacilityID:      caseData.FacilityID,
		FlagType:        entities.FlagTypeThreshold,
		FlagRuleID:      &ruleID,
		MetricValue:     &metricValue,
		ThresholdValue:  &thresholdValue,
		ComparisonScope: &scope,
		Severity:        rule.Severity,
	}
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
