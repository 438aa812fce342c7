package evaluation

import (
	"github.com/zura-health/orflow/backend/internal/domain/entities"
)

// ResolveThreshold converts a rule's configured strategy plus an optional
// baseline into a concrete numeric cutoff.
//
// absolute returns the configured value unchanged; the baseline is irrelevant.
// median_plus_sd treats the configured value as a sigma multiplier: the cutoff
// sits above the median for gt/gte rules and below it for lt/lte rules, and
// requires a baseline. percentile is parsed but has no implementation; rules
// using it never resolve (callers warn once at rule ingestion, see
// UnsupportedRules).
func ResolveThreshold(rule *entities.FlagRule, baseline *BaselineStat) (float64, bool) {
	switch rule.ThresholdType {
	case entities.ThresholdAbsolute:
		return rule.ThresholdValue, true

	case entities.ThresholdMedianPlusSD:
		if baseline == nil {
			return 0, false
		}
		offset := rule.ThresholdValue * baseline.StdDev
		switch rule.Operator {
		case entities.OperatorLessThan, entities.OperatorLessThanOrEqual:
			return baseline.Median - offset, true
		default:
			return baseline.Median + offset, true
		}

	default:
		return 0, false
	}
}

// LookupBaseline resolves the baseline for a rule via a narrow-to-broad
// cascade within the rule's scope. Personal rules try
// metric:surgeon:procedure, then metric:surgeon; facility rules try
// metric:procedure, then metric. An insufficiently sampled personal baseline
// never borrows facility data, and vice versa.
func LookupBaseline(baselines *FlagBaselines, rule *entities.FlagRule, surgeonID, procedureID *string) *BaselineStat {
	if baselines == nil {
		return nil
	}

	if rule.ComparisonScope == entities.ScopePersonal {
		if surgeonID == nil || *surgeonID == "" {
			return nil
		}
		if procedureID != nil && *procedureID != "" {
			if stat, ok := baselines.Personal[personalKey(rule.MetricName, *surgeonID, procedureID)]; ok {
				return &stat
			}
		}
		if stat, ok := baselines.Personal[personalKey(rule.MetricName, *surgeonID, nil)]; ok {
			return &stat
		}
		return nil
	}

	if procedureID != nil && *procedureID != "" {
		if stat, ok := baselines.Facility[facilityKey(rule.MetricName, procedureID)]; ok {
			return &stat
		}
	}
	if stat, ok := baselines.Facility[facilityKey(rule.MetricName, nil)]; ok {
		return &stat
	}
	return nil
}

// CompareValue applies strict numeric comparison semantics with no tolerance.
func CompareValue(actual, threshold float64, operator entities.ComparisonOperator) bool {
	switch operator {
	case entities.OperatorGreaterThan:
		return actual > threshold
	case entities.OperatorGreaterThanOrEqual:
		return actual >= threshold
	case entities.OperatorLessThan:
		return actual < threshold
	case entities.OperatorLessThanOrEqual:
		return actual <= threshold
	}
	return false
}

// UnsupportedRules returns the enabled rules whose threshold strategy has no
// implementation. Callers should surface these once when rules are loaded;
// during evaluation such rules are skipped quietly.
func UnsupportedRules(rules []*entities.FlagRule) []*entities.FlagRule {
	var unsupported []*entities.FlagRule
	for _, rule := range rules {
		if rule == nil || !rule.IsEnabled {
			continue
		}
		if !rule.ThresholdType.Supported() {
			unsupported = append(unsupported, rule)
		}
	}
	return unsupported
}
