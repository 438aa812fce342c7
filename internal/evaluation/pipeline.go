package evaluation

import (
	"github.com/zura-health/orflow/backend/internal/domain/entities"
)

// EvaluateCasesBatch runs the full two-phase batch evaluation: phase one
// builds the baseline snapshot and cross-case context from the case set,
// phase two evaluates every case against that frozen context.
//
// The evaluation set doubles as its own baseline training set; there is no
// held-out window. Baselines are rebuilt from scratch on every call and are
// never cached across invocations, so repeated calls with identical inputs
// produce identical flag lists.
func EvaluateCasesBatch(cases []*entities.SurgicalCase, rules []*entities.FlagRule) []entities.CaseFlag {
	if len(cases) == 0 || len(rules) == 0 {
		return nil
	}

	metricNames, needTurnover, needFCOTS := collectMetrics(rules)
	if len(metricNames) == 0 {
		return nil
	}

	batchCtx := &BatchContext{
		Baselines: BuildBaselines(cases, metricNames),
	}

	// The grouping and sorting passes are only paid for when a rule needs them.
	if needTurnover {
		batchCtx.TurnoverBaseline = BuildTurnoverBaseline(cases)
		batchCtx.TurnoverByCase = BuildTurnoverByCase(cases)
	}
	if needFCOTS {
		batchCtx.FirstCaseIDs = IdentifyFirstCases(cases)
	}

	var flags []entities.CaseFlag
	for _, c := range cases {
		flags = append(flags, EvaluateCase(c, rules, batchCtx)...)
	}
	return flags
}

// collectMetrics returns the distinct metric names referenced by enabled
// rules, in first-seen order, along with whether any rule needs the turnover
// or first-case context.
func collectMetrics(rules []*entities.FlagRule) (metricNames []string, needTurnover, needFCOTS bool) {
	seen := make(map[string]struct{})
	for _, rule := range rules {
		if rule == nil || !rule.IsEnabled {
			continue
		}
		switch rule.MetricName {
		case MetricTurnoverTime:
			needTurnover = true
		case MetricFCOTSDelay:
			needFCOTS = true
		}
		if _, ok := seen[rule.MetricName]; ok {
			continue
		}
		seen[rule.MetricName] = struct{}{}
		metricNames = append(metricNames, rule.MetricName)
	}
	return metricNames, needTurnover, needFCOTS
}
