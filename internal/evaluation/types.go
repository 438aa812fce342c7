package evaluation

import "strings"

// Cross-case metrics handled outside the milestone-pair registry.
const (
	MetricTurnoverTime = "turnover_time"
	MetricFCOTSDelay   = "fcots_delay"
)

// minBaselineSamples is the minimum number of valid samples before a baseline
// is emitted. Below this the key is simply absent.
const minBaselineSamples = 3

// Turnover gaps outside the open interval (0, turnoverMaxMinutes) are
// discarded as noise or multi-day gaps.
const turnoverMaxMinutes = 180.0

// BaselineStat holds historical summary statistics for one baseline key.
type BaselineStat struct {
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Count  int     `json:"count"`
}

// FlagBaselines holds facility-wide and per-surgeon baselines, keyed by the
// composite strings produced by facilityKey and personalKey. Both maps only
// contain keys whose sample count reached minBaselineSamples.
type FlagBaselines struct {
	Facility map[string]BaselineStat
	Personal map[string]BaselineStat
}

// facilityKey builds "metric" or "metric:procedureID".
func facilityKey(metric string, procedureID *string) string {
	if procedureID == nil || *procedureID == "" {
		return metric
	}
	return metric + ":" + *procedureID
}

// personalKey builds "metric:surgeonID" or "metric:surgeonID:procedureID".
func personalKey(metric, surgeonID string, procedureID *string) string {
	parts := []string{metric, surgeonID}
	if procedureID != nil && *procedureID != "" {
		parts = append(parts, *procedureID)
	}
	return strings.Join(parts, ":")
}

// BatchContext is the read-only context shared by every per-case evaluation in
// one batch. It is built once, before any case is evaluated, and never mutated
// afterwards.
type BatchContext struct {
	Baselines        *FlagBaselines
	TurnoverBaseline *BaselineStat
	FirstCaseIDs     map[string]struct{}
	TurnoverByCase   map[string]float64
}

// TurnoverForCase returns the precomputed turnover gap preceding the case.
func (b *BatchContext) TurnoverForCase(caseID string) (float64, bool) {
	if b == nil || b.TurnoverByCase == nil {
		return 0, false
	}
	v, ok := b.TurnoverByCase[caseID]
	return v, ok
}

// IsFirstCase reports whether the case opens its (room, date) group.
func (b *BatchContext) IsFirstCase(caseID string) bool {
	if b == nil || b.FirstCaseIDs == nil {
		return false
	}
	_, ok := b.FirstCaseIDs[caseID]
	return ok
}
