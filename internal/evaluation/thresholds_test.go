package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zura-health/orflow/backend/internal/domain/entities"
)

func TestResolveThreshold_Absolute(t *testing.T) {
	rule := gtRule("r1", "surgical_time", entities.ThresholdAbsolute, 90)

	// The baseline is irrelevant, including a nil one.
	threshold, ok := ResolveThreshold(rule, nil)
	assert.True(t, ok)
	assert.InDelta(t, 90.0, threshold, 1e-9)

	threshold, ok = ResolveThreshold(rule, &BaselineStat{Median: 60, StdDev: 10, Count: 5})
	assert.True(t, ok)
	assert.InDelta(t, 90.0, threshold, 1e-9)
}

func TestResolveThreshold_MedianPlusSD(t *testing.T) {
	baseline := &BaselineStat{Median: 60, StdDev: 10, Count: 8}

	rule := gtRule("r1", "surgical_time", entities.ThresholdMedianPlusSD, 2)
	threshold, ok := ResolveThreshold(rule, baseline)
	assert.True(t, ok)
	assert.InDelta(t, 80.0, threshold, 1e-9)

	rule.Operator = entities.OperatorLessThan
	threshold, ok = ResolveThreshold(rule, baseline)
	assert.True(t, ok)
	assert.InDelta(t, 40.0, threshold, 1e-9)
}

func TestResolveThreshold_MedianPlusSDRequiresBaseline(t *testing.T) {
	rule := gtRule("r1", "surgical_time", entities.ThresholdMedianPlusSD, 2)
	_, ok := ResolveThreshold(rule, nil)
	assert.False(t, ok)
}

func TestResolveThreshold_PercentileIsInert(t *testing.T) {
	rule := gtRule("r1", "surgical_time", entities.ThresholdPercentile, 95)
	_, ok := ResolveThreshold(rule, &BaselineStat{Median: 60, StdDev: 10, Count: 5})
	assert.False(t, ok)
}

func TestCompareValue_BoundarySemantics(t *testing.T) {
	assert.False(t, CompareValue(10, 10, entities.OperatorGreaterThan))
	assert.True(t, CompareValue(10, 10, entities.OperatorGreaterThanOrEqual))
	assert.False(t, CompareValue(10, 10, entities.OperatorLessThan))
	assert.True(t, CompareValue(10, 10, entities.OperatorLessThanOrEqual))

	assert.True(t, CompareValue(10.1, 10, entities.OperatorGreaterThan))
	assert.True(t, CompareValue(9.9, 10, entities.OperatorLessThan))
}

func TestLookupBaseline_FacilityCascade(t *testing.T) {
	baselines := &FlagBaselines{
		Facility: map[string]BaselineStat{
			"surgical_time":        {Median: 50, Count: 20},
			"surgical_time:proc-1": {Median: 70, Count: 5},
		},
		Personal: map[string]BaselineStat{},
	}
	rule := gtRule("r1", "surgical_time", entities.ThresholdMedianPlusSD, 2)

	// Narrow key wins when the procedure is known.
	stat := LookupBaseline(baselines, rule, nil, strPtr("proc-1"))
	assert.NotNil(t, stat)
	assert.InDelta(t, 70.0, stat.Median, 1e-9)

	// Unknown procedure falls back to the broad key.
	stat = LookupBaseline(baselines, rule, nil, strPtr("proc-2"))
	assert.NotNil(t, stat)
	assert.InDelta(t, 50.0, stat.Median, 1e-9)

	stat = LookupBaseline(baselines, rule, nil, nil)
	assert.NotNil(t, stat)
	assert.InDelta(t, 50.0, stat.Median, 1e-9)
}

func TestLookupBaseline_PersonalCascadeNoCrossScopeFallback(t *testing.T) {
	baselines := &FlagBaselines{
		Facility: map[string]BaselineStat{
			"surgical_time": {Median: 50, Count: 200},
		},
		Personal: map[string]BaselineStat{
			"surgical_time:surg-1": {Median: 65, Count: 4},
		},
	}
	rule := gtRule("r1", "surgical_time", entities.ThresholdMedianPlusSD, 2)
	rule.ComparisonScope = entities.ScopePersonal

	// Personal narrow key is absent, broad personal key resolves.
	stat := LookupBaseline(baselines, rule, strPtr("surg-1"), strPtr("proc-1"))
	assert.NotNil(t, stat)
	assert.InDelta(t, 65.0, stat.Median, 1e-9)

	// A surgeon with no personal baseline never borrows the facility one.
	assert.Nil(t, LookupBaseline(baselines, rule, strPtr("surg-2"), nil))
	assert.Nil(t, LookupBaseline(baselines, rule, nil, nil))
}

func TestUnsupportedRules(t *testing.T) {
	percentile := gtRule("r1", "surgical_time", entities.ThresholdPercentile, 95)
	absolute := gtRule("r2", "surgical_time", entities.ThresholdAbsolute, 90)
	disabledPercentile := gtRule("r3", "surgical_time", entities.ThresholdPercentile, 99)
	disabledPercentile.IsEnabled = false

	unsupported := UnsupportedRules([]*entities.FlagRule{percentile, absolute, disabledPercentile})
	assert.Len(t, unsupported, 1)
	assert.Equal(t, "r1", unsupported[0].ID)
}
