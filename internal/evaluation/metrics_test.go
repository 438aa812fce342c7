package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zura-health/orflow/backend/internal/domain/entities"
)

func TestExtractMetricValue_BuiltinMetric(t *testing.T) {
	milestones := entities.MilestoneMap{
		entities.MilestoneIncision: at("09:00"),
		entities.MilestoneClosing:  at("09:45"),
	}

	value, ok := ExtractMetricValue(milestones, "surgical_time", nil, nil, nil)
	assert.True(t, ok)
	assert.InDelta(t, 45.0, value, 1e-9)
}

func TestExtractMetricValue_ExplicitPairTakesPrecedence(t *testing.T) {
	milestones := entities.MilestoneMap{
		entities.MilestoneIncision:  at("09:00"),
		entities.MilestoneClosing:   at("09:45"),
		entities.MilestonePatientIn: at("08:40"),
	}

	// A rule-defined pair overrides whatever the metric name would resolve to.
	value, ok := ExtractMetricValue(milestones, "surgical_time", strPtr(entities.MilestonePatientIn), strPtr(entities.MilestoneIncision), nil)
	assert.True(t, ok)
	assert.InDelta(t, 20.0, value, 1e-9)
}

func TestExtractMetricValue_MissingMilestone(t *testing.T) {
	milestones := entities.MilestoneMap{
		entities.MilestoneIncision: at("09:00"),
		// closing never recorded
	}

	_, ok := ExtractMetricValue(milestones, "surgical_time", nil, nil, nil)
	assert.False(t, ok)

	// Same for an explicit pair with a nil timestamp.
	_, ok = ExtractMetricValue(milestones, "anything", strPtr(entities.MilestoneIncision), strPtr(entities.MilestoneClosing), nil)
	assert.False(t, ok)
}

func TestExtractMetricValue_UnknownMetric(t *testing.T) {
	milestones := entities.MilestoneMap{
		entities.MilestoneIncision: at("09:00"),
	}

	_, ok := ExtractMetricValue(milestones, "no_such_metric", nil, nil, nil)
	assert.False(t, ok)
}

func TestExtractMetricValue_FCOTSLateStart(t *testing.T) {
	c := testCase("c1", entities.MilestoneMap{
		entities.MilestonePatientIn: at("08:12"),
	})

	delay, ok := ExtractMetricValue(c.Milestones, MetricFCOTSDelay, nil, nil, c)
	assert.True(t, ok)
	assert.InDelta(t, 12.0, delay, 1e-9)
}

func TestExtractMetricValue_FCOTSEarlyStartIsNegative(t *testing.T) {
	c := testCase("c1", entities.MilestoneMap{
		entities.MilestonePatientIn: at("07:55"),
	})

	delay, ok := ExtractMetricValue(c.Milestones, MetricFCOTSDelay, nil, nil, c)
	assert.True(t, ok)
	assert.InDelta(t, -5.0, delay, 1e-9)
}

func TestExtractMetricValue_FCOTSMissingSchedule(t *testing.T) {
	c := testCase("c1", entities.MilestoneMap{
		entities.MilestonePatientIn: at("08:12"),
	})
	c.StartTime = ""

	_, ok := ExtractMetricValue(c.Milestones, MetricFCOTSDelay, nil, nil, c)
	assert.False(t, ok)
}

func TestExtractMetricValue_FCOTSMissingPatientIn(t *testing.T) {
	c := testCase("c1", entities.MilestoneMap{})

	_, ok := ExtractMetricValue(c.Milestones, MetricFCOTSDelay, nil, nil, c)
	assert.False(t, ok)
}

func TestBuiltinMetricPair_SharedRegistry(t *testing.T) {
	pair, ok := BuiltinMetricPair("total_case_time")
	assert.True(t, ok)
	assert.Equal(t, entities.MilestonePatientIn, pair.Start)
	assert.Equal(t, entities.MilestonePatientOut, pair.End)

	_, ok = BuiltinMetricPair("turnover_time")
	assert.False(t, ok)
}
