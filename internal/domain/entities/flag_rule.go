package entities

// ComparisonOperator is the numeric comparison applied between a metric value
// and its resolved threshold.
type ComparisonOperator string

const (
	OperatorGreaterThan        ComparisonOperator = "gt"
	OperatorGreaterThanOrEqual ComparisonOperator = "gte"
	OperatorLessThan           ComparisonOperator = "lt"
	OperatorLessThanOrEqual    ComparisonOperator = "lte"
)

// IsValid checks if the operator is one of the defined constants.
func (o ComparisonOperator) IsValid() bool {
	switch o {
	case OperatorGreaterThan, OperatorGreaterThanOrEqual, OperatorLessThan, OperatorLessThanOrEqual:
		return true
	}
	return false
}

// ThresholdType selects how a rule's configured value becomes a concrete cutoff.
type ThresholdType string

const (
	// ThresholdAbsolute uses the configured value as the cutoff directly.
	ThresholdAbsolute ThresholdType = "absolute"

	// ThresholdMedianPlusSD treats the configured value as a sigma multiplier
	// over a baseline's median and standard deviation.
	ThresholdMedianPlusSD ThresholdType = "median_plus_sd"

	// ThresholdPercentile is parsed but not implemented; rules configured with
	// it never resolve a cutoff.
	ThresholdPercentile ThresholdType = "percentile"
)

// Supported reports whether the threshold type has an implementation.
func (t ThresholdType) Supported() bool {
	return t == ThresholdAbsolute || t == ThresholdMedianPlusSD
}

// ComparisonScope selects which baseline population a rule compares against.
type ComparisonScope string

const (
	ScopeFacility ComparisonScope = "facility"
	ScopePersonal ComparisonScope = "personal"
)

// FlagRule is a configured condition evaluated against every case in a batch.
type FlagRule struct {
	ID              string             `json:"id" db:"id"`
	FacilityID      string             `json:"facility_id" db:"facility_id"`
	Name            string             `json:"name" db:"name"`
	MetricName      string             `json:"metric_name" db:"metric_name"`
	StartMilestone  *string            `json:"start_milestone" db:"start_milestone"`
	EndMilestone    *string            `json:"end_milestone" db:"end_milestone"`
	Operator        ComparisonOperator `json:"comparison_operator" db:"comparison_operator"`
	ThresholdType   ThresholdType      `json:"threshold_type" db:"threshold_type"`
	ThresholdValue  float64            `json:"threshold_value" db:"threshold_value"`
	ThresholdMax    *float64           `json:"threshold_max" db:"threshold_max"` // reserved, unused by current strategies
	ComparisonScope ComparisonScope    `json:"comparison_scope" db:"comparison_scope"`
	Severity        string             `json:"severity" db:"severity"`
	IsEnabled       bool               `json:"is_enabled" db:"is_enabled"`
}
