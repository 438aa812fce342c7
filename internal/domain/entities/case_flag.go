package entities

import "time"

// FlagType distinguishes threshold flags raised by the engine from manually
// recorded delay flags.
type FlagType string

const (
	FlagTypeThreshold FlagType = "threshold"
	FlagTypeDelay     FlagType = "delay"
)

// CaseFlag records that a case violated a rule, including the observed value
// and the crossed threshold. Flags are value objects owned by the caller;
// persistence and deduplication happen outside the engine.
type CaseFlag struct {
	ID              string    `json:"id" db:"id"`
	CaseID          string    `json:"case_id" db:"case_id"`
	FacilityID      string    `json:"facility_id" db:"facility_id"`
	FlagType        FlagType  `json:"flag_type" db:"flag_type"`
	FlagRuleID      *string   `json:"flag_rule_id" db:"flag_rule_id"`
	MetricValue     *float64  `json:"metric_value" db:"metric_value"`
	ThresholdValue  *float64  `json:"threshold_value" db:"threshold_value"`
	ComparisonScope *string   `json:"comparison_scope" db:"comparison_scope"`
	DelayTypeID     *string   `json:"delay_type_id" db:"delay_type_id"`
	DurationMinutes *float64  `json:"duration_minutes" db:"duration_minutes"`
	Severity        string    `json:"severity" db:"severity"`
	Note            *string   `json:"note" db:"note"`
	CreatedBy       *string   `json:"created_by" db:"created_by"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}
