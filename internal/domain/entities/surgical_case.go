package entities

import (
	"time"
)

// Canonical milestone names recorded during a case's lifecycle.
const (
	MilestonePatientIn       = "patient_in"
	MilestoneAnesthesiaStart = "anesthesia_start"
	MilestoneIncision        = "incision"
	MilestoneClosing         = "closing"
	MilestoneAnesthesiaEnd   = "anesthesia_end"
	MilestonePatientOut      = "patient_out"
)

// MilestoneMap maps a milestone name to its recorded timestamp, or nil when
// the milestone was never recorded for the case.
type MilestoneMap map[string]*time.Time

// Get returns the timestamp for a milestone, or nil when absent or unrecorded.
func (m MilestoneMap) Get(name string) *time.Time {
	if m == nil {
		return nil
	}
	return m[name]
}

// Has reports whether the milestone has a recorded timestamp.
func (m MilestoneMap) Has(name string) bool {
	return m.Get(name) != nil
}

// SurgicalCase is a scheduled case together with its resolved milestones.
// It is read-only input to the flag engine.
type SurgicalCase struct {
	ID              string       `json:"id" db:"id"`
	FacilityID      string       `json:"facility_id" db:"facility_id"`
	ORRoomID        string       `json:"or_room_id" db:"or_room_id"`
	ScheduledDate   string       `json:"scheduled_date" db:"scheduled_date"` // YYYY-MM-DD
	StartTime       string       `json:"start_time" db:"start_time"`         // HH:MM, sorts lexicographically
	SurgeonID       *string      `json:"surgeon_id" db:"surgeon_id"`
	ProcedureTypeID *string      `json:"procedure_type_id" db:"procedure_type_id"`
	Milestones      MilestoneMap `json:"milestones"`
}

// ScheduledStart combines the scheduled date and start time into a single
// instant. Returns nil when either part is missing or malformed.
func (c *SurgicalCase) ScheduledStart() *time.Time {
	if c.ScheduledDate == "" || c.StartTime == "" {
		return nil
	}
	ts, err := time.Parse("2006-01-02 15:04", c.ScheduledDate+" "+c.StartTime)
	if err != nil {
		// Some sources record seconds on the start time.
		ts, err = time.Parse("2006-01-02 15:04:05", c.ScheduledDate+" "+c.StartTime)
		if err != nil {
			return nil
		}
	}
	return &ts
}
