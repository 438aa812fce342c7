package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/zura-health/orflow/backend/internal/infrastructure/clients/postgres"
	"github.com/zura-health/orflow/backend/pkg/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS surgical_cases (
	id                  TEXT PRIMARY KEY,
	facility_id         TEXT NOT NULL,
	or_room_id          TEXT NOT NULL,
	scheduled_date      DATE NOT NULL,
	start_time          TEXT NOT NULL,
	surgeon_id          TEXT,
	procedure_type_id   TEXT,
	patient_in_at       TIMESTAMPTZ,
	anesthesia_start_at TIMESTAMPTZ,
	incision_at         TIMESTAMPTZ,
	closing_at          TIMESTAMPTZ,
	anesthesia_end_at   TIMESTAMPTZ,
	patient_out_at      TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_cases_facility_date ON surgical_cases (facility_id, scheduled_date);

CREATE TABLE IF NOT EXISTS flag_rules (
	id                  TEXT PRIMARY KEY,
	facility_id         TEXT NOT NULL,
	name                TEXT NOT NULL,
	metric_name         TEXT NOT NULL,
	start_milestone     TEXT,
	end_milestone       TEXT,
	comparison_operator TEXT NOT NULL,
	threshold_type      TEXT NOT NULL,
	threshold_value     DOUBLE PRECISION NOT NULL,
	threshold_max       DOUBLE PRECISION,
	comparison_scope    TEXT NOT NULL,
	severity            TEXT NOT NULL,
	is_enabled          BOOLEAN NOT NULL DEFAULT TRUE,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_rules_facility_enabled ON flag_rules (facility_id, is_enabled);

CREATE TABLE IF NOT EXISTS case_flags (
	id               TEXT PRIMARY KEY,
	case_id          TEXT NOT NULL,
	facility_id      TEXT NOT NULL,
	flag_type        TEXT NOT NULL,
	flag_rule_id     TEXT,
	metric_value     DOUBLE PRECISION,
	threshold_value  DOUBLE PRECISION,
	comparison_scope TEXT,
	delay_type_id    TEXT,
	duration_minutes DOUBLE PRECISION,
	severity         TEXT NOT NULL,
	note             TEXT,
	created_by       TEXT,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_flags_facility_created ON case_flags (facility_id, created_at DESC);
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()

	if _, err := pgClient.DB().ExecContext(ctx, schema); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				case_flags,
				flag_rules,
				surgical_cases
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	db := goqu.New("postgres", pgClient.DB())
	facilityID := "demo-facility"

	// 1. Seed flag rules
	rules := []goqu.Record{
		{
			"id": uuid.New().String(), "facility_id": facilityID,
			"name": "Long surgical time", "metric_name": "surgical_time",
			"comparison_operator": "gt", "threshold_type": "median_plus_sd",
			"threshold_value": 2.0, "comparison_scope": "facility",
			"severity": "warning", "is_enabled": true,
		},
		{
			"id": uuid.New().String(), "facility_id": facilityID,
			"name": "Total case over 4 hours", "metric_name": "total_case_time",
			"comparison_operator": "gt", "threshold_type": "absolute",
			"threshold_value": 240.0, "comparison_scope": "facility",
			"severity": "critical", "is_enabled": true,
		},
		{
			"id": uuid.New().String(), "facility_id": facilityID,
			"name": "Slow room turnover", "metric_name": "turnover_time",
			"comparison_operator": "gt", "threshold_type": "median_plus_sd",
			"threshold_value": 1.5, "comparison_scope": "facility",
			"severity": "warning", "is_enabled": true,
		},
		{
			"id": uuid.New().String(), "facility_id": facilityID,
			"name": "First case started late", "metric_name": "fcots_delay",
			"comparison_operator": "gt", "threshold_type": "absolute",
			"threshold_value": 10.0, "comparison_scope": "facility",
			"severity": "info", "is_enabled": true,
		},
	}

	query, args, err := db.Insert("flag_rules").Rows(rules).ToSQL()
	if err != nil {
		log.Fatalf("Failed to build rule insert: %v", err)
	}
	if _, err := pgClient.DB().ExecContext(ctx, query, args...); err != nil {
		log.Printf("Failed to seed rules: %v", err)
	}

	// 2. Seed a demo operating day: two rooms, back-to-back cases
	day := time.Now().AddDate(0, 0, -1)
	date := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	surgeon := "demo-surgeon"

	type seedCase struct {
		room       string
		start      string
		inDelay    int
		durMinutes int
	}
	seedCases := []seedCase{
		{"or-1", "07:30", 4, 95},
		{"or-1", "09:30", 10, 110},
		{"or-1", "12:30", 2, 240},
		{"or-2", "07:30", 18, 60},
		{"or-2", "09:15", 5, 75},
	}

	var caseRecords []goqu.Record
	for _, sc := range seedCases {
		startClock, err := time.Parse("15:04", sc.start)
		if err != nil {
			log.Fatalf("Bad seed start time %q: %v", sc.start, err)
		}
		scheduledStart := date.Add(time.Duration(startClock.Hour())*time.Hour + time.Duration(startClock.Minute())*time.Minute)
		patientIn := scheduledStart.Add(time.Duration(sc.inDelay) * time.Minute)

		anesthesiaStart := patientIn.Add(8 * time.Minute)
		incision := patientIn.Add(20 * time.Minute)
		closing := incision.Add(time.Duration(sc.durMinutes) * time.Minute)
		anesthesiaEnd := closing.Add(6 * time.Minute)
		patientOut := closing.Add(12 * time.Minute)

		caseRecords = append(caseRecords, goqu.Record{
			"id":                  uuid.New().String(),
			"facility_id":         facilityID,
			"or_room_id":          sc.room,
			"scheduled_date":      date.Format("2006-01-02"),
			"start_time":          sc.start,
			"surgeon_id":          surgeon,
			"procedure_type_id":   "proc-general",
			"patient_in_at":       patientIn,
			"anesthesia_start_at": anesthesiaStart,
			"incision_at":         incision,
			"closing_at":          closing,
			"anesthesia_end_at":   anesthesiaEnd,
			"patient_out_at":      patientOut,
		})
	}

	query, args, err = db.Insert("surgical_cases").Rows(caseRecords).ToSQL()
	if err != nil {
		log.Fatalf("Failed to build case insert: %v", err)
	}
	if _, err := pgClient.DB().ExecContext(ctx, query, args...); err != nil {
		log.Printf("Failed to seed cases: %v", err)
	}

	log.Printf("Seeded %d rules and %d cases for facility %s on %s",
		len(rules), len(caseRecords), facilityID, date.Format("2006-01-02"))
}
