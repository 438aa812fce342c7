package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zura-health/orflow/backend/internal/adapters/database"
	"github.com/zura-health/orflow/backend/internal/application/services"
	"github.com/zura-health/orflow/backend/internal/infrastructure/clients/postgres"
	"github.com/zura-health/orflow/backend/internal/infrastructure/observability"
	"github.com/zura-health/orflow/backend/pkg/config"
)

// One-shot batch evaluation over a facility's date range. Intended to be run
// from cron or a job scheduler after each operating day closes.
func main() {
	facilityID := flag.String("facility", "", "facility id to evaluate (required)")
	from := flag.String("from", "", "range start, YYYY-MM-DD (default: yesterday)")
	to := flag.String("to", "", "range end, YYYY-MM-DD (default: yesterday)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	if *from == "" {
		*from = yesterday
	}
	if *to == "" {
		*to = yesterday
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pgClient.Close()

	caseAdapter := database.NewCaseAdapter(pgClient)
	ruleAdapter := database.NewFlagRuleAdapter(pgClient)
	caseFlagAdapter := database.NewCaseFlagAdapter(pgClient)

	evaluationService := services.NewFlagEvaluationService(caseAdapter, ruleAdapter, caseFlagAdapter, nil)

	summary, err := evaluationService.EvaluateFacilityRange(context.Background(), *facilityID, *from, *to)
	if err != nil {
		log.Fatal().Err(err).Msg("evaluation failed")
	}

	// Output results as JSON
	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(out))
}
