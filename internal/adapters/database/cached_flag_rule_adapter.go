package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zura-health/orflow/backend/internal/domain/entities"
	"github.com/zura-health/orflow/backend/internal/domain/providers"
	"github.com/zura-health/orflow/backend/internal/domain/repositories"
	"github.com/zura-health/orflow/backend/internal/infrastructure/observability"
)

// CachedFlagRuleAdapter wraps a FlagRuleRepository with Redis caching. Rule
// sets change rarely relative to how often evaluation runs read them, so a
// short TTL keeps runs cheap without an invalidation protocol.
type CachedFlagRuleAdapter struct {
	repo       repositories.FlagRuleRepository
	cache      providers.CacheProvider
	ttlSeconds int
	metrics    *observability.Metrics
}

// NewCachedFlagRuleAdapter creates a caching decorator around a rule repository
func NewCachedFlagRuleAdapter(repo repositories.FlagRuleRepository, cache providers.CacheProvider, ttlSeconds int, metrics *observability.Metrics) repositories.FlagRuleRepository {
	return &CachedFlagRuleAdapter{
		repo:       repo,
		cache:      cache,
		ttlSeconds: ttlSeconds,
		metrics:    metrics,
	}
}

func enabledRulesKey(facilityID string) string {
	return fmt.Sprintf("flag_rules:enabled:%s", facilityID)
}

// ListEnabledByFacility returns enabled rules from cache when present,
// falling back to the database and repopulating the cache asynchronously.
func (a *CachedFlagRuleAdapter) ListEnabledByFacility(ctx context.Context, facilityID string) ([]*entities.FlagRule, error) {
	key := enabledRulesKey(facilityID)

	if cached, err := a.cache.Get(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("rule cache read failed")
	} else if cached != nil {
		var rules []*entities.FlagRule
		if err := json.Unmarshal(cached, &rules); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("discarding undecodable rule cache entry")
		} else {
			observability.RecordCacheHit(ctx, a.metrics, "flag_rules")
			return rules, nil
		}
	}

	observability.RecordCacheMiss(ctx, a.metrics, "flag_rules")

	rules, err := a.repo.ListEnabledByFacility(ctx, facilityID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(rules); err == nil {
		go func() {
			cacheCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := a.cache.Set(cacheCtx, key, data, a.ttlSeconds); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("rule cache write failed")
			}
		}()
	}

	return rules, nil
}
