package commands

import (
	"github.com/wonny/kscreener/internal/external/ranking"
	"github.com/wonny/kscreener/pkg/config"
	"github.com/wonny/kscreener/pkg/httputil"
	"github.com/wonny/kscreener/pkg/logger"
	"github.com/wonny/kscreener/pkg/redis"
)

// newRankingClient loads config and wires the ranking service client.
// Redis is optional; a one-shot CLI run works without it.
func newRankingClient() (*config.Config, *logger.Logger, *ranking.Client, *redis.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)
	httpClient := httputil.New(cfg, log)

	redisClient, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, running without cache")
		redisClient = nil
	}

	var cache *redis.Cache
	if redisClient != nil && redisClient.Enabled() {
		cache = redis.NewCache(redisClient, "screener")
	}

	return cfg, log, ranking.NewClient(cfg, httpClient, log, cache), redisClient, nil
}
