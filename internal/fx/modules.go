package fx

import (
	"tournament-tracker/internal/api"
	"tournament-tracker/internal/auth"
	"tournament-tracker/internal/cache"
	"tournament-tracker/internal/config"
	"tournament-tracker/internal/logger"
	"tournament-tracker/internal/metrics"
	"tournament-tracker/internal/ratelimit"
	"tournament-tracker/internal/server"
	"tournament-tracker/internal/service"
	"tournament-tracker/internal/store"

	"go.uber.org/fx"
)

func provideUpstream(client *api.Client) service.Upstream {
	return client
}

func provideEngine(stats *service.StatsService) server.StatsEngine {
	return stats
}

func provideScoring() service.Scoring {
	return service.DefaultScoring
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(metrics.New),
	// storage
	fx.Provide(store.NewDB),
	fx.Provide(store.New),
	// upstream
	fx.Provide(ratelimit.New),
	fx.Provide(api.NewClient),
	fx.Provide(provideUpstream),
	// engine
	fx.Provide(cache.New),
	fx.Provide(provideScoring),
	fx.Provide(service.NewStatsService),
	fx.Provide(provideEngine),
	// boundary
	fx.Provide(auth.New),
	fx.Provide(server.New),
)
