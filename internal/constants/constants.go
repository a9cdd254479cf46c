package constants

import "time"

const (
	// AggregateCacheTTL is the default staleness window for computed
	// aggregates; SummaryCacheTTL covers raw match-summary lists.
	AggregateCacheTTL = 5 * time.Minute
	SummaryCacheTTL   = 10 * time.Minute
	MatchListCacheTTL = 2 * time.Minute
)

const (
	ExternalAPITimeout = 10 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	// MaxMatchWindow is the upstream ceiling on enumerated matches per
	// account; requests beyond it are truncated, not rejected.
	MaxMatchWindow    = 60
	DefaultMatchLimit = 12
	FetchWorkers      = 4
)

const (
	MaxInFlightRequests = 8
	RetryMaxAttempts    = 4
	RetryBaseDelay      = 500 * time.Millisecond
	RetryJitter         = 100 * time.Millisecond
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
	AdminTokenTTL   = 12 * time.Hour
)
