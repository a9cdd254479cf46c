package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"tournament-tracker/internal/api"
	"tournament-tracker/internal/cache"
	"tournament-tracker/internal/constants"
	"tournament-tracker/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Upstream is the slice of the PUBG client the engine needs.
type Upstream interface {
	ResolvePlayer(ctx context.Context, apiKey, name string) (*api.Player, error)
	PlayerByID(ctx context.Context, apiKey, accountID string) (*api.Player, error)
	TournamentMatchIDs(ctx context.Context, apiKey, tournamentID string) ([]string, error)
	Match(ctx context.Context, apiKey, matchID string) (*domain.MatchSummary, error)
}

// StatsService is the aggregation engine: it resolves identities, enumerates
// and fetches matches, and reduces them to tournament statistics, with every
// entry point memoized through the freshness cache.
type StatsService struct {
	pubg    Upstream
	cache   *cache.Cache
	scoring Scoring
	logger  zerolog.Logger
}

func NewStatsService(pubg Upstream, c *cache.Cache, scoring Scoring, logger zerolog.Logger) *StatsService {
	if scoring == nil {
		scoring = DefaultScoring
	}
	return &StatsService{pubg: pubg, cache: c, scoring: scoring, logger: logger}
}

// SummaryResult pairs fetched summaries with the ids that could not be
// fetched. Incomplete tournament data is expected, not fatal.
type SummaryResult struct {
	Summaries []domain.MatchSummary `json:"summaries"`
	Failed    []string              `json:"failed_match_ids"`
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return constants.DefaultMatchLimit
	}
	if limit > constants.MaxMatchWindow {
		return constants.MaxMatchWindow
	}
	return limit
}

// ResolveAccount maps an in-game name to its stable upstream account id.
// Lookups are transient; callers needing repeated resolution cache outside.
func (s *StatsService) ResolveAccount(ctx context.Context, apiKey, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: player name is required", domain.ErrBadRequest)
	}
	player, err := s.pubg.ResolvePlayer(ctx, apiKey, name)
	if err != nil {
		return "", err
	}
	return player.AccountID, nil
}

// FetchPlayerMatches lists recent match ids for a named player,
// most-recent-first, clamped to the upstream window.
func (s *StatsService) FetchPlayerMatches(ctx context.Context, apiKey, playerName string, limit int) ([]string, error) {
	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		return nil, fmt.Errorf("%w: player name is required", domain.ErrBadRequest)
	}
	limit = clampLimit(limit)

	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	key := cache.Key("player-matches", domain.PlayerScope([]string{playerName}), limit, false)
	return cache.GetOrCompute(ctx, s.cache, key, constants.MatchListCacheTTL, false, func(ctx context.Context) ([]string, error) {
		player, err := s.pubg.ResolvePlayer(ctx, apiKey, playerName)
		if err != nil {
			return nil, err
		}
		ids := player.MatchIDs
		if len(ids) > limit {
			ids = ids[:limit]
		}
		s.logger.Info().Str("player", playerName).Int("matches", len(ids)).Msg("player matches enumerated")
		return ids, nil
	})
}

// FetchMatchSummaries fetches summaries for an explicit id set, memoized.
// Per-id failures are reported in the result, never raised.
func (s *StatsService) FetchMatchSummaries(ctx context.Context, apiKey string, matchIDs []string) (*SummaryResult, error) {
	ids := normalizeList(matchIDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: at least one match id is required", domain.ErrBadRequest)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	key := cache.Key("match-summaries", domain.MatchIDScope(ids), len(ids), false)
	return cache.GetOrCompute(ctx, s.cache, key, constants.SummaryCacheTTL, false, func(ctx context.Context) (*SummaryResult, error) {
		summaries, failed := s.fetchMany(ctx, apiKey, ids)
		return &SummaryResult{Summaries: summaries, Failed: failed}, nil
	})
}

// AggregateTournament aggregates an upstream tournament's matches. Tournament
// matches are organizer-sanctioned, so no custom filter applies.
func (s *StatsService) AggregateTournament(ctx context.Context, apiKey, tournamentID string, limit int, fresh bool) (*domain.TournamentAggregate, error) {
	if strings.TrimSpace(tournamentID) == "" {
		return nil, fmt.Errorf("%w: tournament id is required", domain.ErrBadRequest)
	}
	scope := domain.TournamentScope(strings.TrimSpace(tournamentID))
	return s.aggregate(ctx, apiKey, "aggregate-tournament", scope, clampLimit(limit), fresh, false)
}

// AggregateCustomMatches resolves each player name, unions their recent
// matches, and aggregates with the custom filter unless non-custom matches
// are explicitly allowed.
func (s *StatsService) AggregateCustomMatches(ctx context.Context, apiKey string, playerNames []string, limit int, fresh, includeNonCustom bool) (*domain.TournamentAggregate, error) {
	names := normalizeList(playerNames)
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: at least one player name is required", domain.ErrBadRequest)
	}
	scope := domain.PlayerScope(names)
	return s.aggregate(ctx, apiKey, "aggregate-custom", scope, clampLimit(limit), fresh, !includeNonCustom)
}

// AggregateMatchIDs aggregates an explicit id set, clamped to limit.
func (s *StatsService) AggregateMatchIDs(ctx context.Context, apiKey string, matchIDs []string, limit int, fresh, onlyCustom bool) (*domain.TournamentAggregate, error) {
	ids := normalizeList(matchIDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: at least one match id is required", domain.ErrBadRequest)
	}
	scope := domain.MatchIDScope(ids)
	return s.aggregate(ctx, apiKey, "aggregate-match-ids", scope, clampLimit(limit), fresh, onlyCustom)
}

func (s *StatsService) aggregate(ctx context.Context, apiKey, op string, scope domain.Scope, limit int, fresh, onlyCustom bool) (*domain.TournamentAggregate, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	key := cache.Key(op, scope, limit, onlyCustom)
	return cache.GetOrCompute(ctx, s.cache, key, constants.AggregateCacheTTL, fresh, func(ctx context.Context) (*domain.TournamentAggregate, error) {
		ids, err := s.listMatchIDs(ctx, apiKey, scope, limit)
		if err != nil {
			s.logger.Error().Err(err).Str("scope", scope.Canonical()).Msg("match enumeration failed")
			return nil, err
		}

		summaries, failed := s.fetchMany(ctx, apiKey, ids)
		agg := Aggregate(scope, summaries, failed, limit, onlyCustom, s.scoring)

		s.logger.Info().
			Str("scope", scope.Canonical()).
			Int("matches", agg.MatchCount).
			Int("failed", len(agg.FailedMatchIDs)).
			Bool("only_custom", onlyCustom).
			Msg("aggregate computed")
		return agg, nil
	})
}

// listMatchIDs is the enumerator: it turns a scope into candidate match ids,
// preserving the upstream's most-recent-first ordering. Enumeration failures
// abort the request; there is no meaningful aggregate without a match set.
func (s *StatsService) listMatchIDs(ctx context.Context, apiKey string, scope domain.Scope, limit int) ([]string, error) {
	switch scope.Kind {
	case domain.ScopeTournament:
		ids, err := s.pubg.TournamentMatchIDs(ctx, apiKey, scope.TournamentID)
		if err != nil {
			return nil, err
		}
		if len(ids) > limit {
			ids = ids[:limit]
		}
		return ids, nil

	case domain.ScopeMatchIDs:
		// pass-through, no network call
		ids := scope.MatchIDs
		if len(ids) > limit {
			ids = ids[:limit]
		}
		return append([]string(nil), ids...), nil

	case domain.ScopePlayerNames:
		seen := make(map[string]bool)
		var union []string
		for _, name := range scope.PlayerNames {
			player, err := s.pubg.ResolvePlayer(ctx, apiKey, name)
			if err != nil {
				return nil, fmt.Errorf("resolving %q: %w", name, err)
			}
			ids := player.MatchIDs
			if len(ids) > limit {
				ids = ids[:limit]
			}
			for _, id := range ids {
				if !seen[id] {
					seen[id] = true
					union = append(union, id)
				}
			}
		}
		return union, nil
	}
	return nil, fmt.Errorf("%w: unsupported scope", domain.ErrBadRequest)
}

// fetchMany retrieves match summaries through a bounded worker pool. Fetches
// are independent: an id that fails lands in the failed list and the batch
// carries on. Results keep the requested id order regardless of which fetch
// completes first; the aggregate fold re-sorts by created_at itself.
func (s *StatsService) fetchMany(ctx context.Context, apiKey string, matchIDs []string) ([]domain.MatchSummary, []string) {
	ids := dedupe(matchIDs)
	results := make([]*domain.MatchSummary, len(ids))

	var mu sync.Mutex
	var failed []string

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(constants.FetchWorkers)

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(gCtx, constants.ExternalAPITimeout)
			defer cancel()

			summary, err := s.pubg.Match(fetchCtx, apiKey, id)
			if err != nil {
				s.logger.Warn().Err(err).Str("match_id", id).Msg("match fetch failed, degrading")
				mu.Lock()
				failed = append(failed, id)
				mu.Unlock()
				return nil
			}
			results[i] = summary
			return nil
		})
	}
	_ = g.Wait()

	var summaries []domain.MatchSummary
	for _, r := range results {
		if r == nil {
			continue
		}
		for i := range r.Participants {
			if pts := s.scoring(r.Participants[i].Placement); pts > 0 {
				r.Participants[i].Points = pts
			}
		}
		summaries = append(summaries, *r)
	}

	return summaries, failed
}

func normalizeList(values []string) []string {
	var out []string
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
