package service

import (
	"sort"
	"time"

	"tournament-tracker/internal/domain"
)

// Aggregate folds match summaries into per-team and per-player totals. The
// fold is pure: identical inputs always produce identical totals. Summaries
// are reduced most-recent-first so the result does not depend on fetch
// completion order.
func Aggregate(scope domain.Scope, summaries []domain.MatchSummary, failed []string, limit int, onlyCustom bool, score Scoring) *domain.TournamentAggregate {
	sorted := make([]domain.MatchSummary, len(summaries))
	copy(sorted, summaries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].MatchID < sorted[j].MatchID
	})

	agg := &domain.TournamentAggregate{
		Scope:          scope.Canonical(),
		Limit:          limit,
		OnlyCustom:     onlyCustom,
		TeamTotals:     make(map[string]domain.Totals),
		PlayerTotals:   make(map[string]domain.Totals),
		FailedMatchIDs: append([]string{}, failed...),
		GeneratedAt:    time.Now().UTC(),
	}

	for _, match := range sorted {
		if onlyCustom && !match.IsCustomMatch {
			continue
		}
		agg.MatchCount++

		teamCounted := make(map[string]bool)
		for _, p := range match.Participants {
			points := score(p.Placement)
			if points < 0 {
				points = 0
			}

			player := agg.PlayerTotals[p.AccountID]
			player.Kills += p.Kills
			player.Points += points
			player.MatchesCounted++
			agg.PlayerTotals[p.AccountID] = player

			if p.TeamID == "" {
				continue
			}
			team := agg.TeamTotals[p.TeamID]
			team.Kills += p.Kills
			team.Points += points
			if !teamCounted[p.TeamID] {
				team.MatchesCounted++
				teamCounted[p.TeamID] = true
			}
			agg.TeamTotals[p.TeamID] = team
		}
	}

	return agg
}
