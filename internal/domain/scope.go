package domain

import (
	"sort"
	"strings"
)

type ScopeKind int

const (
	ScopeTournament ScopeKind = iota
	ScopeMatchIDs
	ScopePlayerNames
)

// Scope identifies which matches an aggregate covers. Exactly one variant is
// populated, matching the Kind.
type Scope struct {
	Kind         ScopeKind
	TournamentID string
	MatchIDs     []string
	PlayerNames  []string
}

func TournamentScope(tournamentID string) Scope {
	return Scope{Kind: ScopeTournament, TournamentID: tournamentID}
}

func MatchIDScope(matchIDs []string) Scope {
	return Scope{Kind: ScopeMatchIDs, MatchIDs: matchIDs}
}

func PlayerScope(names []string) Scope {
	return Scope{Kind: ScopePlayerNames, PlayerNames: names}
}

// Canonical returns a deterministic string form of the scope, independent of
// element order and of player-name casing. Used for cache keys and for the
// Scope field on aggregates.
func (s Scope) Canonical() string {
	switch s.Kind {
	case ScopeTournament:
		return "tournament:" + s.TournamentID
	case ScopeMatchIDs:
		ids := make([]string, len(s.MatchIDs))
		copy(ids, s.MatchIDs)
		sort.Strings(ids)
		return "matches:" + strings.Join(ids, ",")
	case ScopePlayerNames:
		names := make([]string, len(s.PlayerNames))
		for i, n := range s.PlayerNames {
			names[i] = strings.ToLower(strings.TrimSpace(n))
		}
		sort.Strings(names)
		return "players:" + strings.Join(names, ",")
	}
	return "unknown"
}
