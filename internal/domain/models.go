package domain

import (
	"time"
)

// MatchSummary is the engine's view of one upstream match. Matches are
// historical records and never mutated after fetch.
type MatchSummary struct {
	MatchID       string            `json:"match_id"`
	CreatedAt     time.Time         `json:"created_at"`
	MapName       string            `json:"map"`
	GameMode      string            `json:"game_mode"`
	IsCustomMatch bool              `json:"is_custom_match"`
	Participants  []ParticipantStat `json:"participants"`
}

type ParticipantStat struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name,omitempty"`

	// empty in solo modes
	TeamID string `json:"team_id,omitempty"`

	Kills     int `json:"kills"`
	Placement int `json:"placement"`
	Points    int `json:"points"`
}

// Totals is a running per-team or per-player tally.
type Totals struct {
	Kills          int `json:"kills"`
	Points         int `json:"points"`
	MatchesCounted int `json:"matches_counted"`
}

// TournamentAggregate is the reduced result of folding a match set. It is
// always recomputed whole, never patched in place.
type TournamentAggregate struct {
	Scope          string            `json:"scope"`
	Limit          int               `json:"limit"`
	OnlyCustom     bool              `json:"only_custom"`
	TeamTotals     map[string]Totals `json:"team_totals"`
	PlayerTotals   map[string]Totals `json:"player_totals"`
	FailedMatchIDs []string          `json:"failed_match_ids"`
	MatchCount     int               `json:"match_count"`
	GeneratedAt    time.Time         `json:"generated_at"`
}
