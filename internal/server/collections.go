package server

import (
	"fmt"
	"math/rand"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// collectionSpec describes one admin-managed record collection: its id field
// and how fresh ids are minted.
type collectionSpec struct {
	name    string
	idField string
	newID   func() (string, error)
	// defaults fills absent fields on create
	defaults func(record map[string]any)
}

// makeID mints the short human-facing ids the platform uses for players and
// teams (prefix plus five digits).
func makeID(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, 10000+rand.Intn(90000))
}

func nanoID(size int) func() (string, error) {
	return func() (string, error) {
		return gonanoid.New(size)
	}
}

var publicCollections = []struct {
	route string
	name  string
}{
	{route: "matches", name: "matches"},
	{route: "team-stats", name: "team_stats"},
	{route: "player-stats", name: "player_stats"},
	{route: "winners", name: "winners"},
	{route: "announcements", name: "announcements"},
	{route: "players", name: "players"},
	{route: "teams", name: "teams"},
	{route: "upcoming-matches", name: "upcoming_matches"},
}

var adminCollections = []collectionSpec{
	{
		name:    "players",
		idField: "player_id",
		newID:   func() (string, error) { return makeID("PE"), nil },
		defaults: func(record map[string]any) {
			setDefault(record, "pubg_ingame_name", "")
			setDefault(record, "profile_pic_url", "")
			setDefault(record, "email", "")
			setDefault(record, "region", "")
			setDefault(record, "notes", "")
		},
	},
	{
		name:    "teams",
		idField: "team_id",
		newID:   func() (string, error) { return makeID("TE"), nil },
		defaults: func(record map[string]any) {
			if _, ok := record["team_key"]; !ok {
				if key, err := gonanoid.New(12); err == nil {
					record["team_key"] = key
				}
			}
			setDefault(record, "team_logo_url", "")
			setDefault(record, "player_ids", []any{})
			setDefault(record, "discord_contact", "")
			setDefault(record, "region", "")
			setDefault(record, "notes", "")
		},
	},
	{
		name:    "matches",
		idField: "match_id",
		newID:   nanoID(10),
		defaults: func(record map[string]any) {
			setDefault(record, "teams", []any{})
			setDefault(record, "result_summary", "")
			setDefault(record, "winner", "")
			setDefault(record, "placement", []any{})
		},
	},
	{
		name:    "participants",
		idField: "participant_id",
		newID:   nanoID(10),
		defaults: func(record map[string]any) {
			setDefault(record, "status", "pending")
			setDefault(record, "payment_status", "unpaid")
			setDefault(record, "notes", "")
		},
	},
	{
		name:    "winners",
		idField: "winner_id",
		newID:   nanoID(10),
		defaults: func(record map[string]any) {
			setDefault(record, "by_points", nil)
			setDefault(record, "most_kills", nil)
		},
	},
	{
		name:    "announcements",
		idField: "announcement_id",
		newID:   nanoID(10),
		defaults: func(record map[string]any) {
			setDefault(record, "type", "notice")
			setDefault(record, "importance", "medium")
		},
	},
}

func setDefault(record map[string]any, key string, value any) {
	if _, ok := record[key]; !ok {
		record[key] = value
	}
}
