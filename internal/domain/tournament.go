package domain

import "strings"

// Tournament is the admin-managed record driving the live aggregate route.
// The per-tournament API key is never serialized to public consumers; the
// server strips it explicitly before responding.
type Tournament struct {
	TournamentID       string   `json:"tournament_id"`
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	BannerURL          string   `json:"banner_url"`
	StartDate          string   `json:"start_date"`
	EndDate            string   `json:"end_date"`
	Status             string   `json:"status"`
	RegistrationStatus string   `json:"registration_status"`
	Mode               string   `json:"mode"`
	MatchType          string   `json:"match_type"`
	Perspective        string   `json:"perspective"`
	PrizePool          float64  `json:"prize_pool"`
	RegistrationCharge float64  `json:"registration_charge"`
	Featured           bool     `json:"featured"`
	MaxSlots           int      `json:"max_slots"`
	Region             string   `json:"region"`
	Rules              string   `json:"rules"`
	ContactDiscord     string   `json:"contact_discord"`
	APIKeyRequired     bool     `json:"api_key_required"`
	TournamentAPIKey   string   `json:"tournament_api_key,omitempty"`
	APIProvider        string   `json:"api_provider"`
	PUBGTournamentID   string   `json:"pubg_tournament_id"`
	CustomMatchMode    bool     `json:"custom_match_mode"`
	AllowNonCustom     bool     `json:"allow_non_custom"`
	CustomPlayerNames  []string `json:"custom_player_names"`
	CustomMatchIDs     []string `json:"custom_match_ids"`
}

// SplitList normalizes a comma-separated list, trimming blanks. Admin input
// arrives either as an array or as one comma-joined string.
func SplitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
