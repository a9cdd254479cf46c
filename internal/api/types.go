package api

import (
	"encoding/json"
	"time"
)

// Wire types for the PUBG API's JSON:API envelope. Only the fields the
// engine consumes are mapped.

type resourceRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type playerData struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	Attributes struct {
		Name    string `json:"name"`
		ShardID string `json:"shardId"`
	} `json:"attributes"`
	Relationships struct {
		Matches struct {
			Data []resourceRef `json:"data"`
		} `json:"matches"`
	} `json:"relationships"`
}

type playersResponse struct {
	Data []playerData `json:"data"`
}

type playerResponse struct {
	Data playerData `json:"data"`
}

type tournamentResponse struct {
	Data struct {
		Type       string `json:"type"`
		ID         string `json:"id"`
		Attributes struct {
			CreatedAt time.Time `json:"createdAt"`
		} `json:"attributes"`
	} `json:"data"`
	Included []resourceRef `json:"included"`
}

type matchResponse struct {
	Data struct {
		Type       string `json:"type"`
		ID         string `json:"id"`
		Attributes struct {
			CreatedAt     time.Time `json:"createdAt"`
			MapName       string    `json:"mapName"`
			GameMode      string    `json:"gameMode"`
			IsCustomMatch bool      `json:"isCustomMatch"`
			Duration      int       `json:"duration"`
			ShardID       string    `json:"shardId"`
		} `json:"attributes"`
	} `json:"data"`
	Included []json.RawMessage `json:"included"`
}

// includedHeader is the first decoding pass over an included[] element; the
// type field decides the second pass.
type includedHeader struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type participantItem struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	Attributes struct {
		Stats struct {
			Kills    int    `json:"kills"`
			WinPlace int    `json:"winPlace"`
			PlayerID string `json:"playerId"`
			Name     string `json:"name"`
		} `json:"stats"`
	} `json:"attributes"`
}

type rosterItem struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	Attributes struct {
		Stats struct {
			Rank   int `json:"rank"`
			TeamID int `json:"teamId"`
		} `json:"stats"`
		Won string `json:"won"`
	} `json:"attributes"`
	Relationships struct {
		Participants struct {
			Data []resourceRef `json:"data"`
		} `json:"participants"`
	} `json:"relationships"`
}
