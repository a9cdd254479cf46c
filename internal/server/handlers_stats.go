package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"tournament-tracker/internal/constants"
	"tournament-tracker/internal/domain"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

type playerMatchesResponse struct {
	Player  string   `json:"player"`
	Matches []string `json:"matches"`
}

type playerMatchesMetaResponse struct {
	Player  string                `json:"player"`
	Matches []domain.MatchSummary `json:"matches"`
	Meta    struct {
		LimitedTo  int  `json:"limited_to"`
		OnlyCustom bool `json:"only_custom"`
	} `json:"meta"`
}

func (s *Server) handlePlayerMatches(w http.ResponseWriter, r *http.Request) {
	apiKey := s.cfg.PUBGAPIKey
	if apiKey == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "PUBG API key not configured"})
		return
	}
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Player name is required"})
		return
	}

	limit := queryInt(r, "limit", 50)
	matchIDs, err := s.stats.FetchPlayerMatches(r.Context(), apiKey, name, limit)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	if !queryBool(r, "includeMeta") {
		s.writeJSON(w, http.StatusOK, playerMatchesResponse{Player: name, Matches: matchIDs})
		return
	}

	metaLimit := len(matchIDs)
	if metaLimit > 50 {
		metaLimit = 50
	}
	onlyCustom := queryBool(r, "onlyCustom")

	resp := playerMatchesMetaResponse{Player: name, Matches: []domain.MatchSummary{}}
	resp.Meta.LimitedTo = metaLimit
	resp.Meta.OnlyCustom = onlyCustom

	if metaLimit > 0 {
		result, err := s.stats.FetchMatchSummaries(r.Context(), apiKey, matchIDs[:metaLimit])
		if err != nil {
			s.writeEngineError(w, err)
			return
		}
		for _, summary := range result.Summaries {
			if onlyCustom && !summary.IsCustomMatch {
				continue
			}
			resp.Matches = append(resp.Matches, summary)
		}
	}

	s.writeJSON(w, http.StatusOK, resp)
}

type liveResponse struct {
	Source           string `json:"source"`
	TournamentID     string `json:"tournament_id"`
	PUBGTournamentID string `json:"pubg_tournament_id,omitempty"`
	*domain.TournamentAggregate
}

func (s *Server) handleTournamentLive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tournament, err := s.getTournament(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "Tournament")
		return
	}

	apiKey := tournament.TournamentAPIKey
	if apiKey == "" {
		apiKey = s.cfg.PUBGAPIKey
	}
	if !tournament.APIKeyRequired || apiKey == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "PUBG API key not configured"})
		return
	}

	limit := queryInt(r, "limit", constants.DefaultMatchLimit)
	fresh := queryBool(r, "fresh")

	var aggregate *domain.TournamentAggregate
	source := "pubg"

	if tournament.CustomMatchMode {
		source = "pubg-custom"
		switch {
		case len(tournament.CustomMatchIDs) > 0:
			aggregate, err = s.stats.AggregateMatchIDs(r.Context(), apiKey, tournament.CustomMatchIDs, limit, fresh, !tournament.AllowNonCustom)
		case len(tournament.CustomPlayerNames) > 0:
			aggregate, err = s.stats.AggregateCustomMatches(r.Context(), apiKey, tournament.CustomPlayerNames, limit, fresh, tournament.AllowNonCustom)
		default:
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Custom match needs match IDs or player names"})
			return
		}
	} else {
		if tournament.PUBGTournamentID == "" {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "PUBG tournament ID not configured"})
			return
		}
		aggregate, err = s.stats.AggregateTournament(r.Context(), apiKey, tournament.PUBGTournamentID, limit, fresh)
	}
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, liveResponse{
		Source:              source,
		TournamentID:        tournament.TournamentID,
		PUBGTournamentID:    tournament.PUBGTournamentID,
		TournamentAggregate: aggregate,
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	if raw := r.URL.Query().Get(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}

func queryBool(r *http.Request, key string) bool {
	return strings.EqualFold(r.URL.Query().Get(key), "true")
}
