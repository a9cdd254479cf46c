package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"tournament-tracker/internal/domain"
	"tournament-tracker/internal/store"

	"github.com/go-chi/chi/v5"
)

const tournamentsCollection = "tournaments"

func (s *Server) getTournament(ctx context.Context, id string) (*domain.Tournament, error) {
	record, err := s.store.Get(ctx, tournamentsCollection, id)
	if err != nil {
		return nil, err
	}
	return recordToTournament(record)
}

func recordToTournament(record store.Record) (*domain.Tournament, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	var t domain.Tournament
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func sanitizeTournament(record store.Record) store.Record {
	out := make(store.Record, len(record))
	for k, v := range record {
		if k == "tournament_api_key" {
			continue
		}
		out[k] = v
	}
	return out
}

func (s *Server) handleFeaturedTournaments(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.List(r.Context(), tournamentsCollection)
	if err != nil {
		s.writeStoreError(w, err, "Tournaments")
		return
	}
	featured := []store.Record{}
	for _, record := range records {
		if coerceBool(record["featured"]) {
			featured = append(featured, sanitizeTournament(record))
		}
	}
	s.writeJSON(w, http.StatusOK, featured)
}

func (s *Server) handleListTournaments(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.List(r.Context(), tournamentsCollection)
	if err != nil {
		s.writeStoreError(w, err, "Tournaments")
		return
	}

	q := r.URL.Query()
	filtered := []store.Record{}
	for _, record := range records {
		if v := q.Get("status"); v != "" && asString(record["status"]) != v {
			continue
		}
		if v := q.Get("registration"); v != "" && asString(record["registration_status"]) != v {
			continue
		}
		if v := q.Get("mode"); v != "" && asString(record["mode"]) != v {
			continue
		}
		if v := q.Get("search"); v != "" &&
			!strings.Contains(strings.ToLower(asString(record["name"])), strings.ToLower(v)) {
			continue
		}
		filtered = append(filtered, sanitizeTournament(record))
	}

	switch q.Get("sort") {
	case "start_date":
		sort.SliceStable(filtered, func(i, j int) bool {
			return asString(filtered[i]["start_date"]) < asString(filtered[j]["start_date"])
		})
	case "prize_pool":
		sort.SliceStable(filtered, func(i, j int) bool {
			return asFloat(filtered[i]["prize_pool"]) > asFloat(filtered[j]["prize_pool"])
		})
	case "registration_charge":
		sort.SliceStable(filtered, func(i, j int) bool {
			return asFloat(filtered[i]["registration_charge"]) > asFloat(filtered[j]["registration_charge"])
		})
	}

	s.writeJSON(w, http.StatusOK, filtered)
}

func (s *Server) handleGetTournament(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	record, err := s.store.Get(r.Context(), tournamentsCollection, id)
	if err != nil {
		s.writeStoreError(w, err, "Tournament")
		return
	}

	participants, err := s.store.List(r.Context(), "participants")
	if err != nil {
		s.writeStoreError(w, err, "Participants")
		return
	}
	linked := []store.Record{}
	for _, p := range participants {
		if asString(p["tournament_id"]) == id {
			linked = append(linked, p)
		}
	}

	out := sanitizeTournament(record)
	out["participants"] = linked
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTournament(w http.ResponseWriter, r *http.Request) {
	var payload store.Record
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if payload == nil {
		payload = store.Record{}
	}

	if invalidDateRange(asString(payload["start_date"]), asString(payload["end_date"])) {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "End date cannot be before start date."})
		return
	}

	id := asString(payload["tournament_id"])
	if id == "" {
		id = makeID("TE")
	}

	record := store.Record{
		"tournament_id":       id,
		"name":                asString(payload["name"]),
		"description":         asString(payload["description"]),
		"banner_url":          asString(payload["banner_url"]),
		"start_date":          asString(payload["start_date"]),
		"end_date":            asString(payload["end_date"]),
		"status":              defaultString(payload["status"], "upcoming"),
		"registration_status": defaultString(payload["registration_status"], "closed"),
		"mode":                defaultString(payload["mode"], "squad"),
		"match_type":          defaultString(payload["match_type"], "classic"),
		"perspective":         defaultString(payload["perspective"], "TPP"),
		"prize_pool":          asFloat(payload["prize_pool"]),
		"registration_charge": asFloat(payload["registration_charge"]),
		"featured":            coerceBool(payload["featured"]),
		"max_slots":           payload["max_slots"],
		"region":              asString(payload["region"]),
		"rules":               asString(payload["rules"]),
		"contact_discord":     asString(payload["contact_discord"]),
		"api_key_required":    coerceBool(payload["api_key_required"]),
		"tournament_api_key":  asString(payload["tournament_api_key"]),
		"api_provider":        defaultString(payload["api_provider"], "PUBG"),
		"pubg_tournament_id":  asString(payload["pubg_tournament_id"]),
		"custom_match_mode":   coerceBool(payload["custom_match_mode"]),
		"allow_non_custom":    coerceBool(payload["allow_non_custom"]),
		"custom_player_names": coerceList(payload["custom_player_names"]),
		"custom_match_ids":    coerceList(payload["custom_match_ids"]),
	}

	if err := s.store.Insert(r.Context(), tournamentsCollection, id, record); err != nil {
		s.writeStoreError(w, err, "Tournament")
		return
	}
	s.writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleUpdateTournament(w http.ResponseWriter, r *http.Request) {
	var payload store.Record
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	id := chi.URLParam(r, "id")
	current, err := s.store.Get(r.Context(), tournamentsCollection, id)
	if err != nil {
		s.writeStoreError(w, err, "Tournament")
		return
	}

	startDate := asString(current["start_date"])
	if v, ok := payload["start_date"]; ok {
		startDate = asString(v)
	}
	endDate := asString(current["end_date"])
	if v, ok := payload["end_date"]; ok {
		endDate = asString(v)
	}
	if invalidDateRange(startDate, endDate) {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "End date cannot be before start date."})
		return
	}

	updated, err := s.store.Update(r.Context(), tournamentsCollection, id, func(current store.Record) store.Record {
		for k, v := range payload {
			switch k {
			case "custom_match_mode", "allow_non_custom", "featured", "api_key_required":
				current[k] = coerceBool(v)
			case "custom_player_names", "custom_match_ids":
				current[k] = coerceList(v)
			default:
				current[k] = v
			}
		}
		current["tournament_id"] = id
		return current
	})
	if err != nil {
		s.writeStoreError(w, err, "Tournament")
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handlePublicList(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := s.store.List(r.Context(), collection)
		if err != nil {
			s.writeStoreError(w, err, "Collection")
			return
		}
		if collection == "matches" {
			limit := queryInt(r, "limit", 6)
			if limit >= 0 && len(records) > limit {
				records = records[:limit]
			}
		}
		s.writeJSON(w, http.StatusOK, records)
	}
}

// invalidDateRange reports an end date strictly before the start date;
// unparseable or absent dates never block a write.
func invalidDateRange(start, end string) bool {
	if start == "" || end == "" {
		return false
	}
	startTime, err := parseDate(start)
	if err != nil {
		return false
	}
	endTime, err := parseDate(end)
	if err != nil {
		return false
	}
	return endTime.Before(startTime)
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &time.ParseError{Value: value}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func defaultString(v any, fallback string) string {
	if s := asString(v); s != "" {
		return s
	}
	return fallback
}

func asFloat(v any) float64 {
	f, _ := v.(float64)
	return f
}

// coerceBool accepts JSON booleans and the string forms admin clients send.
func coerceBool(v any) bool {
	switch value := v.(type) {
	case bool:
		return value
	case string:
		return value == "true"
	}
	return false
}

// coerceList accepts an array of values or one comma-separated string.
func coerceList(v any) []string {
	switch value := v.(type) {
	case []string:
		return value
	case []any:
		var out []string
		for _, item := range value {
			if s := strings.TrimSpace(asString(item)); s != "" {
				out = append(out, s)
			}
		}
		if out == nil {
			out = []string{}
		}
		return out
	case string:
		out := domain.SplitList(value)
		if out == nil {
			out = []string{}
		}
		return out
	}
	return []string{}
}
