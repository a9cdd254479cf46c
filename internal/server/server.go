package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"tournament-tracker/internal/auth"
	"tournament-tracker/internal/config"
	"tournament-tracker/internal/domain"
	"tournament-tracker/internal/middleware"
	"tournament-tracker/internal/service"
	"tournament-tracker/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// StatsEngine is the aggregation surface the HTTP boundary consumes.
type StatsEngine interface {
	FetchPlayerMatches(ctx context.Context, apiKey, playerName string, limit int) ([]string, error)
	FetchMatchSummaries(ctx context.Context, apiKey string, matchIDs []string) (*service.SummaryResult, error)
	AggregateTournament(ctx context.Context, apiKey, tournamentID string, limit int, fresh bool) (*domain.TournamentAggregate, error)
	AggregateCustomMatches(ctx context.Context, apiKey string, playerNames []string, limit int, fresh, includeNonCustom bool) (*domain.TournamentAggregate, error)
	AggregateMatchIDs(ctx context.Context, apiKey string, matchIDs []string, limit int, fresh, onlyCustom bool) (*domain.TournamentAggregate, error)
}

type Server struct {
	stats  StatsEngine
	store  *store.Store
	auth   *auth.Service
	cfg    *config.Config
	logger zerolog.Logger
}

func New(stats StatsEngine, st *store.Store, authSvc *auth.Service, cfg *config.Config, logger zerolog.Logger) *Server {
	return &Server{stats: stats, store: st, auth: authSvc, cfg: cfg, logger: logger}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	r.Use(c.Handler)
	r.Use(middleware.RequestID(s.logger))

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/pubg/player-matches", s.handlePlayerMatches)

		r.Get("/featured-tournaments", s.handleFeaturedTournaments)
		r.Get("/tournaments", s.handleListTournaments)
		r.Get("/tournaments/{id}", s.handleGetTournament)
		r.Get("/tournaments/{id}/live", s.handleTournamentLive)

		for _, collection := range publicCollections {
			r.Get("/"+collection.route, s.handlePublicList(collection.name))
		}

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", s.handleAdminLogin)

			r.Group(func(r chi.Router) {
				r.Use(s.auth.Middleware)

				r.Get("/tournaments", s.handleAdminList("tournaments"))
				r.Post("/tournaments", s.handleCreateTournament)
				r.Put("/tournaments/{id}", s.handleUpdateTournament)
				r.Delete("/tournaments/{id}", s.handleAdminDelete("tournaments"))

				for _, spec := range adminCollections {
					r.Get("/"+spec.name, s.handleAdminList(spec.name))
					r.Post("/"+spec.name, s.handleAdminCreate(spec))
					r.Put("/"+spec.name+"/{id}", s.handleAdminUpdate(spec))
					r.Delete("/"+spec.name+"/{id}", s.handleAdminDelete(spec.name))
				}
			})
		})
	})

	return r
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// writeEngineError maps the engine's error taxonomy onto the boundary:
// client errors pass through with their message, everything upstream-shaped
// becomes a 502 carrying the detail for diagnostics.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsBadRequest(err):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case domain.IsNotFound(err):
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		s.writeJSON(w, http.StatusBadGateway, errorResponse{Error: "PUBG API error", Details: err.Error()})
	}
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, store.ErrRecordNotFound) {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: what + " not found"})
		return
	}
	s.logger.Error().Err(err).Msg("store operation failed")
	s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "storage error"})
}
