package server

import (
	"encoding/json"
	"net/http"
	"time"

	"tournament-tracker/internal/store"

	"github.com/go-chi/chi/v5"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if !s.auth.VerifyAdmin(req.Username, req.Password) {
		s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Invalid credentials"})
		return
	}
	token, err := s.auth.CreateToken(req.Username)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to issue admin token")
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to issue token"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleAdminList(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := s.store.List(r.Context(), collection)
		if err != nil {
			s.writeStoreError(w, err, "Collection")
			return
		}
		s.writeJSON(w, http.StatusOK, records)
	}
}

func (s *Server) handleAdminCreate(spec collectionSpec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var record store.Record
		if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
		if record == nil {
			record = store.Record{}
		}

		id, _ := record[spec.idField].(string)
		if id == "" {
			generated, err := spec.newID()
			if err != nil {
				s.logger.Error().Err(err).Str("collection", spec.name).Msg("failed to generate record id")
				s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to generate id"})
				return
			}
			id = generated
		}
		record[spec.idField] = id
		if spec.defaults != nil {
			spec.defaults(record)
		}
		if spec.name == "announcements" {
			setDefault(record, "created_at", time.Now().UTC().Format(time.RFC3339))
		}

		if err := s.store.Insert(r.Context(), spec.name, id, record); err != nil {
			s.writeStoreError(w, err, "Record")
			return
		}
		s.writeJSON(w, http.StatusCreated, record)
	}
}

func (s *Server) handleAdminUpdate(spec collectionSpec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload store.Record
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}

		id := chi.URLParam(r, "id")
		updated, err := s.store.Update(r.Context(), spec.name, id, func(current store.Record) store.Record {
			for k, v := range payload {
				current[k] = v
			}
			// identity survives any merge
			current[spec.idField] = id
			return current
		})
		if err != nil {
			s.writeStoreError(w, err, "Record")
			return
		}
		s.writeJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) handleAdminDelete(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := s.store.Delete(r.Context(), collection, id); err != nil {
			s.writeStoreError(w, err, "Record")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
