package api

import (
	"net/http"
	"strings"

	"balneario/internal/models"
)

type clientRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Document string `json:"document"`
	Address  string `json:"address"`
	Vehicle  string `json:"vehicle"`
}

func (s *HTTPServer) handleClients(w http.ResponseWriter, r *http.Request) {
	est := s.establishment(w, r)
	if est == nil {
		return
	}

	switch r.Method {
	case http.MethodGet:
		clients, err := s.svcs.Clients.ListClients(r.Context(), est)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"clients": clients})

	case http.MethodPost:
		var req clientRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		client := &models.Client{
			Name:     req.Name,
			Phone:    req.Phone,
			Email:    req.Email,
			Document: req.Document,
			Address:  req.Address,
			Vehicle:  req.Vehicle,
		}
		if err := s.svcs.Clients.CreateClient(r.Context(), est, client); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"client": client})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func (s *HTTPServer) handleClientByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/clients/"), "/")
	id, err := parseID(rest)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "resource not found")
		return
	}

	est := s.establishment(w, r)
	if est == nil {
		return
	}

	switch r.Method {
	case http.MethodGet:
		client, err := s.svcs.Clients.GetClient(r.Context(), est, id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"client": client})

	case http.MethodPatch:
		var patch models.ClientPatch
		if !decodeJSON(w, r, &patch) {
			return
		}
		client, err := s.svcs.Clients.UpdateClient(r.Context(), est, id, &patch)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"client": client})

	case http.MethodDelete:
		if err := s.svcs.Clients.DeleteClient(r.Context(), est, id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}
