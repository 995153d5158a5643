package api

import (
	"net/http"

	"balneario/internal/models"
)

type establishmentRequest struct {
	Name     string                          `json:"name"`
	Services map[string]models.ServiceConfig `json:"services"`
}

func (s *HTTPServer) handleEstablishment(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		est := s.establishment(w, r)
		if est == nil {
			return
		}
		writeJSON(w, http.StatusOK, est)

	case http.MethodPost:
		ownerID, ok := OwnerFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing owner identity")
			return
		}

		var req establishmentRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		est := &models.Establishment{Name: req.Name, Services: req.Services}
		if err := s.svcs.Establishments.Upsert(r.Context(), ownerID, est); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, est)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}
