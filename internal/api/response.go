package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"balneario/internal/database"
	"balneario/internal/service"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, errorBody{Error: code, Message: message})
}

// writeServiceError translates storage and validation errors into stable
// HTTP error codes.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Code, verr.Message)
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, database.ErrNotAvailable):
		writeError(w, http.StatusConflict, "no_availability", "unit is already booked for that range")
	case errors.Is(err, database.ErrPoolFull):
		writeError(w, http.StatusConflict, "pool_full", "pool capacity exceeded for the range")
	case errors.Is(err, database.ErrPaymentExceedsBalance):
		writeError(w, http.StatusBadRequest, "payment_exceeds_balance", "payment would exceed the outstanding balance")
	case errors.Is(err, database.ErrClientInUse):
		writeError(w, http.StatusConflict, "client_in_use", "client has active reservations")
	default:
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
	}
}

// decodeJSON reads a bounded JSON body. A malformed body, including a string
// where a number belongs, is a 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return false
	}
	return true
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
