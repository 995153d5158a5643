package api

import (
	"net/http"
	"strings"

	"balneario/internal/models"
)

type reservationGroupRequest struct {
	ServiceType    string  `json:"serviceType"`
	UnitNumber     int64   `json:"unitNumber"`
	StartDate      string  `json:"startDate"`
	EndDate        string  `json:"endDate"`
	CustomerName   string  `json:"customerName"`
	CustomerPhone  string  `json:"customerPhone"`
	ClientID       *int64  `json:"clientId"`
	DailyPrice     float64 `json:"dailyPrice"`
	TotalPrice     float64 `json:"totalPrice"`
	Notes          string  `json:"notes"`
	PoolAdults     int64   `json:"poolAdultsCount"`
	PoolChildren   int64   `json:"poolChildrenCount"`
	PoolAdultPrice float64 `json:"poolAdultPricePerDay"`
	PoolChildPrice float64 `json:"poolChildPricePerDay"`
}

func (s *HTTPServer) handleReservationGroups(w http.ResponseWriter, r *http.Request) {
	est := s.establishment(w, r)
	if est == nil {
		return
	}

	switch r.Method {
	case http.MethodGet:
		filter := models.ReservationFilter{
			ServiceType: r.URL.Query().Get("service"),
			Status:      r.URL.Query().Get("status"),
			From:        r.URL.Query().Get("from"),
			To:          r.URL.Query().Get("to"),
		}
		if raw := r.URL.Query().Get("clientId"); raw != "" {
			id, err := parseID(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_client", err.Error())
				return
			}
			filter.ClientID = id
		}

		groups, err := s.svcs.Bookings.ListReservationGroups(r.Context(), est, filter)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"groups": groups})

	case http.MethodPost:
		var req reservationGroupRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		group := &models.ReservationGroup{
			ServiceType:    req.ServiceType,
			UnitNumber:     req.UnitNumber,
			StartDate:      req.StartDate,
			EndDate:        req.EndDate,
			CustomerName:   req.CustomerName,
			CustomerPhone:  req.CustomerPhone,
			ClientID:       req.ClientID,
			DailyPrice:     req.DailyPrice,
			TotalPrice:     req.TotalPrice,
			Notes:          req.Notes,
			PoolAdults:     req.PoolAdults,
			PoolChildren:   req.PoolChildren,
			PoolAdultPrice: req.PoolAdultPrice,
			PoolChildPrice: req.PoolChildPrice,
		}
		if err := s.svcs.Bookings.CreateReservationGroup(r.Context(), est, group); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"group": group})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

// handleReservationGroupByID serves /api/reservation-groups/{id} and its
// /payments sub-resource.
func (s *HTTPServer) handleReservationGroupByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/reservation-groups/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	id, err := parseID(parts[0])
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "resource not found")
		return
	}

	if len(parts) == 2 && parts[1] == "payments" {
		s.handleGroupPayments(w, r, id)
		return
	}
	if len(parts) != 1 {
		writeError(w, http.StatusNotFound, "not_found", "resource not found")
		return
	}

	est := s.establishment(w, r)
	if est == nil {
		return
	}

	switch r.Method {
	case http.MethodGet:
		group, err := s.svcs.Bookings.GetReservationGroup(r.Context(), est, id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"group": group})

	case http.MethodPatch:
		var patch models.ReservationGroupPatch
		if !decodeJSON(w, r, &patch) {
			return
		}
		group, err := s.svcs.Bookings.UpdateReservationGroup(r.Context(), est, id, &patch)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"group": group})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

type paymentRequest struct {
	Amount      float64 `json:"amount"`
	PaymentDate string  `json:"paymentDate"`
	Method      string  `json:"method"`
	Notes       string  `json:"notes"`
}

func (s *HTTPServer) handleGroupPayments(w http.ResponseWriter, r *http.Request, groupID int64) {
	est := s.establishment(w, r)
	if est == nil {
		return
	}

	switch r.Method {
	case http.MethodGet:
		payments, err := s.svcs.Bookings.ListPayments(r.Context(), est, groupID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"payments": payments})

	case http.MethodPost:
		var req paymentRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		payment := &models.Payment{
			Amount:      req.Amount,
			PaymentDate: req.PaymentDate,
			Method:      req.Method,
			Notes:       req.Notes,
		}
		if err := s.svcs.Bookings.RecordPayment(r.Context(), est, groupID, payment); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"payment": payment})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}
