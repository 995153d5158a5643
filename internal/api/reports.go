package api

import (
	"net/http"
)

func (s *HTTPServer) handleReportPayments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	est := s.establishment(w, r)
	if est == nil {
		return
	}

	q := r.URL.Query()
	report, err := s.svcs.Reports.PaymentsReport(r.Context(), est, q.Get("from"), q.Get("to"), q.Get("service"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *HTTPServer) handleReportOccupancy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	est := s.establishment(w, r)
	if est == nil {
		return
	}

	q := r.URL.Query()
	report, err := s.svcs.Reports.OccupancyReport(r.Context(), est, q.Get("from"), q.Get("to"), q.Get("service"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleOccupancyExport serves the occupancy report as an XLSX workbook.
func (s *HTTPServer) handleOccupancyExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	est := s.establishment(w, r)
	if est == nil {
		return
	}

	q := r.URL.Query()
	report, err := s.svcs.Reports.OccupancyReport(r.Context(), est, q.Get("from"), q.Get("to"), q.Get("service"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := writeOccupancyAttachment(w, est, report); err != nil {
		s.logger.Error().Err(err).Msg("occupancy export error")
		writeError(w, http.StatusInternalServerError, "server_error", "failed to build workbook")
	}
}
