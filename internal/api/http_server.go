package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"balneario/internal/config"
	"balneario/internal/database"
	"balneario/internal/export"
	"balneario/internal/metrics"
	"balneario/internal/models"
	"balneario/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Services bundles the application services the HTTP surface exposes.
type Services struct {
	Establishments *service.EstablishmentService
	Bookings       *service.BookingService
	Clients        *service.ClientService
	Reports        *service.ReportService
}

// HTTPServer is the management API for establishment owners. Every route
// under /api except the login endpoint requires a bearer token.
type HTTPServer struct {
	cfg    config.ServerConfig
	auth   *Auth
	svcs   Services
	logger zerolog.Logger
	server *http.Server
}

func NewHTTPServer(cfg config.ServerConfig, auth *Auth, svcs Services, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{
		cfg:    cfg,
		auth:   auth,
		svcs:   svcs,
		logger: logger.With().Str("component", "http").Logger(),
	}

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv
}

// Handler builds the full route tree. Exposed for tests.
func (s *HTTPServer) Handler() http.Handler {
	protected := http.NewServeMux()
	protected.HandleFunc("/api/establishment", s.handleEstablishment)
	protected.HandleFunc("/api/reservation-groups", s.handleReservationGroups)
	protected.HandleFunc("/api/reservation-groups/", s.handleReservationGroupByID)
	protected.HandleFunc("/api/clients", s.handleClients)
	protected.HandleFunc("/api/clients/", s.handleClientByID)
	protected.HandleFunc("/api/reports/payments", s.handleReportPayments)
	protected.HandleFunc("/api/reports/occupancy", s.handleReportOccupancy)
	protected.HandleFunc("/api/reports/occupancy/export", s.handleOccupancyExport)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/auth/login", s.auth.HandleLogin)
	mux.Handle("/api/", s.auth.Wrap(protected))

	return s.loggingMiddleware(mux)
}

func (s *HTTPServer) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// establishment resolves the caller's establishment or replies 404.
func (s *HTTPServer) establishment(w http.ResponseWriter, r *http.Request) *models.Establishment {
	ownerID, ok := OwnerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing owner identity")
		return nil
	}
	est, err := s.svcs.Establishments.GetByOwner(r.Context(), ownerID)
	if errors.Is(err, database.ErrNotFound) {
		writeError(w, http.StatusNotFound, "establishment_not_found", "no establishment configured for this account")
		return nil
	}
	if err != nil {
		writeServiceError(w, err)
		return nil
	}
	return est
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

var numericSegment = regexp.MustCompile(`/\d+`)

// endpointLabel collapses numeric path segments so metrics cardinality stays
// bounded.
func endpointLabel(path string) string {
	return numericSegment.ReplaceAllString(path, "/{id}")
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)

		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		dur := time.Since(start)

		metrics.IncHTTP(endpointLabel(r.URL.Path), strconv.Itoa(recorder.status))
		s.logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", dur).
			Msg("http request")
	})
}

// writeOccupancyAttachment streams an XLSX workbook for the report.
func writeOccupancyAttachment(w http.ResponseWriter, est *models.Establishment, report *models.OccupancyReport) error {
	f, err := export.OccupancyWorkbook(est, report)
	if err != nil {
		return err
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("occupancy_%s_%s.xlsx", report.From, report.To)))
	return f.Write(w)
}
