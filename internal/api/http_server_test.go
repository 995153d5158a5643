package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"balneario/internal/config"
	"balneario/internal/database"
	"balneario/internal/models"
	"balneario/internal/repository"
	"balneario/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubBus struct{}

func (stubBus) PublishJSON(eventType string, payload interface{}) error { return nil }

type stubWorker struct{}

func (stubWorker) EnqueueTask(ctx context.Context, taskType string, group *models.ReservationGroup) error {
	return nil
}

func (stubWorker) EnqueuePayment(ctx context.Context, payment *models.Payment, group *models.ReservationGroup) error {
	return nil
}

type testServer struct {
	handler http.Handler
	token   string
	db      *database.DB
}

func newTestServer(t *testing.T, rps float64) *testServer {
	t.Helper()

	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	authCfg := config.AuthConfig{
		JWTSecret:       "test-secret",
		TokenTTLMinutes: 60,
		RateLimit:       config.RateLimitConfig{RPS: rps, Burst: 3},
		Users: []config.UserConfig{
			{ID: 1, Username: "owner", PasswordHash: string(hash)},
		},
	}

	cache := repository.NewMemoryReportCache(time.Minute)
	svcs := Services{
		Establishments: service.NewEstablishmentService(db, cache, &logger),
		Bookings:       service.NewBookingService(db, cache, stubBus{}, stubWorker{}, &logger),
		Clients:        service.NewClientService(db, &logger),
		Reports:        service.NewReportService(db, cache, &logger),
	}

	srv := NewHTTPServer(config.ServerConfig{Port: 0}, NewAuth(authCfg), svcs, &logger)
	ts := &testServer{handler: srv.Handler(), db: db}
	ts.token = ts.login(t, "owner", "hunter2")
	return ts
}

func (ts *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/auth/login", "",
		map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) createEstablishment(t *testing.T) {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/establishment", ts.token, map[string]any{
		"name": "Balneario Sol",
		"services": map[string]any{
			"tent":     map[string]any{"enabled": true, "capacity": 3},
			"umbrella": map[string]any{"enabled": true, "capacity": 10},
			"pool":     map[string]any{"enabled": true, "capacity": 5},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func tentBooking() map[string]any {
	return map[string]any{
		"serviceType":  "tent",
		"unitNumber":   1,
		"startDate":    "2024-01-10",
		"endDate":      "2024-01-12",
		"customerName": "Ana",
		"dailyPrice":   100,
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func decodeGroup(t *testing.T, rec *httptest.ResponseRecorder) models.ReservationGroup {
	t.Helper()
	var resp struct {
		Group models.ReservationGroup `json:"group"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Group
}

func decodeClient(t *testing.T, rec *httptest.ResponseRecorder) models.Client {
	t.Helper()
	var resp struct {
		Client models.Client `json:"client"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Client
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t, 0)

	t.Run("WrongPassword", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/auth/login", "",
			map[string]string{"username": "owner", "password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid_credentials", errorCode(t, rec))
	})

	t.Run("UnknownUser", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/auth/login", "",
			map[string]string{"username": "ghost", "password": "hunter2"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("GetRejected", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/auth/login", "", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t, 0)

	rec := ts.do(t, http.MethodGet, "/api/establishment", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/establishment", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthOpen(t *testing.T) {
	ts := newTestServer(t, 0)
	rec := ts.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEstablishmentLifecycle(t *testing.T) {
	ts := newTestServer(t, 0)

	t.Run("MissingAtFirst", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/establishment", ts.token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "establishment_not_found", errorCode(t, rec))
	})

	ts.createEstablishment(t)

	t.Run("GetAfterUpsert", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/establishment", ts.token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var est models.Establishment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &est))
		assert.Equal(t, "Balneario Sol", est.Name)
		assert.Equal(t, int64(1), est.OwnerID)
		cfg, ok := est.Service(models.ServiceTent)
		require.True(t, ok)
		assert.Equal(t, int64(3), cfg.Capacity)
	})

	t.Run("EmptyNameRejected", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/establishment", ts.token, map[string]any{"name": "  "})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "name_required", errorCode(t, rec))
	})
}

func TestReservationGroupEndpoints(t *testing.T) {
	ts := newTestServer(t, 0)
	ts.createEstablishment(t)

	var created models.ReservationGroup

	t.Run("Create", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/reservation-groups", ts.token, tentBooking())
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		created = decodeGroup(t, rec)
		assert.NotZero(t, created.ID)
		assert.Equal(t, float64(300), created.TotalPrice)
		assert.Equal(t, models.StatusActive, created.Status)
	})

	t.Run("ConflictRejected", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/reservation-groups", ts.token, tentBooking())
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "no_availability", errorCode(t, rec))
	})

	t.Run("DisabledServiceRejected", func(t *testing.T) {
		body := tentBooking()
		body["serviceType"] = "parking"
		rec := ts.do(t, http.MethodPost, "/api/reservation-groups", ts.token, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "service_disabled", errorCode(t, rec))
	})

	t.Run("GetByID", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, fmt.Sprintf("/api/reservation-groups/%d", created.ID), ts.token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		got := decodeGroup(t, rec)
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("GetMissing", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/reservation-groups/9999", ts.token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("BadID", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/reservation-groups/abc", ts.token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("List", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/reservation-groups?service=tent&status=active", ts.token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Groups []models.ReservationGroup `json:"groups"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Groups, 1)
	})

	t.Run("ListInvalidService", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/reservation-groups?service=cabana", ts.token, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid_service", errorCode(t, rec))
	})

	t.Run("PatchNotes", func(t *testing.T) {
		rec := ts.do(t, http.MethodPatch, fmt.Sprintf("/api/reservation-groups/%d", created.ID), ts.token,
			map[string]any{"notes": "late arrival"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "late arrival", decodeGroup(t, rec).Notes)
	})

	t.Run("PatchCancel", func(t *testing.T) {
		rec := ts.do(t, http.MethodPatch, fmt.Sprintf("/api/reservation-groups/%d", created.ID), ts.token,
			map[string]any{"status": "cancelled"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, models.StatusCancelled, decodeGroup(t, rec).Status)
	})

	t.Run("InvalidBody", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/reservation-groups", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Authorization", "Bearer "+ts.token)
		rec := httptest.NewRecorder()
		ts.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid_body", errorCode(t, rec))
	})
}

func TestPaymentEndpoints(t *testing.T) {
	ts := newTestServer(t, 0)
	ts.createEstablishment(t)

	rec := ts.do(t, http.MethodPost, "/api/reservation-groups", ts.token, tentBooking())
	require.Equal(t, http.StatusCreated, rec.Code)
	group := decodeGroup(t, rec)

	payURL := fmt.Sprintf("/api/reservation-groups/%d/payments", group.ID)

	t.Run("Record", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, payURL, ts.token,
			map[string]any{"amount": 120, "paymentDate": "2024-01-10", "method": "transfer"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})

	t.Run("OverpaymentRejected", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, payURL, ts.token,
			map[string]any{"amount": 500, "paymentDate": "2024-01-10", "method": "cash"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "payment_exceeds_balance", errorCode(t, rec))
	})

	t.Run("List", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, payURL, ts.token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Payments []models.Payment `json:"payments"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Payments, 1)
		assert.Equal(t, float64(120), resp.Payments[0].Amount)
	})

	t.Run("MissingGroup", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/reservation-groups/9999/payments", ts.token,
			map[string]any{"amount": 10, "paymentDate": "2024-01-10", "method": "cash"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestClientEndpoints(t *testing.T) {
	ts := newTestServer(t, 0)
	ts.createEstablishment(t)

	var created models.Client

	t.Run("Create", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/clients", ts.token,
			map[string]any{"name": "Bruno", "phone": "+55 11 99999", "vehicle": "ABC-1234"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		created = decodeClient(t, rec)
		assert.NotZero(t, created.ID)
	})

	t.Run("CreateWithoutName", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/clients", ts.token, map[string]any{"phone": "123"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "name_required", errorCode(t, rec))
	})

	t.Run("List", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/clients", ts.token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Clients []models.Client `json:"clients"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Clients, 1)
	})

	t.Run("Patch", func(t *testing.T) {
		rec := ts.do(t, http.MethodPatch, fmt.Sprintf("/api/clients/%d", created.ID), ts.token,
			map[string]any{"phone": "+55 11 88888"})
		require.Equal(t, http.StatusOK, rec.Code)

		got := decodeClient(t, rec)
		assert.Equal(t, "+55 11 88888", got.Phone)
		assert.Equal(t, "Bruno", got.Name)
	})

	t.Run("Delete", func(t *testing.T) {
		rec := ts.do(t, http.MethodDelete, fmt.Sprintf("/api/clients/%d", created.ID), ts.token, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = ts.do(t, http.MethodGet, fmt.Sprintf("/api/clients/%d", created.ID), ts.token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("DeleteReferencedClient", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/clients", ts.token, map[string]any{"name": "Carla"})
		require.Equal(t, http.StatusCreated, rec.Code)
		c := decodeClient(t, rec)

		body := tentBooking()
		body["unitNumber"] = 2
		body["clientId"] = c.ID
		rec = ts.do(t, http.MethodPost, "/api/reservation-groups", ts.token, body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		rec = ts.do(t, http.MethodDelete, fmt.Sprintf("/api/clients/%d", c.ID), ts.token, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "client_in_use", errorCode(t, rec))
	})
}

func TestReportEndpoints(t *testing.T) {
	ts := newTestServer(t, 0)
	ts.createEstablishment(t)

	rec := ts.do(t, http.MethodPost, "/api/reservation-groups", ts.token, tentBooking())
	require.Equal(t, http.StatusCreated, rec.Code)
	group := decodeGroup(t, rec)

	rec = ts.do(t, http.MethodPost, fmt.Sprintf("/api/reservation-groups/%d/payments", group.ID), ts.token,
		map[string]any{"amount": 150, "paymentDate": "2024-01-10", "method": "card"})
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("Payments", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/reports/payments?from=2024-01-10&to=2024-01-12", ts.token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var report models.PaymentsReport
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.Equal(t, float64(150), report.Total)
	})

	t.Run("Occupancy", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/reports/occupancy?from=2024-01-10&to=2024-01-12&service=tent", ts.token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var report models.OccupancyReport
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		require.Len(t, report.Services, 1)
		assert.Equal(t, models.ServiceTent, report.Services[0].Service)
	})

	t.Run("InvalidRange", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/reports/payments?from=2024-01-10", ts.token, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid_range", errorCode(t, rec))
	})

	t.Run("OccupancyExport", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/reports/occupancy/export?from=2024-01-10&to=2024-01-12", ts.token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			rec.Header().Get("Content-Type"))
		assert.NotZero(t, rec.Body.Len())
	})
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, 0.001)

	var limited bool
	for i := 0; i < 10; i++ {
		rec := ts.do(t, http.MethodGet, "/api/establishment", ts.token, nil)
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			assert.Equal(t, "rate_limited", errorCode(t, rec))
			break
		}
	}
	assert.True(t, limited, "expected a 429 after the burst was spent")
}

func TestEndpointLabel(t *testing.T) {
	assert.Equal(t, "/api/reservation-groups/{id}/payments", endpointLabel("/api/reservation-groups/42/payments"))
	assert.Equal(t, "/api/clients", endpointLabel("/api/clients"))
}
