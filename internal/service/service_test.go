package service

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"

	"balneario/internal/database"
	"balneario/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeBus struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeBus) PublishJSON(eventType string, _ interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, eventType)
	return nil
}

type fakeWorker struct {
	mu    sync.Mutex
	tasks []string
}

func (f *fakeWorker) EnqueueTask(_ context.Context, taskType string, _ *models.ReservationGroup) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, taskType)
	return nil
}

func (f *fakeWorker) EnqueuePayment(_ context.Context, _ *models.Payment, _ *models.ReservationGroup) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, "payment")
	return nil
}

type fakeCache struct {
	mu            sync.Mutex
	store         map[string][]byte
	invalidations int
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string][]byte)}
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store[key], nil
}

func (f *fakeCache) Set(_ context.Context, key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.store[key] = data
	return nil
}

func (f *fakeCache) InvalidateEstablishment(_ context.Context, establishmentID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidations++
	for k := range f.store {
		if strings.Contains(k, "est:") {
			delete(f.store, k)
		}
	}
	return nil
}

type fixture struct {
	db     *database.DB
	est    *models.Establishment
	bus    *fakeBus
	worker *fakeWorker
	cache  *fakeCache
	logger zerolog.Logger
}

func setup(t *testing.T) *fixture {
	t.Helper()
	logger := zerolog.New(os.Stdout)
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	est := &models.Establishment{
		OwnerID: 1,
		Name:    "Balneario Sol",
		Services: map[string]models.ServiceConfig{
			models.ServiceTent:     {Enabled: true, Capacity: 3},
			models.ServiceUmbrella: {Enabled: true, Capacity: 10},
			models.ServiceParking:  {Enabled: false, Capacity: 20},
			models.ServicePool:     {Enabled: true, Capacity: 5},
		},
	}
	require.NoError(t, db.UpsertEstablishment(context.Background(), est))

	return &fixture{
		db:     db,
		est:    est,
		bus:    &fakeBus{},
		worker: &fakeWorker{},
		cache:  newFakeCache(),
		logger: logger,
	}
}

func (f *fixture) bookingService() *BookingService {
	return NewBookingService(f.db, f.cache, f.bus, f.worker, &f.logger)
}

func (f *fixture) addClient(t *testing.T, name string) *models.Client {
	t.Helper()
	client := &models.Client{EstablishmentID: f.est.ID, Name: name}
	require.NoError(t, f.db.CreateClient(context.Background(), client))
	return client
}
