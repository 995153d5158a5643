package domain

import (
	"context"
	"time"

	"balneario/internal/models"
)

type Repository interface {
	UpsertEstablishment(ctx context.Context, est *models.Establishment) error
	GetEstablishmentByOwner(ctx context.Context, ownerID int64) (*models.Establishment, error)
	GetEstablishment(ctx context.Context, id int64) (*models.Establishment, error)

	CreateReservationGroupWithLock(ctx context.Context, group *models.ReservationGroup, poolCapacity int64) error
	UpdateReservationGroupWithLock(ctx context.Context, group *models.ReservationGroup, poolCapacity int64) error
	GetReservationGroup(ctx context.Context, establishmentID, id int64) (*models.ReservationGroup, error)
	ListReservationGroups(ctx context.Context, establishmentID int64, filter models.ReservationFilter) ([]*models.ReservationGroup, error)
	HasConflict(ctx context.Context, establishmentID int64, serviceType string, unitNumber int64, start, end string, excludeID int64) (bool, error)
	PoolOccupancy(ctx context.Context, establishmentID int64, day string, excludeID int64) (int64, error)
	CountActiveGroupsByClient(ctx context.Context, establishmentID, clientID int64) (int64, error)

	CreatePayment(ctx context.Context, establishmentID int64, payment *models.Payment) error
	ListPayments(ctx context.Context, establishmentID, groupID int64) ([]models.Payment, error)
	PaymentsInRange(ctx context.Context, establishmentID int64, from, to, serviceType string) ([]models.Payment, error)

	CreateClient(ctx context.Context, client *models.Client) error
	GetClient(ctx context.Context, establishmentID, id int64) (*models.Client, error)
	ListClients(ctx context.Context, establishmentID int64) ([]models.Client, error)
	UpdateClient(ctx context.Context, client *models.Client) error
	DeleteClient(ctx context.Context, establishmentID, id int64) error

	CreateSyncTask(ctx context.Context, task *models.SyncTask) error
	GetPendingSyncTasks(ctx context.Context, limit int) ([]models.SyncTask, error)
	UpdateSyncTaskStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error
	GetFailedSyncTasks(ctx context.Context) ([]models.SyncTask, error)
}

// ReportCache stores serialized report payloads. Get returns nil on a miss.
type ReportCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
	InvalidateEstablishment(ctx context.Context, establishmentID int64) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type SheetsWriter interface {
	UpsertReservation(ctx context.Context, group *models.ReservationGroup) error
	UpdateReservationStatus(ctx context.Context, groupID int64, status string) error
	AppendPayment(ctx context.Context, payment *models.Payment, group *models.ReservationGroup) error
}

type SyncWorker interface {
	EnqueueTask(ctx context.Context, taskType string, group *models.ReservationGroup) error
	EnqueuePayment(ctx context.Context, payment *models.Payment, group *models.ReservationGroup) error
}

// Notifier delivers short operational messages to the owner's chat.
type Notifier interface {
	Notify(text string) error
}
