package service

import (
	"context"
	"errors"
	"strings"

	"balneario/internal/database"
	"balneario/internal/domain"
	"balneario/internal/events"
	"balneario/internal/metrics"
	"balneario/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	repo         domain.Repository
	cache        domain.ReportCache
	eventBus     domain.EventPublisher
	sheetsWorker domain.SyncWorker
	logger       *zerolog.Logger
}

func NewBookingService(repo domain.Repository, cache domain.ReportCache, eventBus domain.EventPublisher, sheetsWorker domain.SyncWorker, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:         repo,
		cache:        cache,
		eventBus:     eventBus,
		sheetsWorker: sheetsWorker,
		logger:       logger,
	}
}

// CreateReservationGroup validates and books a new group for the
// establishment. The group is mutated in place: dates are normalized, the
// total price is derived when absent, and the ID is filled on success.
func (s *BookingService) CreateReservationGroup(ctx context.Context, est *models.Establishment, group *models.ReservationGroup) error {
	group.EstablishmentID = est.ID
	group.Status = models.StatusActive

	cfg, err := s.validateGroup(ctx, est, group)
	if err != nil {
		return err
	}

	if group.TotalPrice == 0 {
		group.TotalPrice = derivedTotal(group)
	}

	err = s.repo.CreateReservationGroupWithLock(ctx, group, poolCapacity(group, cfg))
	if err != nil {
		s.countRejection(group.ServiceType, err)
		return err
	}

	metrics.IncReservationCreated(group.ServiceType)
	s.publishEvent(events.EventReservationCreated, group)
	s.enqueueSync(ctx, "upsert", group)
	s.invalidateReports(ctx, est.ID)

	return nil
}

// UpdateReservationGroup applies a partial update. Omitted fields keep their
// stored value, explicit nulls clear. The availability gate re-runs for
// groups that stay active.
func (s *BookingService) UpdateReservationGroup(ctx context.Context, est *models.Establishment, groupID int64, patch *models.ReservationGroupPatch) (*models.ReservationGroup, error) {
	group, err := s.repo.GetReservationGroup(ctx, est.ID, groupID)
	if err != nil {
		return nil, err
	}

	wasCancelled, err := s.applyPatch(group, patch)
	if err != nil {
		return nil, err
	}

	cfg, err := s.validateGroup(ctx, est, group)
	if err != nil {
		return nil, err
	}

	if !patch.TotalPrice.IsSet() && pricingPatched(patch) {
		group.TotalPrice = derivedTotal(group)
	}

	err = s.repo.UpdateReservationGroupWithLock(ctx, group, poolCapacity(group, cfg))
	if err != nil {
		s.countRejection(group.ServiceType, err)
		return nil, err
	}

	if wasCancelled {
		s.publishEvent(events.EventReservationCancelled, group)
		s.enqueueSync(ctx, "update_status", group)
	} else {
		s.publishEvent(events.EventReservationUpdated, group)
		s.enqueueSync(ctx, "upsert", group)
	}
	s.invalidateReports(ctx, est.ID)

	// Re-read for the derived payment fields.
	return s.repo.GetReservationGroup(ctx, est.ID, group.ID)
}

func (s *BookingService) GetReservationGroup(ctx context.Context, est *models.Establishment, id int64) (*models.ReservationGroup, error) {
	return s.repo.GetReservationGroup(ctx, est.ID, id)
}

func (s *BookingService) ListReservationGroups(ctx context.Context, est *models.Establishment, filter models.ReservationFilter) ([]*models.ReservationGroup, error) {
	if filter.ServiceType != "" && !models.ValidServiceType(filter.ServiceType) {
		return nil, validationErr("invalid_service", "unknown service type %q", filter.ServiceType)
	}
	if filter.Status != "" && !models.ValidStatus(filter.Status) {
		return nil, validationErr("invalid_status", "unknown status %q", filter.Status)
	}
	if (filter.From == "") != (filter.To == "") {
		return nil, validationErr("invalid_range", "from and to must be given together")
	}
	if filter.From != "" {
		from, err := models.ParseDate(filter.From)
		if err != nil {
			return nil, validationErr("invalid_range", "bad from date %q", filter.From)
		}
		to, err := models.ParseDate(filter.To)
		if err != nil {
			return nil, validationErr("invalid_range", "bad to date %q", filter.To)
		}
		filter.From, filter.To = models.NormalizeRange(from, to)
	}
	return s.repo.ListReservationGroups(ctx, est.ID, filter)
}

// RecordPayment appends a ledger entry for a group of the establishment.
func (s *BookingService) RecordPayment(ctx context.Context, est *models.Establishment, groupID int64, payment *models.Payment) error {
	payment.ReservationGroupID = groupID

	if payment.Amount <= 0 {
		return validationErr("invalid_amount", "payment amount must be positive")
	}
	if !models.ValidPaymentMethod(payment.Method) {
		return validationErr("invalid_payment_method", "unknown payment method %q", payment.Method)
	}
	date, err := models.ParseDate(payment.PaymentDate)
	if err != nil {
		return validationErr("invalid_dates", "bad payment date %q", payment.PaymentDate)
	}
	payment.PaymentDate = date

	if err := s.repo.CreatePayment(ctx, est.ID, payment); err != nil {
		return err
	}

	metrics.IncPaymentRecorded(payment.Method)
	if s.eventBus != nil {
		err := s.eventBus.PublishJSON(events.EventPaymentRecorded, events.PaymentEventPayload{
			PaymentID:       payment.ID,
			GroupID:         groupID,
			EstablishmentID: est.ID,
			Amount:          payment.Amount,
			Method:          payment.Method,
			PaymentDate:     payment.PaymentDate,
		})
		if err != nil {
			s.logger.Error().Err(err).Int64("payment_id", payment.ID).Msg("publish event error")
		}
	}
	if s.sheetsWorker != nil {
		group, err := s.repo.GetReservationGroup(ctx, est.ID, groupID)
		if err == nil {
			if err := s.sheetsWorker.EnqueuePayment(ctx, payment, group); err != nil {
				s.logger.Error().Err(err).Int64("payment_id", payment.ID).Msg("sheets enqueue error")
			}
		}
	}
	s.invalidateReports(ctx, est.ID)

	return nil
}

func (s *BookingService) ListPayments(ctx context.Context, est *models.Establishment, groupID int64) ([]models.Payment, error) {
	return s.repo.ListPayments(ctx, est.ID, groupID)
}

// validateGroup checks everything about a group except availability, which
// belongs to the storage transaction. Returns the service configuration.
func (s *BookingService) validateGroup(ctx context.Context, est *models.Establishment, group *models.ReservationGroup) (models.ServiceConfig, error) {
	if !models.ValidServiceType(group.ServiceType) {
		return models.ServiceConfig{}, validationErr("invalid_service", "unknown service type %q", group.ServiceType)
	}
	cfg, ok := est.Service(group.ServiceType)
	if !ok || !cfg.Enabled {
		return cfg, validationErr("service_disabled", "service %q is not offered", group.ServiceType)
	}

	start, err := models.ParseDate(group.StartDate)
	if err != nil {
		return cfg, validationErr("invalid_dates", "bad start date %q", group.StartDate)
	}
	end, err := models.ParseDate(group.EndDate)
	if err != nil {
		return cfg, validationErr("invalid_dates", "bad end date %q", group.EndDate)
	}
	group.StartDate, group.EndDate = models.NormalizeRange(start, end)

	if group.DailyPrice < 0 || group.TotalPrice < 0 || group.PoolAdultPrice < 0 || group.PoolChildPrice < 0 {
		return cfg, validationErr("invalid_amount", "prices cannot be negative")
	}

	if group.ServiceType == models.ServicePool {
		// Pool has no numbered units; the capacity is a headcount cap.
		group.UnitNumber = models.PoolUnit
		if group.ClientID == nil {
			return cfg, validationErr("pool_client_required", "pool reservations require a registered client")
		}
		if group.PoolAdults < 0 || group.PoolChildren < 0 {
			return cfg, validationErr("invalid_pool_occupants", "occupant counts cannot be negative")
		}
		if group.Occupants() == 0 {
			return cfg, validationErr("invalid_pool_occupants", "pool reservations need at least one occupant")
		}
	} else {
		if group.UnitNumber < 1 || group.UnitNumber > cfg.Capacity {
			return cfg, validationErr("invalid_unit", "unit %d is outside 1..%d", group.UnitNumber, cfg.Capacity)
		}
	}

	group.CustomerName = strings.TrimSpace(group.CustomerName)

	if group.ClientID != nil {
		client, err := s.repo.GetClient(ctx, est.ID, *group.ClientID)
		if errors.Is(err, database.ErrNotFound) {
			return cfg, validationErr("client_not_found", "client %d does not exist", *group.ClientID)
		}
		if err != nil {
			return cfg, err
		}
		if group.CustomerName == "" {
			group.CustomerName = client.Name
		}
	}

	if group.CustomerName == "" {
		return cfg, validationErr("customer_required", "a customer name or client is required")
	}

	return cfg, nil
}

// applyPatch merges a PATCH body into the stored group and reports whether
// this update cancels it.
func (s *BookingService) applyPatch(group *models.ReservationGroup, patch *models.ReservationGroupPatch) (bool, error) {
	wasCancelled := false
	if patch.Status.IsSet() {
		if patch.Status.IsNull() || !models.ValidStatus(patch.Status.Value()) {
			return false, validationErr("invalid_status", "unknown status")
		}
		next := patch.Status.Value()
		if next != group.Status {
			if !(group.Status == models.StatusActive && next == models.StatusCancelled) {
				return false, validationErr("invalid_status_transition", "cannot move from %s to %s", group.Status, next)
			}
			wasCancelled = true
		}
		group.Status = next
	}

	applyString(&group.CustomerName, patch.CustomerName)
	applyString(&group.CustomerPhone, patch.CustomerPhone)
	applyString(&group.Notes, patch.Notes)

	if patch.ClientID.IsSet() {
		if patch.ClientID.IsNull() {
			group.ClientID = nil
		} else {
			id := patch.ClientID.Value()
			group.ClientID = &id
		}
	}

	if patch.StartDate.IsSet() {
		if patch.StartDate.IsNull() {
			return false, validationErr("invalid_dates", "start date cannot be cleared")
		}
		group.StartDate = patch.StartDate.Value()
	}
	if patch.EndDate.IsSet() {
		if patch.EndDate.IsNull() {
			return false, validationErr("invalid_dates", "end date cannot be cleared")
		}
		group.EndDate = patch.EndDate.Value()
	}

	applyNumber(&group.UnitNumber, patch.UnitNumber)
	applyNumber(&group.DailyPrice, patch.DailyPrice)
	applyNumber(&group.TotalPrice, patch.TotalPrice)
	applyNumber(&group.PoolAdults, patch.PoolAdults)
	applyNumber(&group.PoolChildren, patch.PoolChildren)
	applyNumber(&group.PoolAdultPrice, patch.PoolAdultPrice)
	applyNumber(&group.PoolChildPrice, patch.PoolChildPrice)

	return wasCancelled, nil
}

func applyString(dst *string, p models.Patch[string]) {
	if !p.IsSet() {
		return
	}
	if p.IsNull() {
		*dst = ""
		return
	}
	*dst = p.Value()
}

func applyNumber[T int64 | float64](dst *T, p models.Patch[T]) {
	if !p.IsSet() {
		return
	}
	if p.IsNull() {
		*dst = 0
		return
	}
	*dst = p.Value()
}

func pricingPatched(patch *models.ReservationGroupPatch) bool {
	return patch.StartDate.IsSet() || patch.EndDate.IsSet() ||
		patch.DailyPrice.IsSet() || patch.PoolAdults.IsSet() || patch.PoolChildren.IsSet() ||
		patch.PoolAdultPrice.IsSet() || patch.PoolChildPrice.IsSet()
}

// derivedTotal computes the price of the whole range from the per-day rates.
func derivedTotal(group *models.ReservationGroup) float64 {
	days := float64(group.Days())
	if group.ServiceType == models.ServicePool {
		perDay := float64(group.PoolAdults)*group.PoolAdultPrice + float64(group.PoolChildren)*group.PoolChildPrice
		return days * perDay
	}
	return days * group.DailyPrice
}

func poolCapacity(group *models.ReservationGroup, cfg models.ServiceConfig) int64 {
	if group.ServiceType == models.ServicePool {
		return cfg.Capacity
	}
	return 0
}

func (s *BookingService) countRejection(service string, err error) {
	switch {
	case errors.Is(err, database.ErrNotAvailable):
		metrics.IncConflictRejected(service, "no_availability")
	case errors.Is(err, database.ErrPoolFull):
		metrics.IncConflictRejected(service, "pool_full")
	}
}

func (s *BookingService) publishEvent(eventType string, group *models.ReservationGroup) {
	if s.eventBus == nil {
		return
	}

	payload := events.ReservationEventPayload{
		GroupID:         group.ID,
		EstablishmentID: group.EstablishmentID,
		ServiceType:     group.ServiceType,
		UnitNumber:      group.UnitNumber,
		StartDate:       group.StartDate,
		EndDate:         group.EndDate,
		CustomerName:    group.CustomerName,
		Status:          group.Status,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("group_id", group.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueSync(ctx context.Context, taskType string, group *models.ReservationGroup) {
	if s.sheetsWorker == nil {
		return
	}

	if err := s.sheetsWorker.EnqueueTask(ctx, taskType, group); err != nil {
		s.logger.Error().Err(err).Int64("group_id", group.ID).Str("task", taskType).Msg("sheets enqueue error")
	}
}

func (s *BookingService) invalidateReports(ctx context.Context, establishmentID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateEstablishment(ctx, establishmentID); err != nil {
		s.logger.Error().Err(err).Int64("establishment_id", establishmentID).Msg("cache invalidation error")
	}
}
