package service

import (
	"context"
	"strings"

	"balneario/internal/domain"
	"balneario/internal/models"

	"github.com/rs/zerolog"
)

type EstablishmentService struct {
	repo   domain.Repository
	cache  domain.ReportCache
	logger *zerolog.Logger
}

func NewEstablishmentService(repo domain.Repository, cache domain.ReportCache, logger *zerolog.Logger) *EstablishmentService {
	return &EstablishmentService{repo: repo, cache: cache, logger: logger}
}

// Upsert saves the owner's establishment, creating it on first call and
// replacing name and service settings afterwards.
func (s *EstablishmentService) Upsert(ctx context.Context, ownerID int64, est *models.Establishment) error {
	est.OwnerID = ownerID
	est.Name = strings.TrimSpace(est.Name)
	if est.Name == "" {
		return validationErr("name_required", "establishment name is required")
	}
	for serviceType, cfg := range est.Services {
		if !models.ValidServiceType(serviceType) {
			return validationErr("invalid_service", "unknown service type %q", serviceType)
		}
		if cfg.Capacity < 0 {
			return validationErr("invalid_capacity", "capacity of %q cannot be negative", serviceType)
		}
	}

	if err := s.repo.UpsertEstablishment(ctx, est); err != nil {
		return err
	}

	// Capacity changes shift occupancy percentages.
	if s.cache != nil {
		if err := s.cache.InvalidateEstablishment(ctx, est.ID); err != nil {
			s.logger.Error().Err(err).Int64("establishment_id", est.ID).Msg("cache invalidation error")
		}
	}
	return nil
}

func (s *EstablishmentService) GetByOwner(ctx context.Context, ownerID int64) (*models.Establishment, error) {
	return s.repo.GetEstablishmentByOwner(ctx, ownerID)
}
