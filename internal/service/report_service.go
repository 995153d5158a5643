package service

import (
	"context"
	"encoding/json"

	"balneario/internal/domain"
	"balneario/internal/models"
	"balneario/internal/repository"

	"github.com/rs/zerolog"
)

type ReportService struct {
	repo   domain.Repository
	cache  domain.ReportCache
	logger *zerolog.Logger
}

func NewReportService(repo domain.Repository, cache domain.ReportCache, logger *zerolog.Logger) *ReportService {
	return &ReportService{repo: repo, cache: cache, logger: logger}
}

// PaymentsReport sums the ledger per day over [from, to], optionally for one
// service type.
func (s *ReportService) PaymentsReport(ctx context.Context, est *models.Establishment, from, to, serviceType string) (*models.PaymentsReport, error) {
	from, to, err := s.validateRange(from, to, serviceType)
	if err != nil {
		return nil, err
	}

	key := repository.ReportKey(est.ID, "payments", from, to, serviceType)
	var cached models.PaymentsReport
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	payments, err := s.repo.PaymentsInRange(ctx, est.ID, from, to, serviceType)
	if err != nil {
		return nil, err
	}

	report := &models.PaymentsReport{
		From:     from,
		To:       to,
		Days:     make([]models.DayPayments, 0),
		Payments: payments,
	}

	// Payments arrive ordered by date, so days come out ordered too.
	byDay := make(map[string]int)
	for _, p := range payments {
		report.Total += p.Amount
		report.Count++
		if idx, ok := byDay[p.PaymentDate]; ok {
			report.Days[idx].Total += p.Amount
			report.Days[idx].Count++
			continue
		}
		byDay[p.PaymentDate] = len(report.Days)
		report.Days = append(report.Days, models.DayPayments{Date: p.PaymentDate, Total: p.Amount, Count: 1})
	}

	s.toCache(ctx, key, report)
	return report, nil
}

// OccupancyReport computes per-day occupancy against configured capacity for
// every enabled service, or just one when serviceType is given. Pool counts
// people against the headcount cap, the other services count occupied units.
func (s *ReportService) OccupancyReport(ctx context.Context, est *models.Establishment, from, to, serviceType string) (*models.OccupancyReport, error) {
	from, to, err := s.validateRange(from, to, serviceType)
	if err != nil {
		return nil, err
	}

	key := repository.ReportKey(est.ID, "occupancy", from, to, serviceType)
	var cached models.OccupancyReport
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	groups, err := s.repo.ListReservationGroups(ctx, est.ID, models.ReservationFilter{
		ServiceType: serviceType,
		Status:      models.StatusActive,
		From:        from,
		To:          to,
	})
	if err != nil {
		return nil, err
	}

	report := &models.OccupancyReport{
		From:     from,
		To:       to,
		Days:     make([]models.DayOccupancy, 0),
		Services: make([]models.ServiceOccupancy, 0),
	}

	for _, svc := range reportedServices(est, serviceType) {
		cfg, _ := est.Service(svc)
		summary := models.ServiceOccupancy{Service: svc, Capacity: cfg.Capacity}
		var sum float64
		var dayCount int

		models.EachDay(from, to, func(day string) {
			var occupied int64
			for _, g := range groups {
				if g.ServiceType != svc || !models.RangesOverlap(g.StartDate, g.EndDate, day, day) {
					continue
				}
				if svc == models.ServicePool {
					occupied += g.Occupants()
				} else {
					occupied++
				}
			}

			entry := models.DayOccupancy{Date: day, Service: svc, Occupied: occupied, Capacity: cfg.Capacity}
			if cfg.Capacity > 0 {
				entry.Percent = float64(occupied) / float64(cfg.Capacity) * 100
			}
			report.Days = append(report.Days, entry)

			sum += entry.Percent
			dayCount++
			if entry.Percent > summary.PeakPercent {
				summary.PeakPercent = entry.Percent
			}
		})

		if dayCount > 0 {
			summary.AveragePercent = sum / float64(dayCount)
		}
		report.Services = append(report.Services, summary)
	}

	s.toCache(ctx, key, report)
	return report, nil
}

func (s *ReportService) validateRange(from, to, serviceType string) (string, string, error) {
	if serviceType != "" && !models.ValidServiceType(serviceType) {
		return "", "", validationErr("invalid_service", "unknown service type %q", serviceType)
	}
	f, err := models.ParseDate(from)
	if err != nil {
		return "", "", validationErr("invalid_range", "bad from date %q", from)
	}
	t, err := models.ParseDate(to)
	if err != nil {
		return "", "", validationErr("invalid_range", "bad to date %q", to)
	}
	f, t = models.NormalizeRange(f, t)
	return f, t, nil
}

// reportedServices lists the enabled services in a stable order.
func reportedServices(est *models.Establishment, serviceType string) []string {
	if serviceType != "" {
		return []string{serviceType}
	}
	var out []string
	for _, svc := range []string{models.ServiceTent, models.ServiceUmbrella, models.ServiceParking, models.ServicePool} {
		if est.ServiceEnabled(svc) {
			out = append(out, svc)
		}
	}
	return out
}

func (s *ReportService) fromCache(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("report cache read error")
		return false
	}
	if data == nil {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("report cache decode error")
		return false
	}
	return true
}

func (s *ReportService) toCache(ctx context.Context, key string, report any) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("report cache write error")
	}
}
