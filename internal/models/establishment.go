package models

import "time"

// ServiceConfig holds the per-service settings of an establishment.
// Capacity is the number of numbered units for tent/umbrella/parking and the
// maximum simultaneous occupancy for pool.
type ServiceConfig struct {
	Enabled  bool  `json:"enabled" yaml:"enabled"`
	Capacity int64 `json:"capacity" yaml:"capacity"`
}

type Establishment struct {
	ID        int64                    `json:"id"`
	OwnerID   int64                    `json:"ownerId"`
	Name      string                   `json:"name"`
	Services  map[string]ServiceConfig `json:"services"`
	CreatedAt time.Time                `json:"createdAt"`
	UpdatedAt time.Time                `json:"updatedAt"`
}

// Service returns the configuration for a service type, enabled or not.
func (e *Establishment) Service(serviceType string) (ServiceConfig, bool) {
	if e == nil || e.Services == nil {
		return ServiceConfig{}, false
	}
	cfg, ok := e.Services[serviceType]
	return cfg, ok
}

// ServiceEnabled reports whether bookings are accepted for a service type.
func (e *Establishment) ServiceEnabled(serviceType string) bool {
	cfg, ok := e.Service(serviceType)
	return ok && cfg.Enabled
}
