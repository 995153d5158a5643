package service

import (
	"context"
	"strings"

	"balneario/internal/domain"
	"balneario/internal/models"

	"github.com/rs/zerolog"
)

type ClientService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewClientService(repo domain.Repository, logger *zerolog.Logger) *ClientService {
	return &ClientService{repo: repo, logger: logger}
}

func (s *ClientService) CreateClient(ctx context.Context, est *models.Establishment, client *models.Client) error {
	client.EstablishmentID = est.ID
	client.Name = strings.TrimSpace(client.Name)
	if client.Name == "" {
		return validationErr("name_required", "client name is required")
	}
	return s.repo.CreateClient(ctx, client)
}

func (s *ClientService) GetClient(ctx context.Context, est *models.Establishment, id int64) (*models.Client, error) {
	return s.repo.GetClient(ctx, est.ID, id)
}

func (s *ClientService) ListClients(ctx context.Context, est *models.Establishment) ([]models.Client, error) {
	return s.repo.ListClients(ctx, est.ID)
}

// UpdateClient merges a PATCH body into the stored record.
func (s *ClientService) UpdateClient(ctx context.Context, est *models.Establishment, id int64, patch *models.ClientPatch) (*models.Client, error) {
	client, err := s.repo.GetClient(ctx, est.ID, id)
	if err != nil {
		return nil, err
	}

	if patch.Name.IsSet() {
		name := strings.TrimSpace(patch.Name.Value())
		if patch.Name.IsNull() || name == "" {
			return nil, validationErr("name_required", "client name cannot be cleared")
		}
		client.Name = name
	}
	applyString(&client.Phone, patch.Phone)
	applyString(&client.Email, patch.Email)
	applyString(&client.Document, patch.Document)
	applyString(&client.Address, patch.Address)
	applyString(&client.Vehicle, patch.Vehicle)

	if err := s.repo.UpdateClient(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// DeleteClient removes a client record. Storage refuses when active
// reservations still reference it.
func (s *ClientService) DeleteClient(ctx context.Context, est *models.Establishment, id int64) error {
	return s.repo.DeleteClient(ctx, est.ID, id)
}
