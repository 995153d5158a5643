package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"balneario/internal/models"
)

// UpsertEstablishment creates or replaces the establishment of an owner.
// There is at most one establishment per owner.
func (db *DB) UpsertEstablishment(ctx context.Context, est *models.Establishment) error {
	services, err := json.Marshal(est.Services)
	if err != nil {
		return fmt.Errorf("failed to encode services: %w", err)
	}

	now := time.Now()
	query := `INSERT INTO establishments (owner_id, name, services, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?)
              ON CONFLICT(owner_id) DO UPDATE SET name = excluded.name, services = excluded.services, updated_at = excluded.updated_at`
	if _, err := db.ExecContext(ctx, query, est.OwnerID, est.Name, string(services), now, now); err != nil {
		return fmt.Errorf("failed to upsert establishment: %w", err)
	}

	stored, err := db.GetEstablishmentByOwner(ctx, est.OwnerID)
	if err != nil {
		return err
	}
	*est = *stored
	return nil
}

func (db *DB) GetEstablishmentByOwner(ctx context.Context, ownerID int64) (*models.Establishment, error) {
	query := `SELECT id, owner_id, name, services, created_at, updated_at FROM establishments WHERE owner_id = ?`
	return db.scanEstablishment(db.QueryRowContext(ctx, query, ownerID))
}

func (db *DB) GetEstablishment(ctx context.Context, id int64) (*models.Establishment, error) {
	query := `SELECT id, owner_id, name, services, created_at, updated_at FROM establishments WHERE id = ?`
	return db.scanEstablishment(db.QueryRowContext(ctx, query, id))
}

func (db *DB) scanEstablishment(row *sql.Row) (*models.Establishment, error) {
	var est models.Establishment
	var services string
	err := row.Scan(&est.ID, &est.OwnerID, &est.Name, &services, &est.CreatedAt, &est.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get establishment: %w", err)
	}

	if err := json.Unmarshal([]byte(services), &est.Services); err != nil {
		return nil, fmt.Errorf("failed to decode services: %w", err)
	}
	return &est, nil
}
