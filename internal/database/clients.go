package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"balneario/internal/models"
)

func (db *DB) CreateClient(ctx context.Context, client *models.Client) error {
	now := time.Now()
	query := `INSERT INTO clients (establishment_id, name, phone, email, document, address, vehicle, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		client.EstablishmentID, client.Name, client.Phone, client.Email,
		client.Document, client.Address, client.Vehicle, now, now)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	client.ID = id
	client.CreatedAt = now
	client.UpdatedAt = now
	return nil
}

func (db *DB) GetClient(ctx context.Context, establishmentID, id int64) (*models.Client, error) {
	query := `SELECT id, establishment_id, name, phone, email, document, address, vehicle, created_at, updated_at
              FROM clients WHERE id = ? AND establishment_id = ?`
	var c models.Client
	err := db.QueryRowContext(ctx, query, id, establishmentID).Scan(
		&c.ID, &c.EstablishmentID, &c.Name, &c.Phone, &c.Email,
		&c.Document, &c.Address, &c.Vehicle, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return &c, nil
}

func (db *DB) ListClients(ctx context.Context, establishmentID int64) ([]models.Client, error) {
	query := `SELECT id, establishment_id, name, phone, email, document, address, vehicle, created_at, updated_at
              FROM clients WHERE establishment_id = ? ORDER BY name ASC, id ASC`
	rows, err := db.QueryContext(ctx, query, establishmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	clients := make([]models.Client, 0)
	for rows.Next() {
		var c models.Client
		if err := rows.Scan(&c.ID, &c.EstablishmentID, &c.Name, &c.Phone, &c.Email,
			&c.Document, &c.Address, &c.Vehicle, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// UpdateClient persists an already merged client record.
func (db *DB) UpdateClient(ctx context.Context, client *models.Client) error {
	now := time.Now()
	query := `UPDATE clients SET name = ?, phone = ?, email = ?, document = ?, address = ?, vehicle = ?, updated_at = ?
              WHERE id = ? AND establishment_id = ?`
	result, err := db.ExecContext(ctx, query,
		client.Name, client.Phone, client.Email, client.Document, client.Address, client.Vehicle,
		now, client.ID, client.EstablishmentID)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	client.UpdatedAt = now
	return nil
}

// DeleteClient removes a client unless active reservations still reference
// it.
func (db *DB) DeleteClient(ctx context.Context, establishmentID, id int64) error {
	active, err := db.CountActiveGroupsByClient(ctx, establishmentID, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return ErrClientInUse
	}

	result, err := db.ExecContext(ctx, `DELETE FROM clients WHERE id = ? AND establishment_id = ?`, id, establishmentID)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
