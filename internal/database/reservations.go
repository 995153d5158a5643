package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"balneario/internal/models"
)

// querier is satisfied by both *sql.DB and *sql.Tx so the conflict scan can
// run inside or outside a transaction.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const groupColumns = `g.id, g.establishment_id, g.service_type, g.unit_number, g.start_date, g.end_date,
                 g.customer_name, g.customer_phone, g.client_id, g.daily_price, g.total_price,
                 g.notes, g.status, g.pool_adults, g.pool_children, g.pool_adult_price, g.pool_child_price,
                 g.created_at, g.updated_at, COALESCE(p.paid, 0)`

const paidJoin = `LEFT JOIN (SELECT reservation_group_id, SUM(amount) AS paid FROM payments GROUP BY reservation_group_id) p
                 ON p.reservation_group_id = g.id`

// HasConflict reports whether any active reservation for the same
// establishment/service/unit intersects the closed range [start, end].
// Dates are compared lexicographically; the YYYY-MM-DD format makes that
// equivalent to chronological order. excludeID skips the group's own row
// when re-checking an edit (0 skips nothing).
func (db *DB) HasConflict(ctx context.Context, establishmentID int64, serviceType string, unitNumber int64, start, end string, excludeID int64) (bool, error) {
	return hasConflict(ctx, db.DB, establishmentID, serviceType, unitNumber, start, end, excludeID)
}

func hasConflict(ctx context.Context, q querier, establishmentID int64, serviceType string, unitNumber int64, start, end string, excludeID int64) (bool, error) {
	query := `SELECT COUNT(*) FROM reservation_groups
              WHERE establishment_id = ? AND service_type = ? AND unit_number = ?
              AND status = ? AND start_date <= ? AND end_date >= ? AND id != ?`
	var count int
	err := q.QueryRowContext(ctx, query, establishmentID, serviceType, unitNumber,
		models.StatusActive, end, start, excludeID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check conflict: %w", err)
	}
	return count > 0, nil
}

// PoolOccupancy returns the headcount of active pool passes covering a day.
func (db *DB) PoolOccupancy(ctx context.Context, establishmentID int64, day string, excludeID int64) (int64, error) {
	return poolOccupancy(ctx, db.DB, establishmentID, day, excludeID)
}

func poolOccupancy(ctx context.Context, q querier, establishmentID int64, day string, excludeID int64) (int64, error) {
	query := `SELECT COALESCE(SUM(pool_adults + pool_children), 0) FROM reservation_groups
              WHERE establishment_id = ? AND service_type = ? AND status = ?
              AND start_date <= ? AND end_date >= ? AND id != ?`
	var occupants int64
	err := q.QueryRowContext(ctx, query, establishmentID, models.ServicePool,
		models.StatusActive, day, day, excludeID).Scan(&occupants)
	if err != nil {
		return 0, fmt.Errorf("failed to get pool occupancy: %w", err)
	}
	return occupants, nil
}

// CreateReservationGroupWithLock runs the availability gate and the insert
// inside one transaction, so two concurrent bookings for the same unit and
// range cannot both pass the check. poolCapacity is only consulted for pool
// passes (0 means uncapped).
func (db *DB) CreateReservationGroupWithLock(ctx context.Context, group *models.ReservationGroup, poolCapacity int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := checkAvailabilityTx(ctx, tx, group, poolCapacity, 0); err != nil {
		return err
	}

	if err := insertGroup(ctx, tx, group); err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateReservationGroupWithLock persists a fully merged group, re-running
// the availability gate (excluding the group itself) when the group stays
// active. Cancelling never conflicts.
func (db *DB) UpdateReservationGroupWithLock(ctx context.Context, group *models.ReservationGroup, poolCapacity int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if group.Status == models.StatusActive {
		if err := checkAvailabilityTx(ctx, tx, group, poolCapacity, group.ID); err != nil {
			return err
		}
	}

	now := time.Now()
	query := `UPDATE reservation_groups SET
                service_type = ?, unit_number = ?, start_date = ?, end_date = ?,
                customer_name = ?, customer_phone = ?, client_id = ?,
                daily_price = ?, total_price = ?, notes = ?, status = ?,
                pool_adults = ?, pool_children = ?, pool_adult_price = ?, pool_child_price = ?,
                updated_at = ?
              WHERE id = ? AND establishment_id = ?`
	result, err := tx.ExecContext(ctx, query,
		group.ServiceType, group.UnitNumber, group.StartDate, group.EndDate,
		group.CustomerName, group.CustomerPhone, nullableID(group.ClientID),
		group.DailyPrice, group.TotalPrice, group.Notes, group.Status,
		group.PoolAdults, group.PoolChildren, group.PoolAdultPrice, group.PoolChildPrice,
		now, group.ID, group.EstablishmentID,
	)
	if err != nil {
		return fmt.Errorf("failed to update reservation group: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	group.UpdatedAt = now

	return tx.Commit()
}

func checkAvailabilityTx(ctx context.Context, tx *sql.Tx, group *models.ReservationGroup, poolCapacity, excludeID int64) error {
	if group.ServiceType == models.ServicePool {
		if poolCapacity <= 0 {
			return nil
		}
		var gateErr error
		models.EachDay(group.StartDate, group.EndDate, func(day string) {
			if gateErr != nil {
				return
			}
			occupants, err := poolOccupancy(ctx, tx, group.EstablishmentID, day, excludeID)
			if err != nil {
				gateErr = err
				return
			}
			if occupants+group.Occupants() > poolCapacity {
				gateErr = ErrPoolFull
			}
		})
		return gateErr
	}

	conflict, err := hasConflict(ctx, tx, group.EstablishmentID, group.ServiceType,
		group.UnitNumber, group.StartDate, group.EndDate, excludeID)
	if err != nil {
		return err
	}
	if conflict {
		return ErrNotAvailable
	}
	return nil
}

func insertGroup(ctx context.Context, q querier, group *models.ReservationGroup) error {
	now := time.Now()
	query := `INSERT INTO reservation_groups (
                establishment_id, service_type, unit_number, start_date, end_date,
                customer_name, customer_phone, client_id, daily_price, total_price,
                notes, status, pool_adults, pool_children, pool_adult_price, pool_child_price,
                created_at, updated_at
              ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := q.ExecContext(ctx, query,
		group.EstablishmentID, group.ServiceType, group.UnitNumber, group.StartDate, group.EndDate,
		group.CustomerName, group.CustomerPhone, nullableID(group.ClientID),
		group.DailyPrice, group.TotalPrice, group.Notes, group.Status,
		group.PoolAdults, group.PoolChildren, group.PoolAdultPrice, group.PoolChildPrice,
		now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reservation group: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	group.ID = id
	group.CreatedAt = now
	group.UpdatedAt = now
	return nil
}

// GetReservationGroup loads one group of an establishment with its derived
// paid amount and balance.
func (db *DB) GetReservationGroup(ctx context.Context, establishmentID, id int64) (*models.ReservationGroup, error) {
	query := `SELECT ` + groupColumns + ` FROM reservation_groups g ` + paidJoin + `
              WHERE g.id = ? AND g.establishment_id = ?`
	group, err := scanGroup(db.QueryRowContext(ctx, query, id, establishmentID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation group: %w", err)
	}
	return group, nil
}

// ListReservationGroups returns the establishment's groups matching the
// filter, newest range first. The From/To filter is an overlap test against
// each group's own range.
func (db *DB) ListReservationGroups(ctx context.Context, establishmentID int64, filter models.ReservationFilter) ([]*models.ReservationGroup, error) {
	var where []string
	var args []any

	where = append(where, "g.establishment_id = ?")
	args = append(args, establishmentID)

	if filter.ServiceType != "" {
		where = append(where, "g.service_type = ?")
		args = append(args, filter.ServiceType)
	}
	if filter.Status != "" {
		where = append(where, "g.status = ?")
		args = append(args, filter.Status)
	}
	if filter.From != "" && filter.To != "" {
		where = append(where, "g.start_date <= ? AND g.end_date >= ?")
		args = append(args, filter.To, filter.From)
	}
	if filter.ClientID != 0 {
		where = append(where, "g.client_id = ?")
		args = append(args, filter.ClientID)
	}

	query := `SELECT ` + groupColumns + ` FROM reservation_groups g ` + paidJoin + `
              WHERE ` + strings.Join(where, " AND ") + `
              ORDER BY g.start_date DESC, g.id DESC`
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservation groups: %w", err)
	}
	defer rows.Close()

	groups := make([]*models.ReservationGroup, 0)
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation group: %w", err)
		}
		groups = append(groups, group)
	}
	return groups, rows.Err()
}

// CountActiveGroupsByClient is used to block deleting clients still linked
// to active reservations.
func (db *DB) CountActiveGroupsByClient(ctx context.Context, establishmentID, clientID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM reservation_groups
              WHERE establishment_id = ? AND client_id = ? AND status = ?`
	var count int64
	err := db.QueryRowContext(ctx, query, establishmentID, clientID, models.StatusActive).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count client reservations: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGroup(row rowScanner) (*models.ReservationGroup, error) {
	var g models.ReservationGroup
	var clientID sql.NullInt64
	err := row.Scan(
		&g.ID, &g.EstablishmentID, &g.ServiceType, &g.UnitNumber, &g.StartDate, &g.EndDate,
		&g.CustomerName, &g.CustomerPhone, &clientID, &g.DailyPrice, &g.TotalPrice,
		&g.Notes, &g.Status, &g.PoolAdults, &g.PoolChildren, &g.PoolAdultPrice, &g.PoolChildPrice,
		&g.CreatedAt, &g.UpdatedAt, &g.PaidAmount,
	)
	if err != nil {
		return nil, err
	}
	if clientID.Valid {
		id := clientID.Int64
		g.ClientID = &id
	}
	g.Balance = g.TotalPrice - g.PaidAmount
	return &g, nil
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
