package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"balneario/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	reservationsSheet = "Reservations"
	paymentsSheet     = "Payments"
)

var errRowNotFound = errors.New("reservation row not found")

// SheetsService mirrors reservation groups and payments into one spreadsheet.
// Reservations get a row each, keyed by group ID in column A; payments are
// append-only.
type SheetsService struct {
	service  *sheets.Service
	sheetID  string
	rowCache map[int64]int
	cacheMu  sync.RWMutex
}

func NewSheetsService(credentialsFile, spreadsheetID string) (*SheetsService, error) {
	ctx := context.Background()

	// Читаем файл учетных данных сервисного аккаунта
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}

	service := &SheetsService{
		service:  srv,
		sheetID:  spreadsheetID,
		rowCache: make(map[int64]int),
	}

	// Warm up cache in background
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = service.WarmUpCache(ctx)
	}()

	return service, nil
}

// TestConnection проверяет доступ к таблице
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.sheetID, reservationsSheet+"!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// ServiceAccountEmail returns the client_email from the credentials file, so
// the owner knows which account to share the spreadsheet with.
func ServiceAccountEmail(credentialsFile string) (string, error) {
	file, err := os.ReadFile(credentialsFile)
	if err != nil {
		return "", err
	}

	var creds struct {
		ClientEmail string `json:"client_email"`
	}
	if err := json.Unmarshal(file, &creds); err != nil {
		return "", err
	}
	return creds.ClientEmail, nil
}

// WarmUpCache populates the row index cache by reading the entire ID column.
func (s *SheetsService) WarmUpCache(ctx context.Context) error {
	resp, err := s.service.Spreadsheets.Values.Get(s.sheetID, reservationsSheet+"!A:A").Context(ctx).Do()
	if err != nil {
		return err
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[int64]int)

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		var id int64
		switch v := row[0].(type) {
		case float64:
			id = int64(v)
		case string:
			fmt.Sscanf(v, "%d", &id)
		}
		if id > 0 {
			s.rowCache[id] = i + 1
		}
	}
	return nil
}

// UpsertReservation updates the group's row or appends a new one when the
// group is not in the sheet yet.
func (s *SheetsService) UpsertReservation(ctx context.Context, group *models.ReservationGroup) error {
	if group == nil {
		return fmt.Errorf("reservation group is nil")
	}

	rowIdx, err := s.findReservationRow(ctx, group.ID)
	if err != nil {
		if errors.Is(err, errRowNotFound) {
			return s.appendReservation(ctx, group)
		}
		return err
	}

	rangeData := fmt.Sprintf("%s!A%d:L%d", reservationsSheet, rowIdx, rowIdx)
	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{reservationRowValues(group)},
	}

	_, err = s.service.Spreadsheets.Values.Update(s.sheetID, rangeData, valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func (s *SheetsService) appendReservation(ctx context.Context, group *models.ReservationGroup) error {
	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{reservationRowValues(group)},
	}

	_, err := s.service.Spreadsheets.Values.Append(s.sheetID, reservationsSheet+"!A:A", valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

// UpdateReservationStatus rewrites the status and updated-at cells of one row.
func (s *SheetsService) UpdateReservationStatus(ctx context.Context, groupID int64, status string) error {
	rowIdx, err := s.findReservationRow(ctx, groupID)
	if err != nil {
		return err
	}

	statusRange := fmt.Sprintf("%s!F%d:F%d", reservationsSheet, rowIdx, rowIdx)
	_, err = s.service.Spreadsheets.Values.Update(s.sheetID, statusRange, &sheets.ValueRange{
		Values: [][]interface{}{{status}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return err
	}

	updatedRange := fmt.Sprintf("%s!L%d:L%d", reservationsSheet, rowIdx, rowIdx)
	_, err = s.service.Spreadsheets.Values.Update(s.sheetID, updatedRange, &sheets.ValueRange{
		Values: [][]interface{}{{time.Now().Format("2006-01-02 15:04:05")}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// AppendPayment adds one ledger row to the payments sheet.
func (s *SheetsService) AppendPayment(ctx context.Context, payment *models.Payment, group *models.ReservationGroup) error {
	if payment == nil {
		return fmt.Errorf("payment is nil")
	}

	customer := ""
	if group != nil {
		customer = group.CustomerName
	}

	row := []interface{}{
		payment.ID,
		payment.ReservationGroupID,
		customer,
		payment.PaymentDate,
		payment.Amount,
		payment.Method,
		payment.Notes,
		payment.CreatedAt.Format("2006-01-02 15:04:05"),
	}

	valueRange := &sheets.ValueRange{Values: [][]interface{}{row}}
	_, err := s.service.Spreadsheets.Values.Append(s.sheetID, paymentsSheet+"!A:A", valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

// findReservationRow locates the 1-based row for a group ID, cache first.
func (s *SheetsService) findReservationRow(ctx context.Context, groupID int64) (int, error) {
	if groupID == 0 {
		return 0, fmt.Errorf("group id is required")
	}

	if row, ok := s.getCachedRow(groupID); ok {
		return row, nil
	}

	resp, err := s.service.Spreadsheets.Values.Get(s.sheetID, reservationsSheet+"!A:A").Context(ctx).Do()
	if err != nil {
		return 0, err
	}

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		switch v := row[0].(type) {
		case float64:
			if int64(v) == groupID {
				rowIdx := i + 1 // Values are zero-based; sheet rows are 1-based
				s.setCachedRow(groupID, rowIdx)
				return rowIdx, nil
			}
		case string:
			if v == fmt.Sprintf("%d", groupID) {
				rowIdx := i + 1
				s.setCachedRow(groupID, rowIdx)
				return rowIdx, nil
			}
		}
	}

	return 0, errRowNotFound
}

func (s *SheetsService) getCachedRow(id int64) (int, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	row, ok := s.rowCache[id]
	return row, ok
}

func (s *SheetsService) setCachedRow(id int64, row int) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache[id] = row
}

// ClearCache сбрасывает кэш индексов строк
func (s *SheetsService) ClearCache() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[int64]int)
}

func reservationRowValues(group *models.ReservationGroup) []interface{} {
	clientID := int64(0)
	if group.ClientID != nil {
		clientID = *group.ClientID
	}

	return []interface{}{
		group.ID,
		group.ServiceType,
		group.UnitNumber,
		group.StartDate,
		group.EndDate,
		group.Status,
		group.CustomerName,
		group.CustomerPhone,
		clientID,
		group.TotalPrice,
		group.CreatedAt.Format("2006-01-02 15:04:05"),
		group.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
