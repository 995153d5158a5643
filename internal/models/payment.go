package models

import "time"

// Payment is an append-only ledger entry attached to a reservation group.
// Payments are never updated or deleted.
type Payment struct {
	ID                 int64     `json:"id"`
	ReservationGroupID int64     `json:"reservationGroupId"`
	Amount             float64   `json:"amount"`
	PaymentDate        string    `json:"paymentDate"`
	Method             string    `json:"method"`
	Notes              string    `json:"notes"`
	CreatedAt          time.Time `json:"createdAt"`
}
