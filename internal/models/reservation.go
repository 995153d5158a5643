package models

import "time"

// ReservationGroup is one booking: a contiguous date range for one resource
// unit and one customer. Dates are inclusive YYYY-MM-DD strings.
type ReservationGroup struct {
	ID              int64     `json:"id"`
	EstablishmentID int64     `json:"establishmentId"`
	ServiceType     string    `json:"serviceType"`
	UnitNumber      int64     `json:"unitNumber"`
	StartDate       string    `json:"startDate"`
	EndDate         string    `json:"endDate"`
	CustomerName    string    `json:"customerName"`
	CustomerPhone   string    `json:"customerPhone"`
	ClientID        *int64    `json:"clientId"`
	DailyPrice      float64   `json:"dailyPrice"`
	TotalPrice      float64   `json:"totalPrice"`
	Notes           string    `json:"notes"`
	Status          string    `json:"status"`
	PoolAdults      int64     `json:"poolAdultsCount"`
	PoolChildren    int64     `json:"poolChildrenCount"`
	PoolAdultPrice  float64   `json:"poolAdultPricePerDay"`
	PoolChildPrice  float64   `json:"poolChildPricePerDay"`
	PaidAmount      float64   `json:"paidAmount"`
	Balance         float64   `json:"balance"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Days returns the inclusive day count of the booking range.
func (g *ReservationGroup) Days() int {
	return DaysInclusive(g.StartDate, g.EndDate)
}

// Occupants returns the headcount of a pool pass.
func (g *ReservationGroup) Occupants() int64 {
	return g.PoolAdults + g.PoolChildren
}

// ReservationFilter narrows List queries. Empty fields are ignored; From/To
// select groups whose range overlaps [From, To].
type ReservationFilter struct {
	ServiceType string
	Status      string
	From        string
	To          string
	ClientID    int64
}
