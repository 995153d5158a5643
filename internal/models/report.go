package models

// DayPayments aggregates the ledger for one calendar day.
type DayPayments struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
	Count int64   `json:"count"`
}

// PaymentsReport covers a date range: per-day totals plus the flat list of
// payments that produced them.
type PaymentsReport struct {
	From     string        `json:"from"`
	To       string        `json:"to"`
	Total    float64       `json:"total"`
	Count    int64         `json:"count"`
	Days     []DayPayments `json:"days"`
	Payments []Payment     `json:"payments"`
}

// DayOccupancy is the occupied-vs-capacity figure for one service on one day.
// For pool, Occupied counts people rather than units.
type DayOccupancy struct {
	Date     string  `json:"date"`
	Service  string  `json:"service"`
	Occupied int64   `json:"occupied"`
	Capacity int64   `json:"capacity"`
	Percent  float64 `json:"percent"`
}

// ServiceOccupancy summarizes a service over the whole range.
type ServiceOccupancy struct {
	Service        string  `json:"service"`
	Capacity       int64   `json:"capacity"`
	AveragePercent float64 `json:"averagePercent"`
	PeakPercent    float64 `json:"peakPercent"`
}

type OccupancyReport struct {
	From     string             `json:"from"`
	To       string             `json:"to"`
	Days     []DayOccupancy     `json:"days"`
	Services []ServiceOccupancy `json:"services"`
}
