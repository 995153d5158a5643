package models

import "encoding/json"

// Patch carries the three-way state of one field in a partial update:
// absent from the body (unset), explicit null (clear), or a value. The
// zero value means unset, so PATCH bodies decode directly into structs of
// Patch fields.
type Patch[T any] struct {
	present bool
	null    bool
	value   T
}

// NewPatch returns a Patch holding a value.
func NewPatch[T any](v T) Patch[T] {
	return Patch[T]{present: true, value: v}
}

// ClearPatch returns a Patch representing an explicit null.
func ClearPatch[T any]() Patch[T] {
	return Patch[T]{present: true, null: true}
}

// IsSet reports whether the field appeared in the request body at all.
func (p Patch[T]) IsSet() bool { return p.present }

// IsNull reports whether the field was an explicit null.
func (p Patch[T]) IsNull() bool { return p.present && p.null }

// Value returns the decoded value; meaningful only when IsSet and not IsNull.
func (p Patch[T]) Value() T { return p.value }

func (p *Patch[T]) UnmarshalJSON(data []byte) error {
	p.present = true
	if string(data) == "null" {
		p.null = true
		return nil
	}
	return json.Unmarshal(data, &p.value)
}

func (p Patch[T]) MarshalJSON() ([]byte, error) {
	if !p.present || p.null {
		return []byte("null"), nil
	}
	return json.Marshal(p.value)
}

// ReservationGroupPatch is the PATCH body for a reservation group. Omitted
// fields keep their stored value; explicit null clears the field.
type ReservationGroupPatch struct {
	CustomerName   Patch[string]  `json:"customerName"`
	CustomerPhone  Patch[string]  `json:"customerPhone"`
	ClientID       Patch[int64]   `json:"clientId"`
	StartDate      Patch[string]  `json:"startDate"`
	EndDate        Patch[string]  `json:"endDate"`
	UnitNumber     Patch[int64]   `json:"unitNumber"`
	DailyPrice     Patch[float64] `json:"dailyPrice"`
	TotalPrice     Patch[float64] `json:"totalPrice"`
	Notes          Patch[string]  `json:"notes"`
	Status         Patch[string]  `json:"status"`
	PoolAdults     Patch[int64]   `json:"poolAdultsCount"`
	PoolChildren   Patch[int64]   `json:"poolChildrenCount"`
	PoolAdultPrice Patch[float64] `json:"poolAdultPricePerDay"`
	PoolChildPrice Patch[float64] `json:"poolChildPricePerDay"`
}

// ClientPatch is the PATCH body for a client record.
type ClientPatch struct {
	Name     Patch[string] `json:"name"`
	Phone    Patch[string] `json:"phone"`
	Email    Patch[string] `json:"email"`
	Document Patch[string] `json:"document"`
	Address  Patch[string] `json:"address"`
	Vehicle  Patch[string] `json:"vehicle"`
}
