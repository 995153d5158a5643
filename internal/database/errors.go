package database

import "errors"

var (
	// ErrNotAvailable means the requested unit already has an active
	// reservation overlapping the candidate date range.
	ErrNotAvailable = errors.New("unit not available for the requested dates")

	// ErrPoolFull means the pool occupancy cap would be exceeded on at
	// least one day of the requested range.
	ErrPoolFull = errors.New("pool capacity exceeded for the requested dates")

	// ErrNotFound covers missing establishments, groups, payments, clients.
	ErrNotFound = errors.New("record not found")

	// ErrPaymentExceedsBalance means the payment would push the paid amount
	// beyond the group's total price.
	ErrPaymentExceedsBalance = errors.New("payment exceeds outstanding balance")

	// ErrClientInUse blocks deleting a client referenced by active groups.
	ErrClientInUse = errors.New("client has active reservations")
)
