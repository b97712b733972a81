// Package store provides data access for studios, availability rules, slots
// and bookings. The sentinel errors below let upper layers distinguish
// failure scenarios without inspecting SQL errors: handlers translate
// ErrNotFound into 404, ErrConflict into 409 and ErrInvalid into 422, while
// anything else is treated as a repository failure (500).
package store

import "errors"

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an operation cannot proceed because of the
// current slot/booking state, such as requesting a slot that is on hold.
var ErrConflict = errors.New("conflict")

// ErrInvalid is returned for malformed input, such as a weekly rule without
// a weekday.
var ErrInvalid = errors.New("invalid input")
