package domain

import "errors"

var (
	// ErrSlotUnavailable means the reservation lost a race or the target slot
	// was already booked. Recoverable: the client picks another slot.
	ErrSlotUnavailable = errors.New("time slot is no longer available")

	// ErrBookingFailed is an unexpected persistence failure after a successful
	// reservation. The reservation has been compensated by the time it is
	// surfaced, so the request is retryable.
	ErrBookingFailed = errors.New("booking could not be completed")

	// ErrNotFound covers missing or already-inactive targets.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the identity is not allowed to touch the target.
	ErrForbidden = errors.New("forbidden")

	// ErrSlotBooked refuses destructive admin operations on a booked slot.
	ErrSlotBooked = errors.New("time slot has an active appointment")

	// ErrSlotExists signals a duplicate (service, date, time) triple.
	ErrSlotExists = errors.New("time slot already exists")

	ErrValidation = errors.New("validation failed")
)
