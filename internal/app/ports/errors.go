package ports

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
	ErrDelivery   = errors.New("delivery failed")
	ErrCapacity   = errors.New("capacity exceeded")
	ErrTimeout    = errors.New("timed out")
)
