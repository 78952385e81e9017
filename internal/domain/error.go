package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("payment not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrGateway         = errors.New("payment gateway rejected the request")
	ErrDelivery        = errors.New("notification delivery failed")
	ErrUnknownStatus   = errors.New("unknown payment status")
	ErrNoRecipient     = errors.New("notification recipient not resolved")
	ErrTaskNotFound    = errors.New("retry task not found")
)
