package service

import "errors"

// Error kinds surfaced to the API layer. Services wrap these with context via
// fmt.Errorf("...: %w", ...); handlers map the kind to an HTTP status.
var (
	// ErrNotFound means a referenced product, cart, item or order is missing
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput means the request itself is malformed, e.g. quantity < 1
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidState means a business rule was violated, e.g. insufficient
	// stock or an empty-cart checkout
	ErrInvalidState = errors.New("invalid state")
)
