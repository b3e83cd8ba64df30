package domain

import "errors"

var (
	// ErrNotFound indicates resource not found
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidRequest indicates invalid request
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUnauthorized indicates unauthorized access
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRateLimited indicates the upstream gateway rejected for quota
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrPaymentRequired indicates the upstream gateway requires funds
	ErrPaymentRequired = errors.New("payment required")
)
