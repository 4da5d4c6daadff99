package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	// ErrNetworkDenied is returned by providers when policy forbids network use.
	ErrNetworkDenied = errors.New("network use not allowed")
)
