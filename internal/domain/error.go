package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound     = errors.New("entity not found")
	ErrValidation   = errors.New("invalid request")
	ErrUpstream     = errors.New("upstream service failure")
	ErrUnauthorized = errors.New("unauthorized")
	ErrTurnLimit    = errors.New("conversation turn limit reached")
	ErrRateLimited  = errors.New("rate limit exceeded")
)
