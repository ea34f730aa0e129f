package models

import (
	"errors"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")

	ErrMalformedAd          = errors.New("malformed ad")
	ErrInventoryUnavailable = errors.New("ad inventory is not configured")
	ErrJobsUnavailable      = errors.New("background jobs are not configured")
)
