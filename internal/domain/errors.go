package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrQuotaExceeded      = errors.New("quota exceeded")
	ErrUnsupportedFeature = errors.New("unsupported feature")
)
