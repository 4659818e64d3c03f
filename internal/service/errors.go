package service

import "errors"

// ErrValidation marks malformed input. Callers wrap it with detail via %w so
// handlers can map every variant to a single status.
var ErrValidation = errors.New("validation failed")
