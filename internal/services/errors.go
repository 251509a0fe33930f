package services

import "errors"

// ErrInvalidInput marks validation failures on caller-supplied data.
// Handlers translate it into a 400 response.
var ErrInvalidInput = errors.New("invalid input")
