package appointment

import "errors"

var (
	ErrNotFound   = errors.New("appointment not found")
	ErrValidation = errors.New("invalid appointment data")
)
