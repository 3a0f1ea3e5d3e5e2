package patient

import "errors"

var (
	ErrNotFound   = errors.New("patient not found")
	ErrValidation = errors.New("invalid patient data")
	ErrForbidden  = errors.New("only the creator can delete this patient")
)
