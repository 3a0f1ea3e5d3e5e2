package camp

import "errors"

var (
	ErrNotFound   = errors.New("camp submission not found")
	ErrValidation = errors.New("invalid camp submission")
	ErrForbidden  = errors.New("only the creator can delete this submission")
)
