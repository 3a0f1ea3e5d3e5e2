package visit

import "errors"

var (
	ErrNotFound        = errors.New("visit not found")
	ErrValidation      = errors.New("invalid visit data")
	ErrIndexOutOfRange = errors.New("procedure index out of range")
)
