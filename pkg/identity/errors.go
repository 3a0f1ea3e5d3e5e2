package identity

import "errors"

var (
	ErrInvalidCredentials = errors.New("identity: invalid login credentials")
	ErrInvalidToken       = errors.New("identity: invalid or expired token")
	ErrProvider           = errors.New("identity: provider request failed")
)
