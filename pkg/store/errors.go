package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrNotFound  = errors.New("store: row not found")
	ErrForbidden = errors.New("store: forbidden by row-level security")
)

// Error is a structured error returned by the data API.
type Error struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details"`
	Hint       string `json:"hint"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("store: %s (code=%s, status=%d)", e.Message, e.Code, e.StatusCode)
	}
	return fmt.Sprintf("store: request failed with status %d", e.StatusCode)
}

// PGRST116: "JSON object requested, multiple (or no) rows returned" — the
// not-found sentinel for Single() reads. 42501 is Postgres
// insufficient_privilege, what an RLS policy violation surfaces as.
const (
	codeNoRows             = "PGRST116"
	codeInsufficientPrivil = "42501"
)

func parseError(status int, raw []byte) error {
	se := &Error{StatusCode: status}
	if len(raw) > 0 {
		// Best effort; a non-JSON body keeps the bare status error.
		_ = json.Unmarshal(raw, se)
	}

	switch {
	case se.Code == codeNoRows || status == http.StatusNotAcceptable:
		return fmt.Errorf("%w: %s", ErrNotFound, se.Message)
	case se.Code == codeInsufficientPrivil || status == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrForbidden, se.Message)
	}
	return se
}

// IsNotFound reports whether err is the store's not-found sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsForbidden reports whether err was an RLS policy rejection.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// UpstreamMessage extracts a client-presentable message from a store error,
// falling back to the raw error text.
func UpstreamMessage(err error) string {
	var se *Error
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return strings.TrimPrefix(err.Error(), "store: ")
}
