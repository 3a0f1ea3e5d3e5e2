package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/novadent/novadent_backend/pkg/store"
)

const view = "audit_event_log"

var ErrValidation = errors.New("invalid audit query")

var validActions = map[string]bool{
	"INSERT": true,
	"UPDATE": true,
	"DELETE": true,
}

// Entry is one row of the audit view, written store-side by table
// triggers. The API only ever reads it.
type Entry struct {
	ID         string          `json:"id"`
	TableName  string          `json:"table_name"`
	Action     string          `json:"action"`
	RowID      *string         `json:"row_id"`
	ActorID    *string         `json:"actor_id"`
	ActorEmail *string         `json:"actor_email"`
	OldData    json.RawMessage `json:"old_data,omitempty"`
	NewData    json.RawMessage `json:"new_data,omitempty"`
	HappenedAt string          `json:"happened_at"`
}

type RecentRequest struct {
	Action string
	Limit  int
	Offset int
}

type Service interface {
	Recent(ctx context.Context, db *store.Session, req RecentRequest) ([]Entry, error)
}

type auditService struct{}

func New() Service {
	return &auditService{}
}

func (s *auditService) Recent(ctx context.Context, db *store.Session, req RecentRequest) ([]Entry, error) {
	action := strings.ToUpper(strings.TrimSpace(req.Action))
	if action != "" && !validActions[action] {
		return nil, fmt.Errorf("%w: action must be INSERT, UPDATE or DELETE", ErrValidation)
	}
	if req.Limit < 1 {
		req.Limit = 50
	}
	if req.Limit > 200 {
		req.Limit = 200
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	q := db.From(view).Select("*").Order("happened_at", false).Range(req.Offset, req.Limit)
	if action != "" {
		q = q.Eq("action", action)
	}

	var entries []Entry
	if err := q.Get(ctx, &entries); err != nil {
		return nil, fmt.Errorf("recent audit events: %w", err)
	}
	return entries, nil
}
