package visit

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/novadent/novadent_backend/pkg/store"
)

const table = "visits"

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// Procedure is one billable line item on a visit. The shape is open-ended
// (clinics track different fields per treatment), so it stays a map; only
// the money and date keys get coerced, see sanitizeProcedure.
type Procedure = map[string]any

type Visit struct {
	ID             string          `json:"id"`
	PatientID      string          `json:"patient_id"`
	Date           string          `json:"date"`
	ChiefComplaint *string         `json:"chief_complaint"`
	Notes          *string         `json:"notes"`
	Findings       json.RawMessage `json:"findings,omitempty"`
	Procedures     []Procedure     `json:"procedures"`
	CreatedBy      *string         `json:"created_by,omitempty"`
	CreatedAt      string          `json:"created_at,omitempty"`
}

type CreateRequest struct {
	Date           string          `json:"date"`
	ChiefComplaint *string         `json:"chiefComplaint"`
	Notes          *string         `json:"notes"`
	Findings       json.RawMessage `json:"findings"`
	Procedures     []Procedure     `json:"procedures"`
}

type UpdateRequest struct {
	Date           *string         `json:"date"`
	ChiefComplaint *string         `json:"chiefComplaint"`
	Notes          *string         `json:"notes"`
	Findings       json.RawMessage `json:"findings"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	ListByPatient(ctx context.Context, db *store.Session, patientID string) ([]Visit, error)
	Create(ctx context.Context, db *store.Session, patientID string, req CreateRequest) (*Visit, error)
	Get(ctx context.Context, db *store.Session, visitID string) (*Visit, error)
	Update(ctx context.Context, db *store.Session, visitID string, req UpdateRequest) (*Visit, error)
	Delete(ctx context.Context, db *store.Session, visitID string) error

	AddProcedure(ctx context.Context, db *store.Session, visitID string, data Procedure) (*Visit, error)
	UpdateProcedure(ctx context.Context, db *store.Session, visitID string, index int, patch Procedure) (*Visit, error)
	DeleteProcedure(ctx context.Context, db *store.Session, visitID string, index int) (*Visit, error)
}

type visitService struct{}

func New() Service {
	return &visitService{}
}

// ---------------------------------------------------------------------------
// Visit CRUD
// ---------------------------------------------------------------------------

func (s *visitService) ListByPatient(ctx context.Context, db *store.Session, patientID string) ([]Visit, error) {
	var visits []Visit
	err := db.From(table).Select("*").
		Eq("patient_id", patientID).
		Order("date", false).
		Order("created_at", false).
		Get(ctx, &visits)
	if err != nil {
		return nil, fmt.Errorf("list visits: %w", err)
	}
	return visits, nil
}

func (s *visitService) Create(ctx context.Context, db *store.Session, patientID string, req CreateRequest) (*Visit, error) {
	if strings.TrimSpace(patientID) == "" {
		return nil, fmt.Errorf("%w: patient id is required", ErrValidation)
	}
	if strings.TrimSpace(req.Date) == "" {
		req.Date = time.Now().Format("2006-01-02")
	}

	procs := make([]Procedure, 0, len(req.Procedures))
	for _, p := range req.Procedures {
		procs = append(procs, newProcedure(p))
	}

	row := map[string]any{
		"patient_id": patientID,
		"date":       req.Date,
		"procedures": procs,
	}
	if req.ChiefComplaint != nil {
		row["chief_complaint"] = *req.ChiefComplaint
	}
	if req.Notes != nil {
		row["notes"] = *req.Notes
	}
	if len(req.Findings) > 0 {
		row["findings"] = req.Findings
	}

	var created []Visit
	if err := db.From(table).Insert(ctx, row, &created); err != nil {
		return nil, fmt.Errorf("create visit: %w", err)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("create visit: store returned no row")
	}
	return &created[0], nil
}

func (s *visitService) Get(ctx context.Context, db *store.Session, visitID string) (*Visit, error) {
	var v Visit
	err := db.From(table).Select("*").Eq("id", visitID).Single().Get(ctx, &v)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get visit: %w", err)
	}
	return &v, nil
}

func (s *visitService) Update(ctx context.Context, db *store.Session, visitID string, req UpdateRequest) (*Visit, error) {
	patch := map[string]any{}
	if req.Date != nil {
		patch["date"] = *req.Date
	}
	if req.ChiefComplaint != nil {
		patch["chief_complaint"] = *req.ChiefComplaint
	}
	if req.Notes != nil {
		patch["notes"] = *req.Notes
	}
	if len(req.Findings) > 0 {
		patch["findings"] = req.Findings
	}
	if len(patch) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", ErrValidation)
	}

	var updated []Visit
	if err := db.From(table).Eq("id", visitID).Update(ctx, patch, &updated); err != nil {
		return nil, fmt.Errorf("update visit: %w", err)
	}
	if len(updated) == 0 {
		return nil, ErrNotFound
	}
	return &updated[0], nil
}

func (s *visitService) Delete(ctx context.Context, db *store.Session, visitID string) error {
	n, err := db.From(table).Eq("id", visitID).Delete(ctx)
	if err != nil {
		return fmt.Errorf("delete visit: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------------------------------------------------------------------------
// Procedure sub-document operations
// ---------------------------------------------------------------------------

// The store has no "update nth JSON array element" operation, so every
// procedure mutation round-trips the whole array. Last write wins when two
// callers edit the same visit concurrently; acceptable at clinic scale.

func (s *visitService) AddProcedure(ctx context.Context, db *store.Session, visitID string, data Procedure) (*Visit, error) {
	cur, err := s.Get(ctx, db, visitID)
	if err != nil {
		return nil, err
	}
	procs := append(cur.Procedures, newProcedure(data))
	return s.persistProcedures(ctx, db, visitID, procs)
}

func (s *visitService) UpdateProcedure(ctx context.Context, db *store.Session, visitID string, index int, patch Procedure) (*Visit, error) {
	cur, err := s.Get(ctx, db, visitID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(cur.Procedures) {
		return nil, fmt.Errorf("%w: index %d, array length %d", ErrIndexOutOfRange, index, len(cur.Procedures))
	}

	merged := make(Procedure, len(cur.Procedures[index]))
	for k, v := range cur.Procedures[index] {
		merged[k] = v
	}
	for k, v := range sanitizeProcedure(patch) {
		merged[k] = v
	}
	merged["due"] = dueAmount(merged)
	cur.Procedures[index] = merged

	return s.persistProcedures(ctx, db, visitID, cur.Procedures)
}

func (s *visitService) DeleteProcedure(ctx context.Context, db *store.Session, visitID string, index int) (*Visit, error) {
	cur, err := s.Get(ctx, db, visitID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(cur.Procedures) {
		return nil, fmt.Errorf("%w: index %d, array length %d", ErrIndexOutOfRange, index, len(cur.Procedures))
	}
	procs := append(cur.Procedures[:index:index], cur.Procedures[index+1:]...)
	return s.persistProcedures(ctx, db, visitID, procs)
}

func (s *visitService) persistProcedures(ctx context.Context, db *store.Session, visitID string, procs []Procedure) (*Visit, error) {
	if procs == nil {
		procs = []Procedure{}
	}
	var updated []Visit
	err := db.From(table).Eq("id", visitID).Update(ctx, map[string]any{"procedures": procs}, &updated)
	if err != nil {
		return nil, fmt.Errorf("save procedures: %w", err)
	}
	if len(updated) == 0 {
		return nil, ErrNotFound
	}
	return &updated[0], nil
}

// ---------------------------------------------------------------------------
// Sanitization
// ---------------------------------------------------------------------------

// Date keys are stored under both spellings because older exports read
// snake_case while the current client writes camelCase.
var procedureDateKeys = [][2]string{
	{"visitDate", "visit_date"},
	{"nextApptDate", "next_appt_date"},
}

// newProcedure sanitizes a freshly supplied procedure, fills the money
// defaults and assigns a stable element id so readers can tell entries
// apart even after positional deletes shift indices.
func newProcedure(data Procedure) Procedure {
	p := sanitizeProcedure(data)
	if id, _ := p["id"].(string); id == "" {
		p["id"] = uuid.NewString()
	}
	if _, ok := p["total"]; !ok {
		p["total"] = float64(0)
	}
	if _, ok := p["paid"]; !ok {
		p["paid"] = float64(0)
	}
	p["due"] = dueAmount(p)
	return p
}

// sanitizeProcedure coerces the keys it knows about and leaves the rest
// alone. Money keys become float64, date keys become YYYY-MM-DD or null
// and are mirrored across both spellings.
func sanitizeProcedure(in Procedure) Procedure {
	out := make(Procedure, len(in))
	for k, v := range in {
		out[k] = v
	}
	for _, k := range []string{"total", "paid"} {
		if _, ok := out[k]; ok {
			out[k] = toNumber(out[k])
		}
	}
	for _, pair := range procedureDateKeys {
		camel, snake := pair[0], pair[1]
		v, ok := out[camel]
		if !ok {
			v, ok = out[snake]
		}
		if !ok {
			continue
		}
		if d := normalizeDate(v); d != "" {
			out[camel], out[snake] = d, d
		} else {
			out[camel], out[snake] = nil, nil
		}
	}
	return out
}

func dueAmount(p Procedure) float64 {
	due := toNumber(p["total"]) - toNumber(p["paid"])
	if due < 0 {
		return 0
	}
	return due
}

// toNumber forces a JSON value into a usable float64. NaN, infinities,
// unparseable strings and foreign types all collapse to 0.
func toNumber(v any) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		f, _ = n.Float64()
	case string:
		if _, err := fmt.Sscanf(strings.TrimSpace(n), "%g", &f); err != nil {
			return 0
		}
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05", "02/01/2006"}

// normalizeDate returns the YYYY-MM-DD form of v, or "" if v does not
// hold a recognizable date.
func normalizeDate(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}
