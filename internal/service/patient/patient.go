package patient

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/novadent/novadent_backend/pkg/store"
)

const table = "patients"

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type Patient struct {
	ID                    string  `json:"id"`
	Name                  string  `json:"name"`
	Gender                *string `json:"gender"`
	DOB                   *string `json:"dob"`
	Phone                 *string `json:"phone"`
	Email                 *string `json:"email"`
	Address               *string `json:"address"`
	EmergencyContactName  *string `json:"emergency_contact_name"`
	EmergencyContactPhone *string `json:"emergency_contact_phone"`
	PhotoURL              *string `json:"photo_url"`
	CreatedBy             *string `json:"created_by,omitempty"`
	CreatedAt             string  `json:"created_at,omitempty"`
}

type ListRequest struct {
	Search string
	Offset int
	Limit  int
}

type CreateRequest struct {
	Name                  string  `json:"name"`
	Gender                *string `json:"gender"`
	DOB                   *string `json:"dob"`
	Phone                 *string `json:"phone"`
	Email                 *string `json:"email"`
	Address               *string `json:"address"`
	EmergencyContactName  *string `json:"emergencyContactName"`
	EmergencyContactPhone *string `json:"emergencyContactPhone"`
}

type UpdateRequest struct {
	Name                  *string `json:"name"`
	Gender                *string `json:"gender"`
	DOB                   *string `json:"dob"`
	Phone                 *string `json:"phone"`
	Email                 *string `json:"email"`
	Address               *string `json:"address"`
	EmergencyContactName  *string `json:"emergencyContactName"`
	EmergencyContactPhone *string `json:"emergencyContactPhone"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	List(ctx context.Context, db *store.Session, req ListRequest) ([]Patient, error)
	Get(ctx context.Context, db *store.Session, id string) (*Patient, error)
	Create(ctx context.Context, db *store.Session, req CreateRequest) (*Patient, error)
	Update(ctx context.Context, db *store.Session, id string, req UpdateRequest) (*Patient, error)
	Delete(ctx context.Context, db *store.Session, id string, requester uuid.UUID) error
	SetPhoto(ctx context.Context, db *store.Session, id, photoURL string) (*Patient, error)
}

type patientService struct{}

func New() Service {
	return &patientService{}
}

func (s *patientService) List(ctx context.Context, db *store.Session, req ListRequest) ([]Patient, error) {
	if req.Limit < 1 || req.Limit > 500 {
		req.Limit = 100
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	q := db.From(table).Select("*")
	if search := strings.TrimSpace(req.Search); search != "" {
		q = q.Ilike("name", "*"+search+"*")
	}
	q = q.Order("created_at", false).Range(req.Offset, req.Limit)

	var patients []Patient
	if err := q.Get(ctx, &patients); err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return patients, nil
}

func (s *patientService) Get(ctx context.Context, db *store.Session, id string) (*Patient, error) {
	var p Patient
	err := db.From(table).Select("*").Eq("id", id).Single().Get(ctx, &p)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return &p, nil
}

// Create goes through the create_patient_with_initials procedure, which
// inserts the patient and seeds its initial medical history and initial
// visit in one transaction.
func (s *patientService) Create(ctx context.Context, db *store.Session, req CreateRequest) (*Patient, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}

	args := map[string]any{
		"p_name":                    req.Name,
		"p_gender":                  req.Gender,
		"p_dob":                     req.DOB,
		"p_phone":                   req.Phone,
		"p_email":                   req.Email,
		"p_address":                 req.Address,
		"p_emergency_contact_name":  req.EmergencyContactName,
		"p_emergency_contact_phone": req.EmergencyContactPhone,
	}
	var p Patient
	if err := db.RPC(ctx, "create_patient_with_initials", args, &p); err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	return &p, nil
}

func (s *patientService) Update(ctx context.Context, db *store.Session, id string, req UpdateRequest) (*Patient, error) {
	patch := map[string]any{}
	set := func(col string, v *string) {
		if v != nil {
			patch[col] = *v
		}
	}
	set("name", req.Name)
	set("gender", req.Gender)
	set("dob", req.DOB)
	set("phone", req.Phone)
	set("email", req.Email)
	set("address", req.Address)
	set("emergency_contact_name", req.EmergencyContactName)
	set("emergency_contact_phone", req.EmergencyContactPhone)
	if len(patch) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", ErrValidation)
	}
	if n, ok := patch["name"].(string); ok && strings.TrimSpace(n) == "" {
		return nil, fmt.Errorf("%w: name cannot be blank", ErrValidation)
	}

	var updated []Patient
	if err := db.From(table).Eq("id", id).Update(ctx, patch, &updated); err != nil {
		return nil, fmt.Errorf("update patient: %w", err)
	}
	if len(updated) == 0 {
		return nil, ErrNotFound
	}
	return &updated[0], nil
}

// Delete checks ownership before issuing the delete so the caller gets a
// clear forbidden message instead of the store's silent zero-row result.
// The row-level policy remains the backstop.
func (s *patientService) Delete(ctx context.Context, db *store.Session, id string, requester uuid.UUID) error {
	cur, err := s.Get(ctx, db, id)
	if err != nil {
		return err
	}
	if cur.CreatedBy == nil || *cur.CreatedBy != requester.String() {
		return ErrForbidden
	}

	n, err := db.From(table).Eq("id", id).Delete(ctx)
	if err != nil {
		if store.IsForbidden(err) {
			return ErrForbidden
		}
		return fmt.Errorf("delete patient: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *patientService) SetPhoto(ctx context.Context, db *store.Session, id, photoURL string) (*Patient, error) {
	if strings.TrimSpace(photoURL) == "" {
		return nil, fmt.Errorf("%w: photo url is required", ErrValidation)
	}
	var updated []Patient
	err := db.From(table).Eq("id", id).Update(ctx, map[string]any{"photo_url": photoURL}, &updated)
	if err != nil {
		return nil, fmt.Errorf("set patient photo: %w", err)
	}
	if len(updated) == 0 {
		return nil, ErrNotFound
	}
	return &updated[0], nil
}
