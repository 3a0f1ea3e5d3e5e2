package appointment

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/novadent/novadent_backend/pkg/sms"
	"github.com/novadent/novadent_backend/pkg/store"
)

const table = "appointments"

const (
	StatusPending     = "Pending"
	StatusConfirmed   = "Confirmed"
	StatusCancelled   = "Cancelled"
	StatusCompleted   = "Completed"
	StatusNoShow      = "No Show"
	StatusRescheduled = "Rescheduled"
)

var validStatuses = map[string]bool{
	StatusPending:     true,
	StatusConfirmed:   true,
	StatusCancelled:   true,
	StatusCompleted:   true,
	StatusNoShow:      true,
	StatusRescheduled: true,
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type Appointment struct {
	ID              string  `json:"id"`
	PatientID       *string `json:"patient_id"`
	PatientName     string  `json:"patient_name"`
	Phone           string  `json:"phone"`
	Date            string  `json:"date"`
	TimeSlot        string  `json:"time_slot"`
	ServiceType     string  `json:"service_type"`
	Status          string  `json:"status"`
	RescheduledDate *string `json:"rescheduled_date"`
	RescheduledTime *string `json:"rescheduled_time"`
	Notes           *string `json:"notes"`
	CreatedBy       *string `json:"created_by,omitempty"`
	CreatedAt       string  `json:"created_at,omitempty"`
}

type ListRequest struct {
	Date   string
	From   string
	To     string
	Offset int
	Limit  int
}

type CreateRequest struct {
	PatientID       *string `json:"patientId"`
	PatientName     string  `json:"patientName"`
	Phone           string  `json:"phone"`
	Date            string  `json:"date"`
	TimeSlot        string  `json:"timeSlot"`
	ServiceType     string  `json:"serviceType"`
	Status          string  `json:"status"`
	RescheduledDate *string `json:"rescheduledDate"`
	RescheduledTime *string `json:"rescheduledTime"`
	Notes           *string `json:"notes"`
}

// UpdateRequest is a sparse patch; nil means "leave the column alone".
type UpdateRequest struct {
	PatientID       *string `json:"patientId"`
	PatientName     *string `json:"patientName"`
	Phone           *string `json:"phone"`
	Date            *string `json:"date"`
	TimeSlot        *string `json:"timeSlot"`
	ServiceType     *string `json:"serviceType"`
	Status          *string `json:"status"`
	RescheduledDate *string `json:"rescheduledDate"`
	RescheduledTime *string `json:"rescheduledTime"`
	Notes           *string `json:"notes"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	List(ctx context.Context, db *store.Session, req ListRequest) ([]Appointment, error)
	Create(ctx context.Context, db *store.Session, req CreateRequest) (*Appointment, error)
	Update(ctx context.Context, db *store.Session, id string, req UpdateRequest) (*Appointment, error)
	Delete(ctx context.Context, db *store.Session, id string) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type appointmentService struct {
	sms *sms.Client
	now func() time.Time
}

func New(smsClient *sms.Client) Service {
	return &appointmentService{sms: smsClient, now: time.Now}
}

func (s *appointmentService) List(ctx context.Context, db *store.Session, req ListRequest) ([]Appointment, error) {
	if req.Limit < 1 || req.Limit > 500 {
		req.Limit = 100
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	q := db.From(table).Select("*")
	switch {
	case req.Date != "":
		q = q.Eq("date", req.Date)
	case req.From != "" && req.To != "":
		q = q.Gte("date", req.From).Lte("date", req.To)
	default:
		from, to := monthBounds(s.now())
		q = q.Gte("date", from).Lte("date", to)
	}
	q = q.Order("date", true).Order("time_slot", true).Range(req.Offset, req.Limit)

	var appts []Appointment
	if err := q.Get(ctx, &appts); err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}

func (s *appointmentService) Create(ctx context.Context, db *store.Session, req CreateRequest) (*Appointment, error) {
	req.PatientName = strings.TrimSpace(req.PatientName)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Date = strings.TrimSpace(req.Date)
	req.TimeSlot = asHHMM(req.TimeSlot)

	if req.PatientName == "" || req.Phone == "" || req.Date == "" || strings.TrimSpace(req.TimeSlot) == "" {
		return nil, fmt.Errorf("%w: patient_name, phone, date and time_slot are required", ErrValidation)
	}
	if req.ServiceType == "" {
		req.ServiceType = "Checkup"
	}
	if req.Status == "" {
		req.Status = StatusPending
	}
	if !validStatuses[req.Status] {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, req.Status)
	}
	if req.Status == StatusRescheduled {
		if !present(req.RescheduledDate) || !present(req.RescheduledTime) {
			return nil, fmt.Errorf("%w: rescheduled appointments need both rescheduled_date and rescheduled_time", ErrValidation)
		}
		// Promote the new slot to the canonical fields so date-range
		// queries surface the appointment on its new day. The
		// rescheduled_* fields stay behind as history.
		req.Date = *req.RescheduledDate
		req.TimeSlot = asHHMM(*req.RescheduledTime)
	}

	row := map[string]any{
		"patient_name": req.PatientName,
		"phone":        req.Phone,
		"date":         req.Date,
		"time_slot":    req.TimeSlot,
		"service_type": req.ServiceType,
		"status":       req.Status,
	}
	if req.PatientID != nil {
		row["patient_id"] = *req.PatientID
	}
	if req.RescheduledDate != nil {
		row["rescheduled_date"] = *req.RescheduledDate
	}
	if req.RescheduledTime != nil {
		row["rescheduled_time"] = *req.RescheduledTime
	}
	if req.Notes != nil {
		row["notes"] = *req.Notes
	}

	var created []Appointment
	if err := db.From(table).Insert(ctx, row, &created); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("create appointment: store returned no row")
	}

	s.notify(ctx, &created[0])
	return &created[0], nil
}

func (s *appointmentService) Update(ctx context.Context, db *store.Session, id string, req UpdateRequest) (*Appointment, error) {
	patch := req.asPatch()
	if len(patch) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", ErrValidation)
	}

	var current Appointment
	err := db.From(table).Select("*").Eq("id", id).Single().Get(ctx, &current)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	if req.TimeSlot != nil {
		patch["time_slot"] = asHHMM(*req.TimeSlot)
	}
	if req.Status != nil && !validStatuses[*req.Status] {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *req.Status)
	}

	merged := current
	merged.overlay(req)
	if merged.Status == StatusRescheduled {
		if !present(merged.RescheduledDate) || !present(merged.RescheduledTime) {
			return nil, fmt.Errorf("%w: rescheduled appointments need both rescheduled_date and rescheduled_time", ErrValidation)
		}
	}

	// Promotion: a patch that reschedules without also moving the
	// canonical slot gets the canonical slot moved for it.
	reschedules := req.RescheduledDate != nil || (req.Status != nil && *req.Status == StatusRescheduled)
	if reschedules && req.Date == nil && present(merged.RescheduledDate) {
		patch["date"] = *merged.RescheduledDate
	}
	retimes := req.RescheduledTime != nil || (req.Status != nil && *req.Status == StatusRescheduled)
	if retimes && req.TimeSlot == nil && present(merged.RescheduledTime) {
		patch["time_slot"] = asHHMM(*merged.RescheduledTime)
	}

	var updated []Appointment
	if err := db.From(table).Eq("id", id).Update(ctx, patch, &updated); err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	if len(updated) == 0 {
		// Row vanished between the load and the write.
		return nil, ErrNotFound
	}

	if _, ok := patch["date"]; ok {
		s.notify(ctx, &updated[0])
	}
	return &updated[0], nil
}

func (s *appointmentService) Delete(ctx context.Context, db *store.Session, id string) error {
	n, err := db.From(table).Eq("id", id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// notify sends a best-effort confirmation SMS. Failures are logged,
// never surfaced to the caller.
func (s *appointmentService) notify(ctx context.Context, a *Appointment) {
	if s.sms == nil || !s.sms.IsEnabled() {
		return
	}
	phone, err := s.sms.NormalizePhone(a.Phone)
	if err != nil {
		slog.Debug("skipping appointment sms", "appointment_id", a.ID, "error", err)
		return
	}
	if err := s.sms.SendAppointmentConfirmation(ctx, phone, a.Date, a.TimeSlot); err != nil {
		slog.Warn("appointment sms failed", "appointment_id", a.ID, "error", err)
	}
}

func (r UpdateRequest) asPatch() map[string]any {
	patch := map[string]any{}
	set := func(col string, v *string) {
		if v != nil {
			patch[col] = *v
		}
	}
	set("patient_id", r.PatientID)
	set("patient_name", r.PatientName)
	set("phone", r.Phone)
	set("date", r.Date)
	set("time_slot", r.TimeSlot)
	set("service_type", r.ServiceType)
	set("status", r.Status)
	set("rescheduled_date", r.RescheduledDate)
	set("rescheduled_time", r.RescheduledTime)
	set("notes", r.Notes)
	return patch
}

func (a *Appointment) overlay(r UpdateRequest) {
	if r.PatientID != nil {
		a.PatientID = r.PatientID
	}
	if r.PatientName != nil {
		a.PatientName = *r.PatientName
	}
	if r.Phone != nil {
		a.Phone = *r.Phone
	}
	if r.Date != nil {
		a.Date = *r.Date
	}
	if r.TimeSlot != nil {
		a.TimeSlot = asHHMM(*r.TimeSlot)
	}
	if r.ServiceType != nil {
		a.ServiceType = *r.ServiceType
	}
	if r.Status != nil {
		a.Status = *r.Status
	}
	if r.RescheduledDate != nil {
		a.RescheduledDate = r.RescheduledDate
	}
	if r.RescheduledTime != nil {
		a.RescheduledTime = r.RescheduledTime
	}
	if r.Notes != nil {
		a.Notes = r.Notes
	}
}

func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

var hhmmRe = regexp.MustCompile(`^(\d{1,2}):(\d{1,2})$`)

// asHHMM normalizes a time to zero-padded 24-hour HH:MM, clamping hour
// to 0-23 and minute to 0-59. Inputs that do not look like H:M at all
// are passed through untouched; the store accepts them and the UI shows
// whatever was typed.
func asHHMM(s string) string {
	m := hhmmRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return s
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	if h > 23 {
		h = 23
	}
	if mm > 59 {
		mm = 59
	}
	return fmt.Sprintf("%02d:%02d", h, mm)
}

func monthBounds(now time.Time) (string, string) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	last := first.AddDate(0, 1, -1)
	return first.Format("2006-01-02"), last.Format("2006-01-02")
}
