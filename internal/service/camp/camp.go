package camp

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/novadent/novadent_backend/pkg/email"
	"github.com/novadent/novadent_backend/pkg/store"
)

const (
	table    = "user_submissions"
	logsView = "user_submissions_who"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// Submission is one outreach (dental camp) lead, typically filed from the
// public landing page without a signed-in user.
type Submission struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	DOB             *string `json:"dob"`
	Phone           string  `json:"phone"`
	Email           *string `json:"email"`
	Institution     *string `json:"institution"`
	InstitutionType *string `json:"institution_type"`
	Comments        *string `json:"comments"`
	Status          string  `json:"status"`
	CreatedBy       *string `json:"created_by,omitempty"`
	CreatedAt       string  `json:"created_at,omitempty"`
}

// LogEntry is one row of the submissions audit view: who touched which
// submission and how.
type LogEntry struct {
	ID           string  `json:"id"`
	SubmissionID *string `json:"submission_id"`
	Action       string  `json:"action"`
	ActorEmail   *string `json:"actor_email"`
	OccurredAt   string  `json:"occurred_at"`
}

type CreateRequest struct {
	Name            string  `json:"name"`
	DOB             *string `json:"dob"`
	Phone           string  `json:"phone"`
	Email           *string `json:"email"`
	Institution     *string `json:"institution"`
	InstitutionType *string `json:"institutionType"`
	Comments        *string `json:"comments"`
}

type UpdateRequest struct {
	Name            *string `json:"name"`
	DOB             *string `json:"dob"`
	Phone           *string `json:"phone"`
	Email           *string `json:"email"`
	Institution     *string `json:"institution"`
	InstitutionType *string `json:"institutionType"`
	Comments        *string `json:"comments"`
	Status          *string `json:"status"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	List(ctx context.Context, db *store.Session) ([]Submission, error)
	Get(ctx context.Context, db *store.Session, id string) (*Submission, error)
	Create(ctx context.Context, db *store.Session, req CreateRequest) (*Submission, error)
	Update(ctx context.Context, db *store.Session, id string, req UpdateRequest) (*Submission, error)
	Delete(ctx context.Context, db *store.Session, id string, requester uuid.UUID) error
	Logs(ctx context.Context, db *store.Session, submissionID string) ([]LogEntry, error)
}

type campService struct {
	mail     *email.Client
	notifyTo string
}

func New(mail *email.Client, notifyTo string) Service {
	return &campService{mail: mail, notifyTo: notifyTo}
}

func (s *campService) List(ctx context.Context, db *store.Session) ([]Submission, error) {
	var subs []Submission
	err := db.From(table).Select("*").Order("created_at", false).Get(ctx, &subs)
	if err != nil {
		return nil, fmt.Errorf("list camp submissions: %w", err)
	}
	return subs, nil
}

func (s *campService) Get(ctx context.Context, db *store.Session, id string) (*Submission, error) {
	var sub Submission
	err := db.From(table).Select("*").Eq("id", id).Single().Get(ctx, &sub)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get camp submission: %w", err)
	}
	return &sub, nil
}

func (s *campService) Create(ctx context.Context, db *store.Session, req CreateRequest) (*Submission, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" || req.Phone == "" {
		return nil, fmt.Errorf("%w: name and phone are required", ErrValidation)
	}
	if req.Email != nil && strings.TrimSpace(*req.Email) != "" && !emailRe.MatchString(strings.TrimSpace(*req.Email)) {
		return nil, fmt.Errorf("%w: email address looks malformed", ErrValidation)
	}

	row := map[string]any{
		"name":  req.Name,
		"phone": req.Phone,
	}
	set := func(col string, v *string) {
		if v != nil {
			row[col] = strings.TrimSpace(*v)
		}
	}
	set("dob", req.DOB)
	set("email", req.Email)
	set("institution", req.Institution)
	set("institution_type", req.InstitutionType)
	set("comments", req.Comments)

	var created []Submission
	if err := db.From(table).Insert(ctx, row, &created); err != nil {
		return nil, fmt.Errorf("create camp submission: %w", err)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("create camp submission: store returned no row")
	}

	s.alert(ctx, &created[0])
	return &created[0], nil
}

func (s *campService) Update(ctx context.Context, db *store.Session, id string, req UpdateRequest) (*Submission, error) {
	if req.Email != nil && strings.TrimSpace(*req.Email) != "" && !emailRe.MatchString(strings.TrimSpace(*req.Email)) {
		return nil, fmt.Errorf("%w: email address looks malformed", ErrValidation)
	}

	patch := map[string]any{}
	set := func(col string, v *string) {
		if v != nil {
			patch[col] = *v
		}
	}
	set("name", req.Name)
	set("dob", req.DOB)
	set("phone", req.Phone)
	set("email", req.Email)
	set("institution", req.Institution)
	set("institution_type", req.InstitutionType)
	set("comments", req.Comments)
	set("status", req.Status)
	if len(patch) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", ErrValidation)
	}

	var updated []Submission
	if err := db.From(table).Eq("id", id).Update(ctx, patch, &updated); err != nil {
		return nil, fmt.Errorf("update camp submission: %w", err)
	}
	if len(updated) == 0 {
		return nil, ErrNotFound
	}
	return &updated[0], nil
}

func (s *campService) Delete(ctx context.Context, db *store.Session, id string, requester uuid.UUID) error {
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
		return fmt.Errorf("delete camp submission: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Logs reads the submissions audit view, optionally narrowed to one
// submission.
func (s *campService) Logs(ctx context.Context, db *store.Session, submissionID string) ([]LogEntry, error) {
	q := db.From(logsView).Select("*").Order("occurred_at", false)
	if submissionID != "" {
		q = q.Eq("submission_id", submissionID)
	}
	var logs []LogEntry
	if err := q.Get(ctx, &logs); err != nil {
		return nil, fmt.Errorf("list submission logs: %w", err)
	}
	return logs, nil
}

// alert mails the clinic inbox about a fresh lead. Best effort only.
func (s *campService) alert(ctx context.Context, sub *Submission) {
	if s.mail == nil || !s.mail.Enabled() || s.notifyTo == "" {
		return
	}
	data := email.CampSubmissionData{Name: sub.Name, Phone: sub.Phone}
	if sub.Email != nil {
		data.Email = *sub.Email
	}
	if sub.Institution != nil {
		data.Institution = *sub.Institution
	}
	if sub.InstitutionType != nil {
		data.InstitutionType = *sub.InstitutionType
	}
	if sub.Comments != nil {
		data.Comments = *sub.Comments
	}
	if err := s.mail.Send(ctx, email.BuildCampSubmissionAlert(s.notifyTo, data)); err != nil {
		slog.Warn("camp submission alert failed", "submission_id", sub.ID, "error", err)
	}
}
