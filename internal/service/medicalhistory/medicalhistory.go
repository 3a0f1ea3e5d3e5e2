package medicalhistory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/novadent/novadent_backend/pkg/store"
)

const table = "medical_histories"

var ErrValidation = errors.New("invalid medical history data")

// Tri-state screening answers. Unset (null) means the question was not
// answered; an empty string on save clears a previous answer.
const (
	AnswerYes = "Yes"
	AnswerNo  = "No"
)

// MedicalHistory is the per-patient intake sheet: screening questions
// answered Yes/No with free-text detail, a checklist of known conditions,
// and a catch-all field. One row per patient, keyed by a unique patient_id.
type MedicalHistory struct {
	ID        string `json:"id"`
	PatientID string `json:"patient_id"`

	UnderMedicalCare       *string `json:"under_medical_care"`
	UnderMedicalCareDetail *string `json:"under_medical_care_detail"`
	TakingMedication       *string `json:"taking_medication"`
	TakingMedicationDetail *string `json:"taking_medication_detail"`
	Allergy                *string `json:"allergy"`
	AllergyDetail          *string `json:"allergy_detail"`
	Pregnancy              *string `json:"pregnancy"`
	PregnancyDetail        *string `json:"pregnancy_detail"`

	Diabetes         bool `json:"diabetes"`
	Hypertension     bool `json:"hypertension"`
	HeartDisease     bool `json:"heart_disease"`
	Asthma           bool `json:"asthma"`
	Epilepsy         bool `json:"epilepsy"`
	ThyroidDisorder  bool `json:"thyroid_disorder"`
	KidneyDisease    bool `json:"kidney_disease"`
	LiverDisease     bool `json:"liver_disease"`
	Hepatitis        bool `json:"hepatitis"`
	Tuberculosis     bool `json:"tuberculosis"`
	BleedingDisorder bool `json:"bleeding_disorder"`
	Cancer           bool `json:"cancer"`
	Arthritis        bool `json:"arthritis"`
	HIV              bool `json:"hiv"`

	Other     *string `json:"other"`
	UpdatedAt string  `json:"updated_at,omitempty"`
}

// UpsertRequest is a sparse patch: only fields present in the body are
// saved, everything else keeps its stored value.
type UpsertRequest struct {
	UnderMedicalCare       *string `json:"underMedicalCare"`
	UnderMedicalCareDetail *string `json:"underMedicalCareDetail"`
	TakingMedication       *string `json:"takingMedication"`
	TakingMedicationDetail *string `json:"takingMedicationDetail"`
	Allergy                *string `json:"allergy"`
	AllergyDetail          *string `json:"allergyDetail"`
	Pregnancy              *string `json:"pregnancy"`
	PregnancyDetail        *string `json:"pregnancyDetail"`

	Diabetes         *bool `json:"diabetes"`
	Hypertension     *bool `json:"hypertension"`
	HeartDisease     *bool `json:"heartDisease"`
	Asthma           *bool `json:"asthma"`
	Epilepsy         *bool `json:"epilepsy"`
	ThyroidDisorder  *bool `json:"thyroidDisorder"`
	KidneyDisease    *bool `json:"kidneyDisease"`
	LiverDisease     *bool `json:"liverDisease"`
	Hepatitis        *bool `json:"hepatitis"`
	Tuberculosis     *bool `json:"tuberculosis"`
	BleedingDisorder *bool `json:"bleedingDisorder"`
	Cancer           *bool `json:"cancer"`
	Arthritis        *bool `json:"arthritis"`
	HIV              *bool `json:"hiv"`

	Other *string `json:"other"`
}

type Service interface {
	// GetByPatient returns nil with no error when the patient has no
	// history on file yet.
	GetByPatient(ctx context.Context, db *store.Session, patientID string) (*MedicalHistory, error)
	Upsert(ctx context.Context, db *store.Session, patientID string, req UpsertRequest) (*MedicalHistory, error)
}

type historyService struct{}

func New() Service {
	return &historyService{}
}

func (s *historyService) GetByPatient(ctx context.Context, db *store.Session, patientID string) (*MedicalHistory, error) {
	var rows []MedicalHistory
	err := db.From(table).Select("*").Eq("patient_id", patientID).Get(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("get medical history: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *historyService) Upsert(ctx context.Context, db *store.Session, patientID string, req UpsertRequest) (*MedicalHistory, error) {
	if strings.TrimSpace(patientID) == "" {
		return nil, fmt.Errorf("%w: patient id is required", ErrValidation)
	}

	row := map[string]any{"patient_id": patientID}

	answer := func(col string, v *string) error {
		if v == nil {
			return nil
		}
		switch strings.TrimSpace(*v) {
		case "":
			row[col] = nil
		case AnswerYes:
			row[col] = AnswerYes
		case AnswerNo:
			row[col] = AnswerNo
		default:
			return fmt.Errorf("%w: %s must be %q or %q", ErrValidation, col, AnswerYes, AnswerNo)
		}
		return nil
	}
	text := func(col string, v *string) {
		if v != nil {
			row[col] = *v
		}
	}
	flag := func(col string, v *bool) {
		if v != nil {
			row[col] = *v
		}
	}

	answers := []struct {
		col string
		v   *string
	}{
		{"under_medical_care", req.UnderMedicalCare},
		{"taking_medication", req.TakingMedication},
		{"allergy", req.Allergy},
		{"pregnancy", req.Pregnancy},
	}
	for _, a := range answers {
		if err := answer(a.col, a.v); err != nil {
			return nil, err
		}
	}

	text("under_medical_care_detail", req.UnderMedicalCareDetail)
	text("taking_medication_detail", req.TakingMedicationDetail)
	text("allergy_detail", req.AllergyDetail)
	text("pregnancy_detail", req.PregnancyDetail)
	text("other", req.Other)

	flag("diabetes", req.Diabetes)
	flag("hypertension", req.Hypertension)
	flag("heart_disease", req.HeartDisease)
	flag("asthma", req.Asthma)
	flag("epilepsy", req.Epilepsy)
	flag("thyroid_disorder", req.ThyroidDisorder)
	flag("kidney_disease", req.KidneyDisease)
	flag("liver_disease", req.LiverDisease)
	flag("hepatitis", req.Hepatitis)
	flag("tuberculosis", req.Tuberculosis)
	flag("bleeding_disorder", req.BleedingDisorder)
	flag("cancer", req.Cancer)
	flag("arthritis", req.Arthritis)
	flag("hiv", req.HIV)

	if len(row) == 1 {
		return nil, fmt.Errorf("%w: no fields to save", ErrValidation)
	}

	var saved []MedicalHistory
	if err := db.From(table).Upsert(ctx, row, "patient_id", &saved); err != nil {
		return nil, fmt.Errorf("save medical history: %w", err)
	}
	if len(saved) == 0 {
		return nil, fmt.Errorf("save medical history: store returned no row")
	}
	return &saved[0], nil
}
