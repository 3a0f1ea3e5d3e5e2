package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/novadent/novadent_backend/internal/service/medicalhistory"
)

type MedicalHistoryHandler struct {
	svc medicalhistory.Service
}

func NewMedicalHistoryHandler(svc medicalhistory.Service) *MedicalHistoryHandler {
	return &MedicalHistoryHandler{svc: svc}
}

// GET /medicalhistory/:patientId/medical-history
func (h *MedicalHistoryHandler) Get(c fiber.Ctx) error {
	db, err := requireSession(c)
	if err != nil {
		return err
	}

	// No history on file is a normal state, answered with a null body.
	hist, err := h.svc.GetByPatient(c.Context(), db, c.Params("patientId"))
	if err != nil {
		return storeError(c, err)
	}
	return ok(c, hist)
}

// PUT /medicalhistory/:patientId/medical-history
func (h *MedicalHistoryHandler) Put(c fiber.Ctx) error {
	db, err := requireSession(c)
	if err != nil {
		return err
	}

	var req medicalhistory.UpsertRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	hist, err := h.svc.Upsert(c.Context(), db, c.Params("patientId"), req)
	if err != nil {
		if errors.Is(err, medicalhistory.ErrValidation) {
			return badRequest(c, err.Error())
		}
		return storeError(c, err)
	}
	return ok(c, hist)
}
