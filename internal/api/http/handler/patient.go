package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/novadent/novadent_backend/internal/service/patient"
)

type PatientHandler struct {
	svc patient.Service
}

func NewPatientHandler(svc patient.Service) *PatientHandler {
	return &PatientHandler{svc: svc}
}

func mapPatientError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, patient.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, patient.ErrValidation):
		return badRequest(c, err.Error())
	case errors.Is(err, patient.ErrForbidden):
		return forbidden(c, err.Error())
	default:
		return storeError(c, err)
	}
}

// GET /patients
func (h *PatientHandler) List(c fiber.Ctx) error {
	db, err := requireSession(c)
	if err != nil {
		return err
	}

	var q struct {
		Search string `query:"search"`
		Offset int    `query:"offset"`
		Limit  int    `query:"limit"`
	}
	_ = c.Bind().Query(&q)

	patients, err := h.svc.List(c.Context(), db, patient.ListRequest{
		Search: q.Search,
		Offset: q.Offset,
		Limit:  q.Limit,
	})
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, patients)
}

// GET /patients/:id
func (h *PatientHandler) Get(c fiber.Ctx) error {
	db, err := requireSession(c)
	if err != nil {
		return err
	}

	p, err := h.svc.Get(c.Context(), db, c.Params("id"))
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, p)
}

// POST /patients
func (h *PatientHandler) Create(c fiber.Ctx) error {
	db, err := requireSession(c)
	if err != nil {
		return err
	}

	var req patient.CreateRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	p, err := h.svc.Create(c.Context(), db, req)
	if err != nil {
		return mapPatientError(c, err)
	}
	return created(c, p)
}

// PUT /patients/:id
func (h *PatientHandler) Update(c fiber.Ctx) error {
	db, err := requireSession(c)
	if err != nil {
		return err
	}

	var req patient.UpdateRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	p, err := h.svc.Update(c.Context(), db, c.Params("id"), req)
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, p)
}

// DELETE /patients/:id
func (h *PatientHandler) Delete(c fiber.Ctx) error {
	db, err := requireSession(c)
	if err != nil {
		return err
	}
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	if err := h.svc.Delete(c.Context(), db, c.Params("id"), principal.UserID); err != nil {
		return mapPatientError(c, err)
	}
	return noContent(c)
}

// PATCH /patients/:id/photo
func (h *PatientHandler) SetPhoto(c fiber.Ctx) error {
	db, err := requireSession(c)
	if err != nil {
		return err
	}

	var req struct {
		PhotoURL string `json:"photo_url"`
	}
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	p, err := h.svc.SetPhoto(c.Context(), db, c.Params("id"), req.PhotoURL)
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, p)
}
