package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/novadent/novadent_backend/internal/service/appointment"
)

type AppointmentHandler struct {
	svc appointment.Service
}

func NewAppointmentHandler(svc appointment.Service) *AppointmentHandler {
	return &AppointmentHandler{svc: svc}
}

func mapAppointmentError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, appointment.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, appointment.ErrValidation):
		return badRequest(c, err.Error())
	default:
		return storeError(c, err)
	}
}

// GET /appointments
func (h *AppointmentHandler) List(c fiber.Ctx) error {
	db, err := requireSession(c)
	if err != nil {
		return err
	}

	var q struct {
		Date   string `query:"date"`
		From   string `query:"from"`
		To     string `query:"to"`
		Offset int    `query:"offset"`
		Limit  int    `query:"limit"`
	}
	_ = c.Bind().Query(&q)

	appts, err := h.svc.List(c.Context(), db, appointment.ListRequest{
		Date:   q.Date,
		From:   q.From,
		To:     q.To,
		Offset: q.Offset,
		Limit:  q.Limit,
	})
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, appts)
}

// POST /appointments
func (h *AppointmentHandler) Create(c fiber.Ctx) error {
	db, err := requireSession(c)
	if err != nil {
		return err
	}

	var req appointment.CreateRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	appt, err := h.svc.Create(c.Context(), db, req)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return created(c, appt)
}

// PATCH /appointments/:id
func (h *AppointmentHandler) Update(c fiber.Ctx) error {
	db, err := requireSession(c)
	if err != nil {
		return err
	}

	var req appointment.UpdateRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	appt, err := h.svc.Update(c.Context(), db, c.Params("id"), req)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, appt)
}

// DELETE /appointments/:id
func (h *AppointmentHandler) Delete(c fiber.Ctx) error {
	db, err := requireSession(c)
	if err != nil {
		return err
	}

	if err := h.svc.Delete(c.Context(), db, c.Params("id")); err != nil {
		return mapAppointmentError(c, err)
	}
	return noContent(c)
}
