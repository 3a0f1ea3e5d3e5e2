package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/novadent/novadent_backend/internal/service/visit"
)

type VisitHandler struct {
	svc visit.Service
}

func NewVisitHandler(svc visit.Service) *VisitHandler {
	return &VisitHandler{svc: svc}
}

func mapVisitError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, visit.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, visit.ErrValidation), errors.Is(err, visit.ErrIndexOutOfRange):
		return badRequest(c, err.Error())
	default:
		return storeError(c, err)
	}
}

// GET /visits/:patientId/visits
func (h *VisitHandler) ListByPatient(c fiber.Ctx) error {
	db, err := requireSession(c)
	if err != nil {
		return err
	}

	visits, err := h.svc.ListByPatient(c.Context(), db, c.Params("patientId"))
	if err != nil {
		return mapVisitError(c, err)
	}
	return ok(c, visits)
}

// POST /visits/:patientId/visits
func (h *VisitHandler) Create(c fiber.Ctx) error {
	db, err := requireSession(c)
	if err != nil {
		return err
	}

	var req visit.CreateRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	v, err := h.svc.Create(c.Context(), db, c.Params("patientId"), req)
	if err != nil {
		return mapVisitError(c, err)
	}
	return created(c, v)
}

// GET /visits/visit/:visitId
func (h *VisitHandler) Get(c fiber.Ctx) error {
	db, err := requireSession(c)
	if err != nil {
		return err
	}

	v, err := h.svc.Get(c.Context(), db, c.Params("visitId"))
	if err != nil {
		return mapVisitError(c, err)
	}
	return ok(c, v)
}

// PATCH /visits/visit/:visitId
func (h *VisitHandler) Update(c fiber.Ctx) error {
	db, err := requireSession(c)
	if err != nil {
		return err
	}

	var req visit.UpdateRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	v, err := h.svc.Update(c.Context(), db, c.Params("visitId"), req)
	if err != nil {
		return mapVisitError(c, err)
	}
	return ok(c, v)
}

// DELETE /visits/visit/:visitId
func (h *VisitHandler) Delete(c fiber.Ctx) error {
	db, err := requireSession(c)
	if err != nil {
		return err
	}

	if err := h.svc.Delete(c.Context(), db, c.Params("visitId")); err != nil {
		return mapVisitError(c, err)
	}
	return noContent(c)
}

// POST /visits/visit/:visitId/procedures
func (h *VisitHandler) AddProcedure(c fiber.Ctx) error {
	db, err := requireSession(c)
	if err != nil {
		return err
	}

	var data visit.Procedure
	if err := c.Bind().Body(&data); err != nil {
		return badRequest(c, "invalid request body")
	}

	v, err := h.svc.AddProcedure(c.Context(), db, c.Params("visitId"), data)
	if err != nil {
		return mapVisitError(c, err)
	}
	return created(c, v)
}

// PATCH /visits/visit/:visitId/procedures/:index
func (h *VisitHandler) UpdateProcedure(c fiber.Ctx) error {
	db, err := requireSession(c)
	if err != nil {
		return err
	}
	index, err := procedureIndex(c)
	if err != nil {
		return badRequest(c, "invalid procedure index")
	}

	var patch visit.Procedure
	if err := c.Bind().Body(&patch); err != nil {
		return badRequest(c, "invalid request body")
	}

	v, err := h.svc.UpdateProcedure(c.Context(), db, c.Params("visitId"), index, patch)
	if err != nil {
		return mapVisitError(c, err)
	}
	return ok(c, v)
}

// DELETE /visits/visit/:visitId/procedures/:index
func (h *VisitHandler) DeleteProcedure(c fiber.Ctx) error {
	db, err := requireSession(c)
	if err != nil {
		return err
	}
	index, err := procedureIndex(c)
	if err != nil {
		return badRequest(c, "invalid procedure index")
	}

	v, err := h.svc.DeleteProcedure(c.Context(), db, c.Params("visitId"), index)
	if err != nil {
		return mapVisitError(c, err)
	}
	return ok(c, v)
}

func procedureIndex(c fiber.Ctx) (int, error) {
	return strconv.Atoi(c.Params("index"))
}
