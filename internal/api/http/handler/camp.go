package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/novadent/novadent_backend/internal/api/http/middleware"
	"github.com/novadent/novadent_backend/internal/service/camp"
	"github.com/novadent/novadent_backend/pkg/store"
)

type CampHandler struct {
	svc camp.Service
	st  *store.Client
}

func NewCampHandler(svc camp.Service, st *store.Client) *CampHandler {
	return &CampHandler{svc: svc, st: st}
}

func mapCampError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, camp.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, camp.ErrValidation):
		return badRequest(c, err.Error())
	case errors.Is(err, camp.ErrForbidden):
		return forbidden(c, err.Error())
	default:
		return storeError(c, err)
	}
}

// POST /camp-submissions
//
// The outreach form is public: no bearer token required. A signed-in
// session is still used when present so created_by records the author.
func (h *CampHandler) Create(c fiber.Ctx) error {
	db, authed := middleware.SessionFromFiber(c)
	if !authed {
		db = h.st.Anon()
	}

	var req camp.CreateRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	sub, err := h.svc.Create(c.Context(), db, req)
	if err != nil {
		return mapCampError(c, err)
	}
	return created(c, sub)
}

// GET /camp-submissions
func (h *CampHandler) List(c fiber.Ctx) error {
	db, err := requireSession(c)
	if err != nil {
		return err
	}

	subs, err := h.svc.List(c.Context(), db)
	if err != nil {
		return mapCampError(c, err)
	}
	return ok(c, subs)
}

// GET /camp-submissions/:id
func (h *CampHandler) Get(c fiber.Ctx) error {
	db, err := requireSession(c)
	if err != nil {
		return err
	}

	sub, err := h.svc.Get(c.Context(), db, c.Params("id"))
	if err != nil {
		return mapCampError(c, err)
	}
	return ok(c, sub)
}

// PATCH /camp-submissions/:id
func (h *CampHandler) Update(c fiber.Ctx) error {
	db, err := requireSession(c)
	if err != nil {
		return err
	}

	var req camp.UpdateRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	sub, err := h.svc.Update(c.Context(), db, c.Params("id"), req)
	if err != nil {
		return mapCampError(c, err)
	}
	return ok(c, sub)
}

// DELETE /camp-submissions/:id
func (h *CampHandler) Delete(c fiber.Ctx) error {
	db, err := requireSession(c)
	if err != nil {
		return err
	}
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	if err := h.svc.Delete(c.Context(), db, c.Params("id"), principal.UserID); err != nil {
		return mapCampError(c, err)
	}
	return noContent(c)
}

// GET /camp-submissions/logs
func (h *CampHandler) Logs(c fiber.Ctx) error {
	db, err := requireSession(c)
	if err != nil {
		return err
	}

	logs, err := h.svc.Logs(c.Context(), db, "")
	if err != nil {
		return mapCampError(c, err)
	}
	return ok(c, logs)
}

// GET /camp-submissions/:id/logs
func (h *CampHandler) SubmissionLogs(c fiber.Ctx) error {
	db, err := requireSession(c)
	if err != nil {
		return err
	}

	logs, err := h.svc.Logs(c.Context(), db, c.Params("id"))
	if err != nil {
		return mapCampError(c, err)
	}
	return ok(c, logs)
}
