package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/novadent/novadent_backend/internal/service/audit"
)

type AuditHandler struct {
	svc audit.Service
}

func NewAuditHandler(svc audit.Service) *AuditHandler {
	return &AuditHandler{svc: svc}
}

// GET /audit/recent?action=&limit=&offset=
func (h *AuditHandler) Recent(c fiber.Ctx) error {
	db, err := requireSession(c)
	if err != nil {
		return err
	}

	var q struct {
		Action string `query:"action"`
		Limit  int    `query:"limit"`
		Offset int    `query:"offset"`
	}
	_ = c.Bind().Query(&q)

	entries, err := h.svc.Recent(c.Context(), db, audit.RecentRequest{
		Action: q.Action,
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		if errors.Is(err, audit.ErrValidation) {
			return badRequest(c, err.Error())
		}
		return storeError(c, err)
	}
	return ok(c, entries)
}
