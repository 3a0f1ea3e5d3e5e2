package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/novadent/novadent_backend/internal/service/upload"
)

type UploadHandler struct {
	svc upload.Service
}

func NewUploadHandler(svc upload.Service) *UploadHandler {
	return &UploadHandler{svc: svc}
}

// GET /uploads/photo-signature?filename=
func (h *UploadHandler) PhotoSignature(c fiber.Ctx) error {
	if _, err := requireSession(c); err != nil {
		return err
	}

	sig, err := h.svc.PhotoSignature(c.Context(), c.Query("filename"))
	if err != nil {
		if errors.Is(err, upload.ErrValidation) {
			return badRequest(c, err.Error())
		}
		return internalError(c)
	}
	return ok(c, sig)
}
