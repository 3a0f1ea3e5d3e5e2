package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/novadent/novadent_backend/internal/api/http/handler"
)

func (r *Router) registerUploadRoutes(api fiber.Router, uh *handler.UploadHandler, authRequired fiber.Handler) {
	uploads := api.Group("/uploads", authRequired)

	uploads.Get("/photo-signature", uh.PhotoSignature)
}
