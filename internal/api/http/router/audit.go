package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/novadent/novadent_backend/internal/api/http/handler"
)

func (r *Router) registerAuditRoutes(api fiber.Router, ah *handler.AuditHandler, authRequired fiber.Handler) {
	a := api.Group("/audit", authRequired)

	a.Get("/recent", ah.Recent)
}
