package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/novadent/novadent_backend/internal/api/http/handler"
)

func (r *Router) registerAuthRoutes(api fiber.Router, ah *handler.AuthHandler) {
	a := api.Group("/auth")

	a.Post("/login", ah.Login)
	a.Post("/refresh", ah.Refresh)
}
