package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/novadent/novadent_backend/internal/api/http/handler"
)

func (r *Router) registerAppointmentRoutes(api fiber.Router, ah *handler.AppointmentHandler, authRequired fiber.Handler) {
	appts := api.Group("/appointments", authRequired)

	appts.Get("/", ah.List)
	appts.Post("/", ah.Create)
	appts.Patch("/:id", ah.Update)
	appts.Delete("/:id", ah.Delete)
}
