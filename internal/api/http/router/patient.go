package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/novadent/novadent_backend/internal/api/http/handler"
)

func (r *Router) registerPatientRoutes(api fiber.Router, ph *handler.PatientHandler, authRequired fiber.Handler) {
	patients := api.Group("/patients", authRequired)

	patients.Get("/", ph.List)
	patients.Post("/", ph.Create)

	p := patients.Group("/:id")
	p.Get("/", ph.Get)
	p.Put("/", ph.Update)
	p.Delete("/", ph.Delete)
	p.Patch("/photo", ph.SetPhoto)
}
