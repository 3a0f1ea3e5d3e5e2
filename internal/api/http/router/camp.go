package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/novadent/novadent_backend/internal/api/http/handler"
)

func (r *Router) registerCampRoutes(api fiber.Router, ch *handler.CampHandler, authRequired, authOptional fiber.Handler) {
	camp := api.Group("/camp-submissions")

	// The outreach form posts without a token.
	camp.Post("/", authOptional, ch.Create)

	camp.Get("/", authRequired, ch.List)
	camp.Get("/logs", authRequired, ch.Logs)

	s := camp.Group("/:id", authRequired)
	s.Get("/", ch.Get)
	s.Patch("/", ch.Update)
	s.Delete("/", ch.Delete)
	s.Get("/logs", ch.SubmissionLogs)
}
