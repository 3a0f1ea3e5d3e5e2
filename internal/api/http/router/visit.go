package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/novadent/novadent_backend/internal/api/http/handler"
)

func (r *Router) registerVisitRoutes(api fiber.Router, vh *handler.VisitHandler, authRequired fiber.Handler) {
	visits := api.Group("/visits", authRequired)

	visits.Get("/:patientId/visits", vh.ListByPatient)
	visits.Post("/:patientId/visits", vh.Create)

	v := visits.Group("/visit/:visitId")
	v.Get("/", vh.Get)
	v.Patch("/", vh.Update)
	v.Delete("/", vh.Delete)

	v.Post("/procedures", vh.AddProcedure)
	v.Patch("/procedures/:index", vh.UpdateProcedure)
	v.Delete("/procedures/:index", vh.DeleteProcedure)
}
