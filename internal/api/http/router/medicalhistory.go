package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/novadent/novadent_backend/internal/api/http/handler"
)

func (r *Router) registerMedicalHistoryRoutes(api fiber.Router, mh *handler.MedicalHistoryHandler, authRequired fiber.Handler) {
	h := api.Group("/medicalhistory", authRequired)

	h.Get("/:patientId/medical-history", mh.Get)
	h.Put("/:patientId/medical-history", mh.Put)
}
