package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/novadent/novadent_backend/internal/api/http/handler"
)

func (r *Router) registerAnalyticsRoutes(api fiber.Router, ah *handler.AnalyticsHandler, authRequired fiber.Handler) {
	a := api.Group("/analytics", authRequired)

	patients := a.Group("/patients")
	patients.Get("/by-year", ah.PatientsByYear)
	patients.Get("/by-month", ah.PatientsByMonth)
	patients.Get("/by-gender", ah.PatientsByGender)
	patients.Get("/by-age-group", ah.PatientsByAgeGroup)

	visits := a.Group("/visits")
	visits.Get("/by-year", ah.VisitsByYear)
	visits.Get("/by-month", ah.VisitsByMonth)

	revenue := a.Group("/revenue")
	revenue.Get("/rolling", ah.RevenueRolling)
	revenue.Get("/collections-rate", ah.CollectionsRate)
}
