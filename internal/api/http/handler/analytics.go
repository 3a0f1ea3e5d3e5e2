package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/novadent/novadent_backend/internal/service/analytics"
	"github.com/novadent/novadent_backend/pkg/store"
)

type AnalyticsHandler struct {
	svc analytics.Service
}

func NewAnalyticsHandler(svc analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

type analyticsCall func(c fiber.Ctx, db *store.Session) (analytics.Result, error)

func (h *AnalyticsHandler) run(c fiber.Ctx, call analyticsCall) error {
	db, err := requireSession(c)
	if err != nil {
		return err
	}

	result, err := call(c, db)
	if err != nil {
		if errors.Is(err, analytics.ErrValidation) {
			return badRequest(c, err.Error())
		}
		return storeError(c, err)
	}
	// Procedure output goes back verbatim.
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(result)
}

// GET /analytics/patients/by-year?year=
func (h *AnalyticsHandler) PatientsByYear(c fiber.Ctx) error {
	return h.run(c, func(c fiber.Ctx, db *store.Session) (analytics.Result, error) {
		return h.svc.PatientsByYear(c.Context(), db, c.Query("year"))
	})
}

// GET /analytics/patients/by-month?year=
func (h *AnalyticsHandler) PatientsByMonth(c fiber.Ctx) error {
	return h.run(c, func(c fiber.Ctx, db *store.Session) (analytics.Result, error) {
		return h.svc.PatientsByMonth(c.Context(), db, c.Query("year"))
	})
}

// GET /analytics/patients/by-gender
func (h *AnalyticsHandler) PatientsByGender(c fiber.Ctx) error {
	return h.run(c, func(c fiber.Ctx, db *store.Session) (analytics.Result, error) {
		return h.svc.PatientsByGender(c.Context(), db)
	})
}

// GET /analytics/patients/by-age-group
func (h *AnalyticsHandler) PatientsByAgeGroup(c fiber.Ctx) error {
	return h.run(c, func(c fiber.Ctx, db *store.Session) (analytics.Result, error) {
		return h.svc.PatientsByAgeGroup(c.Context(), db)
	})
}

// GET /analytics/visits/by-year?year=
func (h *AnalyticsHandler) VisitsByYear(c fiber.Ctx) error {
	return h.run(c, func(c fiber.Ctx, db *store.Session) (analytics.Result, error) {
		return h.svc.VisitsByYear(c.Context(), db, c.Query("year"))
	})
}

// GET /analytics/visits/by-month?year=
func (h *AnalyticsHandler) VisitsByMonth(c fiber.Ctx) error {
	return h.run(c, func(c fiber.Ctx, db *store.Session) (analytics.Result, error) {
		return h.svc.VisitsByMonth(c.Context(), db, c.Query("year"))
	})
}

// GET /analytics/revenue/rolling?end=&tz=
func (h *AnalyticsHandler) RevenueRolling(c fiber.Ctx) error {
	return h.run(c, func(c fiber.Ctx, db *store.Session) (analytics.Result, error) {
		return h.svc.RevenueRolling(c.Context(), db, c.Query("end"), c.Query("tz"))
	})
}

// GET /analytics/revenue/collections-rate?year=
func (h *AnalyticsHandler) CollectionsRate(c fiber.Ctx) error {
	return h.run(c, func(c fiber.Ctx, db *store.Session) (analytics.Result, error) {
		return h.svc.CollectionsRate(c.Context(), db, c.Query("year"))
	})
}
