package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/novadent/novadent_backend/config"
	"github.com/novadent/novadent_backend/internal/api/http/handler"
	"github.com/novadent/novadent_backend/internal/api/http/middleware"
	"github.com/novadent/novadent_backend/internal/service/analytics"
	"github.com/novadent/novadent_backend/internal/service/appointment"
	"github.com/novadent/novadent_backend/internal/service/audit"
	"github.com/novadent/novadent_backend/internal/service/auth"
	"github.com/novadent/novadent_backend/internal/service/camp"
	"github.com/novadent/novadent_backend/internal/service/medicalhistory"
	"github.com/novadent/novadent_backend/internal/service/patient"
	"github.com/novadent/novadent_backend/internal/service/upload"
	"github.com/novadent/novadent_backend/internal/service/visit"
	"github.com/novadent/novadent_backend/pkg/identity"
	"github.com/novadent/novadent_backend/pkg/store"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg      *config.Config
	Redis    *redis.Client
	Store    *store.Client
	Identity *identity.Client

	AuthSvc        auth.Service
	PatientSvc     patient.Service
	VisitSvc       visit.Service
	HistorySvc     medicalhistory.Service
	AppointmentSvc appointment.Service
	AnalyticsSvc   analytics.Service
	AuditSvc       audit.Service
	CampSvc        camp.Service
	UploadSvc      upload.Service
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	r.registerSystemRoutes(app)

	authRequired := middleware.AuthRequired(r.p.Identity, r.p.Store)
	authOptional := middleware.AuthOptional(r.p.Identity, r.p.Store)

	authH := handler.NewAuthHandler(r.p.AuthSvc, r.p.Store)
	patientH := handler.NewPatientHandler(r.p.PatientSvc)
	visitH := handler.NewVisitHandler(r.p.VisitSvc)
	historyH := handler.NewMedicalHistoryHandler(r.p.HistorySvc)
	appointmentH := handler.NewAppointmentHandler(r.p.AppointmentSvc)
	analyticsH := handler.NewAnalyticsHandler(r.p.AnalyticsSvc)
	auditH := handler.NewAuditHandler(r.p.AuditSvc)
	campH := handler.NewCampHandler(r.p.CampSvc, r.p.Store)
	uploadH := handler.NewUploadHandler(r.p.UploadSvc)

	api := app.Group("/api")

	r.registerAuthRoutes(api, authH)
	r.registerPatientRoutes(api, patientH, authRequired)
	r.registerUploadRoutes(api, uploadH, authRequired)
	r.registerVisitRoutes(api, visitH, authRequired)
	r.registerMedicalHistoryRoutes(api, historyH, authRequired)
	r.registerAppointmentRoutes(api, appointmentH, authRequired)
	r.registerAnalyticsRoutes(api, analyticsH, authRequired)
	r.registerAuditRoutes(api, auditH, authRequired)
	r.registerCampRoutes(api, campH, authRequired, authOptional)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool {
			return r.p.Store.Health(c.Context()) == nil
		},
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}
