package app

import (
	"go.uber.org/fx"

	"github.com/novadent/novadent_backend/config"
	"github.com/novadent/novadent_backend/internal/service/analytics"
	"github.com/novadent/novadent_backend/internal/service/appointment"
	"github.com/novadent/novadent_backend/internal/service/audit"
	"github.com/novadent/novadent_backend/internal/service/auth"
	"github.com/novadent/novadent_backend/internal/service/camp"
	"github.com/novadent/novadent_backend/internal/service/medicalhistory"
	"github.com/novadent/novadent_backend/internal/service/patient"
	"github.com/novadent/novadent_backend/internal/service/upload"
	"github.com/novadent/novadent_backend/internal/service/visit"
	"github.com/novadent/novadent_backend/pkg/email"
	"github.com/novadent/novadent_backend/pkg/identity"
	s3pkg "github.com/novadent/novadent_backend/pkg/s3"
	"github.com/novadent/novadent_backend/pkg/sms"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideAuthService,
		ProvidePatientService,
		ProvideVisitService,
		ProvideMedicalHistoryService,
		ProvideAppointmentService,
		ProvideAnalyticsService,
		ProvideAuditService,
		ProvideCampService,
		ProvideUploadService,
	),
)

func ProvideAuthService(idp *identity.Client) auth.Service {
	return auth.New(idp)
}

func ProvidePatientService() patient.Service {
	return patient.New()
}

func ProvideVisitService() visit.Service {
	return visit.New()
}

func ProvideMedicalHistoryService() medicalhistory.Service {
	return medicalhistory.New()
}

func ProvideAppointmentService(smsCli *sms.Client) appointment.Service {
	return appointment.New(smsCli)
}

func ProvideAnalyticsService() analytics.Service {
	return analytics.New()
}

func ProvideAuditService() audit.Service {
	return audit.New()
}

func ProvideCampService(mail *email.Client, cfg *config.Config) camp.Service {
	return camp.New(mail, cfg.Clinic.NotifyEmail)
}

func ProvideUploadService(s3 *s3pkg.Client) upload.Service {
	return upload.New(s3)
}
