package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/novadent/novadent_backend/config"
	"github.com/novadent/novadent_backend/pkg/email"
	"github.com/novadent/novadent_backend/pkg/identity"
	"github.com/novadent/novadent_backend/pkg/observability"
	redispkg "github.com/novadent/novadent_backend/pkg/redis"
	s3pkg "github.com/novadent/novadent_backend/pkg/s3"
	"github.com/novadent/novadent_backend/pkg/sms"
	"github.com/novadent/novadent_backend/pkg/store"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideStoreClient),
	fx.Provide(ProvideIdentityClient),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideEmailClient),
	fx.Provide(ProvideSMSClient),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideS3Client),
)

func ProvideStoreClient(cfg *config.Config) (*store.Client, error) {
	return store.New(store.Config{
		URL:     cfg.Store.URL,
		AnonKey: cfg.Store.AnonKey,
		Timeout: time.Duration(cfg.Store.TimeoutSeconds) * time.Second,
	})
}

func ProvideIdentityClient(cfg *config.Config) (*identity.Client, error) {
	return identity.New(identity.Config{
		URL:       cfg.Identity.URL,
		AnonKey:   cfg.Identity.AnonKey,
		JWTSecret: cfg.Identity.JWTSecret,
		Timeout:   time.Duration(cfg.Identity.TimeoutSeconds) * time.Second,
	})
}

func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	rdb, err := redispkg.New(cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

func ProvideEmailClient(cfg *config.Config) (*email.Client, error) {
	return email.NewFromCentral(cfg.Email)
}

func ProvideSMSClient(cfg *config.Config) (*sms.Client, error) {
	return sms.NewFromConfig(cfg.SMS)
}

func ProvideS3Client(cfg *config.Config) (*s3pkg.Client, error) {
	return s3pkg.New(cfg.S3)
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(), observability.Config{
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		Environment:    cfg.Server.Environment,
		OTLPEndpoint:   cfg.Observability.Tracing.OTLPEndpoint,
		OTLPInsecure:   cfg.Observability.Tracing.OTLPInsecure,
		SamplingRate:   cfg.Observability.Tracing.SamplingRate,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}
