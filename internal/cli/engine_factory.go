package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/maitre"
	"github.com/aretw0/maitre/internal/config"
	"github.com/aretw0/maitre/pkg/adapters/memory"
	"github.com/aretw0/maitre/pkg/adapters/openai"
	"github.com/aretw0/maitre/pkg/adapters/redis"
	"github.com/aretw0/maitre/pkg/adapters/simulated"
	"github.com/aretw0/maitre/pkg/observability"
	"github.com/aretw0/maitre/pkg/ports"
	"github.com/aretw0/maitre/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	backend "github.com/redis/go-redis/v9"
)

// Services bundles everything a host (chat, HTTP, MCP) needs.
type Services struct {
	Engine   *maitre.Engine
	Sessions *session.Manager
	Bookings *simulated.BookingAPI
	SMS      *simulated.SMSGateway
	Metrics  *observability.Metrics
	Registry *prometheus.Registry

	closers []func() error
}

// Close releases external connections.
func (s *Services) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// NewServices wires the engine from configuration. When extractor is nil an
// OpenAI extractor is built from cfg.
func NewServices(ctx context.Context, cfg *config.Config, logger *slog.Logger, extractor ports.Extractor) (*Services, error) {
	svc := &Services{Registry: prometheus.NewRegistry()}
	svc.Registry.MustRegister(collectors.NewGoCollector())

	if extractor == nil {
		if err := cfg.RequireAPIKey(); err != nil {
			return nil, err
		}
		ex, err := openai.New(openai.Config{
			APIKey:      cfg.OpenAI.APIKey,
			BaseURL:     cfg.OpenAI.BaseURL,
			Model:       cfg.OpenAI.Model,
			Temperature: cfg.OpenAI.Temperature,
			Timeout:     cfg.OpenAI.Timeout,
		}, openai.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("error initializing extractor: %w", err)
		}
		extractor = ex
	}

	bookingOpts := []simulated.BookingOption{
		simulated.WithBookingFailureRate(cfg.Booking.FailureRate),
		simulated.WithBookingLogger(logger),
	}
	sessionOpts := []session.Option{session.WithLogger(logger)}

	if cfg.Redis.Addr != "" {
		client := backend.NewClient(&backend.Options{Addr: cfg.Redis.Addr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis at %s unreachable: %w", cfg.Redis.Addr, err)
		}
		svc.closers = append(svc.closers, client.Close)

		bookingOpts = append(bookingOpts, simulated.WithLedger(redis.NewLedger(client, cfg.Redis.Prefix, 0)))
		sessionOpts = append(sessionOpts,
			session.WithLocker(redis.NewLocker(client, cfg.Redis.Prefix)),
			session.WithLockTTL(cfg.Redis.LockTTL),
		)
		logger.Info("redis enabled", "addr", cfg.Redis.Addr)
	}

	svc.Bookings = simulated.NewBookingAPI(bookingOpts...)
	svc.SMS = simulated.NewSMSGateway(
		simulated.WithSMSFailureRate(cfg.SMS.FailureRate),
		simulated.WithSMSLogger(logger),
	)
	svc.Sessions = session.NewManager(memory.NewStore(), sessionOpts...)

	metrics, err := observability.NewMetrics(svc.Registry)
	if err != nil {
		return nil, fmt.Errorf("error registering metrics: %w", err)
	}
	svc.Metrics = metrics

	hooks := observability.Combine(metrics.Hooks(), observability.LoggingHooks(logger))
	eng, err := maitre.New(extractor, svc.Bookings, svc.SMS,
		maitre.WithLogger(logger),
		maitre.WithLifecycleHooks(hooks),
	)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	svc.Engine = eng
	return svc, nil
}
