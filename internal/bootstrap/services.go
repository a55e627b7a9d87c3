package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tinydevcrm/eventbridge/config"
	"github.com/tinydevcrm/eventbridge/internal/adapters/broker"
	"github.com/tinydevcrm/eventbridge/internal/core"
	"github.com/tinydevcrm/eventbridge/internal/data"
	"github.com/tinydevcrm/eventbridge/internal/domain/stream"
	"github.com/tinydevcrm/eventbridge/internal/observability/statsd"
	"github.com/tinydevcrm/eventbridge/internal/service"
)

const shutdownWaitTimeout = 10 * time.Second

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Views     *service.ViewService
	Jobs      *service.JobService
	Channels  *service.ChannelService
	Refreshes *service.RefreshLogService

	// Dispatcher and Hub back the broker service; the HTTP service shares
	// the hub through ChannelService.
	Dispatcher *service.DispatcherService
	Hub        *stream.Hub
	Listener   *data.RefreshListener

	Metrics *statsd.Client
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	DB            *sql.DB
	ViewRepo      *data.ViewRepo
	CronJobRepo   *data.CronJobRepo
	ChannelRepo   *data.ChannelRepo
	RefreshRepo   *data.RefreshLogRepo
	CronScheduler *data.CronScheduler
	CacheRepo     core.CacheRepository
}

// buildRepositories builds repositories backing service ports; no business rules here.
func buildRepositories(db *sql.DB, redisClient redis.UniversalClient) *serviceRepositories {
	repos := &serviceRepositories{
		DB:            db,
		ViewRepo:      data.NewViewRepo(db),
		CronJobRepo:   data.NewCronJobRepo(db),
		ChannelRepo:   data.NewChannelRepo(db),
		RefreshRepo:   data.NewRefreshLogRepo(db),
		CronScheduler: data.NewCronScheduler(db),
	}
	if redisClient != nil {
		repos.CacheRepo = data.NewRedisCacheRepo(redisClient)
	}
	return repos
}

// buildMetrics configures the StatsD sink; nil when metrics are disabled.
func buildMetrics(logger *slog.Logger, cfg config.ObservabilityMetricsConfig) *statsd.Client {
	if !cfg.IsEnabled() {
		return nil
	}
	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.StatsdAddress,
		Prefix:  "eventbridge",
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return nil
	}
	return client
}

// NewServices wires repositories into the service container.
func NewServices(deps *ServiceDeps) ServiceContainer {
	if deps == nil {
		return ServiceContainer{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := deps.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
		appCfg.Sanitize()
	}

	repos := buildRepositories(deps.DB, deps.RedisClient)
	metrics := buildMetrics(logger, appCfg.Observability.Metrics)

	hub := stream.NewHub(stream.HubOptions{
		QueueCapacity: appCfg.Broker.QueueCapacity,
		Logger:        logger,
	})

	var sink statsd.Sink = statsd.Nop()
	if metrics != nil {
		sink = metrics
	}

	dispatcher := service.NewDispatcherService(service.DispatcherOptions{
		ViewRepo:    repos.ViewRepo,
		ChannelRepo: repos.ChannelRepo,
		RefreshLog:  repos.RefreshRepo,
		Pusher:      hub,
		Cache:       repos.CacheRepo,
		CacheTTL:    appCfg.Cache.ViewNameTTL,
		Metrics:     sink,
		Logger:      logger,
	})

	return ServiceContainer{
		Views: service.NewViewService(service.ViewServiceOptions{
			ViewRepo: repos.ViewRepo,
		}),
		Jobs: service.NewJobService(service.JobServiceOptions{
			ViewRepo:  repos.ViewRepo,
			JobRepo:   repos.CronJobRepo,
			Scheduler: repos.CronScheduler,
			Logger:    logger,
		}),
		Channels: service.NewChannelService(service.ChannelServiceOptions{
			ChannelRepo: repos.ChannelRepo,
			JobRepo:     repos.CronJobRepo,
			Hub:         hub,
			Logger:      logger,
		}),
		Refreshes: service.NewRefreshLogService(service.RefreshLogServiceOptions{
			RefreshLog: repos.RefreshRepo,
		}),
		Dispatcher: dispatcher,
		Hub:        hub,
		Listener:   data.NewRefreshListener(PostgresDSN(appCfg.Postgres)),
		Metrics:    metrics,
	}
}

// ServiceOrchestrationConfig bundles everything RunServicesWithShutdown needs.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// serviceStartupDeps carries shared state between service starters.
type serviceStartupDeps struct {
	ctx             context.Context
	cfg             *ServiceOrchestrationConfig
	logger          *slog.Logger
	enabledServices map[config.ServiceMode]bool
	errCh           chan error
}

// backgroundService describes a startable background component.
type backgroundService struct {
	mode  config.ServiceMode
	name  string
	start func(context.Context) error
}

// backgroundServiceHandle tracks a running background service.
type backgroundServiceHandle struct {
	name string
	done <-chan struct{}
}

// startHTTPServerIfEnabled starts the HTTP server if enabled.
func startHTTPServerIfEnabled(deps *serviceStartupDeps) *http.Server {
	if deps == nil || deps.cfg == nil || !deps.enabledServices[config.ServiceModeHTTP] {
		return nil
	}
	return StartHTTPServer(&HTTPServerConfig{
		Config:   deps.cfg.Config,
		Services: deps.cfg.Services,
		Logger:   deps.logger,
	})
}

func newBrokerBackgroundService(deps *serviceStartupDeps) backgroundService {
	return backgroundService{
		mode: config.ServiceModeBroker,
		name: "broker",
		start: func(ctx context.Context) error {
			svcs := deps.cfg.Services

			var sink statsd.Sink = statsd.Nop()
			if svcs.Metrics != nil {
				sink = svcs.Metrics
			}

			runner, err := broker.NewRunner(broker.RunnerOptions{
				Waiter:     svcs.Listener,
				Dispatcher: svcs.Dispatcher,
				Config:     deps.cfg.Config.Broker,
				Logger:     deps.logger,
				Metrics:    sink,
			})
			if err != nil {
				return fmt.Errorf("build broker runner: %w", err)
			}
			return runner.Run(ctx)
		},
	}
}

func launchBackground(deps *serviceStartupDeps, descriptor backgroundService) <-chan struct{} {
	if deps == nil || !deps.enabledServices[descriptor.mode] {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := descriptor.start(deps.ctx); err != nil {
			errMsg := fmt.Errorf("%s failed: %w", descriptor.name, err)
			select {
			case deps.errCh <- errMsg:
			case <-deps.ctx.Done():
			default:
				deps.logger.WarnContext(deps.ctx, "dropping background service error",
					"service", descriptor.name, "error", errMsg)
			}
		}
	}()

	deps.logger.InfoContext(deps.ctx, "background service started",
		"service", descriptor.name, "mode", descriptor.mode)
	return done
}

func startBackgroundServices(deps *serviceStartupDeps) []backgroundServiceHandle {
	if deps == nil {
		return nil
	}
	descriptors := []backgroundService{
		newBrokerBackgroundService(deps),
	}

	handles := make([]backgroundServiceHandle, 0, len(descriptors))
	for _, svc := range descriptors {
		done := launchBackground(deps, svc)
		if done == nil {
			continue
		}
		handles = append(handles, backgroundServiceHandle{name: svc.name, done: done})
	}
	return handles
}

// RunServicesWithShutdown starts all enabled services and manages their
// lifecycle. It blocks until a shutdown signal is received or a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}

	serviceCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabledServices, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}

	deps := &serviceStartupDeps{
		ctx:             serviceCtx,
		cfg:             cfg,
		logger:          logger,
		enabledServices: enabledServices,
		errCh:           make(chan error, len(enabledServices)+1),
	}

	httpServer := startHTTPServerIfEnabled(deps)
	backgrounds := startBackgroundServices(deps)

	return waitForShutdown(shutdownConfig{
		ctx:         serviceCtx,
		cancel:      cancel,
		errCh:       deps.errCh,
		httpServer:  httpServer,
		services:    cfg.Services,
		logger:      logger,
		backgrounds: backgrounds,
	})
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	ctx         context.Context
	cancel      context.CancelFunc
	errCh       <-chan error
	httpServer  *http.Server
	services    ServiceContainer
	logger      *slog.Logger
	backgrounds []backgroundServiceHandle
}

// waitForShutdown waits for a shutdown signal or a service error.
func waitForShutdown(cfg shutdownConfig) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		cfg.logger.Info("shutting down services...")
		cfg.cancel()
		return gracefulStop(cfg)
	case err := <-cfg.errCh:
		cfg.logger.Error("service error", "error", err)
		cfg.cancel()
		if stopErr := gracefulStop(cfg); stopErr != nil {
			cfg.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

// gracefulStop attempts to gracefully stop all services. The order matters:
// the HTTP server stops accepting work first, then live streams are torn
// down, then the LISTEN session and metrics sink are released.
func gracefulStop(cfg shutdownConfig) error {
	if cfg.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWaitTimeout)
		defer cancel()

		if err := ShutdownHTTPServer(ShutdownConfig{
			Context: shutdownCtx,
			Server:  cfg.httpServer,
			Hub:     cfg.services.Hub,
			Logger:  cfg.logger,
		}); err != nil {
			return err
		}
	} else if cfg.services.Hub != nil {
		cfg.services.Hub.StopAll()
	}

	for _, svc := range cfg.backgrounds {
		waitForService(svc.done, svc.name, cfg.logger)
	}

	if cfg.services.Listener != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownWaitTimeout)
		defer cancel()
		if err := cfg.services.Listener.Close(closeCtx); err != nil {
			cfg.logger.Warn("closing notification listener", "error", err)
		}
	}

	if cfg.services.Metrics != nil {
		if err := cfg.services.Metrics.Close(); err != nil {
			cfg.logger.Warn("closing metrics sink", "error", err)
		}
	}

	return nil
}

// waitForService waits for a service to finish with timeout.
func waitForService(done <-chan struct{}, name string, logger *slog.Logger) {
	if done == nil {
		return
	}
	select {
	case <-done:
		logger.Info(name + " stopped")
	case <-time.After(shutdownWaitTimeout):
		logger.Warn("timeout waiting for " + name + " to stop")
	}
}
