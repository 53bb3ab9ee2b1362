package app

import (
	"fmt"
	"net/http"

	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tournify/match-resolution/external/henrikdev"
	"github.com/tournify/match-resolution/external/riotsim"
	"github.com/tournify/match-resolution/internal/config"
	"github.com/tournify/match-resolution/internal/domain/consensus"
	"github.com/tournify/match-resolution/internal/domain/match"
	"github.com/tournify/match-resolution/internal/interfaces/httpapi"
	idgen "github.com/tournify/match-resolution/internal/platform/id"
	"github.com/tournify/match-resolution/internal/platform/logging"
	"github.com/tournify/match-resolution/internal/platform/metrics"
	"github.com/tournify/match-resolution/internal/platform/resilience"
	"github.com/tournify/match-resolution/internal/usecase"
)

// App owns the wired service graph plus the resources that need an
// explicit release on shutdown.
type App struct {
	Server *http.Server
	pool   *ants.Pool
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	var m *metrics.Manager
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m = metrics.NewManager(metrics.WithRegistry(registry))
		metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}

	pool, err := ants.NewPool(cfg.HistoryPoolSize)
	if err != nil {
		return nil, fmt.Errorf("create history pool: %w", err)
	}

	source, err := newMatchSource(cfg, logger)
	if err != nil {
		pool.Release()
		return nil, err
	}

	policy := consensus.Policy{Fraction: cfg.QuorumFraction}
	historySvc := usecase.NewHistoryService(source, pool, m, logger)
	verificationSvc := usecase.NewVerificationService(source, cfg.TimeTolerance, m, logger)
	validationSvc := usecase.NewValidationService(historySvc, verificationSvc, policy, m, logger)
	leaderboardSvc := usecase.NewLeaderboardService(historySvc, verificationSvc, source, policy, m, logger)
	matchSvc := usecase.NewMatchService(idgen.NewUUIDGenerator(), logger)

	handler := httpapi.NewHandler(matchSvc, validationSvc, leaderboardSvc, logger)
	router := httpapi.NewRouter(
		handler,
		logger,
		m,
		metricsHandler,
		cfg.AppEnv != config.EnvProd,
		cfg.CORSAllowedOrigins,
	)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &App{Server: server, pool: pool}, nil
}

// Close releases the worker pool. The HTTP server is shut down by the
// caller so in-flight requests can drain first.
func (a *App) Close() {
	if a == nil || a.pool == nil {
		return
	}
	a.pool.Release()
}

func newMatchSource(cfg config.Config, logger *logging.Logger) (match.Source, error) {
	breaker := resilience.CircuitBreakerConfig{
		Enabled:          cfg.SourceCircuitEnabled,
		FailureThreshold: cfg.SourceCircuitFailureCount,
		OpenTimeout:      cfg.SourceCircuitOpenTimeout,
		HalfOpenMaxReq:   cfg.SourceCircuitHalfOpenMaxReq,
	}

	switch cfg.SourceDriver {
	case config.DriverHenrikDev:
		return henrikdev.NewClient(henrikdev.ClientConfig{
			BaseURL:        cfg.SourceBaseURL,
			APIKey:         cfg.SourceAPIKey,
			Timeout:        cfg.SourceTimeout,
			MaxRetries:     cfg.SourceMaxRetries,
			Logger:         logger,
			CircuitBreaker: breaker,
		}), nil
	case config.DriverRiotSim:
		return riotsim.NewClient(riotsim.ClientConfig{
			BaseURL:        cfg.SourceBaseURL,
			Timeout:        cfg.SourceTimeout,
			MaxRetries:     cfg.SourceMaxRetries,
			Logger:         logger,
			CircuitBreaker: breaker,
		}), nil
	default:
		return nil, fmt.Errorf("unknown match source driver %q", cfg.SourceDriver)
	}
}
