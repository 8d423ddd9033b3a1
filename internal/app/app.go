package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/kanso-tally/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/kanso-tally/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-tally/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-tally/internal/config"
	"github.com/comitanigiacomo/kanso-tally/internal/core/domain"
	"github.com/comitanigiacomo/kanso-tally/internal/core/events"
	"github.com/comitanigiacomo/kanso-tally/internal/core/services"
	"github.com/comitanigiacomo/kanso-tally/internal/core/toggle"
	"github.com/comitanigiacomo/kanso-tally/internal/core/workers"
	"github.com/comitanigiacomo/kanso-tally/internal/observability"
)

// App is the wired API server.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	stores  *Stores
	redis   *redis.Client
	metrics *observability.Metrics
	worker  *workers.StreakWorker
	router  *gin.Engine
}

// New opens every backend named by cfg and wires the HTTP stack on top.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cal, err := cfg.Tracker.Calendar()
	if err != nil {
		return nil, fmt.Errorf("app: calendar: %w", err)
	}

	logger.Info("opening store", "driver", cfg.Database.Driver)
	stores, err := OpenStores(ctx, cfg.Database, true)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:     cfg,
		logger:  logger,
		stores:  stores,
		metrics: observability.NewMetrics(),
	}

	var items domain.ItemStore = stores.Items
	if cfg.Redis.Enabled {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			stores.Close()
			return nil, err
		}
		a.redis = rdb
		items = repository.NewCachedItemRepository(items, rdb, logger)
		logger.Info("redis connected", "addr", cfg.Redis.Addr())
	}

	bus := events.NewBus()

	exec := toggle.NewExecutor(cal, items, stores.Records, bus,
		toggle.WithLogger(logger),
		toggle.WithRecorder(a.metrics),
		toggle.WithPendingTTL(cfg.Tracker.PendingTTL),
	)
	tracker := services.NewTrackerService(cal, items, stores.Records, exec, cfg.Tracker.MinWindow, logger)
	bus.Subscribe(tracker.OnChanged)

	a.worker = workers.NewStreakWorker(items, stores.Records, cal, cfg.Tracker.WorkerQueueSize, logger)
	a.worker.SetRecorder(a.metrics)
	bus.Subscribe(a.worker.OnChanged)

	records := services.NewRecordService(stores.Records, items, cal, bus)
	records.SetCellLocker(exec)

	tokens := services.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL, stores.Users)

	if !cfg.Server.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	deps := adapterHTTP.RouterDependencies{
		AuthHandler:    adapterHTTP.NewAuthHandler(services.NewAuthService(stores.Users, tokens)),
		ItemHandler:    adapterHTTP.NewItemHandler(services.NewItemService(items, cal, bus)),
		RecordHandler:  adapterHTTP.NewRecordHandler(records),
		TrackerHandler: adapterHTTP.NewTrackerHandler(tracker),
		StatsHandler:   adapterHTTP.NewStatsHandler(services.NewStatsService(items, tracker, cal)),
		Tokens:         tokens,
		Redis:          a.redis,
		Metrics:        a.metrics,
		RateLimit: adapterHTTP.RateLimit{
			Requests: cfg.RateLimit.Requests,
			Window:   cfg.RateLimit.Window,
		},
		Logger:    logger,
		StartTime: time.Now(),
	}
	if stores.DB != nil {
		deps.DB = stores.DB
	}
	a.router = adapterHTTP.NewRouter(deps)

	return a, nil
}

func (a *App) Handler() http.Handler {
	return a.router
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests
// within the configured shutdown timeout.
func (a *App) Run(ctx context.Context) error {
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	a.worker.Start(workerCtx)

	srv := &http.Server{
		Addr:         ":" + a.cfg.Server.Port,
		Handler:      a.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("kanso tally running", "addr", "http://localhost"+srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("app: serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("stop signal received, shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("app: forced shutdown: %w", err)
	}

	a.logger.Info("server stopped gracefully")
	return nil
}

func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	errs = append(errs, a.stores.Close())
	return errors.Join(errs...)
}
