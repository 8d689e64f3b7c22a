// Package main is the entry point for the currency converter service.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/hibiken/asynqmon"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"currencyconverter/internal/config"
	"currencyconverter/internal/converter"
	"currencyconverter/internal/provider"
	"currencyconverter/internal/rates"
	"currencyconverter/internal/repository"
	"currencyconverter/internal/service"
	"currencyconverter/internal/symbols"
	"currencyconverter/internal/worker"
)

const dbConnectTimeout = 15 * time.Second

// App holds all application dependencies and manages their lifecycle.
type App struct {
	cfg            *config.Config
	logger         *zap.SugaredLogger
	db             *sql.DB
	rdbCache       *redis.Client
	rdbAsynq       *redis.Client
	store          *rates.Store
	asynqClient    *asynq.Client
	asynqServer    *asynq.Server
	asynqScheduler *asynq.Scheduler
	asynqMux       *asynq.ServeMux
	monitor        *asynqmon.HTTPHandler
	httpServer     *http.Server
}

// NewApp initializes all dependencies and returns a ready-to-run App.
func NewApp(cfg *config.Config, logger *zap.SugaredLogger) (*App, error) {
	app := &App{
		cfg:    cfg,
		logger: logger,
	}

	if err := app.initStorage(); err != nil {
		_ = app.close()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.close()
		return nil, err
	}

	return app, nil
}

// close releases database and Redis connections
func (app *App) close() error {
	var errs []error
	if app.monitor != nil {
		if err := app.monitor.Close(); err != nil {
			errs = append(errs, fmt.Errorf("asynqmon close: %w", err))
		}
	}
	if app.asynqClient != nil {
		if err := app.asynqClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("asynq client close: %w", err))
		}
	}
	if app.rdbAsynq != nil {
		if err := app.rdbAsynq.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis asynq close: %w", err))
		}
	}
	if app.rdbCache != nil {
		if err := app.rdbCache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis cache close: %w", err))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("db close: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (app *App) initStorage() error {
	if app.cfg.Database.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), dbConnectTimeout)
		defer cancel()
		db, err := repository.NewPostgresDB(ctx, &app.cfg.Database)
		if err != nil {
			return fmt.Errorf("connect to Postgres: %w", err)
		}
		app.db = db

		if err := repository.RunMigrations(app.db, app.logger); err != nil {
			return fmt.Errorf("run DB migrations: %w", err)
		}
	}

	if app.cfg.Rates.CacheBackend == config.CacheBackendRedis {
		app.rdbCache = redis.NewClient(&redis.Options{
			Addr: app.cfg.Redis.CacheAddr,
		})
		if err := app.rdbCache.Ping(context.Background()).Err(); err != nil {
			return fmt.Errorf("connect to Redis (cache, %s): %w", app.cfg.Redis.CacheAddr, err)
		}
		app.logger.Infow("Connected to Redis cache", "addr", app.cfg.Redis.CacheAddr)
	}

	mode, err := rates.ParseMode(app.cfg.Rates.Mode)
	if err != nil {
		return err
	}

	var fetcher rates.Fetcher
	if mode != rates.ModeCachedOnly {
		p, err := newRatesProvider(app.cfg, app.logger)
		if err != nil {
			return err
		}
		fetcher = p
	}

	store, err := rates.NewStore(context.Background(), mode, fetcher, app.newRatesStorage(),
		rates.WithStaleAfter(app.cfg.Rates.StaleAfter()),
		rates.WithRefreshTimeout(time.Duration(app.cfg.Worker.TimeoutSec)*time.Second),
		rates.WithLogger(app.logger),
	)
	if err != nil {
		return fmt.Errorf("init rates store: %w", err)
	}
	app.store = store
	app.logger.Infow("Rates store configured",
		"mode", store.Mode(),
		"backend", app.cfg.Rates.CacheBackend,
		"location", store.Location(),
		"stale_after", store.StaleAfter(),
	)

	return nil
}

// newRatesStorage returns nil when the file backend has no path, which only
// the remote mode accepts.
func (app *App) newRatesStorage() rates.Storage {
	if app.rdbCache != nil {
		return rates.NewRedisStorage(app.rdbCache, app.cfg.Rates.RedisKey)
	}
	if app.cfg.Rates.CachePath == "" {
		return nil
	}
	return rates.NewFileStorage(app.cfg.Rates.CachePath)
}

func (app *App) initServices() error {
	table, err := symbols.Load(app.cfg.Symbols.Path)
	if err != nil {
		return fmt.Errorf("load currency symbols: %w", err)
	}
	app.logger.Infow("Currency symbols loaded", "path", app.cfg.Symbols.Path, "count", table.Len())

	conv := converter.New(app.store, table, converter.WithLogger(app.logger))

	var (
		conversions repository.ConversionRepository
		refreshes   repository.RefreshRepository
		enqueuer    service.TaskEnqueuer
	)
	if app.db != nil {
		conversions = repository.NewPostgresConversionRepository(app.db)
		refreshes = repository.NewPostgresRefreshRepository(app.db)
	}

	if app.cfg.Worker.Enabled {
		enqueuer = app.initWorker()
	}

	conversionService := service.NewConversionService(
		conv,
		app.store,
		conversions,
		refreshes,
		enqueuer,
		app.logger,
	)

	if app.asynqMux != nil {
		app.asynqMux.HandleFunc(service.TaskTypeRefreshRates, worker.NewRatesRefreshHandler(conversionService, app.logger))
		if app.asynqScheduler != nil {
			entryID, err := worker.RegisterPeriodicRefresh(
				app.asynqScheduler,
				app.cfg.Worker.RefreshCron,
				app.cfg.Worker.MaxRetry,
				time.Duration(app.cfg.Worker.TimeoutSec)*time.Second,
			)
			if err != nil {
				return err
			}
			app.logger.Infow("Periodic refresh scheduled", "cron", app.cfg.Worker.RefreshCron, "entry_id", entryID)
		}
	}

	app.initHTTP(conversionService)
	return nil
}

func (app *App) initWorker() *worker.AsynqEnqueuer {
	redisOpt := asynq.RedisClientOpt{Addr: app.cfg.Redis.AsynqAddr}
	timeout := time.Duration(app.cfg.Worker.TimeoutSec) * time.Second

	app.rdbAsynq = redis.NewClient(&redis.Options{Addr: app.cfg.Redis.AsynqAddr})
	app.asynqClient = asynq.NewClient(redisOpt)
	app.asynqServer = asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: app.cfg.Worker.Concurrency,
			Logger:      app.logger,
		},
	)
	if app.cfg.Worker.RefreshCron != "" {
		app.asynqScheduler = asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{Logger: app.logger})
	}
	app.asynqMux = asynq.NewServeMux()

	if app.cfg.Server.ServeAsynqmon {
		app.monitor = asynqmon.New(asynqmon.Options{
			RootPath:     "/monitoring",
			RedisConnOpt: redisOpt,
			ReadOnly:     true,
		})
	}
	app.logger.Infow("Asynq configured", "addr", app.cfg.Redis.AsynqAddr)

	return worker.NewAsynqEnqueuer(
		app.asynqClient,
		app.cfg.Worker.MaxRetry,
		timeout,
		time.Duration(app.cfg.Worker.UniqueTTLSec)*time.Second,
		app.logger,
	)
}

// newRatesProvider builds the provider chain in priority order:
// openexchangerates, exchangerate.host, frankfurter.
func newRatesProvider(cfg *config.Config, logger *zap.SugaredLogger) (provider.RatesProvider, error) {
	var providers []provider.RatesProvider

	if cfg.OpenExchangeRates.AppID != "" {
		providers = append(providers, provider.NewOpenExchangeRatesProvider(
			cfg.OpenExchangeRates.BaseURL, cfg.OpenExchangeRates.AppID, cfg.OpenExchangeRates.Timeout))
	}

	if cfg.ExchangeRateHost.BaseURL != "" && cfg.ExchangeRateHost.APIKey != "" {
		providers = append(providers, provider.NewExchangeRateHostProvider(
			cfg.ExchangeRateHost.BaseURL, cfg.ExchangeRateHost.APIKey, cfg.ExchangeRateHost.Source, cfg.ExchangeRateHost.Timeout))
	}

	if cfg.Frankfurter.Enabled && cfg.Frankfurter.BaseURL != "" {
		providers = append(providers, provider.NewFrankfurterProvider(
			cfg.Frankfurter.BaseURL, cfg.Frankfurter.Base, cfg.Frankfurter.Timeout))
	}

	if len(providers) == 0 {
		return nil, fmt.Errorf("no exchange rate providers are correctly configured: " +
			"openexchangerates requires app_id, exchangerate_host requires base_url and api_key, " +
			"frankfurter requires enabled and base_url")
	}

	if len(providers) == 1 {
		return providers[0], nil
	}

	return provider.NewExchangeProviderFacade(providers...).WithLogger(logger), nil
}

// Run starts the HTTP server and, when enabled, the Asynq worker and
// scheduler, blocking until the context is canceled.
func (app *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if app.asynqServer != nil {
		g.Go(func() error {
			app.logger.Infow("Starting Asynq worker server")
			if err := app.asynqServer.Start(app.asynqMux); err != nil {
				return fmt.Errorf("asynq worker failed to start: %w", err)
			}

			<-ctx.Done()
			return nil
		})
	}

	if app.asynqScheduler != nil {
		g.Go(func() error {
			app.logger.Infow("Starting Asynq scheduler")
			if err := app.asynqScheduler.Start(); err != nil {
				return fmt.Errorf("asynq scheduler failed to start: %w", err)
			}

			<-ctx.Done()
			return nil
		})
	}

	g.Go(func() error {
		app.logger.Infow("HTTP server listening", "port", app.cfg.Server.Port)
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown: triggered by context cancellation (signal or component failure).
	g.Go(func() error {
		<-ctx.Done()
		return app.shutdown()
	})

	return g.Wait()
}

// shutdown performs ordered teardown: HTTP server -> scheduler -> Asynq worker -> connections.
func (app *App) shutdown() error {
	app.logger.Infow("Shutting down server...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 1. Stop accepting new HTTP requests, drain in-flight
	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		app.logger.Errorw("HTTP server shutdown error", "error", err)
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	// 2. Stop scheduling and drain in-flight Asynq tasks
	if app.asynqScheduler != nil {
		app.asynqScheduler.Shutdown()
	}
	if app.asynqServer != nil {
		app.asynqServer.Shutdown()
	}

	// 3. Close connections (asynq client, Redis, database)
	if err := app.close(); err != nil {
		app.logger.Errorw("Connection cleanup errors", "error", err)
		errs = append(errs, err)
	}

	app.logger.Infow("Shutdown complete")
	return errors.Join(errs...)
}
