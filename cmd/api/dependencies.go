package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/FACorreiaa/transport-report/internal/domain/import/parser"
	"github.com/FACorreiaa/transport-report/internal/domain/import/sniffer"
	"github.com/FACorreiaa/transport-report/internal/domain/report"
	reporthandler "github.com/FACorreiaa/transport-report/internal/domain/report/handler"
	reportservice "github.com/FACorreiaa/transport-report/internal/domain/report/service"
	"github.com/FACorreiaa/transport-report/pkg/config"
	"github.com/FACorreiaa/transport-report/pkg/cron"
	"github.com/FACorreiaa/transport-report/pkg/metrics"
	"github.com/FACorreiaa/transport-report/pkg/middleware"
	"github.com/FACorreiaa/transport-report/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	Store     storage.Store
	Scheduler *cron.Scheduler

	// Services
	Extractor     *parser.Extractor
	ReportService *reportservice.Service

	// Handlers
	ReportHandler *reporthandler.ReportHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if cfg.Observability.MetricsEnabled {
		deps.Metrics = metrics.New()
	}

	if err := deps.initStore(); err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	if err := deps.initServices(ctx); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initStore opens the key-value store holding the dataset
func (d *Dependencies) initStore() error {
	store, err := storage.New(&storage.Config{
		Type: storage.StoreType(d.Config.Store.Type),
		Path: d.Config.Store.Path,
	})
	if err != nil {
		return err
	}
	d.Store = store

	d.Logger.Info("store opened",
		slog.String("type", d.Config.Store.Type),
		slog.String("path", d.Config.Store.Path))
	return nil
}

// initServices builds the extractor and the report service, then restores
// the persisted dataset
func (d *Dependencies) initServices(ctx context.Context) error {
	d.Extractor = parser.NewExtractor(parser.Config{
		Keywords:    sniffer.DefaultHeaderKeywords,
		MaxScanRows: d.Config.Report.HeaderScanRows,
	})

	opts := report.DefaultOptions()
	if d.Config.Report.ShowUndated {
		opts.Undated = report.UndatedVisibleUnfiltered
	}

	d.ReportService = reportservice.NewService(d.Store, d.Extractor, opts, d.Logger, d.Metrics)
	if err := d.ReportService.Load(ctx); err != nil {
		return err
	}

	if d.Config.Report.RetentionMonths > 0 {
		d.Scheduler = cron.NewScheduler(d.ReportService, d.Config.Report.RetentionMonths, d.Config.Report.RetentionSchedule, d.Logger)
		if err := d.Scheduler.Start(); err != nil {
			d.Scheduler = nil
			return fmt.Errorf("failed to start retention job: %w", err)
		}
	}

	d.Logger.Info("services initialized",
		slog.Int("records", d.ReportService.Len()),
		slog.String("undated", opts.Undated.String()))
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() {
	d.ReportHandler = reporthandler.NewReportHandler(d.ReportService, d.Config.Server.MaxUploadBytes(), d.Logger)
	d.Logger.Info("handlers initialized")
}

// Router builds the HTTP router with the middleware chain
func (d *Dependencies) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.Logger, d.Metrics))
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   d.Config.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader, "Content-Disposition"},
		AllowCredentials: false,
	}).Handler)

	r.Get("/healthz", reporthandler.Health)
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(d.Config.Server.RateLimitPerSecond, d.Config.Server.RateLimitBurst))
		d.ReportHandler.Routes(r)
	})

	return r
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.Scheduler != nil {
		<-d.Scheduler.Stop().Done()
	}
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			d.Logger.Error("failed to close store", slog.Any("error", err))
		}
	}
	d.Logger.Info("cleanup completed")
}
