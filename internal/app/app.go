package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/kmarankit/Money-Stories-Final/internal/config"
	apierrors "github.com/kmarankit/Money-Stories-Final/internal/errors"
	"github.com/kmarankit/Money-Stories-Final/internal/exporter"
	"github.com/kmarankit/Money-Stories-Final/internal/extraction"
	"github.com/kmarankit/Money-Stories-Final/internal/files"
	"github.com/kmarankit/Money-Stories-Final/internal/infrastructure"
	customMiddleware "github.com/kmarankit/Money-Stories-Final/internal/middleware"
	"github.com/kmarankit/Money-Stories-Final/internal/services"
	handlers "github.com/kmarankit/Money-Stories-Final/internal/transport/http"
	"github.com/kmarankit/Money-Stories-Final/internal/validation"
	ws "github.com/kmarankit/Money-Stories-Final/internal/websocket"
	"github.com/kmarankit/Money-Stories-Final/pkg/contracts"
	"github.com/kmarankit/Money-Stories-Final/pkg/contracts/domain"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	ErrorHandler  *apierrors.ErrorHandler
	WebSocketHub  *ws.Hub // nil when websocket.enabled is false
	Services      *ServiceContainer
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Report    *services.ReportService
	Health    *services.HealthService
	Parser    *extraction.LlamaParseClient
	Extractor *extraction.GeminiExtractor
	Uploads   *files.UploadStore
	Validator *validation.FileValidator
}

// NewApplication loads configuration and builds the application.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return New(cfg)
}

// New builds the application from an already loaded configuration.
func New(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("service", contracts.ServiceName),
		slog.String("version", contracts.Version),
		slog.String("extraction_mode", cfg.Extraction.Mode))

	otelProviders, err := infrastructure.InitializeOTel(cfg.OTel, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler: apierrors.NewErrorHandler(logger, cfg.Logging.Level == "debug",
			handlers.ErrorMappings()...),
	}

	if err := a.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	a.setupRouter()
	a.createServer()
	return a, nil
}

// initializeServices wires the collaborators into the report service.
func (a *Application) initializeServices() error {
	cfg := a.Config

	uploads, err := files.NewUploadStore(cfg.Upload.Dir, a.Logger)
	if err != nil {
		return err
	}

	parser := extraction.NewLlamaParseClient(cfg.Extraction, a.Logger)
	extractor := extraction.NewGeminiExtractor(cfg.Extraction, a.Logger)
	if !parser.Configured() {
		a.Logger.Warn("LLAMA_CLOUD_API_KEY not set; PDF uploads will fail until it is configured")
	}
	if !extractor.Configured() {
		a.Logger.Info("GEMINI_API_KEY not set; structured extraction disabled")
	}

	var publisher services.ProgressPublisher = services.NopPublisher{}
	if cfg.WebSocket.Enabled {
		a.WebSocketHub = ws.NewHub(cfg.WebSocket, a.Metrics, a.Logger)
		a.WebSocketHub.Start()
		publisher = ws.NewProgressPublisher(a.WebSocketHub, a.Logger)
	}

	report, err := services.NewReportService(services.ReportServiceOptions{
		Parser:    parser,
		Extractor: extractor,
		Encoder: exporter.NewEncoder(
			exporter.WithStyling(cfg.Excel.Styled),
			exporter.WithLogger(a.Logger),
		),
		Store:     uploads,
		Publisher: publisher,
		Mode:      cfg.Extraction.ExtractionMode(),
		Tracer:    a.OTelProviders.Tracer,
		Metrics:   a.Metrics,
		Logger:    a.Logger,
	})
	if err != nil {
		return err
	}

	health := services.NewHealthService(a.Logger,
		services.ConfiguredProbe("llamaparse", parser.Configured, true),
		services.ConfiguredProbe("gemini", extractor.Configured,
			cfg.Extraction.ExtractionMode() == domain.ExtractionModeLLM),
	)

	a.Services = &ServiceContainer{
		Report:    report,
		Health:    health,
		Parser:    parser,
		Extractor: extractor,
		Uploads:   uploads,
		Validator: validation.NewFileValidator(cfg.Upload.AllowedExtensions, cfg.Upload.MaxBytes, a.Logger),
	}
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Only middleware that leaves the ResponseWriter alone runs before /ws.
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	// CORS runs before routing so preflights never hit a 405.
	r.Use(customMiddleware.CORS(a.corsConfig()))

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	if a.WebSocketHub != nil {
		r.Handle("/ws", ws.NewHandler(a.WebSocketHub, a.Config.WebSocket, a.Config.CORS.Origins(), a.Logger))
	}

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer → Timeout
		otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics)
		if err != nil {
			a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}

		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.ErrorHandler))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.RateLimit.RPS,
				a.Config.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
	})

	// Prometheus scrapes bypass the request middleware.
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	validationMiddleware := customMiddleware.NewValidationMiddleware(a.Logger, a.ErrorHandler)
	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
	reportHandler := handlers.NewReportHandler(handlers.ReportHandlerOptions{
		Service:      a.Services.Report,
		Validator:    a.Services.Validator,
		Validation:   validationMiddleware,
		ErrorHandler: a.ErrorHandler,
		MaxTextBytes: a.Config.Upload.MaxTextBytes,
		Logger:       a.Logger,
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))

		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)
		reportHandler.RegisterRoutes(r)
	})
}

func (a *Application) corsConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins:   a.Config.CORS.Origins(),
		ExposedHeaders:   []string{customMiddleware.RequestIDHeader},
		AllowCredentials: true,
		Logger:           a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the HTTP server in the background. A listen failure cancels ctx.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level),
		slog.Any("cors_origins", a.Config.CORS.Origins()),
		slog.Bool("websocket", a.WebSocketHub != nil))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			// Signal shutdown through context instead of os.Exit
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.WebSocketHub != nil {
		a.WebSocketHub.Stop()
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return infrastructure.CloseLogFile()
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case sig := <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.ErrorContext(context.Background(), "Server stopped unexpectedly")
	}

	// ctx may already be cancelled; shutdown gets a fresh one.
	return a.Stop(context.Background())
}
