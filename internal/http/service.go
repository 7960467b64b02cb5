package http

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"catalogweb/internal/config"
	"catalogweb/internal/http/metric"
	"catalogweb/internal/http/middleware"
	"catalogweb/internal/service"
	"catalogweb/internal/storage/db"
)

var tracer = otel.Tracer("internal/http")

// Service represents the HTTP service.
type Service struct {
	cfg     config.HTTP
	logger  *slog.Logger
	metrics *metric.Metrics

	catalogSvc service.CatalogService
	health     db.HealthChecker
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	log *slog.Logger,
	catalogSvc service.CatalogService,
	health db.HealthChecker,
) *Service {
	return &Service{
		cfg:        cfg,
		logger:     log.With(slog.String("service", "http")),
		metrics:    metric.New(),
		catalogSvc: catalogSvc,
		health:     health,
	}
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if err := s.RegisterHandlers(r); err != nil {
		return nil, fmt.Errorf("register handlers: %w", err)
	}

	return s.RunWithServer(ctx, r)
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) error {
	tmpl, err := parseTemplates()
	if err != nil {
		return err
	}

	products := newProductHandler(s.logger, s.catalogSvc, tmpl)
	exports := newExportHandler(s.logger, s.catalogSvc)

	r.Get("/", products.Index)
	r.Get("/search", products.SearchPage)

	r.Route("/products", func(r chi.Router) {
		r.Get("/load", products.LoadProducts)
		r.Get("/search", products.SearchProducts)
		r.Post("/add", products.AddProduct)

		r.Get("/export/csv", exports.CSV)
		r.Get("/export/json", exports.JSON)
		r.Get("/export/xlsx", exports.XLSX)

		r.Get("/{id}/edit", products.EditForm)
		r.Get("/{id}/edit-page", products.EditPage)
		r.Post("/{id}", products.UpdateProduct)
		r.Put("/{id}", products.UpdateProduct)
		r.Delete("/{id}", products.DeleteProduct)
	})

	r.Get("/healthz", s.handleHealthz)

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))

	return nil
}

func (s *Service) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if healthy, err := s.health.IsHealthy(r.Context()); err != nil || !healthy {
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
