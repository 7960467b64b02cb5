package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"

	"catalogweb/internal/config"
	"catalogweb/internal/service"
)

var tracer = otel.Tracer("internal/fetch")

// Service imports the remote product catalog into local storage. It runs
// exactly once per process lifetime, off the request-serving path; it is
// never rescheduled.
type Service struct {
	cfg        config.Fetch
	logger     *slog.Logger
	client     *http.Client
	catalogSvc service.CatalogService
}

func New(cfg config.Fetch, logger *slog.Logger, catalogSvc service.CatalogService) *Service {
	return &Service{
		cfg:        cfg,
		logger:     logger.With(slog.String("service", "fetch")),
		client:     &http.Client{Timeout: cfg.Timeout},
		catalogSvc: catalogSvc,
	}
}

// Run performs the one-shot fetch-and-reconcile. Nothing awaits its result;
// every failure terminates in a log line and the process keeps serving.
func (s *Service) Run(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "fetch remote catalog")
	defer span.End()

	s.logger.InfoContext(ctx, "starting remote catalog import", slog.String("url", s.cfg.URL))

	items, err := s.fetchRemoteCatalog(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "remote catalog import failed", slog.Any("error", err))
		return
	}

	if len(items) > s.cfg.MaxProducts {
		items = items[:s.cfg.MaxProducts]
	}

	saved := 0
	for _, item := range items {
		product := item.toProduct()

		if _, err := s.catalogSvc.Save(ctx, product); err != nil {
			// One bad row never blocks the rest of the batch.
			s.logger.WarnContext(ctx, "failed to save imported product",
				slog.String("title", product.Title),
				slog.Any("error", err))
			continue
		}

		saved++
		s.logger.DebugContext(ctx, "saved imported product", slog.String("title", product.Title))
	}

	s.logger.InfoContext(ctx, "remote catalog import finished",
		slog.Int("processed", len(items)),
		slog.Int("saved", saved))
}

// fetchRemoteCatalog does a single GET against the configured URL and decodes
// the payload. Transport, status, size-ceiling and decode failures all abandon
// the whole run.
func (s *Service) fetchRemoteCatalog(ctx context.Context) ([]remoteProduct, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get remote catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	// Read one byte past the ceiling to tell "exactly at the limit" apart
	// from "over it".
	body, err := io.ReadAll(io.LimitReader(resp.Body, s.cfg.MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if int64(len(body)) > s.cfg.MaxBodyBytes {
		return nil, fmt.Errorf("response body exceeds %d bytes", s.cfg.MaxBodyBytes)
	}

	var payload catalogResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode catalog payload: %w", err)
	}

	return payload.Products, nil
}
