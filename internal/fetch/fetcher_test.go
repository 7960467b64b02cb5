package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogweb/internal/apperr"
	"catalogweb/internal/config"
	"catalogweb/internal/model"
)

// fakeCatalog is an in-memory CatalogService keyed by external id, mirroring
// the storage upsert contract.
type fakeCatalog struct {
	mu           sync.Mutex
	nextID       int64
	byExternalID map[int64]model.Product
	failSaves    map[int64]bool
	saveCalls    int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		byExternalID: make(map[int64]model.Product),
		failSaves:    make(map[int64]bool),
	}
}

func (f *fakeCatalog) Save(_ context.Context, product model.Product) (model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.saveCalls++
	if f.failSaves[product.ExternalID] {
		return model.Product{}, errors.New("forced save failure")
	}

	if existing, ok := f.byExternalID[product.ExternalID]; ok {
		product.ID = existing.ID
	} else {
		f.nextID++
		product.ID = f.nextID
	}
	f.byExternalID[product.ExternalID] = product

	return product, nil
}

func (f *fakeCatalog) ListAll(context.Context) ([]model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	products := make([]model.Product, 0, len(f.byExternalID))
	for _, p := range f.byExternalID {
		products = append(products, p)
	}
	return products, nil
}

func (f *fakeCatalog) Search(context.Context, string) ([]model.Product, error) {
	return nil, nil
}

func (f *fakeCatalog) GetByID(context.Context, int64) (model.Product, error) {
	return model.Product{}, apperr.ProductNotFoundErr
}

func (f *fakeCatalog) Update(context.Context, model.Product) error { return nil }

func (f *fakeCatalog) Delete(context.Context, int64) (bool, error) { return false, nil }

func newTestService(url string, catalog *fakeCatalog) *Service {
	cfg := config.Fetch{
		URL:          url,
		Timeout:      5 * time.Second,
		MaxBodyBytes: 2 << 20,
		MaxProducts:  50,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return New(cfg, logger, catalog)
}

func remoteItemJSON(id int64, title string, prices ...string) string {
	variants := make([]string, 0, len(prices))
	for i, price := range prices {
		variants = append(variants, fmt.Sprintf(
			`{"id": %d, "title": "variant %d", "price": %q, "available": true}`, id*100+int64(i), i, price))
	}
	return fmt.Sprintf(`{"id": %d, "title": %q, "body_html": "<p>desc</p>", "variants": [%s], "images": []}`,
		id, title, strings.Join(variants, ","))
}

func payload(items ...string) string {
	return `{"products": [` + strings.Join(items, ",") + `]}`
}

func servePayload(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunImportsAtMostMaxProducts(t *testing.T) {
	items := make([]string, 0, 60)
	for i := 1; i <= 60; i++ {
		items = append(items, remoteItemJSON(int64(i), fmt.Sprintf("Product %d", i), "10.00"))
	}
	srv := servePayload(t, payload(items...))

	catalog := newFakeCatalog()
	newTestService(srv.URL, catalog).Run(context.Background())

	assert.Len(t, catalog.byExternalID, 50)
	assert.Equal(t, 50, catalog.saveCalls)

	// First 50 in response order, the rest dropped.
	_, ok := catalog.byExternalID[50]
	assert.True(t, ok)
	_, ok = catalog.byExternalID[51]
	assert.False(t, ok)
}

func TestRunIsIdempotent(t *testing.T) {
	srv := servePayload(t, payload(
		remoteItemJSON(1, "Blue Shirt", "19.99"),
		remoteItemJSON(2, "Blue Pants", "29.99"),
	))

	catalog := newFakeCatalog()
	svc := newTestService(srv.URL, catalog)

	svc.Run(context.Background())
	require.Len(t, catalog.byExternalID, 2)
	firstIDs := map[int64]int64{}
	for externalID, p := range catalog.byExternalID {
		require.NotZero(t, p.ID)
		firstIDs[externalID] = p.ID
	}

	svc.Run(context.Background())
	require.Len(t, catalog.byExternalID, 2)
	for externalID, p := range catalog.byExternalID {
		assert.Equal(t, firstIDs[externalID], p.ID, "internal id must be stable across re-imports")
	}
}

func TestRunUsesFirstVariantPrice(t *testing.T) {
	srv := servePayload(t, payload(remoteItemJSON(1, "Blue Shirt", "19.99", "29.99")))

	catalog := newFakeCatalog()
	newTestService(srv.URL, catalog).Run(context.Background())

	require.Len(t, catalog.byExternalID, 1)
	saved := catalog.byExternalID[1]
	assert.Equal(t, 19.99, saved.Price)
	require.NotNil(t, saved.Variants)
	assert.Contains(t, *saved.Variants, "29.99", "all variants are preserved")
}

func TestRunDefaultsPriceWithoutVariants(t *testing.T) {
	srv := servePayload(t, payload(remoteItemJSON(1, "Gift Card")))

	catalog := newFakeCatalog()
	newTestService(srv.URL, catalog).Run(context.Background())

	require.Len(t, catalog.byExternalID, 1)
	assert.Zero(t, catalog.byExternalID[1].Price)
}

func TestRunTruncatesDescription(t *testing.T) {
	longBody := strings.Repeat("a", 600)
	item := fmt.Sprintf(`{"id": 1, "title": "Long", "body_html": %q, "variants": [], "images": []}`, longBody)
	srv := servePayload(t, payload(item))

	catalog := newFakeCatalog()
	newTestService(srv.URL, catalog).Run(context.Background())

	require.Len(t, catalog.byExternalID, 1)
	desc := catalog.byExternalID[1].Description
	require.NotNil(t, desc)
	assert.Len(t, *desc, 500)
}

func TestRunIsolatesPerItemFailures(t *testing.T) {
	srv := servePayload(t, payload(
		remoteItemJSON(1, "First", "1.00"),
		remoteItemJSON(2, "Second", "2.00"),
		remoteItemJSON(3, "Third", "3.00"),
	))

	catalog := newFakeCatalog()
	catalog.failSaves[2] = true

	newTestService(srv.URL, catalog).Run(context.Background())

	assert.Len(t, catalog.byExternalID, 2)
	assert.Contains(t, catalog.byExternalID, int64(1))
	assert.Contains(t, catalog.byExternalID, int64(3))
	assert.NotContains(t, catalog.byExternalID, int64(2))
}

func TestRunAbandonsOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream broken", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	catalog := newFakeCatalog()
	newTestService(srv.URL, catalog).Run(context.Background())

	assert.Empty(t, catalog.byExternalID)
	assert.Zero(t, catalog.saveCalls)
}

func TestRunAbandonsOnMalformedPayload(t *testing.T) {
	srv := servePayload(t, `{"products": [{`)

	catalog := newFakeCatalog()
	newTestService(srv.URL, catalog).Run(context.Background())

	assert.Empty(t, catalog.byExternalID)
}

func TestRunAbandonsOnOversizedBody(t *testing.T) {
	srv := servePayload(t, payload(remoteItemJSON(1, "Huge", "1.00")))

	catalog := newFakeCatalog()
	svc := newTestService(srv.URL, catalog)
	svc.cfg.MaxBodyBytes = 16

	svc.Run(context.Background())

	assert.Empty(t, catalog.byExternalID)
}

func TestRunAbandonsOnUnreachableEndpoint(t *testing.T) {
	srv := servePayload(t, payload())
	url := srv.URL
	srv.Close()

	catalog := newFakeCatalog()
	newTestService(url, catalog).Run(context.Background())

	assert.Empty(t, catalog.byExternalID)
}
