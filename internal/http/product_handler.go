package http

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"catalogweb/internal/apperr"
	"catalogweb/internal/model"
	"catalogweb/internal/service"
	"catalogweb/pkg/ptr"
	"catalogweb/pkg/validator"
)

type productHandler struct {
	logger     *slog.Logger
	catalogSvc service.CatalogService
	validate   validator.Validator
	tmpl       *template.Template

	// now is the clock used to synthesize external ids for manual entries.
	now func() time.Time
}

func newProductHandler(logger *slog.Logger, catalogSvc service.CatalogService, tmpl *template.Template) *productHandler {
	return &productHandler{
		logger:     logger,
		catalogSvc: catalogSvc,
		validate:   validator.NewDefaultValidator(),
		tmpl:       tmpl,
		now:        time.Now,
	}
}

type productsView struct {
	Products []model.Product
	Query    string
}

type productView struct {
	Product model.Product
}

func (h *productHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "index.html", nil)
}

func (h *productHandler) SearchPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "search.html", nil)
}

// LoadProducts renders the products-table fragment with the full catalog.
func (h *productHandler) LoadProducts(w http.ResponseWriter, r *http.Request) {
	h.renderProductsTable(w, r)
}

// SearchProducts renders the search-results fragment. A blank query is
// equivalent to listing everything.
func (h *productHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := strings.TrimSpace(r.URL.Query().Get("query"))

	var (
		products []model.Product
		err      error
	)
	if query == "" {
		products, err = h.catalogSvc.ListAll(ctx)
	} else {
		products, err = h.catalogSvc.Search(ctx, query)
	}
	if err != nil {
		h.serverError(w, r, fmt.Errorf("search products: %w", err))
		return
	}

	h.render(w, r, "search-results", productsView{Products: products, Query: query})
}

type productForm struct {
	Title       string  `validate:"required"`
	Price       float64 `validate:"gte=0"`
	ImageURL    string  `validate:"omitempty,url"`
	Description string
}

// AddProduct creates a product from a form submission. Manual entries get a
// timestamp-based external id so they share the upsert path with imports.
func (h *productHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	form, err := h.parseProductForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	product := model.Product{
		ExternalID:  h.now().UnixMilli(),
		Title:       form.Title,
		Price:       form.Price,
		ImageURL:    blankToNil(form.ImageURL),
		Description: blankToNil(form.Description),
	}

	if _, err := h.catalogSvc.Save(ctx, product); err != nil {
		h.serverError(w, r, fmt.Errorf("save product: %w", err))
		return
	}

	h.renderProductsTable(w, r)
}

// EditForm renders the inline edit-form fragment for one product.
func (h *productHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := h.productID(r)
	if err != nil {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return
	}

	product, err := h.catalogSvc.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ProductNotFoundErr) {
			http.NotFound(w, r)
			return
		}
		h.serverError(w, r, fmt.Errorf("get product: %w", err))
		return
	}

	h.render(w, r, "edit-form", productView{Product: product})
}

// EditPage renders the standalone edit page, redirecting home for unknown ids.
func (h *productHandler) EditPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := h.productID(r)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	product, err := h.catalogSvc.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ProductNotFoundErr) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		h.serverError(w, r, fmt.Errorf("get product: %w", err))
		return
	}

	h.render(w, r, "edit-product-page.html", productView{Product: product})
}

// UpdateProduct overwrites the mutable fields of an existing product. An
// unknown id is tolerated as a no-op; the refreshed table is returned either
// way.
func (h *productHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := h.productID(r)
	if err != nil {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return
	}

	form, err := h.parseProductForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	existing, err := h.catalogSvc.GetByID(ctx, id)
	if err != nil && !errors.Is(err, apperr.ProductNotFoundErr) {
		h.serverError(w, r, fmt.Errorf("get product: %w", err))
		return
	}

	if err == nil {
		existing.Title = form.Title
		existing.Price = form.Price
		existing.ImageURL = blankToNil(form.ImageURL)
		existing.Description = blankToNil(form.Description)

		if err := h.catalogSvc.Update(ctx, existing); err != nil && !errors.Is(err, apperr.ProductNotFoundErr) {
			h.serverError(w, r, fmt.Errorf("update product: %w", err))
			return
		}
	}

	h.renderProductsTable(w, r)
}

func (h *productHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := h.productID(r)
	if err != nil {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return
	}

	deleted, err := h.catalogSvc.Delete(ctx, id)
	if err != nil {
		h.serverError(w, r, fmt.Errorf("delete product: %w", err))
		return
	}
	if !deleted {
		h.logger.WarnContext(ctx, "delete for unknown product id", slog.Int64("id", id))
	}

	h.renderProductsTable(w, r)
}

func (h *productHandler) parseProductForm(r *http.Request) (productForm, error) {
	if err := r.ParseForm(); err != nil {
		return productForm{}, fmt.Errorf("parse form: %w", err)
	}

	price, err := strconv.ParseFloat(r.PostFormValue("price"), 64)
	if err != nil {
		return productForm{}, errors.New("price must be a decimal number")
	}

	form := productForm{
		Title:       strings.TrimSpace(r.PostFormValue("title")),
		Price:       price,
		ImageURL:    strings.TrimSpace(r.PostFormValue("imageUrl")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
	}

	if err := h.validate.Validate(form); err != nil {
		return productForm{}, apperr.ValidationErr.WrapParent(err)
	}

	return form, nil
}

func (h *productHandler) productID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *productHandler) renderProductsTable(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogSvc.ListAll(r.Context())
	if err != nil {
		h.serverError(w, r, fmt.Errorf("list products: %w", err))
		return
	}

	h.render(w, r, "products-table", productsView{Products: products})
}

func (h *productHandler) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		h.logger.ErrorContext(r.Context(), "error rendering template",
			slog.String("template", name), slog.Any("error", err))
	}
}

func (h *productHandler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "handler error", slog.Any("error", err))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func blankToNil(s string) *string {
	if s == "" {
		return nil
	}
	return ptr.New(s)
}
