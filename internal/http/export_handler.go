package http

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"catalogweb/internal/model"
	"catalogweb/internal/service"
	"catalogweb/pkg/ptr"
)

type exportHandler struct {
	logger     *slog.Logger
	catalogSvc service.CatalogService

	now func() time.Time
}

func newExportHandler(logger *slog.Logger, catalogSvc service.CatalogService) *exportHandler {
	return &exportHandler{
		logger:     logger,
		catalogSvc: catalogSvc,
		now:        time.Now,
	}
}

var exportColumns = []string{"ID", "External ID", "Title", "Price", "Image URL", "Description"}

func (h *exportHandler) CSV(w http.ResponseWriter, r *http.Request) {
	products, ok := h.listAll(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", attachment("csv", h.now()))

	cw := csv.NewWriter(w)
	_ = cw.Write(exportColumns)
	for _, p := range products {
		_ = cw.Write(exportRow(p))
	}
	cw.Flush()

	if err := cw.Error(); err != nil {
		h.logger.ErrorContext(r.Context(), "error writing csv export", slog.Any("error", err))
	}
}

func (h *exportHandler) JSON(w http.ResponseWriter, r *http.Request) {
	products, ok := h.listAll(w, r)
	if !ok {
		return
	}

	export := struct {
		ExportedAt    string          `json:"exportedAt"`
		TotalProducts int             `json:"totalProducts"`
		Products      []model.Product `json:"products"`
	}{
		ExportedAt:    h.now().Format(time.RFC3339),
		TotalProducts: len(products),
		Products:      products,
	}

	body, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		h.serverError(w, r, fmt.Errorf("marshal export: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", attachment("json", h.now()))
	_, _ = w.Write(body)
}

func (h *exportHandler) XLSX(w http.ResponseWriter, r *http.Request) {
	products, ok := h.listAll(w, r)
	if !ok {
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Products"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		h.serverError(w, r, fmt.Errorf("rename sheet: %w", err))
		return
	}

	for col, header := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheet, cell, header)
	}

	for i, p := range products {
		values := []any{p.ID, p.ExternalID, p.Title, p.Price, ptr.Deref(p.ImageURL), ptr.Deref(p.Description)}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", attachment("xlsx", h.now()))

	if err := f.Write(w); err != nil {
		h.logger.ErrorContext(r.Context(), "error writing xlsx export", slog.Any("error", err))
	}
}

func (h *exportHandler) listAll(w http.ResponseWriter, r *http.Request) ([]model.Product, bool) {
	products, err := h.catalogSvc.ListAll(r.Context())
	if err != nil {
		h.serverError(w, r, fmt.Errorf("list products: %w", err))
		return nil, false
	}
	return products, true
}

func (h *exportHandler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "export error", slog.Any("error", err))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func attachment(ext string, ts time.Time) string {
	return fmt.Sprintf("attachment; filename=products_%s.%s", ts.Format("2006-01-02_15-04-05"), ext)
}

func exportRow(p model.Product) []string {
	description := strings.ReplaceAll(ptr.Deref(p.Description), "\n", " ")
	return []string{
		strconv.FormatInt(p.ID, 10),
		strconv.FormatInt(p.ExternalID, 10),
		p.Title,
		fmt.Sprintf("%.2f", p.Price),
		ptr.Deref(p.ImageURL),
		description,
	}
}
