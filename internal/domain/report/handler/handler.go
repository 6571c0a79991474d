package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/FACorreiaa/transport-report/internal/domain/report"
	"github.com/FACorreiaa/transport-report/internal/domain/report/service"
	"github.com/FACorreiaa/transport-report/pkg/middleware"
)

const (
	uploadField     = "file"
	multipartMemory = 8 << 20
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ReportHandler exposes the report service over HTTP
type ReportHandler struct {
	svc            *service.Service
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewReportHandler creates a new report handler
func NewReportHandler(svc *service.Service, maxUploadBytes int64, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		svc:            svc,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes mounts the API on r
func (h *ReportHandler) Routes(r chi.Router) {
	r.Post("/import", h.Import)
	r.Get("/report", h.Report)
	r.Get("/report/export.csv", h.ExportCSV)
	r.Get("/report/export.xlsx", h.ExportXLSX)
	r.Get("/drivers", h.Drivers)
	r.Put("/filters/{kind}", h.SetFilter)
	r.Delete("/filters", h.ClearFilters)
	r.Delete("/data", h.DeleteAll)
	r.Delete("/data/months/{key}", h.DeleteMonth)
	r.Delete("/data/weeks/{key}", h.DeleteWeek)
}

type importResponse struct {
	Import *service.ImportResult `json:"import"`
	Report report.View           `json:"report"`
}

type filterRequest struct {
	Value string `json:"value"`
}

type deleteResponse struct {
	Removed int         `json:"removed"`
	Report  report.View `json:"report"`
}

// Import replaces the dataset with the uploaded spreadsheet
func (h *ReportHandler) Import(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.maxUploadBytes {
		h.writeError(w, r, http.StatusRequestEntityTooLarge, fmt.Errorf("file exceeds %d bytes", h.maxUploadBytes))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, r, http.StatusRequestEntityTooLarge, fmt.Errorf("file exceeds %d bytes", h.maxUploadBytes))
			return
		}
		h.writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid upload: %w", err))
		return
	}

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, fmt.Errorf("missing %q form file", uploadField))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, fmt.Errorf("failed to read upload: %w", err))
		return
	}

	result, err := h.svc.Import(r.Context(), filepath.Base(header.Filename), data)
	if err != nil {
		if errors.Is(err, service.ErrInvalidFile) {
			h.writeError(w, r, http.StatusUnprocessableEntity, err)
			return
		}
		h.writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, importResponse{Import: result, Report: h.svc.View()})
}

// Report returns the view for the current dataset and filters
func (h *ReportHandler) Report(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, h.svc.View())
}

// Drivers searches the dataset drivers with ?q= and ?limit=
func (h *ReportHandler) Drivers(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = n
	}
	drivers := h.svc.SearchDrivers(r.URL.Query().Get("q"), limit)
	h.writeJSON(w, r, http.StatusOK, map[string][]string{"drivers": drivers})
}

// SetFilter sets the driver, month or week filter. An empty value clears it.
func (h *ReportHandler) SetFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	switch chi.URLParam(r, "kind") {
	case "driver":
		h.svc.SelectDriver(req.Value)
	case "month":
		h.svc.SelectMonth(req.Value)
	case "week":
		h.svc.SelectWeek(req.Value)
	default:
		h.writeError(w, r, http.StatusNotFound, fmt.Errorf("unknown filter %q", chi.URLParam(r, "kind")))
		return
	}
	h.writeJSON(w, r, http.StatusOK, h.svc.View())
}

// ClearFilters removes every filter
func (h *ReportHandler) ClearFilters(w http.ResponseWriter, r *http.Request) {
	h.svc.ClearFilters()
	h.writeJSON(w, r, http.StatusOK, h.svc.View())
}

// DeleteAll removes the whole dataset
func (h *ReportHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	removed, err := h.svc.DeleteAll(r.Context())
	h.writeDeleted(w, r, removed, err)
}

// DeleteMonth removes the records of one month key
func (h *ReportHandler) DeleteMonth(w http.ResponseWriter, r *http.Request) {
	key, ok := h.pathKey(w, r)
	if !ok {
		return
	}
	removed, err := h.svc.DeleteMonth(r.Context(), key)
	h.writeDeleted(w, r, removed, err)
}

// DeleteWeek removes the records of one week key
func (h *ReportHandler) DeleteWeek(w http.ResponseWriter, r *http.Request) {
	key, ok := h.pathKey(w, r)
	if !ok {
		return
	}
	removed, err := h.svc.DeleteWeek(r.Context(), key)
	h.writeDeleted(w, r, removed, err)
}

// ExportCSV downloads the filtered report as CSV
func (h *ReportHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	view := h.svc.View()
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(view, "csv"))
	if err := report.WriteCSV(w, view); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write csv export",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.Any("error", err))
	}
}

// ExportXLSX downloads the filtered report as a workbook
func (h *ReportHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	view := h.svc.View()
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", attachment(view, "xlsx"))
	if err := report.WriteXLSX(w, view); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write xlsx export",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.Any("error", err))
	}
}

func attachment(view report.View, ext string) string {
	base := strings.TrimSuffix(view.FileName, filepath.Ext(view.FileName))
	if base == "" {
		base = "informe"
	}
	return fmt.Sprintf("attachment; filename=%q", base+"-informe."+ext)
}

func (h *ReportHandler) pathKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key, err := url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil || strings.TrimSpace(key) == "" {
		h.writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid key %q", chi.URLParam(r, "key")))
		return "", false
	}
	return key, true
}

func (h *ReportHandler) writeDeleted(w http.ResponseWriter, r *http.Request, removed int, err error) {
	if err != nil {
		h.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, deleteResponse{Removed: removed, Report: h.svc.View()})
}

func (h *ReportHandler) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to encode response",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.Any("error", err))
	}
}

func (h *ReportHandler) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
	}
	h.writeJSON(w, r, status, map[string]string{"error": err.Error()})
}

// Health reports liveness
func Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
