package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/transport-report/internal/domain/import/parser"
	"github.com/FACorreiaa/transport-report/internal/domain/report"
	"github.com/FACorreiaa/transport-report/internal/domain/report/service"
	"github.com/FACorreiaa/transport-report/pkg/storage"
)

const tripsCSV = "Conductor;F.Carga;Cliente;Origen;Destino;Precio\n" +
	"Ana;01/01/2024;Acme;Madrid;Sevilla;100\n" +
	"Luis;15/01/2024;Acme;Valencia;Bilbao;50,5\n" +
	"Ana;01/02/2024;Beta;Madrid;Vigo;1.000,00\n"

type viewBody struct {
	FileName     string           `json:"file_name"`
	Drivers      []string         `json:"drivers"`
	Months       []string         `json:"months"`
	Weeks        []string         `json:"weeks"`
	Selection    report.Selection `json:"selection"`
	Count        int              `json:"count"`
	TotalDisplay string           `json:"total_display"`
	Rows         []report.Row     `json:"rows"`
}

func newTestRouter(t *testing.T, maxUpload int64) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewService(storage.NewMemoryStore(), parser.NewExtractor(parser.DefaultConfig()), report.DefaultOptions(), logger, nil)
	h := NewReportHandler(svc, maxUpload, logger)

	r := chi.NewRouter()
	r.Get("/healthz", Health)
	r.Route("/api", h.Routes)
	return r
}

func upload(t *testing.T, router http.Handler, name string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func do(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, reader))
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) viewBody {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var v viewBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestImport(t *testing.T) {
	router := newTestRouter(t, 1<<20)

	rec := upload(t, router, "viajes.csv", []byte(tripsCSV))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Import service.ImportResult `json:"import"`
		Report viewBody             `json:"report"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Import.Records)
	assert.Equal(t, parser.FormatCSV, resp.Import.Diagnostics.Format)
	assert.Equal(t, "viajes.csv", resp.Report.FileName)
	assert.Equal(t, []string{"Ana", "Luis"}, resp.Report.Drivers)
	assert.Equal(t, "1.150,50 €", resp.Report.TotalDisplay)
}

func TestImport_Errors(t *testing.T) {
	router := newTestRouter(t, 1<<10)

	t.Run("invalid file", func(t *testing.T) {
		rec := upload(t, router, "roto.xlsx", []byte("not a workbook"))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "error")
	})

	t.Run("too large", func(t *testing.T) {
		rec := upload(t, router, "grande.csv", bytes.Repeat([]byte("a;b\n"), 1<<10))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("missing file", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		require.NoError(t, mw.WriteField("other", "x"))
		require.NoError(t, mw.Close())
		req := httptest.NewRequest(http.MethodPost, "/api/import", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestFilters(t *testing.T) {
	router := newTestRouter(t, 1<<20)
	require.Equal(t, http.StatusOK, upload(t, router, "viajes.csv", []byte(tripsCSV)).Code)

	v := decodeView(t, do(router, http.MethodPut, "/api/filters/month", `{"value":"enero 2024"}`))
	assert.Equal(t, 2, v.Count)
	assert.Equal(t, "150,50 €", v.TotalDisplay)

	v = decodeView(t, do(router, http.MethodPut, "/api/filters/driver", `{"value":"Ana"}`))
	require.Equal(t, 1, v.Count)
	assert.Equal(t, "01/01/2024", v.Rows[0].Date)
	assert.Equal(t, "100.00", v.Rows[0].Amount)

	v = decodeView(t, do(router, http.MethodPut, "/api/filters/week", `{"value":"Semana 6 - 2024"}`))
	assert.Equal(t, report.Selection{Driver: "Ana", Week: "Semana 6 - 2024"}, v.Selection)
	assert.Equal(t, 1, v.Count)

	v = decodeView(t, do(router, http.MethodDelete, "/api/filters", ""))
	assert.True(t, v.Selection.IsZero())
	assert.Equal(t, 3, v.Count)

	assert.Equal(t, http.StatusNotFound, do(router, http.MethodPut, "/api/filters/client", `{"value":"x"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodPut, "/api/filters/driver", `{`).Code)
}

func TestDrivers(t *testing.T) {
	router := newTestRouter(t, 1<<20)
	require.Equal(t, http.StatusOK, upload(t, router, "viajes.csv", []byte(tripsCSV)).Code)

	rec := do(router, http.MethodGet, "/api/drivers?q=lu", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"drivers":["Luis"]}`, rec.Body.String())

	rec = do(router, http.MethodGet, "/api/drivers?limit=1", "")
	assert.JSONEq(t, `{"drivers":["Ana"]}`, rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodGet, "/api/drivers?limit=x", "").Code)
}

type deleteBody struct {
	Removed int      `json:"removed"`
	Report  viewBody `json:"report"`
}

func decodeDeleted(t *testing.T, rec *httptest.ResponseRecorder) deleteBody {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp deleteBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestDelete(t *testing.T) {
	router := newTestRouter(t, 1<<20)
	require.Equal(t, http.StatusOK, upload(t, router, "viajes.csv", []byte(tripsCSV)).Code)

	resp := decodeDeleted(t, do(router, http.MethodDelete, "/api/data/months/enero%202024", ""))
	assert.Equal(t, 2, resp.Removed)
	assert.Equal(t, []string{"febrero 2024"}, resp.Report.Months)
	assert.Equal(t, "viajes.csv", resp.Report.FileName)

	resp = decodeDeleted(t, do(router, http.MethodDelete, "/api/data/weeks/Semana%206%20-%202024", ""))
	assert.Equal(t, 1, resp.Removed)
	assert.Zero(t, resp.Report.Count)
	assert.Empty(t, resp.Report.FileName)

	require.Equal(t, http.StatusOK, upload(t, router, "viajes.csv", []byte(tripsCSV)).Code)
	resp = decodeDeleted(t, do(router, http.MethodDelete, "/api/data", ""))
	assert.Equal(t, 3, resp.Removed)
	assert.Empty(t, resp.Report.Drivers)
	assert.Empty(t, resp.Report.FileName)
}

func TestExport(t *testing.T) {
	router := newTestRouter(t, 1<<20)
	require.Equal(t, http.StatusOK, upload(t, router, "viajes.csv", []byte(tripsCSV)).Code)
	decodeView(t, do(router, http.MethodPut, "/api/filters/driver", `{"value":"Luis"}`))

	rec := do(router, http.MethodGet, "/api/report/export.csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="viajes-informe.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "Luis;15/01/2024;Acme;Valencia;Bilbao;50.50")

	rec = do(router, http.MethodGet, "/api/report/export.xlsx", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Informe")
	require.NoError(t, err)
	assert.Equal(t, "Luis", rows[3][0])
}

func TestHealth(t *testing.T) {
	rec := do(newTestRouter(t, 1<<20), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
