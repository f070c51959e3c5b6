package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-extractor/internal/core/extract"
	"github.com/joseph-ayodele/invoice-extractor/internal/pipeline"
	"github.com/joseph-ayodele/invoice-extractor/internal/repository"
	"github.com/joseph-ayodele/invoice-extractor/internal/services/invoices"
	"github.com/joseph-ayodele/invoice-extractor/internal/textsource"
)

const invoiceText = `DISTRIBUIDORA NORTE S.A.
CUIT: 30-66328849-7
CODIGO 06
Factura Nro. 1305-76453547
Fecha de Emisión: 22/08/2023
Total a Pagar: $9,136.40
`

func setupRouter(t *testing.T, health HealthFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	dsn := "file:" + filepath.Join(t.TempDir(), "http.db")
	db, err := repository.Open(ctx, repository.Config{Driver: repository.DriverSQLite, DSN: dsn}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(ctx))

	invs := repository.NewInvoiceRepository(db, nil)
	proc := pipeline.NewProcessor(
		textsource.NewLoader(textsource.Config{}, nil),
		extract.NewPatternExtractor(nil),
		repository.NewExtractJobRepository(db, nil),
		invs,
		nil,
	)
	h := NewHandler(invoices.NewService(proc, invs, nil, nil), 1<<20, nil)
	return NewRouter(h, health, nil)
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestExtractText_ThenReadBack(t *testing.T) {
	r := setupRouter(t, nil)

	w := doJSON(t, r, http.MethodPost, "/v1/invoices", gin.H{"name": "pegado.txt", "text": invoiceText})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	id, _ := created["invoice_id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "pattern", created["extractor"])
	assert.Contains(t, created["summary"], "1305-76453547")

	w = doJSON(t, r, http.MethodGet, "/v1/invoices/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pegado.txt", decode(t, w)["source_name"])

	w = doJSON(t, r, http.MethodGet, "/v1/invoices?supplier_cuit=30-66328849-7&limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["invoices"], 1)

	w = doJSON(t, r, http.MethodPost, "/v1/invoices/"+id+"/ask", gin.H{"question": "¿Cuál es el CUIT?"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode(t, w)["answer"], "30-66328849-7")

	w = doJSON(t, r, http.MethodGet, "/v1/invoices/"+id+"/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="invoice_1305-76453547.json"`, w.Header().Get("Content-Disposition"))
	payload := decode(t, w)
	assert.Equal(t, "1305-76453547", payload["invoiceNumber"])
	assert.Equal(t, "1", payload["exchangeType"])
}

func TestExtractUpload(t *testing.T) {
	r := setupRouter(t, nil)

	upload := func(force bool) *httptest.ResponseRecorder {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		fw, err := mw.CreateFormFile("file", "factura.txt")
		require.NoError(t, err)
		_, err = fw.Write([]byte(invoiceText))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		path := "/v1/invoices"
		if force {
			path += "?force=true"
		}
		req := httptest.NewRequest(http.MethodPost, path, &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	first := upload(false)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	second := upload(false)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, true, decode(t, second)["reused"])
	assert.Equal(t, decode(t, first)["invoice_id"], decode(t, second)["invoice_id"])

	forced := upload(true)
	require.Equal(t, http.StatusCreated, forced.Code)
	assert.NotEqual(t, decode(t, first)["invoice_id"], decode(t, forced)["invoice_id"])
}

func TestErrorResponses(t *testing.T) {
	r := setupRouter(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"empty text", http.MethodPost, "/v1/invoices", gin.H{"text": "  "}, http.StatusBadRequest},
		{"no body", http.MethodPost, "/v1/invoices", nil, http.StatusBadRequest},
		{"malformed id", http.MethodGet, "/v1/invoices/42", nil, http.StatusBadRequest},
		{"unknown id", http.MethodGet, "/v1/invoices/" + uuid.NewString(), nil, http.StatusNotFound},
		{"bad limit", http.MethodGet, "/v1/invoices?limit=-1", nil, http.StatusBadRequest},
		{"inverted range", http.MethodGet, "/v1/exports/invoices.xlsx?from=2024-02-01&to=2024-01-01", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.NotEmpty(t, decode(t, w)["error"])
		})
	}
}

func TestExportLedger(t *testing.T) {
	r := setupRouter(t, nil)
	w := doJSON(t, r, http.MethodPost, "/v1/invoices", gin.H{"text": invoiceText})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodGet, "/v1/exports/invoices.xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Invoices")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "30-66328849-7", rows[1][2])
}

func TestHealthAndRequestID(t *testing.T) {
	r := setupRouter(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-7")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-7", w.Header().Get(requestIDHeader))

	down := setupRouter(t, func(context.Context) error { return errors.New("db down") })
	w = doJSON(t, down, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Recovery(nil))
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "internal error"))
}
