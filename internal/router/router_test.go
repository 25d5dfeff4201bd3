package router

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/monkey-ranch/internal/handler"
	"github.com/iliyamo/monkey-ranch/internal/storage"
)

func TestEveryCategoryIsRouted(t *testing.T) {
	e := New(&handler.Handler{}, Options{})

	routes := map[string]bool{}
	for _, r := range e.Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"POST /api/contact", "GET /api/contacts",
		"POST /api/vip", "GET /api/vip",
		"POST /api/inscripcion", "GET /api/inscripciones",
		"POST /api/ticket-purchase", "POST /api/vip-purchase", "POST /api/parking-purchase",
		"POST /api/ticket-purchase-proof", "POST /api/vip-purchase-proof", "POST /api/parking-purchase-proof",
		"GET /api/ticket-purchases", "GET /api/parking-proofs",
		"GET /uploads/:name", "GET /healthz", "GET /metrics",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}
}

func TestStaticIndexAndCORS(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>Monkey Ranch</h1>"), 0o644))
	e := New(&handler.Handler{}, Options{StaticDir: dir})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderOrigin, "https://example.com")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Monkey Ranch")
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestBodyLimitRendersEnvelope(t *testing.T) {
	e := New(&handler.Handler{}, Options{BodyLimit: "1K"})

	big := make([]byte, 4096)
	req := httptest.NewRequest(http.MethodPost, "/api/contact", bytes.NewReader(big))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestOversizedProofIsPolicyRejection(t *testing.T) {
	e := New(&handler.Handler{}, Options{BodyLimit: "1K"})

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("nombre", "Ana"))
	part, err := w.CreateFormFile(handler.ProofField, "pago.png")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte{0x89}, 4096))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/ticket-purchase-proof", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, storage.ErrTooLarge.Error(), body["message"])
}
