package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/monkey-ranch/internal/model"
	"github.com/iliyamo/monkey-ranch/internal/service"
	"github.com/iliyamo/monkey-ranch/internal/validation"
)

func TestCreateVip(t *testing.T) {
	vip := &fakeVip{}
	e := newEcho(&Handler{Vip: vip})

	rec := postJSON(e, "/api/vip", `{"nombre":"Ana","email":"ana@x.com","contacto":"555","boletos":"3-5"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["id"])
	require.Len(t, vip.rows, 1)
	assert.Equal(t, "3-5", vip.rows[0].Boletos)
}

// jsonForm is one JSON endpoint with a complete submission and the fields
// that must each be present for it to be accepted.
type jsonForm struct {
	path     string
	valid    map[string]string
	required []string
	handler  func() (*Handler, func() int)
}

func jsonForms() []jsonForm {
	forms := []jsonForm{
		{
			path:     "/api/contact",
			valid:    map[string]string{"nombre": "Ana", "email": "ana@x.com", "telefono": "555", "mensaje": "hola"},
			required: []string{"nombre", "email", "telefono", "mensaje"},
			handler: func() (*Handler, func() int) {
				s := &fakeContacts{}
				return &Handler{Contacts: s}, func() int { return s.calls }
			},
		},
		{
			path:     "/api/vip",
			valid:    map[string]string{"nombre": "Ana", "email": "ana@x.com", "contacto": "555", "boletos": "1-2"},
			required: []string{"nombre", "email", "contacto", "boletos"},
			handler: func() (*Handler, func() int) {
				s := &fakeVip{}
				return &Handler{Vip: s}, func() int { return len(s.rows) }
			},
		},
		{
			path: "/api/inscripcion",
			valid: map[string]string{
				"nombre": "Luis", "email": "luis@x.com", "telefono": "1",
				"edad": "21", "numero_vehiculo": "7", "licencia": "L-1",
			},
			required: []string{"nombre", "email", "telefono", "edad", "numero_vehiculo", "licencia"},
			handler: func() (*Handler, func() int) {
				s := &fakeInscriptions{}
				return &Handler{Inscriptions: s}, func() int { return len(s.rows) }
			},
		},
	}
	for _, cat := range model.Categories() {
		forms = append(forms, jsonForm{
			path: "/api/" + cat.Key + "-purchase",
			valid: map[string]string{
				"nombre": "Ana", "email": "ana@x.com", "telefono": "5",
				"cantidad": "2", "fecha_evento": "2025-06-01", cat.ExtraField: "x",
			},
			required: []string{"nombre", "email", "telefono", "cantidad", "fecha_evento", cat.ExtraField},
			handler: func() (*Handler, func() int) {
				s := &fakePurchases{}
				return &Handler{Purchases: s}, func() int { return len(s.rows) }
			},
		})
	}
	return forms
}

func without(m map[string]string, key string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		if k != key {
			out[k] = v
		}
	}
	return out
}

func TestFormsRejectEachMissingField(t *testing.T) {
	for _, f := range jsonForms() {
		t.Run(f.path, func(t *testing.T) {
			h, stored := f.handler()
			e := newEcho(h)
			full, err := json.Marshal(f.valid)
			require.NoError(t, err)
			rec := postJSON(e, f.path, string(full))
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
			require.Equal(t, 1, stored())

			for _, field := range f.required {
				body, err := json.Marshal(without(f.valid, field))
				require.NoError(t, err)
				rec := postJSON(e, f.path, string(body))
				assert.Equal(t, http.StatusBadRequest, rec.Code, "without %s", field)
				assert.Equal(t, validation.ErrMissingFields.Error(), decode(t, rec)["message"], "without %s", field)

				blank := without(f.valid, field)
				blank[field] = "   "
				body, err = json.Marshal(blank)
				require.NoError(t, err)
				rec = postJSON(e, f.path, string(body))
				assert.Equal(t, http.StatusBadRequest, rec.Code, "blank %s", field)
			}
			assert.Equal(t, 1, stored(), "rejected submissions must not be stored")
		})
	}
}

func TestProofUploadRejectsEachMissingField(t *testing.T) {
	required := []string{"nombre", "email", "telefono", "cantidad", "fecha_evento", "total"}
	for _, cat := range model.Categories() {
		path := "/api/" + cat.Key + ProofRouteSuffix
		t.Run(path, func(t *testing.T) {
			att := &fakeAttacher{out: service.Outcome{URL: "http://localhost:3000/uploads/1-pago.png"}}
			e := newEcho(&Handler{Attacher: att})

			send := func(fields map[string]string) *httptest.ResponseRecorder {
				req := multipartProof(t, fields, "pago.png", "image/png", pngBytes)
				req.URL.Path = path
				rec := httptest.NewRecorder()
				e.ServeHTTP(rec, req)
				return rec
			}

			rec := send(proofFields())
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			require.Equal(t, 1, att.calls)
			assert.Equal(t, cat.Key, att.got.Category.Key)

			for _, field := range required {
				rec := send(without(proofFields(), field))
				assert.Equal(t, http.StatusBadRequest, rec.Code, "without %s", field)
				assert.Equal(t, validation.ErrMissingFields.Error(), decode(t, rec)["message"], "without %s", field)
			}
			assert.Equal(t, 1, att.calls, "nothing is stored for an incomplete proof")
		})
	}
}

func TestTooLargeMatchesWrappedBodyLimit(t *testing.T) {
	assert.True(t, tooLarge(fmt.Errorf("multipart: NextPart: %w", echo.ErrStatusRequestEntityTooLarge)))
	assert.False(t, tooLarge(echo.ErrBadRequest))
	assert.False(t, tooLarge(nil))
}
