package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/monkey-ranch/internal/metrics"
	"github.com/iliyamo/monkey-ranch/internal/model"
	"github.com/iliyamo/monkey-ranch/internal/service"
	"github.com/iliyamo/monkey-ranch/internal/storage"
	v "github.com/iliyamo/monkey-ranch/internal/validation"
)

// ProofField is the multipart field carrying the proof file.
const ProofField = "comprobante"

// ProofRouteSuffix ends the path of every proof upload route.
const ProofRouteSuffix = "-purchase-proof"

// CreatePurchase returns the POST /api/{category}-purchase handler for cat.
// When total is omitted it is derived as precio × cantidad.
func (h *Handler) CreatePurchase(cat model.Category) echo.HandlerFunc {
	form := cat.Key + "-purchase"
	return func(c echo.Context) error {
		in, err := formValues(c)
		if err != nil {
			return fail(c, http.StatusBadRequest, msgInvalidBody)
		}
		fields := []v.Field{
			v.F("nombre", in["nombre"]),
			v.F("email", in["email"]),
			v.F("telefono", in["telefono"]),
			v.F("cantidad", in["cantidad"]),
			v.F("fecha_evento", in["fecha_evento"]),
		}
		if cat.ExtraRequired {
			fields = append(fields, v.F(cat.ExtraField, in[cat.ExtraField]))
		}
		if _, err := v.Required(fields...); err != nil {
			return reject(c, form, err)
		}
		if err := v.Email(in["email"]); err != nil {
			return reject(c, form, err)
		}
		cantidad, err := v.Int(in["cantidad"])
		if err != nil {
			return reject(c, form, err)
		}
		precio, hasPrecio, err := v.Amount(in["precio"])
		if err != nil {
			return reject(c, form, err)
		}
		total, hasTotal, err := v.Amount(in["total"])
		if err != nil {
			return reject(c, form, err)
		}
		if !hasTotal && hasPrecio {
			total = precio.Mul(decimal.NewFromInt(int64(cantidad)))
		}

		p := &model.Purchase{
			Nombre:      in["nombre"],
			Email:       in["email"],
			Telefono:    in["telefono"],
			Cantidad:    cantidad,
			FechaEvento: in["fecha_evento"],
			Extra:       in[cat.ExtraField],
			Precio:      precio,
			Total:       total,
		}
		ctx := c.Request().Context()
		if err := h.Purchases.Create(ctx, cat, p); err != nil {
			return internal(c, form, "Error al registrar la compra de "+cat.Label, err)
		}
		h.afterWrite(ctx, form, p.ID, p.Nombre, p.Email)
		return created(c, "¡Compra de "+cat.Label+" registrada! Sube tu comprobante para confirmarla.", p.ID)
	}
}

// ListPurchases returns the GET /api/{category}-purchases handler.
func (h *Handler) ListPurchases(cat model.Category) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := pageFrom(c)
		if err != nil {
			return fail(c, http.StatusBadRequest, err.Error())
		}
		rows, err := h.Purchases.List(c.Request().Context(), cat, p)
		if err != nil {
			return internal(c, cat.Key+"-purchase", "Error al obtener compras de "+cat.Label, err)
		}
		views := make([]map[string]any, 0, len(rows))
		for _, r := range rows {
			views = append(views, r.View(cat))
		}
		return list(c, views)
	}
}

// UploadProof returns the POST /api/{category}-purchase-proof handler. The
// response is a success whenever the file was stored, whether or not a
// purchase could be linked to it.
func (h *Handler) UploadProof(cat model.Category) echo.HandlerFunc {
	form := cat.Key + "-proof"
	return func(c echo.Context) error {
		in, err := formValues(c)
		if tooLarge(err) {
			return reject(c, form, storage.ErrTooLarge)
		}
		if err != nil {
			return fail(c, http.StatusBadRequest, msgInvalidBody)
		}
		if _, err := v.Required(
			v.F("nombre", in["nombre"]),
			v.F("email", in["email"]),
			v.F("telefono", in["telefono"]),
			v.F("cantidad", in["cantidad"]),
			v.F("fecha_evento", in["fecha_evento"]),
			v.F("total", in["total"]),
		); err != nil {
			return reject(c, form, err)
		}
		if err := v.Email(in["email"]); err != nil {
			return reject(c, form, err)
		}
		cantidad, err := v.Int(in["cantidad"])
		if err != nil {
			return reject(c, form, err)
		}
		total, _, err := v.Amount(in["total"])
		if err != nil {
			return reject(c, form, err)
		}
		var purchaseID *int64
		if s := in["compra_id"]; s != "" {
			n, err := v.Int(s)
			if err != nil || n <= 0 {
				return reject(c, form, v.ErrNotNumeric)
			}
			id := int64(n)
			purchaseID = &id
		}
		fh, err := c.FormFile(ProofField)
		if err != nil {
			return reject(c, form, storage.ErrMissingFile)
		}

		out, err := h.Attacher.Attach(c.Request().Context(), service.ProofSubmission{
			Category:    cat,
			Nombre:      in["nombre"],
			Email:       in["email"],
			Telefono:    in["telefono"],
			Cantidad:    cantidad,
			FechaEvento: in["fecha_evento"],
			Extra:       in[cat.ExtraField],
			Total:       total,
			PurchaseID:  purchaseID,
			File:        fh,
		})
		switch {
		case storage.IsPolicyError(err):
			return reject(c, form, policyError(err))
		case err != nil:
			return internal(c, form, "Error al guardar el comprobante", err)
		}

		metrics.TrackProof(cat.Key, out.Linked)
		for _, s := range out.Soft {
			metrics.TrackProofSoftFailure(cat.Key, string(s.Step))
		}
		h.afterWrite(c.Request().Context(), form, out.AuditID, in["nombre"], in["email"])
		return c.JSON(http.StatusOK, envelope{
			Success:        true,
			Message:        "¡Comprobante recibido! Verificaremos tu pago en breve.",
			ComprobanteURL: out.URL,
		})
	}
}

// ListProofs returns the GET /api/{category}-proofs handler.
func (h *Handler) ListProofs(cat model.Category) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := pageFrom(c)
		if err != nil {
			return fail(c, http.StatusBadRequest, err.Error())
		}
		rows, err := h.Proofs.List(c.Request().Context(), cat, p)
		if err != nil {
			return internal(c, cat.Key+"-proof", "Error al obtener comprobantes de "+cat.Label, err)
		}
		views := make([]map[string]any, 0, len(rows))
		for _, r := range rows {
			views = append(views, r.View(cat))
		}
		return list(c, views)
	}
}

// policyError strips detail added while wrapping, leaving the visitor-facing
// sentinel.
func policyError(err error) error {
	for _, s := range []error{storage.ErrMissingFile, storage.ErrTooLarge, storage.ErrTypeNotAllowed} {
		if errors.Is(err, s) {
			return s
		}
	}
	return err
}
