package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase is a row of one of the purchase tables. Extra holds the value of
// the category-specific column (see Category.ExtraField). Comprobante is the
// only field that changes after insert: it is overwritten with the URL of the
// latest proof linked to the row.
type Purchase struct {
	ID          int64           `json:"id"`
	Nombre      string          `json:"nombre"`
	Email       string          `json:"email"`
	Telefono    string          `json:"telefono"`
	Cantidad    int             `json:"cantidad"`
	FechaEvento string          `json:"fecha_evento"`
	Extra       string          `json:"-"`
	Precio      decimal.Decimal `json:"precio"`
	Total       decimal.Decimal `json:"total"`
	Comprobante *string         `json:"comprobante"`
	CreatedAt   time.Time       `json:"fecha_creacion"`
}

// ProofRecord is an append-only audit row describing an uploaded proof.
// PurchaseID records which purchase the upload was linked to, if any; it is
// informational and carries no foreign key.
type ProofRecord struct {
	ID          int64           `json:"id"`
	PurchaseID  *int64          `json:"compra_id"`
	Nombre      string          `json:"nombre"`
	Email       string          `json:"email"`
	Telefono    string          `json:"telefono"`
	Cantidad    int             `json:"cantidad"`
	FechaEvento string          `json:"fecha_evento"`
	Extra       string          `json:"-"`
	Total       decimal.Decimal `json:"total"`
	Comprobante string          `json:"comprobante"`
	UploadedAt  time.Time       `json:"fecha_subida"`
}

// View renders the purchase for list responses, naming the extra column
// after the category.
func (p Purchase) View(c Category) map[string]any {
	return map[string]any{
		"id":             p.ID,
		"nombre":         p.Nombre,
		"email":          p.Email,
		"telefono":       p.Telefono,
		"cantidad":       p.Cantidad,
		"fecha_evento":   p.FechaEvento,
		c.ExtraField:     p.Extra,
		"precio":         p.Precio,
		"total":          p.Total,
		"comprobante":    p.Comprobante,
		"fecha_creacion": p.CreatedAt,
	}
}

// View renders the audit row for list responses.
func (r ProofRecord) View(c Category) map[string]any {
	return map[string]any{
		"id":           r.ID,
		"compra_id":    r.PurchaseID,
		"nombre":       r.Nombre,
		"email":        r.Email,
		"telefono":     r.Telefono,
		"cantidad":     r.Cantidad,
		"fecha_evento": r.FechaEvento,
		c.ExtraField:   r.Extra,
		"total":        r.Total,
		"comprobante":  r.Comprobante,
		"fecha_subida": r.UploadedAt,
	}
}
