package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/monkey-ranch/internal/database"
	"github.com/iliyamo/monkey-ranch/internal/model"
)

// ProofRepo appends to and reads the per-category proof audit tables. Rows
// are never updated.
type ProofRepo struct {
	db *database.DB
}

func NewProofRepo(db *database.DB) *ProofRepo { return &ProofRepo{db: db} }

// Create appends an audit row and fills in its ID.
func (r *ProofRepo) Create(ctx context.Context, c model.Category, rec *model.ProofRecord) error {
	q := fmt.Sprintf(`INSERT INTO %s (compra_id, nombre, email, telefono, cantidad, fecha_evento, %s, total, comprobante)
	                  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, c.ProofTable, c.ExtraField)
	var purchaseID sql.NullInt64
	if rec.PurchaseID != nil {
		purchaseID = sql.NullInt64{Int64: *rec.PurchaseID, Valid: true}
	}
	id, err := r.db.InsertID(ctx, q, purchaseID, rec.Nombre, rec.Email, rec.Telefono, rec.Cantidad,
		rec.FechaEvento, nullString(rec.Extra), nullDecimal(rec.Total), rec.Comprobante)
	if err != nil {
		return err
	}
	rec.ID = id
	return nil
}

// List returns audit rows newest first.
func (r *ProofRepo) List(ctx context.Context, c model.Category, p Page) ([]model.ProofRecord, error) {
	q := fmt.Sprintf(`SELECT id, compra_id, nombre, email, telefono, cantidad, fecha_evento, %s, total, comprobante, fecha_subida
	                  FROM %s ORDER BY fecha_subida DESC, id DESC`, c.ExtraField, c.ProofTable) + p.clause()
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ProofRecord{}
	for rows.Next() {
		var rec model.ProofRecord
		var purchaseID, cantidad sql.NullInt64
		var tel, fecha, extra sql.NullString
		var total decimal.NullDecimal
		if err := rows.Scan(&rec.ID, &purchaseID, &rec.Nombre, &rec.Email, &tel, &cantidad, &fecha,
			&extra, &total, &rec.Comprobante, &rec.UploadedAt); err != nil {
			return nil, err
		}
		if purchaseID.Valid {
			id := purchaseID.Int64
			rec.PurchaseID = &id
		}
		rec.Telefono, rec.FechaEvento, rec.Extra = tel.String, fecha.String, extra.String
		rec.Cantidad = int(cantidad.Int64)
		rec.Total = total.Decimal
		out = append(out, rec)
	}
	return out, rows.Err()
}
