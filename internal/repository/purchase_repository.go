package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/monkey-ranch/internal/database"
	"github.com/iliyamo/monkey-ranch/internal/model"
)

// PurchaseRepo serves all purchase tables; the category picks the table and
// its extra column.
type PurchaseRepo struct {
	db *database.DB
}

func NewPurchaseRepo(db *database.DB) *PurchaseRepo { return &PurchaseRepo{db: db} }

// Create inserts a purchase without proof and fills in its ID.
func (r *PurchaseRepo) Create(ctx context.Context, c model.Category, p *model.Purchase) error {
	q := fmt.Sprintf(`INSERT INTO %s (nombre, email, telefono, cantidad, fecha_evento, %s, precio, total)
	                  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, c.Table, c.ExtraField)
	id, err := r.db.InsertID(ctx, q, p.Nombre, p.Email, p.Telefono, p.Cantidad, p.FechaEvento,
		nullString(p.Extra), nullDecimal(p.Precio), nullDecimal(p.Total))
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

// FindLatestByIdentity returns the id of the most recent purchase made under
// the given name and email. Several purchases may match; the newest wins.
func (r *PurchaseRepo) FindLatestByIdentity(ctx context.Context, c model.Category, nombre, email string) (int64, error) {
	q := fmt.Sprintf(`SELECT id FROM %s WHERE nombre = ? AND email = ?
	                  ORDER BY fecha_creacion DESC, id DESC LIMIT 1`, c.Table)
	var id int64
	if err := r.db.QueryRow(ctx, q, nombre, email).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return id, nil
}

// SetProof overwrites the proof reference of purchase id. Any earlier value
// is replaced. ErrNotFound is returned when no row has that id.
func (r *PurchaseRepo) SetProof(ctx context.Context, c model.Category, id int64, url string) error {
	q := fmt.Sprintf(`UPDATE %s SET comprobante = ? WHERE id = ?`, c.Table)
	res, err := r.db.Exec(ctx, q, url, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns purchases newest first.
func (r *PurchaseRepo) List(ctx context.Context, c model.Category, p Page) ([]model.Purchase, error) {
	q := fmt.Sprintf(`SELECT id, nombre, email, telefono, cantidad, fecha_evento, %s, precio, total, comprobante, fecha_creacion
	                  FROM %s ORDER BY fecha_creacion DESC, id DESC`, c.ExtraField, c.Table) + p.clause()
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Purchase{}
	for rows.Next() {
		var p model.Purchase
		var extra, proof sql.NullString
		var precio, total decimal.NullDecimal
		if err := rows.Scan(&p.ID, &p.Nombre, &p.Email, &p.Telefono, &p.Cantidad, &p.FechaEvento,
			&extra, &precio, &total, &proof, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Extra = extra.String
		p.Precio, p.Total = precio.Decimal, total.Decimal
		if proof.Valid {
			s := proof.String
			p.Comprobante = &s
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func nullDecimal(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: !d.IsZero()}
}
