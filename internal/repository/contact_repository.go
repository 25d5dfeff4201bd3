package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/monkey-ranch/internal/database"
	"github.com/iliyamo/monkey-ranch/internal/model"
)

// ContactRepo persists contact form submissions.
type ContactRepo struct {
	db *database.DB
}

func NewContactRepo(db *database.DB) *ContactRepo { return &ContactRepo{db: db} }

// Create inserts the message and fills in its ID.
func (r *ContactRepo) Create(ctx context.Context, m *model.ContactMessage) error {
	const q = `INSERT INTO contacts (nombre, email, telefono, mensaje, instagram, facebook)
	           VALUES (?, ?, ?, ?, ?, ?)`
	id, err := r.db.InsertID(ctx, q, m.Nombre, m.Email, m.Telefono, m.Mensaje,
		nullString(m.Instagram), nullString(m.Facebook))
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}

// List returns messages newest first.
func (r *ContactRepo) List(ctx context.Context, p Page) ([]model.ContactMessage, error) {
	q := `SELECT id, nombre, email, telefono, mensaje, instagram, facebook, fecha_creacion
	      FROM contacts ORDER BY fecha_creacion DESC, id DESC` + p.clause()
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ContactMessage{}
	for rows.Next() {
		var m model.ContactMessage
		var tel, ig, fb sql.NullString
		if err := rows.Scan(&m.ID, &m.Nombre, &m.Email, &tel, &m.Mensaje, &ig, &fb, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Telefono, m.Instagram, m.Facebook = tel.String, ig.String, fb.String
		out = append(out, m)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
