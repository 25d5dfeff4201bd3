package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/monkey-ranch/internal/database"
	"github.com/iliyamo/monkey-ranch/internal/model"
)

// VipRepo persists VIP sign-ups.
type VipRepo struct {
	db *database.DB
}

func NewVipRepo(db *database.DB) *VipRepo { return &VipRepo{db: db} }

func (r *VipRepo) Create(ctx context.Context, v *model.VipRegistration) error {
	const q = `INSERT INTO vip_registrations (nombre, email, contacto, boletos) VALUES (?, ?, ?, ?)`
	id, err := r.db.InsertID(ctx, q, v.Nombre, v.Email, v.Contacto, v.Boletos)
	if err != nil {
		return err
	}
	v.ID = id
	return nil
}

// List returns sign-ups newest first.
func (r *VipRepo) List(ctx context.Context, p Page) ([]model.VipRegistration, error) {
	q := `SELECT id, nombre, email, contacto, boletos, fecha_creacion
	      FROM vip_registrations ORDER BY fecha_creacion DESC, id DESC` + p.clause()
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.VipRegistration{}
	for rows.Next() {
		var v model.VipRegistration
		if err := rows.Scan(&v.ID, &v.Nombre, &v.Email, &v.Contacto, &v.Boletos, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// InscriptionRepo persists driver inscriptions.
type InscriptionRepo struct {
	db *database.DB
}

func NewInscriptionRepo(db *database.DB) *InscriptionRepo { return &InscriptionRepo{db: db} }

func (r *InscriptionRepo) Create(ctx context.Context, in *model.Inscription) error {
	const q = `INSERT INTO inscriptions (nombre, email, telefono, edad, numero_vehiculo, licencia, categoria)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	id, err := r.db.InsertID(ctx, q, in.Nombre, in.Email, in.Telefono, in.Edad,
		in.NumeroVehiculo, in.Licencia, nullString(in.Categoria))
	if err != nil {
		return err
	}
	in.ID = id
	return nil
}

// List returns inscriptions newest first.
func (r *InscriptionRepo) List(ctx context.Context, p Page) ([]model.Inscription, error) {
	q := `SELECT id, nombre, email, telefono, edad, numero_vehiculo, licencia, categoria, fecha_creacion
	      FROM inscriptions ORDER BY fecha_creacion DESC, id DESC` + p.clause()
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Inscription{}
	for rows.Next() {
		var in model.Inscription
		var edad sql.NullInt64
		var cat sql.NullString
		if err := rows.Scan(&in.ID, &in.Nombre, &in.Email, &in.Telefono, &edad,
			&in.NumeroVehiculo, &in.Licencia, &cat, &in.CreatedAt); err != nil {
			return nil, err
		}
		in.Edad = int(edad.Int64)
		in.Categoria = cat.String
		out = append(out, in)
	}
	return out, rows.Err()
}
