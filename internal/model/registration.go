package model

import "time"

// VipRegistration is a VIP interest sign-up (`vip_registrations`). Boletos is
// the ticket-count tier picked in the form ("1-2", "3-5", ...), kept as text.
type VipRegistration struct {
	ID        int64     `json:"id"`
	Nombre    string    `json:"nombre"`
	Email     string    `json:"email"`
	Contacto  string    `json:"contacto"`
	Boletos   string    `json:"boletos"`
	CreatedAt time.Time `json:"fecha_creacion"`
}

// Inscription is a driver sign-up for an event (`inscriptions`).
type Inscription struct {
	ID             int64     `json:"id"`
	Nombre         string    `json:"nombre"`
	Email          string    `json:"email"`
	Telefono       string    `json:"telefono"`
	Edad           int       `json:"edad"`
	NumeroVehiculo string    `json:"numero_vehiculo"`
	Licencia       string    `json:"licencia"`
	Categoria      string    `json:"categoria,omitempty"`
	CreatedAt      time.Time `json:"fecha_creacion"`
}
