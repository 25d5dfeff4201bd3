package model

import "time"

// ContactMessage is a contact form submission. It corresponds to a row in
// the `contacts` table. Social handles are optional.
type ContactMessage struct {
	ID        int64     `json:"id"`
	Nombre    string    `json:"nombre"`
	Email     string    `json:"email"`
	Telefono  string    `json:"telefono"`
	Mensaje   string    `json:"mensaje"`
	Instagram string    `json:"instagram,omitempty"`
	Facebook  string    `json:"facebook,omitempty"`
	CreatedAt time.Time `json:"fecha_creacion"`
}
