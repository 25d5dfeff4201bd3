// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names.
const (
	FormSubmittedQueue = "forms.submitted"
	ProofAttachedQueue = "proofs.attached"
)

// FormSubmittedEvent is published after any form row is inserted. It lets
// staff tooling react to new contacts or purchases without polling the
// database.
type FormSubmittedEvent struct {
	Form        string `json:"form"` // contact, vip, inscription, ticket-purchase, ...
	ID          int64  `json:"id"`
	Nombre      string `json:"nombre"`
	Email       string `json:"email"`
	SubmittedAt string `json:"submitted_at"`
}

// ProofAttachedEvent is published after a payment proof was stored.
// PurchaseID is zero when no purchase could be linked.
type ProofAttachedEvent struct {
	Category   string `json:"category"`
	PurchaseID int64  `json:"purchase_id"`
	Linked     bool   `json:"linked"`
	Nombre     string `json:"nombre"`
	Email      string `json:"email"`
	Total      string `json:"total"`
	URL        string `json:"comprobante_url"`
	ReceivedAt string `json:"received_at"`
}
