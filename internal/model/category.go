package model

import "sort"

// Category describes one purchase kind: where its rows and proof audit rows
// live and which extra column the form carries.
type Category struct {
	Key        string // URL segment: /api/{Key}-purchase
	Label      string // Spanish noun used in response messages
	Table      string
	ProofTable string
	ExtraField string // category-specific form field and column name
	// ExtraRequired marks the extra field as mandatory on purchase creation.
	ExtraRequired bool
}

var categories = map[string]Category{
	"ticket": {
		Key:           "ticket",
		Label:         "boletos",
		Table:         "ticket_purchases",
		ProofTable:    "comprobantes_generales",
		ExtraField:    "tipo_boleto",
		ExtraRequired: true,
	},
	"vip": {
		Key:           "vip",
		Label:         "boletos VIP",
		Table:         "vip_purchases",
		ProofTable:    "comprobantes_vip",
		ExtraField:    "paquete",
		ExtraRequired: true,
	},
	"parking": {
		Key:           "parking",
		Label:         "estacionamiento",
		Table:         "parking_purchases",
		ProofTable:    "comprobantes_estacionamiento",
		ExtraField:    "placa",
		ExtraRequired: true,
	},
}

// LookupCategory returns the category registered under key.
func LookupCategory(key string) (Category, bool) {
	c, ok := categories[key]
	return c, ok
}

// Categories returns every category ordered by key.
func Categories() []Category {
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
