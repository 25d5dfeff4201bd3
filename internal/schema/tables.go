package schema

import (
	"fmt"
	"strings"

	"github.com/iliyamo/monkey-ranch/internal/database"
	"github.com/iliyamo/monkey-ranch/internal/model"
)

// Column is a column definition without the dialect-specific primary key
// and timestamp columns, which every table gets.
type Column struct {
	Name string
	Def  string
}

// Table lists the columns of the first release in Columns; Added holds the
// columns introduced later, which are ensured one by one on every start.
type Table struct {
	Name      string
	Timestamp string // name of the creation-time column
	Columns   []Column
	Added     []Column
}

// Create renders the CREATE TABLE IF NOT EXISTS statement for d. Added
// columns are included so a fresh database needs no ALTER.
func (t Table) Create(d database.Dialect) string {
	defs := []string{d.PrimaryKey}
	for _, c := range t.Columns {
		defs = append(defs, c.Name+" "+c.Def)
	}
	for _, c := range t.Added {
		defs = append(defs, c.Name+" "+c.Def)
	}
	defs = append(defs, t.Timestamp+" "+d.Timestamp)
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", t.Name, strings.Join(defs, ",\n\t"))
}

const (
	text    = "TEXT"
	short   = "VARCHAR(255)"
	integer = "INTEGER"
	money   = "DECIMAL(10,2)"
)

func required(def string) string { return def + " NOT NULL" }

// Tables returns every table the site writes to, in creation order.
func Tables() []Table {
	tables := []Table{
		{
			Name:      "contacts",
			Timestamp: "fecha_creacion",
			Columns: []Column{
				{"nombre", required(short)},
				{"email", required(short)},
				{"telefono", short},
				{"mensaje", required(text)},
			},
			Added: []Column{
				{"instagram", short},
				{"facebook", short},
			},
		},
		{
			Name:      "vip_registrations",
			Timestamp: "fecha_creacion",
			Columns: []Column{
				{"nombre", required(short)},
				{"email", required(short)},
				{"contacto", required(short)},
				{"boletos", required(short)},
			},
		},
		{
			Name:      "inscriptions",
			Timestamp: "fecha_creacion",
			Columns: []Column{
				{"nombre", required(short)},
				{"email", required(short)},
				{"telefono", required(short)},
				{"edad", integer},
				{"numero_vehiculo", required(short)},
				{"licencia", required(short)},
			},
			Added: []Column{
				{"categoria", short},
			},
		},
	}
	for _, c := range model.Categories() {
		tables = append(tables, PurchaseTable(c), ProofTable(c))
	}
	return tables
}

// PurchaseTable is the table holding purchases of category c.
func PurchaseTable(c model.Category) Table {
	return Table{
		Name:      c.Table,
		Timestamp: "fecha_creacion",
		Columns: []Column{
			{"nombre", required(short)},
			{"email", required(short)},
			{"telefono", required(short)},
			{"cantidad", required(integer)},
			{"fecha_evento", required(short)},
			{c.ExtraField, short},
			{"precio", money},
		},
		Added: []Column{
			{"total", money},
			{"comprobante", text},
		},
	}
}

// ProofTable is the audit table for proofs uploaded against category c.
func ProofTable(c model.Category) Table {
	return Table{
		Name:      c.ProofTable,
		Timestamp: "fecha_subida",
		Columns: []Column{
			{"nombre", required(short)},
			{"email", required(short)},
			{"telefono", short},
			{"cantidad", integer},
			{"fecha_evento", short},
			{c.ExtraField, short},
			{"total", money},
			{"comprobante", required(text)},
		},
		Added: []Column{
			{"compra_id", "BIGINT"},
		},
	}
}

// FormTables are the tables emptied by Reset.
func FormTables() []string {
	names := []string{"contacts", "vip_registrations", "inscriptions"}
	for _, c := range model.Categories() {
		names = append(names, c.Table)
	}
	return names
}

// ProofColumnTables are the tables carrying a comprobante column.
func ProofColumnTables() []string {
	var names []string
	for _, c := range model.Categories() {
		names = append(names, c.Table)
	}
	for _, c := range model.Categories() {
		names = append(names, c.ProofTable)
	}
	return names
}
