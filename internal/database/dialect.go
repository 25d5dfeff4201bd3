package database

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect captures the statements that differ between Postgres and MySQL.
// Queries elsewhere are written once with '?' placeholders.
type Dialect struct {
	Name       string
	DriverName string
	Returning  bool // INSERT ... RETURNING id instead of LastInsertId
	Dollar     bool // $1, $2 placeholders

	// PrimaryKey is the column definition for an auto-increment id.
	PrimaryKey string
	// Timestamp is the definition of a creation-time column.
	Timestamp string
	// CurrentSchema is the SQL expression naming the active schema, used to
	// scope information_schema lookups.
	CurrentSchema string
}

var (
	Postgres = Dialect{
		Name:          "postgres",
		DriverName:    "pgx",
		Returning:     true,
		Dollar:        true,
		PrimaryKey:    "id SERIAL PRIMARY KEY",
		Timestamp:     "TIMESTAMP(3) NOT NULL DEFAULT CURRENT_TIMESTAMP",
		CurrentSchema: "current_schema()",
	}
	MySQL = Dialect{
		Name:          "mysql",
		DriverName:    "mysql",
		PrimaryKey:    "id BIGINT AUTO_INCREMENT PRIMARY KEY",
		Timestamp:     "TIMESTAMP(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3)",
		CurrentSchema: "DATABASE()",
	}
)

// DialectFor maps a DB_DRIVER value to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "postgres", "postgresql", "pgx":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	}
	return Dialect{}, fmt.Errorf("database: unsupported driver %q", driver)
}

// Rebind rewrites '?' placeholders to the dialect's native form. Question
// marks inside single-quoted literals are left alone.
func (d Dialect) Rebind(q string) string {
	if !d.Dollar || !strings.Contains(q, "?") {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(q); i++ {
		ch := q[i]
		switch {
		case ch == '\'':
			inQuote = !inQuote
			b.WriteByte(ch)
		case ch == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// Truncate empties a table keeping its structure.
func (d Dialect) Truncate(table string) string {
	if d.Name == "postgres" {
		return fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)
	}
	return fmt.Sprintf("TRUNCATE TABLE %s", table)
}

// AlterColumnType changes the type of an existing column.
func (d Dialect) AlterColumnType(table, column, typ string) string {
	if d.Name == "postgres" {
		return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s", table, column, typ)
	}
	return fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s %s", table, column, typ)
}

// AddColumn appends a column to an existing table.
func (d Dialect) AddColumn(table, column, def string) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, def)
}
