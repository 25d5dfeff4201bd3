// Package repository contains the SQL access layer. Repositories receive the
// shared *database.DB handle at construction and write every query once with
// '?' placeholders; the dialect rewrites them for Postgres.
package repository

import "errors"

// ErrNotFound is returned when a lookup or update matches no row.
var ErrNotFound = errors.New("not found")
