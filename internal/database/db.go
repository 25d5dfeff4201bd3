// Package database opens the process-wide connection pool and knows the
// small set of SQL differences between the supported engines.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB is the pooled handle shared by every repository. It is opened once at
// startup and closed on shutdown; nothing else holds a global reference.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// New wraps an existing pool. Tests use it with sqlmock.
func New(db *sql.DB, d Dialect) *DB {
	return &DB{DB: db, Dialect: d}
}

// Open connects using the named driver ("postgres" or "mysql") and verifies
// the connection.
func Open(driver, dsn string) (*DB, error) {
	if dsn == "" {
		return nil, errors.New("database: empty connection string")
	}
	d, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.DriverName, dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database: ping %s: %w", d.Name, err)
	}
	return &DB{DB: db, Dialect: d}, nil
}

// MySQLDSN builds a go-sql-driver DSN from discrete settings.
// parseTime=true maps DATETIME to time.Time and loc=UTC keeps times consistent.
// clientFoundRows makes an UPDATE that rewrites the same value still report
// the matched row.
func MySQLDSN(user, pass, host, port, name string) string {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC&clientFoundRows=true",
		auth, host, port, name)
}

// InsertID runs an INSERT written with '?' placeholders and returns the new
// primary key. Postgres has no LastInsertId, so the statement is extended
// with RETURNING id there.
func (db *DB) InsertID(ctx context.Context, query string, args ...any) (int64, error) {
	if db.Dialect.Returning {
		var id int64
		err := db.QueryRowContext(ctx, db.Dialect.Rebind(query)+" RETURNING id", args...).Scan(&id)
		return id, err
	}
	res, err := db.ExecContext(ctx, db.Dialect.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Exec runs a statement written with '?' placeholders.
func (db *DB) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.ExecContext(ctx, db.Dialect.Rebind(query), args...)
}

// Query runs a query written with '?' placeholders.
func (db *DB) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.QueryContext(ctx, db.Dialect.Rebind(query), args...)
}

// QueryRow runs a single-row query written with '?' placeholders.
func (db *DB) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return db.QueryRowContext(ctx, db.Dialect.Rebind(query), args...)
}
