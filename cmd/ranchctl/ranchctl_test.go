package main

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/monkey-ranch/internal/config"
	"github.com/iliyamo/monkey-ranch/internal/database"
	"github.com/iliyamo/monkey-ranch/internal/schema"
)

func withMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	prev := openDB
	openDB = func(config.Config) (*database.DB, error) { return database.New(sqlDB, database.Postgres), nil }
	t.Cleanup(func() { openDB = prev })
	return mock
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://unused")
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	err := cmd.Execute()
	return out.String(), err
}

func TestResetRequiresConfirmation(t *testing.T) {
	opened := false
	prev := openDB
	openDB = func(config.Config) (*database.DB, error) { opened = true; return nil, errors.New("unreachable") }
	t.Cleanup(func() { openDB = prev })

	_, err := run(t, "reset")
	require.ErrorIs(t, err, errNotConfirmed)
	assert.False(t, opened)
}

func TestResetTruncatesFormTables(t *testing.T) {
	mock := withMockDB(t)
	for _, table := range schema.FormTables() {
		mock.ExpectExec("TRUNCATE TABLE " + table + " CASCADE").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	out, err := run(t, "reset", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ contacts")
	assert.Contains(t, out, "✓ ticket_purchases")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetReportsFailedTable(t *testing.T) {
	mock := withMockDB(t)
	for i, table := range schema.FormTables() {
		e := mock.ExpectExec("TRUNCATE TABLE " + table + " CASCADE")
		if i == 0 {
			e.WillReturnError(errors.New("permission denied"))
			continue
		}
		e.WillReturnResult(sqlmock.NewResult(0, 0))
	}

	out, err := run(t, "reset", "--yes")
	require.Error(t, err)
	assert.Contains(t, out, "✗ contacts")
	assert.Contains(t, out, "✓ vip_registrations")
}

func TestSchemaCheckPrintsColumns(t *testing.T) {
	mock := withMockDB(t)
	for i, table := range schema.ProofColumnTables() {
		rows := sqlmock.NewRows([]string{"column_name", "data_type"})
		if i == 0 {
			rows.AddRow("id", "integer").AddRow("comprobante", "text")
		}
		mock.ExpectQuery("SELECT column_name, data_type FROM information_schema.columns").
			WithArgs(table).WillReturnRows(rows)
	}

	out, err := run(t, "schema", "check")
	require.NoError(t, err)
	first := schema.ProofColumnTables()[0]
	assert.Contains(t, out, first+":\n  - id: integer\n  - comprobante: text\n")
	assert.Contains(t, out, "(table missing)")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeNeedsBroker(t *testing.T) {
	t.Setenv("RABBITMQ_URL", "")
	_, err := run(t, "consume")
	assert.EqualError(t, err, "RABBITMQ_URL is not set")
}
