package schema

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/monkey-ranch/internal/database"
)

const columnCount = `SELECT COUNT\(\*\) FROM information_schema.columns`

func newMock(t *testing.T) (*database.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return database.New(db, database.Postgres), mock
}

// expectTable queues the statements Ensure issues for t when every added
// column reports the given existence.
func expectTable(mock sqlmock.Sqlmock, t Table, columnsExist bool) {
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS " + t.Name + " ").WillReturnResult(sqlmock.NewResult(0, 0))
	for _, c := range t.Added {
		n := 0
		if columnsExist {
			n = 1
		}
		mock.ExpectQuery(columnCount).
			WithArgs(t.Name, c.Name).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(n))
		if !columnsExist {
			mock.ExpectExec(regexp.QuoteMeta("ALTER TABLE " + t.Name + " ADD COLUMN " + c.Name + " ")).
				WillReturnResult(sqlmock.NewResult(0, 0))
		}
	}
}

func TestEnsureTwiceAddsColumnsOnce(t *testing.T) {
	db, mock := newMock(t)

	for _, tbl := range Tables() {
		expectTable(mock, tbl, false)
	}
	first := Ensure(context.Background(), db)
	require.True(t, first.OK())

	for _, tbl := range Tables() {
		expectTable(mock, tbl, true)
	}
	second := Ensure(context.Background(), db)
	require.True(t, second.OK())

	var addedFirst, addedSecond int
	for i := range first.Tables {
		addedFirst += len(first.Tables[i].AddedColumns)
		addedSecond += len(second.Tables[i].AddedColumns)
	}
	assert.Greater(t, addedFirst, 0)
	assert.Zero(t, addedSecond)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureContinuesAfterFailedTable(t *testing.T) {
	db, mock := newMock(t)

	tables := Tables()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS " + tables[0].Name + " ").
		WillReturnError(errors.New("permission denied"))
	for _, tbl := range tables[1:] {
		expectTable(mock, tbl, true)
	}

	rep := Ensure(context.Background(), db)
	require.Len(t, rep.Tables, len(tables))
	failed := rep.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "contacts", failed[0].Table)
	assert.False(t, rep.OK())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateStatementPerDialect(t *testing.T) {
	tbl := Tables()[0]

	pg := tbl.Create(database.Postgres)
	assert.True(t, strings.HasPrefix(pg, "CREATE TABLE IF NOT EXISTS contacts"))
	assert.Contains(t, pg, "id SERIAL PRIMARY KEY")
	assert.Contains(t, pg, "instagram VARCHAR(255)")
	assert.Contains(t, pg, "fecha_creacion TIMESTAMP(3) NOT NULL DEFAULT CURRENT_TIMESTAMP")

	my := tbl.Create(database.MySQL)
	assert.Contains(t, my, "id BIGINT AUTO_INCREMENT PRIMARY KEY")
	assert.Contains(t, my, "CURRENT_TIMESTAMP(3)")
}

func TestTablesCoverEveryCategory(t *testing.T) {
	names := map[string]bool{}
	for _, tbl := range Tables() {
		names[tbl.Name] = true
	}
	for _, want := range []string{
		"contacts", "vip_registrations", "inscriptions",
		"ticket_purchases", "vip_purchases", "parking_purchases",
		"comprobantes_generales", "comprobantes_vip", "comprobantes_estacionamiento",
	} {
		assert.True(t, names[want], want)
	}
}
