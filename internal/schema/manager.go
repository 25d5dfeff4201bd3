// Package schema keeps the database structure in step with the code. It only
// ever adds: tables are created when absent and later columns are added when
// absent. Nothing is dropped or narrowed automatically.
package schema

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/monkey-ranch/internal/database"
	"github.com/iliyamo/monkey-ranch/internal/logger"
)

// TableResult is the outcome for one table. A non-nil Err is a soft failure:
// it is reported and logged but does not stop the remaining tables.
type TableResult struct {
	Table        string
	AddedColumns []string
	Err          error
}

// Report collects per-table results of a best-effort schema pass.
type Report struct {
	Tables []TableResult
}

// Failed returns the tables that could not be processed.
func (r Report) Failed() []TableResult {
	var out []TableResult
	for _, t := range r.Tables {
		if t.Err != nil {
			out = append(out, t)
		}
	}
	return out
}

// OK reports whether every table succeeded.
func (r Report) OK() bool { return len(r.Failed()) == 0 }

// Ensure creates missing tables and columns. It never returns early: each
// table is attempted even when an earlier one failed.
func Ensure(ctx context.Context, db *database.DB) Report {
	var rep Report
	for _, t := range Tables() {
		res := ensureTable(ctx, db, t)
		if res.Err != nil {
			logger.Error(res.Err, zap.String("table", t.Name))
		} else {
			logger.Info("table ready", zap.String("table", t.Name), zap.Strings("added_columns", res.AddedColumns))
		}
		rep.Tables = append(rep.Tables, res)
	}
	return rep
}

func ensureTable(ctx context.Context, db *database.DB, t Table) TableResult {
	res := TableResult{Table: t.Name}
	if _, err := db.ExecContext(ctx, t.Create(db.Dialect)); err != nil {
		res.Err = fmt.Errorf("create table %s: %w", t.Name, err)
		return res
	}
	for _, c := range t.Added {
		exists, err := ColumnExists(ctx, db, t.Name, c.Name)
		if err != nil {
			res.Err = fmt.Errorf("inspect %s.%s: %w", t.Name, c.Name, err)
			return res
		}
		if exists {
			continue
		}
		if _, err := db.ExecContext(ctx, db.Dialect.AddColumn(t.Name, c.Name, c.Def)); err != nil {
			res.Err = fmt.Errorf("add column %s.%s: %w", t.Name, c.Name, err)
			return res
		}
		res.AddedColumns = append(res.AddedColumns, c.Name)
	}
	return res
}

// ColumnExists looks the column up in information_schema for the current
// schema.
func ColumnExists(ctx context.Context, db *database.DB, table, column string) (bool, error) {
	q := `SELECT COUNT(*) FROM information_schema.columns
	      WHERE table_schema = ` + db.Dialect.CurrentSchema + ` AND table_name = ? AND column_name = ?`
	var n int
	if err := db.QueryRow(ctx, q, table, column).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
