package schema

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/monkey-ranch/internal/database"
	"github.com/iliyamo/monkey-ranch/internal/logger"
)

// ColumnInfo is one row of information_schema.columns.
type ColumnInfo struct {
	Name     string
	DataType string
}

// Columns lists a table's columns in ordinal order.
func Columns(ctx context.Context, db *database.DB, table string) ([]ColumnInfo, error) {
	q := `SELECT column_name, data_type FROM information_schema.columns
	      WHERE table_schema = ` + db.Dialect.CurrentSchema + ` AND table_name = ?
	      ORDER BY ordinal_position`
	rows, err := db.Query(ctx, q, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ColumnInfo
	for rows.Next() {
		var c ColumnInfo
		if err := rows.Scan(&c.Name, &c.DataType); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// FixProofColumn makes sure every comprobante column is TEXT. Early releases
// created it with narrower types; the column is converted in place, or added
// when it is missing. Tables are processed independently.
func FixProofColumn(ctx context.Context, db *database.DB) Report {
	var rep Report
	for _, table := range ProofColumnTables() {
		res := TableResult{Table: table}
		exists, err := ColumnExists(ctx, db, table, "comprobante")
		switch {
		case err != nil:
			res.Err = fmt.Errorf("inspect %s: %w", table, err)
		case exists:
			if _, err := db.ExecContext(ctx, db.Dialect.AlterColumnType(table, "comprobante", "TEXT")); err != nil {
				res.Err = fmt.Errorf("alter %s.comprobante: %w", table, err)
			}
		default:
			if _, err := db.ExecContext(ctx, db.Dialect.AddColumn(table, "comprobante", "TEXT")); err != nil {
				res.Err = fmt.Errorf("add %s.comprobante: %w", table, err)
			} else {
				res.AddedColumns = []string{"comprobante"}
			}
		}
		if res.Err != nil {
			logger.Warn("fix proof column failed", zap.String("table", table), zap.Error(res.Err))
		}
		rep.Tables = append(rep.Tables, res)
	}
	return rep
}

// Reset empties the form tables while keeping their structure. Proof audit
// tables are only emptied when includeProofs is set.
func Reset(ctx context.Context, db *database.DB, includeProofs bool) Report {
	tables := FormTables()
	if includeProofs {
		for _, t := range ProofColumnTables() {
			if !contains(tables, t) {
				tables = append(tables, t)
			}
		}
	}
	var rep Report
	for _, table := range tables {
		res := TableResult{Table: table}
		if _, err := db.ExecContext(ctx, db.Dialect.Truncate(table)); err != nil {
			res.Err = fmt.Errorf("truncate %s: %w", table, err)
			logger.Warn("reset failed", zap.String("table", table), zap.Error(res.Err))
		}
		rep.Tables = append(rep.Tables, res)
	}
	return rep
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
