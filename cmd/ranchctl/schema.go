package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/monkey-ranch/internal/config"
	"github.com/iliyamo/monkey-ranch/internal/schema"
)

func newSchemaCmd(cfg func() config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect and repair the database schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "check",
			Short: "Print the columns of every purchase and proof table",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				db, err := openDB(cfg())
				if err != nil {
					return err
				}
				defer db.Close()

				out := cmd.OutOrStdout()
				for _, table := range schema.ProofColumnTables() {
					cols, err := schema.Columns(cmd.Context(), db, table)
					if err != nil {
						return fmt.Errorf("columns of %s: %w", table, err)
					}
					fmt.Fprintf(out, "%s:\n", table)
					if len(cols) == 0 {
						fmt.Fprintln(out, "  (table missing)")
					}
					for _, c := range cols {
						fmt.Fprintf(out, "  - %s: %s\n", c.Name, c.DataType)
					}
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "fix-proof-column",
			Short: "Convert every comprobante column to TEXT, adding it where missing",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				db, err := openDB(cfg())
				if err != nil {
					return err
				}
				defer db.Close()
				return printReport(cmd, schema.FixProofColumn(cmd.Context(), db))
			},
		},
		&cobra.Command{
			Use:   "ensure",
			Short: "Create missing tables and columns",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				db, err := openDB(cfg())
				if err != nil {
					return err
				}
				defer db.Close()
				return printReport(cmd, schema.Ensure(cmd.Context(), db))
			},
		},
	)
	return cmd
}
