package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/iliyamo/monkey-ranch/internal/config"
	"github.com/iliyamo/monkey-ranch/internal/schema"
)

var errNotConfirmed = errors.New("refusing to delete data without --yes")

func newResetCmd(cfg func() config.Config) *cobra.Command {
	var yes, includeProofs bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every form submission, keeping the tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errNotConfirmed
			}
			db, err := openDB(cfg())
			if err != nil {
				return err
			}
			defer db.Close()
			return printReport(cmd, schema.Reset(cmd.Context(), db, includeProofs))
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	cmd.Flags().BoolVar(&includeProofs, "include-proofs", false, "also empty the proof audit tables")
	return cmd
}
