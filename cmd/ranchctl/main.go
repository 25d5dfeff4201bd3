// Command ranchctl runs maintenance tasks against the Monkey Ranch database
// and message broker.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/monkey-ranch/internal/app"
	"github.com/iliyamo/monkey-ranch/internal/config"
	"github.com/iliyamo/monkey-ranch/internal/logger"
	"github.com/iliyamo/monkey-ranch/internal/schema"
)

// openDB is swapped in tests.
var openDB = app.OpenDB

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg config.Config
	root := &cobra.Command{
		Use:          "ranchctl",
		Short:        "Maintenance tasks for the Monkey Ranch site",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg = config.Load()
			return logger.Initialize(logger.Config{Debug: cfg.Debug, SentryDSN: cfg.SentryDSN})
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			logger.Sync(2 * time.Second)
		},
	}
	cfgFn := func() config.Config { return cfg }
	root.AddCommand(newSchemaCmd(cfgFn), newResetCmd(cfgFn), newConsumeCmd(cfgFn))
	return root
}

// printReport writes one line per table and fails when any table failed.
func printReport(cmd *cobra.Command, rep schema.Report) error {
	out := cmd.OutOrStdout()
	for _, t := range rep.Tables {
		switch {
		case t.Err != nil:
			fmt.Fprintf(out, "✗ %s: %v\n", t.Table, t.Err)
		case len(t.AddedColumns) > 0:
			fmt.Fprintf(out, "✓ %s (added: %v)\n", t.Table, t.AddedColumns)
		default:
			fmt.Fprintf(out, "✓ %s\n", t.Table)
		}
	}
	if failed := rep.Failed(); len(failed) > 0 {
		return fmt.Errorf("%d of %d tables failed", len(failed), len(rep.Tables))
	}
	return nil
}
