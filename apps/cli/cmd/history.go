package cmd

import (
	"fmt"
	"time"

	"github.com/restlabs/restcheck/packages/core/config"
	"github.com/restlabs/restcheck/packages/history"
	"github.com/spf13/cobra"
)

var (
	historyDBFlag    string
	historyLimitFlag int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent recorded runs",
	Long: `Show run summaries previously recorded with --record.

Examples:
  restcheck history --db .restcheck-history.db
  restcheck history --db .restcheck-history.db --limit 5`,
	RunE: historyCommand,
}

func init() {
	historyCmd.Flags().StringVar(&historyDBFlag, "db", getEnvString("RESTCHECK_HISTORY_DB", ""), "Path to the history database (env: RESTCHECK_HISTORY_DB)")
	historyCmd.Flags().IntVar(&historyLimitFlag, "limit", 20, "Maximum number of runs to show")
}

func historyCommand(cmd *cobra.Command, args []string) error {
	dbPath := historyDBFlag
	if dbPath == "" {
		fileConfig, _ := config.LoadConfig("")
		dbPath = fileConfig.HistoryDB
	}
	if dbPath == "" {
		return fmt.Errorf("no history database configured (use --db or historyDb in restcheck.yaml)")
	}

	store, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Recent(historyLimitFlag)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No recorded runs.")
		return nil
	}

	for _, r := range runs {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-30s  %d passed, %d failed, %d skipped  %dms  %s\n",
			r.CreatedAt.Local().Format(time.RFC3339),
			r.File, r.Passed, r.Failed, r.Skipped,
			r.Duration.Milliseconds(), r.ID)
	}

	return nil
}
