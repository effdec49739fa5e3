package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cipherkit/internal/storage"
)

var (
	historyLimit int
	historyYes   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the operation journal",
	Long: `Show recently journaled operations.

The journal records the algorithm, operation, front end, input digest
and lengths of every cipher call. It never stores text or keys.

Examples:
  cipherkit history             # Last history.limit entries
  cipherkit history -n 10
  cipherkit history stats
  cipherkit history clear --yes`,
	RunE: runHistoryList,
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count journaled runs per algorithm",
	RunE:  runHistoryStats,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every journal entry",
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "Number of entries (default from history.limit)")
	historyClearCmd.Flags().BoolVar(&historyYes, "yes", false, "Confirm deletion")

	historyCmd.AddCommand(historyStatsCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

// requireHistory opens the journal or explains why there is none.
func requireHistory() (*storage.DB, error) {
	if !cfg.History.Enabled {
		return nil, fmt.Errorf("history is disabled (history.enabled = false)")
	}
	db, err := openHistory()
	if err != nil {
		return nil, err
	}
	if db == nil {
		return nil, fmt.Errorf("history is disabled for this run (--no-history)")
	}
	return db, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	db, err := requireHistory()
	if err != nil {
		return err
	}

	limit := historyLimit
	if limit <= 0 {
		limit = cfg.History.Limit
	}
	entries, err := db.List(newContext(), limit)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), &HistoryResponseCLI{Path: db.Path(), Entries: entries})
}

func runHistoryStats(cmd *cobra.Command, args []string) error {
	db, err := requireHistory()
	if err != nil {
		return err
	}

	stats, err := db.Stats(newContext())
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), &StatsResponseCLI{Path: db.Path(), Stats: stats})
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	if !historyYes {
		return fmt.Errorf("refusing to clear history without --yes")
	}
	db, err := requireHistory()
	if err != nil {
		return err
	}

	n, err := db.Clear(newContext())
	if err != nil {
		return err
	}
	logger.Info("History cleared", "entries", n)
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d entries from %s\n", n, db.Path())
	return err
}
