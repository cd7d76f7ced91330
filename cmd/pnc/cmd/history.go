package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	mdwstringx "github.com/msto63/pnc/foundation/utils/stringx"
	"github.com/msto63/pnc/internal/history"
)

var (
	historyLimit     int
	historySource    string
	historyErrors    bool
	historyJSON      bool
	historyOlderThan time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the evaluation history",
	Long: `Inspect the evaluation history.

History is recorded only when [history] enabled = true (or
PNC_HISTORY_ENABLED=true). The database lives at [history] path.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent evaluations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd, func(ctx context.Context, store history.Store) error {
			entries, err := store.List(ctx, history.Filter{
				Source:     history.Source(historySource),
				OnlyErrors: historyErrors,
				Limit:      historyLimit,
			})
			if err != nil {
				return err
			}
			return printEntries(cmd.OutOrStdout(), entries, historyJSON)
		})
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the evaluation history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd, func(ctx context.Context, store history.Store) error {
			stats, err := store.Stats(ctx)
			if err != nil {
				return err
			}
			return printStats(cmd.OutOrStdout(), stats, historyJSON)
		})
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old evaluations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd, func(ctx context.Context, store history.Store) error {
			deleted, err := store.Prune(ctx, historyOlderThan)
			if err != nil {
				return err
			}
			if err := store.Vacuum(ctx); err != nil {
				logger.WarnWithErr("Vacuum failed", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d entries deleted\n", deleted)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyStatsCmd, historyPruneCmd)

	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of entries")
	historyListCmd.Flags().StringVar(&historySource, "source", "", "only entries from cli, run, repl or server")
	historyListCmd.Flags().BoolVar(&historyErrors, "errors", false, "only rejected expressions")
	historyListCmd.Flags().BoolVar(&historyJSON, "json", false, "JSON output")
	historyStatsCmd.Flags().BoolVar(&historyJSON, "json", false, "JSON output")
	historyPruneCmd.Flags().DurationVar(&historyOlderThan, "older-than", 30*24*time.Hour, "delete entries older than this")
}

func withHistory(cmd *cobra.Command, fn func(ctx context.Context, store history.Store) error) error {
	if !appConfig.History.Enabled {
		fmt.Fprintln(cmd.ErrOrStderr(), "history is disabled; set [history] enabled = true")
		return nil
	}

	store, err := history.Open(appConfig.History)
	if err != nil {
		return err
	}
	defer closeHistory(store)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, store)
}

const inputColumn = 30

func printEntries(w io.Writer, entries []*history.Entry, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if entries == nil {
			entries = []*history.Entry{}
		}
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "no entries")
		return nil
	}

	for _, e := range entries {
		value := "error"
		if e.OK {
			value = fmt.Sprintf("%d", e.Value)
		}
		// Padding counts runes so non-ASCII input keeps the columns aligned
		input := mdwstringx.Truncate(mdwstringx.Compact(e.Input), inputColumn, "...")
		fmt.Fprintf(w, "%s  %-6s  %s  %-12s  %s\n",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.Source,
			mdwstringx.PadRight(input, inputColumn, ' '),
			value,
			mdwstringx.Truncate(e.AST, 40, "..."))
	}
	return nil
}

func printStats(w io.Writer, stats *history.Stats, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Fprintf(w, "Entries:  %d\n", stats.Total)
	fmt.Fprintf(w, "Rejected: %d\n", stats.Errors)
	if stats.Total > 0 {
		fmt.Fprintf(w, "First:    %s\n", stats.First.Local().Format(time.RFC3339))
		fmt.Fprintf(w, "Last:     %s\n", stats.Last.Local().Format(time.RFC3339))
	}
	for _, source := range []history.Source{history.SourceCLI, history.SourceRun, history.SourceREPL, history.SourceServer} {
		if n := stats.BySource[source]; n > 0 {
			fmt.Fprintf(w, "  %-6s  %d\n", source, n)
		}
	}
	return nil
}
