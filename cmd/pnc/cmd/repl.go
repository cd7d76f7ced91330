package cmd

import (
	"github.com/spf13/cobra"

	"github.com/msto63/pnc/internal/tui/repl"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the interactive evaluator",
	Long: `Start the interactive evaluator.

Navigation:
  Enter       evaluate the line
  Up/Down     recall earlier lines
  PgUp/PgDn   scroll the results
  Ctrl+L      clear the results
  Ctrl+C      quit`,
	Args: cobra.NoArgs,
	RunE: runREPL,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runREPL(cmd *cobra.Command, args []string) error {
	store := openHistory()
	defer closeHistory(store)

	return repl.Run(repl.Config{
		Engine: newEngine(),
		Store:  store,
		Logger: logger,
	})
}
