package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/msto63/pnc/foundation/pn"
	"github.com/msto63/pnc/internal/history"
	"github.com/msto63/pnc/internal/tui/repl"
)

var (
	evalDump   bool
	evalLegacy bool
)

var evalCmd = &cobra.Command{
	Use:   "eval [expression]",
	Short: "Evaluate an expression",
	Long: `Evaluate an expression and print the rendered tree and the value.

With arguments, the arguments are joined by spaces and evaluated as one
expression. Without arguments, each non-blank line of stdin is evaluated;
when stdin is a terminal the interactive REPL starts instead.

Examples:
  pnc eval + 1 25
  pnc eval '(^ 3 2 1)'
  echo '- + 3 2 1' | pnc eval
  pnc eval --dump '(* 2 3)'`,
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().BoolVar(&evalDump, "dump", false, "print the tree structure")
	evalCmd.Flags().BoolVar(&evalLegacy, "legacy", false, "print -1000000 instead of \"error\" for rejected input")
}

func runEval(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	engine := newEngine()
	store := openHistory()
	defer closeHistory(store)

	if len(args) == 0 && isatty.IsTerminal(os.Stdin.Fd()) {
		return repl.Run(repl.Config{Engine: engine, Store: store, Logger: logger})
	}

	p := newPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())
	p.dump = evalDump
	p.legacy = evalLegacy

	if len(args) > 0 {
		return evalLines(ctx, engine, store, p, []string{strings.Join(args, " ")})
	}
	return evalReader(ctx, engine, store, p, cmd.InOrStdin(), appConfig.Parser.MaxInputLength)
}

// evalReader evaluates each non-blank line of r
func evalReader(ctx context.Context, engine *pn.Engine, store history.Store, p *printer, r io.Reader, maxLine int) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine+1)

	var lines []string
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	return evalLines(ctx, engine, store, p, lines)
}

// evalLines evaluates and prints each line. It fails if any line was rejected.
func evalLines(ctx context.Context, engine *pn.Engine, store history.Store, p *printer, lines []string) error {
	rejected := 0
	for _, line := range lines {
		res := engine.Evaluate(ctx, line)
		p.print(res)

		if store != nil {
			if err := store.Record(ctx, history.FromResult(history.SourceCLI, res)); err != nil {
				logger.WarnWithErr("Failed to record evaluation", err)
			}
		}
		if !res.OK {
			rejected++
		}
	}

	if rejected > 0 {
		return fmt.Errorf("%d of %d expressions rejected", rejected, len(lines))
	}
	return nil
}
