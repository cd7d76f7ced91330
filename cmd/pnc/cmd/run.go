package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	mdwerror "github.com/msto63/pnc/foundation/core/error"
	"github.com/msto63/pnc/foundation/pn"
	mdwstringx "github.com/msto63/pnc/foundation/utils/stringx"
	"github.com/msto63/pnc/internal/history"
	"github.com/msto63/pnc/internal/watch"
)

var (
	runInput  string
	runOutput string
	runWatch  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Evaluate the input file and append the result to the output file",
	Long: `Read the whole input file as one expression, evaluate it and append two
quoted lines to the output file: the value, then the rendered tree.

Rejected input is written as value "-1000000" and tree "error".

The file names default to [run] input/output in the configuration
("input" and "output" in the working directory). With --watch the input
file is evaluated again after every change until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runInput, "input", "i", "", "input file (overrides [run] input)")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "output file (overrides [run] output)")
	runCmd.Flags().BoolVarP(&runWatch, "watch", "w", false, "evaluate again whenever the input file changes")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	input := mdwstringx.FirstNonBlank(runInput, appConfig.Run.Input)
	output := mdwstringx.FirstNonBlank(runOutput, appConfig.Run.Output)

	store := openHistory()
	defer closeHistory(store)

	engine := newEngine()
	_, err := runDriver(ctx, engine, store, input, output)
	if !runWatch {
		return err
	}
	if err != nil {
		// The file may appear later
		logger.LogError(err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := watch.New(input, watch.Options{Logger: logger})
	return w.Run(ctx, func() {
		res, err := runDriver(ctx, engine, store, input, output)
		if err != nil {
			logger.LogError(err)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s => %s\n", res.AST, res.ValueText())
	})
}

// runDriver evaluates the contents of inputPath and appends the quoted value
// and tree to outputPath. A rejected expression is not an error here; the
// poison value is written instead.
func runDriver(ctx context.Context, engine *pn.Engine, store history.Store, inputPath, outputPath string) (*pn.Result, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		code := mdwerror.CodeIO
		if errors.Is(err, fs.ErrNotExist) {
			code = mdwerror.CodeNotFound
		}
		return nil, mdwerror.Wrap(err, "failed to read input file").
			WithCode(code).
			WithOperation("run.ReadInput").
			WithDetail("path", inputPath)
	}

	res := engine.Evaluate(ctx, string(data))

	if store != nil {
		if err := store.Record(ctx, history.FromResult(history.SourceRun, res)); err != nil {
			logger.WarnWithErr("Failed to record evaluation", err)
		}
	}

	if err := appendResult(outputPath, res); err != nil {
		return res, err
	}
	return res, nil
}

func appendResult(path string, res *pn.Result) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return mdwerror.Wrap(err, "unable to open output file").
			WithCode(mdwerror.CodeIO).
			WithOperation("run.WriteOutput").
			WithDetail("path", path)
	}

	w := bufio.NewWriter(f)
	value := strconv.FormatInt(int64(res.LegacyValue()), 10)
	fmt.Fprintf(w, "%q\n%q\n", value, res.AST)

	if err := w.Flush(); err != nil {
		f.Close()
		return mdwerror.Wrap(err, "unable to write output file").
			WithCode(mdwerror.CodeIO).
			WithOperation("run.WriteOutput").
			WithDetail("path", path)
	}
	if err := f.Close(); err != nil {
		return mdwerror.Wrap(err, "unable to close output file").
			WithCode(mdwerror.CodeIO).
			WithOperation("run.WriteOutput").
			WithDetail("path", path)
	}
	return nil
}
