package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mdwconfig "github.com/msto63/pnc/foundation/core/config"
	mdwlog "github.com/msto63/pnc/foundation/core/log"
	"github.com/msto63/pnc/foundation/pn"
	"github.com/msto63/pnc/internal/history"
	"github.com/msto63/pnc/pkg/core/logging"
)

var (
	cfgFile string
	verbose bool

	appConfig *mdwconfig.Config
	logger    *mdwlog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pnc",
	Short: "pnc - Polish notation calculator",
	Long: `pnc parses and evaluates integer arithmetic written in Polish (prefix)
notation.

  + 1 2          bare operators take exactly two operands   -> 3
  (* 2 3 4)      parenthesized operators take one or more    -> 24
  (^ 2 3 2)      exponentiation folds to the right           -> 512
  (- 5)          unary minus is (- 0 5)                      -> -5

Arithmetic is 32-bit signed with wraparound.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./pnc.toml, then the user config dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// setup loads the configuration and installs the default logger
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := mdwconfig.Discover(cfgFile)
	if err != nil {
		return err
	}
	if verbose {
		cfg.General.LogLevel = "debug"
	}

	appConfig = cfg
	logger = logging.NewLogger(logging.FromConfig("pnc", cfg))
	mdwlog.SetDefault(logger)

	if path := cfg.FilePath(); path != "" {
		logger.Debug("Configuration loaded", mdwlog.Fields{"path": path})
	}
	return nil
}

func newEngine() *pn.Engine {
	return pn.New(pn.Options{
		Logger:          logger,
		MaxDepth:        appConfig.Parser.MaxDepth,
		MaxInputLength:  appConfig.Parser.MaxInputLength,
		LegacyUnaryMult: appConfig.Parser.LegacyUnaryMult,
	})
}

// openHistory returns nil when history is disabled or cannot be opened;
// evaluation never depends on it.
func openHistory() history.Store {
	if !appConfig.History.Enabled {
		return nil
	}
	store, err := history.Open(appConfig.History)
	if err != nil {
		logger.LogError(err)
		return nil
	}
	return store
}

func closeHistory(store history.Store) {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		logger.WarnWithErr("Failed to close history", err)
	}
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}
