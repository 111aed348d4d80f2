// Package cli provides the valuesnet command-line interface.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/valuesnet/internal/config"
)

// app carries global flags and the lazily-opened runtime across a single invocation.
type app struct {
	version    string
	configPath string
	jsonOut    bool
	verbose    bool

	cfg      config.Config
	logger   *slog.Logger
	closeLog func() error
	rt       *runtime
}

// Execute runs the CLI with os.Args and releases the database and log file afterwards,
// whether or not the command failed.
func Execute(ctx context.Context, version string) error {
	root, a := newRoot(version)
	err := root.ExecuteContext(ctx)
	if cerr := a.teardown(); err == nil {
		err = cerr
	}
	return err
}

// newRoot builds the command tree. Each call returns an independent tree.
func newRoot(version string) (*cobra.Command, *app) {
	a := &app{version: version}

	root := &cobra.Command{
		Use:   "valuesnet",
		Short: "Analyze behaviour, outcome and value networks",
		Long: `valuesnet scores how behaviours reach values through outcomes.

It ranks high-leverage behaviours, flags fragile values and conflicted
behaviours, and warns about structural gaps in the network. Networks are
stored as versioned snapshots in a local SQLite database.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default ./valuesnet.yaml)")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "print JSON instead of tables")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		a.importCmd(),
		a.analyzeCmd(),
		a.validateCmd(),
		a.reportCmd(),
		a.warningsCmd(),
		a.historyCmd(),
		a.runsCmd(),
		a.rollbackCmd(),
		a.watchCmd(),
		a.serveCmd(),
		a.versionCmd(),
	)
	return root, a
}

// setup loads config and the logger. The database is opened on first use.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" || cmd.Name() == "help" {
		return nil
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	a.cfg = cfg
	a.logger, a.closeLog = config.SetupLogger(cfg.Log)
	return nil
}

// teardown is safe to call more than once.
func (a *app) teardown() error {
	var firstErr error
	if a.rt != nil {
		if err := a.rt.close(); err != nil {
			firstErr = fmt.Errorf("close database: %w", err)
		}
		a.rt = nil
	}
	if a.closeLog != nil {
		if err := a.closeLog(); err != nil && firstErr == nil {
			firstErr = err
		}
		a.closeLog = nil
	}
	return firstErr
}

func (a *app) runtime() (*runtime, error) {
	if a.rt != nil {
		return a.rt, nil
	}
	rt, err := openRuntime(a.cfg, a.logger)
	if err != nil {
		return nil, err
	}
	a.rt = rt
	return rt, nil
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "valuesnet %s\n", a.version)
		},
	}
}
