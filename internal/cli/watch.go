package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/valuesnet/internal/network"
	"github.com/danielpatrickdp/valuesnet/internal/watch"
)

func (a *app) watchCmd() *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Import and re-analyze a network file whenever it changes",
		Long: `Watch imports the file, analyzes it, and repeats on every save until interrupted.
A save that fails to parse or validate is reported and the stored version is kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.runtime()
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())

			handler := func(ctx context.Context, n network.Network) error {
				rec, created, err := rt.svc.Import(ctx, n, "watch "+args[0])
				if err != nil {
					return err
				}
				if !created {
					return nil
				}
				run, err := rt.svc.Analyze(ctx)
				if err != nil {
					return err
				}
				if a.jsonOut {
					return p.emit(run)
				}
				p.heading("Version " + rec.VersionID)
				printAnalysis(p, run.Outcome.Analysis)
				p.line("%d warnings (%d active)", run.Outcome.Validation.Counts.Total, run.Outcome.Validation.Counts.Active)
				return nil
			}
			w, err := watch.New(args[0], handler, watch.Options{
				Debounce: debounce,
				Logger:   a.logger,
				OnError: func(path string, err error) {
					p.line("%s: %v", path, err)
				},
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return w.Run(ctx)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before reloading")
	return cmd
}
