package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/valuesnet/internal/metrics"
	"github.com/danielpatrickdp/valuesnet/internal/network"
	"github.com/danielpatrickdp/valuesnet/internal/report"
	"github.com/danielpatrickdp/valuesnet/internal/validation"
)

func (a *app) analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [file]",
		Short: "Rank behaviours and values",
		Long: `Analyze scores the current version, or the given file without storing it,
and prints the top-leverage behaviours, fragile values and conflicted behaviours.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.runtime()
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())

			if len(args) == 1 {
				n, err := network.Load(args[0])
				if err != nil {
					return err
				}
				r, err := rt.svc.AnalyzeNetwork(cmd.Context(), n)
				if err != nil {
					return err
				}
				if a.jsonOut {
					return p.emit(r)
				}
				printAnalysis(p, r)
				return nil
			}

			run, err := rt.svc.Analyze(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOut {
				return p.emit(run)
			}
			p.hint("version %s, run %s", run.VersionID, shortID(run.RunID))
			printAnalysis(p, run.Outcome.Analysis)
			p.line("")
			p.line("%d warnings (%d active). See: valuesnet warnings",
				run.Outcome.Validation.Counts.Total, run.Outcome.Validation.Counts.Active)
			return nil
		},
	}
}

func (a *app) validateCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check the network for structural gaps",
		Long: `Validate runs the structural detectors over the current version, or over
the given file without storing it, using the stored snooze and dismiss marks.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := parseStatus(status)
			if err != nil {
				return err
			}
			rt, err := a.runtime()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			ws, err := rt.svc.WarningState(ctx)
			if err != nil {
				return err
			}

			var r validation.Result
			if len(args) == 1 {
				n, err := network.Load(args[0])
				if err != nil {
					return err
				}
				if r, err = rt.svc.ValidateNetwork(ctx, n, ws); err != nil {
					return err
				}
			} else if r, err = rt.svc.Validate(ctx); err != nil {
				return err
			}

			p := newPrinter(cmd.OutOrStdout())
			if a.jsonOut {
				return p.emit(r)
			}
			warnings := r.Warnings
			if st != "" {
				warnings = r.Filter(ws, rt.svc.Now(), st)
			}
			printWarnings(p, warnings)
			p.line("%d total: %d active, %d snoozed, %d dismissed",
				r.Counts.Total, r.Counts.Active, r.Counts.Snoozed, r.Counts.Dismissed)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only warnings in this status (active, snoozed, dismissed)")
	return cmd
}

func (a *app) reportCmd() *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a Markdown or JSON report of the current version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.jsonOut {
				format = "json"
			}
			if format != "markdown" && format != "json" {
				return fmt.Errorf("unknown format %q (want markdown or json)", format)
			}
			rt, err := a.runtime()
			if err != nil {
				return err
			}
			in, err := rt.svc.Report(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			if format == "json" {
				return newPrinter(w).emit(report.BuildSummary(in))
			}
			_, err = fmt.Fprint(w, report.Markdown(in))
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "markdown or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

// #region render

func printAnalysis(p *printer, r metrics.Report) {
	p.heading("Top leverage")
	if len(r.TopLeverage) == 0 {
		p.hint("No behaviours.")
	} else {
		rows := make([][]string, 0, len(r.TopLeverage))
		for _, e := range r.TopLeverage {
			rows = append(rows, []string{
				e.Behaviour.Label,
				strconv.FormatFloat(e.Metrics.LeverageScore, 'f', 2, 64),
				strconv.Itoa(e.Metrics.Coverage),
				joinValues(e.SupportedValues),
				joinValues(e.HarmedValues),
			})
		}
		p.table([]string{"BEHAVIOUR", "LEVERAGE", "COVERAGE", "SUPPORTS", "HARMS"}, rows)
	}

	p.heading("Fragile values")
	if len(r.FragileValues) == 0 {
		p.hint("None.")
	} else {
		rows := make([][]string, 0, len(r.FragileValues))
		for _, e := range r.FragileValues {
			rows = append(rows, []string{e.Value.Label, e.Metrics.FragilityScore.String(), joinBehaviours(e.Supporters)})
		}
		p.table([]string{"VALUE", "FRAGILITY", "SUPPORTED BY"}, rows)
	}

	p.heading("Conflicted behaviours")
	if len(r.ConflictBehaviours) == 0 {
		p.hint("None.")
		return
	}
	rows := make([][]string, 0, len(r.ConflictBehaviours))
	for _, e := range r.ConflictBehaviours {
		rows = append(rows, []string{
			e.Behaviour.Label,
			strconv.FormatFloat(e.Metrics.ConflictIndex, 'f', 2, 64),
			joinValues(e.SupportedValues),
			joinValues(e.HarmedValues),
		})
	}
	p.table([]string{"BEHAVIOUR", "CONFLICT", "SUPPORTS", "HARMS"}, rows)
}

func printWarnings(p *printer, ws []validation.Warning) {
	if len(ws) == 0 {
		p.hint("No warnings.")
		return
	}
	rows := make([][]string, 0, len(ws))
	for _, w := range ws {
		rows = append(rows, []string{p.severity(w.Severity), string(w.Type), w.NodeID, w.Message})
	}
	p.table([]string{"SEVERITY", "TYPE", "NODE", "MESSAGE"}, rows)
}

func joinValues(vs []network.Value) string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Label
	}
	return strings.Join(out, ", ")
}

func joinBehaviours(bs []network.Behaviour) string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = b.Label
	}
	return strings.Join(out, ", ")
}

func parseStatus(s string) (validation.Status, error) {
	switch st := validation.Status(s); st {
	case "", validation.StatusActive, validation.StatusSnoozed, validation.StatusDismissed:
		return st, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

// #endregion render
