package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/valuesnet/internal/service"
)

func (a *app) warningsCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "warnings",
		Short: "List warnings on the current version and manage their state",
		Long: `Warnings lists the structural warnings on the current version.

Subcommands snooze, dismiss or restore the warnings attached to a node.

Examples:
  valuesnet warnings
  valuesnet warnings --status snoozed
  valuesnet warnings snooze v-health --for 72h
  valuesnet warnings dismiss b-scroll`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := parseStatus(status)
			if err != nil {
				return err
			}
			rt, err := a.runtime()
			if err != nil {
				return err
			}
			out, err := rt.svc.Warnings(cmd.Context(), st)
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())
			if a.jsonOut {
				return p.emit(out)
			}
			printWarnings(p, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "active, snoozed or dismissed (default all)")

	cmd.AddCommand(a.snoozeCmd(), a.nodeStateCmd("unsnooze", "Clear a snooze", (*service.Service).Unsnooze),
		a.nodeStateCmd("dismiss", "Dismiss a node's warnings", (*service.Service).Dismiss),
		a.nodeStateCmd("undismiss", "Restore a node's dismissed warnings", (*service.Service).Undismiss),
		a.pruneCmd())
	return cmd
}

func (a *app) snoozeCmd() *cobra.Command {
	var duration time.Duration
	var until string
	cmd := &cobra.Command{
		Use:   "snooze <node-id>",
		Short: "Hide a node's warnings for a while",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.runtime()
			if err != nil {
				return err
			}
			var end time.Time
			switch {
			case until != "":
				if end, err = time.Parse(time.RFC3339, until); err != nil {
					return fmt.Errorf("parse --until: %w", err)
				}
			case duration > 0:
				end = rt.svc.Now().Add(duration)
			}
			end, err = rt.svc.Snooze(cmd.Context(), args[0], end)
			if err != nil {
				return err
			}
			newPrinter(cmd.OutOrStdout()).success("Snoozed %s until %s", args[0], end.Local().Format(time.DateTime))
			return nil
		},
	}
	cmd.Flags().DurationVar(&duration, "for", 0, "snooze length (default from config)")
	cmd.Flags().StringVar(&until, "until", "", "snooze end as RFC 3339")
	cmd.MarkFlagsMutuallyExclusive("for", "until")
	return cmd
}

// nodeStateCmd builds a command that applies one warning-state change to a node.
func (a *app) nodeStateCmd(name, short string, apply func(*service.Service, context.Context, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <node-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.runtime()
			if err != nil {
				return err
			}
			if err := apply(rt.svc, cmd.Context(), args[0]); err != nil {
				return err
			}
			newPrinter(cmd.OutOrStdout()).success("%s: %s", name, args[0])
			return nil
		},
	}
}

func (a *app) pruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Drop snoozes that have ended",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := a.runtime()
			if err != nil {
				return err
			}
			n, err := rt.svc.PruneSnoozes(cmd.Context())
			if err != nil {
				return err
			}
			newPrinter(cmd.OutOrStdout()).success("Pruned %d entries", n)
			return nil
		},
	}
}
