package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/valuesnet/internal/network"
)

func (a *app) importCmd() *cobra.Command {
	var note string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Store a network file as the current version",
		Long: `Import reads a JSON or YAML network file, validates it, and commits it as
the current version. Importing content identical to the current version is a no-op.

Examples:
  valuesnet import network.yaml
  valuesnet import network.json --note "added sleep habits"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := network.Load(args[0])
			if err != nil {
				return err
			}
			rt, err := a.runtime()
			if err != nil {
				return err
			}
			rec, created, err := rt.svc.Import(cmd.Context(), n, note)
			if err != nil {
				return err
			}

			p := newPrinter(cmd.OutOrStdout())
			if a.jsonOut {
				return p.emit(map[string]any{"record": rec, "created": created})
			}
			if created {
				p.success("Imported version %s", rec.VersionID)
			} else {
				p.hint("Unchanged; current version is %s", rec.VersionID)
			}
			p.line("%d behaviours, %d outcomes, %d values, %d links",
				len(n.Behaviours), len(n.Outcomes), len(n.Values), len(n.Links))
			return nil
		},
	}
	cmd.Flags().StringVarP(&note, "note", "m", "", "note stored with the version")
	return cmd
}

func (a *app) historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored network versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := a.runtime()
			if err != nil {
				return err
			}
			versions, err := rt.svc.History(cmd.Context(), limit)
			if err != nil {
				return err
			}

			p := newPrinter(cmd.OutOrStdout())
			if a.jsonOut {
				return p.emit(versions)
			}
			if len(versions) == 0 {
				p.hint("No versions stored.")
				return nil
			}
			rows := make([][]string, 0, len(versions))
			for _, v := range versions {
				marker := ""
				if v.Current {
					marker = "*"
				}
				rows = append(rows, []string{
					marker, v.VersionID, v.CreatedAt.Local().Format(time.DateTime),
					strconv.Itoa(v.Behaviours), strconv.Itoa(v.Outcomes), strconv.Itoa(v.Values), strconv.Itoa(v.Links),
					v.Note,
				})
			}
			p.table([]string{"", "VERSION", "CREATED", "B", "O", "V", "LINKS", "NOTE"}, rows)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "max versions (0 for all)")
	return cmd
}

func (a *app) runsCmd() *cobra.Command {
	var limit int
	var version string
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded analysis runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := a.runtime()
			if err != nil {
				return err
			}
			runs, err := rt.svc.Runs(cmd.Context(), version, limit)
			if err != nil {
				return err
			}

			p := newPrinter(cmd.OutOrStdout())
			if a.jsonOut {
				return p.emit(runs)
			}
			if len(runs) == 0 {
				p.hint("No runs recorded.")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				rows = append(rows, []string{
					r.CreatedAt.Local().Format(time.DateTime), string(r.Kind), shortID(r.VersionID),
					r.TopLeverageID, strconv.Itoa(r.FragileCount),
					fmt.Sprintf("%d/%d", r.WarningsActive, r.WarningsTotal),
					strconv.FormatBool(r.Cached), r.Duration.Round(time.Microsecond).String(),
				})
			}
			p.table([]string{"WHEN", "KIND", "VERSION", "TOP", "FRAGILE", "WARNINGS", "CACHED", "TOOK"}, rows)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "max runs (0 for all)")
	cmd.Flags().StringVar(&version, "version-id", "", "only runs over this version")
	return cmd
}

func (a *app) rollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rollback <version-id>",
		Short: "Make an earlier version current",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.runtime()
			if err != nil {
				return err
			}
			if err := rt.svc.Rollback(cmd.Context(), args[0]); err != nil {
				return err
			}
			newPrinter(cmd.OutOrStdout()).success("Current version is now %s", args[0])
			return nil
		},
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
