package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/valuesnet/internal/logging"
	"github.com/danielpatrickdp/valuesnet/internal/network"
	"github.com/danielpatrickdp/valuesnet/internal/snapshot"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to valuesnet.db")
	last := flag.Int("last", 20, "show N most recent versions")
	version := flag.String("version", "", "show single version detail")
	runs := flag.Int("runs", 5, "runs shown in detail mode")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/valuesnet.db [--last N] [--version id] [--runs N] [--json]")
		os.Exit(2)
	}

	store, err := snapshot.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *version != "" {
		err = runDetailMode(store, *version, *runs, *jsonOut)
	} else {
		err = runListMode(store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	VersionID  string `json:"version_id"`
	Current    bool   `json:"current"`
	Behaviours int    `json:"behaviours"`
	Outcomes   int    `json:"outcomes"`
	Values     int    `json:"values"`
	Links      int    `json:"links"`
	Runs       int    `json:"runs"`
	TopID      string `json:"top_leverage_id,omitempty"`
	Warnings   *int   `json:"warnings_active,omitempty"`
	Note       string `json:"note,omitempty"`
	CreatedAt  string `json:"created_at"`
}

func runListMode(store *snapshot.Store, last int, jsonOut bool) error {
	rows, err := listRows(store, last)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "no versions found")
		return nil
	}

	if jsonOut {
		return printJSON(rows)
	}
	printListTable(rows)
	return nil
}

// listRows summarizes the last versions oldest first. Top leverage and active warnings
// come from the newest analysis run, so a later validate does not blank them.
func listRows(store *snapshot.Store, last int) ([]listRow, error) {
	versions, err := store.ListVersions(last)
	if err != nil {
		return nil, err
	}

	// Store returns DESC, reverse for chronological
	rows := make([]listRow, len(versions))
	for i, v := range versions {
		row := listRow{
			VersionID:  v.VersionID,
			Current:    v.Current,
			Behaviours: v.Behaviours,
			Outcomes:   v.Outcomes,
			Values:     v.Values,
			Links:      v.Links,
			Note:       v.Note,
			CreatedAt:  v.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
		runs, err := logging.ListRuns(store.DB(), v.VersionID, 0)
		if err != nil {
			return nil, err
		}
		row.Runs = len(runs)
		latest, ok, err := logging.LatestAnalysis(store.DB(), v.VersionID)
		if err != nil {
			return nil, err
		}
		if ok {
			row.TopID = latest.TopLeverageID
			if latest.Kind == logging.RunFull {
				active := latest.WarningsActive
				row.Warnings = &active
			}
		}
		rows[len(versions)-1-i] = row
	}
	return rows, nil
}

func printListTable(rows []listRow) {
	fmt.Printf("%-1s %-10s  %4s  %4s  %4s  %5s  %4s  %-12s  %4s  %s\n",
		"", "Version", "B", "O", "V", "Links", "Runs", "Top", "Warn", "Time")
	fmt.Printf("%-1s %-10s+-%4s+-%4s+-%4s+-%5s+-%4s+-%-12s+-%4s+-%s\n",
		"-", "----------", "----", "----", "----", "-----", "----", "------------", "----", "--------------------")

	for _, r := range rows {
		marker := " "
		if r.Current {
			marker = "*"
		}
		top := "—"
		if r.TopID != "" {
			top = r.TopID
		}
		warn := "—"
		if r.Warnings != nil {
			warn = fmt.Sprintf("%d", *r.Warnings)
		}
		fmt.Printf("%-1s %-10s  %4d  %4d  %4d  %5d  %4d  %-12s  %4s  %s\n",
			marker, shortID(r.VersionID), r.Behaviours, r.Outcomes, r.Values, r.Links, r.Runs, top, warn, r.CreatedAt)
	}
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	VersionID string             `json:"version_id"`
	ParentID  string             `json:"parent_id"`
	Hash      string             `json:"hash"`
	Note      string             `json:"note,omitempty"`
	CreatedAt string             `json:"created_at"`
	Layers    map[string][]node  `json:"layers"`
	Links     int                `json:"links"`
	Runs      []logging.RunEntry `json:"runs"`
}

type node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func runDetailMode(store *snapshot.Store, versionID string, runLimit int, jsonOut bool) error {
	rec, err := store.GetVersion(versionID)
	if err != nil {
		return err
	}
	runs, err := logging.ListRuns(store.DB(), versionID, runLimit)
	if err != nil {
		return err
	}

	out := detailOutput{
		VersionID: rec.VersionID,
		ParentID:  rec.ParentID,
		Hash:      rec.Hash,
		Note:      rec.Note,
		CreatedAt: rec.CreatedAt.Format("2006-01-02T15:04:05Z"),
		Layers:    layers(rec.Network),
		Links:     len(rec.Network.Links),
		Runs:      runs,
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Version:  %s\n", out.VersionID)
	fmt.Printf("Parent:   %s\n", out.ParentID)
	fmt.Printf("Hash:     %s\n", out.Hash)
	fmt.Printf("Created:  %s\n", out.CreatedAt)
	fmt.Printf("Note:     %s\n", out.Note)
	fmt.Printf("Links:    %d\n", out.Links)

	for _, name := range []string{"behaviours", "outcomes", "values"} {
		fmt.Printf("\n%s (%d):\n", name, len(out.Layers[name]))
		for _, n := range out.Layers[name] {
			fmt.Printf("  %-16s %s\n", n.ID, n.Label)
		}
	}

	if len(runs) > 0 {
		fmt.Printf("\nRecent runs:\n")
		for _, r := range runs {
			fmt.Printf("  %s  %-10s  top=%-12s  fragile=%d  warnings=%d/%d  cached=%v\n",
				r.CreatedAt.Format("2006-01-02T15:04:05Z"), r.Kind, r.TopLeverageID,
				r.FragileCount, r.WarningsActive, r.WarningsTotal, r.Cached)
		}
	}
	return nil
}

func layers(n network.Network) map[string][]node {
	out := map[string][]node{
		"behaviours": make([]node, 0, len(n.Behaviours)),
		"outcomes":   make([]node, 0, len(n.Outcomes)),
		"values":     make([]node, 0, len(n.Values)),
	}
	for _, b := range n.Behaviours {
		out["behaviours"] = append(out["behaviours"], node{b.ID, b.Label})
	}
	for _, o := range n.Outcomes {
		out["outcomes"] = append(out["outcomes"], node{o.ID, o.Label})
	}
	for _, v := range n.Values {
		out["values"] = append(out["values"], node{v.ID, v.Label})
	}
	return out
}

// #endregion detail-mode

// #region output

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
