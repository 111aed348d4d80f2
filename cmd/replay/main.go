package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/danielpatrickdp/valuesnet/internal/config"
	"github.com/danielpatrickdp/valuesnet/internal/engine"
	"github.com/danielpatrickdp/valuesnet/internal/logging"
	"github.com/danielpatrickdp/valuesnet/internal/metrics"
	"github.com/danielpatrickdp/valuesnet/internal/replay"
	"github.com/danielpatrickdp/valuesnet/internal/snapshot"
	"github.com/danielpatrickdp/valuesnet/internal/validation"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to valuesnet.db (DB mode)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON, or a glob of them (fixture mode)")
	configPath := flag.String("config", "", "DB mode: valuesnet config whose analysis thresholds the runs used")
	last := flag.Int("last", 20, "DB mode: replay the N most recent versions")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/valuesnet.db [--config file] [--last N]")
		fmt.Fprintln(os.Stderr, "       replay --fixture 'testdata/*.json'")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(os.Stdout, *fixturePath)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(2)
		}
		exitCode = runDBMode(os.Stdout, *dbPath, cfg.Analysis, *last)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region db-mode

// runDBMode re-analyzes stored versions under ranking and checks the result against the
// latest analysis run logged for each. Warning counts depend on the state at the time and
// are not compared.
func runDBMode(w io.Writer, dbPath string, ranking metrics.RankingConfig, last int) int {
	store, err := snapshot.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer store.Close()

	versions, err := store.ListVersions(last)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list versions: %v\n", err)
		return 2
	}
	slices.Reverse(versions)

	eng := engine.New(engine.Config{Ranking: ranking}, nil)
	var rows []row
	for _, v := range versions {
		logged, ok, err := logging.LatestAnalysis(store.DB(), v.VersionID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "list runs for %s: %v\n", v.VersionID, err)
			return 2
		}
		if !ok {
			continue
		}
		rec, err := store.GetVersion(v.VersionID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load %s: %v\n", v.VersionID, err)
			return 2
		}
		out, err := eng.Run(rec.Network, validation.NewWarningState(), time.Now())
		if err != nil {
			fmt.Fprintf(os.Stderr, "analyze %s: %v\n", v.VersionID, err)
			return 2
		}

		rows = append(rows, row{
			ID:       shortID(v.VersionID),
			Expected: fmt.Sprintf("%s/%d", dash(logged.TopLeverageID), logged.FragileCount),
			Replayed: fmt.Sprintf("%s/%d", dash(topID(out.Analysis)), len(out.Analysis.FragileValues)),
		})
	}

	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "no analyzed versions found")
		return 0
	}
	return printComparison(w, "Version", rows)
}

func topID(r metrics.Report) string {
	if len(r.TopLeverage) == 0 {
		return ""
	}
	return r.TopLeverage[0].Behaviour.ID
}

// #endregion db-mode

// #region fixture-mode

func runFixtureMode(w io.Writer, pattern string) int {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad pattern: %v\n", err)
		return 2
	}
	if len(paths) == 0 {
		fmt.Fprintf(os.Stderr, "no fixtures match %s\n", pattern)
		return 2
	}

	var results []replay.Result
	for _, p := range paths {
		f, err := replay.LoadFixture(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
			return 2
		}
		res, err := replay.Replay(f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "replay %s: %v\n", p, err)
			return 2
		}
		results = append(results, res)

		status := "OK"
		if !res.Passed() {
			status = "DIFF"
		}
		fmt.Fprintf(w, "%-4s %s\n", status, filepath.Base(p))
		for _, m := range res.Mismatches {
			fmt.Fprintf(w, "     %s\n", m)
		}
	}

	s := replay.Summarize(results)
	fmt.Fprintf(w, "\nSummary: %d total, %d pass, %d diverge\n", s.Total, s.Passed, s.Failed)
	if s.Failed > 0 {
		return 1
	}
	return 0
}

// #endregion fixture-mode

// #region output

type row struct {
	ID       string
	Expected string
	Replayed string
}

// printComparison outputs a comparison table and returns the exit code.
func printComparison(w io.Writer, label string, rows []row) int {
	fmt.Fprintf(w, "%-10s| %-20s| %-20s| %s\n", label, "Logged", "Replayed", "Match")
	fmt.Fprintf(w, "%-10s+%-21s+%-21s+%s\n", "----------", "---------------------", "---------------------", "------")

	diverge := 0
	for _, r := range rows {
		match := "OK"
		if r.Expected != r.Replayed {
			match = "DIFF"
			diverge++
		}
		fmt.Fprintf(w, "%-10s| %-20s| %-20s| %s\n", r.ID, r.Expected, r.Replayed, match)
	}

	fmt.Fprintf(w, "\nSummary: %d total, %d match, %d diverge\n", len(rows), len(rows)-diverge, diverge)
	if diverge > 0 {
		return 1
	}
	return 0
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
