package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/danielpatrickdp/valuesnet/internal/config"
	"github.com/danielpatrickdp/valuesnet/internal/engine"
	"github.com/danielpatrickdp/valuesnet/internal/replay"
	"github.com/danielpatrickdp/valuesnet/internal/snapshot"
	"github.com/danielpatrickdp/valuesnet/internal/warnstate"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to valuesnet.db")
	configPath := flag.String("config", "", "valuesnet config whose analysis thresholds are recorded")
	version := flag.String("version", "", "version to export (default current)")
	outPath := flag.String("out", "", "output fixture JSON path")
	desc := flag.String("desc", "", "fixture description")
	flag.Parse()

	if *dbPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/db --out path/to/fixture.json [--version id] [--config file] [--desc text]")
		os.Exit(2)
	}

	if err := run(*dbPath, *configPath, *version, *outPath, *desc); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region export

// run freezes a stored version, the current warning state and the engine's present
// answer into a fixture. The clock is truncated to the second so the file diffs cleanly.
func run(dbPath, configPath, versionID, outPath, desc string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	store, err := snapshot.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	var rec snapshot.Record
	if versionID == "" {
		rec, err = store.GetCurrent()
	} else {
		rec, err = store.GetVersion(versionID)
	}
	if err != nil {
		return err
	}

	ws, err := warnstate.NewStore(store.DB())
	if err != nil {
		return err
	}
	state, err := ws.Load()
	if err != nil {
		return err
	}

	ranking := cfg.Analysis
	now := time.Now().UTC().Truncate(time.Second)
	out, err := engine.New(engine.Config{Ranking: ranking}, nil).Run(rec.Network, state, now)
	if err != nil {
		return err
	}

	if desc == "" {
		desc = fmt.Sprintf("exported from version %s", rec.VersionID)
	}
	f := &replay.Fixture{
		Description:  desc,
		Now:          now,
		Config:       &ranking,
		Network:      rec.Network,
		WarningState: &state,
		Expected:     replay.Capture(out),
	}
	if err := replay.WriteFixture(outPath, f); err != nil {
		return err
	}

	fmt.Printf("Exported %s to %s\n", shortID(rec.VersionID), outPath)
	fmt.Printf("  top leverage:  %v\n", f.Expected.TopLeverage)
	fmt.Printf("  fragile:       %v\n", f.Expected.FragileValues)
	fmt.Printf("  conflicted:    %v\n", f.Expected.ConflictBehaviours)
	fmt.Printf("  warnings:      %d active, %d snoozed, %d dismissed\n",
		f.Expected.Active, f.Expected.Snoozed, f.Expected.Dismissed)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion export
