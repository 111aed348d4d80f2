package replay

import (
	"os"
	"path/filepath"
	"testing"
)

// #region fixture-tests

// TestFixture_MixedWeek is the primary regression baseline: if mapping tables,
// ranking thresholds or detectors change, the recorded rankings drift.
func TestFixture_MixedWeek(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "mixed_week.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	res, err := Replay(f)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	for _, m := range res.Mismatches {
		t.Errorf("%s", m)
	}
}

func TestFixture_AllTestdataPass(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.json"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(paths) == 0 {
		t.Fatal("no fixtures in testdata")
	}

	results := make([]Result, 0, len(paths))
	for _, p := range paths {
		f, err := LoadFixture(p)
		if err != nil {
			t.Fatalf("LoadFixture(%s): %v", p, err)
		}
		res, err := Replay(f)
		if err != nil {
			t.Fatalf("Replay(%s): %v", p, err)
		}
		results = append(results, res)
	}

	s := Summarize(results)
	if s.Failed != 0 || s.Passed != len(paths) {
		t.Errorf("expected all %d fixtures to pass, got %+v", len(paths), s)
	}
}

func TestLoadFixture_Missing(t *testing.T) {
	if _, err := LoadFixture(filepath.Join("testdata", "nope.json")); err == nil {
		t.Fatal("expected error for missing fixture")
	}
}

func TestLoadFixture_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"network": {"links": [{"kind": "sideways"}]}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFixture(path); err == nil {
		t.Fatal("expected error for unknown link kind")
	}
}

func TestWriteFixture_RoundTrip(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "mixed_week.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	path := filepath.Join(t.TempDir(), "copy.json")
	if err := WriteFixture(path, f); err != nil {
		t.Fatalf("WriteFixture: %v", err)
	}
	back, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture(copy): %v", err)
	}

	res, err := Replay(back)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if !res.Passed() {
		t.Errorf("rewritten fixture no longer passes: %v", res.Mismatches)
	}
}

// #endregion fixture-tests
