package validation

import (
	"testing"
	"time"

	"github.com/danielpatrickdp/valuesnet/internal/network"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func bo(id, src, dst string, val network.Valence) network.BehaviourOutcomeLink {
	return network.BehaviourOutcomeLink{ID: id, SourceID: src, TargetID: dst, Valence: val, Reliability: network.ReliabilityUsually}
}

func ov(id, src, dst string, val network.Valence) network.OutcomeValueLink {
	return network.OutcomeValueLink{ID: id, SourceID: src, TargetID: dst, Valence: val, Strength: network.StrengthStrong}
}

func makeNetwork(links ...network.Link) network.Network {
	return network.Network{
		Behaviours: []network.Behaviour{{ID: "B", Label: "Run", Cost: network.CostLow}},
		Outcomes:   []network.Outcome{{ID: "O", Label: "Fitness"}},
		Values:     []network.Value{{ID: "V", Label: "Health", Importance: network.ImportanceHigh, Neglect: network.NeglectAdequate}},
		Links:      links,
	}
}

func ids(ws []Warning) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.NodeID
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestScenarioANoWarnings(t *testing.T) {
	n := makeNetwork(bo("l1", "B", "O", network.ValencePositive), ov("l2", "O", "V", network.ValencePositive))

	r := ValidateNetworkAt(n, NewWarningState(), now)

	if r.Counts.Total != 0 || len(r.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %+v", r.Warnings)
	}
}

func TestScenarioBRaisesNoConflict(t *testing.T) {
	n := makeNetwork(bo("l1", "B", "O", network.ValencePositive), ov("l2", "O", "V", network.ValenceNegative))

	r := ValidateNetworkAt(n, NewWarningState(), now)

	if got := len(r.ByType[WarningValueConflict]); got != 0 {
		t.Fatalf("expected no value-level conflict, got %d", got)
	}
	if got := len(r.ByType[WarningOutcomeConflict]); got != 0 {
		t.Fatalf("expected no outcome-level conflict, got %d", got)
	}
}

func TestDetectOrphanValues(t *testing.T) {
	n := makeNetwork(bo("l1", "B", "O", network.ValencePositive), ov("l2", "O", "V", network.ValencePositive))
	n.Outcomes = append(n.Outcomes, network.Outcome{ID: "dead", Label: "Dead end"})
	n.Values = append(n.Values,
		network.Value{ID: "lonely", Label: "Art", Importance: network.ImportanceLow, Neglect: network.NeglectAdequate},
		network.Value{ID: "indirect", Label: "Calm", Importance: network.ImportanceLow, Neglect: network.NeglectAdequate},
	)
	n.Links = append(n.Links, ov("l3", "dead", "indirect", network.ValencePositive))

	got := DetectOrphanValues(n)

	if !equal(ids(got), []string{"lonely", "indirect"}) {
		t.Fatalf("expected [lonely indirect], got %v", ids(got))
	}
	if len(got[0].RelatedNodeIDs) != 0 {
		t.Fatalf("lonely has no incoming outcomes, got %v", got[0].RelatedNodeIDs)
	}
	if !equal(got[1].RelatedNodeIDs, []string{"dead"}) {
		t.Fatalf("expected related [dead], got %v", got[1].RelatedNodeIDs)
	}
	if got[0].Severity != SeverityWarning {
		t.Fatalf("expected warning severity, got %s", got[0].Severity)
	}
}

func TestDetectUnexplainedAndFloating(t *testing.T) {
	n := makeNetwork(bo("l1", "B", "O", network.ValencePositive))
	n.Behaviours = append(n.Behaviours, network.Behaviour{ID: "idle", Label: "Idle", Cost: network.CostTrivial})

	unexplained := DetectUnexplainedBehaviours(n)
	if !equal(ids(unexplained), []string{"idle"}) {
		t.Fatalf("expected [idle], got %v", ids(unexplained))
	}
	if unexplained[0].Severity != SeverityInfo {
		t.Fatalf("expected info, got %s", unexplained[0].Severity)
	}

	floating := DetectFloatingOutcomes(n)
	if !equal(ids(floating), []string{"O"}) {
		t.Fatalf("expected [O], got %v", ids(floating))
	}
	if !equal(floating[0].RelatedNodeIDs, []string{"B"}) {
		t.Fatalf("expected producers [B], got %v", floating[0].RelatedNodeIDs)
	}
}

func TestDetectOutcomeConflictsOnePerBehaviour(t *testing.T) {
	n := makeNetwork(
		bo("l1", "B", "O", network.ValenceNegative),
		bo("l2", "B", "O2", network.ValenceNegative),
		bo("l3", "B", "O3", network.ValencePositive),
	)
	n.Outcomes = append(n.Outcomes, network.Outcome{ID: "O2", Label: "Sleep"}, network.Outcome{ID: "O3", Label: "Energy"})

	got := DetectOutcomeConflicts(n)

	if len(got) != 1 {
		t.Fatalf("expected one warning, got %d", len(got))
	}
	if !equal(got[0].RelatedNodeIDs, []string{"O", "O2"}) {
		t.Fatalf("expected [O O2], got %v", got[0].RelatedNodeIDs)
	}
}

func TestDetectValueConflicts(t *testing.T) {
	n := makeNetwork(
		bo("l1", "B", "O", network.ValencePositive),
		bo("l2", "B", "O2", network.ValenceNegative),
		ov("l3", "O", "V", network.ValencePositive),
		ov("l4", "O2", "V2", network.ValencePositive),
		// negative leg into a negative link counts as support
		ov("l5", "O2", "V3", network.ValenceNegative),
	)
	n.Outcomes = append(n.Outcomes, network.Outcome{ID: "O2", Label: "Tired"})
	n.Values = append(n.Values,
		network.Value{ID: "V2", Label: "Focus", Importance: network.ImportanceLow, Neglect: network.NeglectAdequate},
		network.Value{ID: "V3", Label: "Rest", Importance: network.ImportanceLow, Neglect: network.NeglectAdequate},
	)

	got := DetectValueConflicts(n)

	if len(got) != 1 {
		t.Fatalf("expected one warning, got %d", len(got))
	}
	if got[0].Severity != SeverityError {
		t.Fatalf("expected error severity, got %s", got[0].Severity)
	}
	if !equal(got[0].RelatedNodeIDs, []string{"V", "V3", "V2"}) {
		t.Fatalf("expected supported [V V3] then undermined [V2], got %v", got[0].RelatedNodeIDs)
	}
}

func TestDetectValueConflictsNetsPerValue(t *testing.T) {
	// One positive and one negative path into the same value cancel out.
	n := makeNetwork(
		bo("l1", "B", "O", network.ValencePositive),
		bo("l2", "B", "O2", network.ValencePositive),
		ov("l3", "O", "V", network.ValencePositive),
		ov("l4", "O2", "V", network.ValenceNegative),
	)
	n.Outcomes = append(n.Outcomes, network.Outcome{ID: "O2", Label: "Other"})

	if got := DetectValueConflicts(n); len(got) != 0 {
		t.Fatalf("expected no conflict, got %+v", got)
	}
}

func TestGenerateWarningIDStable(t *testing.T) {
	a := GenerateWarningID(WarningOrphanValue, "V")
	b := GenerateWarningID(WarningOrphanValue, "V")
	if a != b {
		t.Fatalf("ids differ: %s vs %s", a, b)
	}
	if a == GenerateWarningID(WarningFloatingOutcome, "V") {
		t.Fatal("different types must give different ids")
	}
	if a == GenerateWarningID(WarningOrphanValue, "W") {
		t.Fatal("different nodes must give different ids")
	}

	n := makeNetwork()
	first := ValidateNetworkAt(n, NewWarningState(), now)
	second := ValidateNetworkAt(n, NewWarningState(), now.Add(time.Hour))
	var firstIDs, secondIDs []string
	for _, w := range first.Warnings {
		firstIDs = append(firstIDs, w.ID)
	}
	for _, w := range second.Warnings {
		secondIDs = append(secondIDs, w.ID)
	}
	if !equal(firstIDs, secondIDs) {
		t.Fatalf("id sets differ across runs: %v vs %v", firstIDs, secondIDs)
	}
}

func TestCountsAgainstWarningState(t *testing.T) {
	// No links: B unexplained, O floating, V orphan.
	n := makeNetwork()
	ws := NewWarningState()
	ws.Dismissed["B"] = true
	ws.Snoozed["B"] = now.Add(time.Hour) // dismissal wins
	ws.Snoozed["O"] = now.Add(time.Hour)
	ws.Snoozed["V"] = now.Add(-time.Hour) // expired

	r := ValidateNetworkAt(n, ws, now)

	c := r.Counts
	if c.Total != 3 {
		t.Fatalf("expected 3 warnings, got %d", c.Total)
	}
	if c.Dismissed != 1 || c.Snoozed != 1 || c.Active != 1 {
		t.Fatalf("unexpected status counts: %+v", c)
	}
	if c.BySeverity[SeverityInfo] != 2 || c.BySeverity[SeverityWarning] != 1 || c.BySeverity[SeverityError] != 0 {
		t.Fatalf("unexpected severity counts: %+v", c.BySeverity)
	}
	if c.ByType[WarningOrphanValue] != 1 {
		t.Fatalf("expected one orphan, got %d", c.ByType[WarningOrphanValue])
	}
	if len(r.ByNodeID["V"]) != 1 || r.ByNodeID["V"][0].Type != WarningOrphanValue {
		t.Fatalf("unexpected byNodeId for V: %+v", r.ByNodeID["V"])
	}

	active := r.Filter(ws, now, StatusActive)
	if !equal(ids(active), []string{"V"}) {
		t.Fatalf("expected V active, got %v", ids(active))
	}
}

func TestStatusOfSnoozeBoundary(t *testing.T) {
	w := Warning{NodeID: "X"}
	ws := NewWarningState()
	ws.Snoozed["X"] = now

	if s := StatusOf(w, ws, now); s != StatusActive {
		t.Fatalf("snooze ending now should be active, got %s", s)
	}
	if s := StatusOf(w, ws, now.Add(-time.Second)); s != StatusSnoozed {
		t.Fatalf("expected snoozed, got %s", s)
	}
	if s := StatusOf(w, WarningState{}, now); s != StatusActive {
		t.Fatalf("nil maps should read as active, got %s", s)
	}
}

func TestEmptyNetwork(t *testing.T) {
	r := ValidateNetworkAt(network.Network{}, WarningState{}, now)

	if r.Warnings == nil || len(r.Warnings) != 0 {
		t.Fatalf("expected empty non-nil warnings, got %v", r.Warnings)
	}
	if r.Counts.Total != 0 || r.Counts.Active != 0 || r.Counts.Snoozed != 0 || r.Counts.Dismissed != 0 {
		t.Fatalf("expected zero counts, got %+v", r.Counts)
	}
	for _, wt := range WarningTypes {
		if r.Counts.ByType[wt] != 0 {
			t.Fatalf("expected zero for %s", wt)
		}
	}
}
