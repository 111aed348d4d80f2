// Package validation detects structural anomalies in a network and reports them as warnings,
// classified against a caller-owned WarningState.
package validation

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/valuesnet/internal/network"
)

// warningNamespace seeds the name-based warning ids.
var warningNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("valuesnet:warnings"))

// GenerateWarningID derives a stable id from type and node, so re-running validation on an
// unchanged network yields the same ids.
func GenerateWarningID(t WarningType, nodeID string) string {
	return uuid.NewSHA1(warningNamespace, []byte(string(t)+":"+nodeID)).String()
}

func newWarning(t WarningType, nodeID, message, suggestion string, related []string) Warning {
	if related == nil {
		related = []string{}
	}
	return Warning{
		ID:             GenerateWarningID(t, nodeID),
		Type:           t,
		NodeID:         nodeID,
		Message:        message,
		Severity:       SeverityOf(t),
		RelatedNodeIDs: related,
		Suggestion:     suggestion,
	}
}

// #region detectors

// DetectOrphanValues flags values that no behaviour reaches through a single outcome hop.
// RelatedNodeIDs lists the outcomes that do point at the value, if any.
func DetectOrphanValues(n network.Network) []Warning {
	ix := network.NewIndex(n)
	targeted := make(map[string]bool)
	for _, l := range n.BehaviourOutcomeLinks() {
		targeted[l.TargetID] = true
	}

	reached := make(map[string]bool)
	incoming := make(map[string][]string)
	for _, l := range n.OutcomeValueLinks() {
		incoming[l.TargetID] = appendUnique(incoming[l.TargetID], l.SourceID)
		if targeted[l.SourceID] {
			reached[l.TargetID] = true
		}
	}

	out := []Warning{}
	for _, v := range n.Values {
		if reached[v.ID] {
			continue
		}
		msg := fmt.Sprintf("No behaviour supports %q.", ix.Label(v.ID))
		if len(incoming[v.ID]) > 0 {
			msg = fmt.Sprintf("%q is linked only from outcomes no behaviour produces.", ix.Label(v.ID))
		}
		out = append(out, newWarning(WarningOrphanValue, v.ID, msg,
			"Link a behaviour to an outcome that serves this value.", incoming[v.ID]))
	}
	return out
}

// DetectUnexplainedBehaviours flags behaviours with no outgoing behaviour-outcome link.
func DetectUnexplainedBehaviours(n network.Network) []Warning {
	ix := network.NewIndex(n)
	linked := make(map[string]bool)
	for _, l := range n.BehaviourOutcomeLinks() {
		linked[l.SourceID] = true
	}

	out := []Warning{}
	for _, b := range n.Behaviours {
		if linked[b.ID] {
			continue
		}
		out = append(out, newWarning(WarningUnexplainedBehaviour, b.ID,
			fmt.Sprintf("%q does not lead to any outcome.", ix.Label(b.ID)),
			"Add the outcomes this behaviour produces, or remove it.", nil))
	}
	return out
}

// DetectFloatingOutcomes flags outcomes with no outgoing outcome-value link.
// RelatedNodeIDs lists the behaviours that produce the outcome.
func DetectFloatingOutcomes(n network.Network) []Warning {
	ix := network.NewIndex(n)
	linked := make(map[string]bool)
	for _, l := range n.OutcomeValueLinks() {
		linked[l.SourceID] = true
	}
	producers := make(map[string][]string)
	for _, l := range n.BehaviourOutcomeLinks() {
		producers[l.TargetID] = appendUnique(producers[l.TargetID], l.SourceID)
	}

	out := []Warning{}
	for _, o := range n.Outcomes {
		if linked[o.ID] {
			continue
		}
		out = append(out, newWarning(WarningFloatingOutcome, o.ID,
			fmt.Sprintf("%q does not serve any value.", ix.Label(o.ID)),
			"Link this outcome to the values it affects.", producers[o.ID]))
	}
	return out
}

// DetectOutcomeConflicts emits one warning per behaviour with at least one negative
// behaviour-outcome link, listing every outcome it works against.
func DetectOutcomeConflicts(n network.Network) []Warning {
	ix := network.NewIndex(n)
	negative := make(map[string][]string)
	for _, l := range n.BehaviourOutcomeLinks() {
		if l.Valence == network.ValenceNegative {
			negative[l.SourceID] = appendUnique(negative[l.SourceID], l.TargetID)
		}
	}

	out := []Warning{}
	for _, b := range n.Behaviours {
		affected := negative[b.ID]
		if len(affected) == 0 {
			continue
		}
		out = append(out, newWarning(WarningOutcomeConflict, b.ID,
			fmt.Sprintf("%q works against %s.", ix.Label(b.ID), labels(ix, affected)),
			"Check whether the downside is worth the behaviour's benefits.", affected))
	}
	return out
}

// DetectValueConflicts joins the two link layers locally. A leg pair is positive when both legs
// share a valence. Per behaviour the signs are tallied per value: a positive tally means the value
// is supported, a negative tally means it is undermined. A behaviour that both supports and
// undermines gets one warning; RelatedNodeIDs lists supported then undermined values.
func DetectValueConflicts(n network.Network) []Warning {
	ix := network.NewIndex(n)

	outgoing := make(map[string][]network.OutcomeValueLink)
	for _, l := range n.OutcomeValueLinks() {
		outgoing[l.SourceID] = append(outgoing[l.SourceID], l)
	}

	type tally struct {
		order []string
		net   map[string]int
	}
	tallies := make(map[string]*tally)
	for _, bo := range n.BehaviourOutcomeLinks() {
		for _, ov := range outgoing[bo.TargetID] {
			t, ok := tallies[bo.SourceID]
			if !ok {
				t = &tally{net: map[string]int{}}
				tallies[bo.SourceID] = t
			}
			t.order = appendUnique(t.order, ov.TargetID)
			if bo.Valence == ov.Valence {
				t.net[ov.TargetID]++
			} else {
				t.net[ov.TargetID]--
			}
		}
	}

	out := []Warning{}
	for _, b := range n.Behaviours {
		t, ok := tallies[b.ID]
		if !ok {
			continue
		}
		var supported, undermined []string
		for _, vid := range t.order {
			switch {
			case t.net[vid] > 0:
				supported = append(supported, vid)
			case t.net[vid] < 0:
				undermined = append(undermined, vid)
			}
		}
		if len(supported) == 0 || len(undermined) == 0 {
			continue
		}
		out = append(out, newWarning(WarningValueConflict, b.ID,
			fmt.Sprintf("%q supports %s but undermines %s.", ix.Label(b.ID), labels(ix, supported), labels(ix, undermined)),
			"Look for a variant of this behaviour that keeps the benefit without the cost.",
			slices.Concat(supported, undermined)))
	}
	return out
}

// #endregion detectors

// #region validate

// ValidateNetwork runs every detector and classifies the result against ws as of now.
func ValidateNetwork(n network.Network, ws WarningState) Result {
	return ValidateNetworkAt(n, ws, time.Now())
}

// ValidateNetworkAt is ValidateNetwork with an explicit clock.
func ValidateNetworkAt(n network.Network, ws WarningState, now time.Time) Result {
	warnings := slices.Concat(
		DetectOrphanValues(n),
		DetectUnexplainedBehaviours(n),
		DetectFloatingOutcomes(n),
		DetectOutcomeConflicts(n),
		DetectValueConflicts(n),
	)
	if warnings == nil {
		warnings = []Warning{}
	}

	r := Result{
		Warnings: warnings,
		ByType:   make(map[WarningType][]Warning),
		ByNodeID: make(map[string][]Warning),
		Counts: Counts{
			Total:      len(warnings),
			ByType:     make(map[WarningType]int, len(WarningTypes)),
			BySeverity: map[Severity]int{SeverityInfo: 0, SeverityWarning: 0, SeverityError: 0},
		},
	}
	for _, t := range WarningTypes {
		r.ByType[t] = []Warning{}
		r.Counts.ByType[t] = 0
	}

	for _, w := range warnings {
		r.ByType[w.Type] = append(r.ByType[w.Type], w)
		r.ByNodeID[w.NodeID] = append(r.ByNodeID[w.NodeID], w)
		r.Counts.ByType[w.Type]++
		r.Counts.BySeverity[w.Severity]++
		switch StatusOf(w, ws, now) {
		case StatusDismissed:
			r.Counts.Dismissed++
		case StatusSnoozed:
			r.Counts.Snoozed++
		default:
			r.Counts.Active++
		}
	}
	return r
}

// StatusOf classifies one warning. Dismissal wins over snooze; a snooze that has
// passed leaves the warning active.
func StatusOf(w Warning, ws WarningState, now time.Time) Status {
	if ws.Dismissed[w.NodeID] {
		return StatusDismissed
	}
	if until, ok := ws.Snoozed[w.NodeID]; ok && until.After(now) {
		return StatusSnoozed
	}
	return StatusActive
}

// Filter returns the warnings of r whose status at now is s, in report order.
func (r Result) Filter(ws WarningState, now time.Time, s Status) []Warning {
	out := []Warning{}
	for _, w := range r.Warnings {
		if StatusOf(w, ws, now) == s {
			out = append(out, w)
		}
	}
	return out
}

// #endregion validate

// #region helpers
func appendUnique(ids []string, id string) []string {
	if slices.Contains(ids, id) {
		return ids
	}
	return append(ids, id)
}

func labels(ix network.Index, ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = fmt.Sprintf("%q", ix.Label(id))
	}
	return strings.Join(quoted, ", ")
}

// #endregion helpers
