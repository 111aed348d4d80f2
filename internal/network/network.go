package network

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownLinkKind is returned when a wire link carries an unrecognised kind.
var ErrUnknownLinkKind = errors.New("unknown link kind")

// #region link-views

// BehaviourOutcomeLinks returns the behaviour-outcome links in network order.
func (n Network) BehaviourOutcomeLinks() []BehaviourOutcomeLink {
	var out []BehaviourOutcomeLink
	for _, l := range n.Links {
		switch link := l.(type) {
		case BehaviourOutcomeLink:
			out = append(out, link)
		case OutcomeValueLink:
		}
	}
	return out
}

// OutcomeValueLinks returns the outcome-value links in network order.
func (n Network) OutcomeValueLinks() []OutcomeValueLink {
	var out []OutcomeValueLink
	for _, l := range n.Links {
		switch link := l.(type) {
		case BehaviourOutcomeLink:
		case OutcomeValueLink:
			out = append(out, link)
		}
	}
	return out
}

// IsEmpty reports whether the network has no nodes and no links.
func (n Network) IsEmpty() bool {
	return len(n.Behaviours) == 0 && len(n.Outcomes) == 0 && len(n.Values) == 0 && len(n.Links) == 0
}

// #endregion link-views

// #region index

// Index resolves node ids to records. Build it once per computation.
type Index struct {
	behaviours map[string]Behaviour
	outcomes   map[string]Outcome
	values     map[string]Value
}

// NewIndex builds an id lookup over the network's nodes.
func NewIndex(n Network) Index {
	ix := Index{
		behaviours: make(map[string]Behaviour, len(n.Behaviours)),
		outcomes:   make(map[string]Outcome, len(n.Outcomes)),
		values:     make(map[string]Value, len(n.Values)),
	}
	for _, b := range n.Behaviours {
		ix.behaviours[b.ID] = b
	}
	for _, o := range n.Outcomes {
		ix.outcomes[o.ID] = o
	}
	for _, v := range n.Values {
		ix.values[v.ID] = v
	}
	return ix
}

func (ix Index) Behaviour(id string) (Behaviour, bool) {
	b, ok := ix.behaviours[id]
	return b, ok
}

func (ix Index) Outcome(id string) (Outcome, bool) {
	o, ok := ix.outcomes[id]
	return o, ok
}

func (ix Index) Value(id string) (Value, bool) {
	v, ok := ix.values[id]
	return v, ok
}

// Label returns the label of any node id, or the id itself when unknown.
func (ix Index) Label(id string) string {
	if b, ok := ix.behaviours[id]; ok {
		return b.Label
	}
	if o, ok := ix.outcomes[id]; ok {
		return o.Label
	}
	if v, ok := ix.values[id]; ok {
		return v.Label
	}
	return id
}

// #endregion index

// #region wire-document

// document is the JSON/YAML shape of a Network. Links carry a kind discriminator.
type document struct {
	Behaviours []Behaviour  `json:"behaviours"`
	Outcomes   []Outcome    `json:"outcomes"`
	Values     []Value      `json:"values"`
	Links      []linkRecord `json:"links"`
}

type linkRecord struct {
	Kind        LinkKind    `json:"kind"`
	ID          string      `json:"id"`
	SourceID    string      `json:"sourceId"`
	TargetID    string      `json:"targetId"`
	Valence     Valence     `json:"valence"`
	Reliability Reliability `json:"reliability,omitempty"`
	Strength    Strength    `json:"strength,omitempty"`
}

func toDocument(n Network) document {
	doc := document{
		Behaviours: nonNil(n.Behaviours),
		Outcomes:   nonNil(n.Outcomes),
		Values:     nonNil(n.Values),
		Links:      make([]linkRecord, 0, len(n.Links)),
	}
	for _, l := range n.Links {
		switch link := l.(type) {
		case BehaviourOutcomeLink:
			doc.Links = append(doc.Links, linkRecord{
				Kind:        KindBehaviourOutcome,
				ID:          link.ID,
				SourceID:    link.SourceID,
				TargetID:    link.TargetID,
				Valence:     link.Valence,
				Reliability: link.Reliability,
			})
		case OutcomeValueLink:
			doc.Links = append(doc.Links, linkRecord{
				Kind:     KindOutcomeValue,
				ID:       link.ID,
				SourceID: link.SourceID,
				TargetID: link.TargetID,
				Valence:  link.Valence,
				Strength: link.Strength,
			})
		}
	}
	return doc
}

func (d document) toNetwork() (Network, error) {
	n := Network{
		Behaviours: d.Behaviours,
		Outcomes:   d.Outcomes,
		Values:     d.Values,
		Links:      make([]Link, 0, len(d.Links)),
	}
	for i, r := range d.Links {
		switch r.Kind {
		case KindBehaviourOutcome:
			n.Links = append(n.Links, BehaviourOutcomeLink{
				ID:          r.ID,
				SourceID:    r.SourceID,
				TargetID:    r.TargetID,
				Valence:     r.Valence,
				Reliability: r.Reliability,
			})
		case KindOutcomeValue:
			n.Links = append(n.Links, OutcomeValueLink{
				ID:       r.ID,
				SourceID: r.SourceID,
				TargetID: r.TargetID,
				Valence:  r.Valence,
				Strength: r.Strength,
			})
		default:
			return Network{}, fmt.Errorf("link %d (%s): %w %q", i, r.ID, ErrUnknownLinkKind, r.Kind)
		}
	}
	return n, nil
}

// MarshalJSON encodes the network through its wire document.
func (n Network) MarshalJSON() ([]byte, error) {
	return json.Marshal(toDocument(n))
}

// UnmarshalJSON decodes a wire document into the network.
func (n *Network) UnmarshalJSON(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	decoded, err := doc.toNetwork()
	if err != nil {
		return err
	}
	*n = decoded
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// #endregion wire-document
