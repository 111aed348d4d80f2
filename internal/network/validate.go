package network

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidNetwork wraps every boundary validation failure.
var ErrInvalidNetwork = errors.New("invalid network")

// nodeValidate checks struct tags on nodes and links. validator.Validate is safe for concurrent use.
var nodeValidate = validator.New()

// #region validate

// Validate enforces the invariants the analysis packages assume: enum members
// within their sets, unique ids, and links that join the right layers.
func Validate(n Network) error {
	var problems []error
	seen := make(map[string]string)

	claim := func(id, what string) {
		if prev, ok := seen[id]; ok {
			problems = append(problems, fmt.Errorf("duplicate id %q (%s and %s)", id, prev, what))
			return
		}
		seen[id] = what
	}

	behaviours := make(map[string]bool, len(n.Behaviours))
	outcomes := make(map[string]bool, len(n.Outcomes))
	values := make(map[string]bool, len(n.Values))

	for _, b := range n.Behaviours {
		if err := nodeValidate.Struct(b); err != nil {
			problems = append(problems, fmt.Errorf("behaviour %q: %w", b.ID, err))
		}
		claim(b.ID, "behaviour")
		behaviours[b.ID] = true
	}
	for _, o := range n.Outcomes {
		if err := nodeValidate.Struct(o); err != nil {
			problems = append(problems, fmt.Errorf("outcome %q: %w", o.ID, err))
		}
		claim(o.ID, "outcome")
		outcomes[o.ID] = true
	}
	for _, v := range n.Values {
		if err := nodeValidate.Struct(v); err != nil {
			problems = append(problems, fmt.Errorf("value %q: %w", v.ID, err))
		}
		claim(v.ID, "value")
		values[v.ID] = true
	}

	for _, l := range n.Links {
		switch link := l.(type) {
		case BehaviourOutcomeLink:
			if err := nodeValidate.Struct(link); err != nil {
				problems = append(problems, fmt.Errorf("link %q: %w", link.ID, err))
			}
			if !behaviours[link.SourceID] {
				problems = append(problems, fmt.Errorf("link %q: source %q is not a behaviour", link.ID, link.SourceID))
			}
			if !outcomes[link.TargetID] {
				problems = append(problems, fmt.Errorf("link %q: target %q is not an outcome", link.ID, link.TargetID))
			}
		case OutcomeValueLink:
			if err := nodeValidate.Struct(link); err != nil {
				problems = append(problems, fmt.Errorf("link %q: %w", link.ID, err))
			}
			if !outcomes[link.SourceID] {
				problems = append(problems, fmt.Errorf("link %q: source %q is not an outcome", link.ID, link.SourceID))
			}
			if !values[link.TargetID] {
				problems = append(problems, fmt.Errorf("link %q: target %q is not a value", link.ID, link.TargetID))
			}
		}
		claim(l.LinkID(), "link")
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidNetwork, errors.Join(problems...))
}

// #endregion validate
