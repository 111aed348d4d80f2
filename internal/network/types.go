package network

import "time"

// #region enums

// Reliability is how dependably a behaviour produces an outcome.
type Reliability string

const (
	ReliabilityAlways    Reliability = "always"
	ReliabilityUsually   Reliability = "usually"
	ReliabilitySometimes Reliability = "sometimes"
	ReliabilityRarely    Reliability = "rarely"
)

// Strength is how much an outcome serves a value.
type Strength string

const (
	StrengthStrong   Strength = "strong"
	StrengthModerate Strength = "moderate"
	StrengthWeak     Strength = "weak"
)

// Valence is the sign of a link's effect.
type Valence string

const (
	ValencePositive Valence = "positive"
	ValenceNegative Valence = "negative"
)

// Cost is the effort a behaviour takes, on a doubling scale.
type Cost string

const (
	CostTrivial  Cost = "trivial"
	CostLow      Cost = "low"
	CostMedium   Cost = "medium"
	CostHigh     Cost = "high"
	CostVeryHigh Cost = "very-high"
)

// Importance is how much a value matters.
type Importance string

const (
	ImportanceCritical Importance = "critical"
	ImportanceHigh     Importance = "high"
	ImportanceMedium   Importance = "medium"
	ImportanceLow      Importance = "low"
)

// Neglect is how under-served a value currently feels.
type Neglect string

const (
	NeglectSevere     Neglect = "severely-neglected"
	NeglectSomewhat   Neglect = "somewhat-neglected"
	NeglectAdequate   Neglect = "adequately-met"
	NeglectWellServed Neglect = "well-satisfied"
)

// Frequency is descriptive only; no score reads it.
type Frequency string

const (
	FrequencyDaily        Frequency = "daily"
	FrequencyWeekly       Frequency = "weekly"
	FrequencyMonthly      Frequency = "monthly"
	FrequencyOccasionally Frequency = "occasionally"
)

// LinkKind discriminates the two link variants on the wire.
type LinkKind string

const (
	KindBehaviourOutcome LinkKind = "behaviour-outcome"
	KindOutcomeValue     LinkKind = "outcome-value"
)

// #endregion enums

// #region nodes

// Behaviour is a recorded action or habit.
type Behaviour struct {
	ID        string    `json:"id" validate:"required"`
	Label     string    `json:"label" validate:"required"`
	Frequency Frequency `json:"frequency,omitempty" validate:"omitempty,oneof=daily weekly monthly occasionally"`
	Cost      Cost      `json:"cost" validate:"oneof=trivial low medium high very-high"`
	Contexts  []string  `json:"contexts,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Outcome is an effect a behaviour produces.
type Outcome struct {
	ID        string    `json:"id" validate:"required"`
	Label     string    `json:"label" validate:"required"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Value is a terminal goal or principle.
type Value struct {
	ID         string     `json:"id" validate:"required"`
	Label      string     `json:"label" validate:"required"`
	Importance Importance `json:"importance" validate:"oneof=critical high medium low"`
	Neglect    Neglect    `json:"neglect" validate:"oneof=severely-neglected somewhat-neglected adequately-met well-satisfied"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// #endregion nodes

// #region links

// Link is one of BehaviourOutcomeLink or OutcomeValueLink. The set is closed:
// consumers type-switch over both variants.
type Link interface {
	LinkID() string
	Kind() LinkKind
	isLink()
}

// BehaviourOutcomeLink is a directed edge from a behaviour to an outcome.
type BehaviourOutcomeLink struct {
	ID          string      `validate:"required"`
	SourceID    string      `validate:"required"`
	TargetID    string      `validate:"required"`
	Valence     Valence     `validate:"oneof=positive negative"`
	Reliability Reliability `validate:"oneof=always usually sometimes rarely"`
}

// OutcomeValueLink is a directed edge from an outcome to a value.
type OutcomeValueLink struct {
	ID       string   `validate:"required"`
	SourceID string   `validate:"required"`
	TargetID string   `validate:"required"`
	Valence  Valence  `validate:"oneof=positive negative"`
	Strength Strength `validate:"oneof=strong moderate weak"`
}

func (l BehaviourOutcomeLink) LinkID() string { return l.ID }
func (l BehaviourOutcomeLink) Kind() LinkKind { return KindBehaviourOutcome }
func (BehaviourOutcomeLink) isLink()          {}

func (l OutcomeValueLink) LinkID() string { return l.ID }
func (l OutcomeValueLink) Kind() LinkKind { return KindOutcomeValue }
func (OutcomeValueLink) isLink()          {}

// #endregion links

// #region network

// Network is an immutable snapshot of the behaviour/outcome/value graph.
// The analysis packages only read it.
type Network struct {
	Behaviours []Behaviour
	Outcomes   []Outcome
	Values     []Value
	Links      []Link
}

// #endregion network
