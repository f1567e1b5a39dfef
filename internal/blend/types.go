// Package blend implements the deterministic conceptual-blending engine.
// Given an active selection of narrative elements and a curated rulebook it
// decides how the two input spaces may be merged, which operators apply and
// whether the result is acceptable, producing a score and a full audit trail.
// Blend is a pure function of its inputs: no I/O, no shared state, safe for
// concurrent use against the same rulebook value.
package blend

// Selection is the set of narrative elements switched on for one beat.
// Immutable for the duration of one Blend call.
type Selection struct {
	Schemas        []string          `json:"schemas" yaml:"schemas"`
	Metaphors      []string          `json:"metaphors" yaml:"metaphors"`
	Poles          map[string]string `json:"poles" yaml:"poles"` // axis -> raw pole value
	Gates          []string          `json:"gates" yaml:"gates"`
	FrameID        string            `json:"frame_id" yaml:"frame_id"`
	ExplosionFired bool              `json:"explosion_fired" yaml:"explosion_fired"` // tension-release event already happened
}

// Space is one labeled bag of conceptual features. Feature lists are
// deduplicated, preserving first occurrence.
type Space struct {
	Label     string            `json:"label"`
	Schemas   []string          `json:"schemas,omitempty"`
	Metaphors []string          `json:"metaphors,omitempty"`
	Poles     map[string]string `json:"poles,omitempty"`
	Gates     []string          `json:"gates,omitempty"`
	FrameID   string            `json:"frame_id,omitempty"`
}

// Rationale values recorded on a Mapping.
const (
	RationaleRoleAlignment     = "role_alignment"
	RationaleIdentityAlignment = "identity_alignment"
)

// Mapping is a proposed pairing between a feature of space A and a feature
// of space B, licensed by one of the rulebook's vital relations.
type Mapping struct {
	Left      string `json:"left"`
	Right     string `json:"right"`
	Relation  string `json:"relation"`
	Rationale string `json:"rationale"`
}

// Step is one chosen operator application for one mapping. The ordered
// sequence of steps is the blend recipe.
type Step struct {
	Operator string  `json:"operator"`
	Relation string  `json:"relation"`
	Cost     float64 `json:"cost"`
}

// Decisions summarizes the recipe for callers that only need the outcome.
type Decisions struct {
	Operators []string `json:"operators"`
	Mappings  int      `json:"mappings"`
}

// Reward is one weighted reward metric in the audit.
type Reward struct {
	Metric       float64 `json:"metric"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// Penalty is one applied penalty with its reason.
type Penalty struct {
	Reason string   `json:"reason"`
	Pair   []string `json:"pair,omitempty"`
	Weight float64  `json:"weight"`
}

// SpaceAuditA mirrors the schema-side input space in the audit.
type SpaceAuditA struct {
	Schemas []string `json:"schemas"`
	Gates   []string `json:"gates"`
	FrameID string   `json:"frame_id"`
}

// SpaceAuditB mirrors the metaphor-side input space in the audit.
type SpaceAuditB struct {
	Metaphors []string          `json:"metaphors"`
	Poles     map[string]string `json:"poles"`
}

// SpacesAudit holds both input spaces as built.
type SpacesAudit struct {
	InputA SpaceAuditA `json:"input_a"`
	InputB SpaceAuditB `json:"input_b"`
}

// CostAudit records operator cost totals.
type CostAudit struct {
	OperatorTotal float64 `json:"operator_total"`
}

// Thresholds records the limits the decision was made against.
type Thresholds struct {
	Accept   float64 `json:"accept"`
	MaxDepth int     `json:"max_depth"`
	MaxOps   int     `json:"max_ops"`
}

// Flags records input flags that gated the decision.
type Flags struct {
	ExplosionFired bool `json:"explosion_fired"`
}

// Audit mirrors every intermediate quantity of one blend. It is purely
// derived from the result and exists so callers can explain a decision
// without re-running the algorithm. Numeric fields are rounded to 4 decimals
// for stable golden-file comparison.
type Audit struct {
	Spaces     SpacesAudit       `json:"spaces"`
	Mappings   []Mapping         `json:"mappings"`
	Operators  []Step            `json:"operators"`
	Costs      CostAudit         `json:"costs"`
	Rewards    map[string]Reward `json:"rewards"`
	Penalties  []Penalty         `json:"penalties"`
	Thresholds Thresholds        `json:"thresholds"`
	Flags      Flags             `json:"flags"`
}

// Result is the outcome of one blend call.
type Result struct {
	Accepted        bool      `json:"accepted"`
	ScorePrePenalty float64   `json:"score_pre_penalty"`
	ScoreFinal      float64   `json:"score_final"`
	Decisions       Decisions `json:"decisions"`
	Audit           Audit     `json:"audit"`
}
