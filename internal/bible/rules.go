// Package bible holds the curated story-bible artifacts: the versioned
// blending rulebook plus the schema, metaphor and frame banks. Everything
// here is plain data — loaded once, validated once, then passed read-only
// into the blend engine.
package bible

// Rules is the versioned, immutable blending rulebook. The blend engine
// consumes it read-only; callers that hot-reload rules must swap the whole
// value.
type Rules struct {
	Version                string                   `json:"version" yaml:"version"`
	VitalRelations         []string                 `json:"vital_relations" yaml:"vital_relations"`
	Operators              []Operator               `json:"operators" yaml:"operators"`
	CounterpartMapping     CounterpartMapping       `json:"counterpart_mapping" yaml:"counterpart_mapping"`
	CompressionPreferences CompressionPreferences   `json:"compression_preferences" yaml:"compression_preferences"`
	Constraints            Constraints              `json:"constraints" yaml:"constraints"`
	FrameOverrides         map[string]FrameOverride `json:"frame_overrides" yaml:"frame_overrides"`
	Scoring                Scoring                  `json:"scoring" yaml:"scoring"`
}

// Operator is one blending transformation (composition, projection, ...).
type Operator struct {
	ID                  string   `json:"id" yaml:"id"`
	Safe                bool     `json:"safe" yaml:"safe"`
	Cost                float64  `json:"cost" yaml:"cost"` // default cost; scoring.operator_costs wins when set
	AllowedRelations    []string `json:"allowed_relations,omitempty" yaml:"allowed_relations"`
	DisallowedRelations []string `json:"disallowed_relations,omitempty" yaml:"disallowed_relations"`
}

// RoleAlignment lists permitted and forbidden counterpart pairings, written
// as "left↔right" keys in the curated YAML.
type RoleAlignment struct {
	Allow    []string `json:"allow" yaml:"allow"`
	Disallow []string `json:"disallow" yaml:"disallow"`
}

// CounterpartMapping is the alignment policy for proposing cross-space
// mappings.
type CounterpartMapping struct {
	RoleAlignment          RoleAlignment `json:"role_alignment" yaml:"role_alignment"`
	NonProjectableFeatures []string      `json:"non_projectable_features" yaml:"non_projectable_features"`
	Priority               []string      `json:"priority" yaml:"priority"` // relation priority, best first
}

// CompressionPreferences names the relations the engine should compress
// along when no frame override says otherwise.
type CompressionPreferences struct {
	Prefer []string `json:"prefer" yaml:"prefer"`
}

// PolarConflictPolicy governs one bipolar metaphor axis.
type PolarConflictPolicy struct {
	Simultaneous          bool `json:"simultaneous" yaml:"simultaneous"` // may both poles be active at once
	AllowIfExplosionFired bool `json:"allow_if_explosion_fired" yaml:"allow_if_explosion_fired"`
}

// Constraints bounds blend shape and bans known-bad combinations.
type Constraints struct {
	MaxBlendDepth       int                            `json:"max_blend_depth" yaml:"max_blend_depth"`
	MaxOpsPerBlend      int                            `json:"max_ops_per_blend" yaml:"max_ops_per_blend"`
	BannedSchemaPairs   [][]string                     `json:"banned_schema_pairs" yaml:"banned_schema_pairs"`
	BannedMetaphorPairs [][]string                     `json:"banned_metaphor_pairs" yaml:"banned_metaphor_pairs"`
	BannedFramePairs    [][]string                     `json:"banned_frame_pairs" yaml:"banned_frame_pairs"`
	PolarConflicts      map[string]PolarConflictPolicy `json:"polar_conflicts" yaml:"polar_conflicts"`
}

// FrameOverride adjusts global operator/relation policy for one frame.
// Empty fields mean "inherit the global rulebook value".
type FrameOverride struct {
	FrameID             string             `json:"frame_id,omitempty" yaml:"frame_id"`
	OperatorWhitelist   []string           `json:"operator_whitelist,omitempty" yaml:"operator_whitelist"`
	DisallowedOperators []string           `json:"disallowed_operators,omitempty" yaml:"disallowed_operators"`
	PreferRelations     []string           `json:"prefer_relations,omitempty" yaml:"prefer_relations"`
	MaxOpsPerBlend      int                `json:"max_ops_per_blend,omitempty" yaml:"max_ops_per_blend"`
	OperatorCostAdjust  map[string]float64 `json:"operator_cost_adjust,omitempty" yaml:"operator_cost_adjust"`
}

// Scoring carries the weight tables and the acceptance threshold. Missing
// entries read as weight 0 — the engine never fails on an absent key.
type Scoring struct {
	OperatorCosts   map[string]float64 `json:"operator_costs" yaml:"operator_costs"`
	Penalty         map[string]float64 `json:"penalty" yaml:"penalty"`
	Reward          map[string]float64 `json:"reward" yaml:"reward"`
	AcceptThreshold float64            `json:"accept_threshold" yaml:"accept_threshold"`
}

// OverrideFor resolves the frame override for frameID. The zero override is
// returned when no frame is set or the rulebook has no entry, so callers can
// layer it over the global policy without nil checks.
func (r Rules) OverrideFor(frameID string) FrameOverride {
	if frameID == "" {
		return FrameOverride{}
	}
	override, ok := r.FrameOverrides[frameID]
	if !ok {
		return FrameOverride{FrameID: frameID}
	}
	if override.FrameID == "" {
		override.FrameID = frameID
	}
	return override
}

// OperatorCost returns the effective base cost for an operator: the
// scoring-table entry when present, the operator's own default otherwise.
func (r Rules) OperatorCost(op Operator) float64 {
	if cost, ok := r.Scoring.OperatorCosts[op.ID]; ok {
		return cost
	}
	return op.Cost
}
