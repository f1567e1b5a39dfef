package blend

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"fabula/internal/bible"
)

func curatedRules(t *testing.T) bible.Rules {
	t.Helper()
	rules, err := bible.DefaultRules()
	if err != nil {
		t.Fatalf("load curated rules: %v", err)
	}
	return rules
}

func journeySelection() Selection {
	return Selection{
		Schemas:   []string{"path", "boundary"},
		Metaphors: []string{"life_is_travel", "raw_cooked"},
		Poles:     map[string]string{"raw_cooked": "raw"},
		Gates:     []string{"bridge"},
		FrameID:   "journey",
	}
}

func penaltyReasons(result Result) map[string]bool {
	out := make(map[string]bool, len(result.Audit.Penalties))
	for _, p := range result.Audit.Penalties {
		out[p.Reason] = true
	}
	return out
}

func TestBlendAcceptsSafeConfiguration(t *testing.T) {
	rules := curatedRules(t)
	result := Blend(journeySelection(), rules)

	if !result.Accepted {
		t.Fatalf("accepted = false, score_final = %f", result.ScoreFinal)
	}
	if result.ScoreFinal < rules.Scoring.AcceptThreshold {
		t.Errorf("score_final %f below threshold %f", result.ScoreFinal, rules.Scoring.AcceptThreshold)
	}
	if diff := cmp.Diff([]string{"projection", "composition"}, result.Decisions.Operators); diff != "" {
		t.Errorf("operator recipe mismatch (-want +got):\n%s", diff)
	}
	if len(result.Audit.Penalties) != 0 {
		t.Errorf("unexpected penalties: %v", result.Audit.Penalties)
	}
}

func TestBlendRejectsPolarConflictWithoutExplosion(t *testing.T) {
	rules := curatedRules(t)
	sel := journeySelection()
	sel.Poles = map[string]string{"raw_cooked": "raw|cooked"}

	result := Blend(sel, rules)

	if result.Accepted {
		t.Fatalf("accepted = true with unresolved polar conflict, score %f", result.ScoreFinal)
	}
	if !penaltyReasons(result)["polar_conflict:raw_cooked"] {
		t.Errorf("missing polar_conflict:raw_cooked, penalties: %v", result.Audit.Penalties)
	}
}

func TestBlendAllowsPolarConflictAfterExplosion(t *testing.T) {
	rules := curatedRules(t)
	sel := journeySelection()
	sel.Poles = map[string]string{"raw_cooked": "raw|cooked"}
	sel.ExplosionFired = true

	result := Blend(sel, rules)

	if !result.Accepted {
		t.Fatalf("accepted = false after explosion, score %f", result.ScoreFinal)
	}
	if penaltyReasons(result)["polar_conflict:raw_cooked"] {
		t.Errorf("polar conflict penalty survived the explosion: %v", result.Audit.Penalties)
	}
}

// Toggling the explosion must remove exactly the polar conflict penalty and
// change nothing else about the decision inputs.
func TestExplosionGatingRemovesExactlyThePolarPenalty(t *testing.T) {
	rules := curatedRules(t)
	sel := journeySelection()
	sel.Poles = map[string]string{"raw_cooked": "raw|cooked"}

	before := Blend(sel, rules)
	sel.ExplosionFired = true
	after := Blend(sel, rules)

	var beforeOthers []Penalty
	for _, p := range before.Audit.Penalties {
		if p.Reason != "polar_conflict:raw_cooked" {
			beforeOthers = append(beforeOthers, p)
		}
	}
	if diff := cmp.Diff(beforeOthers, after.Audit.Penalties, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("other penalties changed (-before +after):\n%s", diff)
	}
	if diff := cmp.Diff(before.Audit.Mappings, after.Audit.Mappings); diff != "" {
		t.Errorf("mappings changed with the explosion flag (-before +after):\n%s", diff)
	}
	wantDelta := rules.Scoring.Penalty["polar_conflict"]
	if math.Abs((after.ScoreFinal-before.ScoreFinal)-wantDelta) > 1e-9 {
		t.Errorf("score delta = %f, want exactly the polar weight %f",
			after.ScoreFinal-before.ScoreFinal, wantDelta)
	}
}

func TestBlendDepthOverflowPenalty(t *testing.T) {
	rules := curatedRules(t)
	sel := journeySelection()
	sel.Schemas = []string{"path", "boundary", "goal"}

	result := Blend(sel, rules)

	if result.Accepted {
		t.Fatalf("accepted = true above max_blend_depth, score %f", result.ScoreFinal)
	}
	if !penaltyReasons(result)["depth_overflow"] {
		t.Errorf("missing depth_overflow, penalties: %v", result.Audit.Penalties)
	}
}

func TestBlendEmptySelection(t *testing.T) {
	rules := curatedRules(t)
	result := Blend(Selection{}, rules)

	if result.Decisions.Mappings != 0 {
		t.Fatalf("mappings = %d, want 0", result.Decisions.Mappings)
	}
	if !penaltyReasons(result)["unknown_mapping"] {
		t.Errorf("missing unknown_mapping penalty: %v", result.Audit.Penalties)
	}
	novelty := result.Audit.Rewards["novelty_cap"]
	if math.Abs(novelty.Metric-0.5) > 1e-9 {
		t.Errorf("novelty_cap metric = %f, want 0.5", novelty.Metric)
	}
	if result.Accepted {
		t.Error("empty selection must not be accepted under the curated weights")
	}
}

func TestBlendDeterministic(t *testing.T) {
	rules := curatedRules(t)
	sel := journeySelection()
	sel.Poles = map[string]string{"raw_cooked": "raw|cooked", "light_dark": "light"}

	first, err := json.Marshal(Blend(sel, rules))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for i := 0; i < 20; i++ {
		again, err := json.Marshal(Blend(sel, rules))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(first) != string(again) {
			t.Fatalf("run %d produced different bytes:\n%s\n%s", i, first, again)
		}
	}
}

func TestBlendStepCountNeverExceedsCap(t *testing.T) {
	rules := curatedRules(t)
	selections := []Selection{
		journeySelection(),
		{Schemas: []string{"path", "boundary", "goal", "container", "link"}, FrameID: "journey"},
		{Schemas: []string{"path"}, Metaphors: []string{"life_is_travel"}},
		{},
	}
	for _, sel := range selections {
		result := Blend(sel, rules)
		maxOps := result.Audit.Thresholds.MaxOps
		if len(result.Audit.Operators) > maxOps {
			t.Errorf("steps %d exceed max_ops %d for %+v", len(result.Audit.Operators), maxOps, sel)
		}
	}
}

func TestBlendFrameIncompatibilityPenalty(t *testing.T) {
	rules := curatedRules(t)
	// vigil whitelists projection only; forbid it entirely so mappings exist
	// but no operator can serve them
	override := rules.FrameOverrides["vigil"]
	override.OperatorWhitelist = []string{}
	override.DisallowedOperators = []string{"composition", "projection", "completion", "elaboration", "compression"}
	rules.FrameOverrides = map[string]bible.FrameOverride{"vigil": override}

	sel := journeySelection()
	sel.FrameID = "vigil"
	result := Blend(sel, rules)

	if !penaltyReasons(result)["frame_incompatibility"] {
		t.Errorf("missing frame_incompatibility, penalties: %v", result.Audit.Penalties)
	}
	if len(result.Audit.Operators) != 0 {
		t.Errorf("steps = %v, want none", result.Audit.Operators)
	}
}

func TestBlendBannedPairPenalties(t *testing.T) {
	rules := curatedRules(t)
	tests := []struct {
		name   string
		mutate func(*Selection)
		reason string
	}{
		{"schema pair", func(s *Selection) { s.Schemas = append(s.Schemas, "container", "burst") }, "banned_schema_pair"},
		{"metaphor pair", func(s *Selection) { s.Metaphors = append(s.Metaphors, "fire_is_rage", "ice_is_calm") }, "banned_metaphor_pair"},
		{"frame pair", func(s *Selection) { s.FrameID = "prison" }, "banned_frame_pair"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := journeySelection()
			tt.mutate(&sel)
			result := Blend(sel, rules)
			if !penaltyReasons(result)[tt.reason] {
				t.Errorf("missing %s, penalties: %v", tt.reason, result.Audit.Penalties)
			}
		})
	}
}

// The frame_compat metric only fires when a frame is banned against itself.
// Literal behavior, kept on purpose.
func TestFrameCompatSelfPairOnly(t *testing.T) {
	rules := curatedRules(t)
	sel := journeySelection()

	result := Blend(sel, rules)
	if got := result.Audit.Rewards["frame_compat"].Metric; got != 1.0 {
		t.Fatalf("frame_compat = %f with no self ban, want 1", got)
	}

	// fresh slice: the memoized default rulebook must stay untouched
	rules.Constraints.BannedFramePairs = append([][]string{{"journey", "journey"}}, rules.Constraints.BannedFramePairs...)
	result = Blend(sel, rules)
	if got := result.Audit.Rewards["frame_compat"].Metric; got != 0.0 {
		t.Fatalf("frame_compat = %f with self ban, want 0", got)
	}
}

// Missing scoring weights read as zero contributions, never as failures.
func TestBlendMissingWeightsAreZero(t *testing.T) {
	rules := curatedRules(t)
	rules.Scoring.Reward = nil
	rules.Scoring.Penalty = nil

	result := Blend(journeySelection(), rules)

	for name, reward := range result.Audit.Rewards {
		if reward.Weight != 0 || reward.Contribution != 0 {
			t.Errorf("reward %s = %+v, want zero weight and contribution", name, reward)
		}
	}
	if len(result.Audit.Penalties) != 0 {
		t.Errorf("penalties = %v, want none with zero weights", result.Audit.Penalties)
	}
	// score collapses to the negated operator cost
	if result.ScorePrePenalty > 0 {
		t.Errorf("score_pre_penalty = %f, want <= 0", result.ScorePrePenalty)
	}
}

func TestBlendAuditMirrorsDecision(t *testing.T) {
	rules := curatedRules(t)
	result := Blend(journeySelection(), rules)

	if result.Decisions.Mappings != len(result.Audit.Mappings) {
		t.Errorf("decisions.mappings = %d, audit has %d", result.Decisions.Mappings, len(result.Audit.Mappings))
	}
	if len(result.Decisions.Operators) != len(result.Audit.Operators) {
		t.Errorf("decisions.operators = %d, audit has %d steps", len(result.Decisions.Operators), len(result.Audit.Operators))
	}
	var rewardTotal float64
	for _, reward := range result.Audit.Rewards {
		rewardTotal += reward.Contribution
	}
	want := rewardTotal - result.Audit.Costs.OperatorTotal
	if math.Abs(result.ScorePrePenalty-want) > 1e-3 {
		t.Errorf("score_pre_penalty %f inconsistent with audit (%f)", result.ScorePrePenalty, want)
	}
	if result.Audit.Thresholds.Accept != round4(rules.Scoring.AcceptThreshold) {
		t.Errorf("audit threshold = %f", result.Audit.Thresholds.Accept)
	}
}
