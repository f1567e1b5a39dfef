package bible

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// pairSides splits a "left↔right" alignment key into its sides. The second
// return is false when the key is malformed.
func pairSides(key string) (string, string, bool) {
	left, right, ok := strings.Cut(key, "↔")
	if !ok || left == "" || right == "" {
		return "", "", false
	}
	return left, right, true
}

// ValidateRules cross-checks a rulebook against the curated banks. All
// problems are collected; the returned error lists every one. Validation is
// a loader-side concern: the blend engine assumes it already happened.
func ValidateRules(rules Rules, frames FrameBank, schemas SchemaBank, metaphors MetaphorBank) error {
	var errs []string
	report := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	relations := make(map[string]bool, len(rules.VitalRelations))
	for _, rel := range rules.VitalRelations {
		relations[rel] = true
	}
	operators := make(map[string]bool, len(rules.Operators))

	for _, op := range rules.Operators {
		if op.ID == "" {
			report("operator with empty id")
			continue
		}
		if operators[op.ID] {
			report("duplicate operator id: %s", op.ID)
		}
		operators[op.ID] = true
		if op.Cost < 0 || op.Cost > 1 {
			report("operator %s cost %.4f outside [0,1]", op.ID, op.Cost)
		}
		for _, rel := range op.AllowedRelations {
			if !relations[rel] {
				report("operator %s allowed_relations references unknown relation %s", op.ID, rel)
			}
		}
		for _, rel := range op.DisallowedRelations {
			if !relations[rel] {
				report("operator %s disallowed_relations references unknown relation %s", op.ID, rel)
			}
		}
	}

	for _, rel := range rules.CounterpartMapping.Priority {
		if !relations[rel] {
			report("counterpart_mapping.priority references unknown relation %s", rel)
		}
	}
	for _, rel := range rules.CompressionPreferences.Prefer {
		if !relations[rel] {
			report("compression_preferences.prefer references unknown relation %s", rel)
		}
	}
	for _, key := range rules.CounterpartMapping.RoleAlignment.Allow {
		if _, _, ok := pairSides(key); !ok {
			report("role_alignment.allow entry %q is not a left↔right pair", key)
		}
	}
	for _, key := range rules.CounterpartMapping.RoleAlignment.Disallow {
		if _, _, ok := pairSides(key); !ok {
			report("role_alignment.disallow entry %q is not a left↔right pair", key)
		}
	}

	schemaIDs := idSet(schemas.IDs())
	metaphorIDs := idSet(metaphors.IDs())
	frameIDs := idSet(frames.IDs())

	checkPairs := func(label string, pairs [][]string, known map[string]bool) {
		for _, pair := range pairs {
			if len(pair) != 2 {
				report("%s entry %v must have exactly two ids", label, pair)
				continue
			}
			for _, id := range pair {
				if !known[id] {
					report("%s references unknown id %s", label, id)
				}
			}
		}
	}
	checkPairs("banned_schema_pairs", rules.Constraints.BannedSchemaPairs, schemaIDs)
	checkPairs("banned_metaphor_pairs", rules.Constraints.BannedMetaphorPairs, metaphorIDs)
	checkPairs("banned_frame_pairs", rules.Constraints.BannedFramePairs, frameIDs)

	for _, axis := range sortedKeys(rules.Constraints.PolarConflicts) {
		if !metaphorIDs[axis] {
			report("polar_conflicts references unknown metaphor axis %s", axis)
		}
	}

	if rules.Constraints.MaxBlendDepth < 1 {
		report("constraints.max_blend_depth must be at least 1")
	}
	if rules.Constraints.MaxOpsPerBlend < 1 {
		report("constraints.max_ops_per_blend must be at least 1")
	}

	for _, frameID := range sortedKeys(rules.FrameOverrides) {
		override := rules.FrameOverrides[frameID]
		if !frameIDs[frameID] {
			report("frame_overrides references unknown frame %s", frameID)
		}
		for _, op := range override.OperatorWhitelist {
			if !operators[op] {
				report("frame_overrides[%s].operator_whitelist references unknown operator %s", frameID, op)
			}
		}
		for _, op := range override.DisallowedOperators {
			if !operators[op] {
				report("frame_overrides[%s].disallowed_operators references unknown operator %s", frameID, op)
			}
		}
		for _, rel := range override.PreferRelations {
			if !relations[rel] {
				report("frame_overrides[%s].prefer_relations references unknown relation %s", frameID, rel)
			}
		}
		for _, op := range sortedKeys(override.OperatorCostAdjust) {
			if !operators[op] {
				report("frame_overrides[%s].operator_cost_adjust references unknown operator %s", frameID, op)
			}
		}
	}

	for _, op := range sortedKeys(rules.Scoring.OperatorCosts) {
		if !operators[op] {
			report("scoring.operator_costs references unknown operator %s", op)
		}
	}
	for _, name := range sortedKeys(rules.Scoring.Penalty) {
		if rules.Scoring.Penalty[name] < 0 {
			report("scoring.penalty[%s] must be non-negative", name)
		}
	}
	for _, name := range sortedKeys(rules.Scoring.Reward) {
		if rules.Scoring.Reward[name] < 0 {
			report("scoring.reward[%s] must be non-negative", name)
		}
	}
	if math.IsNaN(rules.Scoring.AcceptThreshold) || math.IsInf(rules.Scoring.AcceptThreshold, 0) {
		report("scoring.accept_threshold must be finite")
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("blend rules validation failed:\n%s", strings.Join(errs, "\n"))
}

func idSet(ids []string) map[string]bool {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

// sortedKeys returns map keys in sorted order so validation reports are
// stable across runs.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
