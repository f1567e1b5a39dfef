package blend

import (
	"math"
	"sort"

	"fabula/internal/bible"
)

// Reward metric names. Weights come from scoring.reward; a missing weight
// reads as 0 and the metric simply contributes nothing.
const (
	MetricFrameCompat       = "frame_compat"
	MetricSchemaAlignment   = "schema_alignment"
	MetricMetaphorAlignment = "metaphor_alignment"
	MetricMinimality        = "minimality"
	MetricNoveltyCap        = "novelty_cap"
)

// Penalty reason codes. Weights come from scoring.penalty.
const (
	PenaltyDepthOverflow        = "depth_overflow"
	PenaltyUnknownMapping       = "unknown_mapping"
	PenaltyFrameIncompatibility = "frame_incompatibility"
	PenaltyBannedPair           = "banned_pair"
	PenaltyPolarConflict        = "polar_conflict"
)

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// frameCompatScore checks the active frame paired with itself against
// banned_frame_pairs. This only fires when a frame is listed as incompatible
// with itself — the curated data to date never does, and the literal check
// is kept on purpose.
func frameCompatScore(sel Selection, rules bible.Rules) float64 {
	if sel.FrameID == "" {
		return 1.0
	}
	for _, pair := range rules.Constraints.BannedFramePairs {
		if len(pair) == 2 && pair[0] == sel.FrameID && pair[1] == sel.FrameID {
			return 0.0
		}
	}
	return 1.0
}

// schemaAlignmentScore is the fraction of active schemas appearing as a
// mapping's left side. No active schemas scores 1.0.
func schemaAlignmentScore(sel Selection, mappings []Mapping) float64 {
	if len(sel.Schemas) == 0 {
		return 1.0
	}
	active := make(map[string]bool, len(sel.Schemas))
	for _, id := range sel.Schemas {
		active[id] = true
	}
	covered := make(map[string]bool)
	for _, mapping := range mappings {
		if active[mapping.Left] {
			covered[mapping.Left] = true
		}
	}
	return math.Min(1.0, float64(len(covered))/float64(len(active)))
}

// metaphorAlignmentScore is 0 when a banned metaphor pair is fully active,
// 0.5 when no metaphors are active, 1 otherwise.
func metaphorAlignmentScore(sel Selection, rules bible.Rules) float64 {
	active := make(map[string]bool, len(sel.Metaphors))
	for _, id := range sel.Metaphors {
		active[id] = true
	}
	for _, pair := range rules.Constraints.BannedMetaphorPairs {
		if len(pair) == 2 && active[pair[0]] && active[pair[1]] {
			return 0.0
		}
	}
	if len(active) == 0 {
		return 0.5
	}
	return 1.0
}

// minimalityScore rewards staying within the op cap; each step of overflow
// loses a quarter point.
func minimalityScore(steps []Step, maxOps int) float64 {
	if len(steps) == 0 || len(steps) <= maxOps {
		return 1.0
	}
	return math.Max(0.0, 1.0-float64(len(steps)-maxOps)*0.25)
}

// noveltyCapScore grows with the mapping count, capped at 1. No mappings at
// all sits at the 0.5 midpoint.
func noveltyCapScore(mappings []Mapping) float64 {
	if len(mappings) == 0 {
		return 0.5
	}
	return math.Min(1.0, 0.6+0.1*float64(len(mappings)))
}

// polarConflictPenalties finds every axis whose raw pole value activates
// more than one pole token, unless the axis policy waives the conflict after
// the explosion has fired. Axes are scanned in sorted order so penalty lists
// replay identically.
func polarConflictPenalties(sel Selection, rules bible.Rules) (float64, []string) {
	axes := make([]string, 0, len(rules.Constraints.PolarConflicts))
	for axis := range rules.Constraints.PolarConflicts {
		axes = append(axes, axis)
	}
	sort.Strings(axes)

	activeMetaphors := make(map[string]bool, len(sel.Metaphors))
	for _, id := range sel.Metaphors {
		activeMetaphors[id] = true
	}

	total := 0.0
	var reasons []string
	for _, axis := range axes {
		policy := rules.Constraints.PolarConflicts[axis]
		if _, inPoles := sel.Poles[axis]; !activeMetaphors[axis] && !inPoles {
			continue
		}
		value := sel.Poles[axis]
		if value == "" {
			continue
		}
		if len(splitPoleValue(value)) <= 1 {
			continue
		}
		if policy.AllowIfExplosionFired && sel.ExplosionFired {
			continue
		}
		weight := rules.Scoring.Penalty[PenaltyPolarConflict]
		if weight != 0 {
			total += weight
			reasons = append(reasons, PenaltyPolarConflict+":"+axis)
		}
	}
	return total, reasons
}

// bannedPairPenalty returns the first banned pair fully contained in the
// active id set, or nil. Short-circuits on the first hit within a category.
func bannedPairPenalty(pairs [][]string, active map[string]bool) []string {
	for _, pair := range pairs {
		if len(pair) == 2 && active[pair[0]] && active[pair[1]] {
			return pair
		}
	}
	return nil
}
