package blend

import (
	"slices"

	"fabula/internal/bible"
)

// opRank orders operator candidates for one mapping. Comparison is strictly
// lexicographic: on-policy relations first, then safe operators, then least
// reused, then cheapest, then alphabetical id as the final deterministic
// tiebreak.
type opRank struct {
	offPolicy int // 0 when the mapping's relation is preferred
	unsafe    int // 0 when the operator is marked safe
	reuse     int // times this operator was already chosen in this blend
	cost      float64
	id        string
}

func (r opRank) less(other opRank) bool {
	if r.offPolicy != other.offPolicy {
		return r.offPolicy < other.offPolicy
	}
	if r.unsafe != other.unsafe {
		return r.unsafe < other.unsafe
	}
	if r.reuse != other.reuse {
		return r.reuse < other.reuse
	}
	if r.cost != other.cost {
		return r.cost < other.cost
	}
	return r.id < other.id
}

// SelectOperators picks, for each mapping in order, the best-ranked operator
// consistent with the frame override, up to the per-blend cap. Selection is
// greedy per mapping, not a global search — O(mappings × operators) and
// fully replayable. An empty step list with zero cost means the frame
// permits no blending; that is a signal, not an error.
func SelectOperators(mappings []Mapping, rules bible.Rules, override bible.FrameOverride) ([]Step, float64) {
	disallowed := make(map[string]bool, len(override.DisallowedOperators))
	for _, id := range override.DisallowedOperators {
		disallowed[id] = true
	}
	whitelist := make(map[string]bool, len(override.OperatorWhitelist))
	for _, id := range override.OperatorWhitelist {
		whitelist[id] = true
	}

	allowedOps := make([]bible.Operator, 0, len(rules.Operators))
	for _, op := range rules.Operators {
		if disallowed[op.ID] {
			continue
		}
		if len(whitelist) > 0 && !whitelist[op.ID] {
			continue
		}
		allowedOps = append(allowedOps, op)
	}
	if len(allowedOps) == 0 {
		return nil, 0
	}

	preferList := override.PreferRelations
	if len(preferList) == 0 {
		preferList = rules.CompressionPreferences.Prefer
	}
	prefer := make(map[string]bool, len(preferList))
	for _, rel := range preferList {
		prefer[rel] = true
	}

	maxOps := override.MaxOpsPerBlend
	if maxOps == 0 {
		maxOps = rules.Constraints.MaxOpsPerBlend
	}

	usage := make(map[string]int)
	var steps []Step
	totalCost := 0.0

	for _, mapping := range mappings {
		if len(steps) >= maxOps {
			break
		}

		var best Step
		var bestRank opRank
		found := false
		for _, op := range allowedOps {
			if len(op.AllowedRelations) > 0 && !slices.Contains(op.AllowedRelations, mapping.Relation) {
				continue
			}
			if slices.Contains(op.DisallowedRelations, mapping.Relation) {
				continue
			}
			adjusted := rules.OperatorCost(op) + override.OperatorCostAdjust[op.ID]
			if adjusted < 0 {
				adjusted = 0
			}
			rank := opRank{
				offPolicy: boolToInt(!prefer[mapping.Relation]),
				unsafe:    boolToInt(!op.Safe),
				reuse:     usage[op.ID],
				cost:      adjusted,
				id:        op.ID,
			}
			if !found || rank.less(bestRank) {
				best = Step{Operator: op.ID, Relation: mapping.Relation, Cost: adjusted}
				bestRank = rank
				found = true
			}
		}
		if !found {
			continue // no operator serves this mapping's relation
		}

		steps = append(steps, best)
		usage[best.Operator]++
		totalCost += best.Cost
	}

	return steps, totalCost
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
