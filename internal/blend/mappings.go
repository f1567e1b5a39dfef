package blend

import (
	"slices"
	"strings"

	"fabula/internal/bible"
)

// roleLike is the fixed vocabulary of feature ids that read as roles.
// A pairing touching any of these takes the "role" relation when the
// rulebook prioritizes it.
var roleLike = map[string]bool{
	"agent":    true,
	"boundary": true,
	"goal":     true,
	"path":     true,
	"traveler": true,
	"crosser":  true,
	"seer":     true,
	"holder":   true,
	"target":   true,
}

// pairKey is one directed alignment pairing. The curated rulebook writes
// these as "left↔right" strings; they are parsed once into struct keys so no
// string formatting happens during matching.
type pairKey struct {
	left  string
	right string
}

func (k pairKey) inverse() pairKey {
	return pairKey{left: k.right, right: k.left}
}

// parsePairs converts "left↔right" alignment entries into a key set.
// Malformed entries are skipped: a pair that cannot be parsed can never
// match, which is the same outcome the string form would have had.
func parsePairs(entries []string) map[pairKey]bool {
	out := make(map[pairKey]bool, len(entries))
	for _, entry := range entries {
		left, right, ok := strings.Cut(entry, "↔")
		if !ok || left == "" || right == "" {
			continue
		}
		out[pairKey{left: left, right: right}] = true
	}
	return out
}

// relationFor picks the vital relation for a pairing: role for role-like
// features, identity for exact label matches, analogy for axis composites,
// otherwise the rulebook's top-priority relation.
func relationFor(left, right string, priority []string) string {
	if roleLike[left] || roleLike[right] {
		if slices.Contains(priority, "role") {
			return "role"
		}
	}
	if left == right && slices.Contains(priority, "identity") {
		return "identity"
	}
	if strings.Contains(right, ":") && slices.Contains(priority, "analogy") {
		return "analogy"
	}
	if len(priority) > 0 {
		return priority[0]
	}
	return "identity"
}

// ProposeMappings finds the cross-space pairings permitted by the rulebook's
// alignment policy, in discovery order (left-major over space A features,
// then space B features). Identity pairings are always permitted; everything
// else needs an allow entry. Each alignment key contributes at most one
// mapping. The scan stops once max(len(a.Schemas), max_blend_depth)
// candidates exist (at least 1). An empty result is a legitimate signal, not
// an error — it surfaces later as the unknown_mapping penalty.
func ProposeMappings(a, b Space, rules bible.Rules) []Mapping {
	align := rules.CounterpartMapping
	allow := parsePairs(align.RoleAlignment.Allow)
	disallow := parsePairs(align.RoleAlignment.Disallow)
	nonProjectable := make(map[string]bool, len(align.NonProjectableFeatures))
	for _, feature := range align.NonProjectableFeatures {
		nonProjectable[feature] = true
	}
	priority := align.Priority

	featuresA := make([]string, 0, len(a.Schemas)+len(a.Gates)+1)
	featuresA = append(featuresA, a.Schemas...)
	if a.FrameID != "" {
		featuresA = append(featuresA, a.FrameID)
	}
	featuresA = append(featuresA, a.Gates...)

	featuresB := make([]string, 0, len(b.Metaphors)+len(featuresA))
	featuresB = append(featuresB, b.Metaphors...)
	featuresB = append(featuresB, axisTokens(b.Poles)...)
	// identity alignments: any label present on both sides may pair with itself
	featuresB = append(featuresB, featuresA...)

	maxCandidates := max(len(a.Schemas), rules.Constraints.MaxBlendDepth)
	if maxCandidates < 1 {
		maxCandidates = 1
	}

	seen := make(map[pairKey]bool)
	var mappings []Mapping

	for _, left := range featuresA {
		if nonProjectable[left] {
			continue
		}
		for _, right := range featuresB {
			if nonProjectable[right] {
				continue
			}
			pair := pairKey{left: left, right: right}
			if disallow[pair] || disallow[pair.inverse()] {
				continue
			}
			pairAllowed := allow[pair]
			inverseAllowed := allow[pair.inverse()]
			if !pairAllowed && !inverseAllowed && left != right {
				continue
			}
			key := pair.inverse()
			if pairAllowed {
				key = pair
			}
			if seen[key] {
				continue
			}
			rationale := RationaleIdentityAlignment
			if pairAllowed || inverseAllowed {
				rationale = RationaleRoleAlignment
			}
			mappings = append(mappings, Mapping{
				Left:      left,
				Right:     right,
				Relation:  relationFor(left, right, priority),
				Rationale: rationale,
			})
			seen[key] = true
			if len(mappings) >= maxCandidates {
				return mappings
			}
		}
	}
	return mappings
}
