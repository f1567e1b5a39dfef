package blend

import (
	"sort"
	"strings"
	"unicode"
)

// Space labels. Two spaces are always built per call: the schema side and
// the metaphor side.
const (
	LabelInputA = "input_a"
	LabelInputB = "input_b"
)

// dedupePreserve drops empty strings and duplicates, keeping the first
// occurrence of each feature in input order.
func dedupePreserve(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}

// splitPoleValue tokenizes a raw pole value on whitespace, commas and pipes,
// deduplicated in first-seen order. "raw|cooked" yields both pole tokens.
func splitPoleValue(value string) []string {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == '|'
	})
	return dedupePreserve(fields)
}

// axisTokens expands each pole axis into its feature tokens: the axis name,
// every pole token and the "axis:token" composites. Axes are visited in
// sorted order so repeated calls see identical token sequences.
func axisTokens(poles map[string]string) []string {
	axes := make([]string, 0, len(poles))
	for axis := range poles {
		axes = append(axes, axis)
	}
	sort.Strings(axes)

	var tokens []string
	for _, axis := range axes {
		tokens = append(tokens, axis)
		for _, part := range splitPoleValue(poles[axis]) {
			tokens = append(tokens, part, axis+":"+part)
		}
	}
	return dedupePreserve(tokens)
}

// BuildSpaces splits a selection into the two input spaces: schemas, gates
// and frame on one side; metaphors and poles on the other. Total function —
// no validation, no failure mode.
func BuildSpaces(sel Selection) (Space, Space) {
	a := Space{
		Label:   LabelInputA,
		Schemas: dedupePreserve(sel.Schemas),
		Gates:   dedupePreserve(sel.Gates),
		FrameID: sel.FrameID,
	}
	poles := make(map[string]string, len(sel.Poles))
	for axis, value := range sel.Poles {
		poles[axis] = value
	}
	b := Space{
		Label:     LabelInputB,
		Metaphors: dedupePreserve(sel.Metaphors),
		Poles:     poles,
	}
	return a, b
}
