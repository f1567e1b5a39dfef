package blend

import (
	"fabula/internal/bible"
)

// rewardOrder fixes the metric evaluation order so floating-point
// accumulation is identical on every call.
var rewardOrder = []string{
	MetricFrameCompat,
	MetricSchemaAlignment,
	MetricMetaphorAlignment,
	MetricMinimality,
	MetricNoveltyCap,
}

// Blend runs the whole engine: build spaces, propose mappings, select
// operators, score, decide. It is a pure function of (sel, rules) and always
// returns a complete well-formed Result — bad situations become penalties or
// zero-valued branches, never errors.
func Blend(sel Selection, rules bible.Rules) Result {
	spaceA, spaceB := BuildSpaces(sel)
	override := rules.OverrideFor(sel.FrameID)
	mappings := ProposeMappings(spaceA, spaceB, rules)
	steps, operatorCost := SelectOperators(mappings, rules, override)

	maxOps := override.MaxOpsPerBlend
	if maxOps == 0 {
		maxOps = rules.Constraints.MaxOpsPerBlend
	}

	metrics := map[string]float64{
		MetricFrameCompat:       frameCompatScore(sel, rules),
		MetricSchemaAlignment:   schemaAlignmentScore(sel, mappings),
		MetricMetaphorAlignment: metaphorAlignmentScore(sel, rules),
		MetricMinimality:        minimalityScore(steps, maxOps),
		MetricNoveltyCap:        noveltyCapScore(mappings),
	}

	rewards := make(map[string]Reward, len(metrics))
	rewardTotal := 0.0
	for _, name := range rewardOrder {
		metric := metrics[name]
		weight := rules.Scoring.Reward[name]
		contribution := weight * metric
		rewards[name] = Reward{
			Metric:       round4(metric),
			Weight:       round4(weight),
			Contribution: round4(contribution),
		}
		rewardTotal += contribution
	}

	scorePrePenalty := rewardTotal - operatorCost

	penalties := []Penalty{}
	penaltyTotal := 0.0
	addPenalty := func(reason string, weight float64, pair []string) {
		if weight == 0 {
			return
		}
		penaltyTotal += weight
		penalties = append(penalties, Penalty{Reason: reason, Pair: pair, Weight: round4(weight)})
	}

	if len(mappings) > rules.Constraints.MaxBlendDepth {
		addPenalty(PenaltyDepthOverflow, rules.Scoring.Penalty[PenaltyDepthOverflow], nil)
	}

	if len(mappings) == 0 {
		addPenalty(PenaltyUnknownMapping, rules.Scoring.Penalty[PenaltyUnknownMapping], nil)
	} else if sel.FrameID != "" && len(steps) == 0 {
		addPenalty(PenaltyFrameIncompatibility, rules.Scoring.Penalty[PenaltyFrameIncompatibility], nil)
	}

	activeSchemas := make(map[string]bool, len(sel.Schemas))
	for _, id := range sel.Schemas {
		activeSchemas[id] = true
	}
	if pair := bannedPairPenalty(rules.Constraints.BannedSchemaPairs, activeSchemas); pair != nil {
		addPenalty("banned_schema_pair", rules.Scoring.Penalty[PenaltyBannedPair], pair)
	}

	activeMetaphors := make(map[string]bool, len(sel.Metaphors))
	for _, id := range sel.Metaphors {
		activeMetaphors[id] = true
	}
	if pair := bannedPairPenalty(rules.Constraints.BannedMetaphorPairs, activeMetaphors); pair != nil {
		addPenalty("banned_metaphor_pair", rules.Scoring.Penalty[PenaltyBannedPair], pair)
	}

	if sel.FrameID != "" {
		for _, pair := range rules.Constraints.BannedFramePairs {
			if len(pair) != 2 {
				continue
			}
			if pair[0] != sel.FrameID && pair[1] != sel.FrameID {
				continue
			}
			other := pair[0]
			if pair[1] != sel.FrameID {
				other = pair[1]
			}
			if other == sel.FrameID {
				continue // the self-pair case belongs to frame_compat
			}
			addPenalty("banned_frame_pair", rules.Scoring.Penalty[PenaltyBannedPair], pair)
			break
		}
	}

	polarTotal, polarReasons := polarConflictPenalties(sel, rules)
	if polarTotal != 0 {
		penaltyTotal += polarTotal
		weight := round4(rules.Scoring.Penalty[PenaltyPolarConflict])
		for _, reason := range polarReasons {
			penalties = append(penalties, Penalty{Reason: reason, Weight: weight})
		}
	}

	scoreFinal := scorePrePenalty - penaltyTotal
	accepted := scoreFinal >= rules.Scoring.AcceptThreshold

	auditMappings := mappings
	if auditMappings == nil {
		auditMappings = []Mapping{}
	}
	auditSteps := make([]Step, 0, len(steps))
	operators := make([]string, 0, len(steps))
	for _, step := range steps {
		auditSteps = append(auditSteps, Step{
			Operator: step.Operator,
			Relation: step.Relation,
			Cost:     round4(step.Cost),
		})
		operators = append(operators, step.Operator)
	}

	return Result{
		Accepted:        accepted,
		ScorePrePenalty: round4(scorePrePenalty),
		ScoreFinal:      round4(scoreFinal),
		Decisions: Decisions{
			Operators: operators,
			Mappings:  len(mappings),
		},
		Audit: Audit{
			Spaces: SpacesAudit{
				InputA: SpaceAuditA{
					Schemas: emptyIfNil(spaceA.Schemas),
					Gates:   emptyIfNil(spaceA.Gates),
					FrameID: spaceA.FrameID,
				},
				InputB: SpaceAuditB{
					Metaphors: emptyIfNil(spaceB.Metaphors),
					Poles:     spaceB.Poles,
				},
			},
			Mappings:  auditMappings,
			Operators: auditSteps,
			Costs:     CostAudit{OperatorTotal: round4(operatorCost)},
			Rewards:   rewards,
			Penalties: penalties,
			Thresholds: Thresholds{
				Accept:   round4(rules.Scoring.AcceptThreshold),
				MaxDepth: rules.Constraints.MaxBlendDepth,
				MaxOps:   maxOps,
			},
			Flags: Flags{ExplosionFired: sel.ExplosionFired},
		},
	}
}

func emptyIfNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
