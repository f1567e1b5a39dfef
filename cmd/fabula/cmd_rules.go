package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"fabula/internal/bible"
)

var flagRulesValidate bool

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Summarize the active rulebook and bible artifact versions",
	RunE:  runRules,
}

func init() {
	rulesCmd.Flags().BoolVar(&flagRulesValidate, "validate", false, "cross-check the rulebook against the banks and fail on problems")
	rulesCmd.Flags().StringVarP(&flagRulesPath, "rules", "r", "", "path to a rulebook file (default: embedded curated rules)")
}

func runRules(cmd *cobra.Command, _ []string) error {
	rules, err := loadRules(flagRulesPath)
	if err != nil {
		return err
	}
	schemas, metaphors, frames, err := bible.DefaultBanks()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	ops := make([]string, len(rules.Operators))
	for i, op := range rules.Operators {
		ops[i] = op.ID
	}
	fmt.Fprintf(out, "operators:        %s\n", strings.Join(ops, ", "))
	fmt.Fprintf(out, "allowed pairs:    %d (disallowed: %d)\n",
		len(rules.CounterpartMapping.RoleAlignment.Allow),
		len(rules.CounterpartMapping.RoleAlignment.Disallow))
	fmt.Fprintf(out, "priority:         %s\n", strings.Join(rules.CounterpartMapping.Priority, " > "))
	fmt.Fprintf(out, "frame overrides:  %d\n", len(rules.FrameOverrides))
	fmt.Fprintf(out, "depth / ops caps: %d / %d\n",
		rules.Constraints.MaxBlendDepth, rules.Constraints.MaxOpsPerBlend)
	fmt.Fprintf(out, "accept threshold: %g\n", rules.Scoring.AcceptThreshold)

	fmt.Fprintln(out, "\nbible artifacts:")
	versions := bible.Versions()
	names := make([]string, 0, len(versions))
	for name := range versions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v := versions[name]
		fmt.Fprintf(out, "  %-18s %-8s %s\n", name, v.Version, v.SHA256)
	}

	if flagRulesValidate {
		if err := bible.ValidateRules(rules, frames, schemas, metaphors); err != nil {
			return err
		}
		fmt.Fprintln(out, "\nvalidation: ok")
	}
	return nil
}
