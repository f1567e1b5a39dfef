package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"fabula/internal/bible"
	"fabula/internal/blend"
)

var (
	flagSelectionPath string
	flagRulesPath     string
)

var blendCmd = &cobra.Command{
	Use:   "blend",
	Short: "Blend one active selection and print the full decision",
	Long: `Reads an active selection (YAML or JSON) and blends it under the rulebook.
The result — accepted flag, scores, operator recipe and audit trail — prints
as indented JSON. A rejected blend is still a successful run; the exit code
is non-zero only when inputs cannot be loaded.`,
	RunE: runBlend,
}

func init() {
	blendCmd.Flags().StringVarP(&flagSelectionPath, "selection", "s", "", "path to the active selection file (YAML or JSON)")
	blendCmd.Flags().StringVarP(&flagRulesPath, "rules", "r", "", "path to a rulebook file (default: embedded curated rules)")
	_ = blendCmd.MarkFlagRequired("selection")
}

// loadRules resolves the rulebook: an explicit file wins, otherwise the
// embedded curated rules.
func loadRules(path string) (bible.Rules, error) {
	if path != "" {
		return bible.LoadRules(path)
	}
	return bible.DefaultRules()
}

func loadSelection(path string) (blend.Selection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return blend.Selection{}, fmt.Errorf("read selection: %w", err)
	}
	var sel blend.Selection
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		if err := json.Unmarshal(data, &sel); err != nil {
			return blend.Selection{}, fmt.Errorf("parse selection %q: %w", path, err)
		}
		return sel, nil
	}
	if err := yaml.Unmarshal(data, &sel); err != nil {
		return blend.Selection{}, fmt.Errorf("parse selection %q: %w", path, err)
	}
	return sel, nil
}

func runBlend(cmd *cobra.Command, _ []string) error {
	rules, err := loadRules(flagRulesPath)
	if err != nil {
		return err
	}
	sel, err := loadSelection(flagSelectionPath)
	if err != nil {
		return err
	}

	result := blend.Blend(sel, rules)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
