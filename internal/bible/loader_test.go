package bible

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultRules(t *testing.T) {
	rules, err := DefaultRules()
	if err != nil {
		t.Fatalf("DefaultRules: %v", err)
	}
	if rules.Version == "" {
		t.Error("rules version is empty")
	}
	if len(rules.Operators) == 0 {
		t.Error("no operators in curated rules")
	}
	if len(rules.VitalRelations) == 0 {
		t.Error("no vital relations in curated rules")
	}
	if rules.Constraints.MaxBlendDepth < 1 || rules.Constraints.MaxOpsPerBlend < 1 {
		t.Errorf("constraints not set: %+v", rules.Constraints)
	}
	if rules.Scoring.AcceptThreshold <= 0 {
		t.Errorf("accept_threshold = %f", rules.Scoring.AcceptThreshold)
	}
}

func TestDefaultRulesMemoized(t *testing.T) {
	first, err := DefaultRules()
	if err != nil {
		t.Fatalf("DefaultRules: %v", err)
	}
	second, _ := DefaultRules()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("memoized rules differ (-first +second):\n%s", diff)
	}
}

func TestDefaultBanks(t *testing.T) {
	schemas, metaphors, frames, err := DefaultBanks()
	if err != nil {
		t.Fatalf("DefaultBanks: %v", err)
	}
	if len(schemas.Schemas) == 0 || len(metaphors.Metaphors) == 0 || len(frames.Frames) == 0 {
		t.Fatalf("banks incomplete: %d schemas, %d metaphors, %d frames",
			len(schemas.Schemas), len(metaphors.Metaphors), len(frames.Frames))
	}
}

func TestLoadRulesYAMLAndJSON(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "rules.yaml")
	yamlBody := `
version: "1.0"
vital_relations: [identity]
operators:
  - id: composition
    safe: true
    cost: 0.05
constraints:
  max_blend_depth: 2
  max_ops_per_blend: 3
scoring:
  accept_threshold: 0.5
`
	if err := os.WriteFile(yamlPath, []byte(yamlBody), 0o644); err != nil {
		t.Fatal(err)
	}

	jsonPath := filepath.Join(dir, "rules.json")
	jsonBody := `{
  "version": "1.0",
  "vital_relations": ["identity"],
  "operators": [{"id": "composition", "safe": true, "cost": 0.05}],
  "constraints": {"max_blend_depth": 2, "max_ops_per_blend": 3},
  "scoring": {"accept_threshold": 0.5}
}`
	if err := os.WriteFile(jsonPath, []byte(jsonBody), 0o644); err != nil {
		t.Fatal(err)
	}

	fromYAML, err := LoadRules(yamlPath)
	if err != nil {
		t.Fatalf("LoadRules yaml: %v", err)
	}
	fromJSON, err := LoadRules(jsonPath)
	if err != nil {
		t.Fatalf("LoadRules json: %v", err)
	}
	if diff := cmp.Diff(fromYAML, fromJSON); diff != "" {
		t.Errorf("yaml and json parses differ (-yaml +json):\n%s", diff)
	}
	if fromYAML.Version != "1.0" || fromYAML.Operators[0].ID != "composition" {
		t.Errorf("unexpected parse: %+v", fromYAML)
	}
}

func TestLoadBanks(t *testing.T) {
	dir := t.TempDir()

	schemaPath := filepath.Join(dir, "schemas.yml")
	schemaBody := `
version: "1.0"
schemas:
  - id: path
    title: Path
    roles: [traveler, goal]
`
	if err := os.WriteFile(schemaPath, []byte(schemaBody), 0o644); err != nil {
		t.Fatal(err)
	}
	schemas, err := LoadSchemaBank(schemaPath)
	if err != nil {
		t.Fatalf("LoadSchemaBank: %v", err)
	}
	if diff := cmp.Diff([]string{"path"}, schemas.IDs()); diff != "" {
		t.Errorf("schema ids mismatch (-want +got):\n%s", diff)
	}

	metaphorPath := filepath.Join(dir, "metaphors.json")
	metaphorBody := `{"version": "1.0", "metaphors": [{"id": "raw_cooked", "poles": ["raw", "cooked"]}]}`
	if err := os.WriteFile(metaphorPath, []byte(metaphorBody), 0o644); err != nil {
		t.Fatal(err)
	}
	metaphors, err := LoadMetaphorBank(metaphorPath)
	if err != nil {
		t.Fatalf("LoadMetaphorBank: %v", err)
	}
	if diff := cmp.Diff([]string{"raw_cooked"}, metaphors.IDs()); diff != "" {
		t.Errorf("metaphor ids mismatch (-want +got):\n%s", diff)
	}

	framePath := filepath.Join(dir, "frames.yml")
	frameBody := `
version: "1.0"
frames:
  - id: journey
    title: Journey
`
	if err := os.WriteFile(framePath, []byte(frameBody), 0o644); err != nil {
		t.Fatal(err)
	}
	frames, err := LoadFrameBank(framePath)
	if err != nil {
		t.Fatalf("LoadFrameBank: %v", err)
	}
	if diff := cmp.Diff([]string{"journey"}, frames.IDs()); diff != "" {
		t.Errorf("frame ids mismatch (-want +got):\n%s", diff)
	}

	if _, err := LoadFrameBank(filepath.Join(dir, "absent.yml")); err == nil {
		t.Error("expected error for missing bank file")
	}
}

func TestLoadRulesMissingFile(t *testing.T) {
	if _, err := LoadRules(filepath.Join(t.TempDir(), "absent.yml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestVersions(t *testing.T) {
	versions := Versions()
	for _, name := range []string{"blend_rules", "schemas", "metaphors", "frames"} {
		artifact, ok := versions[name]
		if !ok {
			t.Errorf("missing artifact %s", name)
			continue
		}
		if artifact.Version == "" {
			t.Errorf("%s has no version field", name)
		}
		if len(artifact.SHA256) != 12 {
			t.Errorf("%s sha256 = %q, want 12 hex chars", name, artifact.SHA256)
		}
	}
}
