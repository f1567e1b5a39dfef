package bible

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed *.yml
var bibleFS embed.FS

// Embedded artifact file names. The default loaders and Versions read these.
const (
	RulesFile     = "blend_rules.yml"
	SchemasFile   = "schemas.yml"
	MetaphorsFile = "metaphors.yml"
	FramesFile    = "frames.yml"
)

var (
	defaultRulesOnce sync.Once
	defaultRules     Rules
	defaultRulesErr  error

	defaultBanksOnce sync.Once
	defaultSchemas   SchemaBank
	defaultMetaphors MetaphorBank
	defaultFrames    FrameBank
	defaultBanksErr  error
)

func decode(data []byte, ext string, out any) error {
	ext = strings.ToLower(ext)
	if ext == ".yml" {
		ext = ".yaml"
	}
	if ext != ".yaml" && ext != ".json" {
		if strings.HasPrefix(strings.TrimLeft(string(data), " \t\r\n"), "{") {
			ext = ".json"
		} else {
			ext = ".yaml"
		}
	}
	if ext == ".json" {
		return json.Unmarshal(data, out)
	}
	return yaml.Unmarshal(data, out)
}

// LoadRules reads a rulebook from a YAML or JSON file. Format is detected by
// extension, falling back to content sniffing for extensionless paths.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read blend rules: %w", err)
	}
	var rules Rules
	if err := decode(data, filepath.Ext(path), &rules); err != nil {
		return Rules{}, fmt.Errorf("parse blend rules %q: %w", path, err)
	}
	return rules, nil
}

func loadArtifact[T any](path, label string) (T, error) {
	var out T
	data, err := os.ReadFile(path)
	if err != nil {
		return out, fmt.Errorf("read %s: %w", label, err)
	}
	if err := decode(data, filepath.Ext(path), &out); err != nil {
		return out, fmt.Errorf("parse %s %q: %w", label, path, err)
	}
	return out, nil
}

// LoadSchemaBank reads a schema bank from a YAML or JSON file.
func LoadSchemaBank(path string) (SchemaBank, error) {
	return loadArtifact[SchemaBank](path, "schema bank")
}

// LoadMetaphorBank reads a metaphor bank from a YAML or JSON file.
func LoadMetaphorBank(path string) (MetaphorBank, error) {
	return loadArtifact[MetaphorBank](path, "metaphor bank")
}

// LoadFrameBank reads a frame bank from a YAML or JSON file.
func LoadFrameBank(path string) (FrameBank, error) {
	return loadArtifact[FrameBank](path, "frame bank")
}

// DefaultRules returns the embedded curated rulebook. The parse happens once;
// the engine itself never caches, so hot-reload policy stays in this loader.
func DefaultRules() (Rules, error) {
	defaultRulesOnce.Do(func() {
		data, err := bibleFS.ReadFile(RulesFile)
		if err != nil {
			defaultRulesErr = fmt.Errorf("embedded blend rules: %w", err)
			return
		}
		if err := yaml.Unmarshal(data, &defaultRules); err != nil {
			defaultRulesErr = fmt.Errorf("parse embedded blend rules: %w", err)
		}
	})
	return defaultRules, defaultRulesErr
}

// DefaultBanks returns the embedded schema, metaphor and frame banks.
func DefaultBanks() (SchemaBank, MetaphorBank, FrameBank, error) {
	defaultBanksOnce.Do(func() {
		load := func(name string, out any) {
			if defaultBanksErr != nil {
				return
			}
			data, err := bibleFS.ReadFile(name)
			if err != nil {
				defaultBanksErr = fmt.Errorf("embedded %s: %w", name, err)
				return
			}
			if err := yaml.Unmarshal(data, out); err != nil {
				defaultBanksErr = fmt.Errorf("parse embedded %s: %w", name, err)
			}
		}
		load(SchemasFile, &defaultSchemas)
		load(MetaphorsFile, &defaultMetaphors)
		load(FramesFile, &defaultFrames)
	})
	return defaultSchemas, defaultMetaphors, defaultFrames, defaultBanksErr
}
