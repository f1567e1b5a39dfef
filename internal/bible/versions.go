package bible

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"gopkg.in/yaml.v3"
)

// ArtifactVersion describes one embedded bible artifact.
type ArtifactVersion struct {
	Version string `json:"version"`
	SHA256  string `json:"sha256"` // first 12 hex chars, enough to spot drift
}

// Versions reports the version string and content hash of every embedded
// bible artifact, keyed by artifact name. Used by the CLI and the API so
// callers can tell which curated data produced a decision.
func Versions() map[string]ArtifactVersion {
	files := map[string]string{
		"blend_rules": RulesFile,
		"schemas":     SchemasFile,
		"metaphors":   MetaphorsFile,
		"frames":      FramesFile,
	}
	out := make(map[string]ArtifactVersion, len(files))
	for name, file := range files {
		data, err := bibleFS.ReadFile(file)
		if err != nil {
			continue
		}
		sum := sha256.Sum256(data)
		out[name] = ArtifactVersion{
			Version: versionField(data),
			SHA256:  hex.EncodeToString(sum[:])[:12],
		}
	}
	return out
}

func versionField(data []byte) string {
	var doc struct {
		Version string `yaml:"version"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Version)
}
