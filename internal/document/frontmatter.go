package document

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Overrides are per-document settings carried in YAML frontmatter.
// Each field, when set, wins over the config file and flags for that
// document only.
type Overrides struct {
	ExhibitsRoot string `yaml:"exhibits_root"`
	Viewer       string `yaml:"viewer"`
}

// frontmatterEnd returns the byte offset just past the closing ---
// line, or 0 when the document has no frontmatter. Frontmatter is
// only recognized when the very first line is ---.
func frontmatterEnd(content []byte) int {
	s := string(content)
	lines := strings.SplitAfter(s, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return 0
	}
	end := len(lines[0])
	for _, line := range lines[1:] {
		end += len(line)
		if strings.TrimSpace(line) == "---" {
			return end
		}
	}
	return 0 // unclosed: treat as body text
}

func parseOverrides(content []byte) (Overrides, error) {
	var ov Overrides
	end := frontmatterEnd(content)
	if end == 0 {
		return ov, nil
	}
	s := string(content[:end])
	// Strip the delimiter lines before handing the block to YAML.
	s = strings.TrimPrefix(s, "---")
	if i := strings.LastIndex(s, "---"); i >= 0 {
		s = s[:i]
	}
	if err := yaml.Unmarshal([]byte(s), &ov); err != nil {
		return ov, fmt.Errorf("parse frontmatter: %w", err)
	}
	return ov, nil
}
