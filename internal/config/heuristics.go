package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// PathZone is one named risk zone: a set of glob patterns and the weight
// applied when a file path matches one of them (spec §6).
type PathZone struct {
	Patterns []string `json:"patterns"`
	Weight   float64  `json:"weight"`
}

// Heuristics centralizes the opinionated defaults spec §9 calls out as
// "appear to be opinionated defaults rather than specifications" — an
// API-prefix allowlist and utility-path patterns for risk scoring — in one
// place, overridable via the two .roam/ JSON tables (spec §6).
type Heuristics struct {
	DomainWeights map[string]float64  `json:"-"`
	PathZones     map[string]PathZone `json:"-"`

	// APIPrefixes upgrades a "safe-delete" verdict to "REVIEW" when a
	// symbol's qualified name starts with one of these (spec §9).
	APIPrefixes []string `json:"-"`
	// UtilityPathPatterns mark files as infra/utility code for health
	// threshold purposes (spec §9).
	UtilityPathPatterns []string `json:"-"`
}

// DefaultHeuristics is the hard-coded baseline, used for any key absent
// from the override files.
func DefaultHeuristics() *Heuristics {
	return &Heuristics{
		DomainWeights: map[string]float64{
			"auth": 2.0, "security": 2.0, "payment": 2.5, "billing": 2.5,
			"crypto": 2.0, "admin": 1.5, "migration": 1.8, "schema": 1.5,
		},
		PathZones: map[string]PathZone{
			"core":  {Patterns: []string{"**/core/**", "**/internal/**"}, Weight: 1.5},
			"tests": {Patterns: []string{"**/*_test.go", "**/test/**", "**/tests/**"}, Weight: 0.3},
			"vendor": {Patterns: []string{"**/vendor/**", "**/node_modules/**"}, Weight: 0.1},
		},
		APIPrefixes:         []string{"Public", "Api", "Exported"},
		UtilityPathPatterns: []string{"**/utils/**", "**/util/**", "**/helpers/**", "**/lib/**"},
	}
}

// LoadHeuristics merges domain-weights.json and path-zones.json from
// root/.roam/ over the defaults, ignoring either file when absent (spec §6:
// "Two optional JSON files ... let users override defaults").
func LoadHeuristics(root string) (*Heuristics, error) {
	h := DefaultHeuristics()
	configDir := filepath.Join(root, ".roam")

	if weights, err := loadDomainWeights(filepath.Join(configDir, "domain-weights.json")); err != nil {
		return nil, err
	} else if weights != nil {
		for k, v := range weights {
			h.DomainWeights[strings.ToLower(k)] = v
		}
	}

	if zones, err := loadPathZones(filepath.Join(configDir, "path-zones.json")); err != nil {
		return nil, err
	} else if zones != nil {
		for k, v := range zones {
			h.PathZones[k] = v
		}
	}

	return h, nil
}

func loadDomainWeights(path string) (map[string]float64, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var weights map[string]float64
	if err := json.Unmarshal(data, &weights); err != nil {
		return nil, err
	}
	return weights, nil
}

func loadPathZones(path string) (map[string]PathZone, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var zones map[string]PathZone
	if err := json.Unmarshal(data, &zones); err != nil {
		return nil, err
	}
	return zones, nil
}

// ZoneWeight returns the highest weight among every zone whose pattern set
// matches filePath, or 1.0 when no zone matches.
func (h *Heuristics) ZoneWeight(filePath string) float64 {
	weight := 1.0
	matched := false
	for _, zone := range h.PathZones {
		for _, pattern := range zone.Patterns {
			if ok, _ := doublestar.Match(pattern, filePath); ok {
				if !matched || zone.Weight > weight {
					weight = zone.Weight
				}
				matched = true
			}
		}
	}
	return weight
}

// DomainWeight returns the configured weight for a lowercase keyword, or 1
// when the keyword isn't in the table.
func (h *Heuristics) DomainWeight(keyword string) float64 {
	if w, ok := h.DomainWeights[strings.ToLower(keyword)]; ok {
		return w
	}
	return 1.0
}

// IsUtilityPath reports whether filePath matches one of the configured
// utility-path patterns (spec §9's health-threshold heuristic).
func (h *Heuristics) IsUtilityPath(filePath string) bool {
	for _, pattern := range h.UtilityPathPatterns {
		if ok, _ := doublestar.Match(pattern, filePath); ok {
			return true
		}
	}
	return false
}

// HasAPIPrefix reports whether a qualified name starts with one of the
// configured API-prefix allowlist entries (spec §9's safe-delete->REVIEW
// upgrade heuristic).
func (h *Heuristics) HasAPIPrefix(qualifiedName string) bool {
	for _, prefix := range h.APIPrefixes {
		if strings.HasPrefix(qualifiedName, prefix) {
			return true
		}
	}
	return false
}
