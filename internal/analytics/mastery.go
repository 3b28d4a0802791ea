package analytics

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed patterns.yaml
var defaultCatalog []byte

type CatalogPattern struct {
	Name        string `yaml:"name" json:"name"`
	Target      int    `yaml:"target" json:"target"`
	Description string `yaml:"description" json:"description"`
}

type Catalog []CatalogPattern

const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
	LevelExpert       = "Expert"
)

type PatternMastery struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Target      int    `json:"target"`
	Solved      int    `json:"solved"`
	Progress    int    `json:"progress"` // 0-100
	Remaining   int    `json:"remaining"`
	Level       string `json:"level"`
}

type MasteryReport struct {
	Patterns []PatternMastery `json:"patterns"`
	// Coverage is the share of catalog patterns with at least one solve, 0-100.
	Coverage      int `json:"coverage"`
	Uncategorized int `json:"uncategorized"`
}

// DefaultCatalog returns the built-in pattern catalog.
func DefaultCatalog() Catalog {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic("analytics: bad embedded catalog: " + err.Error())
	}
	return c
}

// LoadCatalog reads a catalog file. An empty path yields the default catalog.
func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pattern catalog: %w", err)
	}
	return ParseCatalog(raw)
}

func ParseCatalog(raw []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("unmarshal pattern catalog: %w", err)
	}
	for _, p := range c {
		if p.Name == "" || p.Target <= 0 {
			return nil, fmt.Errorf("pattern catalog: entry %q needs a name and a positive target", p.Name)
		}
	}
	return c, nil
}

// Mastery scores each catalog pattern against patternCounts.
// uncategorized is the number of problems without a pattern.
func Mastery(patternCounts map[string]int, catalog Catalog, uncategorized int) MasteryReport {
	report := MasteryReport{
		Patterns:      make([]PatternMastery, 0, len(catalog)),
		Uncategorized: uncategorized,
	}
	touched := 0
	for _, p := range catalog {
		solved := patternCounts[p.Name]
		if solved > 0 {
			touched++
		}
		progress := int(math.Round(float64(solved) / float64(p.Target) * 100))
		if progress > 100 {
			progress = 100
		}
		remaining := p.Target - solved
		if remaining < 0 {
			remaining = 0
		}
		report.Patterns = append(report.Patterns, PatternMastery{
			Name:        p.Name,
			Description: p.Description,
			Target:      p.Target,
			Solved:      solved,
			Progress:    progress,
			Remaining:   remaining,
			Level:       level(progress),
		})
	}
	if len(catalog) > 0 {
		report.Coverage = int(math.Round(float64(touched) / float64(len(catalog)) * 100))
	}
	return report
}

func level(progress int) string {
	switch {
	case progress >= 80:
		return LevelExpert
	case progress >= 60:
		return LevelAdvanced
	case progress >= 30:
		return LevelIntermediate
	default:
		return LevelBeginner
	}
}
