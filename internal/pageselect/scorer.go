package pageselect

import (
	"fmt"
	"regexp"
	"strings"
)

// Default signed weights for the scoring pattern groups.
const (
	DefaultTableWeight      = 10
	DefaultDataWeight       = 5
	DefaultReferenceWeight  = -5
	DefaultSimulationWeight = -10
	DefaultBaseWeight       = 1
)

// Default pattern groups. Tables and specimen/unit-bearing text pull a page
// up; citation markers and simulation-only language push it down.
var (
	DefaultTablePatterns = []string{
		`(?i)Table\s+\d+`,
		`(?i)Tab\.\s*\d+`,
	}
	DefaultDataPatterns = []string{
		`(?i)Specimen`,
		`(?i)Experimental`,
		`(?i)Test\s+results?`,
		`\d+\.\d+\s*mm`,
		`(?i)\bMPa\b`,
		`(?i)\bkN\b`,
	}
	DefaultReferencePatterns = []string{
		`(?i)References?`,
		`\[[\d,\s]+\]`,
	}
	DefaultSimulationPatterns = []string{
		`(?i)finite\s+element`,
		`(?i)\bFE[AM]?\s+model`,
		`(?i)ABAQUS|ANSYS`,
	}
)

// ScoreConfig is the scoring configuration as loaded from file/env. Zero
// values mean "use the default"; an explicitly empty pattern group disables
// that group.
type ScoreConfig struct {
	TableWeight        int      `yaml:"table_weight" json:"table_weight"`
	DataWeight         int      `yaml:"data_weight" json:"data_weight"`
	ReferenceWeight    int      `yaml:"reference_weight" json:"reference_weight"`
	SimulationWeight   int      `yaml:"simulation_weight" json:"simulation_weight"`
	BaseWeight         int      `yaml:"base_weight" json:"base_weight"`
	TablePatterns      []string `yaml:"table_patterns" json:"table_patterns"`
	DataPatterns       []string `yaml:"data_patterns" json:"data_patterns"`
	ReferencePatterns  []string `yaml:"reference_patterns" json:"reference_patterns"`
	SimulationPatterns []string `yaml:"simulation_patterns" json:"simulation_patterns"`
}

func (c *ScoreConfig) applyDefaults() {
	if c.TableWeight == 0 {
		c.TableWeight = DefaultTableWeight
	}
	if c.DataWeight == 0 {
		c.DataWeight = DefaultDataWeight
	}
	if c.ReferenceWeight == 0 {
		c.ReferenceWeight = DefaultReferenceWeight
	}
	if c.SimulationWeight == 0 {
		c.SimulationWeight = DefaultSimulationWeight
	}
	if c.BaseWeight == 0 {
		c.BaseWeight = DefaultBaseWeight
	}
	if c.TablePatterns == nil {
		c.TablePatterns = DefaultTablePatterns
	}
	if c.DataPatterns == nil {
		c.DataPatterns = DefaultDataPatterns
	}
	if c.ReferencePatterns == nil {
		c.ReferencePatterns = DefaultReferencePatterns
	}
	if c.SimulationPatterns == nil {
		c.SimulationPatterns = DefaultSimulationPatterns
	}
}

// patternGroup is one compiled set of patterns with its signed weight.
type patternGroup struct {
	weight   int
	patterns []*regexp.Regexp
}

// Scorer scores page text with pre-compiled patterns. Compiled once at load
// time; Score is pure and safe for concurrent use.
type Scorer struct {
	groups     []patternGroup
	baseWeight int
}

// NewScorer validates and compiles a scoring configuration. Invalid regex
// patterns are a configuration error, reported once here rather than on
// every page.
func NewScorer(cfg ScoreConfig) (*Scorer, error) {
	cfg.applyDefaults()

	s := &Scorer{baseWeight: cfg.BaseWeight}
	for _, g := range []struct {
		name     string
		weight   int
		patterns []string
	}{
		{"table_patterns", cfg.TableWeight, cfg.TablePatterns},
		{"data_patterns", cfg.DataWeight, cfg.DataPatterns},
		{"reference_patterns", cfg.ReferenceWeight, cfg.ReferencePatterns},
		{"simulation_patterns", cfg.SimulationWeight, cfg.SimulationPatterns},
	} {
		compiled := make([]*regexp.Regexp, 0, len(g.patterns))
		for _, p := range g.patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("%s: compile %q: %w", g.name, p, err)
			}
			compiled = append(compiled, re)
		}
		if len(compiled) > 0 {
			s.groups = append(s.groups, patternGroup{weight: g.weight, patterns: compiled})
		}
	}
	return s, nil
}

// Score rates one page's text. Every pattern match counts (not just
// presence) at its group's signed weight; non-empty text additionally earns
// baseWeight per 10 words, minimum one base point. Empty or whitespace-only
// text scores exactly 0.
func (s *Scorer) Score(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	score := 0
	for _, g := range s.groups {
		for _, re := range g.patterns {
			score += len(re.FindAllStringIndex(text, -1)) * g.weight
		}
	}

	base := len(strings.Fields(text)) / 10 * s.baseWeight
	if base < s.baseWeight {
		base = s.baseWeight
	}
	return score + base
}
