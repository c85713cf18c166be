// Package section assigns prose paragraphs between content-tree nodes to
// narrative record keys. A small state machine walks the tree in order:
// section-start patterns open a section, terminator patterns close it, and
// everything else is appended to the open section as a refined paragraph.
package section

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/thegrantai/hwpxgen/pkg/content"
	"github.com/thegrantai/hwpxgen/pkg/field"
	"github.com/thegrantai/hwpxgen/pkg/refine"
)

// StartRule opens the section for Key when its pattern matches a node's
// text. The header text itself is discarded, never appended to the body.
type StartRule struct {
	Pattern string `yaml:"pattern"`
	Key     string `yaml:"key"`

	compiled *regexp.Regexp
}

// TerminatorRule closes the open section without starting a new one.
// Typically a table-introducing header.
type TerminatorRule struct {
	Pattern string `yaml:"pattern"`

	compiled *regexp.Regexp
}

// Config holds the compiled pattern tables. Start rules are tested before
// terminators; within each list, order is the tie-break when two patterns
// could match the same text.
type Config struct {
	Starts      []StartRule      `yaml:"starts"`
	Terminators []TerminatorRule `yaml:"terminators"`
}

// DefaultConfig returns the built-in pattern tables for the grant template
// family.
func DefaultConfig() *Config {
	cfg := &Config{
		Starts: []StartRule{
			{Pattern: `^1\s*-\s*1[.)]?(\s|$)`, Key: field.KeyProbNecessity},
			{Pattern: `^1\s*-\s*2[.)]?(\s|$)`, Key: field.KeyProbMarket},
			{Pattern: `^2\s*-\s*1[.)]?(\s|$)`, Key: field.KeySolutionStatus},
			{Pattern: `^2\s*-\s*2[.)]?(\s|$)`, Key: field.KeySolutionPlan},
			{Pattern: `^3\s*-\s*1[.)]?(\s|$)`, Key: field.KeyGrowthStrategy},
			{Pattern: `^3\s*-\s*2[.)]?(\s|$)`, Key: field.KeyMarketEntry},
			{Pattern: `^3\s*-\s*3[.)]?(\s|$)`, Key: field.KeyFundingPlan},
			{Pattern: `^4\s*-\s*1[.)]?(\s|$)`, Key: field.KeyTeamCapability},
			{Pattern: `^(사업\s*)?아이템\s*개요`, Key: field.KeyItemSummary},
			{Pattern: `^(창업\s*동기|추진\s*배경)`, Key: field.KeyItemMotivation},
		},
		Terminators: []TerminatorRule{
			{Pattern: `^<\s*1단계`},
			{Pattern: `^<\s*2단계`},
			{Pattern: `정부지원사업비`},
			{Pattern: `사업비\s*구성`},
			{Pattern: `팀\s*구성`},
			{Pattern: `협업\s*파트너`},
			{Pattern: `(사업\s*)?추진\s*일정`},
			// Numbered header that is not a known section start still ends
			// the current section, so trailing prose cannot bleed into it.
			{Pattern: `^\d+\s*-\s*\d+[.)]?(\s|$)`},
		},
	}
	if err := cfg.Compile(); err != nil {
		// Built-in patterns are constants; a compile failure is a bug.
		panic(err)
	}
	return cfg
}

// LoadConfig reads pattern tables from a YAML file and compiles them.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading section patterns %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing section patterns %s: %w", path, err)
	}
	if err := cfg.Compile(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Compile compiles every pattern in the config.
func (c *Config) Compile() error {
	for i := range c.Starts {
		re, err := regexp.Compile(c.Starts[i].Pattern)
		if err != nil {
			return fmt.Errorf("compiling start pattern %q: %w", c.Starts[i].Pattern, err)
		}
		if c.Starts[i].Key == "" {
			return fmt.Errorf("start pattern %q has no target key", c.Starts[i].Pattern)
		}
		c.Starts[i].compiled = re
	}
	for i := range c.Terminators {
		re, err := regexp.Compile(c.Terminators[i].Pattern)
		if err != nil {
			return fmt.Errorf("compiling terminator pattern %q: %w", c.Terminators[i].Pattern, err)
		}
		c.Terminators[i].compiled = re
	}
	return nil
}

// Extract walks the tree and appends refined prose to the record's narrative
// keys. Tables are skipped entirely; classifiers own them.
func (c *Config) Extract(tree *content.Tree, record field.Record) {
	currentKey := ""

	for _, node := range tree.Nodes {
		if node.IsTable() {
			continue
		}
		text := refine.Refine(node.Text())
		if text == "" {
			continue
		}

		if key, ok := c.matchStart(text); ok {
			currentKey = key
			continue
		}
		if c.matchTerminator(text) {
			currentKey = ""
			continue
		}
		if currentKey != "" {
			record.AppendParagraph(currentKey, text)
		}
	}
}

func (c *Config) matchStart(text string) (string, bool) {
	for _, rule := range c.Starts {
		if rule.compiled.MatchString(text) {
			return rule.Key, true
		}
	}
	return "", false
}

func (c *Config) matchTerminator(text string) bool {
	for _, rule := range c.Terminators {
		if rule.compiled.MatchString(text) {
			return true
		}
	}
	return false
}
