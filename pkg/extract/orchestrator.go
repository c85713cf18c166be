// Package extract runs field extraction over one content tree: table
// classification, row mapping, narrative section assignment, and default
// back-fill, producing the fully-keyed record that template injection
// consumes.
package extract

import (
	"strings"

	"github.com/thegrantai/hwpxgen/pkg/classify"
	"github.com/thegrantai/hwpxgen/pkg/content"
	"github.com/thegrantai/hwpxgen/pkg/field"
	"github.com/thegrantai/hwpxgen/pkg/section"
)

// Options configures one extraction run. Zero-value fields take the
// built-in defaults.
type Options struct {
	// Signatures overrides the table classification signatures.
	Signatures []classify.Signature

	// Sections overrides the narrative pattern tables.
	Sections *section.Config
}

// Stats summarizes what one extraction run found. Unclassified tables are
// skipped; the count lets callers surface a diagnostic without changing the
// best-effort completion behavior.
type Stats struct {
	Tables             int
	ClassifiedTables   int
	UnclassifiedTables int
	EmptyFields        int
}

// Extract derives a complete record from the content tree. Every enumerable
// key exists in the result; keys nothing matched remain empty strings.
func Extract(tree *content.Tree, opts *Options) (field.Record, Stats) {
	if opts == nil {
		opts = &Options{}
	}
	signatures := opts.Signatures
	if signatures == nil {
		signatures = classify.DefaultSignatures()
	}
	sections := opts.Sections
	if sections == nil {
		sections = section.DefaultConfig()
	}

	record := field.NewRecord()
	tables := tree.Tables()
	classified := classify.Classify(tables, signatures)

	if table, ok := classified[classify.RoleOverview]; ok {
		classify.ExtractOverview(table, record)
	}
	if table, ok := classified[classify.RoleBudgetStage1]; ok {
		classify.ExtractBudget(table, field.StageOne, record)
	}
	if table, ok := classified[classify.RoleBudgetStage2]; ok {
		classify.ExtractBudget(table, field.StageTwo, record)
	}
	if table, ok := classified[classify.RoleTeam]; ok {
		classify.ExtractTeam(table, record)
	}
	if table, ok := classified[classify.RolePartner]; ok {
		classify.ExtractPartner(table, record)
	}
	if table, ok := classified[classify.RoleSchedule]; ok {
		classify.ExtractSchedule(table, record)
	}

	sections.Extract(tree, record)
	backfill(tree, record)

	stats := Stats{
		Tables:           len(tables),
		ClassifiedTables: len(classified),
	}
	stats.UnclassifiedTables = stats.Tables - stats.ClassifiedTables
	for _, key := range field.Keys() {
		if record.Get(key) == "" {
			stats.EmptyFields++
		}
	}
	return record, stats
}

// backfill fills headline keys that extraction left empty from whatever the
// tree does carry, so the exported document never opens on a blank title.
func backfill(tree *content.Tree, record field.Record) {
	if record.Get(field.KeyItemName) == "" {
		record.Set(field.KeyItemName, firstLine(tree))
	}
	if record.Get(field.KeyItemSummary) == "" {
		for _, key := range []string{field.KeyProbNecessity, field.KeySolutionStatus} {
			if value := record.Get(key); value != "" {
				record.Set(field.KeyItemSummary, firstParagraph(value))
				break
			}
		}
	}
}

// firstLine returns the first non-empty non-header line of the tree's text,
// truncated to a title-sized length.
func firstLine(tree *content.Tree) string {
	source := tree.PlainText
	if source == "" {
		for _, node := range tree.Nodes {
			if text := node.Text(); text != "" {
				source = text
				break
			}
		}
	}
	for _, line := range strings.Split(source, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		return truncateRunes(line, 40)
	}
	return ""
}

func firstParagraph(value string) string {
	if i := strings.Index(value, "\n\n"); i >= 0 {
		value = value[:i]
	}
	return truncateRunes(strings.TrimSpace(value), 200)
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
