// Package inject substitutes extracted record values into a template's XML
// parts: placeholder replacement with paragraph splitting and escaping,
// checkbox-style single-choice marking, and removal of stale line-layout
// caches.
package inject

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/thegrantai/hwpxgen/pkg/budget"
	"github.com/thegrantai/hwpxgen/pkg/field"
	"github.com/thegrantai/hwpxgen/pkg/placeholder"
)

// DefaultPrefix is the namespace prefix assumed when a part declares none.
const DefaultPrefix = "hp"

// prefixPattern finds the namespace prefix actually used for paragraph
// elements in a template part. Templates vary; never assume a fixed prefix.
var prefixPattern = regexp.MustCompile(`<([A-Za-z][A-Za-z0-9]*):p[\s>]`)

// xmlEscaper escapes text content for embedding in XML. A single pass, so
// already-written ampersands in values do not double-escape.
var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// newlineSplitter splits on any newline variant.
var newlineSplitter = regexp.MustCompile(`\r\n|\r|\n`)

// Checkbox marker characters for single-choice groups.
const (
	markSelected   = "☑ "
	markUnselected = "☐ "
)

// ChoiceGroup is one checkbox-style single-choice group: the record key
// holding the selected value and the literal option strings as they appear
// in the template.
type ChoiceGroup struct {
	Key     string
	Options []string
}

// ChoiceGroups enumerates the template's three single-choice groups.
func ChoiceGroups() []ChoiceGroup {
	return []ChoiceGroup{
		{Key: field.KeySupportField, Options: []string{"제조", "지식서비스", "융복합"}},
		{Key: field.KeyTechField, Options: []string{
			"기계·소재", "전기·전자", "정보·통신", "화공·섬유",
			"바이오·의료", "에너지·자원", "공예·디자인",
		}},
		{Key: field.KeyRegionType, Options: budget.RegionLabels()},
	}
}

// Stats reports what one injection pass did to a part.
type Stats struct {
	NormalizedTokens int
	ReplacedTokens   int
	StrippedTokens   int
	Unresolved       []string
}

// DetectPrefix returns the namespace prefix of the part's paragraph
// elements, or DefaultPrefix when the part has none.
func DetectPrefix(xmlPart string) string {
	if match := prefixPattern.FindStringSubmatch(xmlPart); match != nil {
		return match[1]
	}
	return DefaultPrefix
}

// Inject runs the full substitution pass over one XML part: token
// normalization, value substitution with paragraph splitting, checkbox
// marking, unresolved-token removal, and layout-cache stripping.
func Inject(xmlPart string, record field.Record, prefix string) (string, Stats) {
	if prefix == "" {
		prefix = DetectPrefix(xmlPart)
	}

	var stats Stats
	xmlPart, stats.NormalizedTokens = placeholder.Normalize(xmlPart)

	seen := make(map[string]bool)
	xmlPart = placeholder.TokenPattern.ReplaceAllStringFunc(xmlPart, func(token string) string {
		identifier := token[2 : len(token)-2]
		value := record.Get(identifier)
		if value == "" {
			if !seen[identifier] {
				seen[identifier] = true
				stats.Unresolved = append(stats.Unresolved, identifier)
			}
			stats.StrippedTokens++
			return ""
		}
		stats.ReplacedTokens++
		return renderValue(value, prefix)
	})

	xmlPart = applyChoiceGroups(xmlPart, record)

	// Anything still brace-shaped is residue from a malformed template.
	var stripped int
	xmlPart, stripped = placeholder.StripUnresolved(xmlPart)
	stats.StrippedTokens += stripped

	xmlPart = stripLineSegArrays(xmlPart, prefix)
	return xmlPart, stats
}

// renderValue escapes a record value and turns embedded line breaks into
// real paragraph boundaries in the target schema. A value with k newlines
// yields k+1 paragraph-element sequences, not one run holding literal \n.
func renderValue(value string, prefix string) string {
	lines := newlineSplitter.Split(value, -1)
	for i, line := range lines {
		lines[i] = xmlEscaper.Replace(line)
	}
	boundary := fmt.Sprintf("</%[1]s:t></%[1]s:run></%[1]s:p><%[1]s:p><%[1]s:run><%[1]s:t>", prefix)
	return strings.Join(lines, boundary)
}

// applyChoiceGroups prefixes each group's option literals with the selected
// or unselected checkbox marker. Options are matched both in their
// middle-dot spelling and the period variant some template revisions carry.
func applyChoiceGroups(xmlPart string, record field.Record) string {
	for _, group := range ChoiceGroups() {
		selected := canonicalOption(record.Get(group.Key))
		for _, option := range group.Options {
			mark := markUnselected
			if selected != "" && canonicalOption(option) == selected {
				mark = markSelected
			}
			for _, variant := range optionVariants(option) {
				xmlPart = strings.ReplaceAll(xmlPart, variant, mark+variant)
			}
		}
	}
	return xmlPart
}

// optionVariants returns the distinct spellings an option may have in the
// template: the canonical middle-dot form and the period form.
func optionVariants(option string) []string {
	variants := []string{option}
	if period := strings.ReplaceAll(option, "·", "."); period != option {
		variants = append(variants, period)
	}
	return variants
}

// canonicalOption normalizes an option string for comparison: whitespace
// removed, period spelling folded to the middle dot.
func canonicalOption(s string) string {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ".", "·")
	return s
}

// stripLineSegArrays removes cached line-layout elements. The cache was
// computed against the original placeholder text; after substitution it is
// stale, and the consuming application renders corrupted text unless it is
// absent and recomputed lazily.
func stripLineSegArrays(xmlPart string, prefix string) string {
	quoted := regexp.QuoteMeta(prefix)
	pattern := regexp.MustCompile(
		`(?s)<` + quoted + `:linesegarray\b[^>]*/>|<` + quoted + `:linesegarray\b[^>]*>.*?</` + quoted + `:linesegarray>`,
	)
	return pattern.ReplaceAllString(xmlPart, "")
}
