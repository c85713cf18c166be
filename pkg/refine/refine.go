// Package refine normalizes extracted prose into a uniform narrative voice:
// bullet and enumerator markers are stripped from line starts and a small
// fixed set of ordinal connectives is rewritten. Refinement is idempotent.
package refine

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// bulletPattern matches leading bullet markers the editor emits.
	bulletPattern = regexp.MustCompile(`^[•∙◦▪‣·\-*]+\s*`)

	// enumeratorPattern matches leading numeric enumerators: "1.", "1)",
	// "(1)", "1-", and circled digits.
	enumeratorPattern = regexp.MustCompile(`^(\(\d{1,2}\)|\d{1,2}[.)])\s*`)

	// circledDigitPattern matches the circled-digit enumerators ①–⑮.
	circledDigitPattern = regexp.MustCompile(`^[①-⑮]\s*`)

	// koreanOrdinalPattern matches single-syllable Korean list markers like
	// "가." or "나)".
	koreanOrdinalPattern = regexp.MustCompile(`^[가나다라마바사][.)]\s*`)
)

// connectiveRewrites maps colloquial ordinal connectives at line start to
// the canonical narrative form. The rewritten forms match none of the
// marker patterns, which keeps Refine idempotent.
var connectiveRewrites = []struct {
	from string
	to   string
}{
	{"하나)", "첫째,"},
	{"하나,", "첫째,"},
	{"둘)", "둘째,"},
	{"셋)", "셋째,"},
	{"넷)", "넷째,"},
	{"다섯)", "다섯째,"},
}

// Refine normalizes one block of extracted prose. Each line is Unicode
// NFC-normalized, stripped of leading bullet/enumerator markers, and has
// its ordinal connectives canonicalized. Refine(Refine(s)) == Refine(s).
func Refine(text string) string {
	if text == "" {
		return ""
	}

	lines := strings.Split(norm.NFC.String(text), "\n")
	for i, line := range lines {
		lines[i] = refineLine(line)
	}
	return strings.Join(lines, "\n")
}

func refineLine(line string) string {
	line = strings.TrimSpace(line)

	// Strip stacked markers ("1. • text") until the line start is stable;
	// a single pass would leave the inner marker and break idempotency.
	for {
		stripped := bulletPattern.ReplaceAllString(line, "")
		stripped = enumeratorPattern.ReplaceAllString(stripped, "")
		stripped = circledDigitPattern.ReplaceAllString(stripped, "")
		stripped = koreanOrdinalPattern.ReplaceAllString(stripped, "")
		if stripped == line {
			break
		}
		line = stripped
	}

	for _, rw := range connectiveRewrites {
		if strings.HasPrefix(line, rw.from) {
			rest := strings.TrimSpace(strings.TrimPrefix(line, rw.from))
			if rest == "" {
				line = rw.to
			} else {
				line = rw.to + " " + rest
			}
			break
		}
	}

	return strings.TrimSpace(line)
}
