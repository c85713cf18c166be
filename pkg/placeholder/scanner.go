// Package placeholder finds {{identifier}} tokens in template XML and
// normalizes them. The editor round-trip and the template author's layout
// pass routinely insert run and paragraph markup between the braces and the
// identifier; the scanner skips XML tags wholesale so a token split across
// markup still normalizes to a clean {{identifier}}.
package placeholder

import (
	"regexp"
	"strings"
)

// TokenPattern matches a normalized placeholder token and captures its
// identifier.
var TokenPattern = regexp.MustCompile(`\{\{([A-Za-z0-9_]+)\}\}`)

// danglingPattern matches an opened token that never closes: the double
// brace, optional markup noise, and an identifier fragment.
var danglingPattern = regexp.MustCompile(`\{\{[A-Za-z0-9_]*`)

// identPattern validates a stripped token body.
var identPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Normalize rewrites every tag-interleaved placeholder in source to the
// canonical {{identifier}} form, discarding the markup that was interleaved
// inside the token. Spans that open like a token but do not resolve to a
// valid identifier, or that never close, are emitted unchanged. Returns the
// rewritten XML and the number of tokens normalized.
func Normalize(source string) (string, int) {
	var out strings.Builder
	out.Grow(len(source))

	count := 0
	i := 0
	for i < len(source) {
		if source[i] != '{' {
			out.WriteByte(source[i])
			i++
			continue
		}

		identifier, end, ok := scanToken(source, i)
		if !ok {
			out.WriteByte(source[i])
			i++
			continue
		}
		if !identPattern.MatchString(identifier) {
			// Not a placeholder; keep the span byte for byte.
			out.WriteString(source[i:end])
			i = end
			continue
		}

		out.WriteString("{{")
		out.WriteString(identifier)
		out.WriteString("}}")
		count++
		i = end
	}

	return out.String(), count
}

// scanToken attempts to read one token starting at the '{' at source[start].
// It skips XML tags and whitespace between the outer braces and strips them
// from the identifier. Returns the stripped token body, the index just past
// the closing braces, and whether a complete {{...}} span was found.
func scanToken(source string, start int) (identifier string, end int, ok bool) {
	// Second '{', allowing tags and whitespace in between.
	i := skipNoise(source, start+1)
	if i >= len(source) || source[i] != '{' {
		return "", 0, false
	}
	i++

	var body strings.Builder
	for i < len(source) {
		switch source[i] {
		case '<':
			close := strings.IndexByte(source[i:], '>')
			if close < 0 {
				return "", 0, false
			}
			i += close + 1

		case '}':
			j := skipNoise(source, i+1)
			if j < len(source) && source[j] == '}' {
				return body.String(), j + 1, true
			}
			// Lone closing brace belongs to the body.
			body.WriteByte('}')
			i++

		case ' ', '\t', '\n', '\r':
			i++

		default:
			body.WriteByte(source[i])
			i++
		}
	}
	return "", 0, false
}

// skipNoise advances past XML tags and whitespace starting at i.
func skipNoise(source string, i int) int {
	for i < len(source) {
		switch source[i] {
		case '<':
			close := strings.IndexByte(source[i:], '>')
			if close < 0 {
				return len(source)
			}
			i += close + 1
		case ' ', '\t', '\n', '\r':
			i++
		default:
			return i
		}
	}
	return i
}

// Identifiers returns the distinct identifiers of all normalized tokens in
// source, in first-appearance order. Callers normalize first.
func Identifiers(source string) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, match := range TokenPattern.FindAllStringSubmatch(source, -1) {
		if !seen[match[1]] {
			seen[match[1]] = true
			ids = append(ids, match[1])
		}
	}
	return ids
}

// StripUnresolved deletes every remaining well-formed token and every
// dangling open token from source, returning the cleaned XML and how many
// spans were removed. A partially filled document is preferred over visible
// placeholder residue.
func StripUnresolved(source string) (string, int) {
	count := 0
	source = TokenPattern.ReplaceAllStringFunc(source, func(string) string {
		count++
		return ""
	})
	source = danglingPattern.ReplaceAllStringFunc(source, func(string) string {
		count++
		return ""
	})
	return source, count
}
