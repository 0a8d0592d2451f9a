package ingest

import (
	"regexp"
	"strings"
)

// FallbackTitle is used when a title is empty after cleanup.
const FallbackTitle = "Data Engineer"

var parentheticalRe = regexp.MustCompile(`\s*\([^)]*\)`)

// suffixQualifiers are trailing descriptors that carry no title information
// when they follow a separator ("Engineer, Data" or "Analyst - Remote").
// Matched case-insensitively against the trimmed suffix.
var suffixQualifiers = map[string]struct{}{
	"data":                   {},
	"data engineering":       {},
	"analytics":              {},
	"engineering":            {},
	"technology":             {},
	"information technology": {},
	"it":                     {},
	"operations":             {},
	"remote":                 {},
	"hybrid":                 {},
	"onsite":                 {},
	"contract":               {},
	"full time":              {},
	"full-time":              {},
	"part time":              {},
	"part-time":              {},
}

// roleWords identify the "Manager & Supervisor" conjunction pattern, which
// collapses to the first role.
var roleWords = map[string]struct{}{
	"manager":     {},
	"supervisor":  {},
	"lead":        {},
	"director":    {},
	"coordinator": {},
}

// titleTransforms is the ordered rule set applied by NormalizeTitle. Each
// transform is pure; the pipeline runs to a fixed point so the whole
// normalization is idempotent.
var titleTransforms = []struct {
	name  string
	apply func(string) string
}{
	{"strip parentheticals", stripParentheticals},
	{"drop qualifier suffix", dropQualifierSuffix},
	{"collapse role conjunction", collapseRoleConjunction},
	{"tidy whitespace", tidyWhitespace},
}

// NormalizeTitle applies the ordered title transforms until the result is
// stable. Empty or whitespace-only results fall back to FallbackTitle.
// For all t: NormalizeTitle(NormalizeTitle(t)) == NormalizeTitle(t).
func NormalizeTitle(title string) string {
	prev := title
	for i := 0; i < 8; i++ {
		next := prev
		for _, t := range titleTransforms {
			next = t.apply(next)
		}
		if next == prev {
			break
		}
		prev = next
	}
	if strings.TrimSpace(prev) == "" {
		return FallbackTitle
	}
	return prev
}

func stripParentheticals(s string) string {
	return parentheticalRe.ReplaceAllString(s, "")
}

// dropQualifierSuffix removes a trailing descriptor after the last separator
// when the suffix is a known non-title qualifier.
func dropQualifierSuffix(s string) string {
	idx := -1
	for _, sep := range []string{",", " - ", "/", "&"} {
		if i := strings.LastIndex(s, sep); i > idx {
			idx = i
		}
	}
	if idx <= 0 {
		return s
	}

	suffix := s[idx:]
	for _, sep := range []string{",", "-", "/", "&"} {
		suffix = strings.TrimPrefix(strings.TrimSpace(suffix), sep)
	}
	suffix = strings.ToLower(strings.TrimSpace(suffix))
	if _, ok := suffixQualifiers[suffix]; ok {
		return strings.TrimSpace(s[:idx])
	}
	return s
}

// collapseRoleConjunction reduces "X Manager & Supervisor" to "X Manager".
func collapseRoleConjunction(s string) string {
	for _, conj := range []string{"&", " and "} {
		parts := strings.SplitN(s, conj, 2)
		if len(parts) != 2 {
			continue
		}
		if endsWithRoleWord(parts[0]) && endsWithRoleWord(parts[1]) {
			return strings.TrimSpace(parts[0])
		}
	}
	return s
}

func endsWithRoleWord(s string) bool {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return false
	}
	last := strings.TrimSuffix(fields[len(fields)-1], "s")
	_, ok := roleWords[last]
	return ok
}

func tidyWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
