// Package skills pulls skill tokens and years of experience out of resume text.
package skills

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxSectionLines = 8
	maxTokenWords   = 4
	maxTokenRunes   = 40
)

var (
	sectionHeadingRe = regexp.MustCompile(`^(?:technical skills|skills|skill set|skillset|core skills|key skills|core competencies|competencies|proficiencies|skills (?:&|and) competencies|technical proficiencies|technologies|tech stack|areas of expertise)$`)
	inlineLabelRe    = regexp.MustCompile(`(?i)\bskills?\s*[:\-–]\s*(.+)$`)
	bulletRe         = regexp.MustCompile(`^\s*(?:[-*]\s+|[•·●▪◦‣]\s*)(.+)$`)
	tokenSplitRe     = regexp.MustCompile(`[,;|•·●▪◦‣()\[\]\t]|\s+(?:and|&)\s+|\s+/\s+`)
)

// Extractor is a pure, reusable skill extractor. Safe for concurrent use.
type Extractor struct {
	terms      []string          // normalised scan terms, sorted
	canonical  map[string]string // normalised term -> canonical skill
	vocabulary map[string]bool   // canonical skills known to the scan
}

// New builds an Extractor over the built-in vocabulary plus extra terms,
// typically the job catalog's tags.
func New(extraVocabulary ...string) *Extractor {
	e := &Extractor{
		canonical:  make(map[string]string),
		vocabulary: make(map[string]bool),
	}

	add := func(surface, canon string) {
		term := Normalize(surface)
		if term == "" || scanExcluded[term] {
			return
		}
		if _, ok := e.canonical[term]; !ok {
			e.canonical[term] = canon
		}
		e.vocabulary[canon] = true
	}

	for _, skill := range baseVocabulary {
		add(skill, skill)
	}
	for surface, canon := range aliases {
		add(surface, canon)
	}
	for _, extra := range extraVocabulary {
		if canon := Canonicalize(extra); canon != "" {
			add(canon, canon)
		}
	}

	e.terms = make([]string, 0, len(e.canonical))
	for term := range e.canonical {
		e.terms = append(e.terms, term)
	}
	sort.Strings(e.terms)
	return e
}

// Extract returns the sorted, deduplicated, synonym-expanded skill set of text.
func (e *Extractor) Extract(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}

	found := make(map[string]bool)
	lines := splitLines(text)

	for i, line := range lines {
		if sectionHeadingRe.MatchString(cleanHeading(line)) {
			for _, sectionLine := range e.consumeSection(lines, i+1) {
				e.collect(found, sectionLine)
			}
		}
	}

	for _, line := range lines {
		if m := inlineLabelRe.FindStringSubmatch(line); m != nil {
			e.collect(found, m[1])
		}
		if m := bulletRe.FindStringSubmatch(line); m != nil {
			e.collect(found, m[1])
		}
	}

	doc := " " + Normalize(text) + " "
	for _, term := range e.terms {
		if strings.Contains(doc, " "+term+" ") {
			found[e.canonical[term]] = true
		}
	}

	return expand(found)
}

// consumeSection returns the lines of a skills section starting at start.
// Blank lines directly under the heading are skipped; the next blank line or
// heading ends the section.
func (e *Extractor) consumeSection(lines []string, start int) []string {
	j := start
	for j < len(lines) && j < start+2 && strings.TrimSpace(lines[j]) == "" {
		j++
	}

	var out []string
	for ; j < len(lines) && len(out) < maxSectionLines; j++ {
		line := lines[j]
		if strings.TrimSpace(line) == "" || e.isSectionBreak(line) {
			break
		}
		out = append(out, line)
	}
	return out
}

func (e *Extractor) isSectionBreak(line string) bool {
	heading := cleanHeading(line)
	if sectionStops[heading] || sectionHeadingRe.MatchString(heading) {
		return true
	}
	return e.isAllCapsHeading(line)
}

// isAllCapsHeading reports whether line looks like "WORK HISTORY". A line made
// only of known skills ("AWS GCP SQL") is content, not a heading.
func (e *Extractor) isAllCapsHeading(line string) bool {
	s := strings.TrimSpace(line)
	if s == "" || utf8.RuneCountInString(s) > 40 || bulletRe.MatchString(s) || strings.ContainsAny(s, ",;|") {
		return false
	}

	letters := 0
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if letters < 4 {
		return false
	}

	for _, word := range strings.Fields(Normalize(s)) {
		if !e.vocabulary[Canonicalize(word)] {
			return true
		}
	}
	return false
}

func (e *Extractor) collect(found map[string]bool, line string) {
	if idx := strings.Index(line, ":"); idx >= 0 && idx < 30 {
		line = line[idx+1:]
	}
	for _, part := range tokenSplitRe.Split(line, -1) {
		if skill, ok := admit(part); ok {
			found[skill] = true
		}
	}
}

// admit canonicalises a candidate token and applies the admission filter.
func admit(token string) (string, bool) {
	skill := Canonicalize(token)
	if skill == "" || stopwords[skill] {
		return "", false
	}
	n := utf8.RuneCountInString(skill)
	if n < 2 || n > maxTokenRunes {
		return "", false
	}
	if len(strings.Fields(skill)) > maxTokenWords {
		return "", false
	}

	hasLetter := false
	for _, r := range skill {
		if unicode.IsLetter(r) {
			hasLetter = true
			break
		}
	}
	return skill, hasLetter
}

// Canonicalize maps a raw skill or job tag to its canonical lowercase form.
func Canonicalize(token string) string {
	t := strings.Join(strings.Fields(strings.ToLower(token)), " ")
	t = strings.TrimLeft(t, ",:;!?\"'`([{*-–")
	t = strings.TrimRight(t, ".,:;!?\"'`)]}*-–")
	if t == "" {
		return ""
	}
	if canon, ok := aliases[t]; ok {
		return canon
	}
	if canon, ok := aliases[Normalize(t)]; ok {
		return canon
	}
	return t
}

// Normalize lowercases text and collapses everything except letters, digits
// and + # . - into single spaces.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' || r == '-' {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	fields := strings.Fields(b.String())
	out := fields[:0]
	for _, f := range fields {
		f = strings.TrimLeft(strings.TrimRight(f, ".-"), "-")
		if f != "" {
			out = append(out, f)
		}
	}
	return strings.Join(out, " ")
}

func expand(found map[string]bool) []string {
	expanded := make(map[string]bool, len(found))
	for skill := range found {
		expanded[skill] = true
		for _, sibling := range synonyms[skill] {
			expanded[sibling] = true
		}
	}

	out := make([]string, 0, len(expanded))
	for skill := range expanded {
		out = append(out, skill)
	}
	sort.Strings(out)
	return out
}

func cleanHeading(line string) string {
	s := strings.ToLower(strings.TrimSpace(line))
	s = strings.TrimLeft(s, "#*-•· ")
	s = strings.TrimRight(s, ": ")
	return strings.Join(strings.Fields(s), " ")
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
