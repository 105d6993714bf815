// Package grading decides whether a learner's free-text answer is
// correct, either through a semantic grader backed by an LLM or through a
// deterministic key-term matcher.
package grading

import (
	"math"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMinTermLength excludes tokens of this many characters or
	// fewer ("to", "a", "of") from the key-term set.
	DefaultMinTermLength = 2

	// matchFraction is the share of key terms a long answer must contain.
	matchFraction = 0.6
)

// Matcher is the deterministic answer matcher. The zero value is not
// usable; build one with NewMatcher.
type Matcher struct {
	minTermLength int
}

// MatcherOption configures a Matcher.
type MatcherOption func(*Matcher)

// WithMinTermLength sets the key-term length threshold. Tokens whose rune
// count is <= n are ignored.
func WithMinTermLength(n int) MatcherOption {
	return func(m *Matcher) {
		if n >= 0 {
			m.minTermLength = n
		}
	}
}

// NewMatcher returns a Matcher with the default threshold unless
// overridden.
func NewMatcher(opts ...MatcherOption) *Matcher {
	m := &Matcher{minTermLength: DefaultMinTermLength}
	for _, o := range opts {
		o(m)
	}
	return m
}

// MinTermLength reports the configured threshold.
func (m *Matcher) MinTermLength() int { return m.minTermLength }

// Matches reports whether submitted is an acceptable answer for expected.
//
// Both strings are lowercased, trimmed and stripped of . , ! ? ; : before
// comparison. Equal strings match. Otherwise the expected answer's key
// terms (tokens longer than the threshold) are looked up as substrings of
// the submission: with two or fewer key terms one hit is enough, with more
// the hits must reach ceil(0.6 * n).
//
// An expected answer with no key terms at all ("to", "B") matches any
// submission that contains it. That is deliberately lenient; use the
// semantic grader when short answers need strict grading.
func (m *Matcher) Matches(submitted, expected string) bool {
	if strings.TrimSpace(submitted) == "" {
		return false
	}

	sub := normalize(submitted)
	exp := normalize(expected)
	if sub == "" {
		return false
	}
	if sub == exp {
		return true
	}

	terms := m.keyTerms(exp)
	if len(terms) == 0 {
		return exp != "" && strings.Contains(sub, exp)
	}

	hits := 0
	for _, term := range terms {
		if strings.Contains(sub, term) {
			hits++
		}
	}

	if len(terms) <= 2 {
		return hits >= 1
	}
	return hits >= requiredHits(len(terms))
}

func (m *Matcher) keyTerms(normalized string) []string {
	var terms []string
	for _, tok := range strings.Fields(normalized) {
		if utf8.RuneCountInString(tok) > m.minTermLength {
			terms = append(terms, tok)
		}
	}
	return terms
}

// requiredHits is ceil(matchFraction * n).
func requiredHits(n int) int {
	return int(math.Ceil(matchFraction*float64(n) - 1e-9))
}

var stripper = strings.NewReplacer(".", "", ",", "", "!", "", "?", "", ";", "", ":", "")

// normalize lowercases, trims and removes the punctuation set. Inner
// whitespace runs are left alone.
func normalize(s string) string {
	return stripper.Replace(strings.TrimSpace(strings.ToLower(s)))
}
