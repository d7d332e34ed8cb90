// Package core contains the business logic of the ERP knowledge server:
// fuzzy string matching, flow classification, knowledge search, request
// validation, error diagnosis, and recommendations.
package core

import (
	"sort"
	"strings"

	"erpmcp/pkg/models"
)

// Default fuzzy threshold profiles. Keyword is generous enough to absorb
// one or two character typos on short tokens; error messages are long and
// need a stricter cut to stay meaningful.
const (
	DefaultKeywordThreshold       = 0.60
	DefaultOperationNameThreshold = 0.70
	DefaultErrorMessageThreshold  = 0.80
)

// DefaultThresholds returns the default fuzzy threshold profiles.
func DefaultThresholds() models.FuzzyThresholds {
	return models.FuzzyThresholds{
		Keyword:       DefaultKeywordThreshold,
		OperationName: DefaultOperationNameThreshold,
		ErrorMessage:  DefaultErrorMessageThreshold,
	}
}

// Match is one scored candidate from a fuzzy comparison. Confidence is
// in [0,1]: 1 for an exact (case-insensitive) match, 0 for strings with
// nothing in common.
type Match struct {
	Candidate  string
	Distance   int
	Confidence float64
}

// Matcher scores candidates against one fixed query. The lowercased query
// runes and the DP row buffer are prepared once and reused across every
// candidate comparison, so matching a query against a large candidate set
// costs one distance computation per candidate and nothing more.
type Matcher struct {
	query []rune
	row   []int
}

// NewMatcher prepares a Matcher for the given query.
func NewMatcher(query string) *Matcher {
	q := []rune(strings.ToLower(query))
	return &Matcher{
		query: q,
		row:   make([]int, len(q)+1),
	}
}

// Distance returns the Levenshtein edit distance between the query and
// candidate, case-insensitively.
func (m *Matcher) Distance(candidate string) int {
	c := []rune(strings.ToLower(candidate))
	if len(m.query) == 0 {
		return len(c)
	}
	if len(c) == 0 {
		return len(m.query)
	}

	row := m.row
	for i := range row {
		row[i] = i
	}

	for j, cr := range c {
		prev := row[0]
		row[0] = j + 1
		for i, qr := range m.query {
			cur := row[i+1]
			cost := 1
			if qr == cr {
				cost = 0
			}
			row[i+1] = minInt(row[i+1]+1, row[i]+1, prev+cost)
			prev = cur
		}
	}

	return row[len(m.query)]
}

// Confidence returns the normalized similarity of candidate to the query:
// 1 - distance/max(len). Two empty strings score 0.0, not 1.0, so an
// empty query never produces spurious matches.
func (m *Matcher) Confidence(candidate string) float64 {
	return m.normalize(m.Distance(candidate), candidate)
}

func (m *Matcher) normalize(distance int, candidate string) float64 {
	maxLen := len(m.query)
	if n := len([]rune(candidate)); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 0.0
	}

	conf := 1.0 - float64(distance)/float64(maxLen)
	if conf < 0 {
		return 0.0
	}
	if conf > 1 {
		return 1.0
	}
	return conf
}

// IsMatch reports whether candidate clears the threshold against query.
// A case-insensitive exact match short-circuits before any edit-distance
// work, so it passes even at threshold 1.0.
func IsMatch(query, candidate string, threshold float64) bool {
	if strings.EqualFold(query, candidate) {
		return true
	}
	return NewMatcher(query).Confidence(candidate) >= threshold
}

// FindAllMatches scores every candidate against query and returns those
// at or above threshold, ordered by descending confidence. Ties keep the
// original candidate order. An empty query yields no matches.
func FindAllMatches(query string, candidates []string, threshold float64) []Match {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	m := NewMatcher(query)
	var matches []Match
	for _, c := range candidates {
		d := m.Distance(c)
		conf := m.normalize(d, c)
		if conf >= threshold {
			matches = append(matches, Match{Candidate: c, Distance: d, Confidence: conf})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	return matches
}

// FindBestMatch returns the highest-confidence candidate at or above
// threshold, or false when nothing clears it.
func FindBestMatch(query string, candidates []string, threshold float64) (Match, bool) {
	matches := FindAllMatches(query, candidates, threshold)
	if len(matches) == 0 {
		return Match{}, false
	}
	return matches[0], true
}

func minInt(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
