// Package similarity scores how related two seed records are.
//
// Two independent heuristics are used and never merged into one number:
// Jaccard similarity over significant body words, and a slug score that
// treats year-suffixed slugs of recurring events as the same base slug.
// Every function here is pure, deterministic, symmetric and total.
package similarity

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/permahub/seedaudit/internal/types"
)

var yearSuffix = regexp.MustCompile(`-\d{4}$`)

// Scorer computes content and slug similarity using one Config
type Scorer struct {
	cfg Config
}

// NewScorer creates a scorer. The config is not validated here; callers
// load it through Config.Validate or ApplyEnv.
func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Config returns the scorer's thresholds
func (s *Scorer) Config() Config {
	return s.cfg
}

// Content returns the Jaccard coefficient of the significant-word sets of
// a and b. It is 0 when either text is empty or has no significant words.
func (s *Scorer) Content(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return jaccard(s.significantWords(a), s.significantWords(b))
}

// Slug scores two slugs after stripping a trailing -YYYY: 1.0 for equal
// bases, SlugContainmentScore when one base contains the other, otherwise
// Jaccard over the hyphen-delimited words. It is 0 when either slug is
// empty.
func (s *Scorer) Slug(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	baseA := StripYear(a)
	baseB := StripYear(b)

	if baseA == baseB {
		return 1.0
	}
	if strings.Contains(baseA, baseB) || strings.Contains(baseB, baseA) {
		return s.cfg.SlugContainmentScore
	}
	return jaccard(slugWords(baseA), slugWords(baseB))
}

// Flagged reports whether a pair with these scores is a possible duplicate.
// Either signal alone is enough.
func (s *Scorer) Flagged(content, slug float64) bool {
	return content > s.cfg.ContentFlagThreshold || slug > s.cfg.SlugFlagThreshold
}

// Severity classifies a flagged pair by its content similarity
func (s *Scorer) Severity(content float64) types.Severity {
	switch {
	case content > s.cfg.CriticalThreshold:
		return types.SeverityCritical
	case content > s.cfg.WarningThreshold:
		return types.SeverityWarning
	default:
		return types.SeverityInfo
	}
}

// StripYear removes a trailing four-digit year suffix such as -2025
func StripYear(slug string) string {
	return yearSuffix.ReplaceAllString(slug, "")
}

// significantWords lowercases text, splits it on runs of non-word
// characters and keeps words of at least MinSignificantLength runes
func (s *Scorer) significantWords(text string) map[string]struct{} {
	words := strings.FieldsFunc(strings.ToLower(text), isWordSeparator)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) >= s.cfg.MinSignificantLength {
			set[w] = struct{}{}
		}
	}
	return set
}

func isWordSeparator(r rune) bool {
	return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
}

func slugWords(base string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Split(base, "-") {
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for w := range a {
		if _, ok := b[w]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
