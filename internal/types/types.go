package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Kind is the content category of a seed record. Records are only ever
// compared with records of the same kind.
type Kind string

const (
	KindGuide    Kind = "guide"
	KindEvent    Kind = "event"
	KindLocation Kind = "location"
)

// AllKinds lists the supported kinds in report order
var AllKinds = []Kind{KindGuide, KindEvent, KindLocation}

// IsValid checks if the kind value is valid
func (k Kind) IsValid() bool {
	switch k {
	case KindGuide, KindEvent, KindLocation:
		return true
	}
	return false
}

// Table returns the database table the kind is seeded into
func (k Kind) Table() string {
	switch k {
	case KindGuide:
		return "wiki_guides"
	case KindEvent:
		return "wiki_events"
	case KindLocation:
		return "wiki_locations"
	}
	return ""
}

// Label returns the upper-case plural used in report headings
func (k Kind) Label() string {
	switch k {
	case KindGuide:
		return "GUIDES"
	case KindEvent:
		return "EVENTS"
	case KindLocation:
		return "LOCATIONS"
	}
	return strings.ToUpper(string(k))
}

// Plural returns the lower-case plural, also used as the JSON key
func (k Kind) Plural() string {
	return strings.ToLower(k.Label())
}

// KindForTable maps a table name back to its kind
func KindForTable(table string) (Kind, error) {
	for _, k := range AllKinds {
		if k.Table() == table {
			return k, nil
		}
	}
	return "", fmt.Errorf("unsupported table: %q", table)
}

// Severity classifies a flagged content overlap
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
	SeverityInfo     Severity = "INFO"
)

// AllSeverities lists severities from most to least severe
var AllSeverities = []Severity{SeverityCritical, SeverityWarning, SeverityInfo}

// IsValid checks if the severity value is valid
func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityWarning, SeverityInfo:
		return true
	}
	return false
}

// ContentRecord is one item extracted from a seed file.
// Records are created once per run and never mutated afterwards.
type ContentRecord struct {
	Kind  Kind   `json:"kind"`
	Title string `json:"title"`
	// Slug is empty when the seed supplied NULL
	Slug string `json:"slug,omitempty"`
	// Summary is only populated for guides
	Summary       string `json:"summary,omitempty"`
	BodyText      string `json:"-"`
	WordCount     int    `json:"word_count"`
	SourceFile    string `json:"source_file"`
	SequenceIndex int    `json:"sequence_index"`
}

// NewContentRecord builds a record and derives its word count
func NewContentRecord(kind Kind, title, slug, summary, body string) *ContentRecord {
	return &ContentRecord{
		Kind:      kind,
		Title:     title,
		Slug:      slug,
		Summary:   summary,
		BodyText:  body,
		WordCount: CountWords(body),
	}
}

// HasSlug reports whether the record can take part in slug checks
func (r *ContentRecord) HasSlug() bool {
	return r.Slug != ""
}

// DisplayTitle returns the title, or "Untitled" when the seed left it NULL
func (r *ContentRecord) DisplayTitle() string {
	if r.Title == "" {
		return "Untitled"
	}
	return r.Title
}

// Fingerprint is a stable identifier for the record across runs,
// derived from kind, slug and body text.
func (r *ContentRecord) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(r.Kind))
	h.Write([]byte{0})
	h.Write([]byte(r.Slug))
	h.Write([]byte{0})
	h.Write([]byte(r.BodyText))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// CountWords returns the number of whitespace-separated words in text
func CountWords(text string) int {
	return len(strings.Fields(text))
}
