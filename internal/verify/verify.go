// Package verify checks seed records against the editorial guidelines of
// the wiki before they are migrated.
//
// Guides get a weighted compliance score built from word count, summary
// length and markdown structure, and pass at PassScore. Every kind is also
// linted for slug format and minimum title and description lengths.
// Findings are advisory.
package verify

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/permahub/seedaudit/internal/types"
)

// PassScore is the overall guide score needed to pass
const PassScore = 80.0

// TargetWordCount is the guide length that earns the full word count score
const TargetWordCount = 1000

// Score weights
const (
	weightWordCount = 0.30
	weightSummary   = 0.10
	weightCitations = 0.20
	weightResources = 0.20
	weightStructure = 0.20
)

var (
	slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

	introductionPattern = regexp.MustCompile(`(?i)##?\s+Introduction`)
	resourcesPattern    = regexp.MustCompile(`(?i)##?\s+(Resources?|Further Reading|Sources?)`)
	citationPattern     = regexp.MustCompile(`(?i)https?://|Source:`)
	safetyPattern       = regexp.MustCompile(`(?i)##?\s+(Safety|Precautions?|Warnings?)`)
	examplesPattern     = regexp.MustCompile(`(?i)##?\s+Examples?|\*\*Example`)
	headersPattern      = regexp.MustCompile(`(?m)^##?\s+`)
	conclusionPattern   = regexp.MustCompile(`(?i)##?\s+(Conclusion|Summary)`)
)

// minimum rune lengths per kind; zero means unchecked
var (
	minTitleLength = map[types.Kind]int{
		types.KindEvent:    10,
		types.KindLocation: 5,
	}
	minDescriptionLength = map[types.Kind]int{
		types.KindEvent:    50,
		types.KindLocation: 100,
	}
	recommendedDescriptionLength = map[types.Kind]int{
		types.KindEvent:    100,
		types.KindLocation: 150,
	}
)

// Sections records which markdown sections a guide body contains
type Sections struct {
	Introduction bool
	Resources    bool
	Citations    bool
	Safety       bool
	Examples     bool
	Headers      bool
	Conclusion   bool
}

// DetectSections scans markdown content for the sections the guidelines ask for
func DetectSections(content string) Sections {
	if content == "" {
		return Sections{}
	}
	return Sections{
		Introduction: introductionPattern.MatchString(content),
		Resources:    resourcesPattern.MatchString(content),
		Citations:    citationPattern.MatchString(content),
		Safety:       safetyPattern.MatchString(content),
		Examples:     examplesPattern.MatchString(content),
		Headers:      headersPattern.MatchString(content),
		Conclusion:   conclusionPattern.MatchString(content),
	}
}

// GuideScores are percentages in [0,100]
type GuideScores struct {
	WordCount float64
	Summary   float64
	Citations float64
	Resources float64
	Structure float64
	Overall   float64
}

// Result is the verification outcome of one record
type Result struct {
	Record *types.ContentRecord
	// Scores is only set for guides
	Scores          *GuideScores
	Sections        Sections
	SummaryLength   int
	Issues          []string
	Recommendations []string
	Passes          bool
}

// Record verifies r. Guides pass on score; other kinds pass when
// they have no issues.
func Record(r *types.ContentRecord) Result {
	res := Result{Record: r}
	lint(r, &res)

	if r.Kind == types.KindGuide {
		scoreGuide(r, &res)
		return res
	}
	res.Passes = len(res.Issues) == 0
	return res
}

func lint(r *types.ContentRecord, res *Result) {
	switch {
	case !r.HasSlug():
		res.Issues = append(res.Issues, "Slug missing")
	case !slugPattern.MatchString(r.Slug):
		res.Issues = append(res.Issues, fmt.Sprintf("Slug %q is not lower-case words joined by hyphens", r.Slug))
	}

	if want := minTitleLength[r.Kind]; want > 0 && utf8.RuneCountInString(r.Title) < want {
		res.Issues = append(res.Issues, fmt.Sprintf("%s missing or too short (min %d chars)", titleField(r.Kind), want))
	}
	if want := minDescriptionLength[r.Kind]; want > 0 {
		n := utf8.RuneCountInString(r.BodyText)
		if n < want {
			res.Issues = append(res.Issues, fmt.Sprintf("Description missing or too short (min %d chars)", want))
		} else if rec := recommendedDescriptionLength[r.Kind]; n < rec {
			res.Recommendations = append(res.Recommendations,
				fmt.Sprintf("Description could be more detailed (currently %d chars, recommend %d+)", n, rec))
		}
	}
}

func titleField(kind types.Kind) string {
	if kind == types.KindLocation {
		return "Name"
	}
	return "Title"
}

func scoreGuide(r *types.ContentRecord, res *Result) {
	sections := DetectSections(r.BodyText)
	summaryLen := utf8.RuneCountInString(r.Summary)
	words := r.WordCount

	s := &GuideScores{
		WordCount: min(100, float64(words)/TargetWordCount*100),
		Summary:   summaryScore(summaryLen),
		Citations: boolScore(sections.Citations),
		Resources: boolScore(sections.Resources),
	}
	for _, present := range []bool{sections.Headers, sections.Introduction, sections.Resources, sections.Conclusion} {
		if present {
			s.Structure += 25
		}
	}
	s.Overall = s.WordCount*weightWordCount +
		s.Summary*weightSummary +
		s.Citations*weightCitations +
		s.Resources*weightResources +
		s.Structure*weightStructure

	if words < TargetWordCount {
		res.Issues = append(res.Issues,
			fmt.Sprintf("Word count too low: %d/%d words (%.1f%%)", words, TargetWordCount, s.WordCount))
		res.Recommendations = append(res.Recommendations,
			fmt.Sprintf("Expand content to at least %d words (currently %d words short)", TargetWordCount, TargetWordCount-words))
	}
	if summaryLen < 100 || summaryLen > 150 {
		res.Issues = append(res.Issues, fmt.Sprintf("Summary length not optimal: %d/100-150 chars", summaryLen))
		res.Recommendations = append(res.Recommendations,
			fmt.Sprintf("Adjust summary to 100-150 characters (currently %d chars)", summaryLen))
	}
	if !sections.Citations {
		res.Issues = append(res.Issues, "No citations or sources found")
		res.Recommendations = append(res.Recommendations, "Add citations and source links throughout the content")
	}
	if !sections.Resources {
		res.Issues = append(res.Issues, "Missing Resources/Further Reading section")
		res.Recommendations = append(res.Recommendations, `Add "Resources & Further Reading" section with at least 3 sources`)
	}
	if !sections.Introduction {
		res.Issues = append(res.Issues, "Missing Introduction section")
		res.Recommendations = append(res.Recommendations, `Add "## Introduction" section at the beginning`)
	}
	if !sections.Conclusion {
		res.Recommendations = append(res.Recommendations, "Consider adding a Conclusion or Summary section")
	}

	res.Scores = s
	res.Sections = sections
	res.SummaryLength = summaryLen
	res.Passes = s.Overall >= PassScore
}

func summaryScore(n int) float64 {
	switch {
	case n >= 100 && n <= 150:
		return 100
	case n >= 75 && n <= 200:
		return 75
	case n > 0:
		return 50
	}
	return 0
}

func boolScore(b bool) float64 {
	if b {
		return 100
	}
	return 0
}

// Summary counts passing and failing records per kind
type Summary struct {
	Results []Result
	Total   map[types.Kind]int
	Passing map[types.Kind]int
}

// All verifies records in order
func All(records []*types.ContentRecord) *Summary {
	s := &Summary{
		Total:   make(map[types.Kind]int),
		Passing: make(map[types.Kind]int),
	}
	for _, r := range records {
		res := Record(r)
		s.Results = append(s.Results, res)
		s.Total[r.Kind]++
		if res.Passes {
			s.Passing[r.Kind]++
		}
	}
	return s
}

// Counts returns the overall number of passing records and of all records
func (s *Summary) Counts() (passing, total int) {
	for _, n := range s.Total {
		total += n
	}
	for _, n := range s.Passing {
		passing += n
	}
	return passing, total
}
