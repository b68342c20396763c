package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/permahub/seedaudit/internal/types"
)

func TestScorer_Content(t *testing.T) {
	s := NewScorer(DefaultConfig())

	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "Compost heaps generate warmth quickly", "Compost heaps generate warmth quickly", 1.0},
		{"case and punctuation ignored", "COMPOST, heaps!", "compost heaps", 1.0},
		{"partial overlap", "swales harvest rainwater slowly", "swales spread rainwater widely", 2.0 / 6.0},
		{"no overlap", "chicken coops", "water tanks", 0},
		{"empty a", "", "compost heaps", 0},
		{"empty b", "compost heaps", "", 0},
		{"only short words", "a to in of the and", "a to in of the and", 0},
		{"short words discarded", "the quick brown foxes", "a quick brown hound", 2.0 / 4.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, s.Content(tt.a, tt.b), 1e-9)
		})
	}
}

func TestScorer_ContentCountsRunes(t *testing.T) {
	s := NewScorer(DefaultConfig())
	// "maçãs" is five runes but seven bytes; "açúc" is four runes
	assert.Equal(t, 1.0, s.Content("maçãs", "maçãs"))
	assert.Equal(t, 0.0, s.Content("açúc", "açúc"))
}

func TestScorer_Slug(t *testing.T) {
	s := NewScorer(DefaultConfig())

	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"exact", "chicken-coop-guide", "chicken-coop-guide", 1.0},
		{"year suffix stripped", "spring-workshop-2025", "spring-workshop-2026", 1.0},
		{"year only on one side", "spring-workshop", "spring-workshop-2026", 1.0},
		{"containment", "composting", "composting-basics", 0.8},
		{"word overlap", "green-farm-madeira", "green-valley-madeira", 2.0 / 4.0},
		{"disjoint", "swales", "chickens", 0},
		{"empty a", "", "swales", 0},
		{"empty b", "swales", "", 0},
		{"year not at end", "2025-spring-fair", "2026-spring-fair", 2.0 / 4.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, s.Slug(tt.a, tt.b), 1e-9)
		})
	}
}

func TestScorer_Symmetry(t *testing.T) {
	s := NewScorer(DefaultConfig())
	texts := []string{
		"",
		"Swales slow, spread and sink rainwater across the landscape",
		"Rainwater harvesting with swales and ponds across farms",
		"Chickens provide manure, pest control and eggs",
		"tiny words only",
	}
	slugs := []string{"", "swales", "swales-2024", "water-harvesting-swales", "chicken-coop", "chicken-coop-guide"}

	for _, a := range texts {
		for _, b := range texts {
			assert.Equal(t, s.Content(a, b), s.Content(b, a), "content(%q, %q)", a, b)
		}
	}
	for _, a := range slugs {
		for _, b := range slugs {
			assert.Equal(t, s.Slug(a, b), s.Slug(b, a), "slug(%q, %q)", a, b)
		}
	}
}

func TestScorer_SelfSimilarity(t *testing.T) {
	s := NewScorer(DefaultConfig())
	assert.Equal(t, 1.0, s.Content("Permaculture design principles", "Permaculture design principles"))
	for _, slug := range []string{"a", "green-farm", "spring-workshop-2025"} {
		assert.Equal(t, 1.0, s.Slug(slug, slug))
	}
}

func TestScorer_Range(t *testing.T) {
	s := NewScorer(DefaultConfig())
	pairs := [][2]string{
		{"alpha-beta", "beta-gamma"},
		{"x", "y-x-z"},
		{"food-forest-2023", "forest-garden"},
	}
	for _, p := range pairs {
		v := s.Slug(p[0], p[1])
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestScorer_Severity(t *testing.T) {
	s := NewScorer(DefaultConfig())

	tests := []struct {
		content float64
		want    types.Severity
	}{
		{1.0, types.SeverityCritical},
		{0.51, types.SeverityCritical},
		{0.5, types.SeverityWarning},
		{0.41, types.SeverityWarning},
		{0.4, types.SeverityInfo},
		{0.31, types.SeverityInfo},
		{0.0, types.SeverityInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, s.Severity(tt.content), "content=%v", tt.content)
	}
}

func TestScorer_Flagged(t *testing.T) {
	s := NewScorer(DefaultConfig())

	assert.True(t, s.Flagged(0.31, 0), "content alone")
	assert.True(t, s.Flagged(0, 0.61), "slug alone")
	assert.True(t, s.Flagged(0, 1.0))
	assert.False(t, s.Flagged(0.3, 0.6), "thresholds are exclusive")
	assert.False(t, s.Flagged(0, 0))
}

func TestScorer_CustomConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinSignificantLength = 3
	cfg.SlugContainmentScore = 0.5
	s := NewScorer(cfg)

	assert.Equal(t, 1.0, s.Content("the cat", "cat the"))
	assert.Equal(t, 0.5, s.Slug("farm", "farm-tours"))
	assert.Equal(t, cfg, s.Config())
}

func TestStripYear(t *testing.T) {
	assert.Equal(t, "spring-workshop", StripYear("spring-workshop-2025"))
	assert.Equal(t, "spring-workshop-25", StripYear("spring-workshop-25"))
	assert.Equal(t, "fair-2025-edition", StripYear("fair-2025-edition"))
	assert.Equal(t, "2025", StripYear("2025"))
}
