package seedfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/permahub/seedaudit/internal/types"
)

func writeSeed(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_TagsProvenance(t *testing.T) {
	dir := t.TempDir()
	a := writeSeed(t, dir, "001_guides.sql", `
INSERT INTO wiki_guides (title, slug, summary, content) VALUES
  ('Compost', 'compost', 'sum', 'Compost heaps need nitrogen and carbon'),
  ('Mulch', 'mulch', 'sum', 'Mulching conserves moisture');
INSERT INTO wiki_events (title, slug, description) VALUES ('Fair', 'fair-2025', 'Seed fair');
`)
	b := writeSeed(t, dir, "002_events.sql", `
INSERT INTO wiki_events (title, slug, description) VALUES ('Fair', 'fair-2026', 'Seed fair again');
`)

	corpus, err := Load([]string{a, b})
	require.NoError(t, err)

	require.Len(t, corpus.Files, 2)
	assert.Equal(t, "001_guides.sql", corpus.Files[0].Name)
	assert.Equal(t, a, corpus.Files[0].Path)
	assert.Equal(t, 2, corpus.Files[0].Counts[types.KindGuide])
	assert.Equal(t, 1, corpus.Files[0].Counts[types.KindEvent])
	assert.Equal(t, 0, corpus.Files[0].Counts[types.KindLocation])

	assert.Equal(t, 2, corpus.Total(types.KindGuide))
	assert.Equal(t, 2, corpus.Total(types.KindEvent))
	assert.Equal(t, 0, corpus.Total(types.KindLocation))

	events := corpus.Records[types.KindEvent]
	assert.Equal(t, "001_guides.sql", events[0].SourceFile)
	assert.Equal(t, "002_events.sql", events[1].SourceFile)
	assert.Equal(t, 0, events[1].SequenceIndex, "sequence index is per file")
}

func TestLoad_MissingFileIsSkipped(t *testing.T) {
	dir := t.TempDir()
	a := writeSeed(t, dir, "a.sql", `INSERT INTO wiki_locations (name, slug, description) VALUES ('Farm', 'farm', 'x');`)
	missing := filepath.Join(dir, "nope.sql")

	corpus, err := Load([]string{missing, a})
	require.NoError(t, err)

	require.Len(t, corpus.Files, 2)
	assert.True(t, corpus.Files[0].Missing)
	assert.Equal(t, "nope.sql", corpus.Files[0].Name)
	assert.False(t, corpus.Files[1].Missing)
	assert.Equal(t, []string{missing}, corpus.Missing())
	assert.Equal(t, 1, corpus.Total(types.KindLocation))
}

func TestLoad_UnreadableIsFatal(t *testing.T) {
	dir := t.TempDir()
	// a directory cannot be read as a file
	_, err := Load([]string{dir})
	assert.Error(t, err)
}

func TestLoad_CollectsWarnings(t *testing.T) {
	dir := t.TempDir()
	a := writeSeed(t, dir, "a.sql", `INSERT INTO wiki_guides (title, slug, summary, content) VALUES ('Short', 'short');`)

	corpus, err := Load([]string{a})
	require.NoError(t, err)
	require.Len(t, corpus.Files[0].Warnings, 1)
	assert.Equal(t, "wiki_guides", corpus.Files[0].Warnings[0].Table)
	assert.Equal(t, 0, corpus.Total(types.KindGuide))
}

func TestLoad_Empty(t *testing.T) {
	corpus, err := Load(nil)
	require.NoError(t, err)
	assert.Empty(t, corpus.Files)
	assert.Empty(t, corpus.Missing())
}
