// Package seedfile reads the configured seed files and collects their
// records per kind, tagged with provenance.
package seedfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/permahub/seedaudit/internal/seedsql"
	"github.com/permahub/seedaudit/internal/types"
)

// FileResult is the parse summary of one configured seed file
type FileResult struct {
	Path    string
	Name    string
	Missing bool
	Counts  map[types.Kind]int
	// Warnings lists tuples skipped in this file, all kinds together
	Warnings []seedsql.ParseWarning
}

// Corpus is every record extracted from one run's seed files
type Corpus struct {
	Files   []FileResult
	Records map[types.Kind][]*types.ContentRecord
}

// Total returns the number of records of kind across all files
func (c *Corpus) Total(kind types.Kind) int {
	return len(c.Records[kind])
}

// Missing returns the paths that could not be found
func (c *Corpus) Missing() []string {
	var out []string
	for _, f := range c.Files {
		if f.Missing {
			out = append(out, f.Path)
		}
	}
	return out
}

// Load reads paths in order and extracts guides, events and locations from
// each. A path that does not exist is recorded as missing and skipped; any
// other read error aborts the load.
func Load(paths []string) (*Corpus, error) {
	corpus := &Corpus{Records: make(map[types.Kind][]*types.ContentRecord)}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				corpus.Files = append(corpus.Files, FileResult{
					Path:    path,
					Name:    filepath.Base(path),
					Missing: true,
				})
				continue
			}
			return nil, fmt.Errorf("reading seed file %s: %w", path, err)
		}

		fr, records := parse(filepath.Base(path), string(data))
		fr.Path = path
		for _, kind := range types.AllKinds {
			corpus.Records[kind] = append(corpus.Records[kind], records[kind]...)
		}
		corpus.Files = append(corpus.Files, fr)
	}

	return corpus, nil
}

// parse extracts all kinds from the text of one seed file named name
func parse(name, text string) (FileResult, map[types.Kind][]*types.ContentRecord) {
	fr := FileResult{Name: name, Counts: make(map[types.Kind]int)}
	records := make(map[types.Kind][]*types.ContentRecord)
	for _, kind := range types.AllKinds {
		res := seedsql.Extract(text, kind)
		for _, r := range res.Records {
			r.SourceFile = name
		}
		records[kind] = res.Records
		fr.Counts[kind] = len(res.Records)
		fr.Warnings = append(fr.Warnings, res.Warnings...)
	}
	return fr, records
}
