package seedsql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/permahub/seedaudit/internal/types"
)

// ErrSchemaMismatch is returned when a tuple has fewer string fields than
// the table layout expects
var ErrSchemaMismatch = errors.New("tuple does not match table layout")

// Layout is the ordered list of leading string columns of a seed table.
// Mapping is positional over string/NULL fields only, so the list must match
// the column order used by the seed files.
type Layout struct {
	Kind   types.Kind
	Fields []string
}

var layouts = map[types.Kind]Layout{
	types.KindGuide:    {Kind: types.KindGuide, Fields: []string{"title", "slug", "summary", "content"}},
	types.KindEvent:    {Kind: types.KindEvent, Fields: []string{"title", "slug", "description"}},
	types.KindLocation: {Kind: types.KindLocation, Fields: []string{"name", "slug", "description"}},
}

// LayoutFor returns the field layout for kind
func LayoutFor(kind types.Kind) (Layout, error) {
	l, ok := layouts[kind]
	if !ok {
		return Layout{}, fmt.Errorf("no layout for kind %q", kind)
	}
	return l, nil
}

// Map assigns lexed fields to record attributes. NULL becomes the empty
// string. Extra trailing fields are ignored.
func (l Layout) Map(fields []Field) (*types.ContentRecord, error) {
	if len(fields) < len(l.Fields) {
		return nil, fmt.Errorf("%w: %s expects %d string fields (%s), found %d",
			ErrSchemaMismatch, l.Kind.Table(), len(l.Fields), strings.Join(l.Fields, ", "), len(fields))
	}

	var title, slug, summary, body string
	for i, name := range l.Fields {
		v := fields[i].Value
		switch name {
		case "title", "name":
			title = v
		case "slug":
			slug = v
		case "summary":
			summary = v
		case "content", "description":
			body = v
		}
	}
	return types.NewContentRecord(l.Kind, title, slug, summary, body), nil
}
