package gqlerrors

import (
	"errors"

	language "github.com/hanpama/gqlcore/internal/language"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// FromParser converts errors reported by the parser or validator into
// located errors. Each error is located in the source named by its "file"
// extension, or in the first of srcs when none matches. err may be a
// *gqlerror.Error, a gqlerror.List, or any other error, which becomes a
// single unlocated Error.
func FromParser(err error, srcs ...*language.Source) List {
	if err == nil {
		return nil
	}
	var list gqlerror.List
	if errors.As(err, &list) {
		out := make(List, 0, len(list))
		for _, e := range list {
			out = append(out, fromParserError(e, srcs))
		}
		return out
	}
	var single *gqlerror.Error
	if errors.As(err, &single) {
		return List{fromParserError(single, srcs)}
	}
	return List{New(err.Error(), WithOriginalError(err))}
}

func fromParserError(e *gqlerror.Error, srcs []*language.Source) *Error {
	file, _ := e.Extensions["file"].(string)
	src := sourceNamed(srcs, file)
	opts := []Option{WithOriginalError(e)}
	if src != nil && len(e.Locations) > 0 {
		positions := make([]int, 0, len(e.Locations))
		for _, l := range e.Locations {
			if off, ok := src.Offset(l.Line, l.Column); ok {
				positions = append(positions, off)
			}
		}
		if len(positions) > 0 {
			opts = append(opts, WithSource(src, positions...))
		}
	}
	if len(e.Path) > 0 {
		path := make(Path, len(e.Path))
		for i, p := range e.Path {
			switch v := p.(type) {
			case ast.PathName:
				path[i] = string(v)
			case ast.PathIndex:
				path[i] = int(v)
			}
		}
		opts = append(opts, WithPath(path...))
	}
	// The file extension is replaced by the source itself.
	ext := make(map[string]any, len(e.Extensions))
	for k, v := range e.Extensions {
		if k != "file" {
			ext[k] = v
		}
	}
	if len(ext) > 0 {
		opts = append(opts, WithExtensions(ext))
	}
	return New(e.Message, opts...)
}

func sourceNamed(srcs []*language.Source, name string) *language.Source {
	for _, s := range srcs {
		if s != nil && name != "" && s.Name() == name {
			return s
		}
	}
	if len(srcs) > 0 {
		return srcs[0]
	}
	return nil
}
