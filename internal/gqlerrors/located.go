package gqlerrors

import (
	"errors"

	language "github.com/hanpama/gqlcore/internal/language"
)

// extensioner is implemented by resolver errors that carry machine-readable
// details for the "extensions" entry.
type extensioner interface {
	Extensions() map[string]any
}

// Located turns a failure raised while resolving the fields in nodes at path
// into an *Error.
//
// If err already is (or wraps) an *Error that has a path, it is returned
// unchanged. Otherwise a new Error is built with err's message, keeping the
// nodes, explicit positions and extensions of a wrapped *Error. It falls back
// to nodes for location, records path and wraps err as its original error.
func Located(err error, nodes []language.Node, path Path) *Error {
	if err == nil {
		return New("", WithNodes(nodes...), WithPath(path...))
	}
	inner, isGraphQL := As(err)
	if isGraphQL && inner.path != nil {
		return inner
	}

	message := err.Error()
	if direct, ok := err.(*Error); ok && direct != nil {
		message = direct.message
	}
	opts := []Option{WithPath(path...), WithOriginalError(err)}
	if isGraphQL {
		if len(inner.nodes) > 0 {
			nodes = inner.nodes
		}
		if inner.source != nil && len(inner.positions) > 0 && len(inner.nodes) == 0 {
			opts = append(opts, WithSource(inner.source, inner.positions...))
		}
	}
	opts = append(opts, WithNodes(nodes...))

	var ext extensioner
	if errors.As(err, &ext) {
		if m := ext.Extensions(); len(m) > 0 {
			opts = append(opts, WithExtensions(m))
		}
	}
	return New(message, opts...)
}
