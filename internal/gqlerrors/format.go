package gqlerrors

import (
	"encoding/json"
	"errors"
	"reflect"
)

// ErrNotGraphQLError is returned by FormatError and PrintError when given a
// value that is not an *Error. It signals a caller bug rather than a query
// failure.
var ErrNotGraphQLError = errors.New("gqlerrors: expected a GraphQL error")

// Formatted is the wire representation of an Error. A nil Path is left out
// of the JSON form; an empty one is written as [].
type Formatted struct {
	Message    string         `json:"message"`
	Locations  []Location     `json:"locations,omitempty"`
	Path       Path           `json:"path"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (f Formatted) MarshalJSON() ([]byte, error) {
	type wire struct {
		Message    string         `json:"message"`
		Locations  []Location     `json:"locations,omitempty"`
		Path       *Path          `json:"path,omitempty"`
		Extensions map[string]any `json:"extensions,omitempty"`
	}
	w := wire{Message: f.Message, Locations: f.Locations, Extensions: f.Extensions}
	if f.Path != nil {
		w.Path = &f.Path
	}
	return json.Marshal(w)
}

// Formatted returns the wire representation of e.
func (e *Error) Formatted() Formatted {
	f := Formatted{Message: e.Error()}
	if len(e.locations) > 0 {
		f.Locations = e.locations
	}
	if e.path != nil {
		f.Path = e.path
	}
	if len(e.extensions) > 0 {
		f.Extensions = e.extensions
	}
	return f
}

func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Formatted())
}

// Equal reports whether other has the same message, locations, path and
// extensions. other may be an *Error, an Error, a Formatted or a *Formatted.
func (e *Error) Equal(other any) bool {
	if e == nil {
		return false
	}
	var f Formatted
	switch o := other.(type) {
	case *Error:
		if o == nil {
			return false
		}
		f = o.Formatted()
	case Error:
		f = o.Formatted()
	case Formatted:
		f = normalize(o)
	case *Formatted:
		if o == nil {
			return false
		}
		f = normalize(*o)
	default:
		return false
	}
	return reflect.DeepEqual(e.Formatted(), f)
}

func normalize(f Formatted) Formatted {
	if len(f.Locations) == 0 {
		f.Locations = nil
	}
	if len(f.Extensions) == 0 {
		f.Extensions = nil
	}
	return f
}

// FormatError returns the wire representation of err, which must be an
// *Error.
func FormatError(err error) (Formatted, error) {
	ge, ok := err.(*Error)
	if !ok || ge == nil {
		return Formatted{}, ErrNotGraphQLError
	}
	return ge.Formatted(), nil
}

// PrintError renders err, which must be an *Error, with source snippets.
func PrintError(err error) (string, error) {
	ge, ok := err.(*Error)
	if !ok || ge == nil {
		return "", ErrNotGraphQLError
	}
	return ge.String(), nil
}
