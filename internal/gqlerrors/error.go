package gqlerrors

import (
	"errors"
	"fmt"
	"io"
	"strings"

	language "github.com/hanpama/gqlcore/internal/language"
)

// DefaultMessage is reported for errors constructed without a message.
const DefaultMessage = "An unknown error occurred."

// Path is a response path of field names (string) and list indices (int).
type Path []any

// Location is a 1-indexed line and column in a source document.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Error is a GraphQL error with source locations and a response path.
//
// An Error is immutable after construction, with one exception: Path returns
// the slice supplied by the caller, so writes through it are visible.
type Error struct {
	message    string
	nodes      []language.Node
	source     *language.Source
	positions  []int
	locations  []Location
	path       Path
	extensions map[string]any
	original   error
	stack      Stack
}

type options struct {
	nodes      []language.Node
	source     *language.Source
	positions  []int
	path       Path
	extensions map[string]any
	original   error
}

// Option configures an Error under construction.
type Option func(*options)

// WithNodes attaches the syntax nodes the error refers to.
func WithNodes(nodes ...language.Node) Option {
	return func(o *options) { o.nodes = append(o.nodes, nodes...) }
}

// WithSource sets explicit positions within src. They take precedence over
// positions derived from nodes.
func WithSource(src *language.Source, positions ...int) Option {
	return func(o *options) {
		o.source = src
		o.positions = positions
	}
}

// WithPath sets the response path. The slice is stored as given.
func WithPath(path ...any) Option {
	return func(o *options) { o.path = path }
}

func WithExtensions(extensions map[string]any) Option {
	return func(o *options) { o.extensions = extensions }
}

// WithOriginalError records the underlying cause. If the cause carries a
// stack trace it becomes the stack of the new error.
func WithOriginalError(err error) Option {
	return func(o *options) { o.original = err }
}

// New builds an Error. An empty message is reported as DefaultMessage.
func New(message string, opts ...Option) *Error {
	var o options
	for _, f := range opts {
		f(&o)
	}
	e := &Error{
		message:    message,
		path:       o.path,
		extensions: o.extensions,
		original:   o.original,
	}
	if len(o.nodes) > 0 {
		e.nodes = o.nodes
	}

	var spans []language.Span
	for _, n := range e.nodes {
		if sp, ok := language.SpanOf(n); ok {
			spans = append(spans, sp)
		}
	}

	e.source = o.source
	if e.source == nil && len(spans) > 0 {
		e.source = spans[0].Source
	}

	switch {
	case len(o.positions) > 0:
		e.positions = o.positions
		if e.source != nil {
			e.locations = make([]Location, len(o.positions))
			for i, pos := range o.positions {
				e.locations[i] = toLocation(e.source.Location(pos))
			}
		}
	case len(spans) > 0:
		e.positions = make([]int, len(spans))
		e.locations = make([]Location, len(spans))
		for i, sp := range spans {
			e.positions[i] = sp.Start
			e.locations[i] = toLocation(sp.Source.Location(sp.Start))
		}
	}

	e.stack = stackOf(o.original)
	if e.stack == nil {
		e.stack = captureStack(0)
	}
	return e
}

// Errorf is New with a formatted message.
func Errorf(format string, args ...any) *Error {
	return New(fmt.Sprintf(format, args...))
}

func toLocation(l language.SourceLocation) Location {
	return Location{Line: l.Line, Column: l.Column}
}

// Message returns the message as supplied, possibly empty.
func (e *Error) Message() string { return e.message }

func (e *Error) Nodes() []language.Node { return e.nodes }

// Source is the explicit source, or the source of the first located node.
func (e *Error) Source() *language.Source { return e.source }

func (e *Error) Positions() []int { return e.positions }

func (e *Error) Locations() []Location { return e.locations }

func (e *Error) Path() Path { return e.path }

func (e *Error) Extensions() map[string]any { return e.extensions }

func (e *Error) OriginalError() error { return e.original }

// StackTrace returns the stack of the original error when it had one, or the
// stack captured when e was built.
func (e *Error) StackTrace() Stack { return e.stack }

func (e *Error) Unwrap() error { return e.original }

// Error returns the message.
func (e *Error) Error() string {
	if e.message == "" {
		return DefaultMessage
	}
	return e.message
}

// String renders the message with source snippets for every location.
func (e *Error) String() string { return printError(e) }

// GoString is a compact debugging form, e.g.
// Error("msg", locations=[2:3], path=[a 1]).
func (e *Error) GoString() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Error(%q", e.message)
	if len(e.locations) > 0 {
		b.WriteString(", locations=[")
		for i, l := range e.locations {
			if i > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "%d:%d", l.Line, l.Column)
		}
		b.WriteString("]")
	}
	if e.path != nil {
		fmt.Fprintf(&b, ", path=%v", []any(e.path))
	}
	if e.extensions != nil {
		fmt.Fprintf(&b, ", extensions=%v", e.extensions)
	}
	b.WriteString(")")
	return b.String()
}

// Format implements fmt.Formatter. %+v adds source snippets, the cause and
// the stack.
func (e *Error) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = io.WriteString(s, e.String())
			if e.original != nil {
				_, _ = fmt.Fprintf(s, "\ncause: %+v", e.original)
			}
			if len(e.stack) > 0 {
				_, _ = io.WriteString(s, "\nstack:")
				for _, fr := range e.stack {
					_, _ = fmt.Fprintf(s, "\n  %s %s:%d", fr.Function, fr.File, fr.Line)
				}
			}
			return
		}
		if s.Flag('#') {
			_, _ = io.WriteString(s, e.GoString())
			return
		}
		_, _ = io.WriteString(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	default:
		_, _ = io.WriteString(s, e.Error())
	}
}

// As reports whether err is or wraps an *Error.
func As(err error) (*Error, bool) {
	var ge *Error
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

// List is an ordered collection of errors, as accumulated by an execution.
type List []*Error

func (l List) Error() string {
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// Formatted returns the wire representation of every error.
func (l List) Formatted() []Formatted {
	out := make([]Formatted, len(l))
	for i, e := range l {
		out[i] = e.Formatted()
	}
	return out
}

// Unwrap exposes the members to errors.Is and errors.As.
func (l List) Unwrap() []error {
	out := make([]error, len(l))
	for i, e := range l {
		out[i] = e
	}
	return out
}
