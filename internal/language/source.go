package language

import (
	"runtime"
	"sort"
	"strings"
	"sync"
	"weak"

	"github.com/vektah/gqlparser/v2/ast"
)

// DefaultSourceName names sources created without a name.
const DefaultSourceName = "GraphQL request"

// Source is an immutable GraphQL document body with a lazily built index of
// line start offsets. Offsets are character (rune) offsets, the unit used by
// parser positions.
type Source struct {
	name string
	body string

	once       sync.Once
	lineStarts []int
}

// SourceLocation is a 1-indexed line and column.
type SourceLocation struct {
	Line   int
	Column int
}

// NewSource returns a Source for body. An empty name becomes DefaultSourceName.
func NewSource(body, name string) *Source {
	if name == "" {
		name = DefaultSourceName
	}
	return &Source{name: name, body: body}
}

func (s *Source) Name() string { return s.name }

func (s *Source) Body() string { return s.body }

// Location maps a character offset to its line and column. Offsets past the
// end of the body are clamped to the last line.
func (s *Source) Location(offset int) SourceLocation {
	if offset < 0 {
		offset = 0
	}
	starts := s.index()
	line := sort.Search(len(starts), func(i int) bool { return starts[i] > offset })
	return SourceLocation{Line: line, Column: offset - starts[line-1] + 1}
}

// Offset is the inverse of Location. It reports false when line is out of
// range.
func (s *Source) Offset(line, column int) (int, bool) {
	starts := s.index()
	if line < 1 || line > len(starts) || column < 1 {
		return 0, false
	}
	return starts[line-1] + column - 1, true
}

// Lines splits the body on \r\n, \n and \r.
func (s *Source) Lines() []string {
	var lines []string
	var cur strings.Builder
	runes := []rune(s.body)
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; r {
		case '\r':
			if i+1 < len(runes) && runes[i+1] == '\n' {
				i++
			}
			fallthrough
		case '\n':
			lines = append(lines, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(lines, cur.String())
}

func (s *Source) index() []int {
	s.once.Do(func() {
		starts := []int{0}
		pos := 0
		prevCR := false
		for _, r := range s.body {
			pos++
			switch {
			case r == '\n' && prevCR:
				starts[len(starts)-1] = pos
			case r == '\n' || r == '\r':
				starts = append(starts, pos)
			}
			prevCR = r == '\r'
		}
		s.lineStarts = starts
	})
	return s.lineStarts
}

// parserSource returns a fresh parser input registered so that positions
// produced from it map back to s.
func (s *Source) parserSource() *ast.Source {
	src := &ast.Source{Name: s.name, Input: s.body}
	register(src, s)
	return src
}

// sources maps parser inputs to their Source. Keys are weak so that the
// table never keeps a parsed document alive.
var sources sync.Map // weak.Pointer[ast.Source] -> *Source

func register(src *ast.Source, s *Source) *Source {
	key := weak.Make(src)
	actual, loaded := sources.LoadOrStore(key, s)
	if !loaded {
		runtime.AddCleanup(src, func(k weak.Pointer[ast.Source]) { sources.Delete(k) }, key)
	}
	return actual.(*Source)
}

// SourceOf returns the Source backing a parser input, building and caching
// one the first time an unregistered input is seen.
func SourceOf(src *ast.Source) *Source {
	if src == nil {
		return nil
	}
	if s, ok := sources.Load(weak.Make(src)); ok {
		return s.(*Source)
	}
	return register(src, NewSource(src.Input, src.Name))
}
