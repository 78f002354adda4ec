package gqlerrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	language "github.com/hanpama/gqlcore/internal/language"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fieldSource = "{\n  field\n}\n"

func parseFieldDoc(t *testing.T) (*language.Source, *language.OperationDefinition, *language.Field) {
	t.Helper()
	src := language.NewSource(fieldSource, "")
	doc, err := language.ParseQuerySource(src)
	require.NoError(t, err)
	op := doc.Operations[0]
	field := op.SelectionSet[0].(*language.Field)
	return src, op, field
}

func TestNew(t *testing.T) {
	t.Run("message only", func(t *testing.T) {
		e := New("msg")
		assert.Equal(t, "msg", e.Error())
		assert.Nil(t, e.Nodes())
		assert.Nil(t, e.Source())
		assert.Nil(t, e.Positions())
		assert.Nil(t, e.Locations())
		assert.Nil(t, e.Path())
		assert.Nil(t, e.Extensions())
		assert.Nil(t, e.OriginalError())
	})

	t.Run("empty message uses default", func(t *testing.T) {
		e := New("")
		assert.Equal(t, DefaultMessage, e.Error())
		assert.Equal(t, "", e.Message())
		assert.Equal(t, DefaultMessage, e.Formatted().Message)
	})

	t.Run("locations from a node", func(t *testing.T) {
		src, _, field := parseFieldDoc(t)
		e := New("msg", WithNodes(field))
		assert.Same(t, src, e.Source())
		assert.Equal(t, []int{4}, e.Positions())
		assert.Equal(t, []Location{{Line: 2, Column: 3}}, e.Locations())
	})

	t.Run("locations from an operation", func(t *testing.T) {
		_, op, _ := parseFieldDoc(t)
		e := New("msg", WithNodes(language.NodeAt(op.Position)))
		assert.Equal(t, []int{0}, e.Positions())
		assert.Equal(t, []Location{{Line: 1, Column: 1}}, e.Locations())
	})

	t.Run("explicit source and positions win over nodes", func(t *testing.T) {
		src, _, field := parseFieldDoc(t)
		e := New("msg", WithNodes(field), WithSource(src, 6))
		assert.Same(t, src, e.Source())
		assert.Equal(t, []int{6}, e.Positions())
		assert.Equal(t, []Location{{Line: 2, Column: 5}}, e.Locations())
		assert.Len(t, e.Nodes(), 1)
	})

	t.Run("source without positions has no locations", func(t *testing.T) {
		src := language.NewSource(fieldSource, "")
		e := New("msg", WithSource(src))
		assert.Same(t, src, e.Source())
		assert.Nil(t, e.Locations())
	})

	t.Run("node without location", func(t *testing.T) {
		e := New("msg", WithNodes(language.NodeAt(nil)))
		assert.Len(t, e.Nodes(), 1)
		assert.Nil(t, e.Source())
		assert.Nil(t, e.Positions())
		assert.Nil(t, e.Locations())
		assert.Equal(t, "msg", e.String())
	})

	t.Run("typed nil node", func(t *testing.T) {
		var f *language.Field
		e := New("msg", WithNodes(f))
		assert.Nil(t, e.Locations())
	})

	t.Run("path and extensions", func(t *testing.T) {
		ext := map[string]any{"code": "BAD"}
		e := New("msg", WithPath("path", 3, "to", "field"), WithExtensions(ext))
		assert.Equal(t, Path{"path", 3, "to", "field"}, e.Path())
		assert.Equal(t, ext, e.Extensions())
	})
}

func TestOriginalErrorAndStack(t *testing.T) {
	t.Run("plain cause", func(t *testing.T) {
		cause := errors.New("boom")
		e := New("msg", WithOriginalError(cause))
		assert.Same(t, cause, e.OriginalError())
		assert.ErrorIs(t, e, cause)
		require.NotEmpty(t, e.StackTrace())
		assert.Contains(t, e.StackTrace()[0].Function, "TestOriginalErrorAndStack")
	})

	t.Run("cause stack is preferred", func(t *testing.T) {
		cause := New("inner")
		e := New("outer", WithOriginalError(cause))
		assert.Equal(t, cause.StackTrace(), e.StackTrace())
	})

	t.Run("wrapped cause stack is found", func(t *testing.T) {
		cause := New("inner")
		e := New("outer", WithOriginalError(fmt.Errorf("ctx: %w", cause)))
		assert.Equal(t, cause.StackTrace(), e.StackTrace())
	})
}

func TestFormatted(t *testing.T) {
	src := language.NewSource("\n                query {\n                  something\n                }\n", "")
	e := New("msg",
		WithSource(src, 16, 41),
		WithPath("one", 2),
		WithExtensions(map[string]any{"ext": "foo"}),
	)

	want := Formatted{
		Message:    "msg",
		Locations:  []Location{{Line: 2, Column: 16}, {Line: 3, Column: 17}},
		Path:       Path{"one", 2},
		Extensions: map[string]any{"ext": "foo"},
	}
	if diff := cmp.Diff(want, e.Formatted()); diff != "" {
		t.Fatalf("formatted mismatch (-want +got):\n%s", diff)
	}

	b, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Equal(t,
		`{"message":"msg","locations":[{"line":2,"column":16},{"line":3,"column":17}],"path":["one",2],"extensions":{"ext":"foo"}}`,
		string(b))

	b, err = json.Marshal(New("bare"))
	require.NoError(t, err)
	assert.Equal(t, `{"message":"bare"}`, string(b))
}

func TestFormattedEmptyPath(t *testing.T) {
	e := New("root", WithPath(Path{}...))
	require.NotNil(t, e.Path())
	assert.Equal(t, Formatted{Message: "root", Path: Path{}}, e.Formatted())

	b, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Equal(t, `{"message":"root","path":[]}`, string(b))

	b, err = json.Marshal([]Formatted{{Message: "none"}, {Message: "empty", Path: Path{}}})
	require.NoError(t, err)
	assert.Equal(t, `[{"message":"none"},{"message":"empty","path":[]}]`, string(b))
}

func TestEqual(t *testing.T) {
	_, _, field := parseFieldDoc(t)
	path := Path{"a", 1}
	e1 := New("msg", WithNodes(field), WithPath(path...))
	e2 := New("msg", WithNodes(field), WithPath("a", 1))

	assert.True(t, e1.Equal(e2))
	assert.True(t, e1.Equal(*e2))
	assert.True(t, e1.Equal(e2.Formatted()))
	f := e2.Formatted()
	assert.True(t, e1.Equal(&f))
	assert.False(t, e1.Equal("msg"))
	assert.False(t, e1.Equal((*Error)(nil)))
	assert.False(t, e1.Equal(New("other", WithNodes(field), WithPath("a", 1))))

	e2.Path()[1] = 2
	assert.False(t, e1.Equal(e2))

	assert.True(t, New("msg").Equal(Formatted{Message: "msg", Locations: []Location{}}))
	assert.False(t, New("msg").Equal(Formatted{Message: "msg", Path: Path{}}))
	assert.True(t, New("msg", WithPath(Path{}...)).Equal(Formatted{Message: "msg", Path: Path{}}))
}

func TestIdentity(t *testing.T) {
	e1 := New("msg")
	e2 := New("msg")
	require.True(t, e1.Equal(e2))

	set := map[*Error]struct{}{e1: {}, e2: {}}
	assert.Len(t, set, 2)
	assert.NotSame(t, e1, e2)
}

func TestFormatErrorAndPrintError(t *testing.T) {
	_, err := FormatError(errors.New("plain"))
	assert.ErrorIs(t, err, ErrNotGraphQLError)
	_, err = PrintError(errors.New("plain"))
	assert.ErrorIs(t, err, ErrNotGraphQLError)
	_, err = FormatError((*Error)(nil))
	assert.ErrorIs(t, err, ErrNotGraphQLError)

	f, err := FormatError(New("msg", WithPath("a")))
	require.NoError(t, err)
	assert.Equal(t, Formatted{Message: "msg", Path: Path{"a"}}, f)

	s, err := PrintError(New("msg"))
	require.NoError(t, err)
	assert.Equal(t, "msg", s)
}

func TestFmtVerbs(t *testing.T) {
	_, _, field := parseFieldDoc(t)
	e := New("msg", WithNodes(field), WithPath("field"), WithOriginalError(errors.New("boom")))

	assert.Equal(t, "msg", fmt.Sprintf("%v", e))
	assert.Equal(t, "msg", fmt.Sprintf("%s", e))
	assert.Equal(t, `"msg"`, fmt.Sprintf("%q", e))
	assert.Equal(t, `Error("msg", locations=[2:3], path=[field])`, fmt.Sprintf("%#v", e))

	verbose := fmt.Sprintf("%+v", e)
	assert.True(t, strings.HasPrefix(verbose, "msg\n\nGraphQL request:2:3\n"))
	assert.Contains(t, verbose, "\ncause: boom")
	assert.Contains(t, verbose, "\nstack:")
}

func TestList(t *testing.T) {
	a := New("first", WithPath("a"))
	b := New("second")
	l := List{a, b}

	assert.Equal(t, "first\nsecond", l.Error())
	assert.Equal(t, []Formatted{{Message: "first", Path: Path{"a"}}, {Message: "second"}}, l.Formatted())

	var target *Error
	require.ErrorAs(t, error(l), &target)
	assert.Same(t, a, target)
}
