package executor

import (
	"errors"
	"testing"

	gqlerrors "github.com/hanpama/gqlcore/internal/gqlerrors"
	"github.com/stretchr/testify/assert"
)

const booksSDL = `
interface Node { id: ID! }
type Book implements Node { id: ID! title: String! author: Author tags: [String!] }
type Author implements Node { id: ID! name: String }
union Result = Book | Author

type Query {
	book: Book
	requiredBook: Book!
	books: [Book]
	strictBooks: [Book!]
	node: Node
	results: [Result]
	count: Int
	name: String!
}
`

func booksRuntime(root map[string]any) *stubRuntime {
	resolvers := map[string]resolverFunc{
		"Book.id":     fromSource("id"),
		"Book.title":  fromSource("title"),
		"Book.author": fromSource("author"),
		"Book.tags":   fromSource("tags"),
		"Author.id":   fromSource("id"),
		"Author.name": fromSource("name"),
	}
	for name, v := range root {
		resolvers["Query."+name] = value(v)
	}
	return newStubRuntime(resolvers)
}

type codedError struct{ code string }

func (e codedError) Error() string              { return "coded failure" }
func (e codedError) Extensions() map[string]any { return map[string]any{"code": e.code} }

func TestCompleteValue(t *testing.T) {
	sch := buildSchema(t, booksSDL)

	t.Run("objects lists and leaves", func(t *testing.T) {
		rt := booksRuntime(map[string]any{
			"book": map[string]any{
				"id":     "1",
				"title":  "Dune",
				"author": map[string]any{"id": "a", "name": "Frank"},
				"tags":   []string{"sf", "classic"},
			},
			"count": 2,
		})
		got := execute(t, sch, rt, `{ book { id title author { name } tags } count __typename }`, nil)
		requireResponse(t, Response{Data: map[string]any{
			"book": map[string]any{
				"id":     "1",
				"title":  "Dune",
				"author": map[string]any{"name": "Frank"},
				"tags":   []any{"sf", "classic"},
			},
			"count":      2,
			"__typename": "Query",
		}}, got)
	})

	t.Run("null object", func(t *testing.T) {
		var missing *struct{}
		rt := booksRuntime(map[string]any{"book": missing})
		requireResponse(t, Response{Data: map[string]any{"book": nil}},
			execute(t, sch, rt, `{ book { id } }`, nil))
	})

	t.Run("not a list", func(t *testing.T) {
		rt := booksRuntime(map[string]any{"books": "nope", "count": 1})
		got := execute(t, sch, rt, `{ books { id } count }`, nil)
		requireResponse(t, Response{
			Data: map[string]any{"books": nil, "count": 1},
			Errors: []gqlerrors.Formatted{{
				Message:   "Expected Iterable, but did not find one for field Query.books.",
				Locations: at(1, 3),
				Path:      Path{"books"},
			}},
		}, got)
	})

	t.Run("unknown field", func(t *testing.T) {
		rt := booksRuntime(map[string]any{"count": 1})
		got := execute(t, sch, rt, `{ count nope }`, nil)
		requireResponse(t, Response{
			Data: map[string]any{"count": 1, "nope": nil},
			Errors: []gqlerrors.Formatted{{
				Message:   "Cannot query field 'nope' on type 'Query'",
				Locations: at(1, 9),
				Path:      Path{"nope"},
			}},
		}, got)
	})

	t.Run("serialize failure", func(t *testing.T) {
		rt := booksRuntime(map[string]any{"count": 1, "book": map[string]any{"title": "Dune"}})
		rt.serialize = func(typeName string, v any) (any, error) {
			if typeName == "Int" {
				return nil, errors.New("Int cannot represent value")
			}
			return v, nil
		}
		got := execute(t, sch, rt, `{ count book { title } }`, nil)
		requireResponse(t, Response{
			Data: map[string]any{"count": nil, "book": map[string]any{"title": "Dune"}},
			Errors: []gqlerrors.Formatted{{
				Message:   "Int cannot represent value",
				Locations: at(1, 3),
				Path:      Path{"count"},
			}},
		}, got)
	})
}

func TestResolverErrors(t *testing.T) {
	sch := buildSchema(t, booksSDL)

	cases := []struct {
		name string
		err  error
		want gqlerrors.Formatted
	}{
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: gqlerrors.Formatted{Message: "boom", Locations: at(1, 10), Path: Path{"book", "author"}},
		},
		{
			name: "error with extensions",
			err:  codedError{code: "FORBIDDEN"},
			want: gqlerrors.Formatted{
				Message:    "coded failure",
				Locations:  at(1, 10),
				Path:       Path{"book", "author"},
				Extensions: map[string]any{"code": "FORBIDDEN"},
			},
		},
		{
			name: "graphql error without location",
			err:  gqlerrors.New("denied", gqlerrors.WithExtensions(map[string]any{"code": "DENIED"})),
			want: gqlerrors.Formatted{
				Message:    "denied",
				Locations:  at(1, 10),
				Path:       Path{"book", "author"},
				Extensions: map[string]any{"code": "DENIED"},
			},
		},
		{
			name: "graphql error with its own path",
			err:  gqlerrors.New("elsewhere", gqlerrors.WithPath("other")),
			want: gqlerrors.Formatted{Message: "elsewhere", Path: Path{"other"}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rt := booksRuntime(map[string]any{"book": map[string]any{"title": "Dune"}})
			rt.resolvers["Book.author"] = func(any, map[string]any) (any, error) { return nil, tc.err }
			got := execute(t, sch, rt, `{ book { author { name } title } }`, nil)
			requireResponse(t, Response{
				Data:   map[string]any{"book": map[string]any{"author": nil, "title": "Dune"}},
				Errors: []gqlerrors.Formatted{tc.want},
			}, got)
		})
	}
}

func TestNonNullPropagation(t *testing.T) {
	sch := buildSchema(t, booksSDL)

	cases := []struct {
		name  string
		root  map[string]any
		query string
		want  Response
	}{
		{
			name:  "to the parent object",
			root:  map[string]any{"book": map[string]any{"id": "1"}, "count": 3},
			query: `{ book { id title } count }`,
			want: Response{
				Data: map[string]any{"book": nil, "count": 3},
				Errors: []gqlerrors.Formatted{{
					Message:   "Cannot return null for non-nullable field Book.title.",
					Locations: at(1, 13),
					Path:      Path{"book", "title"},
				}},
			},
		},
		{
			name: "to a nullable list item",
			root: map[string]any{"books": []any{
				map[string]any{"title": "A"},
				map[string]any{},
			}},
			query: `{ books { title } }`,
			want: Response{
				Data: map[string]any{"books": []any{map[string]any{"title": "A"}, nil}},
				Errors: []gqlerrors.Formatted{{
					Message:   "Cannot return null for non-nullable field Book.title.",
					Locations: at(1, 11),
					Path:      Path{"books", 1, "title"},
				}},
			},
		},
		{
			name: "through non-null items to the list",
			root: map[string]any{"strictBooks": []any{
				map[string]any{"title": "A"},
				map[string]any{},
				map[string]any{},
			}},
			query: `{ strictBooks { title } }`,
			want: Response{
				Data: map[string]any{"strictBooks": nil},
				Errors: []gqlerrors.Formatted{{
					Message:   "Cannot return null for non-nullable field Book.title.",
					Locations: at(1, 17),
					Path:      Path{"strictBooks", 1, "title"},
				}},
			},
		},
		{
			name:  "null item of a non-null list",
			root:  map[string]any{"strictBooks": []any{map[string]any{"title": "A"}, nil}},
			query: `{ strictBooks { title } }`,
			want: Response{
				Data: map[string]any{"strictBooks": nil},
				Errors: []gqlerrors.Formatted{{
					Message:   "Cannot return null for non-nullable field Query.strictBooks.",
					Locations: at(1, 3),
					Path:      Path{"strictBooks", 1},
				}},
			},
		},
		{
			name:  "root field nulls data",
			root:  map[string]any{"count": 1},
			query: `{ name count }`,
			want: Response{
				Errors: []gqlerrors.Formatted{{
					Message:   "Cannot return null for non-nullable field Query.name.",
					Locations: at(1, 3),
					Path:      Path{"name"},
				}},
			},
		},
		{
			name:  "through a non-null root field",
			root:  map[string]any{"requiredBook": map[string]any{"id": "1"}},
			query: `{ requiredBook { title } }`,
			want: Response{
				Errors: []gqlerrors.Formatted{{
					Message:   "Cannot return null for non-nullable field Book.title.",
					Locations: at(1, 18),
					Path:      Path{"requiredBook", "title"},
				}},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := execute(t, sch, booksRuntime(tc.root), tc.query, nil)
			requireResponse(t, tc.want, got)
		})
	}
}

func TestCompleteAbstractValue(t *testing.T) {
	sch := buildSchema(t, booksSDL)
	const nodeQuery = `{ node { id ... on Book { title } ... on Author { name } } }`

	t.Run("interface", func(t *testing.T) {
		rt := booksRuntime(map[string]any{"node": map[string]any{
			"__typename": "Book",
			"value":      map[string]any{"id": "1", "title": "Dune"},
		}})
		requireResponse(t, Response{Data: map[string]any{"node": map[string]any{"id": "1", "title": "Dune"}}},
			execute(t, sch, rt, nodeQuery, nil))
	})

	t.Run("union list", func(t *testing.T) {
		rt := booksRuntime(map[string]any{"results": []any{
			map[string]any{"__typename": "Book", "value": map[string]any{"title": "Dune"}},
			map[string]any{"__typename": "Author", "value": map[string]any{"name": "Frank"}},
		}})
		got := execute(t, sch, rt, `{ results { __typename ... on Book { title } ... on Author { name } } }`, nil)
		requireResponse(t, Response{Data: map[string]any{"results": []any{
			map[string]any{"__typename": "Book", "title": "Dune"},
			map[string]any{"__typename": "Author", "name": "Frank"},
		}}}, got)
	})

	cases := []struct {
		name  string
		value map[string]any
		want  string
	}{
		{"type not resolved", map[string]any{"id": "1"}, "no __typename"},
		{"unknown type", map[string]any{"__typename": "Missing"}, `Abstract type Node must resolve to an Object type at runtime for field Query.node. Got: "Missing".`},
		{"not an object type", map[string]any{"__typename": "Result"}, `Abstract type Node must resolve to an Object type at runtime for field Query.node. Got: "Result".`},
		{"not a possible type", map[string]any{"__typename": "Query"}, `Runtime Object type "Query" is not a possible type for "Node".`},
		{"concrete value fails", map[string]any{"__typename": "Book", "value": "broken"}, "cannot unwrap"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rt := booksRuntime(map[string]any{"node": tc.value})
			requireResponse(t, Response{
				Data:   map[string]any{"node": nil},
				Errors: []gqlerrors.Formatted{{Message: tc.want, Locations: at(1, 3), Path: Path{"node"}}},
			}, execute(t, sch, rt, nodeQuery, nil))
		})
	}

	t.Run("resolvers see the concrete value", func(t *testing.T) {
		rt := booksRuntime(map[string]any{"node": map[string]any{
			"__typename": "Author",
			"value":      map[string]any{"id": "a", "name": "Frank"},
		}})
		execute(t, sch, rt, nodeQuery, nil)
		var fields []string
		for _, c := range rt.Calls() {
			fields = append(fields, c.Field)
		}
		assert.Equal(t, []string{"Query.node", "Author.id", "Author.name"}, fields)
	})
}
