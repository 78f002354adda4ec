package executor

import (
	"encoding/json"
	"testing"

	gqlerrors "github.com/hanpama/gqlcore/internal/gqlerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// batches groups the recorded calls by batch number. Sync calls are under 0.
func batches(rt *stubRuntime) map[int][]string {
	out := map[int][]string{}
	for _, c := range rt.Calls() {
		out[c.Batch] = append(out[c.Batch], c.Field)
	}
	return out
}

func TestAsyncFieldsBatchPerDepth(t *testing.T) {
	sch := buildSchema(t, booksSDL, "Query.book", "Query.books", "Book.author")
	rt := booksRuntime(map[string]any{
		"book": map[string]any{"title": "Dune", "author": map[string]any{"name": "Frank"}},
		"books": []any{
			map[string]any{"author": map[string]any{"name": "A"}},
			map[string]any{"author": map[string]any{"name": "B"}},
		},
		"count": 1,
	})

	got := execute(t, sch, rt, `{ book { title author { name } } books { author { name } } count }`, nil)
	require.Empty(t, got.Errors)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	// Placeholders keep async fields in collection order.
	assert.Equal(t, `{"data":{"book":{"title":"Dune","author":{"name":"Frank"}},"books":[{"author":{"name":"A"}},{"author":{"name":"B"}}],"count":1}}`, string(raw))

	assert.Equal(t, map[int][]string{
		0: {"Query.count", "Book.title", "Author.name", "Author.name", "Author.name"},
		1: {"Query.book", "Query.books"},
		2: {"Book.author", "Book.author", "Book.author"},
	}, batches(rt))
}

func TestAsyncNonNullPropagation(t *testing.T) {
	t.Run("nulls the nearest nullable ancestor and drops its queued fields", func(t *testing.T) {
		sch := buildSchema(t, booksSDL, "Book.author", "Book.title", "Author.name")
		rt := booksRuntime(map[string]any{"books": []any{
			map[string]any{"title": "T", "author": map[string]any{"name": "A"}},
			map[string]any{"author": map[string]any{"name": "B"}},
		}})

		got := execute(t, sch, rt, `{ books { author { name } title } }`, nil)
		requireResponse(t, Response{
			Data: map[string]any{"books": []any{
				map[string]any{"author": map[string]any{"name": "A"}, "title": "T"},
				nil,
			}},
			Errors: []gqlerrors.Formatted{{
				Message:   "Cannot return null for non-nullable field Book.title.",
				Locations: at(1, 27),
				Path:      Path{"books", 1, "title"},
			}},
		}, got)
		assert.Equal(t, map[int][]string{
			0: {"Query.books"},
			1: {"Book.author", "Book.title", "Book.author", "Book.title"},
			2: {"Author.name"},
		}, batches(rt))
	})

	t.Run("root field nulls data and stops execution", func(t *testing.T) {
		sch := buildSchema(t, booksSDL, "Query.name", "Query.book", "Book.author")
		rt := booksRuntime(map[string]any{
			"book":  map[string]any{"author": map[string]any{"name": "A"}},
			"count": 1,
		})

		got := execute(t, sch, rt, `{ name book { author { name } } count }`, nil)
		requireResponse(t, Response{
			Errors: []gqlerrors.Formatted{{
				Message:   "Cannot return null for non-nullable field Query.name.",
				Locations: at(1, 3),
				Path:      Path{"name"},
			}},
		}, got)
		assert.Nil(t, got.Data)
		assert.Equal(t, map[int][]string{
			0: {"Query.count"},
			1: {"Query.name", "Query.book"},
		}, batches(rt))
	})
}

func TestAsyncErrors(t *testing.T) {
	t.Run("resolver error", func(t *testing.T) {
		sch := buildSchema(t, booksSDL, "Query.book")
		rt := booksRuntime(map[string]any{"count": 1})
		rt.resolvers["Query.book"] = failing("down")

		got := execute(t, sch, rt, `{ book { title } count }`, nil)
		requireResponse(t, Response{
			Data: map[string]any{"book": nil, "count": 1},
			Errors: []gqlerrors.Formatted{{
				Message:   "down",
				Locations: at(1, 3),
				Path:      Path{"book"},
			}},
		}, got)
	})

	t.Run("missing batch results", func(t *testing.T) {
		sch := buildSchema(t, booksSDL, "Query.book", "Query.count")
		rt := booksRuntime(map[string]any{"book": map[string]any{"title": "Dune"}, "count": 1})
		rt.dropResults = 1

		got := execute(t, sch, rt, `{ book { title } count }`, nil)
		requireResponse(t, Response{
			Data: map[string]any{"book": map[string]any{"title": "Dune"}, "count": nil},
			Errors: []gqlerrors.Formatted{{
				Message:   "runtime returned 1 results for 2 tasks",
				Locations: at(1, 18),
				Path:      Path{"count"},
			}},
		}, got)
	})
}

func TestAsyncTaskSource(t *testing.T) {
	sch := buildSchema(t, booksSDL, "Book.author")
	book := map[string]any{"title": "Dune", "author": map[string]any{"name": "Frank"}}
	rt := booksRuntime(map[string]any{"book": book})

	var sources []any
	rt.resolvers["Book.author"] = func(source any, _ map[string]any) (any, error) {
		sources = append(sources, source)
		return fromSource("author")(source, nil)
	}

	got := execute(t, sch, rt, `{ book { author { name } } }`, nil)
	require.Empty(t, got.Errors)
	assert.Equal(t, []any{book}, sources)
	assert.Equal(t, map[int][]string{
		0: {"Query.book", "Author.name"},
		1: {"Book.author"},
	}, batches(rt))
}
