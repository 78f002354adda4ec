package executor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	gqlerrors "github.com/hanpama/gqlcore/internal/gqlerrors"
	language "github.com/hanpama/gqlcore/internal/language"
	schema "github.com/hanpama/gqlcore/internal/schema"
	"github.com/stretchr/testify/require"
)

// mustParseQuery parses a GraphQL query and fails the test on error.
func mustParseQuery(t *testing.T, q string) *language.QueryDocument {
	t.Helper()
	d, err := language.ParseQuery(q)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return d
}

func at(line, column int) []gqlerrors.Location {
	return []gqlerrors.Location{{Line: line, Column: column}}
}

// plain is the wire form of res with data converted to plain maps.
func plain(res *ExecutionResult) Response {
	out := res.Response()
	out.Data = Plain(out.Data)
	return out
}

func requireResponse(t *testing.T, want Response, got *ExecutionResult) {
	t.Helper()
	if diff := cmp.Diff(want, plain(got)); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

// buildSchema builds sdl and marks exactly the listed "Type.field"
// coordinates as Async.
func buildSchema(t *testing.T, sdl string, async ...string) *schema.Schema {
	t.Helper()
	sch, err := schema.BuildFromSDL("test.graphql", sdl)
	require.NoError(t, err)
	for _, typ := range sch.Types {
		for _, f := range typ.Fields {
			f.SetAsync(false)
		}
	}
	for _, coord := range async {
		typeName, fieldName, _ := strings.Cut(coord, ".")
		f := sch.Type(typeName).Field(fieldName)
		require.NotNil(t, f, coord)
		f.SetAsync(true)
	}
	return sch
}

type resolverFunc func(source any, args map[string]any) (any, error)

func value(v any) resolverFunc {
	return func(any, map[string]any) (any, error) { return v, nil }
}

func failing(message string) resolverFunc {
	return func(any, map[string]any) (any, error) { return nil, errors.New(message) }
}

// fromSource reads the field from a map source, like DataRuntime.
func fromSource(name string) resolverFunc {
	return func(source any, _ map[string]any) (any, error) {
		m, _ := source.(map[string]any)
		return m[name], nil
	}
}

type call struct {
	Field string
	// Batch is 0 for ResolveSync and the 1-based batch number otherwise.
	Batch int
	Args  map[string]any
}

// stubRuntime serves fields from resolvers keyed by "Type.field" and
// records every call. Fields without a resolver are null. Abstract values
// name their type with "__typename" and may wrap their fields in "value".
type stubRuntime struct {
	mu        sync.Mutex
	resolvers map[string]resolverFunc
	calls     []call
	batches   int
	// dropResults truncates every batch result by that many entries.
	dropResults int
	serialize   func(typeName string, v any) (any, error)
}

func newStubRuntime(resolvers map[string]resolverFunc) *stubRuntime {
	return &stubRuntime{resolvers: resolvers}
}

func (r *stubRuntime) resolve(batch int, objectType, field string, source any, args map[string]any) (any, error) {
	key := objectType + "." + field
	r.mu.Lock()
	r.calls = append(r.calls, call{Field: key, Batch: batch, Args: args})
	fn := r.resolvers[key]
	r.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(source, args)
}

func (r *stubRuntime) ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error) {
	return r.resolve(0, objectType, field, source, args)
}

func (r *stubRuntime) BatchResolveAsync(ctx context.Context, tasks []AsyncResolveTask) []AsyncResolveResult {
	r.mu.Lock()
	r.batches++
	batch := r.batches
	r.mu.Unlock()

	results := make([]AsyncResolveResult, len(tasks))
	for i, task := range tasks {
		v, err := r.resolve(batch, task.ObjectType, task.Field, task.Source, task.Args)
		results[i] = AsyncResolveResult{Value: v, Error: err}
	}
	return results[:max(len(results)-r.dropResults, 0)]
}

func (r *stubRuntime) ResolveType(ctx context.Context, abstractType string, v any) (string, error) {
	if m, ok := v.(map[string]any); ok {
		if name, ok := m["__typename"].(string); ok {
			return name, nil
		}
	}
	return "", errors.New("no __typename")
}

func (r *stubRuntime) ResolveUnionConcreteValue(ctx context.Context, unionTypeName string, v any) (any, error) {
	return unwrap(v)
}

func (r *stubRuntime) ResolveInterfaceConcreteValue(ctx context.Context, interfaceTypeName string, v any) (any, error) {
	return unwrap(v)
}

func unwrap(v any) (any, error) {
	m, _ := v.(map[string]any)
	if inner, ok := m["value"]; ok {
		if inner == "broken" {
			return nil, errors.New("cannot unwrap")
		}
		return inner, nil
	}
	return v, nil
}

func (r *stubRuntime) SerializeLeafValue(ctx context.Context, typeName string, v any) (any, error) {
	if r.serialize != nil {
		return r.serialize(typeName, v)
	}
	return v, nil
}

func (r *stubRuntime) Calls() []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]call(nil), r.calls...)
}

func execute(t *testing.T, sch *schema.Schema, rt Runtime, query string, vars map[string]any) *ExecutionResult {
	t.Helper()
	return NewExecutor(rt, sch).ExecuteRequest(context.Background(), mustParseQuery(t, query), "", vars, nil)
}
