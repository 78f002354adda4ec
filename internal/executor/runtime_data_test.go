package executor

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	gqlerrors "github.com/hanpama/gqlcore/internal/gqlerrors"
	schema "github.com/hanpama/gqlcore/internal/schema"
	"github.com/stretchr/testify/require"
)

const charactersSDL = `
type Query {
	hero: Character
	heroes: [Character!]!
	droid(id: ID!): Droid
	count: Int
	kind: Kind
}
interface Character { id: ID! name: String! }
type Human implements Character { id: ID! name: String! height: Float }
type Droid implements Character { id: ID! name: String! primaryFunction: String }
enum Kind { HUMAN DROID }
`

func charactersSchema(t *testing.T) *schema.Schema {
	t.Helper()
	sch, err := schema.BuildFromSDL("characters.graphql", charactersSDL)
	require.NoError(t, err)
	return sch
}

func TestDataRuntimeExecute(t *testing.T) {
	sch := charactersSchema(t)
	root := map[string]any{
		"hero": map[string]any{"__typename": "Droid", "id": "2001", "name": "R2-D2", "primaryFunction": "Astromech"},
		"heroes": []any{
			map[string]any{"__typename": "Human", "id": float64(1000), "name": "Luke", "height": int8(2)},
			map[string]any{"__typename": "Droid", "id": "2001", "name": "R2-D2"},
		},
		"droid": map[string]any{"id": "2001", "name": "R2-D2"},
		"count": float64(2),
		"kind":  "DROID",
	}
	doc := mustParseQuery(t, `{
		hero { name ... on Droid { primaryFunction } }
		heroes { __typename id ... on Human { height } }
		droid(id: "2001") { name }
		count
		kind
	}`)

	got := NewExecutor(NewDataRuntime(sch, 4), sch).ExecuteRequest(context.Background(), doc, "", nil, root)

	want := Response{Data: map[string]any{
		"hero": map[string]any{"name": "R2-D2", "primaryFunction": "Astromech"},
		"heroes": []any{
			map[string]any{"__typename": "Human", "id": "1000", "height": float64(2)},
			map[string]any{"__typename": "Droid", "id": "2001"},
		},
		"droid": map[string]any{"name": "R2-D2"},
		"count": int32(2),
		"kind":  "DROID",
	}}
	if diff := cmp.Diff(want, plain(got)); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestDataRuntimeErrors(t *testing.T) {
	sch := charactersSchema(t)

	t.Run("missing typename on interface", func(t *testing.T) {
		root := map[string]any{"hero": map[string]any{"name": "?"}}
		doc := mustParseQuery(t, `{ hero { name } }`)
		got := NewExecutor(NewDataRuntime(sch, 1), sch).ExecuteRequest(context.Background(), doc, "", nil, root)

		want := Response{
			Data: map[string]any{"hero": nil},
			Errors: []gqlerrors.Formatted{{
				Message:   "cannot resolve the concrete type of Character value: no __typename",
				Locations: at(1, 3),
				Path:      gqlerrors.Path{"hero"},
			}},
		}
		if diff := cmp.Diff(want, plain(got)); diff != "" {
			t.Fatalf("result mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("int out of range", func(t *testing.T) {
		root := map[string]any{"count": float64(math.MaxInt32) + 1}
		doc := mustParseQuery(t, `{ count }`)
		got := NewExecutor(NewDataRuntime(sch, 1), sch).ExecuteRequest(context.Background(), doc, "", nil, root)

		require.Len(t, got.Errors, 1)
		require.Contains(t, got.Errors[0].Message(), "non 32-bit")
		require.Equal(t, gqlerrors.Path{"count"}, got.Errors[0].Path())
	})

	t.Run("unknown enum value", func(t *testing.T) {
		root := map[string]any{"kind": "WOOKIEE"}
		doc := mustParseQuery(t, `{ kind }`)
		got := NewExecutor(NewDataRuntime(sch, 1), sch).ExecuteRequest(context.Background(), doc, "", nil, root)

		require.Len(t, got.Errors, 1)
		require.Equal(t, `Enum "Kind" cannot represent value: WOOKIEE`, got.Errors[0].Message())
	})

	t.Run("source is not an object", func(t *testing.T) {
		_, err := NewDataRuntime(sch, 1).ResolveSync(context.Background(), "Query", "count", []any{1}, nil)
		require.EqualError(t, err, "cannot read Query.count from []interface {}")
	})
}

func TestDataRuntimeBatch(t *testing.T) {
	r := NewDataRuntime(charactersSchema(t), 2)
	tasks := []AsyncResolveTask{
		{ObjectType: "Human", Field: "name", Source: map[string]any{"name": "Luke"}},
		{ObjectType: "Human", Field: "name", Source: nil},
		{ObjectType: "Human", Field: "name", Source: "oops"},
		{ObjectType: "Droid", Field: "name", Source: map[string]any{"name": "C-3PO"}},
	}

	results := r.BatchResolveAsync(context.Background(), tasks)
	require.Len(t, results, len(tasks))
	require.Equal(t, "Luke", results[0].Value)
	require.Nil(t, results[1].Value)
	require.NoError(t, results[1].Error)
	require.Error(t, results[2].Error)
	require.Equal(t, "C-3PO", results[3].Value)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, res := range r.BatchResolveAsync(ctx, tasks) {
		require.ErrorIs(t, res.Error, context.Canceled)
	}
}

func TestDataRuntimeSerializeLeafValue(t *testing.T) {
	r := NewDataRuntime(charactersSchema(t), 1)
	ctx := context.Background()

	cases := []struct {
		typ   string
		in    any
		want  any
		isErr bool
	}{
		{"Int", uint16(7), int32(7), false},
		{"Int", float64(7.5), nil, true},
		{"Int", "7", nil, true},
		{"Float", int64(3), float64(3), false},
		{"String", "s", "s", false},
		{"String", 1, nil, true},
		{"Boolean", true, true, false},
		{"ID", int64(42), "42", false},
		{"ID", float64(42), "42", false},
		{"ID", float32(8), "8", false},
		{"ID", float32(2.5), nil, true},
		{"Kind", "HUMAN", "HUMAN", false},
		{"Kind", 1, nil, true},
	}
	for _, tc := range cases {
		got, err := r.SerializeLeafValue(ctx, tc.typ, tc.in)
		if tc.isErr {
			require.Error(t, err, "%s(%v)", tc.typ, tc.in)
			continue
		}
		require.NoError(t, err, "%s(%v)", tc.typ, tc.in)
		require.Equal(t, tc.want, got, "%s(%v)", tc.typ, tc.in)
	}
}

func TestDataRuntimeIntFromFloat(t *testing.T) {
	r := NewDataRuntime(charactersSchema(t), 1)
	ctx := context.Background()

	cases := []struct {
		name string
		in   any
		want any
		err  string
	}{
		{name: "integral float64", in: float64(42), want: int32(42)},
		{name: "integral float32", in: float32(-3), want: int32(-3)},
		{name: "min int32", in: float64(math.MinInt32), want: int32(math.MinInt32)},
		{name: "fractional", in: 1.5, err: "Int cannot represent non-integer value: 1.5"},
		{name: "fractional float32", in: float32(0.25), err: "Int cannot represent non-integer value: 0.25"},
		{name: "two to the 31st", in: float64(1 << 31), err: "Int cannot represent non 32-bit signed integer value: 2.147483648e+09"},
		{name: "beyond int64", in: 1e20, err: "Int cannot represent non 32-bit signed integer value: 1e+20"},
		{name: "nan", in: math.NaN(), err: "Int cannot represent non-integer value: NaN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.SerializeLeafValue(ctx, "Int", tc.in)
			if tc.err != "" {
				require.EqualError(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestDataRuntimeResponseKeyOrder(t *testing.T) {
	sch, err := schema.BuildFromSDL("order.graphql", `type Query { zeta: String alpha: String mid: Nested }
type Nested { y: Int x: Int }`)
	require.NoError(t, err)
	root := map[string]any{"zeta": "z", "alpha": "a", "mid": map[string]any{"x": 1, "y": 2}}
	doc := mustParseQuery(t, `{ zeta alpha mid { y x } }`)

	got := NewExecutor(NewDataRuntime(sch, 1), sch).ExecuteRequest(context.Background(), doc, "", nil, root)
	require.Empty(t, got.Errors)

	b, err := json.Marshal(got)
	require.NoError(t, err)
	require.Equal(t, `{"data":{"zeta":"z","alpha":"a","mid":{"y":2,"x":1}}}`, string(b))

	b, err = json.Marshal(got.Response())
	require.NoError(t, err)
	require.Equal(t, `{"data":{"zeta":"z","alpha":"a","mid":{"y":2,"x":1}}}`, string(b))
}
