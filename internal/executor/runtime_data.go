package executor

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"fortio.org/safecast"
	"golang.org/x/sync/errgroup"

	schema "github.com/hanpama/gqlcore/internal/schema"
)

// DataRuntime is a Runtime that projects decoded documents (JSON or msgpack
// trees of maps and slices) onto a schema. A field resolves to the entry of
// its parent map under the field name; the parent of a root field is the
// initial value passed to ExecuteRequest. Abstract values name their concrete
// type with a "__typename" entry.
type DataRuntime struct {
	schema      *schema.Schema
	parallelism int
}

// NewDataRuntime returns a DataRuntime for sch. parallelism bounds the number
// of tasks of one async batch resolved at once; values below one mean one.
func NewDataRuntime(sch *schema.Schema, parallelism int) *DataRuntime {
	return &DataRuntime{schema: sch, parallelism: max(parallelism, 1)}
}

func (r *DataRuntime) ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error) {
	return r.lookup(objectType, field, source)
}

// BatchResolveAsync resolves every task of the batch, fanning out up to the
// configured parallelism. Tasks still pending when ctx ends fail with the
// context error.
func (r *DataRuntime) BatchResolveAsync(ctx context.Context, tasks []AsyncResolveTask) []AsyncResolveResult {
	results := make([]AsyncResolveResult, len(tasks))
	var g errgroup.Group
	g.SetLimit(r.parallelism)
	for i, task := range tasks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = AsyncResolveResult{Error: err}
				return nil
			}
			v, err := r.lookup(task.ObjectType, task.Field, task.Source)
			results[i] = AsyncResolveResult{Value: v, Error: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// ResolveType reads "__typename" from value. When the abstract type has a
// single possible type, that type is used without looking.
func (r *DataRuntime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	if m, ok := value.(map[string]any); ok {
		if name, ok := m["__typename"].(string); ok {
			return name, nil
		}
	}
	if possible := r.schema.PossibleTypes(r.schema.Type(abstractType)); len(possible) == 1 {
		return possible[0].Name, nil
	}
	return "", fmt.Errorf("cannot resolve the concrete type of %s value: no __typename", abstractType)
}

func (r *DataRuntime) ResolveUnionConcreteValue(ctx context.Context, unionTypeName string, value any) (any, error) {
	return value, nil
}

func (r *DataRuntime) ResolveInterfaceConcreteValue(ctx context.Context, interfaceTypeName string, value any) (any, error) {
	return value, nil
}

// SerializeLeafValue converts decoded values to the result form of the named
// scalar or enum. Int values must fit in 32 bits. Custom scalars pass
// through unchanged.
func (r *DataRuntime) SerializeLeafValue(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error) {
	switch scalarOrEnumTypeName {
	case "Int":
		return toInt32(value)
	case "Float":
		return toFloat64(value)
	case "String":
		if s, ok := value.(string); ok {
			return s, nil
		}
		return nil, fmt.Errorf("String cannot represent a non string value: %v", value)
	case "Boolean":
		if b, ok := value.(bool); ok {
			return b, nil
		}
		return nil, fmt.Errorf("Boolean cannot represent a non boolean value: %v", value)
	case "ID":
		switch v := value.(type) {
		case string:
			return v, nil
		case float64:
			if v == math.Trunc(v) {
				return strconv.FormatFloat(v, 'f', -1, 64), nil
			}
		default:
			if n, err := toInt64(value); err == nil {
				return strconv.FormatInt(n, 10), nil
			}
		}
		return nil, fmt.Errorf("ID cannot represent value: %v", value)
	}

	t := r.schema.Type(scalarOrEnumTypeName)
	if t == nil || t.Kind != schema.TypeKindEnum {
		return value, nil
	}
	name, ok := value.(string)
	if ok {
		for _, ev := range t.EnumValues {
			if ev.Name == name {
				return name, nil
			}
		}
	}
	return nil, fmt.Errorf("Enum %q cannot represent value: %v", t.Name, value)
}

func (r *DataRuntime) lookup(objectType, field string, source any) (any, error) {
	switch src := source.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return src[field], nil
	default:
		return nil, fmt.Errorf("cannot read %s.%s from %T", objectType, field, source)
	}
}

func toInt32(value any) (int32, error) {
	var (
		out int32
		err error
	)
	switch v := value.(type) {
	case float32:
		if v != float32(math.Trunc(float64(v))) {
			return 0, fmt.Errorf("Int cannot represent non-integer value: %v", value)
		}
		out, err = safecast.Convert[int32](v)
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("Int cannot represent non-integer value: %v", value)
		}
		out, err = safecast.Convert[int32](v)
	default:
		var n int64
		if n, err = toInt64(value); err != nil {
			return 0, err
		}
		out, err = safecast.Conv[int32](n)
	}
	if err != nil {
		return 0, fmt.Errorf("Int cannot represent non 32-bit signed integer value: %v", value)
	}
	return out, nil
}

// toInt64 accepts every integer width a decoder may produce, and floats with
// no fractional part.
func toInt64(value any) (int64, error) {
	var (
		n   int64
		err error
	)
	switch v := value.(type) {
	case int:
		n = int64(v)
	case int8:
		n = int64(v)
	case int16:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	case uint:
		n, err = safecast.Conv[int64](v)
	case uint8:
		n = int64(v)
	case uint16:
		n = int64(v)
	case uint32:
		n = int64(v)
	case uint64:
		n, err = safecast.Conv[int64](v)
	case float32:
		n, err = safecast.Convert[int64](v)
	case float64:
		n, err = safecast.Convert[int64](v)
	default:
		return 0, fmt.Errorf("Int cannot represent non-integer value: %v", value)
	}
	if err != nil {
		return 0, fmt.Errorf("Int cannot represent non-integer value: %v", value)
	}
	return n, nil
}

func toFloat64(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	}
	n, err := toInt64(value)
	if err != nil {
		return 0, fmt.Errorf("Float cannot represent non numeric value: %v", value)
	}
	return float64(n), nil
}
