package executor

import (
	"context"
	"fmt"
	"reflect"

	gqlerrors "github.com/hanpama/gqlcore/internal/gqlerrors"
	language "github.com/hanpama/gqlcore/internal/language"
	schema "github.com/hanpama/gqlcore/internal/schema"
)

// execution is the state of one ExecuteRequest call.
type execution struct {
	ctx       context.Context
	runtime   Runtime
	schema    *schema.Schema
	fragments map[string]*language.FragmentDefinition
	variables map[string]any

	data   *Object
	errors gqlerrors.List
	// pending holds the async fields found while completing the current
	// depth. They are resolved together once the depth is drained.
	pending []*pendingField
}

// field is one merged field group being completed.
type field struct {
	parent *schema.Type
	def    *schema.Field
	nodes  []*language.Field
}

func (f *field) name() string { return f.parent.Name + "." + f.def.Name }

// pendingField is an async field waiting for the next batch. Its entry in
// parent is reserved with null until the batch completes it.
type pendingField struct {
	field  *field
	task   AsyncResolveTask
	parent *Object
	key    string
	path   Path
	// boundary is the path of the nearest nullable position above the field.
	// A Non-Null violation in the field nulls the value there.
	boundary Path
}

// asyncValue marks a field whose value arrives with the next batch.
type asyncValue struct{}

func (ex *execution) run(rootType *schema.Type, selectionSet language.SelectionSet, rootValue any) *ExecutionResult {
	data, ok := ex.executeSelectionSet(rootType, selectionSet, rootValue, Path{}, nil)
	if ok {
		ex.data = data
	}
	for len(ex.pending) > 0 && ex.data != nil {
		ex.resolvePending()
	}
	res := &ExecutionResult{Errors: ex.errors}
	if ex.data != nil {
		res.Data = ex.data
	}
	return res
}

// executeSelectionSet completes the fields of selectionSet on value. It
// reports false when a Non-Null field of the object failed, in which case
// the object itself is null.
func (ex *execution) executeSelectionSet(objectType *schema.Type, selectionSet language.SelectionSet, value any, path, boundary Path) (*Object, bool) {
	groups, err := ex.collectFields(objectType, selectionSet)
	if err != nil {
		ex.fail(gqlerrors.Located(err, nil, path))
		return nil, false
	}

	obj := NewObject()
	for _, group := range groups.Groups() {
		key := group.ResponseKey
		fieldPath := appendPath(path, key)
		name := group.Fields[0].Name

		if name == "__typename" {
			obj.Set(key, objectType.Name)
			continue
		}
		def := objectType.Field(name)
		if def == nil {
			ex.addError(fmt.Sprintf("Cannot query field '%s' on type '%s'", name, objectType.Name), group.Fields, fieldPath)
			obj.Set(key, nil)
			continue
		}

		f := &field{parent: objectType, def: def, nodes: group.Fields}
		v, ok := ex.executeField(f, obj, key, value, fieldPath, boundary)
		if !ok {
			return nil, false
		}
		if _, async := v.(asyncValue); async {
			v = nil
		}
		obj.Set(key, v)
	}
	return obj, true
}

// executeField resolves one field of obj. Async fields are queued and
// reported as asyncValue.
func (ex *execution) executeField(f *field, obj *Object, key string, source any, path, boundary Path) (any, bool) {
	args, err := argumentValues(ex.schema, f.def.Arguments, f.nodes[0].Arguments, ex.variables, f.nodes[0])
	if err != nil {
		ex.fail(gqlerrors.Located(err, nil, path))
		return nil, !f.def.Type.IsNonNull()
	}

	if f.def.Async {
		ex.pending = append(ex.pending, &pendingField{
			field: f,
			task: AsyncResolveTask{
				ObjectType: f.parent.Name,
				Field:      f.def.Name,
				Source:     source,
				Args:       args,
			},
			parent:   obj,
			key:      key,
			path:     path,
			boundary: boundary,
		})
		return asyncValue{}, true
	}

	raw, err := ex.runtime.ResolveSync(ex.ctx, f.parent.Name, f.def.Name, source, args)
	if err != nil {
		ex.fail(gqlerrors.Located(err, language.FieldNodes(f.nodes), path))
		return nil, !f.def.Type.IsNonNull()
	}
	return ex.completeValue(f, f.def.Type, raw, path, boundary)
}

// resolvePending sends the queued async fields to the runtime as one batch
// and completes them. Fields whose parent object was nulled in the meantime
// are dropped. Completion may queue the fields of the next depth.
func (ex *execution) resolvePending() {
	var batch []*pendingField
	for _, p := range ex.pending {
		if ex.attached(p) {
			batch = append(batch, p)
		}
	}
	ex.pending = nil
	if len(batch) == 0 {
		return
	}

	tasks := make([]AsyncResolveTask, len(batch))
	for i, p := range batch {
		tasks[i] = p.task
	}
	results := ex.runtime.BatchResolveAsync(ex.ctx, tasks)

	for i, p := range batch {
		if !ex.attached(p) {
			continue
		}
		var res AsyncResolveResult
		if i < len(results) {
			res = results[i]
		} else {
			res.Error = fmt.Errorf("runtime returned %d results for %d tasks", len(results), len(tasks))
		}

		var (
			v  any
			ok bool
		)
		if res.Error != nil {
			ex.fail(gqlerrors.Located(res.Error, language.FieldNodes(p.field.nodes), p.path))
			ok = !p.field.def.Type.IsNonNull()
		} else {
			v, ok = ex.completeValue(p.field, p.field.def.Type, res.Value, p.path, p.boundary)
		}
		if ok {
			p.parent.Set(p.key, v)
		} else {
			ex.nullify(p.boundary)
		}
	}
}

// completeValue completes result for a position of type t. It reports false
// when t is Non-Null and the value could not be produced; the caller then
// propagates the null to its own position.
func (ex *execution) completeValue(f *field, t *schema.TypeRef, result any, path, boundary Path) (any, bool) {
	nonNull := t.IsNonNull()
	if nonNull {
		t = t.OfType
	} else {
		boundary = path
	}

	v, ok := ex.completeNullable(f, t, result, path, boundary)
	if !ok {
		return nil, !nonNull
	}
	if v == nil && nonNull {
		ex.addError(fmt.Sprintf("Cannot return null for non-nullable field %s.", f.name()), f.nodes, path)
		return nil, false
	}
	return v, true
}

// completeNullable completes result for a position of type t, which is not
// Non-Null. It reports false after recording an error for the position.
func (ex *execution) completeNullable(f *field, t *schema.TypeRef, result any, path, boundary Path) (any, bool) {
	if isNullish(result) {
		return nil, true
	}
	if t.Kind == schema.TypeRefKindList {
		return ex.completeListValue(f, t, result, path, boundary)
	}

	named := ex.schema.Type(t.Named)
	if named == nil {
		ex.addError(fmt.Sprintf("Unknown type: %s", t.Named), f.nodes, path)
		return nil, false
	}
	switch named.Kind {
	case schema.TypeKindScalar, schema.TypeKindEnum:
		serialized, err := ex.runtime.SerializeLeafValue(ex.ctx, named.Name, result)
		if err != nil {
			ex.fail(gqlerrors.Located(err, language.FieldNodes(f.nodes), path))
			return nil, false
		}
		return serialized, true
	case schema.TypeKindObject:
		return ex.completeObjectValue(f, named, result, path, boundary)
	case schema.TypeKindInterface, schema.TypeKindUnion:
		return ex.completeAbstractValue(f, named, result, path, boundary)
	}
	ex.addError(fmt.Sprintf("Cannot complete value of unexpected type: %s", named.Kind), f.nodes, path)
	return nil, false
}

func (ex *execution) completeListValue(f *field, t *schema.TypeRef, result any, path, boundary Path) (any, bool) {
	items, ok := result.([]any)
	if !ok {
		rv := reflect.ValueOf(result)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			ex.addError(fmt.Sprintf("Expected Iterable, but did not find one for field %s.", f.name()), f.nodes, path)
			return nil, false
		}
		items = make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
	}

	completed := make([]any, len(items))
	for i, item := range items {
		v, ok := ex.completeValue(f, t.OfType, item, appendPath(path, i), boundary)
		if !ok {
			return nil, false
		}
		completed[i] = v
	}
	return completed, true
}

func (ex *execution) completeObjectValue(f *field, objectType *schema.Type, result any, path, boundary Path) (any, bool) {
	obj, ok := ex.executeSelectionSet(objectType, mergeSelectionSets(f.nodes), result, path, boundary)
	if !ok {
		return nil, false
	}
	return obj, true
}

func (ex *execution) completeAbstractValue(f *field, abstractType *schema.Type, result any, path, boundary Path) (any, bool) {
	nodes := language.FieldNodes(f.nodes)
	typeName, err := ex.runtime.ResolveType(ex.ctx, abstractType.Name, result)
	if err != nil {
		ex.fail(gqlerrors.Located(err, nodes, path))
		return nil, false
	}
	objectType := ex.schema.Type(typeName)
	if objectType == nil || objectType.Kind != schema.TypeKindObject {
		ex.addError(fmt.Sprintf("Abstract type %s must resolve to an Object type at runtime for field %s. Got: %q.", abstractType.Name, f.name(), typeName), f.nodes, path)
		return nil, false
	}
	if !ex.schema.IsSubType(abstractType, objectType) {
		ex.addError(fmt.Sprintf("Runtime Object type %q is not a possible type for %q.", typeName, abstractType.Name), f.nodes, path)
		return nil, false
	}

	var concrete any
	if abstractType.Kind == schema.TypeKindUnion {
		concrete, err = ex.runtime.ResolveUnionConcreteValue(ex.ctx, abstractType.Name, result)
	} else {
		concrete, err = ex.runtime.ResolveInterfaceConcreteValue(ex.ctx, abstractType.Name, result)
	}
	if err != nil {
		ex.fail(gqlerrors.Located(err, nodes, path))
		return nil, false
	}
	return ex.completeObjectValue(f, objectType, concrete, path, boundary)
}

// attached reports whether p's parent object is still part of the response.
func (ex *execution) attached(p *pendingField) bool {
	v, ok := ex.lookup(p.path[:len(p.path)-1])
	return ok && v == any(p.parent)
}

// lookup returns the completed value at path.
func (ex *execution) lookup(path Path) (any, bool) {
	if ex.data == nil {
		return nil, false
	}
	var cur any = ex.data
	for _, elem := range path {
		switch e := elem.(type) {
		case string:
			obj, ok := cur.(*Object)
			if !ok || obj == nil {
				return nil, false
			}
			if cur, ok = obj.Get(e); !ok {
				return nil, false
			}
		case int:
			list, ok := cur.([]any)
			if !ok || e >= len(list) {
				return nil, false
			}
			cur = list[e]
		}
	}
	return cur, true
}

// nullify writes null at path, the nearest nullable position above a failed
// Non-Null field. An empty path nulls the whole data entry.
func (ex *execution) nullify(path Path) {
	if len(path) == 0 {
		ex.data = nil
		return
	}
	container, ok := ex.lookup(path[:len(path)-1])
	if !ok {
		return
	}
	switch c := container.(type) {
	case *Object:
		c.Set(path[len(path)-1].(string), nil)
	case []any:
		c[path[len(path)-1].(int)] = nil
	}
}

func (ex *execution) fail(err *gqlerrors.Error) {
	ex.errors = append(ex.errors, err)
}

// addError records an error raised by the executor itself.
func (ex *execution) addError(message string, nodes []*language.Field, path Path) {
	ex.fail(gqlerrors.New(message,
		gqlerrors.WithNodes(language.FieldNodes(nodes)...),
		gqlerrors.WithPath(path...),
	))
}

func appendPath(path Path, elem any) Path {
	out := make(Path, len(path)+1)
	copy(out, path)
	out[len(path)] = elem
	return out
}

// mergeSelectionSets concatenates the sub-selections of a field group.
func mergeSelectionSets(fields []*language.Field) language.SelectionSet {
	var merged language.SelectionSet
	for _, f := range fields {
		merged = append(merged, f.SelectionSet...)
	}
	return merged
}

// isNullish reports nil and typed nil pointers, maps, slices and the like.
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
