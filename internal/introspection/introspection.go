// Package introspection answers the __schema and __type meta fields on top of
// any executor.Runtime.
package introspection

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	executor "github.com/hanpama/gqlcore/internal/executor"
	schema "github.com/hanpama/gqlcore/internal/schema"
)

// Wrapper pairs the extended schema with the runtime that serves it.
type Wrapper struct {
	Runtime executor.Runtime
	Schema  *schema.Schema
}

// Wrap returns a copy of sch with the introspection types and root fields
// added, and a runtime that resolves them locally. Every other field is
// forwarded to base. sch itself is not modified. The root meta fields are
// executable but never listed by __Type.fields.
func Wrap(base executor.Runtime, sch *schema.Schema) Wrapper {
	ext := sch.Clone()
	for _, t := range metaTypes() {
		ext.Types[t.Name] = t
	}
	if q := ext.GetQueryType(); q != nil {
		root := *q
		root.Fields = append(slices.Clone(q.Fields),
			schema.NewField("__schema", "Access the current type schema of this server.", nonNull("__Schema")),
			schema.NewField("__type", "Request the type information of a single type.", schema.NamedType("__Type")).
				AddArgument(schema.NewInputValue("name", "", nonNull("String"))),
		)
		ext.Types[root.Name] = &root
	}
	return Wrapper{
		Runtime: &runtime{base: base, schema: ext},
		Schema:  ext,
	}
}

type runtime struct {
	base   executor.Runtime
	schema *schema.Schema
}

var _ executor.Runtime = (*runtime)(nil)

func (r *runtime) ResolveSync(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
	if objectType == r.schema.QueryType {
		switch field {
		case "__schema":
			return r.schema, nil
		case "__type":
			name, _ := args["name"].(string)
			if t := r.schema.Type(name); t != nil {
				return t, nil
			}
			return nil, nil
		}
	}

	switch objectType {
	case "__Schema":
		return r.schemaField(field)
	case "__Type":
		return r.typeField(source, field, args)
	case "__Field":
		return r.fieldField(source.(*schema.Field), field, args)
	case "__InputValue":
		return r.inputValueField(source.(*schema.InputValue), field)
	case "__EnumValue":
		return enumValueField(source.(*schema.EnumValue), field)
	case "__Directive":
		return directiveField(source.(*schema.Directive), field, args)
	}
	return r.base.ResolveSync(ctx, objectType, field, source, args)
}

func (r *runtime) BatchResolveAsync(ctx context.Context, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	return r.base.BatchResolveAsync(ctx, tasks)
}

func (r *runtime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	return r.base.ResolveType(ctx, abstractType, value)
}

func (r *runtime) ResolveUnionConcreteValue(ctx context.Context, unionTypeName string, value any) (any, error) {
	return r.base.ResolveUnionConcreteValue(ctx, unionTypeName, value)
}

func (r *runtime) ResolveInterfaceConcreteValue(ctx context.Context, interfaceTypeName string, value any) (any, error) {
	return r.base.ResolveInterfaceConcreteValue(ctx, interfaceTypeName, value)
}

func (r *runtime) SerializeLeafValue(ctx context.Context, typeName string, value any) (any, error) {
	switch typeName {
	case "__TypeKind", "__DirectiveLocation":
		return value, nil
	}
	return r.base.SerializeLeafValue(ctx, typeName, value)
}

func (r *runtime) schemaField(field string) (any, error) {
	s := r.schema
	switch field {
	case "description":
		return optional(s.Description), nil
	case "types":
		names := make([]string, 0, len(s.Types))
		for name := range s.Types {
			names = append(names, name)
		}
		sort.Strings(names)
		out := make([]any, len(names))
		for i, name := range names {
			out[i] = s.Types[name]
		}
		return out, nil
	case "queryType":
		return namedOrNil(s.GetQueryType()), nil
	case "mutationType":
		return namedOrNil(s.GetMutationType()), nil
	case "subscriptionType":
		return namedOrNil(s.GetSubscriptionType()), nil
	case "directives":
		out := make([]*schema.Directive, 0, len(s.Directives))
		for _, d := range s.Directives {
			out = append(out, d)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return out, nil
	}
	return nil, unknownField("__Schema", field)
}

// typeField resolves fields of __Type. A __Type value is either a named
// *schema.Type or a list or non-null *schema.TypeRef wrapper.
func (r *runtime) typeField(source any, field string, args map[string]any) (any, error) {
	if ref, ok := source.(*schema.TypeRef); ok {
		switch field {
		case "kind":
			return string(ref.Kind), nil
		case "ofType":
			return r.typeOf(ref.OfType), nil
		case "name", "description", "specifiedByURL", "fields", "interfaces",
			"possibleTypes", "enumValues", "inputFields", "isOneOf":
			return nil, nil
		}
		return nil, unknownField("__Type", field)
	}

	t := source.(*schema.Type)
	switch field {
	case "kind":
		return string(t.Kind), nil
	case "name":
		return t.Name, nil
	case "description":
		return optional(t.Description), nil
	case "specifiedByURL":
		if t.SpecifiedByURL == nil {
			return nil, nil
		}
		return *t.SpecifiedByURL, nil
	case "fields":
		if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
			return nil, nil
		}
		all := includeDeprecatedArg(args)
		out := []*schema.Field{}
		for _, f := range t.Fields {
			if strings.HasPrefix(f.Name, "__") {
				continue
			}
			if all || !f.IsDeprecated {
				out = append(out, f)
			}
		}
		return out, nil
	case "interfaces":
		if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
			return nil, nil
		}
		out := []*schema.Type{}
		for _, name := range t.Interfaces {
			if iface := r.schema.Type(name); iface != nil {
				out = append(out, iface)
			}
		}
		return out, nil
	case "possibleTypes":
		if !schema.IsAbstract(t) {
			return nil, nil
		}
		return r.schema.PossibleTypes(t), nil
	case "enumValues":
		if t.Kind != schema.TypeKindEnum {
			return nil, nil
		}
		all := includeDeprecatedArg(args)
		out := []*schema.EnumValue{}
		for _, v := range t.EnumValues {
			if all || !v.IsDeprecated {
				out = append(out, v)
			}
		}
		return out, nil
	case "inputFields":
		if t.Kind != schema.TypeKindInputObject {
			return nil, nil
		}
		return filterInputValues(t.InputFields, includeDeprecatedArg(args)), nil
	case "ofType":
		return nil, nil
	case "isOneOf":
		if t.Kind != schema.TypeKindInputObject {
			return nil, nil
		}
		return t.OneOf, nil
	}
	return nil, unknownField("__Type", field)
}

func (r *runtime) fieldField(f *schema.Field, field string, args map[string]any) (any, error) {
	switch field {
	case "name":
		return f.Name, nil
	case "description":
		return optional(f.Description), nil
	case "args":
		return filterInputValues(f.Arguments, includeDeprecatedArg(args)), nil
	case "type":
		return r.typeOf(f.Type), nil
	case "isDeprecated":
		return f.IsDeprecated, nil
	case "deprecationReason":
		return deprecationReason(f.IsDeprecated, f.DeprecationReason), nil
	}
	return nil, unknownField("__Field", field)
}

func (r *runtime) inputValueField(v *schema.InputValue, field string) (any, error) {
	switch field {
	case "name":
		return v.Name, nil
	case "description":
		return optional(v.Description), nil
	case "type":
		return r.typeOf(v.Type), nil
	case "defaultValue":
		if v.DefaultValue == nil {
			return nil, nil
		}
		return r.schema.PrintValue(v.Type, v.DefaultValue), nil
	case "isDeprecated":
		return v.IsDeprecated, nil
	case "deprecationReason":
		return deprecationReason(v.IsDeprecated, v.DeprecationReason), nil
	}
	return nil, unknownField("__InputValue", field)
}

func enumValueField(v *schema.EnumValue, field string) (any, error) {
	switch field {
	case "name":
		return v.Name, nil
	case "description":
		return optional(v.Description), nil
	case "isDeprecated":
		return v.IsDeprecated, nil
	case "deprecationReason":
		return deprecationReason(v.IsDeprecated, v.DeprecationReason), nil
	}
	return nil, unknownField("__EnumValue", field)
}

func directiveField(d *schema.Directive, field string, args map[string]any) (any, error) {
	switch field {
	case "name":
		return d.Name, nil
	case "description":
		return optional(d.Description), nil
	case "isRepeatable":
		return d.IsRepeatable, nil
	case "locations":
		return d.Locations, nil
	case "args":
		return filterInputValues(d.Arguments, includeDeprecatedArg(args)), nil
	}
	return nil, unknownField("__Directive", field)
}

// typeOf maps a type reference to its __Type value: named references resolve
// to the schema type, wrappers stay as references.
func (r *runtime) typeOf(ref *schema.TypeRef) any {
	if ref == nil {
		return nil
	}
	if ref.Kind == schema.TypeRefKindNamed {
		return namedOrNil(r.schema.Type(ref.Named))
	}
	return ref
}

func namedOrNil(t *schema.Type) any {
	if t == nil {
		return nil
	}
	return t
}

func filterInputValues(values []*schema.InputValue, includeDeprecated bool) []*schema.InputValue {
	out := []*schema.InputValue{}
	for _, v := range values {
		if includeDeprecated || !v.IsDeprecated {
			out = append(out, v)
		}
	}
	return out
}

func includeDeprecatedArg(args map[string]any) bool {
	b, _ := args["includeDeprecated"].(bool)
	return b
}

func deprecationReason(deprecated bool, reason string) any {
	if !deprecated {
		return nil
	}
	return reason
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func unknownField(typeName, field string) error {
	return fmt.Errorf("introspection: unknown field %s.%s", typeName, field)
}
