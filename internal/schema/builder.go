package schema

import (
	"fmt"
	"sort"
	"strings"

	language "github.com/hanpama/gqlcore/internal/language"
	"github.com/vektah/gqlparser/v2/ast"
)

// BuildFromAST converts a validated gqlparser schema into a Schema.
//
// Introspection types and built-in directives other than @skip and @include
// are left out. Fields of the root operation types and fields taking
// arguments are marked Async; every other field is resolved synchronously
// from its parent value.
func BuildFromAST(src *ast.Schema) (*Schema, error) {
	if src == nil {
		return nil, fmt.Errorf("schema: nil source schema")
	}
	s := NewSchema(src.Description)
	s.source = src
	if src.Query != nil {
		s.SetQueryType(src.Query.Name)
	}
	if src.Mutation != nil {
		s.SetMutationType(src.Mutation.Name)
	}
	if src.Subscription != nil {
		s.SetSubscriptionType(src.Subscription.Name)
	}
	for _, b := range builtinTypes {
		s.AddType(b)
	}
	s.AddDirective(IncludeDirective).AddDirective(SkipDirective)

	roots := map[string]bool{s.QueryType: true, s.MutationType: true, s.SubscriptionType: true}
	for name, def := range src.Types {
		if strings.HasPrefix(name, "__") || s.Types[name] != nil {
			continue
		}
		t, err := buildType(def, roots[name])
		if err != nil {
			return nil, err
		}
		s.AddType(t)
	}
	for name, def := range src.Types {
		if def.Kind != ast.Interface {
			continue
		}
		// gqlparser records implementations separately from the definition.
		var impls []string
		for _, impl := range src.GetPossibleTypes(def) {
			if impl.Kind == ast.Object && !s.Types[name].hasPossibleType(impl.Name) {
				impls = append(impls, impl.Name)
			}
		}
		sort.Strings(impls)
		s.Types[name].PossibleTypes = append(s.Types[name].PossibleTypes, impls...)
	}
	for name, def := range src.Directives {
		if _, ok := s.Directives[name]; ok || isBuiltinPosition(def.Position) {
			continue
		}
		d, err := buildDirective(def)
		if err != nil {
			return nil, err
		}
		s.AddDirective(d)
	}
	return s, nil
}

// BuildFromSDL parses and validates SDL and builds the schema. A schema
// definition is optional when the query root is named Query. Parse and
// validation failures are returned as a gqlerrors.List located in sdl.
func BuildFromSDL(name, sdl string) (*Schema, error) {
	return BuildFromSources(language.NewSource(sdl, name))
}

func buildType(def *ast.Definition, root bool) (*Type, error) {
	var kind TypeKind
	switch def.Kind {
	case ast.Scalar:
		kind = TypeKindScalar
	case ast.Object:
		kind = TypeKindObject
	case ast.Interface:
		kind = TypeKindInterface
	case ast.Union:
		kind = TypeKindUnion
	case ast.Enum:
		kind = TypeKindEnum
	case ast.InputObject:
		kind = TypeKindInputObject
	default:
		return nil, fmt.Errorf("schema: type %s has unsupported kind %s", def.Name, def.Kind)
	}
	t := NewType(def.Name, kind, def.Description)
	for _, iface := range def.Interfaces {
		t.AddInterface(iface)
	}
	for _, member := range def.Types {
		t.AddPossibleType(member)
	}
	for _, v := range def.EnumValues {
		ev := NewEnumValue(v.Name, v.Description)
		if reason, ok := deprecation(v.Directives); ok {
			ev.Deprecate(reason)
		}
		t.AddEnumValue(ev)
	}
	if kind == TypeKindScalar {
		if d := def.Directives.ForName("specifiedBy"); d != nil {
			if arg := d.Arguments.ForName("url"); arg != nil && arg.Value != nil {
				url := arg.Value.Raw
				t.SpecifiedByURL = &url
			}
		}
	}
	if kind == TypeKindInputObject {
		t.SetOneOf(def.Directives.ForName("oneOf") != nil)
		for _, f := range def.Fields {
			in, err := buildInputValue(f.Name, f.Description, f.Type, f.DefaultValue, f.Directives)
			if err != nil {
				return nil, fmt.Errorf("schema: %s.%s: %w", def.Name, f.Name, err)
			}
			t.AddInputField(in)
		}
		return t, nil
	}
	for _, f := range def.Fields {
		if strings.HasPrefix(f.Name, "__") {
			continue
		}
		field := NewField(f.Name, f.Description, typeRefFromAST(f.Type)).
			SetAsync(root || len(f.Arguments) > 0)
		if reason, ok := deprecation(f.Directives); ok {
			field.Deprecate(reason)
		}
		for _, a := range f.Arguments {
			in, err := buildInputValue(a.Name, a.Description, a.Type, a.DefaultValue, a.Directives)
			if err != nil {
				return nil, fmt.Errorf("schema: %s.%s(%s): %w", def.Name, f.Name, a.Name, err)
			}
			field.AddArgument(in)
		}
		t.AddField(field)
	}
	return t, nil
}

func buildDirective(def *ast.DirectiveDefinition) (*Directive, error) {
	d := NewDirective(def.Name, def.Description).SetRepeatable(def.IsRepeatable)
	for _, loc := range def.Locations {
		d.Locations = append(d.Locations, string(loc))
	}
	for _, a := range def.Arguments {
		in, err := buildInputValue(a.Name, a.Description, a.Type, a.DefaultValue, a.Directives)
		if err != nil {
			return nil, fmt.Errorf("schema: @%s(%s): %w", def.Name, a.Name, err)
		}
		d.AddArgument(in)
	}
	return d, nil
}

func buildInputValue(name, description string, typ *ast.Type, def *ast.Value, directives ast.DirectiveList) (*InputValue, error) {
	in := NewInputValue(name, description, typeRefFromAST(typ))
	if def != nil {
		v, err := def.Value(nil)
		if err != nil {
			return nil, fmt.Errorf("default value: %w", err)
		}
		in.SetDefault(v)
	}
	if reason, ok := deprecation(directives); ok {
		in.Deprecate(reason)
	}
	return in, nil
}

func deprecation(directives ast.DirectiveList) (string, bool) {
	d := directives.ForName("deprecated")
	if d == nil {
		return "", false
	}
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		return arg.Value.Raw, true
	}
	return "", true
}

func typeRefFromAST(t *ast.Type) *TypeRef {
	if t == nil {
		return nil
	}
	var ref *TypeRef
	if t.Elem != nil {
		ref = ListType(typeRefFromAST(t.Elem))
	} else {
		ref = NamedType(t.NamedType)
	}
	if t.NonNull {
		return NonNullType(ref)
	}
	return ref
}

func isBuiltinPosition(pos *ast.Position) bool {
	return pos != nil && pos.Src != nil && pos.Src.BuiltIn
}

func (t *Type) hasPossibleType(name string) bool {
	for _, n := range t.PossibleTypes {
		if n == name {
			return true
		}
	}
	return false
}
