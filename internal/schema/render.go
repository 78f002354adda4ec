package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Render produces SDL from the Schema. Types and directives are sorted by
// name; built-in scalars and the @skip and @include definitions are omitted.
func Render(s *Schema) string {
	if s == nil {
		return ""
	}
	r := &renderer{schema: s}

	r.schemaDefinition()
	for _, name := range s.sortedTypeNames() {
		typ := s.Types[name]
		if isBuiltinType(typ) {
			continue
		}
		switch typ.Kind {
		case TypeKindScalar:
			r.scalar(typ)
		case TypeKindEnum:
			r.enum(typ)
		case TypeKindInputObject:
			r.inputObject(typ)
		case TypeKindObject:
			r.composite("type", typ)
		case TypeKindInterface:
			r.composite("interface", typ)
		case TypeKindUnion:
			r.union(typ)
		}
	}

	directiveNames := make([]string, 0, len(s.Directives))
	for name, directive := range s.Directives {
		if directive == IncludeDirective || directive == SkipDirective {
			continue
		}
		directiveNames = append(directiveNames, name)
	}
	sort.Strings(directiveNames)
	for _, name := range directiveNames {
		r.directive(s.Directives[name])
	}

	return strings.TrimRight(r.b.String(), "\n") + "\n"
}

// PrintValue renders value as a GraphQL literal of type typ, the form used
// for default values in SDL and introspection.
func (s *Schema) PrintValue(typ *TypeRef, value any) string {
	r := &renderer{schema: s}
	return r.value(typ, value)
}

type renderer struct {
	schema *Schema
	b      strings.Builder
}

// schemaDefinition is emitted only when the root types are not the
// conventional Query, Mutation and Subscription names.
func (r *renderer) schemaDefinition() {
	s := r.schema
	if (s.QueryType == "" || s.QueryType == "Query") &&
		(s.MutationType == "" || s.MutationType == "Mutation") &&
		(s.SubscriptionType == "" || s.SubscriptionType == "Subscription") {
		return
	}
	r.description(s.Description, "")
	r.b.WriteString("schema {\n")
	for _, root := range [][2]string{{"query", s.QueryType}, {"mutation", s.MutationType}, {"subscription", s.SubscriptionType}} {
		if root[1] != "" {
			fmt.Fprintf(&r.b, "  %s: %s\n", root[0], root[1])
		}
	}
	r.b.WriteString("}\n\n")
}

func (r *renderer) description(desc, indent string) {
	if desc == "" {
		return
	}
	r.b.WriteString(indent + `"""` + "\n")
	for _, line := range strings.Split(strings.ReplaceAll(desc, `"""`, `\"""`), "\n") {
		r.b.WriteString(indent + line + "\n")
	}
	r.b.WriteString(indent + `"""` + "\n")
}

func (r *renderer) deprecated(isDeprecated bool, reason string) {
	if !isDeprecated {
		return
	}
	r.b.WriteString(" @deprecated")
	if reason != "" {
		r.b.WriteString("(reason: " + strconv.Quote(reason) + ")")
	}
}

func (r *renderer) scalar(typ *Type) {
	r.description(typ.Description, "")
	r.b.WriteString("scalar " + typ.Name)
	if typ.SpecifiedByURL != nil {
		r.b.WriteString(" @specifiedBy(url: " + strconv.Quote(*typ.SpecifiedByURL) + ")")
	}
	r.b.WriteString("\n\n")
}

func (r *renderer) enum(typ *Type) {
	r.description(typ.Description, "")
	r.b.WriteString("enum " + typ.Name + " {\n")
	for _, val := range typ.EnumValues {
		r.description(val.Description, "  ")
		r.b.WriteString("  " + val.Name)
		r.deprecated(val.IsDeprecated, val.DeprecationReason)
		r.b.WriteString("\n")
	}
	r.b.WriteString("}\n\n")
}

func (r *renderer) inputObject(typ *Type) {
	r.description(typ.Description, "")
	r.b.WriteString("input " + typ.Name)
	if typ.OneOf {
		r.b.WriteString(" @oneOf")
	}
	r.b.WriteString(" {\n")
	for _, field := range typ.InputFields {
		r.description(field.Description, "  ")
		r.b.WriteString("  ")
		r.inputValue(field)
		r.b.WriteString("\n")
	}
	r.b.WriteString("}\n\n")
}

func (r *renderer) composite(keyword string, typ *Type) {
	r.description(typ.Description, "")
	r.b.WriteString(keyword + " " + typ.Name)
	if len(typ.Interfaces) > 0 {
		r.b.WriteString(" implements " + strings.Join(typ.Interfaces, " & "))
	}
	r.b.WriteString(" {\n")
	for _, field := range typ.Fields {
		r.description(field.Description, "  ")
		r.b.WriteString("  " + field.Name)
		r.arguments(field.Arguments)
		r.b.WriteString(": " + renderTypeRef(field.Type))
		r.deprecated(field.IsDeprecated, field.DeprecationReason)
		r.b.WriteString("\n")
	}
	r.b.WriteString("}\n\n")
}

func (r *renderer) union(typ *Type) {
	r.description(typ.Description, "")
	r.b.WriteString("union " + typ.Name + " = " + strings.Join(typ.PossibleTypes, " | ") + "\n\n")
}

func (r *renderer) directive(directive *Directive) {
	r.description(directive.Description, "")
	r.b.WriteString("directive @" + directive.Name)
	r.arguments(directive.Arguments)
	if directive.IsRepeatable {
		r.b.WriteString(" repeatable")
	}
	r.b.WriteString(" on " + strings.Join(directive.Locations, " | ") + "\n\n")
}

func (r *renderer) arguments(args []*InputValue) {
	if len(args) == 0 {
		return
	}
	r.b.WriteString("(")
	for i, arg := range args {
		if i > 0 {
			r.b.WriteString(", ")
		}
		r.inputValue(arg)
	}
	r.b.WriteString(")")
}

func (r *renderer) inputValue(v *InputValue) {
	r.b.WriteString(v.Name + ": " + renderTypeRef(v.Type))
	if v.DefaultValue != nil {
		r.b.WriteString(" = " + r.value(v.Type, v.DefaultValue))
	}
	r.deprecated(v.IsDeprecated, v.DeprecationReason)
}

func renderTypeRef(typeRef *TypeRef) string {
	if typeRef == nil {
		return ""
	}
	switch typeRef.Kind {
	case TypeRefKindNamed:
		return typeRef.Named
	case TypeRefKindList:
		return "[" + renderTypeRef(typeRef.OfType) + "]"
	case TypeRefKindNonNull:
		return renderTypeRef(typeRef.OfType) + "!"
	default:
		return ""
	}
}

// value renders a default value as a GraphQL literal. typ decides whether a
// string is an enum name (unquoted) and supplies input field types for
// object values.
func (r *renderer) value(typ *TypeRef, value any) string {
	if value == nil {
		return "null"
	}
	named := r.schema.Type(typ.Innermost())

	switch v := value.(type) {
	case string:
		if named != nil && named.Kind == TypeKindEnum {
			return v
		}
		return strconv.Quote(v)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		elem := typ
		for elem != nil && elem.Kind != TypeRefKindList && elem.OfType != nil {
			elem = elem.OfType
		}
		if elem != nil && elem.Kind == TypeRefKindList {
			elem = elem.OfType
		}
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = r.value(elem, item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			var fieldType *TypeRef
			if named != nil {
				for _, f := range named.InputFields {
					if f.Name == k {
						fieldType = f.Type
					}
				}
			}
			parts[i] = k + ": " + r.value(fieldType, v[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprint(v)
	}
}

// String renders the reference in SDL notation, e.g. [Int!]!.
func (t *TypeRef) String() string { return renderTypeRef(t) }
