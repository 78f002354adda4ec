package schema

func builtinScalar(name, description string) *Type {
	return &Type{Name: name, Kind: TypeKindScalar, Description: description}
}

// builtinTypes are the specified scalars every schema carries. Built schemas
// share these values.
var builtinTypes = []*Type{
	builtinScalar("String", "The `String` scalar type represents textual data, represented as UTF-8 character sequences."),
	builtinScalar("Int", "The `Int` scalar type represents non-fractional signed whole numeric values."),
	builtinScalar("Float", "The `Float` scalar type represents signed double-precision fractional values."),
	builtinScalar("Boolean", "The `Boolean` scalar type represents `true` or `false`."),
	builtinScalar("ID", "The `ID` scalar type represents a unique identifier, often used to refetch an object or as a key for caching."),
}

func isBuiltinType(t *Type) bool {
	for _, b := range builtinTypes {
		if t == b {
			return true
		}
	}
	return false
}

// conditionDirective builds @skip or @include: one required Boolean "if"
// argument, allowed on fields and fragments.
func conditionDirective(name, description, ifDescription string) *Directive {
	return &Directive{
		Name:        name,
		Description: description,
		Arguments: []*InputValue{
			NewInputValue("if", ifDescription, NonNullType(NamedType("Boolean"))),
		},
		Locations: []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
	}
}

var (
	IncludeDirective = conditionDirective("include",
		"Directs the executor to include this field or fragment only when the `if` argument is true.",
		"Included when true.")
	SkipDirective = conditionDirective("skip",
		"Directs the executor to skip this field or fragment when the `if` argument is true.",
		"Skipped when true.")
)
