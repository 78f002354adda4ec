package introspection

import schema "github.com/hanpama/gqlcore/internal/schema"

var (
	stringType  = schema.NamedType("String")
	booleanType = schema.NamedType("Boolean")
)

func nonNull(name string) *schema.TypeRef { return schema.NonNullType(schema.NamedType(name)) }

func nonNullList(name string) *schema.TypeRef {
	return schema.NonNullType(schema.ListType(nonNull(name)))
}

func includeDeprecated() *schema.InputValue {
	return schema.NewInputValue("includeDeprecated", "", booleanType).SetDefault(false)
}

// metaTypes returns fresh definitions of the introspection types.
func metaTypes() []*schema.Type {
	return []*schema.Type{
		schema.NewType("__Schema", schema.TypeKindObject, "A GraphQL Schema defines the capabilities of a GraphQL server.").
			AddField(schema.NewField("description", "", stringType)).
			AddField(schema.NewField("types", "A list of all types supported by this server.", nonNullList("__Type"))).
			AddField(schema.NewField("queryType", "The type that query operations will be rooted at.", nonNull("__Type"))).
			AddField(schema.NewField("mutationType", "If this server supports mutation, the type that mutation operations will be rooted at.", schema.NamedType("__Type"))).
			AddField(schema.NewField("subscriptionType", "If this server support subscription, the type that subscription operations will be rooted at.", schema.NamedType("__Type"))).
			AddField(schema.NewField("directives", "A list of all directives supported by this server.", nonNullList("__Directive"))),

		schema.NewType("__Type", schema.TypeKindObject, "The fundamental unit of any GraphQL Schema is the type.").
			AddField(schema.NewField("kind", "", nonNull("__TypeKind"))).
			AddField(schema.NewField("name", "", stringType)).
			AddField(schema.NewField("description", "", stringType)).
			AddField(schema.NewField("specifiedByURL", "", stringType)).
			AddField(schema.NewField("fields", "", schema.ListType(nonNull("__Field"))).AddArgument(includeDeprecated())).
			AddField(schema.NewField("interfaces", "", schema.ListType(nonNull("__Type")))).
			AddField(schema.NewField("possibleTypes", "", schema.ListType(nonNull("__Type")))).
			AddField(schema.NewField("enumValues", "", schema.ListType(nonNull("__EnumValue"))).AddArgument(includeDeprecated())).
			AddField(schema.NewField("inputFields", "", schema.ListType(nonNull("__InputValue"))).AddArgument(includeDeprecated())).
			AddField(schema.NewField("ofType", "", schema.NamedType("__Type"))).
			AddField(schema.NewField("isOneOf", "", booleanType)),

		schema.NewType("__Field", schema.TypeKindObject, "Object and Interface types are described by a list of Fields, each of which has a name, potentially a list of arguments, and a return type.").
			AddField(schema.NewField("name", "", nonNull("String"))).
			AddField(schema.NewField("description", "", stringType)).
			AddField(schema.NewField("args", "", nonNullList("__InputValue")).AddArgument(includeDeprecated())).
			AddField(schema.NewField("type", "", nonNull("__Type"))).
			AddField(schema.NewField("isDeprecated", "", nonNull("Boolean"))).
			AddField(schema.NewField("deprecationReason", "", stringType)),

		schema.NewType("__InputValue", schema.TypeKindObject, "Arguments provided to Fields or Directives and the input fields of an InputObject are represented as Input Values which describe their type and optionally a default value.").
			AddField(schema.NewField("name", "", nonNull("String"))).
			AddField(schema.NewField("description", "", stringType)).
			AddField(schema.NewField("type", "", nonNull("__Type"))).
			AddField(schema.NewField("defaultValue", "A GraphQL-formatted string representing the default value for this input value.", stringType)).
			AddField(schema.NewField("isDeprecated", "", nonNull("Boolean"))).
			AddField(schema.NewField("deprecationReason", "", stringType)),

		schema.NewType("__EnumValue", schema.TypeKindObject, "One possible value for a given Enum.").
			AddField(schema.NewField("name", "", nonNull("String"))).
			AddField(schema.NewField("description", "", stringType)).
			AddField(schema.NewField("isDeprecated", "", nonNull("Boolean"))).
			AddField(schema.NewField("deprecationReason", "", stringType)),

		schema.NewType("__Directive", schema.TypeKindObject, "A Directive provides a way to describe alternate runtime execution and type validation behavior in a GraphQL document.").
			AddField(schema.NewField("name", "", nonNull("String"))).
			AddField(schema.NewField("description", "", stringType)).
			AddField(schema.NewField("isRepeatable", "", nonNull("Boolean"))).
			AddField(schema.NewField("locations", "", nonNullList("__DirectiveLocation"))).
			AddField(schema.NewField("args", "", nonNullList("__InputValue")).AddArgument(includeDeprecated())),

		enumType("__TypeKind", "An enum describing what kind of type a given `__Type` is.",
			"SCALAR", "OBJECT", "INTERFACE", "UNION", "ENUM", "INPUT_OBJECT", "LIST", "NON_NULL"),

		enumType("__DirectiveLocation", "A Directive can be adjacent to many parts of the GraphQL language, a __DirectiveLocation describes one such possible adjacencies.",
			"QUERY", "MUTATION", "SUBSCRIPTION", "FIELD", "FRAGMENT_DEFINITION", "FRAGMENT_SPREAD",
			"INLINE_FRAGMENT", "VARIABLE_DEFINITION", "SCHEMA", "SCALAR", "OBJECT", "FIELD_DEFINITION",
			"ARGUMENT_DEFINITION", "INTERFACE", "UNION", "ENUM", "ENUM_VALUE", "INPUT_OBJECT",
			"INPUT_FIELD_DEFINITION"),
	}
}

func enumType(name, description string, values ...string) *schema.Type {
	t := schema.NewType(name, schema.TypeKindEnum, description)
	for _, v := range values {
		t.AddEnumValue(schema.NewEnumValue(v, ""))
	}
	return t
}
