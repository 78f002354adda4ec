package executor

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"

	"fortio.org/safecast"

	gqlerrors "github.com/hanpama/gqlcore/internal/gqlerrors"
	language "github.com/hanpama/gqlcore/internal/language"
	schema "github.com/hanpama/gqlcore/internal/schema"
)

// coerceVariableValues coerces the provided variable values against the
// operation's variable definitions. Failures are located at the offending
// variable definition. The returned error is nil or an *gqlerrors.Error.
func coerceVariableValues(
	sch *schema.Schema,
	operation *language.OperationDefinition,
	inputs map[string]any,
) (map[string]any, error) {
	coerced := make(map[string]any, len(operation.VariableDefinitions))
	for _, varDef := range operation.VariableDefinitions {
		name := varDef.Variable
		t := typeRefFromAST(varDef.Type)
		at := gqlerrors.WithNodes(language.NodeAt(varDef.Position))

		val, ok := inputs[name]
		if !ok {
			val, ok = inputs["$"+name]
		}
		if !ok {
			switch {
			case varDef.DefaultValue != nil:
				def, err := valueFromAST(sch, varDef.DefaultValue, t, nil)
				if err != nil {
					return nil, gqlerrors.New(fmt.Sprintf("variable $%s of type %s has an invalid default: %v", name, t, err), at)
				}
				coerced[name] = def
			case t.IsNonNull():
				return nil, gqlerrors.New(fmt.Sprintf("variable $%s of required type %s was not provided", name, t), at)
			}
			continue
		}
		if val == nil && t.IsNonNull() {
			return nil, gqlerrors.New(fmt.Sprintf("variable $%s of type %s cannot be null", name, t), at)
		}
		cv, err := coerceInputValue(sch, val, t)
		if err != nil {
			return nil, gqlerrors.New(fmt.Sprintf("variable $%s of type %s cannot be coerced: %v", name, t, err), at, gqlerrors.WithOriginalError(err))
		}
		coerced[name] = cv
	}
	return coerced, nil
}

// DirectiveValues coerces the arguments of the directive defined by def as
// it appears in directives. It returns nil, nil when the directive is absent.
// Omitted arguments take their declared defaults. A failure is an
// *gqlerrors.Error located at the directive.
func DirectiveValues(sch *schema.Schema, def *schema.Directive, directives language.DirectiveList, variableValues map[string]any) (map[string]any, error) {
	if def == nil {
		return nil, nil
	}
	node := directives.ForName(def.Name)
	if node == nil {
		return nil, nil
	}
	return argumentValues(sch, def.Arguments, node.Arguments, variableValues, language.NodeAt(node.Position))
}

// argumentValues coerces args against defs. Errors are located at at.
func argumentValues(
	sch *schema.Schema,
	defs []*schema.InputValue,
	args language.ArgumentList,
	variableValues map[string]any,
	at language.Node,
) (map[string]any, error) {
	fail := func(format string, a ...any) error {
		return gqlerrors.New(fmt.Sprintf(format, a...), gqlerrors.WithNodes(at))
	}
	coerced := make(map[string]any, len(defs))
	for _, def := range defs {
		var value *language.Value
		if arg := args.ForName(def.Name); arg != nil {
			value = arg.Value
		}
		unsetVariable := ""
		if value != nil && value.Kind == language.Variable {
			if _, ok := variableValues[value.Raw]; !ok {
				unsetVariable, value = value.Raw, nil
			}
		}
		if value == nil {
			switch {
			case def.DefaultValue != nil:
				coerced[def.Name] = coerceDefault(sch, def)
			case def.Type.IsNonNull() && unsetVariable != "":
				return nil, fail("Argument %q of required type %q was provided the variable \"$%s\" which was not provided a runtime value.", def.Name, def.Type.String(), unsetVariable)
			case def.Type.IsNonNull():
				return nil, fail("Argument %q of required type %q was not provided.", def.Name, def.Type.String())
			}
			continue
		}
		if def.Type.IsNonNull() && isNullLiteral(value, variableValues) {
			return nil, fail("Argument %q of non-null type %q must not be null.", def.Name, def.Type.String())
		}
		v, err := valueFromAST(sch, value, def.Type, variableValues)
		if err != nil {
			return nil, fail("Argument %q has invalid value %s: %v.", def.Name, value.String(), err)
		}
		coerced[def.Name] = v
	}
	return coerced, nil
}

func isNullLiteral(value *language.Value, variableValues map[string]any) bool {
	switch value.Kind {
	case language.NullValue:
		return true
	case language.Variable:
		return variableValues[value.Raw] == nil
	}
	return false
}

// coerceDefault returns the default of def in its runtime form. Defaults
// that do not coerce keep the form the schema holds them in.
func coerceDefault(sch *schema.Schema, def *schema.InputValue) any {
	if v, err := coerceInputValue(sch, def.DefaultValue, def.Type); err == nil {
		return v
	}
	return def.DefaultValue
}

// valueFromAST coerces a literal to t. Variables are taken from
// variableValues as already coerced.
func valueFromAST(sch *schema.Schema, value *language.Value, t *schema.TypeRef, variableValues map[string]any) (any, error) {
	if value == nil {
		return nil, nil
	}
	if value.Kind == language.Variable {
		v := variableValues[value.Raw]
		if v == nil && t.IsNonNull() {
			return nil, fmt.Errorf("variable $%s is null for non-null type %s", value.Raw, t)
		}
		return v, nil
	}
	if t.IsNonNull() {
		if value.Kind == language.NullValue {
			return nil, fmt.Errorf("null for non-null type %s", t)
		}
		return valueFromAST(sch, value, t.OfType, variableValues)
	}
	if value.Kind == language.NullValue {
		return nil, nil
	}
	if t.Kind == schema.TypeRefKindList {
		if value.Kind != language.ListValue {
			item, err := valueFromAST(sch, value, t.OfType, variableValues)
			if err != nil {
				return nil, err
			}
			return []any{item}, nil
		}
		out := make([]any, len(value.Children))
		for i, child := range value.Children {
			item, err := valueFromAST(sch, child.Value, t.OfType, variableValues)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			out[i] = item
		}
		return out, nil
	}

	named := sch.Type(t.Named)
	if named == nil || named.Kind == schema.TypeKindScalar {
		return scalarFromAST(t.Named, value, variableValues)
	}
	switch named.Kind {
	case schema.TypeKindEnum:
		if value.Kind != language.EnumValue || !hasEnumValue(named, value.Raw) {
			return nil, fmt.Errorf("%s is not a value of enum %s", value.String(), named.Name)
		}
		return value.Raw, nil
	case schema.TypeKindInputObject:
		if value.Kind != language.ObjectValue {
			return nil, fmt.Errorf("expected an object for %s, got %s", named.Name, value.String())
		}
		fields := make(map[string]any, len(value.Children))
		for _, child := range value.Children {
			if inputField(named, child.Name) == nil {
				return nil, fmt.Errorf("field %q is not defined by type %s", child.Name, named.Name)
			}
		}
		for _, def := range named.InputFields {
			child := value.Children.ForName(def.Name)
			if child != nil && child.Kind == language.Variable {
				if _, ok := variableValues[child.Raw]; !ok {
					child = nil
				}
			}
			if child == nil {
				switch {
				case def.DefaultValue != nil:
					fields[def.Name] = coerceDefault(sch, def)
				case def.Type.IsNonNull():
					return nil, fmt.Errorf("field %q of required type %s was not provided", def.Name, def.Type)
				}
				continue
			}
			v, err := valueFromAST(sch, child, def.Type, variableValues)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", def.Name, err)
			}
			fields[def.Name] = v
		}
		if err := checkOneOf(named, fields); err != nil {
			return nil, err
		}
		return fields, nil
	}
	return nil, fmt.Errorf("%s is not an input type", named.Name)
}

func scalarFromAST(name string, value *language.Value, variableValues map[string]any) (any, error) {
	switch name {
	case "Int":
		if value.Kind == language.IntValue {
			n, err := strconv.ParseInt(value.Raw, 10, 32)
			if err == nil {
				return int(n), nil
			}
			return nil, fmt.Errorf("Int cannot represent non 32-bit signed integer value: %s", value.Raw)
		}
	case "Float":
		if value.Kind == language.IntValue || value.Kind == language.FloatValue {
			return strconv.ParseFloat(value.Raw, 64)
		}
	case "String":
		if value.Kind == language.StringValue || value.Kind == language.BlockValue {
			return value.Raw, nil
		}
	case "Boolean":
		if value.Kind == language.BooleanValue {
			return value.Raw == "true", nil
		}
	case "ID":
		if value.Kind == language.StringValue || value.Kind == language.IntValue {
			return value.Raw, nil
		}
	default:
		return literalValue(value, variableValues), nil
	}
	return nil, fmt.Errorf("%s cannot represent %s", name, value.String())
}

// literalValue converts a literal of a custom scalar to plain Go values.
func literalValue(value *language.Value, variableValues map[string]any) any {
	switch value.Kind {
	case language.Variable:
		return variableValues[value.Raw]
	case language.IntValue:
		if n, err := strconv.ParseInt(value.Raw, 10, 64); err == nil {
			return int(n)
		}
		f, _ := strconv.ParseFloat(value.Raw, 64)
		return f
	case language.FloatValue:
		f, _ := strconv.ParseFloat(value.Raw, 64)
		return f
	case language.BooleanValue:
		return value.Raw == "true"
	case language.NullValue:
		return nil
	case language.ListValue:
		out := make([]any, len(value.Children))
		for i, c := range value.Children {
			out[i] = literalValue(c.Value, variableValues)
		}
		return out
	case language.ObjectValue:
		m := make(map[string]any, len(value.Children))
		for _, c := range value.Children {
			m[c.Name] = literalValue(c.Value, variableValues)
		}
		return m
	}
	return value.Raw
}

// coerceInputValue coerces an external value, such as a decoded JSON
// variable, to t.
func coerceInputValue(sch *schema.Schema, value any, t *schema.TypeRef) (any, error) {
	if t.IsNonNull() {
		if value == nil {
			return nil, fmt.Errorf("null for non-null type %s", t)
		}
		return coerceInputValue(sch, value, t.OfType)
	}
	if value == nil {
		return nil, nil
	}
	if t.Kind == schema.TypeRefKindList {
		items, ok := value.([]any)
		if !ok {
			item, err := coerceInputValue(sch, value, t.OfType)
			if err != nil {
				return nil, err
			}
			return []any{item}, nil
		}
		out := make([]any, len(items))
		for i, item := range items {
			v, err := coerceInputValue(sch, item, t.OfType)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			out[i] = v
		}
		return out, nil
	}

	named := sch.Type(t.Named)
	if named == nil || named.Kind == schema.TypeKindScalar {
		return coerceScalar(t.Named, value)
	}
	switch named.Kind {
	case schema.TypeKindEnum:
		s, ok := value.(string)
		if !ok || !hasEnumValue(named, s) {
			return nil, fmt.Errorf("%v is not a value of enum %s", value, named.Name)
		}
		return s, nil
	case schema.TypeKindInputObject:
		obj, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected an object for %s, got %T", named.Name, value)
		}
		for _, k := range slices.Sorted(maps.Keys(obj)) {
			if inputField(named, k) == nil {
				return nil, fmt.Errorf("field %q is not defined by type %s", k, named.Name)
			}
		}
		fields := make(map[string]any, len(named.InputFields))
		for _, def := range named.InputFields {
			v, ok := obj[def.Name]
			if !ok {
				switch {
				case def.DefaultValue != nil:
					fields[def.Name] = coerceDefault(sch, def)
				case def.Type.IsNonNull():
					return nil, fmt.Errorf("field %q of required type %s was not provided", def.Name, def.Type)
				}
				continue
			}
			cv, err := coerceInputValue(sch, v, def.Type)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", def.Name, err)
			}
			fields[def.Name] = cv
		}
		if err := checkOneOf(named, fields); err != nil {
			return nil, err
		}
		return fields, nil
	}
	return nil, fmt.Errorf("%s is not an input type", named.Name)
}

// coerceScalar applies input coercion for the built-in scalars. Custom
// scalars are passed through.
func coerceScalar(name string, value any) (any, error) {
	switch name {
	case "Int":
		n, err := inputInt(value)
		if err != nil {
			return nil, err
		}
		return int(n), nil
	case "Float":
		switch v := value.(type) {
		case float64:
			if math.IsInf(v, 0) || math.IsNaN(v) {
				break
			}
			return v, nil
		case float32:
			return float64(v), nil
		}
		if n, err := inputInt64(value); err == nil {
			return float64(n), nil
		}
		return nil, fmt.Errorf("Float cannot represent non numeric value: %v", value)
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
		if s, ok := value.(string); ok {
			return s, nil
		}
		if n, err := inputInt64(value); err == nil {
			return strconv.FormatInt(n, 10), nil
		}
		return nil, fmt.Errorf("ID cannot represent value: %v", value)
	}
	return value, nil
}

func inputInt(value any) (int32, error) {
	n, err := inputInt64(value)
	if err != nil {
		return 0, err
	}
	out, err := safecast.Conv[int32](n)
	if err != nil {
		return 0, fmt.Errorf("Int cannot represent non 32-bit signed integer value: %v", value)
	}
	return out, nil
}

// inputInt64 accepts Go integers and integral floats. Strings are rejected.
func inputInt64(value any) (int64, error) {
	switch v := value.(type) {
	case float64:
		if v != math.Trunc(v) {
			break
		}
		if n, err := safecast.Convert[int64](v); err == nil {
			return n, nil
		}
		return 0, fmt.Errorf("Int cannot represent non 32-bit signed integer value: %v", value)
	case float32:
		if float64(v) != math.Trunc(float64(v)) {
			break
		}
		if n, err := safecast.Convert[int64](v); err == nil {
			return n, nil
		}
		return 0, fmt.Errorf("Int cannot represent non 32-bit signed integer value: %v", value)
	case string, bool:
	default:
		if n, err := toInt64(value); err == nil {
			return n, nil
		}
	}
	return 0, fmt.Errorf("Int cannot represent non-integer value: %v", value)
}

func checkOneOf(t *schema.Type, fields map[string]any) error {
	if !t.OneOf {
		return nil
	}
	if len(fields) != 1 {
		return fmt.Errorf("exactly one field must be specified for %s", t.Name)
	}
	for name, v := range fields {
		if v == nil {
			return fmt.Errorf("field %q of %s must be non-null", name, t.Name)
		}
	}
	return nil
}

func hasEnumValue(t *schema.Type, name string) bool {
	return slices.ContainsFunc(t.EnumValues, func(v *schema.EnumValue) bool { return v.Name == name })
}

func inputField(t *schema.Type, name string) *schema.InputValue {
	for _, f := range t.InputFields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// typeRefFromAST converts a variable's declared type.
func typeRefFromAST(t *language.Type) *schema.TypeRef {
	if t == nil {
		return nil
	}
	var ref *schema.TypeRef
	if t.Elem != nil {
		ref = schema.ListType(typeRefFromAST(t.Elem))
	} else {
		ref = schema.NamedType(t.NamedType)
	}
	if t.NonNull {
		return schema.NonNullType(ref)
	}
	return ref
}
