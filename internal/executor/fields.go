package executor

import (
	"github.com/elliotchance/orderedmap/v3"
	language "github.com/hanpama/gqlcore/internal/language"
	schema "github.com/hanpama/gqlcore/internal/schema"
)

// FieldGroupMap groups field nodes by response key. Keys keep the order in
// which they were first seen; fields within a group keep document order.
type FieldGroupMap struct {
	groups *orderedmap.OrderedMap[string, []*language.Field]
}

// FieldGroup is one entry of a FieldGroupMap.
type FieldGroup struct {
	ResponseKey string
	Fields      []*language.Field
}

func NewFieldGroupMap() *FieldGroupMap {
	return &FieldGroupMap{groups: orderedmap.NewOrderedMap[string, []*language.Field]()}
}

// Add appends field to the group for key, creating the group at the end of
// the map if it does not exist.
func (m *FieldGroupMap) Add(key string, field *language.Field) {
	fields, _ := m.groups.Get(key)
	m.groups.Set(key, append(fields, field))
}

func (m *FieldGroupMap) Get(key string) ([]*language.Field, bool) {
	return m.groups.Get(key)
}

func (m *FieldGroupMap) Len() int { return m.groups.Len() }

// Keys returns the response keys in first-seen order.
func (m *FieldGroupMap) Keys() []string {
	keys := make([]string, 0, m.groups.Len())
	for el := m.groups.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Key)
	}
	return keys
}

// Groups returns the groups in first-seen order.
func (m *FieldGroupMap) Groups() []FieldGroup {
	out := make([]FieldGroup, 0, m.groups.Len())
	for el := m.groups.Front(); el != nil; el = el.Next() {
		out = append(out, FieldGroup{ResponseKey: el.Key, Fields: el.Value})
	}
	return out
}

// ResponseKey is the alias of field when it has one, otherwise its name.
func ResponseKey(field *language.Field) string {
	if field.Alias != "" {
		return field.Alias
	}
	return field.Name
}

// CollectFields gathers the fields of selectionSet that apply to runtimeType
// into fields, expanding inline fragments and fragment spreads and honouring
// @skip and @include. Each named fragment is expanded at most once per
// visited set; a spread excluded by its directives does not count as a visit.
// Unknown fragments and non-matching type conditions are skipped silently.
//
// A @skip or @include whose arguments cannot be coerced stops collection and
// the located coercion error is returned.
func CollectFields(
	sch *schema.Schema,
	fragments map[string]*language.FragmentDefinition,
	variableValues map[string]any,
	runtimeType *schema.Type,
	selectionSet language.SelectionSet,
	fields *FieldGroupMap,
	visited map[string]struct{},
) (*FieldGroupMap, error) {
	for _, selection := range selectionSet {
		switch sel := selection.(type) {
		case *language.Field:
			include, err := ShouldIncludeNode(sch, variableValues, sel.Directives)
			if err != nil {
				return fields, err
			}
			if include {
				fields.Add(ResponseKey(sel), sel)
			}

		case *language.InlineFragment:
			include, err := ShouldIncludeNode(sch, variableValues, sel.Directives)
			if err != nil {
				return fields, err
			}
			if !include || !DoesFragmentConditionMatch(sch, sel.TypeCondition, runtimeType) {
				continue
			}
			if _, err := CollectFields(sch, fragments, variableValues, runtimeType, sel.SelectionSet, fields, visited); err != nil {
				return fields, err
			}

		case *language.FragmentSpread:
			include, err := ShouldIncludeNode(sch, variableValues, sel.Directives)
			if err != nil {
				return fields, err
			}
			if !include {
				continue
			}
			if _, seen := visited[sel.Name]; seen {
				continue
			}
			visited[sel.Name] = struct{}{}
			fragment := fragments[sel.Name]
			if fragment == nil || !DoesFragmentConditionMatch(sch, fragment.TypeCondition, runtimeType) {
				continue
			}
			if _, err := CollectFields(sch, fragments, variableValues, runtimeType, fragment.SelectionSet, fields, visited); err != nil {
				return fields, err
			}
		}
	}
	return fields, nil
}

// ShouldIncludeNode applies @skip and @include. @skip(if: true) excludes the
// selection regardless of @include.
func ShouldIncludeNode(sch *schema.Schema, variableValues map[string]any, directives language.DirectiveList) (bool, error) {
	skip, err := DirectiveValues(sch, sch.Directive("skip"), directives, variableValues)
	if err != nil {
		return false, err
	}
	if skip != nil && skip["if"] == true {
		return false, nil
	}
	include, err := DirectiveValues(sch, sch.Directive("include"), directives, variableValues)
	if err != nil {
		return false, err
	}
	if include != nil && include["if"] == false {
		return false, nil
	}
	return true, nil
}

// DoesFragmentConditionMatch reports whether a fragment with typeCondition
// applies to runtimeType. An empty condition always applies; an abstract
// condition applies to its possible types.
func DoesFragmentConditionMatch(sch *schema.Schema, typeCondition string, runtimeType *schema.Type) bool {
	if typeCondition == "" {
		return true
	}
	if runtimeType == nil {
		return false
	}
	if typeCondition == runtimeType.Name {
		return true
	}
	conditional := sch.Type(typeCondition)
	if schema.IsAbstract(conditional) {
		return sch.IsSubType(conditional, runtimeType)
	}
	return false
}

// collectFields collects the fields of selectionSet for objectType with fresh
// accumulators.
func (ex *execution) collectFields(objectType *schema.Type, selectionSet language.SelectionSet) (*FieldGroupMap, error) {
	return CollectFields(
		ex.schema,
		ex.fragments,
		ex.variables,
		objectType,
		selectionSet,
		NewFieldGroupMap(),
		make(map[string]struct{}),
	)
}
