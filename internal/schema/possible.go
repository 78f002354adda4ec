package schema

import "sort"

// Type returns the named type, or nil when the schema does not define it.
func (s *Schema) Type(name string) *Type {
	if s == nil || name == "" {
		return nil
	}
	return s.Types[name]
}

// Directive returns the named directive definition. The built-in @skip and
// @include definitions are returned even when the schema does not declare
// them.
func (s *Schema) Directive(name string) *Directive {
	if s != nil {
		if d, ok := s.Directives[name]; ok {
			return d
		}
	}
	switch name {
	case SkipDirective.Name:
		return SkipDirective
	case IncludeDirective.Name:
		return IncludeDirective
	}
	return nil
}

// IsAbstract reports whether t is an interface or union type.
func IsAbstract(t *Type) bool {
	return t != nil && (t.Kind == TypeKindInterface || t.Kind == TypeKindUnion)
}

// PossibleTypes lists the object types that can appear where abstract is
// expected, in declaration order. For interfaces without an explicit list
// the object types declaring the interface are used, sorted by name.
func (s *Schema) PossibleTypes(abstract *Type) []*Type {
	if !IsAbstract(abstract) {
		return nil
	}
	var out []*Type
	if len(abstract.PossibleTypes) > 0 {
		for _, name := range abstract.PossibleTypes {
			if t := s.Type(name); t != nil && t.Kind == TypeKindObject {
				out = append(out, t)
			}
		}
		return out
	}
	if abstract.Kind != TypeKindInterface {
		return nil
	}
	for _, name := range s.sortedTypeNames() {
		t := s.Types[name]
		if t.Kind == TypeKindObject && t.Implements(abstract.Name) {
			out = append(out, t)
		}
	}
	return out
}

// IsSubType reports whether maybeSub is a possible type of abstract. An
// interface also counts as a subtype of another interface it implements.
func (s *Schema) IsSubType(abstract, maybeSub *Type) bool {
	if !IsAbstract(abstract) || maybeSub == nil {
		return false
	}
	if maybeSub.Kind == TypeKindInterface {
		return abstract.Kind == TypeKindInterface && maybeSub.Implements(abstract.Name)
	}
	if maybeSub.Kind != TypeKindObject {
		return false
	}
	for _, name := range abstract.PossibleTypes {
		if name == maybeSub.Name {
			return true
		}
	}
	return abstract.Kind == TypeKindInterface && maybeSub.Implements(abstract.Name)
}

// Implements reports whether t lists iface among its interfaces.
func (t *Type) Implements(iface string) bool {
	for _, name := range t.Interfaces {
		if name == iface {
			return true
		}
	}
	return false
}

func (s *Schema) sortedTypeNames() []string {
	names := make([]string, 0, len(s.Types))
	for name := range s.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a copy of s with its own type and directive maps. The types
// and directives themselves are shared.
func (s *Schema) Clone() *Schema {
	c := *s
	c.Types = make(map[string]*Type, len(s.Types))
	for name, t := range s.Types {
		c.Types[name] = t
	}
	c.Directives = make(map[string]*Directive, len(s.Directives))
	for name, d := range s.Directives {
		c.Directives[name] = d
	}
	return &c
}
