package asn1

import (
	"fmt"
	"sort"
)

// UnresolvedTypeError reports a type reference that is absent from its module
// and from everything the module imports.
type UnresolvedTypeError struct {
	Name   string
	Module string
}

func (e *UnresolvedTypeError) Error() string {
	return fmt.Sprintf("asn1: type %q not found in module %q or its imports", e.Name, e.Module)
}

// UnresolvedValueError reports a named value (size bound) that is absent from
// its module.
type UnresolvedValueError struct {
	Name   string
	Module string
}

func (e *UnresolvedValueError) Error() string {
	return fmt.Sprintf("asn1: value %q not found in module %q", e.Name, e.Module)
}

// LookupType returns the type assignment named in this module, without
// consulting imports.
func (m *Module) LookupType(name string) (*Type, bool) {
	t, ok := m.Types[name]
	return t, ok
}

// ResolveType finds the named type starting from the given module, following
// imports transitively. It returns the descriptor together with the name of
// the module that defines it, so nested references inside the descriptor
// resolve against the right namespace.
func (s Specification) ResolveType(name, module string) (*Type, string, error) {
	return s.resolveType(name, module, nil)
}

func (s Specification) resolveType(name, module string, seen map[string]bool) (*Type, string, error) {
	if seen[module] {
		return nil, "", &UnresolvedTypeError{Name: name, Module: module}
	}
	m, ok := s[module]
	if !ok {
		return nil, "", &UnresolvedTypeError{Name: name, Module: module}
	}
	if t, ok := m.LookupType(name); ok {
		return t, module, nil
	}
	// Deterministic import order: map iteration would make which of two
	// competing exporters wins depend on the run.
	froms := make([]string, 0, len(m.Imports))
	for from := range m.Imports {
		froms = append(froms, from)
	}
	sort.Strings(froms)
	for _, from := range froms {
		for _, imported := range m.Imports[from] {
			if imported != name {
				continue
			}
			if seen == nil {
				seen = make(map[string]bool)
			}
			seen[module] = true
			return s.resolveType(name, from, seen)
		}
	}
	return nil, "", &UnresolvedTypeError{Name: name, Module: module}
}
