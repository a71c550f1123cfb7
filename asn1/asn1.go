// Package asn1 holds the pre-parsed descriptor form of ASN.1 modules: the
// input an external schema front end produces and the jer compiler consumes.
// Descriptors are plain data and must not change once handed to a compiler.
package asn1

// ExtensionMarker is the member name that marks the start of an extension
// addition group ("..." in ASN.1 notation). A member carrying this name is
// not a field.
const ExtensionMarker = "..."

// Specification maps module name to module.
type Specification map[string]*Module

// Module is one ASN.1 module: its type assignments, its integer value
// assignments (usable as named size bounds) and what it imports from other
// modules.
type Module struct {
	Types  map[string]*Type
	Values map[string]int64
	// Imports maps a source module name to the type names imported from it.
	Imports map[string][]string
}

// Type is one type descriptor. Kind is the ASN.1 keyword ("SEQUENCE",
// "INTEGER", ...); a Kind that is no keyword is a reference to a named type,
// resolved through the owning module and its imports. The remaining fields
// are populated per kind: Members for SEQUENCE/SET/CHOICE, Element for
// SEQUENCE OF/SET OF, Values for ENUMERATED, Size where a SIZE constraint
// was declared. Tag and RestrictedTo pass through untouched for backends
// that need them.
type Type struct {
	Kind         string
	Members      []*Member
	Element      *Type
	Values       map[int64]string
	Size         []SizeConstraint
	Tag          *Tag
	RestrictedTo []any
}

// Member is one SEQUENCE/SET/CHOICE member. Default carries the declared
// default in native form (int64 for INTEGER, float64 for REAL, string, bool,
// []any, map[string]any); HasDefault distinguishes "no default" from a
// declared nil. The loader normalizes document values into this form.
type Member struct {
	Name       string
	Type       *Type
	Optional   bool
	Default    any
	HasDefault bool
}

// Tag is a pass-through ASN.1 tag annotation.
type Tag struct {
	Class  string
	Number int64
}
