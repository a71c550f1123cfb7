package asn1

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// The document form is the JSON dump of a specification, one object per
// module:
//
//	{
//	  "PersonnelRecord": {
//	    "imports": {"Other": ["Name"]},
//	    "values": {"maxAge": 150},
//	    "types": {
//	      "Person": {
//	        "type": "SEQUENCE",
//	        "members": [
//	          {"name": "name", "type": "UTF8String"},
//	          {"name": "age", "type": "INTEGER", "optional": true, "default": 0},
//	          {"name": "..."}
//	        ]
//	      }
//	    }
//	  }
//	}
//
// Member objects double as type descriptors: the member keys (name, optional,
// default) sit next to the descriptor keys (type, members, element, values,
// size). Size entries are a fixed length, a [min,max] pair, a named value, or
// "..."; null inside a pair means an open bound.

// Load reads a JSON specification document.
func Load(r io.Reader) (Specification, error) {
	dec := gojson.NewDecoder(r)
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "asn1: decode specification document")
	}
	return FromMap(doc)
}

// LoadBytes reads a JSON specification document from memory.
func LoadBytes(b []byte) (Specification, error) {
	return Load(bytes.NewReader(b))
}

// LoadFile reads a specification document, choosing YAML or JSON by file
// extension (.yaml/.yml means YAML).
func LoadFile(path string) (Specification, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "asn1: read specification file")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAMLBytes(b)
	default:
		return LoadBytes(b)
	}
}

// FromMap builds a Specification from a decoded document tree. Values may be
// JSON-decoded (json.Number numbers) or YAML-decoded (int/float64 numbers);
// both are normalized.
func FromMap(doc map[string]any) (Specification, error) {
	spec := make(Specification, len(doc))
	for modName, raw := range doc {
		mm, ok := raw.(map[string]any)
		if !ok {
			return nil, errors.Errorf("asn1: module %q: expected object, got %T", modName, raw)
		}
		mod, err := moduleFromMap(modName, mm)
		if err != nil {
			return nil, err
		}
		spec[modName] = mod
	}
	return spec, nil
}

func moduleFromMap(modName string, doc map[string]any) (*Module, error) {
	m := &Module{
		Types:   make(map[string]*Type),
		Values:  make(map[string]int64),
		Imports: make(map[string][]string),
	}
	if raw, ok := doc["imports"]; ok {
		im, ok := raw.(map[string]any)
		if !ok {
			return nil, errors.Errorf("asn1: module %q: imports must be an object, got %T", modName, raw)
		}
		for from, names := range im {
			list, ok := names.([]any)
			if !ok {
				return nil, errors.Errorf("asn1: module %q: imports from %q must be an array, got %T", modName, from, names)
			}
			imported := make([]string, 0, len(list))
			for _, n := range list {
				s, ok := n.(string)
				if !ok {
					return nil, errors.Errorf("asn1: module %q: imports from %q: expected type name string, got %T", modName, from, n)
				}
				imported = append(imported, s)
			}
			m.Imports[from] = imported
		}
	}
	if raw, ok := doc["values"]; ok {
		vm, ok := raw.(map[string]any)
		if !ok {
			return nil, errors.Errorf("asn1: module %q: values must be an object, got %T", modName, raw)
		}
		for name, v := range vm {
			// Both the plain form {"maxAge": 150} and the descriptor form
			// {"maxAge": {"type": "INTEGER", "value": 150}} occur in dumps.
			if dm, ok := v.(map[string]any); ok {
				v = dm["value"]
			}
			n, ok := docInt64(v)
			if !ok {
				return nil, errors.Errorf("asn1: module %q: value %q must be an integer, got %T", modName, name, v)
			}
			m.Values[name] = n
		}
	}
	raw, ok := doc["types"]
	if !ok {
		return nil, errors.Errorf("asn1: module %q: missing types", modName)
	}
	tm, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.Errorf("asn1: module %q: types must be an object, got %T", modName, raw)
	}
	for name, rawT := range tm {
		td, ok := rawT.(map[string]any)
		if !ok {
			return nil, errors.Errorf("asn1: module %q: type %q: expected object, got %T", modName, name, rawT)
		}
		t, err := typeFromMap(modName+"."+name, td)
		if err != nil {
			return nil, err
		}
		m.Types[name] = t
	}
	return m, nil
}

func typeFromMap(where string, doc map[string]any) (*Type, error) {
	rawKind, ok := doc["type"]
	if !ok {
		return nil, errors.Errorf("asn1: %s: missing type", where)
	}
	kind, ok := rawKind.(string)
	if !ok || kind == "" {
		return nil, errors.Errorf("asn1: %s: type must be a non-empty string, got %#v", where, rawKind)
	}
	t := &Type{Kind: kind}

	if raw, ok := doc["members"]; ok {
		list, ok := raw.([]any)
		if !ok {
			return nil, errors.Errorf("asn1: %s: members must be an array, got %T", where, raw)
		}
		t.Members = make([]*Member, 0, len(list))
		for i, rawM := range list {
			md, ok := rawM.(map[string]any)
			if !ok {
				return nil, errors.Errorf("asn1: %s: member %d: expected object, got %T", where, i, rawM)
			}
			member, err := memberFromMap(where, md)
			if err != nil {
				return nil, err
			}
			t.Members = append(t.Members, member)
		}
	}
	if raw, ok := doc["element"]; ok {
		ed, ok := raw.(map[string]any)
		if !ok {
			return nil, errors.Errorf("asn1: %s: element must be an object, got %T", where, raw)
		}
		elem, err := typeFromMap(where+".element", ed)
		if err != nil {
			return nil, err
		}
		t.Element = elem
	}
	if raw, ok := doc["values"]; ok {
		vm, ok := raw.(map[string]any)
		if !ok {
			return nil, errors.Errorf("asn1: %s: values must be an object, got %T", where, raw)
		}
		t.Values = make(map[int64]string, len(vm))
		for k, v := range vm {
			ordinal, err := strconv.ParseInt(k, 10, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "asn1: %s: enumeration ordinal %q", where, k)
			}
			name, ok := v.(string)
			if !ok {
				return nil, errors.Errorf("asn1: %s: enumeration name for %s must be a string, got %T", where, k, v)
			}
			t.Values[ordinal] = name
		}
	}
	if raw, ok := doc["size"]; ok {
		size, err := sizeFromDoc(where, raw)
		if err != nil {
			return nil, err
		}
		t.Size = size
	}
	if raw, ok := doc["tag"]; ok {
		td, ok := raw.(map[string]any)
		if !ok {
			return nil, errors.Errorf("asn1: %s: tag must be an object, got %T", where, raw)
		}
		tag := &Tag{}
		if c, ok := td["class"].(string); ok {
			tag.Class = c
		}
		if n, ok := docInt64(td["number"]); ok {
			tag.Number = n
		}
		t.Tag = tag
	}
	if raw, ok := doc["restricted-to"]; ok {
		list, ok := raw.([]any)
		if !ok {
			return nil, errors.Errorf("asn1: %s: restricted-to must be an array, got %T", where, raw)
		}
		t.RestrictedTo = list
	}
	return t, nil
}

func memberFromMap(where string, doc map[string]any) (*Member, error) {
	rawName, ok := doc["name"]
	if !ok {
		return nil, errors.Errorf("asn1: %s: member missing name", where)
	}
	name, ok := rawName.(string)
	if !ok || name == "" {
		return nil, errors.Errorf("asn1: %s: member name must be a non-empty string, got %#v", where, rawName)
	}
	member := &Member{Name: name}
	if name == ExtensionMarker {
		return member, nil
	}
	if raw, ok := doc["optional"]; ok {
		b, ok := raw.(bool)
		if !ok {
			return nil, errors.Errorf("asn1: %s.%s: optional must be a boolean, got %T", where, name, raw)
		}
		member.Optional = b
	}
	if raw, ok := doc["default"]; ok {
		member.Default = normalizeValue(raw)
		member.HasDefault = true
	}
	t, err := typeFromMap(where+"."+name, doc)
	if err != nil {
		return nil, err
	}
	member.Type = t
	return member, nil
}

func sizeFromDoc(where string, raw any) ([]SizeConstraint, error) {
	entries, ok := raw.([]any)
	if !ok {
		// A bare scalar is a single fixed-length entry.
		entries = []any{raw}
	}
	size := make([]SizeConstraint, 0, len(entries))
	for i, e := range entries {
		switch v := e.(type) {
		case string:
			if v == ExtensionMarker {
				size = append(size, SizeConstraint{Extension: true})
				continue
			}
			size = append(size, SizeConstraint{Fixed: &Bound{Name: v}})
		case []any:
			if len(v) != 2 {
				return nil, errors.Errorf("asn1: %s: size entry %d: range must have two bounds, got %d", where, i, len(v))
			}
			lo, err := boundFromDoc(where, i, v[0])
			if err != nil {
				return nil, err
			}
			hi, err := boundFromDoc(where, i, v[1])
			if err != nil {
				return nil, err
			}
			size = append(size, SizeConstraint{Min: lo, Max: hi})
		default:
			n, ok := docInt64(e)
			if !ok {
				return nil, errors.Errorf("asn1: %s: size entry %d: expected length, range or name, got %T", where, i, e)
			}
			size = append(size, SizeConstraint{Fixed: &Bound{Value: n}})
		}
	}
	return size, nil
}

func boundFromDoc(where string, entry int, raw any) (*Bound, error) {
	switch v := raw.(type) {
	case nil:
		// Open bound ("MAX" in notation).
		return nil, nil
	case string:
		if v == "MAX" {
			return nil, nil
		}
		return &Bound{Name: v}, nil
	default:
		n, ok := docInt64(raw)
		if !ok {
			return nil, errors.Errorf("asn1: %s: size entry %d: expected bound, got %T", where, entry, raw)
		}
		return &Bound{Value: n}, nil
	}
}

// docInt64 accepts the integer representations produced by JSON and YAML
// decoding.
func docInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case gojson.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	case int:
		return int64(t), true
	case int64:
		return t, true
	case uint64:
		if t > 1<<63-1 {
			return 0, false
		}
		return int64(t), true
	case float64:
		n := int64(t)
		if float64(n) != t {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// normalizeValue brings document scalars into native form: integral numbers
// become int64, other numbers float64, containers are normalized
// recursively. Member defaults go through this so a default filled in at
// decode time is indistinguishable from a decoded wire value.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case gojson.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case int:
		return int64(t)
	case int64:
		return t
	case uint64:
		if t <= 1<<63-1 {
			return int64(t)
		}
		return t
	case float64:
		if n := int64(t); float64(n) == t {
			return n
		}
		return t
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = normalizeValue(t[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = normalizeValue(vv)
		}
		return out
	default:
		return v
	}
}
