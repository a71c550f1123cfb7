package jer

import (
	"errors"
	"fmt"
	"time"

	"github.com/asn1kit/jer/asn1"
	"github.com/asn1kit/jer/internal/asn1time"
)

// builtinKinds maps descriptor kind tags to node variants. Any tag outside
// this table is a reference to a named type.
var builtinKinds = map[string]Kind{
	"BOOLEAN":           KindBoolean,
	"INTEGER":           KindInteger,
	"REAL":              KindReal,
	"NULL":              KindNull,
	"ENUMERATED":        KindEnumerated,
	"BIT STRING":        KindBitString,
	"OCTET STRING":      KindOctetString,
	"OBJECT IDENTIFIER": KindObjectIdentifier,
	"UTF8String":        KindUTF8String,
	"IA5String":         KindIA5String,
	"NumericString":     KindNumericString,
	"PrintableString":   KindPrintableString,
	"VisibleString":     KindVisibleString,
	"UniversalString":   KindUniversalString,
	"BMPString":         KindBMPString,
	"TeletexString":     KindTeletexString,
	"UTCTime":           KindUTCTime,
	"GeneralizedTime":   KindGeneralizedTime,
	"DATE":              KindDate,
	"TIME-OF-DAY":       KindTimeOfDay,
	"DATE-TIME":         KindDateTime,
	"ANY":               KindAny,
	"ANY DEFINED BY":    KindAny,
	"SEQUENCE":          KindSequence,
	"SET":               KindSet,
	"SEQUENCE OF":       KindSequenceOf,
	"SET OF":            KindSetOf,
	"CHOICE":            KindChoice,
}

// compiler carries one compile pass: the source specification, the arena
// under construction and the (module, type) memo that makes shared and
// recursive references land on a single node.
type compiler struct {
	spec      asn1.Specification
	tree      *tree
	memo      map[typeKey]ref
	resolving map[typeKey]bool
}

type typeKey struct {
	module string
	name   string
}

func newCompiler(spec asn1.Specification) *compiler {
	return &compiler{
		spec:      spec,
		tree:      &tree{},
		memo:      make(map[typeKey]ref),
		resolving: make(map[typeKey]bool),
	}
}

func schemaPath(module, name string) string {
	return "/" + module + "/" + name
}

// compileNamed compiles the type named in (or imported into) module. The
// arena slot is reserved and memoized before the body compiles, so a
// definition that references itself resolves to the slot being filled
// instead of recursing forever.
func (c *compiler) compileNamed(name, module string) (ref, error) {
	t, owner, err := c.spec.ResolveType(name, module)
	if err != nil {
		var ue *asn1.UnresolvedTypeError
		if errors.As(err, &ue) {
			return invalidRef, Issues{{
				Path:    schemaPath(module, name),
				Code:    CodeUnresolvedType,
				Message: fmt.Sprintf("type %q not found in module %q or its imports", ue.Name, ue.Module),
				Cause:   err,
				Offset:  -1,
			}}
		}
		return invalidRef, err
	}
	key := typeKey{module: owner, name: name}
	if r, ok := c.memo[key]; ok {
		return r, nil
	}
	if _, builtin := builtinKinds[t.Kind]; !builtin {
		// Alias chain (A ::= B). There is no slot to reserve yet, so a cycle
		// made of nothing but aliases must be caught explicitly.
		if c.resolving[key] {
			return invalidRef, issueAt(
				schemaPath(owner, name),
				CodeUnresolvedType,
				fmt.Sprintf("circular reference while resolving type %q in module %q", name, owner),
			)
		}
		c.resolving[key] = true
		r, err := c.compileNamed(t.Kind, owner)
		delete(c.resolving, key)
		if err != nil {
			return invalidRef, err
		}
		c.memo[key] = r
		return r, nil
	}
	r := c.tree.alloc()
	c.memo[key] = r
	if err := c.compileInto(r, schemaPath(owner, name), t, owner); err != nil {
		return invalidRef, err
	}
	return r, nil
}

// compileInline compiles a descriptor appearing in place, as a member or an
// element type. References route through the memoized named path.
func (c *compiler) compileInline(path string, t *asn1.Type, module string) (ref, error) {
	if t == nil {
		return invalidRef, issueAt(path, CodeInvalidDescriptor, "missing type descriptor")
	}
	if _, builtin := builtinKinds[t.Kind]; !builtin {
		return c.compileNamed(t.Kind, module)
	}
	r := c.tree.alloc()
	if err := c.compileInto(r, path, t, module); err != nil {
		return invalidRef, err
	}
	return r, nil
}

// compileInto fills the reserved slot. The node is built locally and written
// by index at the end: child compilation appends to the arena and may move
// the backing array.
func (c *compiler) compileInto(dst ref, path string, t *asn1.Type, module string) error {
	kind, ok := builtinKinds[t.Kind]
	if !ok {
		return issueAt(path, CodeInvalidDescriptor, fmt.Sprintf("unhandled type kind %q", t.Kind))
	}
	n := node{kind: kind}
	switch kind {
	case KindBoolean, KindInteger, KindReal, KindNull, KindObjectIdentifier,
		KindUTF8String, KindIA5String, KindNumericString, KindPrintableString,
		KindVisibleString, KindUniversalString, KindBMPString, KindTeletexString,
		KindUTCTime, KindGeneralizedTime, KindDate, KindTimeOfDay, KindDateTime,
		KindAny:
		// Leaf kinds carry nothing beyond the tag.
	case KindEnumerated:
		n.byValue = make(map[int64]string, len(t.Values))
		n.byName = make(map[string]int64, len(t.Values))
		for v, nm := range t.Values {
			n.byValue[v] = nm
			n.byName[nm] = v
		}
	case KindBitString, KindOctetString:
		if err := c.applySize(&n, path, t, module); err != nil {
			return err
		}
	case KindSequence:
		fields, _, err := c.compileFields(path, t.Members, module)
		if err != nil {
			return err
		}
		n.fields = fields
		n.index = fieldIndex(fields)
	case KindSet:
		fields, ext, err := c.compileFields(path, t.Members, module)
		if err != nil {
			return err
		}
		n.fields = fields
		n.index = fieldIndex(fields)
		n.extensible = ext
	case KindChoice:
		fields, _, err := c.compileFields(path, t.Members, module)
		if err != nil {
			return err
		}
		// CHOICE alternatives are never optional and never carry defaults;
		// such markings in the descriptor are ignored.
		for i := range fields {
			fields[i].optional = false
			fields[i].def = nil
			fields[i].hasDefault = false
		}
		n.fields = fields
		n.index = fieldIndex(fields)
	case KindSequenceOf, KindSetOf:
		if err := c.applySize(&n, path, t, module); err != nil {
			return err
		}
		elem, err := c.compileInline(path+"/element", t.Element, module)
		if err != nil {
			return err
		}
		n.elem = elem
	default:
		return issueAt(path, CodeInvalidDescriptor, fmt.Sprintf("unhandled node kind %v", kind))
	}
	*c.tree.at(dst) = n
	return nil
}

// compileFields builds the ordered field list of an aggregate. The extension
// marker toggles the extensible flag; members declared after it belong to an
// extension addition group, which this mapping does not support.
func (c *compiler) compileFields(path string, members []*asn1.Member, module string) ([]field, bool, error) {
	fields := make([]field, 0, len(members))
	extensible := false
	for _, m := range members {
		if m == nil {
			return nil, false, issueAt(path, CodeInvalidDescriptor, "nil member descriptor")
		}
		if m.Name == asn1.ExtensionMarker {
			extensible = true
			continue
		}
		if extensible {
			return nil, false, Issues{{
				Path:    path + "/" + m.Name,
				Code:    CodeUnsupportedExtension,
				Message: fmt.Sprintf("member %q follows the extension marker", m.Name),
				Hint:    "declare the member before the extension marker",
				Offset:  -1,
			}}
		}
		fpath := path + "/" + m.Name
		fr, err := c.compileInline(fpath, m.Type, module)
		if err != nil {
			return nil, false, err
		}
		f := field{name: m.Name, node: fr, optional: m.Optional}
		if m.HasDefault {
			def, err := coerceDefault(c.tree.at(fr).kind, m.Default)
			if err != nil {
				return nil, false, Issues{{
					Path:    fpath,
					Code:    CodeInvalidDescriptor,
					Message: fmt.Sprintf("default value: %v", err),
					Cause:   err,
					Offset:  -1,
				}}
			}
			f.def = def
			f.hasDefault = true
		}
		fields = append(fields, f)
	}
	return fields, extensible, nil
}

func fieldIndex(fields []field) map[string]int {
	idx := make(map[string]int, len(fields))
	for i := range fields {
		idx[fields[i].name] = i
	}
	return idx
}

// applySize records the declared size range on the node. The JSON mapping
// never consults it, but it must resolve so a dangling named bound fails at
// compile time rather than in a sibling backend.
func (c *compiler) applySize(n *node, path string, t *asn1.Type, module string) error {
	min, max, ok, err := asn1.SizeRange(t, module, c.spec[module])
	if err != nil {
		var uv *asn1.UnresolvedValueError
		if errors.As(err, &uv) {
			return Issues{{
				Path:    path,
				Code:    CodeUnresolvedValue,
				Message: fmt.Sprintf("size bound %q not found in module %q", uv.Name, uv.Module),
				Cause:   err,
				Offset:  -1,
			}}
		}
		return err
	}
	if ok {
		n.sizeMin, n.sizeMax, n.sized = min, max, true
	}
	return nil
}

// coerceDefault brings a declared default into the kind's native decode form
// so a default filled in at decode time is indistinguishable from a decoded
// wire value. Aggregate kinds and slots still pending compilation (recursive
// references are KindInvalid here) pass through untouched.
func coerceDefault(kind Kind, def any) (any, error) {
	switch kind {
	case KindBoolean:
		if b, ok := def.(bool); ok {
			return b, nil
		}
		return nil, fmt.Errorf("expected boolean, got %T", def)
	case KindInteger:
		if i, ok := toInt64(def); ok {
			return i, nil
		}
		return nil, fmt.Errorf("expected integer, got %#v", def)
	case KindReal:
		if f, ok := toFloat64(def); ok {
			return f, nil
		}
		return nil, fmt.Errorf("expected number, got %#v", def)
	case KindOctetString:
		switch v := def.(type) {
		case []byte:
			return v, nil
		case string:
			b, err := hexBytes(v)
			if err != nil {
				return nil, fmt.Errorf("invalid hexadecimal string %q", v)
			}
			return b, nil
		}
		return nil, fmt.Errorf("expected bytes or hexadecimal string, got %T", def)
	case KindBitString:
		switch v := def.(type) {
		case BitString:
			return v, nil
		case []byte:
			return BitString{Bytes: v, BitLength: 8 * len(v)}, nil
		case string:
			b, err := hexBytes(v)
			if err != nil {
				return nil, fmt.Errorf("invalid hexadecimal string %q", v)
			}
			return BitString{Bytes: b, BitLength: 8 * len(b)}, nil
		}
		return nil, fmt.Errorf("expected BitString, bytes or hexadecimal string, got %T", def)
	case KindUTCTime, KindGeneralizedTime, KindDate, KindTimeOfDay, KindDateTime:
		switch v := def.(type) {
		case time.Time:
			return v, nil
		case string:
			t, err := parseTimeKind(kind, v)
			if err != nil {
				return nil, fmt.Errorf("invalid %s value %q", kind, v)
			}
			return t, nil
		}
		return nil, fmt.Errorf("expected time.Time or string, got %T", def)
	default:
		return def, nil
	}
}

// parseTimeKind dispatches to the textual convention of the time kind.
func parseTimeKind(kind Kind, s string) (time.Time, error) {
	switch kind {
	case KindUTCTime:
		return asn1time.ParseUTCTime(s)
	case KindGeneralizedTime:
		return asn1time.ParseGeneralizedTime(s)
	case KindDate:
		return asn1time.ParseDate(s)
	case KindTimeOfDay:
		return asn1time.ParseTimeOfDay(s)
	default:
		return asn1time.ParseDateTime(s)
	}
}

// formatTimeKind renders the canonical text of the time kind.
func formatTimeKind(kind Kind, t time.Time) string {
	switch kind {
	case KindUTCTime:
		return asn1time.FormatUTCTime(t)
	case KindGeneralizedTime:
		return asn1time.FormatGeneralizedTime(t)
	case KindDate:
		return asn1time.FormatDate(t)
	case KindTimeOfDay:
		return asn1time.FormatTimeOfDay(t)
	default:
		return asn1time.FormatDateTime(t)
	}
}
