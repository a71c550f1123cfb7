package jer

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// encodeValue walks the native value against the node tree, producing the
// intermediate wire form. Encoding is strict: a required member missing from
// the native value aborts the call.
func encodeValue(t *tree, r ref, v any, path string, opt EncodeOpt, depth int) (any, error) {
	if depth <= 0 {
		return nil, issueAt(path, CodeDepthExceeded, "value nesting exceeds the depth limit")
	}
	n := t.at(r)
	switch n.kind {
	case KindBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, typeIssue(path, n.kind, v)
		}
		return b, nil
	case KindInteger:
		i, ok := toInt64(v)
		if !ok {
			return nil, typeIssue(path, n.kind, v)
		}
		return json.Number(strconv.FormatInt(i, 10)), nil
	case KindReal:
		f, ok := toFloat64(v)
		if !ok {
			return nil, typeIssue(path, n.kind, v)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, issueAt(path, CodeInvalidValue, "REAL value has no JSON representation")
		}
		return json.Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
	case KindNull:
		if v != nil {
			return nil, typeIssue(path, n.kind, v)
		}
		return nil, nil
	case KindEnumerated:
		s, ok := v.(string)
		if !ok {
			return nil, typeIssue(path, n.kind, v)
		}
		if _, ok := n.byName[s]; !ok {
			return nil, Issues{{
				Path:    path,
				Code:    CodeInvalidEnum,
				Message: fmt.Sprintf("enumeration value %q not found in %v", s, enumNames(n)),
				Params:  map[string]any{"expected": enumNames(n)},
				Offset:  -1,
			}}
		}
		return s, nil
	case KindUTF8String, KindIA5String, KindNumericString, KindPrintableString,
		KindVisibleString, KindUniversalString, KindBMPString, KindTeletexString:
		s, ok := v.(string)
		if !ok {
			return nil, typeIssue(path, n.kind, v)
		}
		return s, nil
	case KindObjectIdentifier:
		s, ok := v.(string)
		if !ok {
			return nil, typeIssue(path, n.kind, v)
		}
		if !validOID(s) {
			return nil, Issues{{
				Path:    path,
				Code:    CodeInvalidValue,
				Message: fmt.Sprintf("invalid object identifier %q", s),
				Hint:    "use dotted-decimal form like 1.3.6.1.4.1",
				Offset:  -1,
			}}
		}
		return s, nil
	case KindBitString:
		return encodeBitString(path, v)
	case KindOctetString:
		return encodeOctetString(path, v)
	case KindUTCTime, KindGeneralizedTime, KindDate, KindTimeOfDay, KindDateTime:
		return encodeTimeValue(n.kind, path, v)
	case KindAny:
		return nil, issueAt(path, CodeUnsupportedType, "ANY has no JSON transfer syntax")
	case KindSequence, KindSet:
		return encodeMembers(t, n, v, path, opt, depth)
	case KindChoice:
		return encodeChoice(t, n, v, path, opt, depth)
	case KindSequenceOf, KindSetOf:
		return encodeElements(t, n, v, path, opt, depth)
	default:
		return nil, issueAt(path, CodeInvalidDescriptor, fmt.Sprintf("unhandled node kind %d", n.kind))
	}
}

func encodeBitString(path string, v any) (any, error) {
	switch t := v.(type) {
	case BitString:
		return hexUpper(t.Bytes), nil
	case []byte:
		return hexUpper(t), nil
	case string:
		if _, err := hexBytes(t); err != nil {
			return nil, hexIssue(path, t, err)
		}
		return strings.ToUpper(t), nil
	default:
		return nil, typeIssue(path, KindBitString, v)
	}
}

func encodeOctetString(path string, v any) (any, error) {
	switch t := v.(type) {
	case []byte:
		return hexUpper(t), nil
	case string:
		if _, err := hexBytes(t); err != nil {
			return nil, hexIssue(path, t, err)
		}
		return strings.ToUpper(t), nil
	default:
		return nil, typeIssue(path, KindOctetString, v)
	}
}

func encodeTimeValue(kind Kind, path string, v any) (any, error) {
	switch t := v.(type) {
	case time.Time:
		return formatTimeKind(kind, t), nil
	case string:
		// A pre-formatted value is accepted but still has to parse.
		if _, err := parseTimeKind(kind, t); err != nil {
			return nil, Issues{{
				Path:    path,
				Code:    CodeInvalidValue,
				Message: fmt.Sprintf("invalid %s value %q", kind, t),
				Cause:   err,
				Offset:  -1,
			}}
		}
		return t, nil
	default:
		return nil, typeIssue(path, kind, v)
	}
}

func encodeMembers(t *tree, n *node, v any, path string, opt EncodeOpt, depth int) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, typeIssue(path, n.kind, v)
	}
	out := NewObject()
	for i := range n.fields {
		f := &n.fields[i]
		fpath := childPath(path, f.name)
		raw, present := m[f.name]
		if !present {
			if f.optional || f.hasDefault {
				continue
			}
			return nil, Issues{{
				Path:    fpath,
				Code:    CodeMissingField,
				Message: fmt.Sprintf("member %q not found", f.name),
				Offset:  -1,
			}}
		}
		if f.hasDefault && !opt.KeepDefaults && defaultEqual(raw, f.def) {
			continue
		}
		ev, err := encodeValue(t, f.node, raw, fpath, opt, depth-1)
		if err != nil {
			return nil, err
		}
		out.Set(f.name, ev)
	}
	return out, nil
}

func encodeChoice(t *tree, n *node, v any, path string, opt EncodeOpt, depth int) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, typeIssue(path, n.kind, v)
	}
	chosen := -1
	for i := range n.fields {
		if _, ok := m[n.fields[i].name]; !ok {
			continue
		}
		if chosen >= 0 {
			return nil, Issues{{
				Path:    path,
				Code:    CodeInvalidChoice,
				Message: fmt.Sprintf("alternatives %q and %q are both present", n.fields[chosen].name, n.fields[i].name),
				Params:  map[string]any{"expected": fieldNames(n)},
				Offset:  -1,
			}}
		}
		chosen = i
	}
	if chosen < 0 {
		return nil, Issues{{
			Path:    path,
			Code:    CodeInvalidChoice,
			Message: fmt.Sprintf("expected one of %v, got %v", fieldNames(n), sortedMapKeys(m)),
			Params:  map[string]any{"expected": fieldNames(n)},
			Offset:  -1,
		}}
	}
	f := &n.fields[chosen]
	ev, err := encodeValue(t, f.node, m[f.name], childPath(path, f.name), opt, depth-1)
	if err != nil {
		return nil, err
	}
	out := NewObject()
	out.Set(f.name, ev)
	return out, nil
}

func encodeElements(t *tree, n *node, v any, path string, opt EncodeOpt, depth int) (any, error) {
	list, ok := asSlice(v)
	if !ok {
		return nil, typeIssue(path, n.kind, v)
	}
	out := make([]any, 0, len(list))
	for i, e := range list {
		ev, err := encodeValue(t, n.elem, e, childPath(path, strconv.Itoa(i)), opt, depth-1)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

// ---- helpers ----

func childPath(parent, name string) string {
	if parent == "/" {
		return "/" + name
	}
	return parent + "/" + name
}

func typeIssue(path string, kind Kind, v any) Issues {
	return issueAt(path, CodeInvalidType, fmt.Sprintf("expected %s value, got %s", kind, nativeTypeName(v)))
}

func hexIssue(path, s string, cause error) Issues {
	return Issues{{
		Path:    path,
		Code:    CodeInvalidValue,
		Message: fmt.Sprintf("invalid hexadecimal string %q", s),
		Hint:    "use an even number of hexadecimal digits",
		Cause:   cause,
		Offset:  -1,
	}}
}

func nativeTypeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case map[string]any:
		return "map"
	case []any:
		return "slice"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// enumNames returns the declared names in ordinal order, for deterministic
// diagnostics.
func enumNames(n *node) []string {
	ordinals := make([]int64, 0, len(n.byValue))
	for o := range n.byValue {
		ordinals = append(ordinals, o)
	}
	sort.Slice(ordinals, func(i, j int) bool { return ordinals[i] < ordinals[j] })
	names := make([]string, len(ordinals))
	for i, o := range ordinals {
		names[i] = n.byValue[o]
	}
	return names
}

func fieldNames(n *node) []string {
	names := make([]string, len(n.fields))
	for i := range n.fields {
		names[i] = n.fields[i].name
	}
	return names
}

func sortedMapKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// toInt64 accepts the integer representations a native value may arrive in:
// Go integer widths, json.Number and integral floats.
func toInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int8:
		return int64(t), true
	case int16:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case uint:
		return int64(t), uint64(t) <= math.MaxInt64
	case uint8:
		return int64(t), true
	case uint16:
		return int64(t), true
	case uint32:
		return int64(t), true
	case uint64:
		return int64(t), t <= math.MaxInt64
	case float32:
		return intFromFloat(float64(t))
	case float64:
		return intFromFloat(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, true
		}
		if f, err := t.Float64(); err == nil {
			return intFromFloat(f)
		}
		return 0, false
	default:
		return 0, false
	}
}

func intFromFloat(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f >= 1<<63 || f < -(1<<63) {
		return 0, false
	}
	n := int64(f)
	if float64(n) != f {
		return 0, false
	}
	return n, true
}

// toFloat64 accepts the numeric representations a native value may arrive in.
func toFloat64(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	default:
		return 0, false
	}
}

// asSlice accepts []any directly and other slices and arrays through
// reflection. Byte slices are octet values, not sequences.
func asSlice(v any) ([]any, bool) {
	if list, ok := v.([]any); ok {
		return list, true
	}
	switch v.(type) {
	case nil, []byte, string:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if k := rv.Kind(); k != reflect.Slice && k != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// defaultEqual compares a native value against a compiled default. Numeric
// and binary forms are normalized first, so 5, 5.0 and json.Number("5")
// compare equal, as do []byte and hex string renderings.
func defaultEqual(v, def any) bool {
	return reflect.DeepEqual(normalizeCompare(v), normalizeCompare(def))
}

func normalizeCompare(v any) any {
	switch t := v.(type) {
	case nil, bool, string:
		return v
	case []byte:
		return hexUpper(t)
	case BitString:
		return hexUpper(t.Bytes)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = normalizeCompare(t[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = normalizeCompare(vv)
		}
		return out
	}
	if i, ok := toInt64(v); ok {
		return i
	}
	if f, ok := toFloat64(v); ok {
		return f
	}
	return v
}
