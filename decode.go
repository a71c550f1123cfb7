package jer

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// decodeValue walks the intermediate wire form against the node tree,
// reconstructing the native value. Decoding is lenient by default: required
// members missing from the wire are omitted from the result rather than
// reported, the asymmetric counterpart of strict encoding.
func decodeValue(t *tree, r ref, v any, path string, opt DecodeOpt, depth int) (any, error) {
	if depth <= 0 {
		return nil, issueAt(path, CodeDepthExceeded, "wire nesting exceeds the depth limit")
	}
	n := t.at(r)
	switch n.kind {
	case KindBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, wireTypeIssue(path, n.kind, v)
		}
		return b, nil
	case KindInteger:
		num, ok := v.(json.Number)
		if !ok {
			return nil, wireTypeIssue(path, n.kind, v)
		}
		if i, err := num.Int64(); err == nil {
			return i, nil
		}
		f, err := num.Float64()
		if err != nil {
			return nil, wireValueIssue(path, n.kind, num.String(), err)
		}
		i, ok := intFromFloat(f)
		if !ok {
			return nil, wireValueIssue(path, n.kind, num.String(), nil)
		}
		return i, nil
	case KindReal:
		num, ok := v.(json.Number)
		if !ok {
			return nil, wireTypeIssue(path, n.kind, v)
		}
		f, err := num.Float64()
		if err != nil {
			return nil, wireValueIssue(path, n.kind, num.String(), err)
		}
		return f, nil
	case KindNull:
		if v != nil {
			return nil, wireTypeIssue(path, n.kind, v)
		}
		return nil, nil
	case KindEnumerated:
		s, ok := v.(string)
		if !ok {
			return nil, wireTypeIssue(path, n.kind, v)
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
			return nil, wireTypeIssue(path, n.kind, v)
		}
		return s, nil
	case KindObjectIdentifier:
		s, ok := v.(string)
		if !ok {
			return nil, wireTypeIssue(path, n.kind, v)
		}
		if !validOID(s) {
			return nil, wireValueIssue(path, n.kind, s, nil)
		}
		return s, nil
	case KindBitString:
		s, ok := v.(string)
		if !ok {
			return nil, wireTypeIssue(path, n.kind, v)
		}
		b, err := hexBytes(s)
		if err != nil {
			return nil, hexIssue(path, s, err)
		}
		return BitString{Bytes: b, BitLength: 8 * len(b)}, nil
	case KindOctetString:
		s, ok := v.(string)
		if !ok {
			return nil, wireTypeIssue(path, n.kind, v)
		}
		b, err := hexBytes(s)
		if err != nil {
			return nil, hexIssue(path, s, err)
		}
		return b, nil
	case KindUTCTime, KindGeneralizedTime, KindDate, KindTimeOfDay, KindDateTime:
		s, ok := v.(string)
		if !ok {
			return nil, wireTypeIssue(path, n.kind, v)
		}
		tv, err := parseTimeKind(n.kind, s)
		if err != nil {
			return nil, wireValueIssue(path, n.kind, s, err)
		}
		return tv, nil
	case KindAny:
		return nil, issueAt(path, CodeUnsupportedType, "ANY has no JSON transfer syntax")
	case KindSequence, KindSet:
		return decodeMembers(t, n, v, path, opt, depth)
	case KindChoice:
		return decodeChoice(t, n, v, path, opt, depth)
	case KindSequenceOf, KindSetOf:
		return decodeElements(t, n, v, path, opt, depth)
	default:
		return nil, issueAt(path, CodeInvalidDescriptor, fmt.Sprintf("unhandled node kind %d", n.kind))
	}
}

func decodeMembers(t *tree, n *node, v any, path string, opt DecodeOpt, depth int) (any, error) {
	o, ok := v.(*Object)
	if !ok {
		return nil, wireTypeIssue(path, n.kind, v)
	}
	if opt.DisallowUnknown {
		for _, k := range o.Keys() {
			if _, ok := n.index[k]; !ok {
				return nil, Issues{{
					Path:    childPath(path, k),
					Code:    CodeUnknownKey,
					Message: fmt.Sprintf("unknown member %q", k),
					Offset:  -1,
				}}
			}
		}
	}
	out := make(map[string]any, len(n.fields))
	for i := range n.fields {
		f := &n.fields[i]
		fpath := childPath(path, f.name)
		raw, present := o.Get(f.name)
		switch {
		case present:
			dv, err := decodeValue(t, f.node, raw, fpath, opt, depth-1)
			if err != nil {
				return nil, err
			}
			out[f.name] = dv
		case f.optional:
			// Absent optional members stay absent.
		case f.hasDefault:
			out[f.name] = f.def
		case opt.DisallowMissing:
			return nil, Issues{{
				Path:    fpath,
				Code:    CodeMissingField,
				Message: fmt.Sprintf("member %q not found", f.name),
				Offset:  -1,
			}}
		default:
			// Lenient reconstruction: required but missing is omitted.
		}
	}
	return out, nil
}

func decodeChoice(t *tree, n *node, v any, path string, opt DecodeOpt, depth int) (any, error) {
	o, ok := v.(*Object)
	if !ok {
		return nil, wireTypeIssue(path, n.kind, v)
	}
	if o.Len() != 1 {
		return nil, Issues{{
			Path:    path,
			Code:    CodeInvalidChoice,
			Message: fmt.Sprintf("expected a single alternative, got %d keys", o.Len()),
			Params:  map[string]any{"expected": fieldNames(n)},
			Offset:  -1,
		}}
	}
	key := o.Keys()[0]
	i, ok := n.index[key]
	if !ok {
		return nil, Issues{{
			Path:    childPath(path, key),
			Code:    CodeInvalidChoice,
			Message: fmt.Sprintf("alternative %q not found in %v", key, fieldNames(n)),
			Params:  map[string]any{"expected": fieldNames(n)},
			Offset:  -1,
		}}
	}
	f := &n.fields[i]
	raw, _ := o.Get(key)
	dv, err := decodeValue(t, f.node, raw, childPath(path, key), opt, depth-1)
	if err != nil {
		return nil, err
	}
	return map[string]any{key: dv}, nil
}

func decodeElements(t *tree, n *node, v any, path string, opt DecodeOpt, depth int) (any, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, wireTypeIssue(path, n.kind, v)
	}
	out := make([]any, 0, len(list))
	for i, e := range list {
		dv, err := decodeValue(t, n.elem, e, childPath(path, strconv.Itoa(i)), opt, depth-1)
		if err != nil {
			return nil, err
		}
		out = append(out, dv)
	}
	return out, nil
}

// ---- helpers ----

func wireTypeIssue(path string, kind Kind, v any) Issues {
	return issueAt(path, CodeInvalidType, fmt.Sprintf("expected %s value, got %s", kind, wireTypeName(v)))
}

func wireValueIssue(path string, kind Kind, s string, cause error) Issues {
	return Issues{{
		Path:    path,
		Code:    CodeInvalidValue,
		Message: fmt.Sprintf("invalid %s value %q", kind, s),
		Cause:   cause,
		Offset:  -1,
	}}
}

// wireTypeName names the JSON shape of an intermediate value for
// diagnostics.
func wireTypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case json.Number:
		return "number"
	case []any:
		return "array"
	case *Object:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
