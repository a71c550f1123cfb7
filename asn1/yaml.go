package asn1

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LoadYAML reads a YAML specification document with the same shape as the
// JSON form. Multi-document streams are merged module by module, later
// documents winning on module name collisions.
func LoadYAML(r io.Reader) (Specification, error) {
	dec := yaml.NewDecoder(r)
	doc := make(map[string]any)
	for {
		var node any
		if err := dec.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, errors.Wrap(err, "asn1: decode YAML specification document")
		}
		m := yamlAnyToStringMap(node)
		if m == nil {
			continue
		}
		for k, v := range m {
			doc[k] = v
		}
	}
	if len(doc) == 0 {
		return nil, errors.New("asn1: empty YAML specification document")
	}
	return FromMap(doc)
}

// LoadYAMLBytes reads a YAML specification document from memory.
func LoadYAMLBytes(b []byte) (Specification, error) {
	return LoadYAML(bytes.NewReader(b))
}

// yamlAnyToStringMap converts YAML-decoded values (which may contain
// map[any]any) into JSON-like map[string]any recursively. Scalar keys such
// as enumeration ordinals are rendered to strings. Non-map roots return nil.
func yamlAnyToStringMap(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = yamlNormalizeValue(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				ks = fmt.Sprint(k)
			}
			out[ks] = yamlNormalizeValue(vv)
		}
		return out
	default:
		return nil
	}
}

func yamlNormalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any, map[any]any:
		return yamlAnyToStringMap(t)
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = yamlNormalizeValue(t[i])
		}
		return arr
	default:
		return v
	}
}
