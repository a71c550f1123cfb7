package jer

import (
	"sort"

	"github.com/asn1kit/jer/asn1"
)

// Compile compiles every type of every module in the specification. The
// result maps module name to type name to compiled type. All compiled types
// of one call share a single node arena, so a type referenced from several
// places compiles exactly once and recursive definitions terminate.
func Compile(spec asn1.Specification) (map[string]map[string]*CompiledType, error) {
	c := newCompiler(spec)
	out := make(map[string]map[string]*CompiledType, len(spec))
	modNames := make([]string, 0, len(spec))
	for name := range spec {
		modNames = append(modNames, name)
	}
	sort.Strings(modNames)
	for _, modName := range modNames {
		m := spec[modName]
		if m == nil {
			return nil, issueAt("/"+modName, CodeInvalidDescriptor, "nil module descriptor")
		}
		typeNames := make([]string, 0, len(m.Types))
		for name := range m.Types {
			typeNames = append(typeNames, name)
		}
		sort.Strings(typeNames)
		types := make(map[string]*CompiledType, len(typeNames))
		for _, typeName := range typeNames {
			r, err := c.compileNamed(typeName, modName)
			if err != nil {
				return nil, err
			}
			types[typeName] = &CompiledType{name: modName + "." + typeName, tree: c.tree, root: r}
		}
		out[modName] = types
	}
	return out, nil
}

// CompileType compiles a single named type and everything it references.
func CompileType(spec asn1.Specification, module, typeName string) (*CompiledType, error) {
	c := newCompiler(spec)
	r, err := c.compileNamed(typeName, module)
	if err != nil {
		return nil, err
	}
	return &CompiledType{name: module + "." + typeName, tree: c.tree, root: r}, nil
}

// CompiledType transcodes values of one named type. It is immutable after
// compilation and safe for concurrent use.
type CompiledType struct {
	name string
	tree *tree
	root ref
}

// Name returns the qualified "Module.Type" name.
func (ct *CompiledType) Name() string { return ct.name }

// Kind returns the top-level kind after alias resolution.
func (ct *CompiledType) Kind() Kind { return ct.tree.at(ct.root).kind }

// Encode transcodes a native value into compact JSON bytes under default
// options.
func (ct *CompiledType) Encode(v any) ([]byte, error) {
	return ct.EncodeWith(v, EncodeOpt{})
}

// EncodeWith transcodes a native value into compact JSON bytes.
func (ct *CompiledType) EncodeWith(v any, opt EncodeOpt) ([]byte, error) {
	iv, err := encodeValue(ct.tree, ct.root, v, "/", opt, opt.maxDepth())
	if err != nil {
		return nil, err
	}
	return serialize(iv)
}

// EncodeIndent transcodes a native value into indented JSON bytes under
// default options, following json.MarshalIndent conventions.
func (ct *CompiledType) EncodeIndent(v any, prefix, indent string) ([]byte, error) {
	iv, err := encodeValue(ct.tree, ct.root, v, "/", EncodeOpt{}, DefaultMaxDepth)
	if err != nil {
		return nil, err
	}
	return serializeIndent(iv, prefix, indent)
}

// Decode transcodes JSON bytes back into a native value under default
// options.
func (ct *CompiledType) Decode(data []byte) (any, error) {
	return ct.DecodeWith(data, DecodeOpt{})
}

// DecodeWith transcodes JSON bytes back into a native value.
func (ct *CompiledType) DecodeWith(data []byte, opt DecodeOpt) (any, error) {
	iv, err := deserialize(data, opt.maxDepth())
	if err != nil {
		return nil, err
	}
	return decodeValue(ct.tree, ct.root, iv, "/", opt, opt.maxDepth())
}
