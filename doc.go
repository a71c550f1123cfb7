package jer

// Package jer implements the JSON Encoding Rules mapping for ASN.1 schemas:
//
// - Compile turns pre-parsed type descriptors into immutable codec node trees
// - CompiledType transcodes native Go values to and from compact JER bytes
// - A stable error model via Issues (JSON Pointer, code, message)
//
// Design policy:
// - Keep only public APIs in the root package; descriptor loading lives under asn1/.
// - Compiled trees never mutate after Compile and are safe for concurrent use.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	spec, err := asn1.LoadFile("schema.json")
//	types, err := jer.Compile(spec)
//	wire, err := types["MyModule"]["Person"].Encode(map[string]any{"name": "alice"})
//	back, err := types["MyModule"]["Person"].Decode(wire)
