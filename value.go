package jer

// The intermediate wire form sits between the structural transcoder and the
// byte-level adapter. It is an "any" tree with the dynamic types nil, bool,
// string, json.Number, []any and *Object.

// Object is an insertion-ordered string-keyed mapping. Key order carries no
// meaning when decoding, but encode emits members in declared order, so the
// intermediate form has to keep it. Setting an existing key replaces the
// value and keeps the original position, which also gives duplicate wire
// keys last-wins semantics.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject returns an empty ordered object.
func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// Set inserts or replaces the value for key.
func (o *Object) Set(key string, v any) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get returns the value for key and whether it is present.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// Len returns the number of keys.
func (o *Object) Len() int { return len(o.keys) }

// Keys returns the keys in insertion order. The returned slice is the
// object's backing storage and must not be modified.
func (o *Object) Keys() []string { return o.keys }
