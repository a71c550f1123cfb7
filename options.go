package jer

// DefaultMaxDepth bounds recursion through nested values and wire documents
// when the caller does not set an explicit limit. Recursive schemas make the
// nesting depth input-controlled, so the limit converts runaway nesting into
// a depth_exceeded issue instead of unbounded stack growth.
const DefaultMaxDepth = 64

// EncodeOpt bundles encoding options.
type EncodeOpt struct {
	// KeepDefaults emits members whose value equals the declared default.
	// The default policy elides them from the wire.
	KeepDefaults bool
	// MaxDepth caps value nesting; zero means DefaultMaxDepth.
	MaxDepth int
}

// DecodeOpt bundles decoding options.
type DecodeOpt struct {
	// DisallowMissing reports absent required members with missing_field.
	// The default policy reconstructs best-effort and simply omits them,
	// mirroring the asymmetry between strict encode and lenient decode.
	DisallowMissing bool
	// DisallowUnknown reports wire object keys that match no declared member.
	// The default policy ignores them.
	DisallowUnknown bool
	// MaxDepth caps wire nesting; zero means DefaultMaxDepth.
	MaxDepth int
}

func (o EncodeOpt) maxDepth() int {
	if o.MaxDepth > 0 {
		return o.MaxDepth
	}
	return DefaultMaxDepth
}

func (o DecodeOpt) maxDepth() int {
	if o.MaxDepth > 0 {
		return o.MaxDepth
	}
	return DefaultMaxDepth
}
