package jer

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType  = "invalid_type"
	CodeInvalidValue = "invalid_value"
	CodeMissingField = "missing_field"
	CodeUnknownKey   = "unknown_key"
	CodeInvalidEnum  = "invalid_enum"
	// CodeInvalidChoice covers both sides of CHOICE transcoding: no alternative
	// present, more than one present, or an undeclared alternative key.
	CodeInvalidChoice = "invalid_choice"
	// Compile-time codes.
	CodeUnresolvedType       = "unresolved_type"
	CodeUnresolvedValue      = "unresolved_value"
	CodeUnsupportedExtension = "unsupported_extension"
	CodeInvalidDescriptor    = "invalid_descriptor"
	// CodeUnsupportedType marks constructs that compile but have no JSON
	// transfer syntax (ANY, ANY DEFINED BY).
	CodeUnsupportedType = "unsupported_type"
	CodeMalformedWire   = "malformed_wire"
	CodeDepthExceeded   = "depth_exceeded"
)

// Issue represents a single transcoding or compilation error entry.
type Issue struct {
	Path    string // JSON Pointer into the value, or a schema path at compile time.
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, expected formats, etc.
	Cause   error  // Optional: underlying error.
	Offset  int64  // Byte offset in the wire input (-1 when unknown).
	// Params carries structured parameters (e.g., {"expected": [...]}) for
	// observability.
	Params map[string]any
}

// Issues is a collection of errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /path: expected INTEGER
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		if it.Message != "" {
			fmt.Fprintf(b, ": %s", it.Message)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// issueAt creates a single-entry Issues at the given path.
func issueAt(path, code, msg string) Issues {
	return Issues{{Path: path, Code: code, Message: msg, Offset: -1}}
}
