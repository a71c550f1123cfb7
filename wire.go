package jer

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	gojson "github.com/goccy/go-json"
)

// The byte-level wire adapter converts between the intermediate value tree
// and JSON text. Serialization is compact (no spaces around ':' or ',') and
// does not escape HTML characters. Deserialization keeps numbers as
// json.Number and collects duplicate object keys last-wins, the later value
// replacing the earlier one at its original position.

func serialize(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeValue(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if t {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case gojson.Number:
		buf.WriteString(t.String())
	case string:
		return writeString(buf, t)
	case []any:
		buf.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case *Object:
		buf.WriteByte('{')
		for i, k := range t.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			e, _ := t.Get(k)
			if err := writeValue(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("jer: cannot serialize %T", v)
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	b, err := gojson.MarshalWithOption(s, gojson.DisableHTMLEscape())
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

// serializeIndent renders the intermediate value with one element per line,
// following json.MarshalIndent conventions: prefix at the start of each
// nested line, ": " after object keys, empty containers on one line.
func serializeIndent(v any, prefix, indent string) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeValueIndent(&buf, v, prefix, indent, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeValueIndent(buf *bytes.Buffer, v any, prefix, indent string, level int) error {
	switch t := v.(type) {
	case []any:
		if len(t) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
			writePad(buf, prefix, indent, level+1)
			if err := writeValueIndent(buf, e, prefix, indent, level+1); err != nil {
				return err
			}
		}
		buf.WriteByte('\n')
		writePad(buf, prefix, indent, level)
		buf.WriteByte(']')
		return nil
	case *Object:
		if t.Len() == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteByte('{')
		for i, k := range t.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
			writePad(buf, prefix, indent, level+1)
			if err := writeString(buf, k); err != nil {
				return err
			}
			buf.WriteString(": ")
			e, _ := t.Get(k)
			if err := writeValueIndent(buf, e, prefix, indent, level+1); err != nil {
				return err
			}
		}
		buf.WriteByte('\n')
		writePad(buf, prefix, indent, level)
		buf.WriteByte('}')
		return nil
	default:
		return writeValue(buf, v)
	}
}

func writePad(buf *bytes.Buffer, prefix, indent string, level int) {
	buf.WriteString(prefix)
	for i := 0; i < level; i++ {
		buf.WriteString(indent)
	}
}

// deserialize parses a single JSON value from data. Anything after the value
// other than end-of-input is an error.
func deserialize(data []byte, maxDepth int) (any, error) {
	if !utf8.Valid(data) {
		return nil, wireIssue(CodeMalformedWire, "input is not valid UTF-8", -1, nil)
	}
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := readValue(dec, maxDepth)
	if err != nil {
		if iss, ok := AsIssues(err); ok {
			return nil, iss
		}
		return nil, wireIssue(CodeMalformedWire, "invalid JSON text", dec.InputOffset(), err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, wireIssue(CodeMalformedWire, "trailing data after the value", dec.InputOffset(), nil)
	}
	return v, nil
}

func wireIssue(code, msg string, off int64, cause error) Issues {
	return Issues{{Path: "/", Code: code, Message: msg, Cause: cause, Offset: off}}
}

func readValue(dec *gojson.Decoder, depth int) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return buildValue(dec, tok, depth)
}

func buildValue(dec *gojson.Decoder, tok gojson.Token, depth int) (any, error) {
	switch t := tok.(type) {
	case gojson.Delim:
		if depth <= 0 {
			return nil, Issues{{
				Path:    "/",
				Code:    CodeDepthExceeded,
				Message: "wire nesting exceeds the depth limit",
				Offset:  dec.InputOffset(),
			}}
		}
		switch t {
		case '{':
			return readObject(dec, depth-1)
		case '[':
			return readArray(dec, depth-1)
		default:
			// Unbalanced closers surface as decoder errors before this point.
			return nil, fmt.Errorf("jer: unexpected delimiter %q", t.String())
		}
	case string:
		return t, nil
	case gojson.Number:
		return t, nil
	case float64:
		// UseNumber makes this unreachable, kept for driver compatibility.
		return gojson.Number(strconv.FormatFloat(t, 'g', -1, 64)), nil
	case bool:
		return t, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("jer: unexpected token %v", tok)
	}
}

func readObject(dec *gojson.Decoder, depth int) (*Object, error) {
	o := NewObject()
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := kt.(string)
		if !ok {
			return nil, fmt.Errorf("jer: object key is %T, want string", kt)
		}
		vt, err := dec.Token()
		if err != nil {
			return nil, err
		}
		v, err := buildValue(dec, vt, depth)
		if err != nil {
			return nil, err
		}
		o.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return o, nil
}

func readArray(dec *gojson.Decoder, depth int) ([]any, error) {
	arr := []any{}
	for dec.More() {
		vt, err := dec.Token()
		if err != nil {
			return nil, err
		}
		v, err := buildValue(dec, vt, depth)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}
