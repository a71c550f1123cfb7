package main

import (
	"bytes"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"

	"github.com/asn1kit/jer"
	"github.com/asn1kit/jer/asn1"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	switch sub {
	case "encode", "decode", "canonical":
		run(sub, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "jerc transcodes values of an ASN.1 type to and from their JSON transfer form\n\nUsage:\n  jerc encode    -spec schema.json [-module M] -type T [value.json]\n  jerc decode    -spec schema.json [-module M] -type T [value.jer]\n  jerc canonical -spec schema.json [-module M] -type T [value.jer]\n\nNotes:\n  - The input argument defaults to standard input; \"-\" reads it explicitly.\n  - encode reads a native value as JSON and writes the compact transfer form.\n  - decode reads the transfer form and writes an indented native view.\n  - canonical re-encodes a transfer form into canonical compact bytes.")
}

func run(sub string, args []string) {
	fs := flag.NewFlagSet(sub, flag.ExitOnError)
	var specPath string
	var module string
	var typeName string
	fs.StringVar(&specPath, "spec", "", "type descriptor document (.json, .yaml or .yml)")
	fs.StringVar(&module, "module", "", "module name (optional when the document has exactly one)")
	fs.StringVar(&typeName, "type", "", "type name to transcode")
	_ = fs.Parse(args)
	if specPath == "" || typeName == "" {
		fs.Usage()
		os.Exit(2)
	}

	spec, err := asn1.LoadFile(specPath)
	if err != nil {
		fatalf("load %s: %v", specPath, err)
	}
	if module == "" {
		if len(spec) != 1 {
			fatalf("document has %d modules, pick one with -module", len(spec))
		}
		for name := range spec {
			module = name
		}
	}
	ct, err := jer.CompileType(spec, module, typeName)
	if err != nil {
		fatalf("compile %s.%s: %v", module, typeName, err)
	}

	data, err := readInput(fs.Arg(0))
	if err != nil {
		fatalf("read input: %v", err)
	}

	switch sub {
	case "encode":
		dec := gojson.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			fatalf("parse input value: %v", err)
		}
		out, err := ct.Encode(v)
		if err != nil {
			fatalf("encode: %v", err)
		}
		writeLine(out)
	case "decode":
		v, err := ct.Decode(data)
		if err != nil {
			fatalf("decode: %v", err)
		}
		out, err := gojson.MarshalIndentWithOption(displayValue(v), "", "  ", gojson.DisableHTMLEscape())
		if err != nil {
			fatalf("render: %v", err)
		}
		writeLine(out)
	case "canonical":
		v, err := ct.Decode(data)
		if err != nil {
			fatalf("decode: %v", err)
		}
		out, err := ct.Encode(v)
		if err != nil {
			fatalf("encode: %v", err)
		}
		writeLine(out)
	}
}

func readInput(arg string) ([]byte, error) {
	if arg == "" || arg == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(arg)
}

func writeLine(b []byte) {
	os.Stdout.Write(b)
	os.Stdout.Write([]byte{'\n'})
}

// displayValue rewrites decoded values that have no JSON rendering of their
// own: byte strings as upper-case hex, times as RFC 3339 in UTC.
func displayValue(v any) any {
	switch t := v.(type) {
	case []byte:
		return strings.ToUpper(hex.EncodeToString(t))
	case jer.BitString:
		return strings.ToUpper(hex.EncodeToString(t.Bytes))
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = displayValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = displayValue(e)
		}
		return out
	default:
		return v
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
