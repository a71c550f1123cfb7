package jer_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/asn1kit/jer"
	"github.com/asn1kit/jer/asn1"
)

func TestDecode_LenientMissing(t *testing.T) {
	ct := mustCompileType(t, personSpec(), "Personnel", "Person")

	// Required and optional members missing from the wire are omitted;
	// defaulted members are filled in.
	out, err := ct.Decode([]byte(`{}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	m := out.(map[string]any)
	if len(m) != 1 || m["active"] != true {
		t.Fatalf("expected only the default-filled member, got %v", m)
	}
}

func TestDecode_DisallowMissing(t *testing.T) {
	ct := mustCompileType(t, personSpec(), "Personnel", "Person")
	_, err := ct.DecodeWith([]byte(`{}`), jer.DecodeOpt{DisallowMissing: true})
	iss := mustIssues(t, err)
	if iss[0].Code != jer.CodeMissingField {
		t.Fatalf("expected missing_field, got %v", iss)
	}
	if iss[0].Path != "/name" {
		t.Fatalf("expected path /name, got %q", iss[0].Path)
	}
}

func TestDecode_UnknownKeys(t *testing.T) {
	ct := mustCompileType(t, personSpec(), "Personnel", "Person")
	data := []byte(`{"name":"a","zzz":1}`)

	// Ignored by default.
	out, err := ct.Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	m := out.(map[string]any)
	if _, ok := m["zzz"]; ok {
		t.Fatalf("expected the unknown key to be dropped, got %v", m)
	}
	if m["name"] != "a" {
		t.Fatalf("expected name to survive, got %v", m)
	}

	_, err = ct.DecodeWith(data, jer.DecodeOpt{DisallowUnknown: true})
	iss := mustIssues(t, err)
	if iss[0].Code != jer.CodeUnknownKey {
		t.Fatalf("expected unknown_key, got %v", iss)
	}
	if iss[0].Path != "/zzz" {
		t.Fatalf("expected path /zzz, got %q", iss[0].Path)
	}
}

func TestDecode_DefaultFillMatchesDecodedTypes(t *testing.T) {
	spec := singleTypeSpec(&asn1.Type{Kind: "SEQUENCE", Members: []*asn1.Member{
		{Name: "n", Type: &asn1.Type{Kind: "INTEGER"}, Default: int64(5), HasDefault: true},
		// The descriptor form collapses integral numbers, so a REAL default
		// may arrive as an int64 and has to come back out as a float64.
		{Name: "r", Type: &asn1.Type{Kind: "REAL"}, Default: int64(5), HasDefault: true},
		{Name: "s", Type: &asn1.Type{Kind: "OCTET STRING"}, Default: "abcd", HasDefault: true},
	}})
	ct := mustCompileType(t, spec, "M", "T")

	out, err := ct.Decode([]byte(`{}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	m := out.(map[string]any)
	if got, ok := m["n"].(int64); !ok || got != 5 {
		t.Fatalf("expected int64 5, got %T %v", m["n"], m["n"])
	}
	if got, ok := m["r"].(float64); !ok || got != 5 {
		t.Fatalf("expected float64 5, got %T %v", m["r"], m["r"])
	}
	if got, ok := m["s"].([]byte); !ok || !bytes.Equal(got, []byte{0xab, 0xcd}) {
		t.Fatalf("expected bytes AB CD, got %T %v", m["s"], m["s"])
	}
}

func TestDecode_IntegerForms(t *testing.T) {
	ct := mustCompileType(t, singleTypeSpec(&asn1.Type{Kind: "INTEGER"}), "M", "T")

	out, err := ct.Decode([]byte(`-42`))
	if err != nil || out != int64(-42) {
		t.Fatalf("expected int64 -42, got %v (%v)", out, err)
	}

	// Exponent notation is accepted when the value is integral.
	out, err = ct.Decode([]byte(`1e3`))
	if err != nil || out != int64(1000) {
		t.Fatalf("expected int64 1000, got %v (%v)", out, err)
	}

	out, err = ct.Decode([]byte(`9223372036854775807`))
	if err != nil || out != int64(9223372036854775807) {
		t.Fatalf("expected int64 max, got %v (%v)", out, err)
	}

	_, err = ct.Decode([]byte(`1.5`))
	iss := mustIssues(t, err)
	if iss[0].Code != jer.CodeInvalidValue {
		t.Fatalf("expected invalid_value for 1.5, got %v", iss)
	}

	_, err = ct.Decode([]byte(`"5"`))
	iss = mustIssues(t, err)
	if iss[0].Code != jer.CodeInvalidType {
		t.Fatalf("expected invalid_type for a string, got %v", iss)
	}
}

func TestDecode_Choice(t *testing.T) {
	spec := singleTypeSpec(&asn1.Type{Kind: "CHOICE", Members: []*asn1.Member{
		{Name: "num", Type: &asn1.Type{Kind: "INTEGER"}},
		{Name: "text", Type: &asn1.Type{Kind: "UTF8String"}},
	}})
	ct := mustCompileType(t, spec, "M", "T")

	out, err := ct.Decode([]byte(`{"num":7}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	m := out.(map[string]any)
	if len(m) != 1 || m["num"] != int64(7) {
		t.Fatalf("expected {num: 7}, got %v", m)
	}

	for _, bad := range []string{`{}`, `{"num":1,"text":"x"}`} {
		_, err = ct.Decode([]byte(bad))
		iss := mustIssues(t, err)
		if iss[0].Code != jer.CodeInvalidChoice {
			t.Fatalf("expected invalid_choice for %s, got %v", bad, iss)
		}
	}

	_, err = ct.Decode([]byte(`{"other":true}`))
	iss := mustIssues(t, err)
	if iss[0].Code != jer.CodeInvalidChoice {
		t.Fatalf("expected invalid_choice, got %v", iss)
	}
	if iss[0].Path != "/other" {
		t.Fatalf("expected path /other, got %q", iss[0].Path)
	}
}

func TestDecode_Enumerated(t *testing.T) {
	spec := singleTypeSpec(&asn1.Type{Kind: "ENUMERATED", Values: map[int64]string{
		0: "red", 1: "green",
	}})
	ct := mustCompileType(t, spec, "M", "T")

	out, err := ct.Decode([]byte(`"red"`))
	if err != nil || out != "red" {
		t.Fatalf("expected red, got %v (%v)", out, err)
	}

	_, err = ct.Decode([]byte(`"mauve"`))
	iss := mustIssues(t, err)
	if iss[0].Code != jer.CodeInvalidEnum {
		t.Fatalf("expected invalid_enum, got %v", iss)
	}

	// The wire form is the name, never the ordinal.
	_, err = ct.Decode([]byte(`1`))
	iss = mustIssues(t, err)
	if iss[0].Code != jer.CodeInvalidType {
		t.Fatalf("expected invalid_type for an ordinal, got %v", iss)
	}
}

func TestDecode_BinaryKinds(t *testing.T) {
	octets := mustCompileType(t, singleTypeSpec(&asn1.Type{Kind: "OCTET STRING"}), "M", "T")
	out, err := octets.Decode([]byte(`"DEAD"`))
	if err != nil || !bytes.Equal(out.([]byte), []byte{0xde, 0xad}) {
		t.Fatalf("expected DE AD, got %v (%v)", out, err)
	}
	// Lower-case hex is tolerated on the way in.
	out, err = octets.Decode([]byte(`"dead"`))
	if err != nil || !bytes.Equal(out.([]byte), []byte{0xde, 0xad}) {
		t.Fatalf("expected DE AD, got %v (%v)", out, err)
	}
	// Non-hex characters and odd digit counts are both rejected.
	for _, bad := range []string{`"xyz"`, `"abc"`} {
		_, err = octets.Decode([]byte(bad))
		iss := mustIssues(t, err)
		if iss[0].Code != jer.CodeInvalidValue {
			t.Fatalf("expected invalid_value for %s, got %v", bad, iss)
		}
	}

	bits := mustCompileType(t, singleTypeSpec(&asn1.Type{Kind: "BIT STRING"}), "M", "T")
	out, err = bits.Decode([]byte(`"0F"`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	bs := out.(jer.BitString)
	if !bytes.Equal(bs.Bytes, []byte{0x0f}) || bs.BitLength != 8 {
		t.Fatalf("expected 0F with 8 bits, got %v", bs)
	}
}

func TestDecode_TimeKinds(t *testing.T) {
	utc := mustCompileType(t, singleTypeSpec(&asn1.Type{Kind: "UTCTime"}), "M", "T")
	out, err := utc.Decode([]byte(`"240501123000Z"`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	if got := out.(time.Time); !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	gen := mustCompileType(t, singleTypeSpec(&asn1.Type{Kind: "GeneralizedTime"}), "M", "T")
	out, err = gen.Decode([]byte(`"20240501123000.25Z"`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := out.(time.Time); !got.Equal(want.Add(250 * time.Millisecond)) {
		t.Fatalf("expected a 250ms fraction, got %v", got)
	}

	date := mustCompileType(t, singleTypeSpec(&asn1.Type{Kind: "DATE"}), "M", "T")
	_, err = date.Decode([]byte(`"05/01/2024"`))
	iss := mustIssues(t, err)
	if iss[0].Code != jer.CodeInvalidValue {
		t.Fatalf("expected invalid_value, got %v", iss)
	}
}

func TestDecode_NullAndBoolean(t *testing.T) {
	null := mustCompileType(t, singleTypeSpec(&asn1.Type{Kind: "NULL"}), "M", "T")
	out, err := null.Decode([]byte(`null`))
	if err != nil || out != nil {
		t.Fatalf("expected nil, got %v (%v)", out, err)
	}
	_, err = null.Decode([]byte(`0`))
	iss := mustIssues(t, err)
	if iss[0].Code != jer.CodeInvalidType {
		t.Fatalf("expected invalid_type, got %v", iss)
	}

	boolean := mustCompileType(t, singleTypeSpec(&asn1.Type{Kind: "BOOLEAN"}), "M", "T")
	out, err = boolean.Decode([]byte(`true`))
	if err != nil || out != true {
		t.Fatalf("expected true, got %v (%v)", out, err)
	}
	_, err = boolean.Decode([]byte(`"true"`))
	iss = mustIssues(t, err)
	if iss[0].Code != jer.CodeInvalidType {
		t.Fatalf("expected invalid_type, got %v", iss)
	}
}
