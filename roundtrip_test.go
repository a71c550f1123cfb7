package jer_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/asn1kit/jer"
	"github.com/asn1kit/jer/asn1"
)

func TestRoundTrip_Scalars(t *testing.T) {
	cases := []struct {
		name string
		typ  *asn1.Type
		in   any
		wire string
	}{
		{"boolean", &asn1.Type{Kind: "BOOLEAN"}, true, `true`},
		{"integer", &asn1.Type{Kind: "INTEGER"}, int64(-12), `-12`},
		{"real", &asn1.Type{Kind: "REAL"}, 0.5, `0.5`},
		{"null", &asn1.Type{Kind: "NULL"}, nil, `null`},
		{"utf8", &asn1.Type{Kind: "UTF8String"}, "héllo ✓", `"héllo ✓"`},
		{"ia5", &asn1.Type{Kind: "IA5String"}, "abc", `"abc"`},
		{"enum", &asn1.Type{Kind: "ENUMERATED", Values: map[int64]string{0: "red", 1: "green"}}, "green", `"green"`},
		{"oid", &asn1.Type{Kind: "OBJECT IDENTIFIER"}, "1.2.840.113549", `"1.2.840.113549"`},
		{"octets", &asn1.Type{Kind: "OCTET STRING"}, []byte{0x01, 0xff}, `"01FF"`},
		{"bits", &asn1.Type{Kind: "BIT STRING"}, jer.BitString{Bytes: []byte{0xa0, 0x0f}, BitLength: 16}, `"A00F"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ct := mustCompileType(t, singleTypeSpec(tc.typ), "M", "T")
			enc, err := ct.Encode(tc.in)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if string(enc) != tc.wire {
				t.Fatalf("wire mismatch: want %s, got %s", tc.wire, enc)
			}
			dec, err := ct.Decode(enc)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !reflect.DeepEqual(dec, tc.in) {
				t.Fatalf("round trip mismatch: want %#v, got %#v", tc.in, dec)
			}
		})
	}
}

func TestRoundTrip_TimeKinds(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 30, 45, 0, time.UTC)
	cases := []struct {
		kind string
		in   time.Time
		wire string
	}{
		{"UTCTime", base, `"240501123045Z"`},
		{"GeneralizedTime", base.Add(250 * time.Millisecond), `"20240501123045.25Z"`},
		{"DATE", time.Date(2031, 12, 3, 0, 0, 0, 0, time.UTC), `"2031-12-03"`},
		{"TIME-OF-DAY", time.Date(0, 1, 1, 23, 59, 7, 0, time.UTC), `"23:59:07"`},
		{"DATE-TIME", base, `"2024-05-01T12:30:45"`},
	}
	for _, tc := range cases {
		t.Run(tc.kind, func(t *testing.T) {
			ct := mustCompileType(t, singleTypeSpec(&asn1.Type{Kind: tc.kind}), "M", "T")
			enc, err := ct.Encode(tc.in)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if string(enc) != tc.wire {
				t.Fatalf("wire mismatch: want %s, got %s", tc.wire, enc)
			}
			dec, err := ct.Decode(enc)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got := dec.(time.Time); !got.Equal(tc.in) {
				t.Fatalf("round trip mismatch: want %v, got %v", tc.in, got)
			}
		})
	}

	// Pre-formatted text passes through validated but untouched, offset form
	// included.
	ct := mustCompileType(t, singleTypeSpec(&asn1.Type{Kind: "UTCTime"}), "M", "T")
	enc, err := ct.Encode("240501143045+0200")
	if err != nil || string(enc) != `"240501143045+0200"` {
		t.Fatalf("expected the offset form to pass through, got %s (%v)", enc, err)
	}
}

func TestRoundTrip_SequenceOfOrder(t *testing.T) {
	ct := mustCompileType(t, singleTypeSpec(&asn1.Type{
		Kind:    "SEQUENCE OF",
		Element: &asn1.Type{Kind: "INTEGER"},
	}), "M", "T")

	in := []any{int64(3), int64(1), int64(2)}
	enc, err := ct.Encode(in)
	if err != nil || string(enc) != `[3,1,2]` {
		t.Fatalf("expected [3,1,2], got %s (%v)", enc, err)
	}
	dec, err := ct.Decode(enc)
	if err != nil || !reflect.DeepEqual(dec, in) {
		t.Fatalf("expected element order preserved, got %v (%v)", dec, err)
	}

	// Typed slices are accepted on the way in.
	enc, err = ct.Encode([]int{3, 1, 2})
	if err != nil || string(enc) != `[3,1,2]` {
		t.Fatalf("expected [3,1,2] from a typed slice, got %s (%v)", enc, err)
	}

	// Empty stays empty.
	enc, err = ct.Encode([]any{})
	if err != nil || string(enc) != `[]` {
		t.Fatalf("expected [], got %s (%v)", enc, err)
	}
	dec, err = ct.Decode(enc)
	if err != nil || !reflect.DeepEqual(dec, []any{}) {
		t.Fatalf("expected an empty slice, got %#v (%v)", dec, err)
	}
}

func TestRoundTrip_SetOfKeepsWireOrder(t *testing.T) {
	ct := mustCompileType(t, singleTypeSpec(&asn1.Type{
		Kind:    "SET OF",
		Element: &asn1.Type{Kind: "UTF8String"},
	}), "M", "T")

	in := []any{"b", "a"}
	enc, err := ct.Encode(in)
	if err != nil || string(enc) != `["b","a"]` {
		t.Fatalf("expected [\"b\",\"a\"], got %s (%v)", enc, err)
	}
	dec, err := ct.Decode(enc)
	if err != nil || !reflect.DeepEqual(dec, in) {
		t.Fatalf("expected the given order back, got %v (%v)", dec, err)
	}
}

func TestRoundTrip_NestedSequence(t *testing.T) {
	spec := singleTypeSpec(&asn1.Type{Kind: "SEQUENCE", Members: []*asn1.Member{
		{Name: "id", Type: &asn1.Type{Kind: "INTEGER"}},
		{Name: "tags", Type: &asn1.Type{Kind: "SEQUENCE OF", Element: &asn1.Type{Kind: "UTF8String"}}},
		{Name: "meta", Type: &asn1.Type{Kind: "SEQUENCE", Members: []*asn1.Member{
			{Name: "k", Type: &asn1.Type{Kind: "UTF8String"}},
		}}, Optional: true},
	}})
	ct := mustCompileType(t, spec, "M", "T")

	in := map[string]any{
		"id":   int64(7),
		"tags": []any{"x", "y"},
		"meta": map[string]any{"k": "v"},
	}
	enc, err := ct.Encode(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `{"id":7,"tags":["x","y"],"meta":{"k":"v"}}`
	if string(enc) != want {
		t.Fatalf("want %s, got %s", want, enc)
	}
	dec, err := ct.Decode(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(dec, in) {
		t.Fatalf("round trip mismatch: want %#v, got %#v", in, dec)
	}
}

func TestRoundTrip_RecursiveChainDepth(t *testing.T) {
	ct := mustCompileType(t, chainSpec(), "M", "Chain")
	in := map[string]any{}
	for i := 0; i < 70; i++ {
		in = map[string]any{"next": in}
	}

	enc, err := ct.EncodeWith(in, jer.EncodeOpt{MaxDepth: 128})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	// The default wire limit rejects what a raised encode limit produced.
	_, err = ct.Decode(enc)
	iss := mustIssues(t, err)
	if iss[0].Code != jer.CodeDepthExceeded {
		t.Fatalf("expected depth_exceeded, got %v", iss)
	}

	dec, err := ct.DecodeWith(enc, jer.DecodeOpt{MaxDepth: 128})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(dec, in) {
		t.Fatalf("round trip mismatch at depth 70")
	}
}
