package jer

import (
	"encoding/hex"
	"strings"
)

// BitString is the native form of an ASN.1 BIT STRING value: the packed bits
// and the count of significant bits. The JSON mapping carries whole octets
// only, so decoding always reports BitLength == 8*len(Bytes).
type BitString struct {
	Bytes     []byte
	BitLength int
}

// hexUpper renders bytes in the upper-case hexadecimal wire convention shared
// by BIT STRING and OCTET STRING.
func hexUpper(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}

// hexBytes parses the hexadecimal wire convention. Both cases are accepted;
// the length must be even.
func hexBytes(s string) ([]byte, error) {
	return hex.DecodeString(strings.ToLower(s))
}

// validOID reports whether s is a dotted-decimal object identifier: two or
// more arcs of decimal digits separated by single dots.
func validOID(s string) bool {
	arcs := strings.Split(s, ".")
	if len(arcs) < 2 {
		return false
	}
	for _, arc := range arcs {
		if arc == "" {
			return false
		}
		for i := 0; i < len(arc); i++ {
			if arc[i] < '0' || arc[i] > '9' {
				return false
			}
		}
	}
	return true
}
