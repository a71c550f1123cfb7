package jer

// Kind tags a compiled node variant. The zero value is KindInvalid.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBoolean
	KindInteger
	KindReal
	KindNull
	KindEnumerated
	KindBitString
	KindOctetString
	KindObjectIdentifier
	KindUTF8String
	KindIA5String
	KindNumericString
	KindPrintableString
	KindVisibleString
	KindUniversalString
	KindBMPString
	KindTeletexString
	KindUTCTime
	KindGeneralizedTime
	KindDate
	KindTimeOfDay
	KindDateTime
	KindAny
	KindSequence
	KindSet
	KindSequenceOf
	KindSetOf
	KindChoice
)

var kindNames = map[Kind]string{
	KindInvalid:          "INVALID",
	KindBoolean:          "BOOLEAN",
	KindInteger:          "INTEGER",
	KindReal:             "REAL",
	KindNull:             "NULL",
	KindEnumerated:       "ENUMERATED",
	KindBitString:        "BIT STRING",
	KindOctetString:      "OCTET STRING",
	KindObjectIdentifier: "OBJECT IDENTIFIER",
	KindUTF8String:       "UTF8String",
	KindIA5String:        "IA5String",
	KindNumericString:    "NumericString",
	KindPrintableString:  "PrintableString",
	KindVisibleString:    "VisibleString",
	KindUniversalString:  "UniversalString",
	KindBMPString:        "BMPString",
	KindTeletexString:    "TeletexString",
	KindUTCTime:          "UTCTime",
	KindGeneralizedTime:  "GeneralizedTime",
	KindDate:             "DATE",
	KindTimeOfDay:        "TIME-OF-DAY",
	KindDateTime:         "DATE-TIME",
	KindAny:              "ANY",
	KindSequence:         "SEQUENCE",
	KindSet:              "SET",
	KindSequenceOf:       "SEQUENCE OF",
	KindSetOf:            "SET OF",
	KindChoice:           "CHOICE",
}

// String returns the ASN.1 notation name of the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "INVALID"
}

// ref addresses a node within its tree. Refs are stable because compilation
// only ever appends to the arena.
type ref int32

const invalidRef ref = -1

// field is one member of a Sequence, Set or Choice node.
type field struct {
	name       string
	node       ref
	optional   bool
	def        any
	hasDefault bool
}

// node is one compiled type. Nodes never change after Compile returns;
// recursive definitions hold the ref of a slot reserved earlier in the same
// pass instead of owning a nested copy.
type node struct {
	kind       Kind
	fields     []field        // Sequence, Set, Choice
	index      map[string]int // member name -> fields index
	elem       ref            // SequenceOf, SetOf
	extensible bool
	byValue    map[int64]string // Enumerated ordinal -> name
	byName     map[string]int64 // Enumerated name -> ordinal
	// Declared size range, kept for sibling backends. The JSON mapping does
	// not consult it.
	sizeMin int64
	sizeMax int64
	sized   bool
}

// tree is the arena holding every node compiled in one pass. Nodes address
// each other by index, never by pointer: alloc may grow the backing slice,
// so pointers into it are only taken transiently.
type tree struct {
	nodes []node
}

// alloc reserves a slot and returns its ref. The slot stays KindInvalid until
// the compiler fills it, which is what lets a recursive reference observe a
// stable ref before the body exists.
func (t *tree) alloc() ref {
	t.nodes = append(t.nodes, node{kind: KindInvalid})
	return ref(len(t.nodes) - 1)
}

func (t *tree) at(r ref) *node { return &t.nodes[r] }

func (t *tree) len() int { return len(t.nodes) }
