package asn1

// SizeConstraint is one entry of a descriptor's SIZE constraint list: a fixed
// length, a bounded range, or an extension marker entry ("SIZE(1..4, ...)").
// Exactly one of Fixed or Min/Max is set unless Extension is true.
type SizeConstraint struct {
	Fixed     *Bound
	Min       *Bound
	Max       *Bound
	Extension bool
}

// Bound is a constraint endpoint: a literal count, or a reference to a named
// INTEGER value in the owning module when Name is non-empty.
type Bound struct {
	Value int64
	Name  string
}

func (b *Bound) resolve(module string, m *Module) (int64, error) {
	if b.Name == "" {
		return b.Value, nil
	}
	if m != nil {
		if v, ok := m.Values[b.Name]; ok {
			return v, nil
		}
	}
	return 0, &UnresolvedValueError{Name: b.Name, Module: module}
}

// SizeRange extracts the numeric size constraint of a descriptor, resolving
// named bounds against the given module's value assignments. The first
// non-extension entry decides the range. ok is false when the descriptor
// carries no size constraint; max is -1 for an unbounded upper end
// ("SIZE(0..MAX)").
func SizeRange(t *Type, module string, m *Module) (min, max int64, ok bool, err error) {
	for i := range t.Size {
		sc := &t.Size[i]
		if sc.Extension {
			continue
		}
		if sc.Fixed != nil {
			v, err := sc.Fixed.resolve(module, m)
			if err != nil {
				return 0, 0, false, err
			}
			return v, v, true, nil
		}
		min = 0
		if sc.Min != nil {
			if min, err = sc.Min.resolve(module, m); err != nil {
				return 0, 0, false, err
			}
		}
		max = -1
		if sc.Max != nil {
			if max, err = sc.Max.resolve(module, m); err != nil {
				return 0, 0, false, err
			}
		}
		return min, max, true, nil
	}
	return 0, 0, false, nil
}
