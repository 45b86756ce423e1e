package plist

// Value is one node in a property-list value tree. The variant set is
// closed: [String], [Array], [Dict], and [Ref] are the only implementations.
type Value interface {
	isValue()
}

// String is an arbitrary text value.
type String string

// Array is an ordered sequence of values.
type Array []Value

// Dict is a string-keyed mapping. Key order carries no meaning; the encoder
// sorts keys so that equal dicts produce identical output.
type Dict map[string]Value

// Ref is a reference to another record by identifier. It renders as a quoted
// identifier; resolution is the document consumer's concern.
type Ref string

func (String) isValue() {}
func (Array) isValue()  {}
func (Dict) isValue()   {}
func (Ref) isValue()    {}

// IsEmpty reports whether v is the empty value of its variant: the empty
// string, an array or dict with no entries, or a Ref with an empty
// identifier. A nil Value is empty. Producers use this to decide whether an
// optional field is omitted from a record.
func IsEmpty(v Value) bool {
	switch t := v.(type) {
	case nil:
		return true
	case String:
		return t == ""
	case Array:
		return len(t) == 0
	case Dict:
		return len(t) == 0
	case Ref:
		return t == ""
	}
	return false
}

// Strings converts a string slice to an Array of String values.
func Strings(ss []string) Array {
	a := make(Array, len(ss))
	for i, s := range ss {
		a[i] = String(s)
	}
	return a
}
