package validate

import (
	"regexp"
)

// Kind is the runtime kind of a payload value.
type Kind int

// Value kinds, one per constraint type.
const (
	KindString Kind = iota + 1
	KindNumber
	KindBool
	KindArray
	KindNull
)

// String returns the lower-case kind name used in diagnostics.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindArray:
		return "array"
	case KindNull:
		return "null"
	default:
		return "unknown"
	}
}

// Constraint is one accepted value kind of a field. The set of implementations
// is closed: String, Number, Bool, Array and Null.
type Constraint interface {
	kind() Kind
}

// String accepts string values. When set, Regex must match and the value must
// be one of Exact.
type String struct {
	Regex *regexp.Regexp
	Exact []string
}

// Number accepts numeric values other than NaN. Regex is matched against the
// shortest decimal form of the number.
type Number struct {
	Regex *regexp.Regexp
	Exact []float64
}

// Bool accepts boolean values. Regex is matched against "true" or "false".
type Bool struct {
	Regex *regexp.Regexp
	Exact []bool
}

// Array accepts lists. Regex and Exact apply to the string form of every element.
type Array struct {
	Regex *regexp.Regexp
	Exact []string
}

// Null accepts an explicit null value.
type Null struct{}

func (String) kind() Kind { return KindString }
func (Number) kind() Kind { return KindNumber }
func (Bool) kind() Kind   { return KindBool }
func (Array) kind() Kind  { return KindArray }
func (Null) kind() Kind   { return KindNull }

// ParseFunc converts a raw string (path or query parameter) into a typed value.
type ParseFunc func(raw string) (any, error)

// Field describes one key of the payload.
type Field struct {
	// Name is the payload key; validated values are stored under the same key.
	Name string
	// Required makes an absent key a validation failure.
	Required bool
	// Parse, when set, converts string values before the type check.
	Parse ParseFunc
	// Types lists the accepted value kinds.
	Types []Constraint
}

// Schema is an ordered list of fields. Failures are reported in schema order.
type Schema []Field

// Names returns the field names in schema order.
func (s Schema) Names() []string {
	names := make([]string, 0, len(s))
	for _, f := range s {
		names = append(names, f.Name)
	}

	return names
}
