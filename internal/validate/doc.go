// Package validate checks untyped request payloads against declarative
// per-field schemas.
//
// A Schema is an ordered list of fields. Each field says whether it is
// required, how to parse a raw string, and which value kinds it accepts. The
// accepted kinds form a closed set of constraint types (String, Number, Bool,
// Array, Null) carrying optional regex and exact-value restrictions.
package validate
