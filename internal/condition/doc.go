// Package condition implements the generic value-matching DSL used by the
// query and mapping layers.
//
// A Condition is one of three forms:
//
//   - a bare literal, matched by value equality
//   - an operator condition ({operator, value}) over one operand or a set
//   - a regex pattern ({pattern}), applicable to string-projecting types
//
// The DSL is written once against the Matcher capability interface; the
// package ships implementations for the common scalar types (String, Int,
// Float, Bool) and a generic Vector for list-valued fields. Protocol value
// types implement Matcher themselves.
//
// Conditions deserialize from YAML, accepting all three forms:
//
//	datatype: integer
//	version: {operator: ">=", value: 2}
//	name: {pattern: "^temp.*"}
package condition
