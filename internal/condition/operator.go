package condition

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Operator is a comparison operator usable in an operator condition.
type Operator string

const (
	OpEqual          Operator = "="
	OpGreater        Operator = ">"
	OpLess           Operator = "<"
	OpGreaterOrEqual Operator = ">="
	OpLessOrEqual    Operator = "<="
	OpNotEqual       Operator = "<>"
	OpIncludesAny    Operator = "includesAny"
	OpIncludesNone   Operator = "includesNone"
	OpMatchAlways    Operator = "matchAlways"
	OpIsEmpty        Operator = "isEmpty"
	OpExists         Operator = "exists"
)

// ErrInvalidOperator is returned when an operator string is not recognised.
var ErrInvalidOperator = errors.New("condition: invalid operator")

// ParseOperator converts the config representation of an operator.
func ParseOperator(s string) (Operator, error) {
	switch Operator(s) {
	case OpEqual, OpGreater, OpLess, OpGreaterOrEqual, OpLessOrEqual,
		OpNotEqual, OpIncludesAny, OpIncludesNone, OpMatchAlways,
		OpIsEmpty, OpExists:
		return Operator(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOperator, s)
	}
}

// UnmarshalYAML decodes and validates an operator.
func (o *Operator) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	op, err := ParseOperator(s)
	if err != nil {
		return err
	}
	*o = op
	return nil
}
