package condition

import (
	"fmt"
	"reflect"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Condition matches a single value: a bare literal, an operator condition or
// a regex pattern. The zero Condition matches nothing; conditions are
// normally constructed declaratively from YAML or via the constructors.
type Condition[T Matcher[T]] struct {
	literal *T
	op      *OperatorCondition[T]
	pattern *regexp.Regexp
}

// OperatorCondition pairs an operator with an optional operand set.
type OperatorCondition[T Matcher[T]] struct {
	Operator Operator
	Operand  *Set[T]
}

// Literal builds a condition matching v by value equality.
func Literal[T Matcher[T]](v T) Condition[T] {
	return Condition[T]{literal: &v}
}

// WithOperator builds an operator condition.
func WithOperator[T Matcher[T]](op Operator, operand *Set[T]) Condition[T] {
	return Condition[T]{op: &OperatorCondition[T]{Operator: op, Operand: operand}}
}

// WithPattern builds a regex pattern condition. The pattern is compiled
// eagerly so evaluation cannot fail later.
func WithPattern[T Matcher[T]](pattern string) (Condition[T], error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Condition[T]{}, fmt.Errorf("condition: compiling pattern: %w", err)
	}
	return Condition[T]{pattern: re}, nil
}

// Evaluate reports whether the condition holds for v.
func (c Condition[T]) Evaluate(v T) bool {
	switch {
	case c.literal != nil:
		return v.MatchesLiteral(*c.literal)
	case c.op != nil:
		return v.Matches(c.op.Operator, c.op.Operand)
	case c.pattern != nil:
		s, ok := v.MatchString()
		return ok && c.pattern.MatchString(s)
	}
	return false
}

// EvaluateOption evaluates the condition over an optional value.
//
// IsEmpty and Exists test presence independent of any operand; MatchAlways
// holds either way. Every other form requires a present value.
func (c Condition[T]) EvaluateOption(v *T) bool {
	if c.op != nil {
		switch c.op.Operator {
		case OpIsEmpty:
			return v == nil
		case OpExists:
			return v != nil
		case OpMatchAlways:
			return true
		}
	}
	if v == nil {
		return false
	}
	return c.Evaluate(*v)
}

// Value returns the condition's single operand value, when it has one:
// the literal itself, or a single-operand operator value. Pattern and
// multi-operand conditions have none.
func (c Condition[T]) Value() (T, bool) {
	switch {
	case c.literal != nil:
		return *c.literal, true
	case c.op != nil:
		return c.op.Operand.Value()
	}
	var zero T
	return zero, false
}

// UnmarshalYAML decodes the three condition forms:
//
//	<literal>
//	{operator: <op>, value: <operand or operand list>}
//	{pattern: <regex>}
func (c *Condition[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.MappingNode {
		keys := mappingKeys(node)
		if keys["pattern"] && len(keys) == 1 {
			var raw struct {
				Pattern string `yaml:"pattern"`
			}
			if err := node.Decode(&raw); err != nil {
				return err
			}
			cond, err := WithPattern[T](raw.Pattern)
			if err != nil {
				return err
			}
			*c = cond
			return nil
		}
		if keys["operator"] {
			var raw struct {
				Operator Operator  `yaml:"operator"`
				Value    yaml.Node `yaml:"value"`
			}
			if err := node.Decode(&raw); err != nil {
				return err
			}
			var valueNode *yaml.Node
			if !raw.Value.IsZero() {
				valueNode = &raw.Value
			}
			operand, err := decodeSet[T](valueNode)
			if err != nil {
				return err
			}
			*c = WithOperator(raw.Operator, operand)
			return nil
		}
	}

	var literal T
	if err := node.Decode(&literal); err != nil {
		return err
	}
	*c = Literal(literal)
	return nil
}

// decodeSet decodes an operand node into a Set. A sequence node is a
// multi-value set, except when T itself is list-valued and the sequence's
// elements are scalars: then the whole sequence is one single operand.
func decodeSet[T Matcher[T]](node *yaml.Node) (*Set[T], error) {
	if node == nil {
		return nil, nil
	}
	vectorOperand := reflect.TypeOf((*T)(nil)).Elem().Kind() == reflect.Slice

	if node.Kind == yaml.SequenceNode {
		if !vectorOperand || allSequences(node) {
			values := make([]T, 0, len(node.Content))
			for _, item := range node.Content {
				var v T
				if err := item.Decode(&v); err != nil {
					return nil, err
				}
				values = append(values, v)
			}
			return MultiSet(values...), nil
		}
	}

	var v T
	if err := node.Decode(&v); err != nil {
		return nil, err
	}
	return SingleSet(v), nil
}

func allSequences(node *yaml.Node) bool {
	if len(node.Content) == 0 {
		return false
	}
	for _, item := range node.Content {
		if item.Kind != yaml.SequenceNode {
			return false
		}
	}
	return true
}

func mappingKeys(node *yaml.Node) map[string]bool {
	keys := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keys[node.Content[i].Value] = true
	}
	return keys
}
