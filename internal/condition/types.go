package condition

import "strings"

// String is a string with full matcher capability: equality, lexical
// ordering and a regex projection.
type String string

func (s String) MatchesLiteral(other String) bool { return s == other }
func (s String) MatchString() (string, bool)      { return string(s), true }

func (s String) Matches(op Operator, operand *Set[String]) bool {
	return ScalarMatches(s, func(a, b String) (int, bool) {
		return strings.Compare(string(a), string(b)), true
	}, op, operand)
}

// Int is an ordered integer matcher.
type Int int64

func (i Int) MatchesLiteral(other Int) bool { return i == other }
func (Int) MatchString() (string, bool)     { return "", false }

func (i Int) Matches(op Operator, operand *Set[Int]) bool {
	return ScalarMatches(i, func(a, b Int) (int, bool) {
		switch {
		case a < b:
			return -1, true
		case a > b:
			return 1, true
		default:
			return 0, true
		}
	}, op, operand)
}

// Float is an ordered float matcher.
type Float float64

func (f Float) MatchesLiteral(other Float) bool { return f == other }
func (Float) MatchString() (string, bool)       { return "", false }

func (f Float) Matches(op Operator, operand *Set[Float]) bool {
	return ScalarMatches(f, func(a, b Float) (int, bool) {
		switch {
		case a < b:
			return -1, true
		case a > b:
			return 1, true
		default:
			return 0, true
		}
	}, op, operand)
}

// Bool is a boolean matcher. Ordering follows false < true.
type Bool bool

func (b Bool) MatchesLiteral(other Bool) bool { return b == other }
func (Bool) MatchString() (string, bool)      { return "", false }

func (b Bool) Matches(op Operator, operand *Set[Bool]) bool {
	return ScalarMatches(b, func(a, o Bool) (int, bool) {
		switch {
		case a == o:
			return 0, true
		case !bool(a):
			return -1, true
		default:
			return 1, true
		}
	}, op, operand)
}

// Vector is a list-valued matcher over comparable elements. Literal
// equality is order-sensitive; the operator table (Equal, IncludesAny,
// IncludesNone) treats the list as a multiset per VectorMatches.
type Vector[T comparable] []T

func (v Vector[T]) MatchesLiteral(other Vector[T]) bool {
	if len(v) != len(other) {
		return false
	}
	for i := range v {
		if v[i] != other[i] {
			return false
		}
	}
	return true
}

func (Vector[T]) MatchString() (string, bool) { return "", false }

func (v Vector[T]) Matches(op Operator, operand *Set[Vector[T]]) bool {
	return VectorMatches(v, op, operand)
}
