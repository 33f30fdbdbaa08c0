package condition

// Matcher is the capability interface the DSL evaluates against.
//
// A type supports equality via MatchesLiteral, an optional string projection
// for regex patterns via MatchString, and the full operator table via
// Matches. Implementations normally delegate Matches to ScalarMatches or
// VectorMatches.
type Matcher[T any] interface {
	// MatchesLiteral reports value equality against other.
	MatchesLiteral(other T) bool

	// MatchString returns the string projection used for pattern matching.
	// ok is false for types without one; pattern conditions never match
	// such values.
	MatchString() (s string, ok bool)

	// Matches evaluates an operator against an optional operand set.
	Matches(op Operator, operand *Set[T]) bool
}

// Set is an operator condition's operand: either a single value or a
// multi-value set. Which operators accept which form is defined by the
// scalar and vector operator tables.
type Set[T any] struct {
	values []T
	single bool
}

// SingleSet wraps one operand value.
func SingleSet[T any](v T) *Set[T] {
	return &Set[T]{values: []T{v}, single: true}
}

// MultiSet wraps a multi-value operand set.
func MultiSet[T any](vs ...T) *Set[T] {
	return &Set[T]{values: vs}
}

// Value returns the operand when the set holds exactly one single value.
func (s *Set[T]) Value() (T, bool) {
	if s != nil && s.single && len(s.values) == 1 {
		return s.values[0], true
	}
	var zero T
	return zero, false
}

// Values returns the operand values regardless of form.
func (s *Set[T]) Values() []T {
	if s == nil {
		return nil
	}
	return s.values
}

// IsSingle reports whether the set holds a single operand.
func (s *Set[T]) IsSingle() bool { return s != nil && s.single }

// OrderFunc orders two values: negative, zero or positive like
// strings.Compare. ok is false when the pair is unordered.
type OrderFunc[T any] func(a, b T) (cmp int, ok bool)

// ScalarMatches implements the operator table for scalar types.
//
// Equality-family operators accept single or multi operands (multi degrades
// to set membership); ordering operators require a single operand and an
// order function, evaluating false otherwise. IsEmpty always evaluates false
// on a present value; Exists always true (optionality is handled by
// EvaluateOption before values reach this table).
func ScalarMatches[T Matcher[T]](v T, ord OrderFunc[T], op Operator, operand *Set[T]) bool {
	switch op {
	case OpEqual, OpIncludesAny:
		return containsLiteral(v, operand)

	case OpNotEqual, OpIncludesNone:
		if operand == nil {
			return false
		}
		return !containsLiteral(v, operand)

	case OpGreater, OpGreaterOrEqual, OpLess, OpLessOrEqual:
		single, ok := operand.Value()
		if !ok || ord == nil {
			return false
		}
		cmp, ok := ord(v, single)
		if !ok {
			return false
		}
		switch op {
		case OpGreater:
			return cmp > 0
		case OpGreaterOrEqual:
			return cmp >= 0
		case OpLess:
			return cmp < 0
		default:
			return cmp <= 0
		}

	case OpMatchAlways:
		return true
	case OpIsEmpty:
		return false
	case OpExists:
		return true
	}
	return false
}

func containsLiteral[T Matcher[T]](v T, operand *Set[T]) bool {
	if operand == nil {
		return false
	}
	for _, candidate := range operand.values {
		if v.MatchesLiteral(candidate) {
			return true
		}
	}
	return false
}

// VectorMatches implements the operator table for vector values.
//
// Equal tests same-length element containment against a single candidate
// list, or against any list of a multi operand. IncludesAny/IncludesNone
// test intersection/disjointness. NotEqual with no operand evaluates true.
// Ordering and pattern operators are undefined for vectors.
func VectorMatches[S ~[]T, T comparable](v S, op Operator, operand *Set[S]) bool {
	switch op {
	case OpEqual:
		if operand == nil {
			return false
		}
		if operand.single {
			return sameElements(v, operand.values[0])
		}
		for _, candidate := range operand.values {
			if sameElements(v, candidate) {
				return true
			}
		}
		return false

	case OpNotEqual:
		if operand == nil {
			return true
		}
		if operand.single {
			return !sameElements(v, operand.values[0])
		}
		for _, candidate := range operand.values {
			if sameElements(v, candidate) {
				return false
			}
		}
		return true

	case OpIncludesAny:
		for _, candidate := range operand.Values() {
			if intersects(v, candidate) {
				return true
			}
		}
		return false

	case OpIncludesNone:
		if operand == nil {
			return false
		}
		for _, candidate := range operand.values {
			if intersects(v, candidate) {
				return false
			}
		}
		return true

	case OpMatchAlways:
		return true
	}
	return false
}

// sameElements reports equal length and full containment, ignoring order.
func sameElements[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for _, v := range b {
		if !contains(a, v) {
			return false
		}
	}
	return true
}

func intersects[T comparable](a, b []T) bool {
	for _, v := range b {
		if contains(a, v) {
			return true
		}
	}
	return false
}

func contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
