// Package mapping implements ordered conditional value transforms.
//
// A Mapping pairs an optional from-condition with a to-value; a MappingList
// evaluates its mappings in declaration order, first match wins. MappingIO
// composes an input list and an independent output list for round-trip
// translation, e.g. wire representation to domain representation and back.
//
// Lists are scanned linearly; expected sizes are small (config-defined),
// so no index structure is kept.
package mapping

import "github.com/hearthctl/homie-core/internal/condition"

// Mapping transforms a FROM value into a fixed TO value when its condition
// holds. A mapping without a condition matches unconditionally.
type Mapping[F condition.Matcher[F], T any] struct {
	From *condition.Condition[F] `yaml:"from"`
	To   T                       `yaml:"to"`
}

// MapTo returns the mapped value when the condition is absent or holds for
// v. ok is false when the mapping does not apply; the caller keeps the
// original value in that case.
func (m Mapping[F, T]) MapTo(v F) (to T, ok bool) {
	if m.From == nil || m.From.Evaluate(v) {
		return m.To, true
	}
	var zero T
	return zero, false
}

// MappingList is an ordered list of mappings, evaluated first-match-wins.
type MappingList[F condition.Matcher[F], T any] []Mapping[F, T]

// MapTo returns the first applicable mapping's value, or ok=false when no
// mapping applies.
func (l MappingList[F, T]) MapTo(v F) (to T, ok bool) {
	for _, m := range l {
		if to, ok := m.MapTo(v); ok {
			return to, true
		}
	}
	var zero T
	return zero, false
}

// MapToOr returns the first applicable mapping's value, falling back to
// fallback when no mapping applies.
func (l MappingList[F, T]) MapToOr(v F, fallback T) T {
	if to, ok := l.MapTo(v); ok {
		return to
	}
	return fallback
}

// MappingIO composes two independent mapping lists for bidirectional value
// translation between an inner (IN) and an outer (OUT) representation.
type MappingIO[IN condition.Matcher[IN], OUT condition.Matcher[OUT]] struct {
	Input  MappingList[OUT, IN] `yaml:"input"`
	Output MappingList[IN, OUT] `yaml:"output"`
}

// MapInput translates an outer value inward.
func (io MappingIO[IN, OUT]) MapInput(v OUT) (IN, bool) {
	return io.Input.MapTo(v)
}

// MapOutput translates an inner value outward.
func (io MappingIO[IN, OUT]) MapOutput(v IN) (OUT, bool) {
	return io.Output.MapTo(v)
}
