package homie

import "github.com/hearthctl/homie-core/internal/condition"

// Value implements condition.Matcher so protocol values can be used
// directly in conditions and value mappings. Ordering follows
// Value.Compare; only string and enum values have a regex projection.

// MatchesLiteral reports deep value equality.
func (v Value) MatchesLiteral(other Value) bool { return v == other }

// Matches evaluates the scalar operator table over protocol values.
func (v Value) Matches(op condition.Operator, operand *condition.Set[Value]) bool {
	return condition.ScalarMatches(v, Value.Compare, op, operand)
}
