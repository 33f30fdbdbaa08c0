package mapping

import (
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/hearthctl/homie-core/internal/condition"
	"github.com/hearthctl/homie-core/internal/homie"
)

func TestMappingUnconditional(t *testing.T) {
	m := Mapping[homie.Value, condition.String]{To: "on"}

	got, ok := m.MapTo(homie.BoolValue(true))
	if !ok || got != "on" {
		t.Fatalf("MapTo = (%q, %v), want (on, true)", got, ok)
	}
}

func TestMappingConditionGates(t *testing.T) {
	cond := condition.Literal(homie.BoolValue(true))
	m := Mapping[homie.Value, condition.String]{From: &cond, To: "on"}

	if got, ok := m.MapTo(homie.BoolValue(true)); !ok || got != "on" {
		t.Fatalf("matching value: MapTo = (%q, %v), want (on, true)", got, ok)
	}
	if _, ok := m.MapTo(homie.BoolValue(false)); ok {
		t.Fatal("non-matching value mapped")
	}
}

func TestMappingListFirstMatchWins(t *testing.T) {
	low := condition.WithOperator(condition.OpLess, condition.SingleSet(homie.IntegerValue(10)))
	high := condition.WithOperator(condition.OpGreaterOrEqual, condition.SingleSet(homie.IntegerValue(10)))
	catchAll := condition.WithOperator[homie.Value](condition.OpMatchAlways, nil)

	list := MappingList[homie.Value, condition.String]{
		{From: &low, To: "low"},
		{From: &high, To: "high"},
		{From: &catchAll, To: "never-reached"},
	}

	cases := []struct {
		in   homie.Value
		want condition.String
	}{
		{homie.IntegerValue(3), "low"},
		{homie.IntegerValue(10), "high"},
		{homie.IntegerValue(42), "high"},
	}
	for _, tc := range cases {
		got, ok := list.MapTo(tc.in)
		if !ok || got != tc.want {
			t.Errorf("MapTo(%s) = (%q, %v), want (%q, true)", tc.in, got, ok, tc.want)
		}
	}
}

func TestMappingListNoMatch(t *testing.T) {
	cond := condition.Literal(homie.StringValue("open"))
	list := MappingList[homie.Value, condition.Bool]{{From: &cond, To: true}}

	if _, ok := list.MapTo(homie.StringValue("closed")); ok {
		t.Fatal("unmatched value mapped")
	}
	if got := list.MapToOr(homie.StringValue("closed"), false); got != false {
		t.Fatalf("MapToOr fallback = %v, want false", got)
	}
}

func TestMappingIOYAML(t *testing.T) {
	src := `
input:
  - from: "ON"
    to: true
  - from: "OFF"
    to: false
output:
  - from: true
    to: "ON"
  - from: false
    to: "OFF"
`
	var io MappingIO[homie.Value, homie.Value]
	if err := yaml.Unmarshal([]byte(src), &io); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	in, ok := io.MapInput(homie.StringValue("ON"))
	if !ok || !in.Equal(homie.BoolValue(true)) {
		t.Fatalf("MapInput(ON) = (%v, %v), want (true, true)", in, ok)
	}
	out, ok := io.MapOutput(homie.BoolValue(false))
	if !ok || !out.Equal(homie.StringValue("OFF")) {
		t.Fatalf("MapOutput(false) = (%v, %v), want (OFF, true)", out, ok)
	}
	if _, ok := io.MapInput(homie.StringValue("TOGGLE")); ok {
		t.Fatal("unmapped input value mapped")
	}
}
