package homie

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DataType is a property's declared Homie datatype.
type DataType string

const (
	TypeInteger  DataType = "integer"
	TypeFloat    DataType = "float"
	TypeBoolean  DataType = "boolean"
	TypeString   DataType = "string"
	TypeEnum     DataType = "enum"
	TypeColor    DataType = "color"
	TypeDatetime DataType = "datetime"
	TypeDuration DataType = "duration"
	TypeJSON     DataType = "json"
)

// AllDataTypes returns every valid property datatype.
func AllDataTypes() []DataType {
	return []DataType{
		TypeInteger, TypeFloat, TypeBoolean, TypeString, TypeEnum,
		TypeColor, TypeDatetime, TypeDuration, TypeJSON,
	}
}

// ErrMalformedValue is returned when a raw payload cannot be parsed against
// the property's declared datatype. The discovery engine absorbs this error
// and drops the message (best-effort policy, see engine docs).
var ErrMalformedValue = errors.New("homie: malformed value")

// Value is a typed property value.
//
// Value is a comparable value type: two Values are deep-equal exactly when
// they compare equal with ==. The active representation depends on Type:
// Int for integer and duration (nanoseconds), Float for float, Bool for
// boolean and Str for everything string-shaped (string, enum, color,
// datetime in canonical RFC3339 form, raw JSON).
type Value struct {
	Type  DataType
	Str   string
	Int   int64
	Float float64
	Bool  bool
}

// IntegerValue returns an integer Value.
func IntegerValue(v int64) Value { return Value{Type: TypeInteger, Int: v} }

// FloatValue returns a float Value.
func FloatValue(v float64) Value { return Value{Type: TypeFloat, Float: v} }

// BoolValue returns a boolean Value.
func BoolValue(v bool) Value { return Value{Type: TypeBoolean, Bool: v} }

// StringValue returns a string Value.
func StringValue(v string) Value { return Value{Type: TypeString, Str: v} }

// EnumValue returns an enum Value.
func EnumValue(v string) Value { return Value{Type: TypeEnum, Str: v} }

// DatetimeValue returns a datetime Value in canonical UTC RFC3339 form.
func DatetimeValue(t time.Time) Value {
	return Value{Type: TypeDatetime, Str: t.UTC().Format(time.RFC3339)}
}

// DurationValue returns a duration Value. The nanosecond count is kept in
// Int; Str holds the canonical ISO 8601 rendering.
func DurationValue(d time.Duration) Value {
	return Value{Type: TypeDuration, Int: int64(d), Str: formatISODuration(d)}
}

// ParseValue parses a raw wire payload against the property description's
// datatype and format. It returns ErrMalformedValue (wrapped) when the
// payload does not conform.
func ParseValue(raw string, desc *PropertyDescription) (Value, error) {
	switch desc.Datatype {
	case TypeInteger:
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: integer %q", ErrMalformedValue, raw)
		}
		return IntegerValue(i), nil

	case TypeFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: float %q", ErrMalformedValue, raw)
		}
		return FloatValue(f), nil

	case TypeBoolean:
		// The convention allows exactly "true" and "false".
		switch raw {
		case "true":
			return BoolValue(true), nil
		case "false":
			return BoolValue(false), nil
		}
		return Value{}, fmt.Errorf("%w: boolean %q", ErrMalformedValue, raw)

	case TypeString:
		return StringValue(raw), nil

	case TypeEnum:
		for _, allowed := range desc.EnumValues() {
			if raw == allowed {
				return EnumValue(raw), nil
			}
		}
		return Value{}, fmt.Errorf("%w: enum %q not in format %q", ErrMalformedValue, raw, desc.Format)

	case TypeColor:
		normalized, err := parseColor(raw)
		if err != nil {
			return Value{}, err
		}
		return Value{Type: TypeColor, Str: normalized}, nil

	case TypeDatetime:
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return Value{}, fmt.Errorf("%w: datetime %q", ErrMalformedValue, raw)
		}
		return DatetimeValue(t), nil

	case TypeDuration:
		d, err := parseISODuration(raw)
		if err != nil {
			return Value{}, err
		}
		return DurationValue(d), nil

	case TypeJSON:
		if !json.Valid([]byte(raw)) {
			return Value{}, fmt.Errorf("%w: invalid json payload", ErrMalformedValue)
		}
		return Value{Type: TypeJSON, Str: raw}, nil
	}

	return Value{}, fmt.Errorf("%w: unknown datatype %q", ErrMalformedValue, desc.Datatype)
}

// Equal reports deep value equality.
func (v Value) Equal(other Value) bool { return v == other }

// Compare orders two values of the same scalar type. ok is false when the
// pair has no defined ordering (differing types, or types without order
// such as json).
func (v Value) Compare(other Value) (cmp int, ok bool) {
	if v.Type != other.Type {
		return 0, false
	}
	switch v.Type {
	case TypeInteger, TypeDuration:
		return compareOrdered(v.Int, other.Int), true
	case TypeFloat:
		return compareOrdered(v.Float, other.Float), true
	case TypeString, TypeEnum, TypeDatetime:
		return strings.Compare(v.Str, other.Str), true
	case TypeBoolean:
		return compareBool(v.Bool, other.Bool), true
	default:
		return 0, false
	}
}

// MatchString returns the string projection used for pattern matching.
// Only string and enum values project.
func (v Value) MatchString() (string, bool) {
	switch v.Type {
	case TypeString, TypeEnum:
		return v.Str, true
	default:
		return "", false
	}
}

// String renders the value in its wire representation.
func (v Value) String() string {
	switch v.Type {
	case TypeInteger:
		return strconv.FormatInt(v.Int, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case TypeBoolean:
		return strconv.FormatBool(v.Bool)
	case TypeDuration:
		return v.Str
	default:
		return v.Str
	}
}

// Float64 returns a numeric view of the value for telemetry sinks.
// ok is false for non-numeric types.
func (v Value) Float64() (val float64, ok bool) {
	switch v.Type {
	case TypeInteger:
		return float64(v.Int), true
	case TypeFloat:
		return v.Float, true
	case TypeBoolean:
		if v.Bool {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func compareOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// parseColor validates the three Homie color spaces: "rgb,r,g,b",
// "hsv,h,s,v" and "xyz,x,y". Components must be numeric; range checks are
// left to the consumer because formats can restrict the space further.
func parseColor(raw string) (string, error) {
	parts := strings.Split(raw, ",")
	var want int
	switch parts[0] {
	case "rgb", "hsv":
		want = 4
	case "xyz":
		want = 3
	default:
		return "", fmt.Errorf("%w: color space %q", ErrMalformedValue, parts[0])
	}
	if len(parts) != want {
		return "", fmt.Errorf("%w: color %q", ErrMalformedValue, raw)
	}
	for _, comp := range parts[1:] {
		if _, err := strconv.ParseFloat(strings.TrimSpace(comp), 64); err != nil {
			return "", fmt.Errorf("%w: color component %q", ErrMalformedValue, comp)
		}
	}
	return raw, nil
}

// parseISODuration parses the ISO 8601 duration subset the convention uses:
// PT[nH][nM][nS] with an optional fractional seconds part.
func parseISODuration(raw string) (time.Duration, error) {
	rest, found := strings.CutPrefix(raw, "PT")
	if !found || rest == "" {
		return 0, fmt.Errorf("%w: duration %q", ErrMalformedValue, raw)
	}

	var total time.Duration
	seen := map[byte]bool{}
	num := strings.Builder{}
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		if (c >= '0' && c <= '9') || c == '.' {
			num.WriteByte(c)
			continue
		}
		if num.Len() == 0 || seen[c] {
			return 0, fmt.Errorf("%w: duration %q", ErrMalformedValue, raw)
		}
		n, err := strconv.ParseFloat(num.String(), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: duration %q", ErrMalformedValue, raw)
		}
		num.Reset()
		seen[c] = true
		switch c {
		case 'H':
			total += time.Duration(n * float64(time.Hour))
		case 'M':
			total += time.Duration(n * float64(time.Minute))
		case 'S':
			total += time.Duration(n * float64(time.Second))
		default:
			return 0, fmt.Errorf("%w: duration unit %q", ErrMalformedValue, string(c))
		}
	}
	if num.Len() != 0 {
		return 0, fmt.Errorf("%w: duration %q", ErrMalformedValue, raw)
	}
	return total, nil
}

// formatISODuration renders a duration as PTnHnMnS.
func formatISODuration(d time.Duration) string {
	if d == 0 {
		return "PT0S"
	}
	var b strings.Builder
	b.WriteString("PT")
	if h := d / time.Hour; h > 0 {
		fmt.Fprintf(&b, "%dH", h)
		d -= h * time.Hour
	}
	if m := d / time.Minute; m > 0 {
		fmt.Fprintf(&b, "%dM", m)
		d -= m * time.Minute
	}
	if d > 0 {
		secs := float64(d) / float64(time.Second)
		fmt.Fprintf(&b, "%sS", strconv.FormatFloat(secs, 'f', -1, 64))
	}
	return b.String()
}
