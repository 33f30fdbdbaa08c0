package homie

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML decodes a scalar config node into a typed Value, inferring
// the datatype from the YAML scalar tag. This is the form value mappings
// use in configuration files.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	switch node.Tag {
	case "!!int":
		var i int64
		if err := node.Decode(&i); err != nil {
			return err
		}
		*v = IntegerValue(i)
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return err
		}
		*v = FloatValue(f)
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		*v = BoolValue(b)
	case "!!str":
		*v = StringValue(node.Value)
	default:
		return fmt.Errorf("homie: unsupported value node tag %q", node.Tag)
	}
	return nil
}

// MarshalYAML renders the value back in its scalar form.
func (v Value) MarshalYAML() (any, error) {
	switch v.Type {
	case TypeInteger:
		return v.Int, nil
	case TypeFloat:
		return v.Float, nil
	case TypeBoolean:
		return v.Bool, nil
	default:
		return v.Str, nil
	}
}
