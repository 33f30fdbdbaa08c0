package homie

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DeviceDescription is the versioned metadata tree a device publishes on its
// $description topic.
//
// A description is treated as immutable once installed in the device store:
// a version change swaps the whole tree atomically, readers never observe a
// partially updated description.
type DeviceDescription struct {
	Homie      string                  `json:"homie"`
	Version    int64                   `json:"version"`
	Name       string                  `json:"name,omitempty"`
	Nodes      map[ID]*NodeDescription `json:"nodes,omitempty"`
	Root       *ID                     `json:"root,omitempty"`
	Parent     *ID                     `json:"parent,omitempty"`
	Children   []ID                    `json:"children,omitempty"`
	Extensions []string                `json:"extensions,omitempty"`
}

// NodeDescription declares a single node and its properties.
type NodeDescription struct {
	Name       string                      `json:"name,omitempty"`
	Type       string                      `json:"type,omitempty"`
	Properties map[ID]*PropertyDescription `json:"properties,omitempty"`
}

// PropertyDescription declares a single property.
type PropertyDescription struct {
	Name     string   `json:"name,omitempty"`
	Datatype DataType `json:"datatype"`
	Format   string   `json:"format,omitempty"`
	Settable bool     `json:"settable,omitempty"`
	Retained bool     `json:"retained"`
	Unit     string   `json:"unit,omitempty"`
}

// UnmarshalJSON applies the convention default retained=true when the
// attribute is absent.
func (p *PropertyDescription) UnmarshalJSON(data []byte) error {
	type alias PropertyDescription
	aux := struct {
		Retained *bool `json:"retained"`
		*alias
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Retained == nil {
		p.Retained = true
	} else {
		p.Retained = *aux.Retained
	}
	return nil
}

// EnumValues returns the allowed values of an enum property's format.
func (p *PropertyDescription) EnumValues() []string {
	if p.Format == "" {
		return nil
	}
	return strings.Split(p.Format, ",")
}

// ParseDescription decodes a $description JSON payload.
func ParseDescription(payload []byte) (*DeviceDescription, error) {
	var desc DeviceDescription
	if err := json.Unmarshal(payload, &desc); err != nil {
		return nil, fmt.Errorf("homie: parsing description: %w", err)
	}
	if desc.Version == 0 {
		return nil, fmt.Errorf("homie: description missing version")
	}
	return &desc, nil
}

// Property looks up a property description by its device-local pointer.
// Returns nil when the node or property is not declared.
func (d *DeviceDescription) Property(ptr PropertyPointer) *PropertyDescription {
	node, ok := d.Nodes[ptr.NodeID]
	if !ok {
		return nil
	}
	return node.Properties[ptr.PropertyID]
}

// HasChild reports whether the description lists id among its children.
func (d *DeviceDescription) HasChild(id ID) bool {
	for _, child := range d.Children {
		if child == id {
			return true
		}
	}
	return false
}

// PropertyCount returns the total number of declared properties.
func (d *DeviceDescription) PropertyCount() int {
	n := 0
	for _, node := range d.Nodes {
		n += len(node.Properties)
	}
	return n
}
