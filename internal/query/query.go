package query

import (
	"github.com/hearthctl/homie-core/internal/condition"
	"github.com/hearthctl/homie-core/internal/homie"
)

// PropertyQuery filters properties by their description attributes.
// Absent conditions match everything.
type PropertyQuery struct {
	ID       *condition.Condition[condition.String] `yaml:"id"`
	Name     *condition.Condition[condition.String] `yaml:"name"`
	Datatype *condition.Condition[condition.String] `yaml:"datatype"`
	Format   *condition.Condition[condition.String] `yaml:"format"`
	Settable *condition.Condition[condition.Bool]   `yaml:"settable"`
	Retained *condition.Condition[condition.Bool]   `yaml:"retained"`
	Unit     *condition.Condition[condition.String] `yaml:"unit"`
}

// MatchQuery reports whether a property matches every specified condition,
// short-circuiting on the first failure. A format condition never matches a
// property with an empty format.
func (q *PropertyQuery) MatchQuery(id homie.ID, desc *homie.PropertyDescription) bool {
	if q.ID != nil && !q.ID.Evaluate(condition.String(id)) {
		return false
	}
	if q.Name != nil && !q.Name.EvaluateOption(optString(desc.Name)) {
		return false
	}
	if q.Datatype != nil && !q.Datatype.Evaluate(condition.String(desc.Datatype)) {
		return false
	}
	if q.Format != nil {
		if desc.Format == "" {
			return false
		}
		if !q.Format.Evaluate(condition.String(desc.Format)) {
			return false
		}
	}
	if q.Settable != nil && !q.Settable.Evaluate(condition.Bool(desc.Settable)) {
		return false
	}
	if q.Retained != nil && !q.Retained.Evaluate(condition.Bool(desc.Retained)) {
		return false
	}
	if q.Unit != nil && !q.Unit.EvaluateOption(optString(desc.Unit)) {
		return false
	}
	return true
}

// NodeQuery filters nodes by id, name and type.
type NodeQuery struct {
	ID   *condition.Condition[condition.String] `yaml:"id"`
	Name *condition.Condition[condition.String] `yaml:"name"`
	Type *condition.Condition[condition.String] `yaml:"type"`
}

// MatchQuery reports whether a node matches every specified condition.
func (q *NodeQuery) MatchQuery(id homie.ID, desc *homie.NodeDescription) bool {
	if q.ID != nil && !q.ID.Evaluate(condition.String(id)) {
		return false
	}
	if q.Name != nil && !q.Name.EvaluateOption(optString(desc.Name)) {
		return false
	}
	if q.Type != nil && !q.Type.EvaluateOption(optString(desc.Type)) {
		return false
	}
	return true
}

// DeviceQuery filters devices by description-level attributes, including
// the hierarchy fields (root, parent, children) and extensions.
type DeviceQuery struct {
	ID         *condition.Condition[condition.String]           `yaml:"id"`
	Name       *condition.Condition[condition.String]           `yaml:"name"`
	Version    *condition.Condition[condition.Int]              `yaml:"version"`
	Homie      *condition.Condition[condition.String]           `yaml:"homie"`
	Children   *condition.Condition[condition.Vector[homie.ID]] `yaml:"children"`
	Root       *condition.Condition[condition.String]           `yaml:"root"`
	Parent     *condition.Condition[condition.String]           `yaml:"parent"`
	Extensions *condition.Condition[condition.Vector[string]]   `yaml:"extensions"`
}

// MatchQuery reports whether a device matches every specified condition.
func (q *DeviceQuery) MatchQuery(id homie.ID, desc *homie.DeviceDescription) bool {
	if q.ID != nil && !q.ID.Evaluate(condition.String(id)) {
		return false
	}
	if q.Name != nil && !q.Name.EvaluateOption(optString(desc.Name)) {
		return false
	}
	if q.Root != nil && !q.Root.EvaluateOption(optID(desc.Root)) {
		return false
	}
	if q.Homie != nil && !q.Homie.Evaluate(condition.String(desc.Homie)) {
		return false
	}
	if q.Parent != nil && !q.Parent.EvaluateOption(optID(desc.Parent)) {
		return false
	}
	if q.Version != nil && !q.Version.Evaluate(condition.Int(desc.Version)) {
		return false
	}
	if q.Children != nil && !q.Children.Evaluate(condition.Vector[homie.ID](desc.Children)) {
		return false
	}
	if q.Extensions != nil && !q.Extensions.Evaluate(condition.Vector[string](desc.Extensions)) {
		return false
	}
	return true
}

// QueryDefinition composes independent optional conditions at domain,
// device, node and property granularity.
type QueryDefinition struct {
	Domain   *condition.Condition[condition.String] `yaml:"domain"`
	Device   *DeviceQuery                           `yaml:"device"`
	Node     *NodeQuery                             `yaml:"node"`
	Property *PropertyQuery                         `yaml:"property"`
}

// MatchQuery returns every property reference of the description that
// satisfies all active levels. The reserved wildcard domain in the query
// matches any domain.
func (q *QueryDefinition) MatchQuery(domain homie.Domain, id homie.ID, desc *homie.DeviceDescription) []homie.PropertyRef {
	var matched []homie.PropertyRef

	if !q.matchDomain(domain) {
		return nil
	}
	if q.Device != nil && !q.Device.MatchQuery(id, desc) {
		return nil
	}

	for nodeID, node := range desc.Nodes {
		if q.Node != nil && !q.Node.MatchQuery(nodeID, node) {
			continue
		}
		for propID := range node.Properties {
			if q.Property != nil && !q.Property.MatchQuery(propID, node.Properties[propID]) {
				continue
			}
			matched = append(matched, homie.NewPropertyRef(domain, id, nodeID, propID))
		}
	}

	return matched
}

func (q *QueryDefinition) matchDomain(domain homie.Domain) bool {
	if q.Domain == nil {
		return true
	}
	if v, ok := q.Domain.Value(); ok && homie.Domain(v).IsWildcard() {
		return true
	}
	return q.Domain.Evaluate(condition.String(domain))
}

func optString(s string) *condition.String {
	if s == "" {
		return nil
	}
	v := condition.String(s)
	return &v
}

func optID(id *homie.ID) *condition.String {
	if id == nil {
		return nil
	}
	v := condition.String(*id)
	return &v
}
