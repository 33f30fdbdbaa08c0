package query

import (
	"gopkg.in/yaml.v3"

	"github.com/hearthctl/homie-core/internal/homie"
)

// MaterializedQuery wraps a QueryDefinition together with the set of
// property references currently matching it.
//
// The set is maintained incrementally: callers feed it device additions,
// description changes and removals, and membership tests become O(1)
// lookups. Like the rest of the engine state it assumes a single writer.
type MaterializedQuery struct {
	query QueryDefinition
	refs  map[homie.PropertyRef]struct{}
}

// NewMaterializedQuery creates an empty materialized view over query.
func NewMaterializedQuery(query QueryDefinition) *MaterializedQuery {
	return &MaterializedQuery{
		query: query,
		refs:  make(map[homie.PropertyRef]struct{}),
	}
}

// AddMaterialized re-evaluates the query for a device and installs the
// fresh match set. Existing entries for the device id are purged first, so
// the call is idempotent and safe for description updates.
func (m *MaterializedQuery) AddMaterialized(domain homie.Domain, id homie.ID, desc *homie.DeviceDescription) {
	for ref := range m.refs {
		if ref.DeviceID == id {
			delete(m.refs, ref)
		}
	}
	for _, ref := range m.query.MatchQuery(domain, id, desc) {
		m.refs[ref] = struct{}{}
	}
}

// RemoveMaterialized removes exactly the entries the query currently
// produces for the device. If the query definition changed between add and
// remove, stale entries can remain; that is an accepted limitation.
func (m *MaterializedQuery) RemoveMaterialized(domain homie.Domain, id homie.ID, desc *homie.DeviceDescription) {
	for _, ref := range m.query.MatchQuery(domain, id, desc) {
		delete(m.refs, ref)
	}
}

// MatchQuery reports membership of a property reference in the view.
func (m *MaterializedQuery) MatchQuery(ref homie.PropertyRef) bool {
	_, ok := m.refs[ref]
	return ok
}

// Len returns the current match set size.
func (m *MaterializedQuery) Len() int { return len(m.refs) }

// Refs returns a snapshot of the current match set.
func (m *MaterializedQuery) Refs() []homie.PropertyRef {
	refs := make([]homie.PropertyRef, 0, len(m.refs))
	for ref := range m.refs {
		refs = append(refs, ref)
	}
	return refs
}

// UnmarshalYAML decodes a query definition and wraps it in an empty view.
func (m *MaterializedQuery) UnmarshalYAML(node *yaml.Node) error {
	var query QueryDefinition
	if err := node.Decode(&query); err != nil {
		return err
	}
	*m = *NewMaterializedQuery(query)
	return nil
}
