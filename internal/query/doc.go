// Package query selects properties from device descriptions by structural
// predicates.
//
// A QueryDefinition composes optional sub-queries at domain, device, node
// and property granularity; matching descends device, node, property and
// returns every property reference satisfying all active levels. A
// MaterializedQuery keeps a query's match set up to date incrementally as
// devices are added and removed, turning per-message matching into a set
// membership test.
//
// Query definitions deserialize from YAML:
//
//	domain: homie
//	device:
//	  id: device-1
//	node:
//	  type: test-type
//	property:
//	  datatype: {operator: "=", value: [integer, float]}
package query
