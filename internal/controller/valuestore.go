package controller

import (
	"time"

	"github.com/hearthctl/homie-core/internal/homie"
)

// timeNow is swapped out in tests.
var timeNow = time.Now

// PropertyValueEntry holds the last known value and target of a property
// together with receive and change timestamps. Zero timestamps mean the
// side has never been seen.
type PropertyValueEntry struct {
	Value             *homie.Value
	ValueLastReceived time.Time
	ValueLastChanged  time.Time

	Target             *homie.Value
	TargetLastReceived time.Time
	TargetLastChanged  time.Time
}

// ValueUpdate is the result of storing a value or target.
type ValueUpdate struct {
	// Changed reports whether the stored side actually changed. A first
	// write always changes (Old is nil then).
	Changed bool
	Old     *homie.Value
	New     homie.Value

	LastReceived time.Time
	LastChanged  time.Time
}

// PropertyValueStore keeps the value entries of a single device, keyed by
// the device-local property pointer.
type PropertyValueStore struct {
	entries map[homie.PropertyPointer]*PropertyValueEntry
}

// NewPropertyValueStore creates an empty store.
func NewPropertyValueStore() *PropertyValueStore {
	return &PropertyValueStore{entries: make(map[homie.PropertyPointer]*PropertyValueEntry)}
}

// StoreValue records a received property value. The last-received timestamp
// advances on every call; the last-changed timestamp only advances when the
// value differs from the stored one.
func (s *PropertyValueStore) StoreValue(ptr homie.PropertyPointer, value homie.Value) ValueUpdate {
	now := timeNow()
	entry, ok := s.entries[ptr]
	if !ok {
		entry = &PropertyValueEntry{}
		s.entries[ptr] = entry
	}

	entry.ValueLastReceived = now
	if entry.Value != nil && entry.Value.Equal(value) {
		return ValueUpdate{
			New:          value,
			LastReceived: now,
			LastChanged:  entry.ValueLastChanged,
		}
	}

	old := entry.Value
	entry.Value = &value
	entry.ValueLastChanged = now
	return ValueUpdate{
		Changed:      true,
		Old:          old,
		New:          value,
		LastReceived: now,
		LastChanged:  now,
	}
}

// StoreTarget records a received property target, with the same timestamp
// semantics as StoreValue applied to the target side.
func (s *PropertyValueStore) StoreTarget(ptr homie.PropertyPointer, target homie.Value) ValueUpdate {
	now := timeNow()
	entry, ok := s.entries[ptr]
	if !ok {
		entry = &PropertyValueEntry{}
		s.entries[ptr] = entry
	}

	entry.TargetLastReceived = now
	if entry.Target != nil && entry.Target.Equal(target) {
		return ValueUpdate{
			New:          target,
			LastReceived: now,
			LastChanged:  entry.TargetLastChanged,
		}
	}

	old := entry.Target
	entry.Target = &target
	entry.TargetLastChanged = now
	return ValueUpdate{
		Changed:      true,
		Old:          old,
		New:          target,
		LastReceived: now,
		LastChanged:  now,
	}
}

// GetValueEntry returns the entry for a property pointer.
func (s *PropertyValueStore) GetValueEntry(ptr homie.PropertyPointer) (*PropertyValueEntry, bool) {
	entry, ok := s.entries[ptr]
	return entry, ok
}

// Contains reports whether the store holds an entry for the pointer.
func (s *PropertyValueStore) Contains(ptr homie.PropertyPointer) bool {
	_, ok := s.entries[ptr]
	return ok
}

// Count returns the number of tracked properties.
func (s *PropertyValueStore) Count() int { return len(s.entries) }
