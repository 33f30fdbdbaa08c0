package controller

import "github.com/hearthctl/homie-core/internal/homie"

// AlertUpdateKind classifies the outcome of storing an alert.
type AlertUpdateKind int

const (
	// AlertNoChange means a clear arrived for an alert id that was not set.
	AlertNoChange AlertUpdateKind = iota
	// AlertNew means a previously unknown alert id was set.
	AlertNew
	// AlertChanged means an active alert's message changed.
	AlertChanged
	// AlertCleared means an active alert was cleared by an empty payload.
	AlertCleared
	// AlertEqual means an active alert was re-published unchanged.
	AlertEqual
)

// AlertUpdate is the result of storing an alert payload.
type AlertUpdate struct {
	Kind AlertUpdateKind
	ID   homie.ID
	Old  string
	New  string
}

// AlertStore keeps a device's active alerts by alert id. An empty payload
// clears the id per the convention.
type AlertStore struct {
	alerts map[homie.ID]string
}

// NewAlertStore creates an empty alert store.
func NewAlertStore() *AlertStore {
	return &AlertStore{alerts: make(map[homie.ID]string)}
}

// StoreAlert applies an alert payload and reports what changed.
func (s *AlertStore) StoreAlert(id homie.ID, alert string) AlertUpdate {
	if alert == "" {
		old, ok := s.alerts[id]
		if !ok {
			return AlertUpdate{Kind: AlertNoChange, ID: id}
		}
		delete(s.alerts, id)
		return AlertUpdate{Kind: AlertCleared, ID: id, Old: old}
	}

	old, ok := s.alerts[id]
	if !ok {
		s.alerts[id] = alert
		return AlertUpdate{Kind: AlertNew, ID: id, New: alert}
	}
	if old == alert {
		return AlertUpdate{Kind: AlertEqual, ID: id, New: alert}
	}
	s.alerts[id] = alert
	return AlertUpdate{Kind: AlertChanged, ID: id, Old: old, New: alert}
}

// Get returns the active alert message for an id.
func (s *AlertStore) Get(id homie.ID) (string, bool) {
	alert, ok := s.alerts[id]
	return alert, ok
}

// Len returns the number of active alerts.
func (s *AlertStore) Len() int { return len(s.alerts) }

// All returns a snapshot of the active alerts.
func (s *AlertStore) All() map[homie.ID]string {
	out := make(map[homie.ID]string, len(s.alerts))
	for id, alert := range s.alerts {
		out[id] = alert
	}
	return out
}
