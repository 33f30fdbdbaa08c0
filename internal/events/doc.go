// Package events provides the timing primitives the controller event loop
// is built from: a debouncing sender that collapses bursts to their last
// event, a cancellable delayed sender for one-shot follow-ups, and a
// multiplexer that merges several event sources into one stream with
// timeout detection.
//
// All primitives are channel based and stop when their context is
// cancelled; none of them panic on late sends.
package events
