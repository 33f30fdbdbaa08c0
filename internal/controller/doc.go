// Package controller implements the controller side of device discovery:
// in-memory device state, per-device property and alert stores, and the
// discovery engine that turns inbound protocol messages into store updates,
// subscription changes and actions for the application.
//
// # Ownership model
//
// The stores are plain maps with a single-writer ownership model: the event
// loop that feeds HandleEvent is the only writer, readers run on the same
// goroutine or receive snapshots. None of the types in this package do their
// own locking.
//
// # Event handling
//
// HandleEvent is the single entry point. It applies a parsed message to the
// device store, issues the subscription changes the message implies and
// returns at most one Action describing the externally visible effect.
// Transport errors surface to the caller; store mutations that already
// happened are not rolled back.
package controller
