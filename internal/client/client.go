// Package client is the participant-side surface consumed by UI code:
// a single sendAction entry point, the caller's identity, and a
// state-changed callback fed with full snapshots.
//
// The host is just another participant whose messages skip the network:
// Local feeds the session inbox in-process, Remote writes to the one
// channel up to the host. Both paths present identical action shapes,
// so the router never special-cases the host.
package client

import "github.com/fortuna-game/fortuna-backend/internal/engine"

// Emitter is the narrow collaborator interface handed to the UI layer.
type Emitter interface {
	// SendAction fires one action at the authoritative router. Fire and
	// forget: the outcome is observed via the next snapshot, never as a
	// return value.
	SendAction(a engine.Action) error

	MyID() string

	// MyProfile resolves the caller's own seat in the current mirror;
	// false until the first snapshot lands.
	MyProfile() (engine.Player, bool)

	// State returns the current read-only mirror and its version.
	State() (engine.State, int)

	Close() error
}

// OnState is invoked after every mirror replacement with the fresh
// snapshot. Callbacks run on the pump goroutine and must not block.
type OnState func(engine.State)
