// Package sse streams store changes to UI shells as Server-Sent Events.
package sse

import "time"

// EventType names an SSE event.
type EventType string

const (
	// EventConnected is the first event on every stream; its data is the
	// current view so the client can render without a separate fetch.
	EventConnected EventType = "connected"
	// EventStateChanged carries a fresh view after a store mutation.
	EventStateChanged EventType = "state.changed"
	// EventHeartbeat keeps idle connections open.
	EventHeartbeat EventType = "heartbeat"
)

// Event is one SSE message.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
}

// NewStateChangedEvent wraps a view.
func NewStateChangedEvent(view any) Event {
	return Event{Type: EventStateChanged, Data: view, Timestamp: time.Now()}
}

// NewConnectedEvent greets a client with its id and the current view.
func NewConnectedEvent(clientID string, view any) Event {
	return Event{
		Type:      EventConnected,
		Timestamp: time.Now(),
		Data: map[string]any{
			"clientId": clientID,
			"state":    view,
		},
	}
}

// NewHeartbeatEvent creates a keepalive event.
func NewHeartbeatEvent() Event {
	return Event{Type: EventHeartbeat, Timestamp: time.Now(), Data: struct{}{}}
}
