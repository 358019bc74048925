package sse

// Event names written on the stream.
const (
	// EventTypeConnected is sent once when a client connects.
	EventTypeConnected = "connected"

	// EventTypeMessage carries one broadcast item.
	EventTypeMessage = "message"

	// EventTypeLagged precedes a message when the client missed items.
	EventTypeLagged = "lagged"

	// EventTypeEnd is sent when the broadcast ends. The server closes the
	// stream afterwards.
	EventTypeEnd = "end"

	// EventTypeError is sent when the source ended with an error.
	EventTypeError = "error"
)

// ConnectedEvent is the payload of EventTypeConnected.
type ConnectedEvent struct {
	ClientID string            `json:"client_id"`
	Position uint64            `json:"position"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// LaggedEvent is the payload of EventTypeLagged.
type LaggedEvent struct {
	Skipped uint64 `json:"skipped"`
}

// EndEvent is the payload of EventTypeEnd.
type EndEvent struct {
	Position uint64 `json:"position"`
}
