// Package codec defines the JSON messages exchanged between tickscoped and
// its viewers, and converts them to and from wire text. Every message is a
// single JSON object whose "type" field selects the variant.
package codec

// EventType identifies the kind of server-to-viewer event.
type EventType string

const (
	EventTick  EventType = "tick"
	EventAck   EventType = "ack"
	EventError EventType = "error"
	EventPong  EventType = "pong"
)

// Event is any message the server pushes to a viewer.
type Event interface {
	EventType() EventType
}

// Tick carries one sample of the currently streamed series. Timestamp is in
// epoch milliseconds.
type Tick struct {
	Series    string  `json:"series"`
	Timestamp float64 `json:"timestamp"`
	Value     float64 `json:"value"`
}

// Ack echoes an accepted command. Its fields are opaque to the viewer.
type Ack struct {
	Fields map[string]any
}

// Error is a non-fatal problem reported by the server.
type Error struct {
	Message string `json:"message"`
}

// Pong answers a Ping. T is the server clock in epoch milliseconds, when
// the server includes it.
type Pong struct {
	T int64 `json:"t,omitempty"`
}

// Unknown is any event whose type this build does not recognize. Decoding
// it is not an error so newer servers can add event types.
type Unknown struct {
	Type string
}

func (Tick) EventType() EventType      { return EventTick }
func (Ack) EventType() EventType       { return EventAck }
func (Error) EventType() EventType     { return EventError }
func (Pong) EventType() EventType      { return EventPong }
func (u Unknown) EventType() EventType { return EventType(u.Type) }
