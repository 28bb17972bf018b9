package conn

// CurrentEvent builds an event for the manager's live transport, as if its
// reader had posted it.
func CurrentEvent(m *Manager, in Input) Event {
	return Event{Input: in, seq: m.gen}
}

// StaleEvent builds an event from the transport generation before the live
// one.
func StaleEvent(m *Manager, in Input) Event {
	return Event{Input: in, seq: m.gen - 1}
}
