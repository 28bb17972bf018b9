// Package conn owns the viewer's connection lifecycle: a single transport to
// the tick server, the retry loop that re-establishes it, and the heartbeat
// that keeps it alive. The lifecycle is a pure state machine (Transition)
// driven by a Manager that performs the resulting effects.
package conn

// State is the lifecycle state of the viewer's connection.
type State int

const (
	Idle State = iota
	Connecting
	Open
	Closing
	WaitingToRetry
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Connecting:
		return "CONNECTING"
	case Open:
		return "OPEN"
	case Closing:
		return "CLOSING"
	case WaitingToRetry:
		return "WAITING_TO_RETRY"
	default:
		return "UNKNOWN"
	}
}

// Status is the text/color pair shown to the user for a state. Color is a
// plain color name; UIs map it onto their own palette.
type Status struct {
	State State
	Text  string
	Color string
}

// StatusOf returns the user-facing status for s.
func StatusOf(s State) Status {
	switch s {
	case Connecting:
		return Status{State: s, Text: "connecting", Color: "yellow"}
	case Open:
		return Status{State: s, Text: "connected", Color: "green"}
	case Closing:
		return Status{State: s, Text: "error, reconnecting", Color: "red"}
	case WaitingToRetry:
		return Status{State: s, Text: "disconnected, reconnecting", Color: "orange"}
	default:
		return Status{State: s, Text: "idle", Color: "gray"}
	}
}

// Input is something that happened to the connection.
type Input int

const (
	InputConnect Input = iota
	InputOpened
	InputMessage
	InputError
	InputClosed
	InputRetryElapsed
	InputHeartbeat
	InputPongTimeout
	InputShutdown
)

func (in Input) String() string {
	switch in {
	case InputConnect:
		return "connect"
	case InputOpened:
		return "opened"
	case InputMessage:
		return "message"
	case InputError:
		return "error"
	case InputClosed:
		return "closed"
	case InputRetryElapsed:
		return "retry_elapsed"
	case InputHeartbeat:
		return "heartbeat"
	case InputPongTimeout:
		return "pong_timeout"
	case InputShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Effect is work the Manager performs after a transition, in order.
type Effect int

const (
	// EffectDial starts a new transport.
	EffectDial Effect = iota
	// EffectCloseTransport actively closes the transport; the Manager then
	// feeds InputClosed back into the machine.
	EffectCloseTransport
	// EffectReleaseTransport drops a transport that is already gone.
	EffectReleaseTransport
	EffectScheduleRetry
	EffectCancelRetry
	EffectStartHeartbeat
	EffectStopHeartbeat
	EffectSendPing
	// EffectResync asks the handler to resend its pending configuration.
	EffectResync
	// EffectDispatch hands the received message to the handler.
	EffectDispatch
)

func (e Effect) String() string {
	switch e {
	case EffectDial:
		return "dial"
	case EffectCloseTransport:
		return "close_transport"
	case EffectReleaseTransport:
		return "release_transport"
	case EffectScheduleRetry:
		return "schedule_retry"
	case EffectCancelRetry:
		return "cancel_retry"
	case EffectStartHeartbeat:
		return "start_heartbeat"
	case EffectStopHeartbeat:
		return "stop_heartbeat"
	case EffectSendPing:
		return "send_ping"
	case EffectResync:
		return "resync"
	case EffectDispatch:
		return "dispatch"
	default:
		return "unknown"
	}
}

// Transition returns the state that follows s on input in, and the effects
// to perform. Pairs not listed leave the state unchanged with no effects:
// connecting while already connecting is a no-op, and a second close while
// waiting to retry schedules nothing.
func Transition(s State, in Input) (State, []Effect) {
	if in == InputShutdown {
		if s == Idle {
			return Idle, nil
		}
		return Idle, []Effect{EffectStopHeartbeat, EffectCancelRetry, EffectReleaseTransport}
	}

	switch s {
	case Idle:
		if in == InputConnect {
			return Connecting, []Effect{EffectDial}
		}

	case Connecting:
		switch in {
		case InputOpened:
			return Open, []Effect{EffectStartHeartbeat, EffectResync}
		case InputError, InputClosed:
			return WaitingToRetry, []Effect{EffectReleaseTransport, EffectScheduleRetry}
		}

	case Open:
		switch in {
		case InputMessage:
			return Open, []Effect{EffectDispatch}
		case InputHeartbeat:
			return Open, []Effect{EffectSendPing}
		case InputError, InputPongTimeout:
			return Closing, []Effect{EffectStopHeartbeat, EffectCloseTransport}
		case InputClosed:
			return WaitingToRetry, []Effect{EffectStopHeartbeat, EffectReleaseTransport, EffectScheduleRetry}
		}

	case Closing:
		if in == InputClosed {
			return WaitingToRetry, []Effect{EffectScheduleRetry}
		}

	case WaitingToRetry:
		switch in {
		case InputRetryElapsed:
			return Connecting, []Effect{EffectDial}
		case InputConnect:
			return Connecting, []Effect{EffectCancelRetry, EffectDial}
		}
	}
	return s, nil
}
