package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// DecodeError reports a message that is not a well-formed envelope. The
// caller is expected to log it and drop the message.
type DecodeError struct {
	Payload string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %q: %v", clip(e.Payload, 64), e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// UnknownCommandError is returned by DecodeCommand for a well-formed message
// whose type is not a known command.
type UnknownCommandError struct {
	Type string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q", e.Type)
}

// FieldError is returned by DecodeCommand when a known command carries a
// field of the wrong shape.
type FieldError struct {
	Command CommandType
	Field   string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: invalid field %q", e.Command, e.Field)
}

// ErrMissingType is wrapped by a DecodeError for a JSON object that lacks a
// non-empty string "type".
var ErrMissingType = errors.New("missing type discriminator")

var (
	errTickTimestamp = errors.New("tick without numeric timestamp")
	errTickValue     = errors.New("tick without numeric value")
)

type envelope struct {
	Type *string `json:"type"`
}

// readType extracts the type discriminator, rejecting anything that is not
// a JSON object with a non-empty string "type".
func readType(text string) (string, error) {
	var env envelope
	if err := json.Unmarshal([]byte(text), &env); err != nil {
		return "", &DecodeError{Payload: text, Err: err}
	}
	if env.Type == nil || *env.Type == "" {
		return "", &DecodeError{Payload: text, Err: ErrMissingType}
	}
	return *env.Type, nil
}

// Encode renders a command as wire text.
func Encode(cmd Command) (string, error) {
	var v any
	switch c := cmd.(type) {
	case SetInterval:
		v = struct {
			Type CommandType `json:"type"`
			SetInterval
		}{CommandSetInterval, c}
	case SetSeries:
		v = struct {
			Type CommandType `json:"type"`
			SetSeries
		}{CommandSetSeries, c}
	case Ping:
		v = struct {
			Type CommandType `json:"type"`
		}{CommandPing}
	default:
		return "", fmt.Errorf("encode: unsupported command %T", cmd)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", cmd.CommandType(), err)
	}
	return string(b), nil
}

// Decode parses wire text from the server. Malformed input yields a
// *DecodeError; an unrecognized type yields Unknown and no error.
func Decode(text string) (Event, error) {
	typ, err := readType(text)
	if err != nil {
		return nil, err
	}

	switch EventType(typ) {
	case EventTick:
		var w struct {
			Series    string   `json:"series"`
			Timestamp *float64 `json:"timestamp"`
			Value     *float64 `json:"value"`
		}
		if err := json.Unmarshal([]byte(text), &w); err != nil {
			return nil, &DecodeError{Payload: text, Err: err}
		}
		if w.Timestamp == nil {
			return nil, &DecodeError{Payload: text, Err: errTickTimestamp}
		}
		if w.Value == nil {
			return nil, &DecodeError{Payload: text, Err: errTickValue}
		}
		return Tick{Series: w.Series, Timestamp: *w.Timestamp, Value: *w.Value}, nil

	case EventAck:
		fields := map[string]any{}
		if err := json.Unmarshal([]byte(text), &fields); err != nil {
			return nil, &DecodeError{Payload: text, Err: err}
		}
		delete(fields, "type")
		return Ack{Fields: fields}, nil

	case EventError:
		var e Error
		if err := json.Unmarshal([]byte(text), &e); err != nil {
			return nil, &DecodeError{Payload: text, Err: err}
		}
		return e, nil

	case EventPong:
		var p Pong
		// The timestamp is informational; a pong with an odd "t" is still a pong.
		_ = json.Unmarshal([]byte(text), &p)
		return p, nil

	default:
		return Unknown{Type: typ}, nil
	}
}

// EncodeEvent renders a server event as wire text.
func EncodeEvent(ev Event) (string, error) {
	var v any
	switch e := ev.(type) {
	case Tick:
		v = struct {
			Type EventType `json:"type"`
			Tick
		}{EventTick, e}
	case Ack:
		m := make(map[string]any, len(e.Fields)+1)
		for k, val := range e.Fields {
			m[k] = val
		}
		m["type"] = EventAck
		v = m
	case Error:
		v = struct {
			Type EventType `json:"type"`
			Error
		}{EventError, e}
	case Pong:
		v = struct {
			Type EventType `json:"type"`
			Pong
		}{EventPong, e}
	default:
		return "", fmt.Errorf("encode: unsupported event %T", ev)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", ev.EventType(), err)
	}
	return string(b), nil
}

// DecodeCommand parses wire text from a viewer.
func DecodeCommand(text string) (Command, error) {
	typ, err := readType(text)
	if err != nil {
		return nil, err
	}

	switch CommandType(typ) {
	case CommandSetInterval:
		var w struct {
			Ms *float64 `json:"ms"`
		}
		if err := json.Unmarshal([]byte(text), &w); err != nil || w.Ms == nil || !isInteger(*w.Ms) {
			return nil, &FieldError{Command: CommandSetInterval, Field: "ms"}
		}
		return SetInterval{Ms: int(*w.Ms)}, nil

	case CommandSetSeries:
		var w struct {
			Name *string `json:"name"`
		}
		if err := json.Unmarshal([]byte(text), &w); err != nil || w.Name == nil {
			return nil, &FieldError{Command: CommandSetSeries, Field: "name"}
		}
		return SetSeries{Name: *w.Name}, nil

	case CommandPing:
		return Ping{}, nil

	default:
		return nil, &UnknownCommandError{Type: typ}
	}
}

// isInteger reports whether f is a whole number small enough to fit an int
// on every platform.
func isInteger(f float64) bool {
	return f == math.Trunc(f) && math.Abs(f) <= math.MaxInt32
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
