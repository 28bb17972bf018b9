package codec

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Tick(t *testing.T) {
	ev, err := Decode(`{"type":"tick","series":"x","timestamp":1,"value":2}`)
	require.NoError(t, err)
	assert.Equal(t, Tick{Series: "x", Timestamp: 1, Value: 2}, ev)
	assert.Equal(t, EventTick, ev.EventType())
}

func TestDecode_TickWithoutSeries(t *testing.T) {
	ev, err := Decode(`{"type":"tick","timestamp":1700000000000,"value":42.5}`)
	require.NoError(t, err)
	assert.Equal(t, Tick{Timestamp: 1700000000000, Value: 42.5}, ev)
}

func TestDecode_Malformed(t *testing.T) {
	cases := map[string]string{
		"not json":          `not json`,
		"empty":             ``,
		"array":             `[1,2]`,
		"null":              `null`,
		"no type":           `{"series":"x"}`,
		"empty type":        `{"type":""}`,
		"numeric type":      `{"type":5}`,
		"tick no timestamp": `{"type":"tick","series":"x","value":2}`,
		"tick no value":     `{"type":"tick","series":"x","timestamp":1}`,
		"tick string value": `{"type":"tick","series":"x","timestamp":1,"value":"2"}`,
		"tick bad series":   `{"type":"tick","series":7,"timestamp":1,"value":2}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			ev, err := Decode(payload)
			assert.Nil(t, ev)
			var de *DecodeError
			require.True(t, errors.As(err, &de), "want *DecodeError, got %v", err)
			assert.Equal(t, payload, de.Payload)
		})
	}
}

func TestDecode_UnknownTypeIsNotAnError(t *testing.T) {
	ev, err := Decode(`{"type":"bogus"}`)
	require.NoError(t, err)
	assert.Equal(t, Unknown{Type: "bogus"}, ev)
	assert.Equal(t, EventType("bogus"), ev.EventType())
}

func TestDecode_AckKeepsEchoFields(t *testing.T) {
	ev, err := Decode(`{"type":"ack","action":"set_interval","ms":500}`)
	require.NoError(t, err)
	ack, ok := ev.(Ack)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"action": "set_interval", "ms": float64(500)}, ack.Fields)
}

func TestDecode_ErrorAndPong(t *testing.T) {
	ev, err := Decode(`{"type":"error","message":"invalid series name"}`)
	require.NoError(t, err)
	assert.Equal(t, Error{Message: "invalid series name"}, ev)

	ev, err = Decode(`{"type":"pong","t":1700000000000}`)
	require.NoError(t, err)
	assert.Equal(t, Pong{T: 1700000000000}, ev)

	ev, err = Decode(`{"type":"pong"}`)
	require.NoError(t, err)
	assert.Equal(t, Pong{}, ev)
}

func TestEncode_Commands(t *testing.T) {
	cases := []struct {
		cmd  Command
		want map[string]any
	}{
		{SetInterval{Ms: 250}, map[string]any{"type": "set_interval", "ms": float64(250)}},
		{SetSeries{Name: "cpu"}, map[string]any{"type": "set_series", "name": "cpu"}},
		{Ping{}, map[string]any{"type": "ping"}},
	}
	for _, tc := range cases {
		t.Run(string(tc.cmd.CommandType()), func(t *testing.T) {
			text, err := Encode(tc.cmd)
			require.NoError(t, err)
			var got map[string]any
			require.NoError(t, json.Unmarshal([]byte(text), &got))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEncodeEvent_DecodesBack(t *testing.T) {
	events := []Event{
		Tick{Series: "random", Timestamp: 1700000000123, Value: 12.34},
		Error{Message: "unknown command"},
		Pong{T: 99},
		Ack{Fields: map[string]any{"action": "set_series", "name": "cpu"}},
	}
	for _, ev := range events {
		t.Run(string(ev.EventType()), func(t *testing.T) {
			text, err := EncodeEvent(ev)
			require.NoError(t, err)
			got, err := Decode(text)
			require.NoError(t, err)
			assert.Equal(t, ev, got)
		})
	}
}

func TestEncodeEvent_Unsupported(t *testing.T) {
	_, err := EncodeEvent(Unknown{Type: "bogus"})
	assert.Error(t, err)
}

func TestDecodeCommand(t *testing.T) {
	cmd, err := DecodeCommand(`{"type":"set_interval","ms":500}`)
	require.NoError(t, err)
	assert.Equal(t, SetInterval{Ms: 500}, cmd)

	cmd, err = DecodeCommand(`{"type":"set_series","name":"cpu"}`)
	require.NoError(t, err)
	assert.Equal(t, SetSeries{Name: "cpu"}, cmd)

	cmd, err = DecodeCommand(`{"type":"ping"}`)
	require.NoError(t, err)
	assert.Equal(t, Ping{}, cmd)
}

func TestDecodeCommand_Errors(t *testing.T) {
	_, err := DecodeCommand(`{nope`)
	var de *DecodeError
	assert.True(t, errors.As(err, &de))

	_, err = DecodeCommand(`{"type":"reboot"}`)
	var ue *UnknownCommandError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "reboot", ue.Type)

	for _, payload := range []string{
		`{"type":"set_interval"}`,
		`{"type":"set_interval","ms":12.5}`,
		`{"type":"set_interval","ms":"100"}`,
		`{"type":"set_interval","ms":1e20}`,
	} {
		_, err = DecodeCommand(payload)
		var fe *FieldError
		require.True(t, errors.As(err, &fe), payload)
		assert.Equal(t, CommandSetInterval, fe.Command)
	}

	_, err = DecodeCommand(`{"type":"set_series","name":3}`)
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "name", fe.Field)
}
