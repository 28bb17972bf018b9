package codec

// CommandType identifies the kind of viewer-to-server command.
type CommandType string

const (
	CommandSetInterval CommandType = "set_interval"
	CommandSetSeries   CommandType = "set_series"
	CommandPing        CommandType = "ping"
)

// Limits shared by the viewer's input validation and the server's command
// validation.
const (
	MinIntervalMs     = 50
	MaxIntervalMs     = 10000
	MaxSeriesNameLen  = 32
	DefaultIntervalMs = 1000
	DefaultSeries     = "random"
)

// Command is any message a viewer sends to the server.
type Command interface {
	CommandType() CommandType
}

// SetInterval asks the server to emit ticks every Ms milliseconds.
type SetInterval struct {
	Ms int `json:"ms"`
}

// SetSeries asks the server to switch the streamed series.
type SetSeries struct {
	Name string `json:"name"`
}

// Ping is the viewer's keepalive.
type Ping struct{}

func (SetInterval) CommandType() CommandType { return CommandSetInterval }
func (SetSeries) CommandType() CommandType   { return CommandSetSeries }
func (Ping) CommandType() CommandType        { return CommandPing }
