package ctl

import (
	"fmt"
	"strings"

	"github.com/large-farva/tickscope/internal/config"
)

// Config displays the effective configuration after defaults, the config
// file and command-line overrides have been applied.
func Config(cfg config.Config, jsonOutput bool) error {
	if jsonOutput {
		return printJSON(cfg)
	}

	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, header("  EFFECTIVE CONFIGURATION"))
	fmt.Fprintln(stdout, rule(50))

	section := func(name string) {
		fmt.Fprintf(stdout, "\n  %s\n", colorize(bold, "["+name+"]"))
	}
	field := func(key string, val any) {
		fmt.Fprintf(stdout, "    %-20s %v\n", colorize(dim, key+":"), val)
	}

	section("viewer")
	field("host", cfg.Viewer.Host)
	field("series", cfg.Viewer.Series)
	field("interval_ms", cfg.Viewer.IntervalMs)
	field("window_size", cfg.Viewer.WindowSize)
	field("retry_delay_ms", cfg.Viewer.RetryDelayMs)
	field("heartbeat_ms", cfg.Viewer.HeartbeatMs)
	pong := "disabled"
	if cfg.Viewer.PongTimeoutMs > 0 {
		pong = fmt.Sprintf("%d", cfg.Viewer.PongTimeoutMs)
	}
	field("pong_timeout_ms", pong)
	field("handshake_timeout_s", cfg.Viewer.HandshakeTimeoutS)

	section("server")
	field("bind", cfg.Server.Bind)
	field("interval_ms", cfg.Server.IntervalMs)
	field("series", cfg.Server.Series)

	section("logging")
	file := cfg.Logging.File
	if strings.TrimSpace(file) == "" {
		file = "(discarded)"
	}
	field("file", file)

	fmt.Fprintln(stdout)

	return nil
}
