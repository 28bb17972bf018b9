// Tickscope is the viewer for a running tickscoped. It charts the live
// stream in the terminal, prints it as text, or queries the server's status.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/large-farva/tickscope/internal/config"
	"github.com/large-farva/tickscope/internal/ctl"
)

func main() {
	var (
		host       = pflag.StringP("host", "H", "", "Server URL (e.g. http://192.168.8.1:8080; overrides viewer.host)")
		configPath = pflag.StringP("config", "c", "", "Path to config TOML")
		jsonOut    = pflag.Bool("json", false, "Output raw JSON instead of formatted text")
		logPath    = pflag.String("log", "", "Append viewer logs to this file (overrides logging.file)")
	)

	// Stop parsing global flags at the first non-flag argument (the command
	// name), so subcommand-specific flags like --interval are not rejected.
	pflag.CommandLine.SetInterspersed(false)
	pflag.Parse()

	if pflag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.LoadOptional(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	if *host != "" {
		cfg.Viewer.Host = *host
	}
	if *logPath != "" {
		cfg.Logging.File = *logPath
	}

	logger, closeLog, err := openLog(cfg.Logging.File)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := pflag.Arg(0)
	subArgs := pflag.Args()[1:]
	baseURL := cfg.Viewer.Host

	switch cmd {
	case "view":
		err = ctl.View(ctx, baseURL, ctl.ViewOptions{
			Viewer: cfg.Viewer,
			Logger: logger,
		})

	case "watch":
		opts := ctl.WatchOptions{Viewer: cfg.Viewer, Logger: logger, JSON: *jsonOut}
		watchFlags := pflag.NewFlagSet("watch", pflag.ContinueOnError)
		watchFlags.IntVar(&opts.IntervalMs, "interval", 0, "Ask the server for this tick interval in ms (50-10000)")
		watchFlags.StringVar(&opts.Series, "series", "", "Ask the server for this series name")
		if err := watchFlags.Parse(subArgs); err != nil {
			os.Exit(2)
		}
		err = ctl.Watch(ctx, baseURL, opts)

	case "status":
		err = ctl.Status(baseURL, *jsonOut)

	case "health":
		err = ctl.Health(baseURL, *jsonOut)

	case "version":
		err = ctl.VersionInfo(baseURL, *jsonOut)

	case "config":
		err = ctl.Config(cfg, *jsonOut)

	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		closeLog()
		os.Exit(1)
	}
}

// openLog returns a logger writing to path, or a discarding logger when path
// is empty. The viewer owns the terminal, so logs never go to stdout.
func openLog(path string) (*log.Logger, func(), error) {
	if path == "" {
		return log.New(io.Discard, "", 0), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return log.New(f, "tickscope ", log.LstdFlags|log.Lmicroseconds), func() { _ = f.Close() }, nil
}

func usage() {
	fmt.Print(`
  tickscope - live telemetry viewer for tickscoped

  USAGE
    tickscope [flags] <command> [command-flags]

  COMMANDS (live)
    view            Interactive chart with interval and series controls
    watch           Stream ticks and connection changes as text (Ctrl-C to stop)

  COMMANDS (query)
    status          Show server version, uptime, viewers and ticks sent
    health          Check server liveness
    version         Show CLI and server version information
    config          Show the effective configuration

  GLOBAL FLAGS
    -H, --host URL      Server base URL (default: http://127.0.0.1:8080)
    -c, --config PATH   Config TOML file
        --json          Output raw JSON instead of formatted text
        --log PATH      Append viewer logs to a file

  COMMAND FLAGS
    watch:
        --interval MS       Tick interval to request (50-10000)
        --series NAME       Series name to request (1-32 characters)

`)
}
