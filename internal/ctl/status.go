package ctl

import (
	"fmt"
	"strings"
	"time"
)

// StatusResponse mirrors the JSON returned by GET /api/status.
type StatusResponse struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Sessions      int    `json:"sessions"`
	TicksSent     uint64 `json:"ticks_sent"`
}

// Status fetches the server status and prints a formatted summary.
func Status(baseURL string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	var s StatusResponse
	if err := getJSON(baseURL, "/api/status", &s); err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(s)
	}

	uptime := formatDuration(time.Duration(s.UptimeSeconds) * time.Second)

	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, header("  TICKSCOPE SERVER STATUS"))
	fmt.Fprintln(stdout, rule(38))
	fmt.Fprintf(stdout, "  %-12s %s\n", colorize(dim, "Server:"), s.Name)
	fmt.Fprintf(stdout, "  %-12s %s\n", colorize(dim, "Version:"), s.Version)
	fmt.Fprintf(stdout, "  %-12s %s\n", colorize(dim, "Uptime:"), uptime)
	fmt.Fprintf(stdout, "  %-12s %d\n", colorize(dim, "Viewers:"), s.Sessions)
	fmt.Fprintf(stdout, "  %-12s %d\n", colorize(dim, "Ticks sent:"), s.TicksSent)
	fmt.Fprintf(stdout, "  %-12s %s\n", colorize(dim, "Host:"), baseURL)
	fmt.Fprintln(stdout)

	return nil
}
