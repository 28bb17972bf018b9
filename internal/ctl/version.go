package ctl

import (
	"fmt"
	"strings"
)

// Build-time variables set via -ldflags.
var (
	Version   = "dev"
	GoVersion = "unknown"
)

// serverVersion mirrors the /api/version payload.
type serverVersion struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	BuiltAt   string `json:"built_at"`
}

// VersionInfo prints the CLI build next to the server's, and warns when the
// two differ since the wire protocol is only tested between matching builds.
func VersionInfo(baseURL string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	var server serverVersion
	serverErr := getJSON(baseURL, "/api/version", &server)
	match := serverErr == nil && server.Version == Version

	if jsonOutput {
		resp := map[string]any{
			"cli": map[string]any{
				"version":    Version,
				"go_version": GoVersion,
			},
		}
		if serverErr != nil {
			resp["server_error"] = serverErr.Error()
		} else {
			resp["server"] = server
			resp["match"] = match
		}
		return printJSON(resp)
	}

	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, header("  TICKSCOPE VERSION"))
	fmt.Fprintln(stdout, rule(38))
	fmt.Fprintf(stdout, "  %-12s %s (%s)\n", colorize(dim, "CLI:"), Version, GoVersion)
	switch {
	case serverErr != nil:
		fmt.Fprintf(stdout, "  %-12s %s\n", colorize(dim, "Server:"), colorize(red, "unreachable: "+serverErr.Error()))
	case match:
		fmt.Fprintf(stdout, "  %-12s %s (%s)\n", colorize(dim, "Server:"), server.Version, server.GoVersion)
		fmt.Fprintf(stdout, "  %-12s %s\n", colorize(dim, "Built:"), server.BuiltAt)
	default:
		fmt.Fprintf(stdout, "  %-12s %s (%s) %s\n", colorize(dim, "Server:"), server.Version, server.GoVersion, colorize(yellow, "differs from CLI"))
		fmt.Fprintf(stdout, "  %-12s %s\n", colorize(dim, "Built:"), server.BuiltAt)
	}
	fmt.Fprintln(stdout)

	return nil
}
