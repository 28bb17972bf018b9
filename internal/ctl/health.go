package ctl

import (
	"fmt"
	"net/http"
	"strings"
)

// Health checks server liveness via GET /healthz. When the server is up it
// also reads /api/status so the report shows whether anyone is watching.
func Health(baseURL string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	code, _, err := getRaw(baseURL, "/healthz")
	if err != nil {
		if jsonOutput {
			return printJSON(map[string]any{"healthy": false, "url": baseURL, "error": err.Error()})
		}
		return err
	}

	healthy := code == http.StatusOK
	var st StatusResponse
	var stErr error
	if healthy {
		stErr = getJSON(baseURL, "/api/status", &st)
	}

	if jsonOutput {
		report := map[string]any{"healthy": healthy, "url": baseURL}
		if healthy && stErr == nil {
			report["sessions"] = st.Sessions
			report["ticks_sent"] = st.TicksSent
		}
		return printJSON(report)
	}

	fmt.Fprintln(stdout)
	if !healthy {
		fmt.Fprintf(stdout, "  %s  tickscoped returned HTTP %d at %s\n", colorize(red, "UNHEALTHY"), code, colorize(dim, baseURL))
		fmt.Fprintln(stdout)
		return nil
	}
	fmt.Fprintf(stdout, "  %s  tickscoped is reachable at %s\n", colorize(green, "HEALTHY"), colorize(dim, baseURL))
	if stErr == nil {
		fmt.Fprintf(stdout, "           %d viewer(s), %d ticks sent\n", st.Sessions, st.TicksSent)
	}
	fmt.Fprintln(stdout)

	return nil
}
