package app

import (
	"encoding/json"
	"net/http"
	"time"
)

// Status is the body of GET /api/status.
type Status struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Sessions      int    `json:"sessions"`
	TicksSent     uint64 `json:"ticks_sent"`
}

func (a *App) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (a *App) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, Status{
		Name:          "tickscope",
		Version:       Version,
		UptimeSeconds: int64(time.Since(a.startedAt).Seconds()),
		Sessions:      a.wsHub.Sessions(),
		TicksSent:     a.wsHub.TicksSent(),
	})
}

func (a *App) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{
		"version":    Version,
		"go_version": GoVersion,
		"built_at":   BuiltAt,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
