// Package app wires together the HTTP server and the tick hub. It owns the
// daemon's lifecycle and serves the health and status endpoints.
package app

import (
	"context"
	"io"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/large-farva/tickscope/internal/config"
	"github.com/large-farva/tickscope/internal/ws"
)

// Options holds everything the App needs from the caller.
type Options struct {
	Logger *log.Logger
	Cfg    config.Config
	Bind   string
}

// App is the top-level daemon process. It manages the HTTP server and the
// WebSocket hub that streams ticks to viewers.
type App struct {
	log    *log.Logger
	cfg    config.Config
	bind   string
	server *http.Server

	startedAt time.Time

	wsHub *ws.Hub
}

// New creates an App. Call Run to start serving.
func New(opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	return &App{
		log:       opts.Logger,
		cfg:       opts.Cfg,
		bind:      opts.Bind,
		startedAt: time.Now(),
		wsHub: ws.NewHub(ws.Options{
			Logger:     opts.Logger,
			IntervalMs: opts.Cfg.Server.IntervalMs,
			Series:     opts.Cfg.Server.Series,
		}),
	}
}

// Handler returns the daemon's routes.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", a.handleHealthz)
	mux.HandleFunc("/api/status", a.handleStatus)
	mux.HandleFunc("/api/version", a.handleVersion)
	mux.Handle("/ws", a.wsHub.Handler())
	return mux
}

// Run listens on the configured address and serves until the context is
// cancelled or the server returns an error.
func (a *App) Run(ctx context.Context) error {
	bind := a.bind
	if bind == "" && a.cfg.Server.Bind != "" {
		bind = a.cfg.Server.Bind
	}
	if bind == "" {
		bind = "0.0.0.0:8080"
	}

	ln, err := net.Listen("tcp", bind)
	if err != nil {
		return err
	}
	return a.Serve(ctx, ln)
}

// Serve starts the hub and the HTTP server on ln. It blocks until the
// context is cancelled or the server returns an error.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	a.server = &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	a.log.Printf("listening on http://%s", ln.Addr())

	go a.wsHub.Run(ctx)

	go func() {
		<-ctx.Done()
		a.log.Printf("shutdown requested")
		_ = a.server.Shutdown(context.Background())
	}()

	return a.server.Serve(ln)
}
