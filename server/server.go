// Package server serves a single live dashboard page over http and
// websocket, showing one cyber-system's training progress: episode counts,
// results, and its own diagnostic rendering of the current state.
package server

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"go.uber.org/zap"

	"cyberxp/server/fastview"
	"cyberxp/server/views"
)

// Server serves the dashboard to any number of browser tabs, each getting
// its own websocket fed from the same underlying snapshot stream.
type Server struct {
	addr    string
	initial views.Snapshot
	root    *rootView
	log     *zap.SugaredLogger
}

// NewServer builds the dashboard's views over snapshots and returns a
// server ready to Serve on addr.
func NewServer(ctx context.Context, addr string, initial views.Snapshot, snapshots <-chan views.Snapshot, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Server{
		addr:    addr,
		initial: initial,
		root:    newRootView(ctx, snapshots),
		log:     log,
	}
}

// Serve blocks, handling the dashboard's index page and websocket endpoint
// until the listener fails.
func (s *Server) Serve() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.serveIndex)
	mux.HandleFunc("/ws", s.serveWebsocket)

	s.log.Infow("dashboard listening", "addr", s.addr)
	if err := http.ListenAndServe(s.addr, mux); err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	if err := renderTemplate(w, s.root, s.initial); err != nil {
		s.log.Errorw("render index failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	cli, err := fastview.NewClient[[]fastview.EleUpdate](s.root.Updates(), w, r)
	if err != nil {
		s.log.Errorw("websocket upgrade failed", "error", err)
		return
	}
	if err := cli.Sync(); err != nil {
		s.log.Debugw("websocket client disconnected", "error", err)
	}
}

func renderTemplate(w io.Writer, rv *rootView, data views.Snapshot) error {
	t := template.New("index.html")
	name, err := rv.Parse(t)
	if err != nil {
		return err
	}
	if _, err := t.Parse(`{{ template "` + name + `" . }}`); err != nil {
		return err
	}
	return t.Execute(w, data)
}
