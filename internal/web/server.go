// Package web provides the HTTP view of the simulator display and a
// command surface that feeds the controller.
package web

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/sweeney/board-sim/internal/control"
	"github.com/sweeney/board-sim/internal/status"
)

// maxCommandBytes bounds the body read by POST /command.
const maxCommandBytes = 1024

// Server serves the display over HTTP.
type Server struct {
	httpServer *http.Server
	console    *status.Console
	requests   chan<- control.Request
}

// New creates a Server that reads the display from console and forwards
// commands to requests. A nil requests channel disables POST /command.
func New(addr string, console *status.Console, requests chan<- control.Request) *Server {
	s := &Server{console: console, requests: requests}

	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/index.html", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/index.json", s.handleJSON).Methods(http.MethodGet)
	r.HandleFunc("/command", s.handleCommand).Methods(http.MethodPost)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: handlers.RecoveryHandler()(handlers.LoggingHandler(log.Writer(), r)),
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap := s.console.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.console.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if s.requests == nil {
		http.Error(w, "commands disabled", http.StatusServiceUnavailable)
		return
	}

	line, err := readCommand(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	// Validate here so the caller gets a 400; the controller parses again.
	if _, err := control.Parse(line); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	select {
	case s.requests <- control.Request{Line: line}:
	default:
		http.Error(w, "command queue full", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusAccepted)
	io.WriteString(w, "accepted\n")
}

// readCommand returns the first line of the body, trimmed.
func readCommand(body io.Reader) (string, error) {
	sc := bufio.NewScanner(io.LimitReader(body, maxCommandBytes))
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", errors.New("empty command")
	}
	return strings.TrimSpace(sc.Text()), nil
}
