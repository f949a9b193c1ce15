// Package web serves the coffee status page and its JSON twin.
package web

import (
	"context"
	"log"
	"net/http"

	"github.com/sweeney/coffee-button/internal/status"
)

// Server renders tracker snapshots over HTTP. Only GET is routed; every
// response is marked uncacheable because the page refreshes itself.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
}

// New routes the page and JSON endpoints for tracker on addr.
func New(addr string, tracker *status.Tracker) *Server {
	s := &Server{tracker: tracker}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /index.html", s.handlePage)
	mux.HandleFunc("GET /index.json", s.handleStatus)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: noStore(mux),
	}
	return s
}

// Handler exposes the routes, for httptest.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe blocks until Shutdown.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handlePage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderHTML(w, s.tracker.Snapshot()); err != nil {
		log.Printf("http: render page: %v", err)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(status.FormatJSON(s.tracker.Snapshot())); err != nil {
		log.Printf("http: write status: %v", err)
	}
}
