// Package server wires the HTTP surface: thin handlers over the stream
// aggregator and the media proxy, plus the embeddable player page.
package server

import (
	"fmt"
	"net/http"

	"github.com/alvarorichard/anirelay/internal/config"
	"github.com/alvarorichard/anirelay/internal/provider"
	"github.com/alvarorichard/anirelay/internal/proxy"
	"github.com/alvarorichard/anirelay/internal/stream"
	"github.com/alvarorichard/anirelay/internal/util"
)

// Server owns the routing table and the listen loop.
type Server struct {
	cfg        config.Config
	aggregator *stream.Aggregator
	proxy      *proxy.Handler
	servers    provider.ServerLister
	mux        *http.ServeMux
}

// New assembles the routing table. Handlers hold no business logic: they
// parse input, call the aggregator or proxy, and serialize output.
func New(cfg config.Config, aggregator *stream.Aggregator, proxyHandler *proxy.Handler, servers provider.ServerLister) *Server {
	s := &Server{
		cfg:        cfg,
		aggregator: aggregator,
		proxy:      proxyHandler,
		servers:    servers,
		mux:        http.NewServeMux(),
	}

	s.mux.Handle("GET /proxy", proxyHandler)
	s.mux.HandleFunc("GET /api/stream", s.handleEpisodeStream)
	s.mux.HandleFunc("GET /api/servers", s.handleServerList)
	s.mux.HandleFunc("GET /api/stream/{type}/{tvId}/ep/{epid}", s.handleMultiServerEpisode)
	s.mux.HandleFunc("GET /api/stream/{type}/{tvId}", s.handleMultiServer)
	s.mux.HandleFunc("GET /embed", s.handleEmbed)
	s.mux.HandleFunc("GET /embed/{id}", s.handleEmbed)
	s.mux.HandleFunc("GET /health", s.handleHealth)

	return s
}

// Handler returns the full middleware-wrapped handler chain.
func (s *Server) Handler() http.Handler {
	return withLogging(withCORS(s.mux))
}

// Run binds the configured port unless managed-hosting mode is set, in which
// case the hosting platform owns the socket and we only expose the handler.
func (s *Server) Run() error {
	if s.cfg.Managed {
		util.Info("managed hosting mode, skipping listen")
		return nil
	}

	addr := fmt.Sprintf(":%d", s.cfg.Port)
	util.Info("listening", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}
