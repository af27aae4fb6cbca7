// Package server exposes the auth flows over HTTP.
package server

import (
	"net/http"

	"github.com/acmeid/accounts-api/auth"
	"github.com/acmeid/accounts-api/internal/config"
	"github.com/acmeid/accounts-api/token"
	"github.com/rs/zerolog"
)

type Server struct {
	mux    *http.ServeMux
	routes []string
	config *config.Config
	auth   *auth.Service
	codec  *token.Codec
	log    zerolog.Logger
}

// New wires the HTTP layer around the session issuer. The codec is shared
// with the auth service so the bearer middleware verifies exactly the
// tokens the service mints.
func New(cfg *config.Config, authService *auth.Service, codec *token.Codec, log zerolog.Logger) *Server {
	s := &Server{
		mux:    http.NewServeMux(),
		config: cfg,
		auth:   authService,
		codec:  codec,
		log:    log,
	}

	s.initRoutes()
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.config.Env != "DEV" {
		return
	}
	for _, route := range s.routes {
		s.log.Info().Str("route", route).Msg("registered")
	}
}
