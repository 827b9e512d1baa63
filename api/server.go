// Package api exposes the assessment harness over HTTP: browsing the
// scenario catalog, launching runs and querying run history.
package api

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sichgate/sichgate/internal/config"
	"github.com/sichgate/sichgate/internal/model"
	"github.com/sichgate/sichgate/internal/store"
)

type Server struct {
	router  *gin.Engine
	store   store.Store
	adapter model.Adapter
	config  *config.Config
}

func NewServer(cfg *config.Config, st store.Store, adapter model.Adapter) (*Server, error) {
	r := gin.New()
	s := &Server{
		router:  r,
		store:   st,
		adapter: adapter,
		config:  cfg,
	}
	s.registerMiddleware()
	if err := s.registerRoutes(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) Run(addr string) error {
	if s == nil || s.router == nil {
		return errors.New("api: nil server")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		addr = ":8080"
	}
	return s.router.Run(addr)
}
