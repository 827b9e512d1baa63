package api

import (
	"errors"
	"os"
	"strings"
)

func (s *Server) registerRoutes() error {
	if s == nil || s.router == nil {
		return nil
	}

	api := s.router.Group("/api")
	apiKey := strings.TrimSpace(os.Getenv("SICHGATE_API_KEY"))
	if apiKey != "" {
		api.Use(apiKeyAuthMiddleware(apiKey))
	} else if strings.EqualFold(strings.TrimSpace(os.Getenv("SICHGATE_DISABLE_AUTH")), "true") {
		// Explicitly allow unauthenticated access.
	} else {
		return errors.New("api: missing auth configuration: set SICHGATE_API_KEY or set SICHGATE_DISABLE_AUTH=true")
	}

	api.GET("/health", s.handleHealth)

	api.GET("/scenarios", s.handleListScenarios)
	api.GET("/scenarios/:id", s.handleGetScenario)

	api.POST("/runs", s.handleStartRun)
	api.GET("/runs", s.handleListRuns)
	api.GET("/runs/:id", s.handleGetRun)
	api.GET("/runs/:id/results", s.handleGetRunResults)

	return nil
}
