// Package statusapi exposes a small read-only HTTP surface over the
// pipeline's live state: liveness and the last published cumulative
// stats. It is adapted from the teacher's intent-engine API handlers
// (services/intent-engine/internal/api): same gin.H JSON-response
// convention, repurposed from a CRUD API to a read-only status endpoint.
//
// This is not the "command-line front end" spec.md excludes from the
// core — it ships disabled unless Config.StatusAddr is set, and it never
// accepts input that drives the pipeline.
package statusapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/netwatch/pcapsentry/pkg/netmodel"
)

// StatsSource is satisfied by *pkg/aggregate.Aggregator.
type StatsSource interface {
	Last() netmodel.NetworkStats
}

// Server is the optional status HTTP server.
type Server struct {
	http *http.Server
}

// New builds a gin engine serving GET /healthz and GET /stats on addr.
func New(addr string, workerCount int, source StatsSource) *Server {
	return &Server{http: &http.Server{Addr: addr, Handler: Handler(workerCount, source)}}
}

// Handler builds the gin engine on its own, without binding a port, so it
// can be exercised directly in tests with httptest.
func Handler(workerCount int, source StatsSource) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":       "ok",
			"worker_count": workerCount,
		})
	})

	engine.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, source.Last())
	})

	return engine
}

// Run starts serving and blocks until the server is shut down. It satisfies
// the same "logged, never fatal to the pipeline" discipline as the other
// optional components: callers are expected to run it in its own goroutine.
func (s *Server) Run() error {
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server, used during supervisor shutdown.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}
