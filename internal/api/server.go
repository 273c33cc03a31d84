// Package api serves the tool catalogue over HTTP for the browser UI.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/job-research/internal/jobs"
	"github.com/spigell/job-research/internal/tools"
)

const (
	serviceName     = "job-research-api"
	shutdownTimeout = 10 * time.Second
)

// Caller runs a named tool.
type Caller interface {
	Call(ctx context.Context, name string, args map[string]any) (any, error)
}

type Server struct {
	engine    *gin.Engine
	caller    Caller
	catalogue []tools.Tool
	logger    *zap.Logger
}

func NewServer(caller Caller, catalogue []tools.Tool, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		engine:    gin.New(),
		caller:    caller,
		catalogue: catalogue,
		logger:    logger,
	}

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}

	s.engine.Use(gin.Recovery(), s.logRequests(), cors.New(config))

	s.engine.GET("/health", s.health)
	api := s.engine.Group("/api")
	{
		api.GET("/tools", s.listTools)
		api.POST("/tools/:name", s.callTool)
	}
	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http api listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down http api")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http: %w", err)
	}
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": serviceName})
}

func (s *Server) listTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": s.catalogue})
}

func (s *Server) callTool(c *gin.Context) {
	name := c.Param("name")

	args, err := readArgs(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body: " + err.Error()})
		return
	}

	result, err := s.caller.Call(c.Request.Context(), name, args)
	if err != nil {
		status := statusFor(err)
		message := err.Error()
		if errors.Is(err, tools.ErrUnknownTool) {
			message = "Unknown tool: " + name
		}
		if status == http.StatusInternalServerError {
			s.logger.Error("tool call failed", zap.String("tool", name), zap.Error(err))
		}
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusOK, result)
}

// readArgs decodes a JSON object body. An empty body means no arguments.
func readArgs(body io.Reader) (map[string]any, error) {
	if body == nil {
		return map[string]any{}, nil
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}

	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

func statusFor(err error) int {
	var validation *jobs.ValidationError
	switch {
	case errors.Is(err, tools.ErrUnknownTool), errors.Is(err, jobs.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &validation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
