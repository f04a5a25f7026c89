// Package server exposes the pipeline over HTTP for `autoshow serve`.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ajcwebdev/autoshow-sub002/internal/apperr"
	"github.com/ajcwebdev/autoshow-sub002/internal/config"
	"github.com/ajcwebdev/autoshow-sub002/internal/utils"
	"github.com/ajcwebdev/autoshow-sub002/internal/workflow"
)

// Runner processes one request.
type Runner func(ctx context.Context, opts config.ProcessingOptions) (*workflow.BatchResult, error)

// PipelineRunner builds a Pipeline per request.
func PipelineRunner(settings config.Settings, deps workflow.Deps) Runner {
	return func(ctx context.Context, opts config.ProcessingOptions) (*workflow.BatchResult, error) {
		p, err := workflow.New(ctx, opts, settings, deps)
		if err != nil {
			return nil, err
		}
		return p.Run(ctx)
	}
}

// Server represents the API server
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	run        Runner

	// mu serializes processing; the pipeline is sequential by contract.
	mu sync.Mutex
}

// New creates the server and registers its routes.
func New(addr string, run Runner) *Server {
	router := gin.New()
	router.Use(requestID(), requestLogging(), gin.Recovery())

	s := &Server{
		router: router,
		run:    run,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	router.GET("/health", s.health)
	router.POST("/process", s.process)
	return s
}

// Router returns the Gin router (useful for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		utils.LogSuccess("Listening on %s", utils.Highlight(s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	utils.LogInfo("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) process(c *gin.Context) {
	var opts config.ProcessingOptions
	if err := c.ShouldBindJSON(&opts); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.run(c.Request.Context(), opts)
	if err != nil {
		var ve *utils.ValidationError
		status := http.StatusInternalServerError
		if errors.As(err, &ve) {
			status = http.StatusBadRequest
		}
		body := gin.H{"error": err.Error(), "runScoped": apperr.IsRunScoped(err)}
		if result != nil {
			body["result"] = result
		}
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, result)
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func requestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if c.Request.URL.Path == "/health" {
			return
		}
		utils.LogVerbose("%s %s %d %s [%s]", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start), c.GetString("request_id"))
	}
}
