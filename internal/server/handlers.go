package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	facterrors "factotum/internal/errors"
)

type taskRequest struct {
	Task string `json:"task" binding:"required"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleSubmitTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "request body must be JSON with a non-empty \"task\" field"})
		return
	}
	if strings.TrimSpace(req.Task) == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "task must not be blank"})
		return
	}

	// Admission control: concurrent tasks beyond the cap wait here rather
	// than piling onto the model API.
	if err := s.slots.Acquire(c.Request.Context(), 1); err != nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "server is shutting down"})
		return
	}
	defer s.slots.Release(1)

	resp, err := s.pipeline.Submit(c.Request.Context(), req.Task)
	if err != nil {
		s.writeTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// writeTaskError maps task-level failures to transport status codes. Entry
// failures never reach here; they ride inside a 200 response body.
func (s *Server) writeTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, facterrors.ErrNoActionableFunction):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case facterrors.IsResolverError(err):
		s.logger.Error("task rejected: %v", err)
		c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
	default:
		s.logger.Error("task failed: %v", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.startTime).Round(time.Second).String(),
	})
}

// bearerAuth rejects requests whose Authorization header does not carry the
// configured token.
func bearerAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		provided, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || provided != token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "missing or invalid bearer token"})
			return
		}
		c.Next()
	}
}
