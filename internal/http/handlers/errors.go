package handlers

import (
	"errors"
	"net/http"

	"github.com/benisnotitdog/task-manager-api/internal/domain"
	"github.com/benisnotitdog/task-manager-api/internal/logger"
	"github.com/benisnotitdog/task-manager-api/internal/service"

	"github.com/gin-gonic/gin"
)

// respondError maps err to a status code and a {"error": ...} body. Only
// validation and conflict messages reach the client verbatim.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		logger.WithContext(c.Request.Context()).Error("request failed",
			"error", err,
			"method", c.Request.Method,
			"path", c.FullPath(),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}
