package handlers

import (
	"github.com/benisnotitdog/task-manager-api/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Auth  *service.AuthService
	Tasks *service.TaskService
}

func NewHandler(auth *service.AuthService, tasks *service.TaskService) *Handler {
	return &Handler{
		Auth:  auth,
		Tasks: tasks,
	}
}

// getUserID извлекает user_id, который middleware.JWT кладёт как int64
func getUserID(c *gin.Context) (int64, bool) {
	uid, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	id, ok := uid.(int64)
	return id, ok && id > 0
}
