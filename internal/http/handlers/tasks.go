package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/benisnotitdog/task-manager-api/internal/domain"
	"github.com/benisnotitdog/task-manager-api/internal/service"

	"github.com/gin-gonic/gin"
)

type createTaskRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
}

type updateTaskRequest struct {
	Title       *string        `json:"title"`
	Description nullableString `json:"description"`
	Status      *string        `json:"status"`
}

// nullableString tells an absent field apart from an explicit null.
type nullableString struct {
	Set   bool
	Value *string
}

func (n *nullableString) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

func parseTaskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid task id")
		return 0, false
	}
	return id, true
}

func parsePage(c *gin.Context) (domain.Page, bool) {
	var page domain.Page
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(c, "invalid offset")
			return page, false
		}
		page.Offset = n
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > service.MaxPageLimit {
			badRequest(c, "invalid limit")
			return page, false
		}
		page.Limit = n
	}
	return page, true
}

// ListTasks returns the caller's tasks, optionally paged with ?offset=&limit=.
func (h *Handler) ListTasks(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		unauthorized(c)
		return
	}
	page, ok := parsePage(c)
	if !ok {
		return
	}

	tasks, err := h.Tasks.List(c.Request.Context(), userID, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *Handler) CreateTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "title is required")
		return
	}

	task, err := h.Tasks.Create(c.Request.Context(), userID, req.Title, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *Handler) GetTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		unauthorized(c)
		return
	}
	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	task, err := h.Tasks.Get(c.Request.Context(), userID, taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// UpdateTask applies a partial update; fields left out of the body are kept.
func (h *Handler) UpdateTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		unauthorized(c)
		return
	}
	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	patch := domain.TaskPatch{
		Title:            req.Title,
		Description:      req.Description.Value,
		ClearDescription: req.Description.Set && req.Description.Value == nil,
	}
	if req.Status != nil {
		status, err := domain.ParseTaskStatus(*req.Status)
		if err != nil {
			respondError(c, err)
			return
		}
		patch.Status = &status
	}

	task, err := h.Tasks.Update(c.Request.Context(), userID, taskID, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		unauthorized(c)
		return
	}
	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	if err := h.Tasks.Delete(c.Request.Context(), userID, taskID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
