package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xiaoyuanzhu-com/tasktree/tasks"
)

// TreeResponse is the body returned by every task endpoint
type TreeResponse struct {
	SessionID string        `json:"sessionId"`
	Tasks     []*tasks.Node `json:"tasks"`
	Text      string        `json:"text"`
}

// UpdateTasksRequest is the body of PUT /api/sessions/:sessionId/tasks.
// An empty tasks list clears the addressed level.
type UpdateTasksRequest struct {
	Path  string            `json:"path"`
	Tasks []tasks.NodeInput `json:"tasks" binding:"required"`
}

func respondTree(c *gin.Context, sessionID string, roots []*tasks.Node) {
	if c.Query("format") == "text" {
		c.String(http.StatusOK, tasks.Render(roots))
		return
	}
	RespondData(c, TreeResponse{
		SessionID: sessionID,
		Tasks:     roots,
		Text:      tasks.Render(roots),
	})
}

// GetTasks handles GET /api/sessions/:sessionId/tasks
func (h *Handlers) GetTasks(c *gin.Context) {
	sessionID := c.Param("sessionId")

	roots, err := h.server.Core().GetAllTasks(sessionID)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondTree(c, sessionID, roots)
}

// UpdateTasks handles PUT /api/sessions/:sessionId/tasks
func (h *Handlers) UpdateTasks(c *gin.Context) {
	sessionID := c.Param("sessionId")

	var req UpdateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	roots, err := h.server.Core().UpdateTasks(sessionID, req.Path, req.Tasks)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondTree(c, sessionID, roots)
}

// MarkTaskDone handles POST /api/sessions/:sessionId/tasks/:taskId/done
func (h *Handlers) MarkTaskDone(c *gin.Context) {
	sessionID := c.Param("sessionId")

	roots, err := h.server.Core().MarkTaskDone(sessionID, c.Param("taskId"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondTree(c, sessionID, roots)
}
