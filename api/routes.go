package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine, h *Handlers) {
	api := r.Group("/api")

	// Task trees
	api.GET("/sessions/:sessionId/tasks", h.GetTasks)
	api.PUT("/sessions/:sessionId/tasks", h.UpdateTasks)
	api.POST("/sessions/:sessionId/tasks/:taskId/done", h.MarkTaskDone)

	// Work info
	api.GET("/works", h.GetRecentWorks)
	api.POST("/works", h.SaveWorkInfo)
	api.GET("/works/:workId", h.GetWork)

	// Notifications (SSE)
	api.GET("/events", h.EventStream)

	// Stats
	api.GET("/stats", h.GetStats)
}
