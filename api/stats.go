package api

import "github.com/gin-gonic/gin"

// GetStats handles GET /api/stats
func (h *Handlers) GetStats(c *gin.Context) {
	RespondData(c, h.server.Core().Stats())
}
