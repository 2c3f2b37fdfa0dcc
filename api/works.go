package api

import (
	"github.com/gin-gonic/gin"
	"github.com/xiaoyuanzhu-com/tasktree/log"
)

// SaveWorkRequest is the body of POST /api/works
type SaveWorkRequest struct {
	Description string `json:"description" binding:"required"`
	Summary     string `json:"summary" binding:"required"`
	SessionID   string `json:"sessionId"`
}

// SaveWorkResponse reports the stored entry and any non-fatal warning
type SaveWorkResponse struct {
	WorkID      string `json:"workId"`
	Timestamp   string `json:"timestamp"`
	Overwritten bool   `json:"overwritten"`
	Warning     string `json:"warning,omitempty"`
}

// SaveWorkInfo handles POST /api/works
func (h *Handlers) SaveWorkInfo(c *gin.Context) {
	var req SaveWorkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	res, err := h.server.Core().SaveWorkInfo(req.Description, req.Summary, req.SessionID)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	resp := SaveWorkResponse{
		WorkID:      res.WorkID,
		Timestamp:   res.Timestamp,
		Overwritten: res.Overwritten,
	}
	if res.Warning != nil {
		resp.Warning = res.Warning.Error()
		log.Warn().Err(res.Warning).Str("workId", res.WorkID).Msg("work info saved with warning")
	}

	if res.Overwritten {
		RespondData(c, resp)
		return
	}
	RespondCreated(c, resp, "/api/works/"+res.WorkID)
}

// GetRecentWorks handles GET /api/works
func (h *Handlers) GetRecentWorks(c *gin.Context) {
	RespondList(c, h.server.Core().GetRecentWorks())
}

// GetWork handles GET /api/works/:workId
func (h *Handlers) GetWork(c *gin.Context) {
	w, err := h.server.Core().GetWorkByID(c.Param("workId"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	RespondData(c, w)
}
