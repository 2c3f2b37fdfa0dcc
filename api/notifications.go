package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xiaoyuanzhu-com/tasktree/log"
	"github.com/xiaoyuanzhu-com/tasktree/notifications"
)

// heartbeatInterval keeps idle SSE connections open through proxies
const heartbeatInterval = 30 * time.Second

// EventStream handles GET /api/events (SSE)
func (h *Handlers) EventStream(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable nginx buffering
	c.Status(http.StatusOK)

	events, unsubscribe := h.server.Notifications().Subscribe()
	defer unsubscribe()

	sendSSEEvent(c, notifications.Event{
		Type:      notifications.EventConnected,
		Timestamp: time.Now().UnixMilli(),
	})
	c.Writer.Flush()

	log.Debug().Msg("client connected to event stream")

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	shutdown := h.server.ShutdownContext()
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			sendSSEEvent(c, event)
			c.Writer.Flush()

		case <-ticker.C:
			fmt.Fprintf(c.Writer, ": heartbeat\n\n")
			c.Writer.Flush()

		case <-c.Request.Context().Done():
			log.Debug().Msg("client disconnected from event stream")
			return

		case <-shutdown.Done():
			return
		}
	}
}

func sendSSEEvent(c *gin.Context, event notifications.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event")
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", data)
}
