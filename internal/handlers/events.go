package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"task-tracker/internal/notify"
)

const DefaultHeartbeat = 25 * time.Second

// Subscriber hands out live event feeds.
type Subscriber interface {
	Subscribe() (<-chan notify.Event, func())
}

type EventsHandler struct {
	subscriber Subscriber
	heartbeat  time.Duration
}

func NewEventsHandler(subscriber Subscriber, heartbeat time.Duration) *EventsHandler {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	return &EventsHandler{subscriber: subscriber, heartbeat: heartbeat}
}

// Stream relays every published event to the client as a Server-Sent Event
// named after the event type, until the client goes away.
func (h *EventsHandler) Stream(c *gin.Context) {
	events, unsubscribe := h.subscriber.Subscribe()
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	c.SSEvent("connected", gin.H{"timestamp": time.Now().UTC()})
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			c.SSEvent(event.Type, event.Payload)
			c.Writer.Flush()
		case now := <-ticker.C:
			c.SSEvent("ping", gin.H{"timestamp": now.UTC()})
			c.Writer.Flush()
		}
	}
}
