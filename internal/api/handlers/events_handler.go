package handlers

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/joyeria/backend-go/internal/events"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const keepAliveInterval = 25 * time.Second

type EventsHandler struct {
	broker    events.Broker
	keepAlive time.Duration
}

func NewEventsHandler(broker events.Broker) *EventsHandler {
	return &EventsHandler{broker: broker, keepAlive: keepAliveInterval}
}

// Stream sends change events as Server-Sent Events until the client goes
// away. ?tables=sales,products narrows the stream.
func (h *EventsHandler) Stream(c *gin.Context) {
	var tables []string
	for _, t := range strings.Split(c.Query("tables"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tables = append(tables, t)
		}
	}

	ctx := c.Request.Context()
	ch, cancel := h.broker.Subscribe(ctx, tables...)
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.SSEvent("ready", gin.H{"tables": tables})
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case event, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("change", event)
			return true
		case <-ticker.C:
			if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
				log.Debug().Err(err).Msg("Event stream closed")
				return false
			}
			return true
		}
	})
}

func Health(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"service":   serviceName,
		})
	}
}
