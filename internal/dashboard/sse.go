package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/accreditrack/internal/overview"
)

// pollInterval is how often the event stream recomputes the board.
var pollInterval = 5 * time.Second

// progressEvent is sent whenever a headline figure changes.
type progressEvent struct {
	ReportProgress int             `json:"report_progress"`
	PlanProgress   int             `json:"plan_progress"`
	Counts         overview.Counts `json:"counts"`
}

func eventFrom(b *overview.Board) progressEvent {
	return progressEvent{
		ReportProgress: b.ReportProgress,
		PlanProgress:   b.Plan.Progress,
		Counts:         b.Counts,
	}
}

// handleEvents streams a "progress" event on connect and again each time the
// recomputed headline figures differ from the last ones sent.
func (a *api) handleEvents(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	b, err := a.board()
	if err != nil {
		writeSSE(c.Writer, "error", map[string]string{"error": err.Error()})
		c.Writer.Flush()
		return
	}
	last := eventFrom(b)
	writeSSE(c.Writer, "progress", last)
	c.Writer.Flush()

	ctx := c.Request.Context()
	ticker := time.NewTicker(pollInterval)
	heartbeat := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			writeSSE(c.Writer, "heartbeat", map[string]string{
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
			c.Writer.Flush()
		case <-ticker.C:
			b, err := a.board()
			if err != nil {
				log.Printf("dashboard: events recompute: %v", err)
				continue
			}
			evt := eventFrom(b)
			if evt == last {
				continue
			}
			last = evt
			writeSSE(c.Writer, "progress", evt)
			c.Writer.Flush()
		}
	}
}

// writeSSE writes a single SSE event to the writer.
func writeSSE(w io.Writer, event string, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, string(jsonData))
}
