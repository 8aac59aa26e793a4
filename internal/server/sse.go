package server

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/planably/quartermaster/internal/audit"
	"gorm.io/gorm"
)

// changeEvent is the SSE payload for one audit row. Clients refetch the
// affected entities on receipt, the same pattern the planner UI used with
// its realtime backend.
type changeEvent struct {
	ID         uint   `json:"id"`
	TeamID     string `json:"teamId"`
	Action     string `json:"action"`
	EntityType string `json:"entityType"`
	EntityID   string `json:"entityId"`
}

// handleSSE streams mutation notifications by polling the audit trail.
func handleSSE(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")

		writeSSE(c.Writer, "connected", map[string]string{"type": "connected"})
		c.Writer.Flush()

		// Only notify on mutations newer than the subscription.
		lastSeenID, err := audit.MaxID(db)
		if err != nil {
			return
		}

		ctx := c.Request.Context()
		ticker := time.NewTicker(2 * time.Second)
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
				rows, err := audit.SinceID(db, lastSeenID)
				if err != nil || len(rows) == 0 {
					continue
				}
				lastSeenID = rows[len(rows)-1].ID
				for _, row := range rows {
					writeSSE(c.Writer, "change", changeEvent{
						ID:         row.ID,
						TeamID:     row.TeamID,
						Action:     row.Action,
						EntityType: row.EntityType,
						EntityID:   row.EntityID,
					})
				}
				c.Writer.Flush()
			}
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
