package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/planably/quartermaster/internal/planning"
)

// registerRoutes sets up all API routes on the Gin router.
func registerRoutes(router *gin.Engine, opts StartOpts) {
	db := opts.DB
	api := router.Group("/api")

	api.GET("/teams", handleTeamList(db))
	api.POST("/teams", handleTeamCreate(db))
	api.GET("/teams/:id", handleTeamGet(db))
	api.PATCH("/teams/:id", handleTeamUpdate(db))
	api.POST("/teams/:id/members", handleMemberAdd(db))
	api.PATCH("/members/:id", handleMemberUpdate(db))
	api.DELETE("/members/:id", handleMemberRemove(db))

	api.GET("/teams/:id/quarters", handleQuarterList(db))
	api.POST("/teams/:id/quarters", handleQuarterCreate(db))
	api.PATCH("/quarters/:id", handleQuarterUpdate(db))
	api.DELETE("/quarters/:id", handleQuarterDelete(db))
	api.POST("/quarters/:id/start", handleQuarterStart(db))
	api.POST("/quarters/:id/complete", handleQuarterComplete(db))
	api.GET("/quarters/:id/capacity", handleQuarterCapacity(db))

	api.GET("/teams/:id/epics", handleEpicList(db))
	api.POST("/teams/:id/epics", handleEpicCreate(db))
	api.GET("/epics/:id", handleEpicGet(db))
	api.PATCH("/epics/:id", handleEpicUpdate(db))
	api.DELETE("/epics/:id", handleEpicDelete(db))
	api.POST("/epics/:id/move", handleEpicMove(opts))
	api.POST("/epics/:id/split", handleEpicSplit(opts))

	api.GET("/teams/:id/export", handleExport(db))
	api.POST("/import", handleImport(db))
	api.GET("/teams/:id/audit", handleAuditRecent(db))

	api.GET("/events", handleSSE(db))
}

// actor extracts the caller identity for the audit trail.
func actor(c *gin.Context) string {
	if a := c.GetHeader("X-Actor"); a != "" {
		return a
	}
	return "api"
}

// respondError maps operation errors to HTTP statuses. Capacity rejections
// are 409s carrying the attempted cost and available remaining so the client
// can present a useful message.
func respondError(c *gin.Context, err error) {
	var capErr *planning.CapacityError
	if errors.As(err, &capErr) {
		c.JSON(http.StatusConflict, gin.H{
			"error":     "capacity_exceeded",
			"attempted": capErr.Attempted,
			"available": capErr.Available,
		})
		return
	}
	var sizeErr *planning.ErrUnknownSize
	if errors.As(err, &sizeErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "message": err.Error()})
		return
	}
	if strings.Contains(err.Error(), "not found") {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": err.Error()})
		return
	}
	if strings.Contains(err.Error(), "required") || strings.Contains(err.Error(), "unknown priority") ||
		strings.Contains(err.Error(), "another team") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "message": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": err.Error()})
}
