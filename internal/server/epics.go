package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/planably/quartermaster/internal/epic"
	"github.com/planably/quartermaster/internal/notify"
	"gorm.io/gorm"
)

type epicCreateRequest struct {
	Title          string   `json:"title"`
	Size           string   `json:"size"`
	Priority       string   `json:"priority"`
	Description    string   `json:"description"`
	Owner          string   `json:"owner"`
	RequiredSkills []string `json:"requiredSkills"`
	Dependencies   []string `json:"dependencies"`
}

type epicPatchRequest struct {
	Title          *string   `json:"title"`
	Size           *string   `json:"size"`
	Priority       *string   `json:"priority"`
	Description    *string   `json:"description"`
	Owner          *string   `json:"owner"`
	RequiredSkills *[]string `json:"requiredSkills"`
	Dependencies   *[]string `json:"dependencies"`
}

type epicMoveRequest struct {
	// QuarterID of the target quarter; empty moves the epic to the backlog.
	QuarterID string `json:"quarterId"`
}

type epicSplitRequest struct {
	Children []epicSplitChild `json:"children"`
}

type epicSplitChild struct {
	Title     string `json:"title"`
	Size      string `json:"size"`
	QuarterID string `json:"quarterId"`
}

func handleEpicList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		epics, err := epic.List(db, epic.ListFilters{
			TeamID:    c.Param("id"),
			Status:    c.Query("status"),
			QuarterID: c.Query("quarter"),
			Priority:  c.Query("priority"),
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, epics)
	}
}

func handleEpicCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req epicCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "message": err.Error()})
			return
		}
		e, err := epic.Create(db, epic.CreateOpts{
			TeamID:         c.Param("id"),
			Title:          req.Title,
			Size:           req.Size,
			Priority:       req.Priority,
			Description:    req.Description,
			Owner:          req.Owner,
			RequiredSkills: req.RequiredSkills,
			Dependencies:   req.Dependencies,
		}, actor(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, e)
	}
}

func handleEpicGet(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		e, err := epic.Get(db, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, e)
	}
}

func handleEpicUpdate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req epicPatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "message": err.Error()})
			return
		}
		e, err := epic.Update(db, c.Param("id"), epic.Patch{
			Title:          req.Title,
			Size:           req.Size,
			Priority:       req.Priority,
			Description:    req.Description,
			Owner:          req.Owner,
			RequiredSkills: req.RequiredSkills,
			Dependencies:   req.Dependencies,
		}, actor(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, e)
	}
}

func handleEpicDelete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := epic.Delete(db, c.Param("id"), actor(c)); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleEpicMove(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req epicMoveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "message": err.Error()})
			return
		}
		e, err := epic.Move(opts.DB, c.Param("id"), req.QuarterID, actor(c))
		if err != nil {
			respondError(c, err)
			return
		}
		if req.QuarterID != "" {
			maybeAlert(opts, req.QuarterID)
		}
		c.JSON(http.StatusOK, e)
	}
}

func handleEpicSplit(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req epicSplitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "message": err.Error()})
			return
		}
		specs := make([]epic.SplitSpec, len(req.Children))
		targets := make(map[string]bool)
		for i, child := range req.Children {
			specs[i] = epic.SplitSpec{Title: child.Title, Size: child.Size, QuarterID: child.QuarterID}
			if child.QuarterID != "" {
				targets[child.QuarterID] = true
			}
		}
		children, err := epic.Split(opts.DB, c.Param("id"), specs, actor(c))
		if err != nil {
			respondError(c, err)
			return
		}
		for quarterID := range targets {
			maybeAlert(opts, quarterID)
		}
		c.JSON(http.StatusCreated, children)
	}
}

// maybeAlert sends a utilization alert when the quarter sits at or past the
// configured threshold after a mutation. Best-effort: failures only log.
func maybeAlert(opts StartOpts, quarterID string) {
	if !opts.Notifier.Enabled() || opts.WarnThreshold <= 0 {
		return
	}
	calc, t, q, err := quarterCapacity(opts.DB, quarterID)
	if err != nil {
		return
	}
	if calc.UtilizationPercentage < opts.WarnThreshold {
		return
	}
	evt := notify.FormatUtilizationAlert(t, q, calc)
	go opts.Notifier.Send(context.Background(), evt)
}
