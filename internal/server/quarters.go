package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/planably/quartermaster/internal/models"
	"github.com/planably/quartermaster/internal/planning"
	"github.com/planably/quartermaster/internal/quarter"
	"gorm.io/gorm"
)

type quarterCreateRequest struct {
	Name        string     `json:"name"`
	WorkingDays int        `json:"workingDays"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
}

type quarterPatchRequest struct {
	Name        *string    `json:"name"`
	WorkingDays *int       `json:"workingDays"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	IsCollapsed *bool      `json:"isCollapsed"`
}

func handleQuarterList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		quarters, err := quarter.List(db, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, quarters)
	}
}

func handleQuarterCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req quarterCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "message": err.Error()})
			return
		}
		q, err := quarter.Create(db, quarter.CreateOpts{
			TeamID:      c.Param("id"),
			Name:        req.Name,
			WorkingDays: req.WorkingDays,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
		}, actor(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, q)
	}
}

func handleQuarterUpdate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req quarterPatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "message": err.Error()})
			return
		}
		q, err := quarter.Update(db, c.Param("id"), quarter.Patch{
			Name:        req.Name,
			WorkingDays: req.WorkingDays,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
			IsCollapsed: req.IsCollapsed,
		}, actor(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, q)
	}
}

func handleQuarterDelete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := quarter.Delete(db, c.Param("id"), actor(c)); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleQuarterStart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := quarter.Start(db, c.Param("id"), actor(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, q)
	}
}

func handleQuarterComplete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := quarter.Complete(db, c.Param("id"), actor(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, q)
	}
}

func handleQuarterCapacity(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		calc, _, _, err := quarterCapacity(db, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, calc)
	}
}

// quarterCapacity materializes a quarter's team and occupants and computes a
// fresh breakdown.
func quarterCapacity(db *gorm.DB, quarterID string) (planning.CapacityCalculation, models.Team, models.Quarter, error) {
	q, err := quarter.Get(db, quarterID)
	if err != nil {
		return planning.CapacityCalculation{}, models.Team{}, models.Quarter{}, err
	}
	var t models.Team
	if err := db.Preload("Members").Where("id = ?", q.TeamID).First(&t).Error; err != nil {
		return planning.CapacityCalculation{}, models.Team{}, models.Quarter{}, err
	}
	var items []models.Epic
	if err := db.Where("quarter_id = ?", quarterID).Find(&items).Error; err != nil {
		return planning.CapacityCalculation{}, models.Team{}, models.Quarter{}, err
	}
	return planning.ComputeCapacity(t, items), t, *q, nil
}
