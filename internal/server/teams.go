package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/planably/quartermaster/internal/team"
	"gorm.io/gorm"
)

type teamCreateRequest struct {
	Name               string  `json:"name"`
	QuarterWorkingDays int     `json:"quarterWorkingDays"`
	BufferPercentage   float64 `json:"bufferPercentage"`
	OncallPerSprint    int     `json:"oncallPerSprint"`
	SprintsInQuarter   int     `json:"sprintsInQuarter"`
}

type teamPatchRequest struct {
	Name               *string  `json:"name"`
	QuarterWorkingDays *int     `json:"quarterWorkingDays"`
	BufferPercentage   *float64 `json:"bufferPercentage"`
	OncallPerSprint    *int     `json:"oncallPerSprint"`
	SprintsInQuarter   *int     `json:"sprintsInQuarter"`
}

type memberAddRequest struct {
	Name         string   `json:"name"`
	VacationDays int      `json:"vacationDays"`
	Skills       []string `json:"skills"`
}

type memberPatchRequest struct {
	Name         *string   `json:"name"`
	VacationDays *int      `json:"vacationDays"`
	Skills       *[]string `json:"skills"`
}

func handleTeamList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		teams, err := team.List(db)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, teams)
	}
}

func handleTeamCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req teamCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "message": err.Error()})
			return
		}
		t, err := team.Create(db, team.CreateOpts{
			Name:               req.Name,
			QuarterWorkingDays: req.QuarterWorkingDays,
			BufferPercentage:   req.BufferPercentage,
			OncallPerSprint:    req.OncallPerSprint,
			SprintsInQuarter:   req.SprintsInQuarter,
		}, actor(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, t)
	}
}

func handleTeamGet(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := team.Get(db, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

func handleTeamUpdate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req teamPatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "message": err.Error()})
			return
		}
		t, err := team.Update(db, c.Param("id"), team.Patch{
			Name:               req.Name,
			QuarterWorkingDays: req.QuarterWorkingDays,
			BufferPercentage:   req.BufferPercentage,
			OncallPerSprint:    req.OncallPerSprint,
			SprintsInQuarter:   req.SprintsInQuarter,
		}, actor(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

func handleMemberAdd(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req memberAddRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "message": err.Error()})
			return
		}
		m, err := team.AddMember(db, c.Param("id"), team.MemberOpts{
			Name:         req.Name,
			VacationDays: req.VacationDays,
			Skills:       req.Skills,
		}, actor(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, m)
	}
}

func handleMemberUpdate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req memberPatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "message": err.Error()})
			return
		}
		m, err := team.UpdateMember(db, c.Param("id"), team.MemberPatch{
			Name:         req.Name,
			VacationDays: req.VacationDays,
			Skills:       req.Skills,
		}, actor(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, m)
	}
}

func handleMemberRemove(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := team.RemoveMember(db, c.Param("id"), actor(c)); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
