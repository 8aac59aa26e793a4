package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/planably/quartermaster/internal/audit"
	"github.com/planably/quartermaster/internal/export"
	"gorm.io/gorm"
)

func handleExport(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := export.Export(db, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, doc)
	}
}

func handleImport(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var doc export.Document
		if err := c.ShouldBindJSON(&doc); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "message": err.Error()})
			return
		}
		t, err := export.Import(db, &doc, actor(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, t)
	}
}

func handleAuditRecent(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		rows, err := audit.Recent(db, c.Param("id"), limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}
