// Package audit writes and queries the mutation trail.
package audit

import (
	"encoding/json"
	"fmt"

	"github.com/planably/quartermaster/internal/models"
	"gorm.io/gorm"
)

// Actions recorded in the trail.
const (
	ActionCreate   = "CREATE"
	ActionUpdate   = "UPDATE"
	ActionMove     = "MOVE"
	ActionDelete   = "DELETE"
	ActionSplit    = "SPLIT"
	ActionStart    = "START"
	ActionComplete = "COMPLETE"
	ActionImport   = "IMPORT"
)

// Record appends one audit row. oldValues and newValues are marshaled to JSON;
// nil marshals to an empty string.
func Record(db *gorm.DB, teamID, actor, action, entityType, entityID string, oldValues, newValues any) error {
	oldJSON, err := marshalJSON(oldValues)
	if err != nil {
		return fmt.Errorf("audit: marshal old values for %s %s: %w", entityType, entityID, err)
	}
	newJSON, err := marshalJSON(newValues)
	if err != nil {
		return fmt.Errorf("audit: marshal new values for %s %s: %w", entityType, entityID, err)
	}

	row := models.AuditLog{
		TeamID:     teamID,
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		OldValues:  oldJSON,
		NewValues:  newJSON,
	}
	if err := db.Create(&row).Error; err != nil {
		return fmt.Errorf("audit: record %s %s %s: %w", action, entityType, entityID, err)
	}
	return nil
}

// Recent returns the newest limit rows for a team, newest first.
func Recent(db *gorm.DB, teamID string, limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.AuditLog
	if err := db.Where("team_id = ?", teamID).Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("audit: recent for team %s: %w", teamID, err)
	}
	return rows, nil
}

// SinceID returns rows with an ID greater than lastID, oldest first. The
// change feed polls with this.
func SinceID(db *gorm.DB, lastID uint) ([]models.AuditLog, error) {
	var rows []models.AuditLog
	if err := db.Where("id > ?", lastID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("audit: since id %d: %w", lastID, err)
	}
	return rows, nil
}

// MaxID returns the highest audit row ID, or zero for an empty trail.
func MaxID(db *gorm.DB) (uint, error) {
	var row models.AuditLog
	err := db.Order("id DESC").Limit(1).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("audit: max id: %w", err)
	}
	return row.ID, nil
}

func marshalJSON(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
