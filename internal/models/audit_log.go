package models

import "time"

// AuditLog records every mutation for traceability and feeds the change feed.
type AuditLog struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	TeamID     string    `gorm:"size:36;index" json:"teamId"`
	Actor      string    `gorm:"size:64" json:"actor"`
	Action     string    `gorm:"size:16" json:"action"`
	EntityType string    `gorm:"size:16;index" json:"entityType"`
	EntityID   string    `gorm:"size:36;index" json:"entityId"`
	OldValues  string    `gorm:"type:json" json:"oldValues"`
	NewValues  string    `gorm:"type:json" json:"newValues"`
	CreatedAt  time.Time `json:"createdAt"`
}
