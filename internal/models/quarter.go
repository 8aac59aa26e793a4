package models

import "time"

// Quarter is a planning period owned by a team.
//
// Status moves planning -> active -> completed. At most one quarter per team
// is active at a time; the lifecycle transition enforces this, not the schema.
// WorkingDays is an informational override shown in the UI; the team-level
// QuarterWorkingDays drives capacity math.
type Quarter struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	TeamID       string     `gorm:"size:36;index" json:"teamId"`
	Name         string     `gorm:"size:64;not null" json:"name"`
	Status       string     `gorm:"size:16;default:planning;index" json:"status"`
	WorkingDays  int        `json:"workingDays"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	IsCollapsed  bool       `gorm:"default:false" json:"isCollapsed"`
	DisplayOrder int        `gorm:"default:0" json:"displayOrder"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
