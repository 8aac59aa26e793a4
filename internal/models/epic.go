package models

import "time"

// Epic is the unit of plannable work, sized by t-shirt category.
//
// QuarterID is set iff Status is not backlog. Position orders epics within
// their quarter for display; it is not contiguous and carries no capacity
// meaning. RequiredSkills and Dependencies are stored and exported but no
// placement logic consults them.
type Epic struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	TeamID         string    `gorm:"size:36;index" json:"teamId"`
	Title          string    `gorm:"not null" json:"title"`
	Description    string    `gorm:"type:text" json:"description"`
	Size           string    `gorm:"size:4;not null" json:"size"`
	Priority       string    `gorm:"size:4;default:P2" json:"priority"`
	Status         string    `gorm:"size:16;default:backlog;index" json:"status"`
	EstimatedDays  int       `json:"estimatedDays"`
	RequiredSkills string    `gorm:"type:json" json:"requiredSkills"`
	Dependencies   string    `gorm:"type:json" json:"dependencies"`
	Owner          string    `gorm:"size:64" json:"owner"`
	QuarterID      *string   `gorm:"size:36;index" json:"quarterId,omitempty"`
	Position       *int      `json:"position,omitempty"`
	ParentEpicID   *string   `gorm:"size:36" json:"parentEpicId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
