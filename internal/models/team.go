package models

import (
	"encoding/json"
	"time"
)

// Team holds the roster and the capacity parameters for one planning team.
type Team struct {
	ID                 string    `gorm:"primaryKey;size:36" json:"id"`
	Name               string    `gorm:"size:128;not null" json:"name"`
	QuarterWorkingDays int       `gorm:"default:65" json:"quarterWorkingDays"`
	BufferPercentage   float64   `gorm:"default:0.2" json:"bufferPercentage"`
	OncallPerSprint    int       `gorm:"default:1" json:"oncallPerSprint"`
	SprintsInQuarter   int       `gorm:"default:6" json:"sprintsInQuarter"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`

	Members []TeamMember `gorm:"foreignKey:TeamID" json:"members"`
}

// TeamMember is a single roster entry. VacationDays is subtracted from the
// team's nominal working days when computing individual capacity.
type TeamMember struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	TeamID       string    `gorm:"size:36;index" json:"teamId"`
	Name         string    `gorm:"size:128;not null" json:"name"`
	VacationDays int       `gorm:"default:0" json:"vacationDays"`
	Skills       string    `gorm:"type:json" json:"skills"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SkillList decodes the stored skills JSON. Malformed or empty data reads as
// no skills.
func (m TeamMember) SkillList() []string {
	if m.Skills == "" {
		return nil
	}
	var skills []string
	if err := json.Unmarshal([]byte(m.Skills), &skills); err != nil {
		return nil
	}
	return skills
}
