package notify

import (
	"fmt"
	"time"

	"github.com/planably/quartermaster/internal/models"
	"github.com/planably/quartermaster/internal/planning"
	"gorm.io/gorm"
)

// DigestReport summarizes every quarter's capacity position for one team.
type DigestReport struct {
	TeamName    string
	GeneratedAt time.Time
	Quarters    []QuarterDigest
}

// QuarterDigest is one quarter's line in the digest.
type QuarterDigest struct {
	Name                  string
	Status                string
	FinalCapacity         int
	UsedCapacity          int
	RemainingCapacity     int
	UtilizationPercentage int
}

// BuildDigest computes a fresh capacity breakdown for each of the team's
// quarters.
func BuildDigest(db *gorm.DB, teamID string) (*DigestReport, error) {
	var t models.Team
	if err := db.Preload("Members").Where("id = ?", teamID).First(&t).Error; err != nil {
		return nil, fmt.Errorf("notify: digest team %s: %w", teamID, err)
	}
	var quarters []models.Quarter
	if err := db.Where("team_id = ?", teamID).Order("display_order ASC").Find(&quarters).Error; err != nil {
		return nil, fmt.Errorf("notify: digest quarters: %w", err)
	}

	report := &DigestReport{TeamName: t.Name, GeneratedAt: time.Now().UTC()}
	for _, q := range quarters {
		var items []models.Epic
		if err := db.Where("quarter_id = ?", q.ID).Find(&items).Error; err != nil {
			return nil, fmt.Errorf("notify: digest epics for %s: %w", q.ID, err)
		}
		calc := planning.ComputeCapacity(t, items)
		report.Quarters = append(report.Quarters, QuarterDigest{
			Name:                  q.Name,
			Status:                q.Status,
			FinalCapacity:         calc.FinalCapacity,
			UsedCapacity:          calc.UsedCapacity,
			RemainingCapacity:     calc.RemainingCapacity,
			UtilizationPercentage: calc.UtilizationPercentage,
		})
	}
	return report, nil
}
