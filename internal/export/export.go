// Package export reads and writes the JSON planning-snapshot format: one
// team with its roster, quarters, and epics, stamped with an export time.
package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/planably/quartermaster/internal/audit"
	"github.com/planably/quartermaster/internal/models"
	"github.com/planably/quartermaster/internal/planning"
	"gorm.io/gorm"
)

// Document is the export file shape.
type Document struct {
	Team       TeamRecord      `json:"team"`
	Quarters   []QuarterRecord `json:"quarters"`
	Epics      []EpicRecord    `json:"epics"`
	ExportedAt time.Time       `json:"exportedAt"`
}

// TeamRecord is a team with its roster.
type TeamRecord struct {
	ID                 string         `json:"id"`
	Name               string         `json:"name"`
	QuarterWorkingDays int            `json:"quarterWorkingDays"`
	BufferPercentage   float64        `json:"bufferPercentage"`
	OncallPerSprint    int            `json:"oncallPerSprint"`
	SprintsInQuarter   int            `json:"sprintsInQuarter"`
	Members            []MemberRecord `json:"members"`
}

// MemberRecord is one roster entry.
type MemberRecord struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	VacationDays int      `json:"vacationDays"`
	Skills       []string `json:"skills,omitempty"`
}

// QuarterRecord is one planning period.
type QuarterRecord struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Status       string     `json:"status"`
	WorkingDays  int        `json:"workingDays"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	IsCollapsed  bool       `json:"isCollapsed"`
	DisplayOrder int        `json:"displayOrder"`
}

// EpicRecord is one work item.
type EpicRecord struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	Size           string   `json:"size"`
	Priority       string   `json:"priority"`
	Status         string   `json:"status"`
	RequiredSkills []string `json:"requiredSkills,omitempty"`
	Dependencies   []string `json:"dependencies,omitempty"`
	Owner          string   `json:"owner,omitempty"`
	QuarterID      *string  `json:"quarterId,omitempty"`
	Position       *int     `json:"position,omitempty"`
	ParentEpicID   *string  `json:"parentEpicId,omitempty"`
}

// Export builds a Document for one team.
func Export(db *gorm.DB, teamID string) (*Document, error) {
	var t models.Team
	if err := db.Preload("Members").Where("id = ?", teamID).First(&t).Error; err != nil {
		return nil, fmt.Errorf("export: load team %s: %w", teamID, err)
	}
	var quarters []models.Quarter
	if err := db.Where("team_id = ?", teamID).Order("display_order ASC").Find(&quarters).Error; err != nil {
		return nil, fmt.Errorf("export: load quarters: %w", err)
	}
	var epics []models.Epic
	if err := db.Where("team_id = ?", teamID).Order("created_at ASC").Find(&epics).Error; err != nil {
		return nil, fmt.Errorf("export: load epics: %w", err)
	}

	doc := &Document{
		Team: TeamRecord{
			ID:                 t.ID,
			Name:               t.Name,
			QuarterWorkingDays: t.QuarterWorkingDays,
			BufferPercentage:   t.BufferPercentage,
			OncallPerSprint:    t.OncallPerSprint,
			SprintsInQuarter:   t.SprintsInQuarter,
		},
		ExportedAt: time.Now().UTC(),
	}
	for _, m := range t.Members {
		doc.Team.Members = append(doc.Team.Members, MemberRecord{
			ID:           m.ID,
			Name:         m.Name,
			VacationDays: m.VacationDays,
			Skills:       unmarshalList(m.Skills),
		})
	}
	for _, q := range quarters {
		doc.Quarters = append(doc.Quarters, QuarterRecord{
			ID:           q.ID,
			Name:         q.Name,
			Status:       q.Status,
			WorkingDays:  q.WorkingDays,
			StartDate:    q.StartDate,
			EndDate:      q.EndDate,
			IsCollapsed:  q.IsCollapsed,
			DisplayOrder: q.DisplayOrder,
		})
	}
	for _, e := range epics {
		doc.Epics = append(doc.Epics, EpicRecord{
			ID:             e.ID,
			Title:          e.Title,
			Description:    e.Description,
			Size:           e.Size,
			Priority:       e.Priority,
			Status:         e.Status,
			RequiredSkills: unmarshalList(e.RequiredSkills),
			Dependencies:   unmarshalList(e.Dependencies),
			Owner:          e.Owner,
			QuarterID:      e.QuarterID,
			Position:       e.Position,
			ParentEpicID:   e.ParentEpicID,
		})
	}
	return doc, nil
}

// Import re-creates a document's team, quarters, and epics, preserving IDs.
// The whole import is one transaction; an ID collision rolls it back.
func Import(db *gorm.DB, doc *Document, actor string) (*models.Team, error) {
	if doc.Team.ID == "" || doc.Team.Name == "" {
		return nil, fmt.Errorf("export: import document missing team identity")
	}

	var imported *models.Team
	err := db.Transaction(func(tx *gorm.DB) error {
		t := models.Team{
			ID:                 doc.Team.ID,
			Name:               doc.Team.Name,
			QuarterWorkingDays: doc.Team.QuarterWorkingDays,
			BufferPercentage:   doc.Team.BufferPercentage,
			OncallPerSprint:    doc.Team.OncallPerSprint,
			SprintsInQuarter:   doc.Team.SprintsInQuarter,
		}
		if err := tx.Create(&t).Error; err != nil {
			return fmt.Errorf("export: import team %s: %w", t.ID, err)
		}
		for _, mr := range doc.Team.Members {
			m := models.TeamMember{
				ID:           mr.ID,
				TeamID:       t.ID,
				Name:         mr.Name,
				VacationDays: mr.VacationDays,
				Skills:       marshalList(mr.Skills),
			}
			if err := tx.Create(&m).Error; err != nil {
				return fmt.Errorf("export: import member %s: %w", m.ID, err)
			}
		}
		for _, qr := range doc.Quarters {
			q := models.Quarter{
				ID:           qr.ID,
				TeamID:       t.ID,
				Name:         qr.Name,
				Status:       qr.Status,
				WorkingDays:  qr.WorkingDays,
				StartDate:    qr.StartDate,
				EndDate:      qr.EndDate,
				IsCollapsed:  qr.IsCollapsed,
				DisplayOrder: qr.DisplayOrder,
			}
			if err := tx.Create(&q).Error; err != nil {
				return fmt.Errorf("export: import quarter %s: %w", q.ID, err)
			}
		}
		for _, er := range doc.Epics {
			days, err := planning.Days(er.Size)
			if err != nil {
				return fmt.Errorf("export: import epic %s: %w", er.ID, err)
			}
			e := models.Epic{
				ID:             er.ID,
				TeamID:         t.ID,
				Title:          er.Title,
				Description:    er.Description,
				Size:           er.Size,
				Priority:       er.Priority,
				Status:         er.Status,
				EstimatedDays:  days,
				RequiredSkills: marshalList(er.RequiredSkills),
				Dependencies:   marshalList(er.Dependencies),
				Owner:          er.Owner,
				QuarterID:      er.QuarterID,
				Position:       er.Position,
				ParentEpicID:   er.ParentEpicID,
			}
			if err := tx.Create(&e).Error; err != nil {
				return fmt.Errorf("export: import epic %s: %w", e.ID, err)
			}
		}
		imported = &t
		return audit.Record(tx, t.ID, actor, audit.ActionImport, "team", t.ID, nil,
			map[string]any{"quarters": len(doc.Quarters), "epics": len(doc.Epics)})
	})
	if err != nil {
		return nil, err
	}
	return imported, nil
}

func unmarshalList(data string) []string {
	if data == "" {
		return nil
	}
	var items []string
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil
	}
	if len(items) == 0 {
		return nil
	}
	return items
}

func marshalList(items []string) string {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(data)
}
