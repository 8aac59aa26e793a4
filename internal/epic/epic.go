// Package epic provides work-item operations around the planning core.
package epic

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/planably/quartermaster/internal/audit"
	"github.com/planably/quartermaster/internal/models"
	"github.com/planably/quartermaster/internal/planning"
	"gorm.io/gorm"
)

// CreateOpts holds parameters for creating an epic. New epics land in the
// backlog; placement into a quarter goes through Move.
type CreateOpts struct {
	TeamID         string
	Title          string
	Size           string
	Priority       string
	Description    string
	Owner          string
	RequiredSkills []string
	Dependencies   []string
}

// Patch is a typed partial update for an epic's editable fields. Quarter
// assignment and status are not patchable here; Move owns those.
type Patch struct {
	Title          *string
	Size           *string
	Priority       *string
	Description    *string
	Owner          *string
	RequiredSkills *[]string
	Dependencies   *[]string
}

// ListFilters holds optional filters for listing epics.
type ListFilters struct {
	TeamID    string
	Status    string
	QuarterID string
	Priority  string
}

// SplitSpec describes one child produced by splitting an epic.
type SplitSpec struct {
	Title     string
	Size      string
	QuarterID string // empty: child starts in the backlog
}

// Create creates a backlog epic. Unknown size or priority codes fail fast.
func Create(db *gorm.DB, opts CreateOpts, actor string) (*models.Epic, error) {
	if opts.TeamID == "" {
		return nil, fmt.Errorf("epic: team is required")
	}
	if opts.Title == "" {
		return nil, fmt.Errorf("epic: title is required")
	}
	days, err := planning.Days(opts.Size)
	if err != nil {
		return nil, err
	}
	if opts.Priority == "" {
		opts.Priority = "P2"
	}
	if !planning.ValidPriority(opts.Priority) {
		return nil, fmt.Errorf("epic: unknown priority %q", opts.Priority)
	}

	skills, err := marshalList(opts.RequiredSkills)
	if err != nil {
		return nil, fmt.Errorf("epic: marshal required skills: %w", err)
	}
	deps, err := marshalList(opts.Dependencies)
	if err != nil {
		return nil, fmt.Errorf("epic: marshal dependencies: %w", err)
	}

	e := models.Epic{
		ID:             uuid.NewString(),
		TeamID:         opts.TeamID,
		Title:          opts.Title,
		Description:    opts.Description,
		Size:           opts.Size,
		Priority:       opts.Priority,
		Status:         planning.StatusBacklog,
		EstimatedDays:  days,
		RequiredSkills: skills,
		Dependencies:   deps,
		Owner:          opts.Owner,
	}
	if err := db.Create(&e).Error; err != nil {
		return nil, fmt.Errorf("epic: create: %w", err)
	}
	if err := audit.Record(db, e.TeamID, actor, audit.ActionCreate, "epic", e.ID, nil, e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Get retrieves an epic by ID.
func Get(db *gorm.DB, id string) (*models.Epic, error) {
	var e models.Epic
	if err := db.Where("id = ?", id).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("epic: not found: %s", id)
		}
		return nil, fmt.Errorf("epic: get %s: %w", id, err)
	}
	return &e, nil
}

// List returns epics matching the filters, ordered by position then creation
// time so quarter columns render in drag order.
func List(db *gorm.DB, filters ListFilters) ([]models.Epic, error) {
	q := db.Model(&models.Epic{})
	if filters.TeamID != "" {
		q = q.Where("team_id = ?", filters.TeamID)
	}
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	if filters.QuarterID != "" {
		q = q.Where("quarter_id = ?", filters.QuarterID)
	}
	if filters.Priority != "" {
		q = q.Where("priority = ?", filters.Priority)
	}

	var epics []models.Epic
	if err := q.Order("position ASC, created_at ASC").Find(&epics).Error; err != nil {
		return nil, fmt.Errorf("epic: list: %w", err)
	}
	return epics, nil
}

// Update applies a patch. A size change re-derives the denormalized day cost;
// an unknown size fails before anything is written.
func Update(db *gorm.DB, id string, patch Patch, actor string) (*models.Epic, error) {
	before, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Size != nil {
		days, err := planning.Days(*patch.Size)
		if err != nil {
			return nil, err
		}
		updates["size"] = *patch.Size
		updates["estimated_days"] = days
	}
	if patch.Priority != nil {
		if !planning.ValidPriority(*patch.Priority) {
			return nil, fmt.Errorf("epic: unknown priority %q", *patch.Priority)
		}
		updates["priority"] = *patch.Priority
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Owner != nil {
		updates["owner"] = *patch.Owner
	}
	if patch.RequiredSkills != nil {
		skills, err := marshalList(*patch.RequiredSkills)
		if err != nil {
			return nil, fmt.Errorf("epic: marshal required skills: %w", err)
		}
		updates["required_skills"] = skills
	}
	if patch.Dependencies != nil {
		deps, err := marshalList(*patch.Dependencies)
		if err != nil {
			return nil, fmt.Errorf("epic: marshal dependencies: %w", err)
		}
		updates["dependencies"] = deps
	}
	if len(updates) == 0 {
		return before, nil
	}

	if err := db.Model(&models.Epic{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("epic: update %s: %w", id, err)
	}
	after, err := Get(db, id)
	if err != nil {
		return nil, err
	}
	if err := audit.Record(db, before.TeamID, actor, audit.ActionUpdate, "epic", id, before, after); err != nil {
		return nil, err
	}
	return after, nil
}

// Move places an epic into a quarter, or back into the backlog when
// targetQuarterID is empty. The placement rule runs against freshly-read
// state inside the transaction, so a move that no longer fits is rejected
// with a planning.CapacityError even if the caller's view was stale.
func Move(db *gorm.DB, epicID, targetQuarterID, actor string) (*models.Epic, error) {
	var moved *models.Epic
	err := db.Transaction(func(tx *gorm.DB) error {
		e, err := Get(tx, epicID)
		if err != nil {
			return err
		}

		var t models.Team
		if err := tx.Preload("Members").Where("id = ?", e.TeamID).First(&t).Error; err != nil {
			return fmt.Errorf("epic: load team %s: %w", e.TeamID, err)
		}

		if targetQuarterID != "" {
			var q models.Quarter
			if err := tx.Where("id = ?", targetQuarterID).First(&q).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("epic: quarter not found: %s", targetQuarterID)
				}
				return fmt.Errorf("epic: load quarter %s: %w", targetQuarterID, err)
			}
			if q.TeamID != e.TeamID {
				return fmt.Errorf("epic: quarter %s belongs to another team", targetQuarterID)
			}
		}

		var all []models.Epic
		if err := tx.Where("team_id = ?", e.TeamID).Find(&all).Error; err != nil {
			return fmt.Errorf("epic: load team epics: %w", err)
		}

		placement, err := planning.AttemptPlace(*e, targetQuarterID, t, all)
		if err != nil {
			return err
		}

		updates := map[string]any{
			"status":     placement.Status,
			"quarter_id": placement.QuarterID,
			"position":   placement.Position,
		}
		if err := tx.Model(&models.Epic{}).Where("id = ?", epicID).Updates(updates).Error; err != nil {
			return fmt.Errorf("epic: move %s: %w", epicID, err)
		}

		after, err := Get(tx, epicID)
		if err != nil {
			return err
		}
		moved = after

		oldVals := map[string]any{"quarter_id": e.QuarterID, "position": e.Position, "status": e.Status}
		newVals := map[string]any{"quarter_id": after.QuarterID, "position": after.Position, "status": after.Status}
		return audit.Record(tx, e.TeamID, actor, audit.ActionMove, "epic", epicID, oldVals, newVals)
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

// Delete removes an epic.
func Delete(db *gorm.DB, id, actor string) error {
	e, err := Get(db, id)
	if err != nil {
		return err
	}
	if err := db.Delete(&models.Epic{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("epic: delete %s: %w", id, err)
	}
	return audit.Record(db, e.TeamID, actor, audit.ActionDelete, "epic", id, e, nil)
}

// Split breaks an epic into children that inherit its priority, description,
// and metadata. The parent remains, linked by ParentEpicID, so the original
// scope stays visible. Children targeting a quarter are capacity-gated like
// any other placement; on rejection the whole split rolls back.
func Split(db *gorm.DB, epicID string, specs []SplitSpec, actor string) ([]models.Epic, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("epic: split needs at least one child")
	}

	var children []models.Epic
	err := db.Transaction(func(tx *gorm.DB) error {
		parent, err := Get(tx, epicID)
		if err != nil {
			return err
		}

		var t models.Team
		if err := tx.Preload("Members").Where("id = ?", parent.TeamID).First(&t).Error; err != nil {
			return fmt.Errorf("epic: load team %s: %w", parent.TeamID, err)
		}

		for _, spec := range specs {
			days, err := planning.Days(spec.Size)
			if err != nil {
				return err
			}
			if spec.Title == "" {
				return fmt.Errorf("epic: split child title is required")
			}

			child := models.Epic{
				ID:             uuid.NewString(),
				TeamID:         parent.TeamID,
				Title:          spec.Title,
				Description:    parent.Description,
				Size:           spec.Size,
				Priority:       parent.Priority,
				Status:         planning.StatusBacklog,
				EstimatedDays:  days,
				RequiredSkills: parent.RequiredSkills,
				Dependencies:   parent.Dependencies,
				Owner:          parent.Owner,
				ParentEpicID:   &parent.ID,
			}

			if spec.QuarterID != "" {
				var q models.Quarter
				if err := tx.Where("id = ?", spec.QuarterID).First(&q).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fmt.Errorf("epic: quarter not found: %s", spec.QuarterID)
					}
					return fmt.Errorf("epic: load quarter %s: %w", spec.QuarterID, err)
				}
				if q.TeamID != parent.TeamID {
					return fmt.Errorf("epic: quarter %s belongs to another team", spec.QuarterID)
				}

				var all []models.Epic
				if err := tx.Where("team_id = ?", parent.TeamID).Find(&all).Error; err != nil {
					return fmt.Errorf("epic: load team epics: %w", err)
				}
				placement, err := planning.AttemptPlace(child, spec.QuarterID, t, all)
				if err != nil {
					return err
				}
				child.Status = placement.Status
				child.QuarterID = placement.QuarterID
				child.Position = placement.Position
			}

			if err := tx.Create(&child).Error; err != nil {
				return fmt.Errorf("epic: create split child: %w", err)
			}
			children = append(children, child)
		}

		ids := make([]string, len(children))
		for i, c := range children {
			ids[i] = c.ID
		}
		newVals := map[string]any{"parent_id": epicID, "children": ids}
		return audit.Record(tx, parent.TeamID, actor, audit.ActionSplit, "epic", epicID, nil, newVals)
	})
	if err != nil {
		return nil, err
	}
	return children, nil
}

func marshalList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
