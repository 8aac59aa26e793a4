// Package quarter provides quarter CRUD and lifecycle operations. The pure
// transition logic lives in internal/planning; this package materializes
// state, asks for a change set, and applies it in one transaction.
package quarter

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/planably/quartermaster/internal/audit"
	"github.com/planably/quartermaster/internal/models"
	"github.com/planably/quartermaster/internal/planning"
	"gorm.io/gorm"
)

// CreateOpts holds parameters for creating a quarter.
type CreateOpts struct {
	TeamID      string
	Name        string
	WorkingDays int
	StartDate   *time.Time
	EndDate     *time.Time
}

// Patch is a typed partial update for a quarter's scalar fields. Status is
// not patchable; Start and Complete own status transitions.
type Patch struct {
	Name        *string
	WorkingDays *int
	StartDate   *time.Time
	EndDate     *time.Time
	IsCollapsed *bool
}

// Create creates a quarter in planning state, appended after the team's
// existing quarters in display order.
func Create(db *gorm.DB, opts CreateOpts, actor string) (*models.Quarter, error) {
	if opts.TeamID == "" {
		return nil, fmt.Errorf("quarter: team is required")
	}
	if opts.Name == "" {
		return nil, fmt.Errorf("quarter: name is required")
	}

	var maxOrder int
	row := db.Model(&models.Quarter{}).Where("team_id = ?", opts.TeamID).
		Select("COALESCE(MAX(display_order), -1)").Row()
	if err := row.Scan(&maxOrder); err != nil {
		return nil, fmt.Errorf("quarter: next display order: %w", err)
	}

	q := models.Quarter{
		ID:           uuid.NewString(),
		TeamID:       opts.TeamID,
		Name:         opts.Name,
		Status:       planning.QuarterPlanning,
		WorkingDays:  opts.WorkingDays,
		StartDate:    opts.StartDate,
		EndDate:      opts.EndDate,
		DisplayOrder: maxOrder + 1,
	}
	if err := db.Create(&q).Error; err != nil {
		return nil, fmt.Errorf("quarter: create: %w", err)
	}
	if err := audit.Record(db, q.TeamID, actor, audit.ActionCreate, "quarter", q.ID, nil, q); err != nil {
		return nil, err
	}
	return &q, nil
}

// Get retrieves a quarter by ID.
func Get(db *gorm.DB, id string) (*models.Quarter, error) {
	var q models.Quarter
	if err := db.Where("id = ?", id).First(&q).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("quarter: not found: %s", id)
		}
		return nil, fmt.Errorf("quarter: get %s: %w", id, err)
	}
	return &q, nil
}

// List returns a team's quarters in display order.
func List(db *gorm.DB, teamID string) ([]models.Quarter, error) {
	var quarters []models.Quarter
	if err := db.Where("team_id = ?", teamID).Order("display_order ASC").Find(&quarters).Error; err != nil {
		return nil, fmt.Errorf("quarter: list for team %s: %w", teamID, err)
	}
	return quarters, nil
}

// Update applies a patch to a quarter's scalar fields. No transition rules
// apply to these edits.
func Update(db *gorm.DB, id string, patch Patch, actor string) (*models.Quarter, error) {
	before, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.WorkingDays != nil {
		updates["working_days"] = *patch.WorkingDays
	}
	if patch.StartDate != nil {
		updates["start_date"] = *patch.StartDate
	}
	if patch.EndDate != nil {
		updates["end_date"] = *patch.EndDate
	}
	if patch.IsCollapsed != nil {
		updates["is_collapsed"] = *patch.IsCollapsed
	}
	if len(updates) == 0 {
		return before, nil
	}

	if err := db.Model(&models.Quarter{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("quarter: update %s: %w", id, err)
	}
	after, err := Get(db, id)
	if err != nil {
		return nil, err
	}
	if err := audit.Record(db, before.TeamID, actor, audit.ActionUpdate, "quarter", id, before, after); err != nil {
		return nil, err
	}
	return after, nil
}

// Start promotes a quarter to active, demoting any active sibling on the same
// team in the same transaction.
func Start(db *gorm.DB, id, actor string) (*models.Quarter, error) {
	var started *models.Quarter
	err := db.Transaction(func(tx *gorm.DB) error {
		target, err := Get(tx, id)
		if err != nil {
			return err
		}
		teamQuarters, err := List(tx, target.TeamID)
		if err != nil {
			return err
		}

		cs := planning.StartQuarter(teamQuarters, id)
		if err := applyChangeSet(tx, cs); err != nil {
			return err
		}

		after, err := Get(tx, id)
		if err != nil {
			return err
		}
		started = after
		if len(cs.Quarters) == 0 {
			return nil // already active
		}
		return audit.Record(tx, target.TeamID, actor, audit.ActionStart, "quarter", id,
			map[string]any{"status": target.Status}, map[string]any{"status": after.Status})
	})
	if err != nil {
		return nil, err
	}
	return started, nil
}

// Complete marks a quarter completed and bulk-transitions its planned epics
// to in_progress.
func Complete(db *gorm.DB, id, actor string) (*models.Quarter, error) {
	var completed *models.Quarter
	err := db.Transaction(func(tx *gorm.DB) error {
		target, err := Get(tx, id)
		if err != nil {
			return err
		}
		var items []models.Epic
		if err := tx.Where("quarter_id = ?", id).Find(&items).Error; err != nil {
			return fmt.Errorf("quarter: load epics for %s: %w", id, err)
		}

		cs := planning.CompleteQuarter(*target, items)
		if err := applyChangeSet(tx, cs); err != nil {
			return err
		}

		after, err := Get(tx, id)
		if err != nil {
			return err
		}
		completed = after
		if len(cs.Quarters) == 0 {
			return nil // already completed
		}
		return audit.Record(tx, target.TeamID, actor, audit.ActionComplete, "quarter", id,
			map[string]any{"status": target.Status}, map[string]any{"status": after.Status})
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

// Delete resets every epic referencing the quarter back to the backlog, then
// removes the quarter record.
func Delete(db *gorm.DB, id, actor string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		target, err := Get(tx, id)
		if err != nil {
			return err
		}
		var items []models.Epic
		if err := tx.Where("quarter_id = ?", id).Find(&items).Error; err != nil {
			return fmt.Errorf("quarter: load epics for %s: %w", id, err)
		}

		cs := planning.DeleteQuarter(*target, items)
		if err := applyChangeSet(tx, cs); err != nil {
			return err
		}
		return audit.Record(tx, target.TeamID, actor, audit.ActionDelete, "quarter", id, target, nil)
	})
}

// applyChangeSet persists a lifecycle change set: epic updates first, then
// quarter status changes, then the quarter removal.
func applyChangeSet(tx *gorm.DB, cs planning.ChangeSet) error {
	for _, ec := range cs.Epics {
		updates := map[string]any{"status": ec.Status}
		if ec.ClearQuarter {
			updates["quarter_id"] = nil
			updates["position"] = nil
		}
		if err := tx.Model(&models.Epic{}).Where("id = ?", ec.EpicID).Updates(updates).Error; err != nil {
			return fmt.Errorf("quarter: apply epic change %s: %w", ec.EpicID, err)
		}
	}
	for _, qc := range cs.Quarters {
		if err := tx.Model(&models.Quarter{}).Where("id = ?", qc.QuarterID).
			Update("status", qc.Status).Error; err != nil {
			return fmt.Errorf("quarter: apply status change %s: %w", qc.QuarterID, err)
		}
	}
	if cs.RemoveQuarterID != "" {
		if err := tx.Delete(&models.Quarter{}, "id = ?", cs.RemoveQuarterID).Error; err != nil {
			return fmt.Errorf("quarter: remove %s: %w", cs.RemoveQuarterID, err)
		}
	}
	return nil
}
