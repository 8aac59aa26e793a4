// Package team provides roster and team-parameter operations.
package team

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/planably/quartermaster/internal/audit"
	"github.com/planably/quartermaster/internal/models"
	"gorm.io/gorm"
)

// Default capacity parameters applied when CreateOpts leaves them zero.
const (
	DefaultQuarterWorkingDays = 65
	DefaultBufferPercentage   = 0.2
	DefaultOncallPerSprint    = 1
	DefaultSprintsInQuarter   = 6
)

// CreateOpts holds parameters for creating a team.
type CreateOpts struct {
	Name               string
	QuarterWorkingDays int
	BufferPercentage   float64
	OncallPerSprint    int
	SprintsInQuarter   int
}

// Patch is a typed partial update for a team. Nil fields are untouched.
type Patch struct {
	Name               *string
	QuarterWorkingDays *int
	BufferPercentage   *float64
	OncallPerSprint    *int
	SprintsInQuarter   *int
}

// MemberOpts holds parameters for adding a roster entry.
type MemberOpts struct {
	Name         string
	VacationDays int
	Skills       []string
}

// MemberPatch is a typed partial update for a roster entry.
type MemberPatch struct {
	Name         *string
	VacationDays *int
	Skills       *[]string
}

// Create creates a team, filling unset capacity parameters with the defaults.
func Create(db *gorm.DB, opts CreateOpts, actor string) (*models.Team, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("team: name is required")
	}
	if opts.QuarterWorkingDays == 0 {
		opts.QuarterWorkingDays = DefaultQuarterWorkingDays
	}
	if opts.BufferPercentage == 0 {
		opts.BufferPercentage = DefaultBufferPercentage
	}
	if opts.OncallPerSprint == 0 {
		opts.OncallPerSprint = DefaultOncallPerSprint
	}
	if opts.SprintsInQuarter == 0 {
		opts.SprintsInQuarter = DefaultSprintsInQuarter
	}

	t := models.Team{
		ID:                 uuid.NewString(),
		Name:               opts.Name,
		QuarterWorkingDays: opts.QuarterWorkingDays,
		BufferPercentage:   opts.BufferPercentage,
		OncallPerSprint:    opts.OncallPerSprint,
		SprintsInQuarter:   opts.SprintsInQuarter,
	}
	if err := db.Create(&t).Error; err != nil {
		return nil, fmt.Errorf("team: create: %w", err)
	}
	if err := audit.Record(db, t.ID, actor, audit.ActionCreate, "team", t.ID, nil, t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Get retrieves a team with its members.
func Get(db *gorm.DB, id string) (*models.Team, error) {
	var t models.Team
	if err := db.Preload("Members").Where("id = ?", id).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("team: not found: %s", id)
		}
		return nil, fmt.Errorf("team: get %s: %w", id, err)
	}
	return &t, nil
}

// List returns all teams with their members, ordered by name.
func List(db *gorm.DB) ([]models.Team, error) {
	var teams []models.Team
	if err := db.Preload("Members").Order("name ASC").Find(&teams).Error; err != nil {
		return nil, fmt.Errorf("team: list: %w", err)
	}
	return teams, nil
}

// Update applies a patch to a team's scalar fields. The capacity calculator
// clamps at read time, so out-of-range parameters are stored as given.
func Update(db *gorm.DB, id string, patch Patch, actor string) (*models.Team, error) {
	before, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.QuarterWorkingDays != nil {
		updates["quarter_working_days"] = *patch.QuarterWorkingDays
	}
	if patch.BufferPercentage != nil {
		updates["buffer_percentage"] = *patch.BufferPercentage
	}
	if patch.OncallPerSprint != nil {
		updates["oncall_per_sprint"] = *patch.OncallPerSprint
	}
	if patch.SprintsInQuarter != nil {
		updates["sprints_in_quarter"] = *patch.SprintsInQuarter
	}
	if len(updates) == 0 {
		return before, nil
	}

	if err := db.Model(&models.Team{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("team: update %s: %w", id, err)
	}
	after, err := Get(db, id)
	if err != nil {
		return nil, err
	}
	if err := audit.Record(db, id, actor, audit.ActionUpdate, "team", id, before, after); err != nil {
		return nil, err
	}
	return after, nil
}

// AddMember appends a roster entry to a team.
func AddMember(db *gorm.DB, teamID string, opts MemberOpts, actor string) (*models.TeamMember, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("team: member name is required")
	}
	if _, err := Get(db, teamID); err != nil {
		return nil, err
	}

	skills, err := marshalSkills(opts.Skills)
	if err != nil {
		return nil, fmt.Errorf("team: marshal skills for %q: %w", opts.Name, err)
	}
	m := models.TeamMember{
		ID:           uuid.NewString(),
		TeamID:       teamID,
		Name:         opts.Name,
		VacationDays: opts.VacationDays,
		Skills:       skills,
	}
	if err := db.Create(&m).Error; err != nil {
		return nil, fmt.Errorf("team: add member: %w", err)
	}
	if err := audit.Record(db, teamID, actor, audit.ActionCreate, "member", m.ID, nil, m); err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMember applies a patch to a roster entry.
func UpdateMember(db *gorm.DB, memberID string, patch MemberPatch, actor string) (*models.TeamMember, error) {
	var before models.TeamMember
	if err := db.Where("id = ?", memberID).First(&before).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("team: member not found: %s", memberID)
		}
		return nil, fmt.Errorf("team: get member %s: %w", memberID, err)
	}

	updates := map[string]any{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.VacationDays != nil {
		updates["vacation_days"] = *patch.VacationDays
	}
	if patch.Skills != nil {
		skills, err := marshalSkills(*patch.Skills)
		if err != nil {
			return nil, fmt.Errorf("team: marshal skills for %s: %w", memberID, err)
		}
		updates["skills"] = skills
	}
	if len(updates) == 0 {
		return &before, nil
	}

	if err := db.Model(&models.TeamMember{}).Where("id = ?", memberID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("team: update member %s: %w", memberID, err)
	}
	var after models.TeamMember
	if err := db.Where("id = ?", memberID).First(&after).Error; err != nil {
		return nil, fmt.Errorf("team: reload member %s: %w", memberID, err)
	}
	if err := audit.Record(db, before.TeamID, actor, audit.ActionUpdate, "member", memberID, before, after); err != nil {
		return nil, err
	}
	return &after, nil
}

// RemoveMember deletes a roster entry.
func RemoveMember(db *gorm.DB, memberID string, actor string) error {
	var m models.TeamMember
	if err := db.Where("id = ?", memberID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("team: member not found: %s", memberID)
		}
		return fmt.Errorf("team: get member %s: %w", memberID, err)
	}
	if err := db.Delete(&models.TeamMember{}, "id = ?", memberID).Error; err != nil {
		return fmt.Errorf("team: remove member %s: %w", memberID, err)
	}
	return audit.Record(db, m.TeamID, actor, audit.ActionDelete, "member", memberID, m, nil)
}

func marshalSkills(skills []string) (string, error) {
	if skills == nil {
		skills = []string{}
	}
	data, err := json.Marshal(skills)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
