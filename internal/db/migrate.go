package db

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/planably/quartermaster/internal/config"
	"github.com/planably/quartermaster/internal/models"
	"gorm.io/gorm"
)

// AllModels returns every GORM model for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.Team{},
		&models.TeamMember{},
		&models.Quarter{},
		&models.Epic{},
		&models.AuditLog{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// SeedTeam creates the configured team with its roster if no team of that
// name exists yet. Re-running init adds roster entries that are missing by
// name but never duplicates or removes existing ones.
func SeedTeam(db *gorm.DB, cfg *config.Config) (*models.Team, error) {
	if cfg.Team.Name == "" {
		return nil, nil
	}

	var t models.Team
	err := db.Preload("Members").Where("name = ?", cfg.Team.Name).First(&t).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		t = models.Team{
			ID:                 uuid.NewString(),
			Name:               cfg.Team.Name,
			QuarterWorkingDays: cfg.Defaults.QuarterWorkingDays,
			BufferPercentage:   cfg.Defaults.BufferPercentage,
			OncallPerSprint:    cfg.Defaults.OncallPerSprint,
			SprintsInQuarter:   cfg.Defaults.SprintsInQuarter,
		}
		if err := db.Create(&t).Error; err != nil {
			return nil, fmt.Errorf("db: seed team %q: %w", cfg.Team.Name, err)
		}
	case err != nil:
		return nil, fmt.Errorf("db: look up team %q: %w", cfg.Team.Name, err)
	}

	existing := make(map[string]bool, len(t.Members))
	for _, m := range t.Members {
		existing[m.Name] = true
	}
	for _, mc := range cfg.Team.Members {
		if existing[mc.Name] {
			continue
		}
		skills := mc.Skills
		if skills == nil {
			skills = []string{}
		}
		data, err := json.Marshal(skills)
		if err != nil {
			return nil, fmt.Errorf("db: marshal skills for member %q: %w", mc.Name, err)
		}
		m := models.TeamMember{
			ID:           uuid.NewString(),
			TeamID:       t.ID,
			Name:         mc.Name,
			VacationDays: mc.VacationDays,
			Skills:       string(data),
		}
		if err := db.Create(&m).Error; err != nil {
			return nil, fmt.Errorf("db: seed member %q: %w", mc.Name, err)
		}
		t.Members = append(t.Members, m)
	}

	return &t, nil
}
