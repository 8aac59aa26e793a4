package db

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/planably/quartermaster/internal/config"
	"github.com/planably/quartermaster/internal/models"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.DatabaseConfig
		want string
	}{
		{
			name: "default local",
			cfg:  config.DatabaseConfig{User: "root", Host: "127.0.0.1", Port: 3306, Name: "quartermaster"},
			want: "root@tcp(127.0.0.1:3306)/quartermaster?parseTime=true",
		},
		{
			name: "custom host and user",
			cfg:  config.DatabaseConfig{User: "planner", Host: "10.0.0.5", Port: 3307, Name: "qm_prod"},
			want: "planner@tcp(10.0.0.5:3307)/qm_prod?parseTime=true",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DSN(tt.cfg); got != tt.want {
				t.Errorf("DSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConnect_UnsupportedDriver(t *testing.T) {
	_, err := Connect(config.DatabaseConfig{Driver: "postgres"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "unsupported driver") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestConnect_SQLiteAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qm.db")
	db, err := Connect(config.DatabaseConfig{Driver: "sqlite", Path: path})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	for _, m := range AllModels() {
		if !db.Migrator().HasTable(m) {
			t.Errorf("missing table for %T", m)
		}
	}
}

func TestSeedTeam_CreatesTeamWithRoster(t *testing.T) {
	db, err := Connect(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	cfg := &config.Config{
		Defaults: config.DefaultsConfig{QuarterWorkingDays: 65, BufferPercentage: 0.2, OncallPerSprint: 1, SprintsInQuarter: 6},
		Team: config.TeamConfig{
			Name: "Platform",
			Members: []config.MemberConfig{
				{Name: "Ada", VacationDays: 5, Skills: []string{"go"}},
				{Name: "Grace", VacationDays: 10},
			},
		},
	}

	tm, err := SeedTeam(db, cfg)
	if err != nil {
		t.Fatalf("SeedTeam: %v", err)
	}
	if tm == nil {
		t.Fatal("SeedTeam returned nil for a configured team")
	}
	if tm.QuarterWorkingDays != 65 || tm.BufferPercentage != 0.2 {
		t.Errorf("team parameters = %+v", tm)
	}
	if len(tm.Members) != 2 {
		t.Errorf("members = %d, want 2", len(tm.Members))
	}
}

func TestSeedTeam_Idempotent(t *testing.T) {
	db, err := Connect(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	cfg := &config.Config{
		Team: config.TeamConfig{
			Name:    "Platform",
			Members: []config.MemberConfig{{Name: "Ada"}},
		},
	}

	first, err := SeedTeam(db, cfg)
	if err != nil {
		t.Fatalf("first SeedTeam: %v", err)
	}

	// A second run with a grown roster adds only the new member.
	cfg.Team.Members = append(cfg.Team.Members, config.MemberConfig{Name: "Grace"})
	second, err := SeedTeam(db, cfg)
	if err != nil {
		t.Fatalf("second SeedTeam: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second run created a new team %s, want %s", second.ID, first.ID)
	}

	var teams int64
	db.Model(&models.Team{}).Count(&teams)
	if teams != 1 {
		t.Errorf("teams = %d, want 1", teams)
	}
	var members int64
	db.Model(&models.TeamMember{}).Count(&members)
	if members != 2 {
		t.Errorf("members = %d, want 2", members)
	}
}

func TestSeedTeam_NoTeamConfigured(t *testing.T) {
	db, err := Connect(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	tm, err := SeedTeam(db, &config.Config{})
	if err != nil {
		t.Fatalf("SeedTeam: %v", err)
	}
	if tm != nil {
		t.Errorf("SeedTeam = %+v, want nil when no team is configured", tm)
	}
}
