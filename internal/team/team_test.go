package team

import (
	"strings"
	"testing"

	"github.com/planably/quartermaster/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Team{},
		&models.TeamMember{},
		&models.AuditLog{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func TestCreate_Defaults(t *testing.T) {
	db := openTestDB(t)

	tm, err := Create(db, CreateOpts{Name: "Platform"}, "tester")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tm.ID == "" {
		t.Error("expected generated ID")
	}
	if tm.QuarterWorkingDays != DefaultQuarterWorkingDays {
		t.Errorf("QuarterWorkingDays = %d, want %d", tm.QuarterWorkingDays, DefaultQuarterWorkingDays)
	}
	if tm.BufferPercentage != DefaultBufferPercentage {
		t.Errorf("BufferPercentage = %v, want %v", tm.BufferPercentage, DefaultBufferPercentage)
	}
	if tm.OncallPerSprint != DefaultOncallPerSprint {
		t.Errorf("OncallPerSprint = %d, want %d", tm.OncallPerSprint, DefaultOncallPerSprint)
	}
	if tm.SprintsInQuarter != DefaultSprintsInQuarter {
		t.Errorf("SprintsInQuarter = %d, want %d", tm.SprintsInQuarter, DefaultSprintsInQuarter)
	}
}

func TestCreate_ExplicitParameters(t *testing.T) {
	db := openTestDB(t)

	tm, err := Create(db, CreateOpts{
		Name:               "Infra",
		QuarterWorkingDays: 60,
		BufferPercentage:   0.3,
		OncallPerSprint:    2,
		SprintsInQuarter:   5,
	}, "tester")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tm.QuarterWorkingDays != 60 || tm.BufferPercentage != 0.3 || tm.OncallPerSprint != 2 || tm.SprintsInQuarter != 5 {
		t.Errorf("parameters not stored as given: %+v", tm)
	}
}

func TestCreate_NameRequired(t *testing.T) {
	db := openTestDB(t)

	if _, err := Create(db, CreateOpts{}, "tester"); err == nil {
		t.Fatal("expected error for missing name")
	}
}

func TestCreate_WritesAuditRow(t *testing.T) {
	db := openTestDB(t)

	tm, err := Create(db, CreateOpts{Name: "Platform"}, "alice")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	var logs []models.AuditLog
	if err := db.Where("team_id = ?", tm.ID).Find(&logs).Error; err != nil {
		t.Fatalf("load audit rows: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("audit rows = %d, want 1", len(logs))
	}
	if logs[0].Actor != "alice" || logs[0].Action != "CREATE" || logs[0].EntityType != "team" {
		t.Errorf("audit row = %+v", logs[0])
	}
}

func TestGet_NotFound(t *testing.T) {
	db := openTestDB(t)

	_, err := Get(db, "missing")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %q, want to contain \"not found\"", err.Error())
	}
}

func TestUpdate_PartialPatch(t *testing.T) {
	db := openTestDB(t)
	tm, _ := Create(db, CreateOpts{Name: "Platform"}, "tester")

	days := 70
	got, err := Update(db, tm.ID, Patch{QuarterWorkingDays: &days}, "tester")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.QuarterWorkingDays != 70 {
		t.Errorf("QuarterWorkingDays = %d, want 70", got.QuarterWorkingDays)
	}
	if got.Name != "Platform" {
		t.Errorf("Name changed to %q, patch should not touch it", got.Name)
	}
	if got.BufferPercentage != DefaultBufferPercentage {
		t.Errorf("BufferPercentage changed to %v", got.BufferPercentage)
	}
}

func TestUpdate_EmptyPatchIsNoop(t *testing.T) {
	db := openTestDB(t)
	tm, _ := Create(db, CreateOpts{Name: "Platform"}, "tester")

	got, err := Update(db, tm.ID, Patch{}, "tester")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Name != "Platform" {
		t.Errorf("Name = %q", got.Name)
	}

	var count int64
	db.Model(&models.AuditLog{}).Where("action = ?", "UPDATE").Count(&count)
	if count != 0 {
		t.Errorf("empty patch wrote %d UPDATE audit rows", count)
	}
}

func TestAddMember(t *testing.T) {
	db := openTestDB(t)
	tm, _ := Create(db, CreateOpts{Name: "Platform"}, "tester")

	m, err := AddMember(db, tm.ID, MemberOpts{
		Name:         "Ada",
		VacationDays: 5,
		Skills:       []string{"go", "sql"},
	}, "tester")
	if err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if m.TeamID != tm.ID {
		t.Errorf("TeamID = %q, want %q", m.TeamID, tm.ID)
	}

	got, err := Get(db, tm.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Members) != 1 {
		t.Fatalf("members = %d, want 1", len(got.Members))
	}
	skills := got.Members[0].SkillList()
	if len(skills) != 2 || skills[0] != "go" || skills[1] != "sql" {
		t.Errorf("skills = %v", skills)
	}
}

func TestAddMember_UnknownTeam(t *testing.T) {
	db := openTestDB(t)

	if _, err := AddMember(db, "missing", MemberOpts{Name: "Ada"}, "tester"); err == nil {
		t.Fatal("expected error for unknown team")
	}
}

func TestUpdateMember_Vacation(t *testing.T) {
	db := openTestDB(t)
	tm, _ := Create(db, CreateOpts{Name: "Platform"}, "tester")
	m, _ := AddMember(db, tm.ID, MemberOpts{Name: "Ada", VacationDays: 5}, "tester")

	vacation := 12
	got, err := UpdateMember(db, m.ID, MemberPatch{VacationDays: &vacation}, "tester")
	if err != nil {
		t.Fatalf("UpdateMember: %v", err)
	}
	if got.VacationDays != 12 {
		t.Errorf("VacationDays = %d, want 12", got.VacationDays)
	}
	if got.Name != "Ada" {
		t.Errorf("Name = %q", got.Name)
	}
}

func TestRemoveMember(t *testing.T) {
	db := openTestDB(t)
	tm, _ := Create(db, CreateOpts{Name: "Platform"}, "tester")
	m, _ := AddMember(db, tm.ID, MemberOpts{Name: "Ada"}, "tester")

	if err := RemoveMember(db, m.ID, "tester"); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}

	got, _ := Get(db, tm.ID)
	if len(got.Members) != 0 {
		t.Errorf("members = %d, want 0", len(got.Members))
	}

	if err := RemoveMember(db, m.ID, "tester"); err == nil {
		t.Error("expected error removing a missing member")
	}
}
