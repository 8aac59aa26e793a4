package export

import (
	"strings"
	"testing"

	"github.com/planably/quartermaster/internal/epic"
	"github.com/planably/quartermaster/internal/models"
	"github.com/planably/quartermaster/internal/quarter"
	"github.com/planably/quartermaster/internal/team"
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
		&models.Quarter{},
		&models.Epic{},
		&models.AuditLog{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

// seedPlanningState builds a team with a roster, a quarter, a planned epic,
// and a backlog epic.
func seedPlanningState(t *testing.T, db *gorm.DB) (teamID string) {
	t.Helper()
	tm, err := team.Create(db, team.CreateOpts{Name: "Platform"}, "tester")
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	if _, err := team.AddMember(db, tm.ID, team.MemberOpts{Name: "Ada", VacationDays: 5, Skills: []string{"go"}}, "tester"); err != nil {
		t.Fatalf("add member: %v", err)
	}
	q, err := quarter.Create(db, quarter.CreateOpts{TeamID: tm.ID, Name: "Q3 2026"}, "tester")
	if err != nil {
		t.Fatalf("create quarter: %v", err)
	}
	planned, err := epic.Create(db, epic.CreateOpts{TeamID: tm.ID, Title: "Planned", Size: "M", Owner: "Ada"}, "tester")
	if err != nil {
		t.Fatalf("create epic: %v", err)
	}
	if _, err := epic.Move(db, planned.ID, q.ID, "tester"); err != nil {
		t.Fatalf("move epic: %v", err)
	}
	if _, err := epic.Create(db, epic.CreateOpts{TeamID: tm.ID, Title: "Backlog", Size: "S"}, "tester"); err != nil {
		t.Fatalf("create backlog epic: %v", err)
	}
	return tm.ID
}

func TestExport_Shape(t *testing.T) {
	db := openTestDB(t)
	teamID := seedPlanningState(t, db)

	doc, err := Export(db, teamID)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	if doc.Team.ID != teamID || doc.Team.Name != "Platform" {
		t.Errorf("Team = %+v", doc.Team)
	}
	if len(doc.Team.Members) != 1 || doc.Team.Members[0].Skills[0] != "go" {
		t.Errorf("Members = %+v", doc.Team.Members)
	}
	if len(doc.Quarters) != 1 || doc.Quarters[0].Name != "Q3 2026" {
		t.Errorf("Quarters = %+v", doc.Quarters)
	}
	if len(doc.Epics) != 2 {
		t.Fatalf("Epics = %d, want 2", len(doc.Epics))
	}
	if doc.ExportedAt.IsZero() {
		t.Error("ExportedAt not stamped")
	}

	var planned *EpicRecord
	for i := range doc.Epics {
		if doc.Epics[i].Title == "Planned" {
			planned = &doc.Epics[i]
		}
	}
	if planned == nil {
		t.Fatal("planned epic missing from export")
	}
	if planned.QuarterID == nil || *planned.QuarterID != doc.Quarters[0].ID {
		t.Errorf("planned epic QuarterID = %v", planned.QuarterID)
	}
	if planned.Status != "planned" || planned.Position == nil {
		t.Errorf("planned epic = %+v", planned)
	}
}

func TestExport_UnknownTeam(t *testing.T) {
	db := openTestDB(t)

	if _, err := Export(db, "missing"); err == nil {
		t.Fatal("expected error")
	}
}

func TestImport_Roundtrip(t *testing.T) {
	src := openTestDB(t)
	teamID := seedPlanningState(t, src)

	doc, err := Export(src, teamID)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	dst := openTestDB(t)
	tm, err := Import(dst, doc, "tester")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if tm.ID != teamID {
		t.Errorf("imported team ID = %q, want %q", tm.ID, teamID)
	}

	// A second export from the restored database matches the original
	// everywhere except the timestamp.
	doc2, err := Export(dst, teamID)
	if err != nil {
		t.Fatalf("re-export: %v", err)
	}
	if len(doc2.Quarters) != len(doc.Quarters) || len(doc2.Epics) != len(doc.Epics) {
		t.Fatalf("re-export shape: %d quarters %d epics", len(doc2.Quarters), len(doc2.Epics))
	}
	if doc2.Team.ID != doc.Team.ID || doc2.Team.Name != doc.Team.Name ||
		doc2.Team.QuarterWorkingDays != doc.Team.QuarterWorkingDays ||
		len(doc2.Team.Members) != len(doc.Team.Members) {
		t.Errorf("team drifted: %+v vs %+v", doc2.Team, doc.Team)
	}

	// Denormalized day costs are re-derived on import.
	var m models.Epic
	if err := dst.Where("title = ?", "Planned").First(&m).Error; err != nil {
		t.Fatalf("load imported epic: %v", err)
	}
	if m.EstimatedDays != 20 {
		t.Errorf("EstimatedDays = %d, want 20 for size M", m.EstimatedDays)
	}
}

func TestImport_UnknownSizeRejected(t *testing.T) {
	src := openTestDB(t)
	teamID := seedPlanningState(t, src)

	doc, err := Export(src, teamID)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	doc.Epics[0].Size = "XXL"

	dst := openTestDB(t)
	if _, err := Import(dst, doc, "tester"); err == nil || !strings.Contains(err.Error(), "XXL") {
		t.Fatalf("error = %v, want unknown-size rejection", err)
	}

	// The whole import rolls back, team row included.
	var teams int64
	dst.Model(&models.Team{}).Count(&teams)
	if teams != 0 {
		t.Errorf("teams = %d after failed import, want 0", teams)
	}
}

func TestImport_ExistingTeamRollsBack(t *testing.T) {
	db := openTestDB(t)
	teamID := seedPlanningState(t, db)

	doc, err := Export(db, teamID)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	// Importing into a database that already holds these IDs fails and
	// leaves the row counts untouched.
	var before int64
	db.Model(&models.Epic{}).Count(&before)

	if _, err := Import(db, doc, "tester"); err == nil {
		t.Fatal("expected error importing duplicate IDs")
	}

	var after int64
	db.Model(&models.Epic{}).Count(&after)
	if after != before {
		t.Errorf("epics = %d after failed import, want %d", after, before)
	}
}

func TestImport_MissingTeamIdentity(t *testing.T) {
	db := openTestDB(t)

	_, err := Import(db, &Document{}, "tester")
	if err == nil || !strings.Contains(err.Error(), "team identity") {
		t.Errorf("error = %v", err)
	}
}
