package audit

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
	if err := db.AutoMigrate(&models.AuditLog{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func TestRecord_MarshalsValues(t *testing.T) {
	db := openTestDB(t)

	oldVals := map[string]any{"status": "backlog"}
	newVals := map[string]any{"status": "planned"}
	if err := Record(db, "team-1", "alice", ActionMove, "epic", "epic-1", oldVals, newVals); err != nil {
		t.Fatalf("Record: %v", err)
	}

	var row models.AuditLog
	if err := db.First(&row).Error; err != nil {
		t.Fatalf("load row: %v", err)
	}
	if row.Actor != "alice" || row.Action != ActionMove || row.EntityID != "epic-1" {
		t.Errorf("row = %+v", row)
	}
	if !strings.Contains(row.OldValues, "backlog") || !strings.Contains(row.NewValues, "planned") {
		t.Errorf("values not marshaled: old=%q new=%q", row.OldValues, row.NewValues)
	}
}

func TestRecord_NilValuesAreEmpty(t *testing.T) {
	db := openTestDB(t)

	if err := Record(db, "team-1", "alice", ActionCreate, "epic", "epic-1", nil, nil); err != nil {
		t.Fatalf("Record: %v", err)
	}
	var row models.AuditLog
	db.First(&row)
	if row.OldValues != "" || row.NewValues != "" {
		t.Errorf("nil values stored as old=%q new=%q, want empty", row.OldValues, row.NewValues)
	}
}

func TestRecent_NewestFirstWithLimit(t *testing.T) {
	db := openTestDB(t)

	for i := 0; i < 5; i++ {
		if err := Record(db, "team-1", "alice", ActionUpdate, "epic", "epic-1", nil, i); err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
	}
	Record(db, "team-2", "bob", ActionUpdate, "epic", "epic-9", nil, nil)

	rows, err := Recent(db, "team-1", 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i-1].ID < rows[i].ID {
			t.Errorf("rows not newest-first: %d before %d", rows[i-1].ID, rows[i].ID)
		}
	}
	for _, r := range rows {
		if r.TeamID != "team-1" {
			t.Errorf("row for team %q leaked into team-1 feed", r.TeamID)
		}
	}
}

func TestSinceID(t *testing.T) {
	db := openTestDB(t)

	for i := 0; i < 3; i++ {
		Record(db, "team-1", "alice", ActionUpdate, "epic", "epic-1", nil, nil)
	}
	mark, err := MaxID(db)
	if err != nil {
		t.Fatalf("MaxID: %v", err)
	}
	Record(db, "team-1", "alice", ActionMove, "epic", "epic-2", nil, nil)
	Record(db, "team-1", "alice", ActionDelete, "epic", "epic-3", nil, nil)

	rows, err := SinceID(db, mark)
	if err != nil {
		t.Fatalf("SinceID: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Action != ActionMove || rows[1].Action != ActionDelete {
		t.Errorf("rows not oldest-first: %+v", rows)
	}
}

func TestMaxID_EmptyTrail(t *testing.T) {
	db := openTestDB(t)

	id, err := MaxID(db)
	if err != nil {
		t.Fatalf("MaxID: %v", err)
	}
	if id != 0 {
		t.Errorf("MaxID = %d, want 0", id)
	}
}
