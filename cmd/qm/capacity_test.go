package main

import (
	"strings"
	"testing"
)

func TestCapacityCmd_Help(t *testing.T) {
	out, err := runQM(t, "capacity", "--help")
	if err != nil {
		t.Fatalf("capacity --help failed: %v", err)
	}
	if !strings.Contains(out, "capacity breakdown") {
		t.Errorf("expected help to mention 'capacity breakdown', got: %s", out)
	}
}

func TestCapacityCmd_Breakdown(t *testing.T) {
	cfgPath := writeTestConfig(t, seededConfig)
	if _, err := runQM(t, "db", "init", "--config", cfgPath); err != nil {
		t.Fatalf("db init failed: %v", err)
	}
	if _, err := runQM(t, "quarter", "create", "--config", cfgPath, "--name", "Q3 2026"); err != nil {
		t.Fatalf("quarter create failed: %v", err)
	}
	list, _ := runQM(t, "quarter", "list", "--config", cfgPath)
	quarterID := firstColumn(t, list, "Q3 2026")

	if _, err := runQM(t, "epic", "create", "--config", cfgPath, "--title", "Work", "--size", "M"); err != nil {
		t.Fatalf("epic create failed: %v", err)
	}
	epics, _ := runQM(t, "epic", "list", "--config", cfgPath)
	epicID := firstColumn(t, epics, "Work")
	if _, err := runQM(t, "epic", "move", epicID, "--quarter", quarterID, "--config", cfgPath); err != nil {
		t.Fatalf("epic move failed: %v", err)
	}

	out, err := runQM(t, "capacity", quarterID, "--config", cfgPath)
	if err != nil {
		t.Fatalf("capacity failed: %v", err)
	}

	// Ada 60 + Grace 55 = 115, minus 60 on-call days, minus an 11-day buffer.
	flat := strings.Join(strings.Fields(out), " ")
	for _, want := range []string{
		"Quarter: Q3 2026 (planning)",
		"Team: Platform",
		"Ada 65 5 60",
		"Grace 65 10 55",
		"Total team capacity: 115 days",
		"On-call deduction: - 60 days",
		"Buffer (20%): - 11 days",
		"Final capacity: 44 days",
		"Used by planned epics: 20 days",
		"Remaining: 24 days",
		"Utilization: 45%",
	} {
		if !strings.Contains(flat, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestCapacityCmd_UnknownQuarter(t *testing.T) {
	cfgPath := writeTestConfig(t, seededConfig)
	if _, err := runQM(t, "db", "init", "--config", cfgPath); err != nil {
		t.Fatalf("db init failed: %v", err)
	}

	_, err := runQM(t, "capacity", "missing", "--config", cfgPath)
	if err == nil {
		t.Fatal("expected error for unknown quarter")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %q, want not found", err.Error())
	}
}
