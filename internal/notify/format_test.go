package notify

import (
	"strings"
	"testing"

	"github.com/planably/quartermaster/internal/models"
	"github.com/planably/quartermaster/internal/planning"
)

func TestUtilizationColor(t *testing.T) {
	tests := []struct {
		pct  int
		want string
	}{
		{0, colorGreen},
		{70, colorGreen},
		{71, colorYellow},
		{90, colorYellow},
		{91, colorRed},
		{100, colorRed},
	}
	for _, tt := range tests {
		if got := UtilizationColor(tt.pct); got != tt.want {
			t.Errorf("UtilizationColor(%d) = %q, want %q", tt.pct, got, tt.want)
		}
	}
}

func TestFormatUtilizationAlert(t *testing.T) {
	tm := models.Team{Name: "Platform"}
	q := models.Quarter{Name: "Q3 2026"}
	calc := planning.CapacityCalculation{
		FinalCapacity:         94,
		UsedCapacity:          90,
		RemainingCapacity:     4,
		UtilizationPercentage: 96,
	}

	evt := FormatUtilizationAlert(tm, q, calc)
	if !strings.Contains(evt.Title, "Platform") || !strings.Contains(evt.Title, "96%") {
		t.Errorf("Title = %q", evt.Title)
	}
	if evt.Severity != SeverityWarning {
		t.Errorf("Severity = %q, want warning below 100%%", evt.Severity)
	}
	if evt.Color != colorRed {
		t.Errorf("Color = %q, want red", evt.Color)
	}
	if len(evt.Fields) != 4 {
		t.Errorf("Fields = %d, want 4", len(evt.Fields))
	}
}

func TestFormatUtilizationAlert_SaturatedIsError(t *testing.T) {
	evt := FormatUtilizationAlert(models.Team{Name: "P"}, models.Quarter{Name: "Q"},
		planning.CapacityCalculation{UtilizationPercentage: 100})
	if evt.Severity != SeverityError {
		t.Errorf("Severity = %q, want error at 100%%", evt.Severity)
	}
}

func TestFormatDigest(t *testing.T) {
	report := DigestReport{
		TeamName: "Platform",
		Quarters: []QuarterDigest{
			{Name: "Q1 2026", Status: "completed", FinalCapacity: 94, UsedCapacity: 0, UtilizationPercentage: 0},
			{Name: "Q2 2026", Status: "active", FinalCapacity: 94, UsedCapacity: 80, UtilizationPercentage: 85},
		},
	}

	evt := FormatDigest(report)
	if !strings.Contains(evt.Title, "Platform") {
		t.Errorf("Title = %q", evt.Title)
	}
	if evt.Severity != SeverityInfo {
		t.Errorf("Severity = %q, want info", evt.Severity)
	}
	if !strings.Contains(evt.Body, "85%") {
		t.Errorf("Body = %q, want busiest utilization", evt.Body)
	}
	if evt.Color != colorYellow {
		t.Errorf("Color = %q, want yellow for 85%%", evt.Color)
	}
	if len(evt.Fields) != 2 {
		t.Errorf("Fields = %d, want one per quarter", len(evt.Fields))
	}
}

func TestFormatDigest_NoQuarters(t *testing.T) {
	evt := FormatDigest(DigestReport{TeamName: "Platform"})
	if evt.Body != "No quarters defined." {
		t.Errorf("Body = %q", evt.Body)
	}
	if evt.Color != colorGreen {
		t.Errorf("Color = %q, want green", evt.Color)
	}
}
