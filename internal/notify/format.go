package notify

import (
	"fmt"

	"github.com/planably/quartermaster/internal/models"
	"github.com/planably/quartermaster/internal/planning"
)

// Utilization color thresholds, matching the planner UI's traffic lights.
const (
	colorGreen  = "#10B981"
	colorYellow = "#F59E0B"
	colorRed    = "#EF4444"
)

// UtilizationColor maps a utilization percentage to its display color:
// green through 70%, yellow through 90%, red above.
func UtilizationColor(pct int) string {
	switch {
	case pct <= 70:
		return colorGreen
	case pct <= 90:
		return colorYellow
	default:
		return colorRed
	}
}

// FormatUtilizationAlert builds the event sent when a quarter crosses the
// configured utilization threshold.
func FormatUtilizationAlert(t models.Team, q models.Quarter, calc planning.CapacityCalculation) Event {
	severity := SeverityWarning
	if calc.UtilizationPercentage >= 100 {
		severity = SeverityError
	}
	return Event{
		Title: fmt.Sprintf("%s: %s at %d%% capacity", t.Name, q.Name, calc.UtilizationPercentage),
		Body: fmt.Sprintf("%d of %d planned days used, %d remaining.",
			calc.UsedCapacity, calc.FinalCapacity, calc.RemainingCapacity),
		Severity: severity,
		Color:    UtilizationColor(calc.UtilizationPercentage),
		Fields: []Field{
			{Name: "Team", Value: t.Name, Short: true},
			{Name: "Quarter", Value: q.Name, Short: true},
			{Name: "Used", Value: fmt.Sprintf("%d days", calc.UsedCapacity), Short: true},
			{Name: "Remaining", Value: fmt.Sprintf("%d days", calc.RemainingCapacity), Short: true},
		},
	}
}

// FormatDigest builds the scheduled capacity digest event.
func FormatDigest(report DigestReport) Event {
	evt := Event{
		Title:    fmt.Sprintf("Capacity digest: %s", report.TeamName),
		Severity: SeverityInfo,
		Color:    colorGreen,
	}
	worst := 0
	for _, row := range report.Quarters {
		evt.Fields = append(evt.Fields, Field{
			Name: fmt.Sprintf("%s (%s)", row.Name, row.Status),
			Value: fmt.Sprintf("%d/%d days, %d%% used",
				row.UsedCapacity, row.FinalCapacity, row.UtilizationPercentage),
		})
		if row.UtilizationPercentage > worst {
			worst = row.UtilizationPercentage
		}
	}
	if len(report.Quarters) == 0 {
		evt.Body = "No quarters defined."
		return evt
	}
	evt.Body = fmt.Sprintf("%d quarters, busiest at %d%% utilization.", len(report.Quarters), worst)
	evt.Color = UtilizationColor(worst)
	return evt
}
