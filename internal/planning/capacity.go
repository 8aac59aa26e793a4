package planning

import (
	"math"

	"github.com/planably/quartermaster/internal/models"
)

// oncallDaysPerAssignment is the fixed day cost of one on-call assignment for
// one sprint.
const oncallDaysPerAssignment = 10

// MemberCapacity is one roster entry's contribution to team capacity.
type MemberCapacity struct {
	MemberID     string `json:"memberId"`
	Name         string `json:"name"`
	VacationDays int    `json:"vacationDays"`
	Capacity     int    `json:"capacity"`
}

// CapacityCalculation is the full capacity breakdown for one quarter. It is
// derived fresh on every query and never persisted or mutated in place.
type CapacityCalculation struct {
	IndividualCapacities  []MemberCapacity `json:"individualCapacities"`
	TotalTeamCapacity     int              `json:"totalTeamCapacity"`
	OncallDeduction       int              `json:"oncallDeduction"`
	CapacityAfterOncall   int              `json:"capacityAfterOncall"`
	BufferAmount          int              `json:"bufferAmount"`
	FinalCapacity         int              `json:"finalCapacity"`
	UsedCapacity          int              `json:"usedCapacity"`
	RemainingCapacity     int              `json:"remainingCapacity"`
	UtilizationPercentage int              `json:"utilizationPercentage"`
}

// ComputeCapacity converts a team's roster, absence, and overhead parameters
// plus the epics occupying a quarter into an available-capacity breakdown.
//
// Every intermediate is clamped at its own step: malformed input (negative
// vacation days, buffer above 100%, on-call exceeding the roster) can never
// produce a negative capacity or a utilization outside [0,100]. Only epics
// with status planned consume capacity; in_progress and completed work was
// spent historically and must not double-count against current planning.
func ComputeCapacity(team models.Team, itemsInQuarter []models.Epic) CapacityCalculation {
	workingDays := team.QuarterWorkingDays
	if workingDays < 0 {
		workingDays = 0
	}

	individuals := make([]MemberCapacity, len(team.Members))
	total := 0
	for i, m := range team.Members {
		vacation := m.VacationDays
		if vacation < 0 {
			vacation = 0
		}
		capacity := workingDays - vacation
		if capacity < 0 {
			capacity = 0
		}
		individuals[i] = MemberCapacity{MemberID: m.ID, Name: m.Name, VacationDays: vacation, Capacity: capacity}
		total += capacity
	}

	sprints := team.SprintsInQuarter
	if sprints < 0 {
		sprints = 0
	}
	oncall := team.OncallPerSprint
	if oncall < 0 {
		oncall = 0
	}
	deduction := sprints * oncall * oncallDaysPerAssignment
	if deduction > total {
		deduction = total
	}
	afterOncall := total - deduction

	buffer := team.BufferPercentage
	if buffer < 0 {
		buffer = 0
	}
	if buffer > 1 {
		buffer = 1
	}
	bufferAmount := int(math.Round(float64(afterOncall) * buffer))

	final := afterOncall - bufferAmount
	if final < 0 {
		final = 0
	}

	used := 0
	for _, e := range itemsInQuarter {
		if e.Status != StatusPlanned {
			continue
		}
		if d, ok := sizeDays[e.Size]; ok {
			used += d
		}
	}

	remaining := final - used
	if remaining < 0 {
		remaining = 0
	}

	var utilization int
	switch {
	case final > 0:
		utilization = int(math.Round(float64(used) / float64(final) * 100))
		if utilization > 100 {
			utilization = 100
		}
	case used > 0:
		// Capacity collapsed to zero but work exists: report saturated.
		utilization = 100
	}

	return CapacityCalculation{
		IndividualCapacities:  individuals,
		TotalTeamCapacity:     total,
		OncallDeduction:       deduction,
		CapacityAfterOncall:   afterOncall,
		BufferAmount:          bufferAmount,
		FinalCapacity:         final,
		UsedCapacity:          used,
		RemainingCapacity:     remaining,
		UtilizationPercentage: utilization,
	}
}

// CanFit reports whether an epic's day cost fits in the remaining capacity of
// an already-computed breakdown. Unknown sizes never fit.
func CanFit(epic models.Epic, calc CapacityCalculation) bool {
	d, ok := sizeDays[epic.Size]
	if !ok {
		return false
	}
	return d <= calc.RemainingCapacity
}
