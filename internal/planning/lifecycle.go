package planning

import "github.com/planably/quartermaster/internal/models"

// QuarterChange is a pending status update for one quarter.
type QuarterChange struct {
	QuarterID string
	Status    string
}

// EpicChange is a pending update for one epic. When ClearQuarter is set the
// epic's quarter assignment and position are removed along with the status
// change.
type EpicChange struct {
	EpicID       string
	Status       string
	ClearQuarter bool
}

// ChangeSet is the intent a lifecycle transition returns. The persistence
// layer applies all changes, then the removal, atomically; the core performs
// no I/O itself.
type ChangeSet struct {
	Quarters        []QuarterChange
	Epics           []EpicChange
	RemoveQuarterID string
}

// StartQuarter promotes the quarter with id to active. Any other quarter on
// the same team currently active is demoted to planning first, keeping the
// single-active-quarter-per-team invariant. teamQuarters is the owning team's
// full quarter set. Starting an already-active quarter yields an empty change
// set.
func StartQuarter(teamQuarters []models.Quarter, id string) ChangeSet {
	var cs ChangeSet
	var target *models.Quarter
	for i := range teamQuarters {
		if teamQuarters[i].ID == id {
			target = &teamQuarters[i]
			break
		}
	}
	if target == nil || target.Status == QuarterActive {
		return cs
	}

	for _, q := range teamQuarters {
		if q.ID != id && q.TeamID == target.TeamID && q.Status == QuarterActive {
			cs.Quarters = append(cs.Quarters, QuarterChange{QuarterID: q.ID, Status: QuarterPlanning})
		}
	}
	cs.Quarters = append(cs.Quarters, QuarterChange{QuarterID: id, Status: QuarterActive})
	return cs
}

// CompleteQuarter marks the quarter completed and bulk-transitions its
// planned epics to in_progress. Epics already in_progress or completed are
// untouched. Completing an already-completed quarter yields an empty change
// set; completing a quarter that was never started is permitted.
func CompleteQuarter(quarter models.Quarter, items []models.Epic) ChangeSet {
	var cs ChangeSet
	if quarter.Status == QuarterCompleted {
		return cs
	}

	for _, e := range items {
		if e.QuarterID != nil && *e.QuarterID == quarter.ID && e.Status == StatusPlanned {
			cs.Epics = append(cs.Epics, EpicChange{EpicID: e.ID, Status: StatusInProgress})
		}
	}
	cs.Quarters = append(cs.Quarters, QuarterChange{QuarterID: quarter.ID, Status: QuarterCompleted})
	return cs
}

// DeleteQuarter resets every epic referencing the quarter, regardless of
// status, back to the backlog, then removes the quarter record. The resets must be
// applied before the removal to avoid orphaned references.
func DeleteQuarter(quarter models.Quarter, items []models.Epic) ChangeSet {
	cs := ChangeSet{RemoveQuarterID: quarter.ID}
	for _, e := range items {
		if e.QuarterID != nil && *e.QuarterID == quarter.ID {
			cs.Epics = append(cs.Epics, EpicChange{EpicID: e.ID, Status: StatusBacklog, ClearQuarter: true})
		}
	}
	return cs
}
