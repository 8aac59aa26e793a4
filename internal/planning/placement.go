package planning

import (
	"fmt"

	"github.com/planably/quartermaster/internal/models"
)

// Placement is the authorized outcome of a placement attempt: the status,
// quarter assignment, and position the persistence layer should write.
// QuarterID and Position are nil for a move to the backlog.
type Placement struct {
	Status    string
	QuarterID *string
	Position  *int
}

// CapacityError rejects a placement whose day cost exceeds the target
// quarter's remaining capacity. Attempted and Available feed the caller's
// user-facing message.
type CapacityError struct {
	Attempted int
	Available int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("planning: capacity exceeded: need %d days, %d available", e.Attempted, e.Available)
}

// AttemptPlace decides whether item may be placed into the quarter identified
// by targetQuarterID, or returns it to the backlog when targetQuarterID is
// empty. allItems is the team's full epic set; occupants of the target quarter
// are derived from it, excluding item itself so that reordering within the
// same quarter never self-blocks on its own size.
//
// The rule is stateless and re-evaluated on every attempt. Two concurrent
// placements that individually fit but jointly overflow are both accepted
// under last-write-wins persistence; callers wanting stronger guarantees must
// re-run this against freshly-read state before committing.
func AttemptPlace(item models.Epic, targetQuarterID string, team models.Team, allItems []models.Epic) (Placement, error) {
	if targetQuarterID == "" {
		return Placement{Status: StatusBacklog}, nil
	}

	cost, err := Days(item.Size)
	if err != nil {
		return Placement{}, err
	}

	occupants := make([]models.Epic, 0, len(allItems))
	maxPos := 0
	for _, e := range allItems {
		if e.QuarterID == nil || *e.QuarterID != targetQuarterID {
			continue
		}
		if e.ID == item.ID {
			continue
		}
		occupants = append(occupants, e)
		if e.Position != nil && *e.Position > maxPos {
			maxPos = *e.Position
		}
	}

	calc := ComputeCapacity(team, occupants)
	if cost > calc.RemainingCapacity {
		return Placement{}, &CapacityError{Attempted: cost, Available: calc.RemainingCapacity}
	}

	pos := maxPos + 1
	qid := targetQuarterID
	return Placement{Status: StatusPlanned, QuarterID: &qid, Position: &pos}, nil
}
