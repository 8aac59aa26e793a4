// Package planning holds the capacity-planning core: the size taxonomy, the
// capacity calculator, the placement rule, and the quarter lifecycle. Every
// function here is pure: callers materialize state, the package returns
// values and change sets, and the persistence layer applies them.
package planning

import "fmt"

// T-shirt size codes.
const (
	SizeXS = "XS"
	SizeS  = "S"
	SizeM  = "M"
	SizeL  = "L"
	SizeXL = "XL"
)

// Epic statuses.
const (
	StatusBacklog    = "backlog"
	StatusPlanned    = "planned"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Quarter statuses.
const (
	QuarterPlanning  = "planning"
	QuarterActive    = "active"
	QuarterCompleted = "completed"
)

// sizeDays maps each size code to its fixed day cost. Changing these numbers
// is a policy change, not a runtime parameter.
var sizeDays = map[string]int{
	SizeXS: 5,
	SizeS:  10,
	SizeM:  20,
	SizeL:  40,
	SizeXL: 60,
}

// Sizes lists the valid size codes in ascending cost order.
var Sizes = []string{SizeXS, SizeS, SizeM, SizeL, SizeXL}

// Priorities lists the valid priority codes. They order display only; no
// capacity math reads them.
var Priorities = []string{"P0", "P1", "P2", "P3"}

// ErrUnknownSize reports a size code outside the taxonomy. A wrong day cost
// would corrupt every downstream capacity figure, so unknown codes fail fast
// instead of defaulting.
type ErrUnknownSize struct {
	Size string
}

func (e *ErrUnknownSize) Error() string {
	return fmt.Sprintf("planning: unknown size %q", e.Size)
}

// Days returns the day cost for a size code.
func Days(size string) (int, error) {
	d, ok := sizeDays[size]
	if !ok {
		return 0, &ErrUnknownSize{Size: size}
	}
	return d, nil
}

// ValidSize reports whether size is part of the taxonomy.
func ValidSize(size string) bool {
	_, ok := sizeDays[size]
	return ok
}

// ValidPriority reports whether p is one of P0..P3.
func ValidPriority(p string) bool {
	for _, v := range Priorities {
		if p == v {
			return true
		}
	}
	return false
}
