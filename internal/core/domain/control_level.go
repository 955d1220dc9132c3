package domain

// ControlLevel defines the enforcement strictness applied to a budgeted
// segment value during a budget check.
type ControlLevel string

const (
	ControlNone      ControlLevel = "NONE"       // no enforcement
	ControlTrackOnly ControlLevel = "TRACK_ONLY" // recorded, never blocks
	ControlAdvisory  ControlLevel = "ADVISORY"   // warned, never blocks
	ControlAbsolute  ControlLevel = "ABSOLUTE"   // blocks the transaction
)

// controlPriority orders control levels from least to most restrictive.
// ABSOLUTE > ADVISORY > TRACK_ONLY > NONE.
var controlPriority = map[ControlLevel]int{
	ControlNone:      1,
	ControlTrackOnly: 2,
	ControlAdvisory:  3,
	ControlAbsolute:  4,
}

// IsValid reports whether c is one of the known control levels.
func (c ControlLevel) IsValid() bool {
	_, ok := controlPriority[c]
	return ok
}

// Priority returns the strictness rank of c; unknown levels rank 0.
func (c ControlLevel) Priority() int {
	return controlPriority[c]
}

// StrictestControlLevel returns the most restrictive level in the list.
// An empty list resolves to NONE.
func StrictestControlLevel(levels []ControlLevel) ControlLevel {
	if len(levels) == 0 {
		return ControlNone
	}
	strictest := levels[0]
	for _, level := range levels[1:] {
		if level.Priority() > strictest.Priority() {
			strictest = level
		}
	}
	return strictest
}
