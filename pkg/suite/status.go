package suite

// Status controls whether a test or suite is eligible to run.
type Status int

const (
	// Normal runs unless a focused test exists somewhere in the run.
	Normal Status = iota
	// Focused runs, and forces every unfocused sibling at every level to be skipped.
	Focused
	// Ignored never runs but still appears in the report as skipped.
	Ignored
)

// String returns the lower-case status name.
func (s Status) String() string {
	switch s {
	case Normal:
		return "normal"
	case Focused:
		return "focused"
	case Ignored:
		return "ignored"
	default:
		return "unknown"
	}
}
