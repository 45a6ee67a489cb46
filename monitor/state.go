package monitor

// State is the monitor's severity. Severity is monotonic non-decreasing
// except on an explicit reset (successful refresh or a freshly observed
// token), which returns it to StateActive.
type State int

const (
	StateActive State = iota
	StateWarning
	StateCritical
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateWarning:
		return "warning"
	case StateCritical:
		return "critical"
	case StateExpired:
		return "expired"
	}
	return "unknown"
}
