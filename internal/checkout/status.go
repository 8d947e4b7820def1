package checkout

type Status string

const (
	StatusEditing    Status = "EDITING"
	StatusSubmitting Status = "SUBMITTING"
	StatusDone       Status = "DONE"
	StatusFailed     Status = "FAILED"
)

var transitions = map[Status][]Status{
	StatusEditing:    {StatusSubmitting},
	StatusSubmitting: {StatusDone, StatusFailed},
	StatusFailed:     {StatusSubmitting, StatusEditing},
}

// IsTerminal reports whether no further transition is possible. A new
// purchase starts a new flow.
func (s Status) IsTerminal() bool {
	return s == StatusDone
}

// String representation (for logging)
func (s Status) String() string {
	return string(s)
}

func CanTransitionTo(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
