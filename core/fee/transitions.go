package fee

import "github.com/trezcool/yuva/core"

// overdue is only ever set by SweepOverdue.
var transitions = map[string][]string{
	StatusPending: {StatusPaid, StatusCancelled, StatusOverdue},
	StatusOverdue: {StatusPaid, StatusCancelled},
}

var ErrInvalidTransition = core.NewFieldError("status", "invalid status transition")

func checkTransition(from, to string) error {
	if !core.ContainsString(transitions[from], to) {
		return ErrInvalidTransition
	}
	return nil
}
