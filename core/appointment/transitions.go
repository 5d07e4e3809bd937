package appointment

import (
	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/user"
)

// party is who may trigger a transition.
type party int

const (
	recipient party = iota
	requester
)

var transitions = map[string]map[string]party{
	StatusPending: {
		StatusApproved:  recipient,
		StatusRejected:  recipient,
		StatusCancelled: requester,
	},
	StatusApproved: {
		StatusCompleted: recipient,
		StatusCancelled: requester,
	},
}

var ErrInvalidTransition = core.NewFieldError("status", "invalid status transition")

// checkTransition validates moving `a` to `status` on behalf of `actor`.
// Admins may act for either party.
func checkTransition(a Appointment, status string, actor user.User) error {
	who, ok := transitions[a.Status][status]
	if !ok {
		return ErrInvalidTransition
	}
	if actor.IsAdmin() {
		return nil
	}
	switch who {
	case recipient:
		if actor.ID == a.RecipientID {
			return nil
		}
	case requester:
		if actor.ID == a.RequesterID {
			return nil
		}
	}
	return core.ErrPermissionDenied
}
