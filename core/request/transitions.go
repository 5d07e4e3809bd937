package request

import (
	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/user"
)

var transitions = map[string]map[string][]string{
	KindMaterial: {
		StatusPending:  {StatusApproved, StatusRejected},
		StatusApproved: {StatusCompleted},
	},
	KindCleaning: {
		StatusPending:    {StatusInProgress, StatusCompleted},
		StatusInProgress: {StatusCompleted},
	},
	KindToilet: {
		StatusPending:    {StatusInProgress, StatusCompleted},
		StatusInProgress: {StatusCompleted},
	},
}

// handlerRoles are the roles handling each kind of request, besides admins.
var handlerRoles = map[string]string{
	KindCleaning: user.RoleStaffCleaning,
	KindToilet:   user.RoleStaffToilet,
}

var ErrInvalidTransition = core.NewFieldError("status", "invalid status transition")

func checkTransition(kind, from, to string) error {
	if !core.ContainsString(transitions[kind][from], to) {
		return ErrInvalidTransition
	}
	return nil
}

func canHandle(actor user.User, kind string) bool {
	if actor.IsAdmin() {
		return true
	}
	role, ok := handlerRoles[kind]
	return ok && actor.HasRole(role)
}

// handledKinds returns the kinds `actor` handles (nil for admins: every kind).
func handledKinds(actor user.User) []string {
	if actor.IsAdmin() {
		return nil
	}
	kinds := make([]string, 0, 1)
	for kind, role := range handlerRoles {
		if actor.HasRole(role) {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}
