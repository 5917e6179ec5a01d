package service

import (
	"fmt"

	"github.com/lemonqwest/lemonqwest/internal/model"
)

// Decision is an explicit permit/deny with the rule that produced it.
type Decision struct {
	Allowed bool
	Reason  string
}

func permit() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Policy answers authorization questions for one role. Each use case
// evaluates its policy exactly once, up front, before any state is touched.
type Policy interface {
	CanCompleteTask(actorID int64, task *model.Task) Decision
	CanUndoTask(actorID int64, task *model.Task) Decision
	CanDeleteTask(actorID int64, task *model.Task) Decision
	CanAdjustBalance(actorID, targetUserID int64) Decision
}

// PolicyFor returns the authorization policy for a role.
func PolicyFor(role model.Role) Policy {
	if role == model.RoleCaregiver {
		return caregiverPolicy{}
	}
	return childPolicy{}
}

// childPolicy limits children to their own tasks and forbids administration.
type childPolicy struct{}

func (childPolicy) CanCompleteTask(actorID int64, task *model.Task) Decision {
	if task.AssignedTo != actorID {
		return deny(fmt.Sprintf("task %d is assigned to another user", task.ID))
	}
	return permit()
}

func (childPolicy) CanUndoTask(actorID int64, task *model.Task) Decision {
	if task.AssignedTo != actorID {
		return deny(fmt.Sprintf("task %d is assigned to another user", task.ID))
	}
	return permit()
}

func (childPolicy) CanDeleteTask(int64, *model.Task) Decision {
	return deny("only caregivers can delete tasks")
}

func (childPolicy) CanAdjustBalance(int64, int64) Decision {
	return deny("only caregivers can adjust balances")
}

// caregiverPolicy grants the administrative override over any family member.
type caregiverPolicy struct{}

func (caregiverPolicy) CanCompleteTask(int64, *model.Task) Decision {
	return permit()
}

func (caregiverPolicy) CanUndoTask(int64, *model.Task) Decision {
	return permit()
}

func (caregiverPolicy) CanDeleteTask(int64, *model.Task) Decision {
	return permit()
}

func (caregiverPolicy) CanAdjustBalance(int64, int64) Decision {
	return permit()
}
