// Package policy holds every authorization rule in one place, as pure
// functions of (principal, operation, target). The transport layer derives
// the principal from a verified token and calls through here before touching
// any service; nothing in this package reaches storage or the network.
package policy

import (
	"time"

	"github.com/RoastedBrotato/TaskManagementSystem/internal/models"
)

// Principal is the authenticated caller: id plus role, as asserted by a
// verified credential.
type Principal struct {
	UserID uint
	Role   models.Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// TaskUpdateDecision is the outcome of evaluating a full task update.
type TaskUpdateDecision int

const (
	// DenyUpdate rejects the update outright.
	DenyUpdate TaskUpdateDecision = iota
	// AllowFullUpdate replaces every mutable field from the request.
	AllowFullUpdate
	// AllowStatusOnly applies only the status field; title, description,
	// due date and assignee keep their prior values.
	AllowStatusOnly
)

// CanListUsers, CanCreateUser, CanUpdateUser and CanDeleteUser gate the
// admin-only user management surface.
func CanListUsers(p Principal) bool  { return p.IsAdmin() }
func CanCreateUser(p Principal) bool { return p.IsAdmin() }
func CanUpdateUser(p Principal) bool { return p.IsAdmin() }
func CanDeleteUser(p Principal) bool { return p.IsAdmin() }

// CanViewUser allows admins to view anyone and users to view themselves.
func CanViewUser(p Principal, targetUserID uint) bool {
	return p.IsAdmin() || p.UserID == targetUserID
}

// Task listing, creation and deletion are admin-only. Non-admins reach their
// own tasks through the per-assignee listing.
func CanListTasks(p Principal) bool  { return p.IsAdmin() }
func CanCreateTask(p Principal) bool { return p.IsAdmin() }
func CanDeleteTask(p Principal) bool { return p.IsAdmin() }

// CanViewTask allows admins and the task's assignee. Callers must resolve
// existence first: a missing task is NOT-FOUND, never FORBIDDEN.
func CanViewTask(p Principal, task *models.Task) bool {
	return p.IsAdmin() || task.AssignedTo(p.UserID)
}

// ForTaskUpdate decides how much of an update request the principal may
// apply to an existing task.
func ForTaskUpdate(p Principal, task *models.Task) TaskUpdateDecision {
	if p.IsAdmin() {
		return AllowFullUpdate
	}
	if task.AssignedTo(p.UserID) {
		return AllowStatusOnly
	}
	return DenyUpdate
}

// TaskUpdateRequest carries the full set of mutable task fields from the
// boundary. Which of them take effect depends on the decision.
type TaskUpdateRequest struct {
	Title          string
	Description    string
	DueDate        time.Time
	Status         models.TaskStatus
	AssignedUserID *uint
}

// ApplyTaskUpdate merges the request into the task according to the
// decision. Returns false when the decision denies the update, leaving the
// task untouched.
func ApplyTaskUpdate(task *models.Task, req TaskUpdateRequest, decision TaskUpdateDecision) bool {
	switch decision {
	case AllowFullUpdate:
		task.Title = req.Title
		task.Description = req.Description
		task.DueDate = req.DueDate
		task.Status = req.Status
		task.AssignedUserID = req.AssignedUserID
		return true
	case AllowStatusOnly:
		task.Status = req.Status
		return true
	default:
		return false
	}
}
