package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// TaskStatus is the closed set of workflow states. There is no enforced
// transition graph: any status may follow any other.
type TaskStatus string

const (
	StatusPending    TaskStatus = "Pending"
	StatusInProgress TaskStatus = "InProgress"
	StatusCompleted  TaskStatus = "Completed"
)

func (s TaskStatus) Valid() bool {
	return s == StatusPending || s == StatusInProgress || s == StatusCompleted
}

func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	status := TaskStatus(str)
	if !status.Valid() {
		return fmt.Errorf("invalid task status %q", str)
	}
	*s = status
	return nil
}

type Task struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description"`
	DueDate     time.Time  `json:"due_date"`
	Status      TaskStatus `json:"status" gorm:"not null;default:'Pending'"`

	// AssignedUserID is a weak reference: the referenced user may be
	// deleted independently, at which point the assignment is nulled out.
	AssignedUserID *uint `json:"assigned_user_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AssignedTo reports whether the task is assigned to the given user.
func (t *Task) AssignedTo(userID uint) bool {
	return t.AssignedUserID != nil && *t.AssignedUserID == userID
}
