package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/RoastedBrotato/TaskManagementSystem/internal/models"
	"github.com/RoastedBrotato/TaskManagementSystem/internal/repositories"
)

type TaskService interface {
	Create(task *models.Task) error
	GetByID(id uint) (*models.Task, error)
	GetAll() ([]models.Task, error)
	GetByAssignedUser(userID uint) ([]models.Task, error)
	Update(task *models.Task) error
	Delete(id uint) error
	// UpdateStatus sets the status of a task on behalf of its assignee.
	// Returns false when the task does not exist or is not assigned to
	// actingUserID; the two causes are deliberately indistinguishable.
	UpdateStatus(taskID uint, status models.TaskStatus, actingUserID uint) (bool, error)
}

type TaskServiceImpl struct {
	tasks repositories.TaskRepository
}

func NewTaskService(tasks repositories.TaskRepository) *TaskServiceImpl {
	return &TaskServiceImpl{tasks: tasks}
}

func (s *TaskServiceImpl) Create(task *models.Task) error {
	if task.Status == "" {
		task.Status = models.StatusPending
	}
	return s.tasks.Add(task)
}

func (s *TaskServiceImpl) GetByID(id uint) (*models.Task, error) {
	return s.tasks.GetByID(id)
}

func (s *TaskServiceImpl) GetAll() ([]models.Task, error) {
	return s.tasks.GetAll()
}

func (s *TaskServiceImpl) GetByAssignedUser(userID uint) ([]models.Task, error) {
	return s.tasks.GetByAssignedUser(userID)
}

// Update persists the task as given. The caller is responsible for having
// already applied the full-vs-status-only field merge through the policy
// package.
func (s *TaskServiceImpl) Update(task *models.Task) error {
	return s.tasks.Update(task)
}

func (s *TaskServiceImpl) Delete(id uint) error {
	return s.tasks.Delete(id)
}

func (s *TaskServiceImpl) UpdateStatus(taskID uint, status models.TaskStatus, actingUserID uint) (bool, error) {
	task, err := s.tasks.GetByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	if !task.AssignedTo(actingUserID) {
		return false, nil
	}

	task.Status = status
	if err := s.tasks.Update(task); err != nil {
		return false, err
	}
	return true, nil
}
