package services

import (
	"fmt"
	"time"

	"github.com/RoastedBrotato/TaskManagementSystem/internal/cache"
	"github.com/RoastedBrotato/TaskManagementSystem/internal/models"
)

const (
	taskCacheTTL     = 30 * time.Minute
	taskListCacheTTL = 10 * time.Minute
)

// CachedTaskService is a read-through decorator over TaskService. Cache
// failures degrade to the underlying service; a broken cache never makes an
// operation fail.
type CachedTaskService struct {
	inner TaskService
	cache cache.Cache
}

func NewCachedTaskService(inner TaskService, c cache.Cache) *CachedTaskService {
	return &CachedTaskService{inner: inner, cache: c}
}

func taskKey(id uint) string          { return fmt.Sprintf("task:%d", id) }
func userTasksKey(userID uint) string { return fmt.Sprintf("tasks:user:%d", userID) }

const allTasksKey = "tasks:all"

func (s *CachedTaskService) Create(task *models.Task) error {
	if err := s.inner.Create(task); err != nil {
		return err
	}
	s.invalidateLists(task.AssignedUserID)
	s.cache.Set(taskKey(task.ID), task, taskCacheTTL)
	return nil
}

func (s *CachedTaskService) GetByID(id uint) (*models.Task, error) {
	var cached models.Task
	if err := s.cache.Get(taskKey(id), &cached); err == nil {
		return &cached, nil
	}

	task, err := s.inner.GetByID(id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(taskKey(id), task, taskCacheTTL)
	return task, nil
}

func (s *CachedTaskService) GetAll() ([]models.Task, error) {
	var cached []models.Task
	if err := s.cache.Get(allTasksKey, &cached); err == nil {
		return cached, nil
	}

	tasks, err := s.inner.GetAll()
	if err != nil {
		return nil, err
	}
	s.cache.Set(allTasksKey, tasks, taskListCacheTTL)
	return tasks, nil
}

func (s *CachedTaskService) GetByAssignedUser(userID uint) ([]models.Task, error) {
	var cached []models.Task
	if err := s.cache.Get(userTasksKey(userID), &cached); err == nil {
		return cached, nil
	}

	tasks, err := s.inner.GetByAssignedUser(userID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(userTasksKey(userID), tasks, taskListCacheTTL)
	return tasks, nil
}

func (s *CachedTaskService) Update(task *models.Task) error {
	if err := s.inner.Update(task); err != nil {
		return err
	}
	s.cache.Delete(taskKey(task.ID))
	s.invalidateLists(task.AssignedUserID)
	return nil
}

func (s *CachedTaskService) Delete(id uint) error {
	// Resolve the assignee before the row disappears so their listing can
	// be invalidated too.
	task, getErr := s.inner.GetByID(id)

	if err := s.inner.Delete(id); err != nil {
		return err
	}

	s.cache.Delete(taskKey(id))
	if getErr == nil {
		s.invalidateLists(task.AssignedUserID)
	} else {
		s.cache.DeletePattern("tasks:user:*")
		s.cache.Delete(allTasksKey)
	}
	return nil
}

func (s *CachedTaskService) UpdateStatus(taskID uint, status models.TaskStatus, actingUserID uint) (bool, error) {
	ok, err := s.inner.UpdateStatus(taskID, status, actingUserID)
	if err != nil || !ok {
		return ok, err
	}
	s.cache.Delete(taskKey(taskID), allTasksKey, userTasksKey(actingUserID))
	return true, nil
}

func (s *CachedTaskService) invalidateLists(assignedUserID *uint) {
	s.cache.Delete(allTasksKey)
	if assignedUserID != nil {
		s.cache.Delete(userTasksKey(*assignedUserID))
	}
}
