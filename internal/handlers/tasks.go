package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/RoastedBrotato/TaskManagementSystem/internal/middleware"
	"github.com/RoastedBrotato/TaskManagementSystem/internal/models"
	"github.com/RoastedBrotato/TaskManagementSystem/internal/policy"
	"github.com/RoastedBrotato/TaskManagementSystem/internal/services"
)

// ReminderScheduler queues a due-date reminder for a task. Nil-safe from the
// handler's point of view: scheduling is best-effort and optional.
type ReminderScheduler interface {
	ScheduleReminder(task *models.Task) error
}

type TaskHandler struct {
	tasks     services.TaskService
	reminders ReminderScheduler
}

func NewTaskHandler(tasks services.TaskService, reminders ReminderScheduler) *TaskHandler {
	return &TaskHandler{tasks: tasks, reminders: reminders}
}

type CreateTaskRequest struct {
	Title          string            `json:"title" binding:"required"`
	Description    string            `json:"description"`
	DueDate        time.Time         `json:"due_date"`
	Status         models.TaskStatus `json:"status"`
	AssignedUserID *uint             `json:"assigned_user_id"`
}

type UpdateTaskRequest struct {
	Title          string            `json:"title" binding:"required"`
	Description    string            `json:"description"`
	DueDate        time.Time         `json:"due_date"`
	Status         models.TaskStatus `json:"status" binding:"required"`
	AssignedUserID *uint             `json:"assigned_user_id"`
}

type UpdateTaskStatusRequest struct {
	Status models.TaskStatus `json:"status" binding:"required"`
}

func (h *TaskHandler) GetTasks(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}
	if !policy.CanListTasks(principal) {
		respondForbidden(c)
		return
	}

	tasks, err := h.tasks.GetAll()
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// GetMyTasks lists the caller's own assignments. No policy gate: every
// authenticated user may see their own tasks.
func (h *TaskHandler) GetMyTasks(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	tasks, err := h.tasks.GetByAssignedUser(principal.UserID)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	// Existence is resolved before ownership: a missing task is 404 even
	// for callers who could not have viewed it.
	task, err := h.tasks.GetByID(id)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	if !policy.CanViewTask(principal, task) {
		respondForbidden(c)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}
	if !policy.CanCreateTask(principal) {
		respondForbidden(c)
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task := models.Task{
		Title:          req.Title,
		Description:    req.Description,
		DueDate:        req.DueDate,
		Status:         req.Status,
		AssignedUserID: req.AssignedUserID,
	}
	if err := h.tasks.Create(&task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create task"})
		return
	}

	h.scheduleReminder(&task)

	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.tasks.GetByID(id)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	decision := policy.ForTaskUpdate(principal, task)
	reassigned := decision == policy.AllowFullUpdate &&
		!sameAssignee(task.AssignedUserID, req.AssignedUserID)

	if !policy.ApplyTaskUpdate(task, policy.TaskUpdateRequest{
		Title:          req.Title,
		Description:    req.Description,
		DueDate:        req.DueDate,
		Status:         req.Status,
		AssignedUserID: req.AssignedUserID,
	}, decision) {
		respondForbidden(c)
		return
	}

	if err := h.tasks.Update(task); err != nil {
		handleTaskError(c, err)
		return
	}

	if reassigned {
		h.scheduleReminder(task)
	}

	c.JSON(http.StatusOK, gin.H{"message": "task updated successfully"})
}

func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.tasks.UpdateStatus(id, req.Status, principal.UserID)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	if !updated {
		// Deliberately collapsed: "no such task" and "not your task" are
		// the same answer through this entry point.
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "task status updated successfully"})
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}
	if !policy.CanDeleteTask(principal) {
		respondForbidden(c)
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.tasks.Delete(id); err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

func (h *TaskHandler) scheduleReminder(task *models.Task) {
	if h.reminders == nil || task.AssignedUserID == nil || task.DueDate.IsZero() {
		return
	}
	if err := h.reminders.ScheduleReminder(task); err != nil {
		// Best-effort: the task itself is already persisted.
		log.Printf("failed to schedule reminder for task %d: %v", task.ID, err)
	}
}

func sameAssignee(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func handleTaskError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process task request"})
}
