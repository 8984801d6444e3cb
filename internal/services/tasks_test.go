package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/RoastedBrotato/TaskManagementSystem/internal/models"
	"github.com/RoastedBrotato/TaskManagementSystem/internal/repositories"
	"github.com/RoastedBrotato/TaskManagementSystem/internal/services"
)

type TaskServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service services.TaskService
}

func (suite *TaskServiceTestSuite) SetupTest() {
	suite.db = openTestDB(suite.T())
	suite.service = services.NewTaskService(repositories.NewTaskRepository(suite.db))
}

func (suite *TaskServiceTestSuite) createTask(assignedTo *uint, status models.TaskStatus) *models.Task {
	task := &models.Task{
		Title:          "test task",
		Description:    "something to do",
		DueDate:        time.Now().AddDate(0, 0, 7),
		Status:         status,
		AssignedUserID: assignedTo,
	}
	suite.Require().NoError(suite.service.Create(task))
	return task
}

func (suite *TaskServiceTestSuite) TestCreateDefaultsToPending() {
	task := &models.Task{Title: "no status"}
	suite.Require().NoError(suite.service.Create(task))

	stored, err := suite.service.GetByID(task.ID)
	suite.Require().NoError(err)
	suite.Equal(models.StatusPending, stored.Status)
}

func (suite *TaskServiceTestSuite) TestUpdateStatusByAssignee() {
	ownerID := uint(2)
	task := suite.createTask(&ownerID, models.StatusPending)

	updated, err := suite.service.UpdateStatus(task.ID, models.StatusCompleted, ownerID)
	suite.Require().NoError(err)
	suite.True(updated)

	stored, err := suite.service.GetByID(task.ID)
	suite.Require().NoError(err)
	suite.Equal(models.StatusCompleted, stored.Status)
}

func (suite *TaskServiceTestSuite) TestUpdateStatusByOtherUserFails() {
	ownerID := uint(2)
	task := suite.createTask(&ownerID, models.StatusPending)

	updated, err := suite.service.UpdateStatus(task.ID, models.StatusCompleted, 3)
	suite.Require().NoError(err)
	suite.False(updated)

	stored, err := suite.service.GetByID(task.ID)
	suite.Require().NoError(err)
	suite.Equal(models.StatusPending, stored.Status, "status must be unchanged after a denied update")
}

func (suite *TaskServiceTestSuite) TestUpdateStatusMissingTask() {
	updated, err := suite.service.UpdateStatus(999, models.StatusCompleted, 2)
	suite.NoError(err, "a missing task is not an error through this entry point")
	suite.False(updated)
}

func (suite *TaskServiceTestSuite) TestUpdateStatusUnassignedTask() {
	task := suite.createTask(nil, models.StatusPending)

	updated, err := suite.service.UpdateStatus(task.ID, models.StatusInProgress, 2)
	suite.NoError(err)
	suite.False(updated)
}

func (suite *TaskServiceTestSuite) TestStatusHasNoTransitionGraph() {
	ownerID := uint(2)
	task := suite.createTask(&ownerID, models.StatusCompleted)

	// Completed back to Pending is allowed: no enforced ordering.
	updated, err := suite.service.UpdateStatus(task.ID, models.StatusPending, ownerID)
	suite.Require().NoError(err)
	suite.True(updated)
}

func (suite *TaskServiceTestSuite) TestGetByAssignedUser() {
	ownerID := uint(2)
	otherID := uint(3)
	suite.createTask(&ownerID, models.StatusPending)
	suite.createTask(&ownerID, models.StatusInProgress)
	suite.createTask(&otherID, models.StatusPending)
	suite.createTask(nil, models.StatusPending)

	tasks, err := suite.service.GetByAssignedUser(ownerID)
	suite.Require().NoError(err)
	suite.Len(tasks, 2)
	for _, task := range tasks {
		suite.Equal(ownerID, *task.AssignedUserID)
	}
}

func (suite *TaskServiceTestSuite) TestDelete() {
	task := suite.createTask(nil, models.StatusPending)

	suite.Require().NoError(suite.service.Delete(task.ID))

	_, err := suite.service.GetByID(task.ID)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)

	suite.ErrorIs(suite.service.Delete(task.ID), gorm.ErrRecordNotFound)
}

func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}
