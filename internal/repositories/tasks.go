package repositories

import (
	"gorm.io/gorm"

	"github.com/RoastedBrotato/TaskManagementSystem/internal/models"
)

type TaskRepository interface {
	GetByID(id uint) (*models.Task, error)
	GetAll() ([]models.Task, error)
	GetByAssignedUser(userID uint) ([]models.Task, error)
	Add(task *models.Task) error
	Update(task *models.Task) error
	Delete(id uint) error
	// ClearAssignedUser nulls out the assignment on every task assigned to
	// the given user. Called when that user is deleted.
	ClearAssignedUser(userID uint) error
}

type GormTaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

func (r *GormTaskRepository) GetByID(id uint) (*models.Task, error) {
	var task models.Task
	if err := r.db.First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *GormTaskRepository) GetAll() ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Order("id").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *GormTaskRepository) GetByAssignedUser(userID uint) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Where("assigned_user_id = ?", userID).Order("id").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *GormTaskRepository) Add(task *models.Task) error {
	return r.db.Create(task).Error
}

func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

func (r *GormTaskRepository) Delete(id uint) error {
	result := r.db.Delete(&models.Task{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormTaskRepository) ClearAssignedUser(userID uint) error {
	return r.db.Model(&models.Task{}).
		Where("assigned_user_id = ?", userID).
		Update("assigned_user_id", nil).Error
}
