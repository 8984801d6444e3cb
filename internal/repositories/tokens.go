package repositories

import (
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"github.com/RoastedBrotato/TaskManagementSystem/internal/models"
)

type RefreshTokenRepository interface {
	Add(token *models.RefreshToken) error
	// GetValid returns the token only if it exists and has not expired.
	GetValid(token uuid.UUID, now time.Time) (*models.RefreshToken, error)
	Delete(token uuid.UUID) error
	DeleteForUser(userID uint) error
}

type GormRefreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) *GormRefreshTokenRepository {
	return &GormRefreshTokenRepository{db: db}
}

func (r *GormRefreshTokenRepository) Add(token *models.RefreshToken) error {
	return r.db.Create(token).Error
}

func (r *GormRefreshTokenRepository) GetValid(token uuid.UUID, now time.Time) (*models.RefreshToken, error) {
	var stored models.RefreshToken
	err := r.db.Where("token = ? AND expires_at > ?", token, now).First(&stored).Error
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *GormRefreshTokenRepository) Delete(token uuid.UUID) error {
	return r.db.Where("token = ?", token).Delete(&models.RefreshToken{}).Error
}

func (r *GormRefreshTokenRepository) DeleteForUser(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error
}
