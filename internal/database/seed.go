package database

import (
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/RoastedBrotato/TaskManagementSystem/internal/models"
	"github.com/RoastedBrotato/TaskManagementSystem/internal/services"
)

// Seed populates an empty database with a default admin, a regular user and
// a handful of tasks. No-op when users already exist.
func Seed(db *gorm.DB, hasher services.PasswordHasher) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("database already contains data, skipping seed")
		return nil
	}

	log.Println("seeding database")

	adminDigest, err := hasher.Hash("admin123")
	if err != nil {
		return err
	}
	userDigest, err := hasher.Hash("user123")
	if err != nil {
		return err
	}

	admin := models.User{Username: "admin", Password: adminDigest, Email: "admin@example.com", Role: models.RoleAdmin}
	user := models.User{Username: "user", Password: userDigest, Email: "user@example.com", Role: models.RoleUser}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	if err := db.Create(&user).Error; err != nil {
		return err
	}

	now := time.Now()
	tasks := []models.Task{
		{
			Title:          "Complete project proposal",
			Description:    "Create a detailed project proposal document",
			DueDate:        now.AddDate(0, 0, 7),
			Status:         models.StatusPending,
			AssignedUserID: &admin.ID,
		},
		{
			Title:          "Review code changes",
			Description:    "Review pull request #42",
			DueDate:        now.AddDate(0, 0, 2),
			Status:         models.StatusInProgress,
			AssignedUserID: &user.ID,
		},
		{
			Title:          "Fix login bug",
			Description:    "Fix the authentication issue reported by QA",
			DueDate:        now.AddDate(0, 0, 1),
			Status:         models.StatusPending,
			AssignedUserID: &user.ID,
		},
	}
	if err := db.Create(&tasks).Error; err != nil {
		return err
	}

	log.Println("database seeded successfully")
	return nil
}
