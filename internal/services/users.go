package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/RoastedBrotato/TaskManagementSystem/internal/models"
	"github.com/RoastedBrotato/TaskManagementSystem/internal/repositories"
)

var (
	ErrUsernameTaken = errors.New("username already exists")
)

type UserService interface {
	// Authenticate returns the user on a username/password match and
	// (nil, nil) on any credential failure. Callers cannot tell an unknown
	// username from a wrong password.
	Authenticate(username, password string) (*models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error
	Delete(id uint) error
	GetByID(id uint) (*models.User, error)
	GetAll() ([]models.User, error)
}

type UserServiceImpl struct {
	users  repositories.UserRepository
	tasks  repositories.TaskRepository
	tokens repositories.RefreshTokenRepository
	hasher PasswordHasher
}

func NewUserService(users repositories.UserRepository, tasks repositories.TaskRepository, tokens repositories.RefreshTokenRepository, hasher PasswordHasher) *UserServiceImpl {
	return &UserServiceImpl{users: users, tasks: tasks, tokens: tokens, hasher: hasher}
}

func (s *UserServiceImpl) Authenticate(username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !s.hasher.Verify(user.Password, password) {
		return nil, nil
	}
	return user, nil
}

// Create hashes the supplied plaintext password before persisting. The
// stored entity, digest included, is written back into user; strip with
// Sanitized before exposing it.
func (s *UserServiceImpl) Create(user *models.User) error {
	if _, err := s.users.GetByUsername(user.Username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	digest, err := s.hasher.Hash(user.Password)
	if err != nil {
		return err
	}
	user.Password = digest

	return s.users.Add(user)
}

// Update persists email and role changes. An empty password field leaves the
// stored digest untouched; a non-empty value that differs from the stored
// digest is re-hashed. Username is immutable after creation.
func (s *UserServiceImpl) Update(user *models.User) error {
	existing, err := s.users.GetByID(user.ID)
	if err != nil {
		return err
	}

	user.Username = existing.Username
	if user.Password == "" || user.Password == existing.Password {
		user.Password = existing.Password
	} else {
		digest, err := s.hasher.Hash(user.Password)
		if err != nil {
			return err
		}
		user.Password = digest
	}

	return s.users.Update(user)
}

// Delete removes the user, nulls out any task assignments pointing at them,
// and revokes their refresh tokens.
func (s *UserServiceImpl) Delete(id uint) error {
	if err := s.users.Delete(id); err != nil {
		return err
	}
	if err := s.tasks.ClearAssignedUser(id); err != nil {
		return err
	}
	return s.tokens.DeleteForUser(id)
}

func (s *UserServiceImpl) GetByID(id uint) (*models.User, error) {
	return s.users.GetByID(id)
}

func (s *UserServiceImpl) GetAll() ([]models.User, error) {
	return s.users.GetAll()
}
