package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/RoastedBrotato/TaskManagementSystem/internal/middleware"
	"github.com/RoastedBrotato/TaskManagementSystem/internal/models"
	"github.com/RoastedBrotato/TaskManagementSystem/internal/policy"
	"github.com/RoastedBrotato/TaskManagementSystem/internal/services"
)

type UserHandler struct {
	users services.UserService
}

func NewUserHandler(users services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type CreateUserRequest struct {
	Username string      `json:"username" binding:"required,min=3,max=50"`
	Password string      `json:"password" binding:"required,min=6"`
	Email    string      `json:"email" binding:"required,email"`
	Role     models.Role `json:"role" binding:"required"`
}

type UpdateUserRequest struct {
	Email    string      `json:"email" binding:"required,email"`
	Role     models.Role `json:"role" binding:"required"`
	Password string      `json:"password"`
}

func (h *UserHandler) GetUsers(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}
	if !policy.CanListUsers(principal) {
		respondForbidden(c)
		return
	}

	users, err := h.users.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}

	response := make([]models.User, 0, len(users))
	for _, user := range users {
		response = append(response, user.Sanitized())
	}
	c.JSON(http.StatusOK, response)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	user, err := h.users.GetByID(id)
	if err != nil {
		handleUserError(c, err)
		return
	}

	if !policy.CanViewUser(principal, user.ID) {
		respondForbidden(c)
		return
	}

	c.JSON(http.StatusOK, user.Sanitized())
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}
	if !policy.CanCreateUser(principal) {
		respondForbidden(c)
		return
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := models.User{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Role:     req.Role,
	}
	if err := h.users.Create(&user); err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "username already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, user.Sanitized())
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}
	if !policy.CanUpdateUser(principal) {
		respondForbidden(c)
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.GetByID(id)
	if err != nil {
		handleUserError(c, err)
		return
	}

	user.Email = req.Email
	user.Role = req.Role
	user.Password = req.Password

	if err := h.users.Update(user); err != nil {
		handleUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user updated successfully"})
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}
	if !policy.CanDeleteUser(principal) {
		respondForbidden(c)
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.users.Delete(id); err != nil {
		handleUserError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

func handleUserError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process user request"})
}

func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func respondForbidden(c *gin.Context) {
	c.JSON(http.StatusForbidden, gin.H{
		"error":   "forbidden",
		"message": "You do not have access to this resource",
	})
}

func respondUnauthenticated(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error":   "unauthenticated",
		"message": "User not authenticated",
	})
}
