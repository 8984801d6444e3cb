package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/RoastedBrotato/TaskManagementSystem/internal/database"
	"github.com/RoastedBrotato/TaskManagementSystem/internal/handlers"
	"github.com/RoastedBrotato/TaskManagementSystem/internal/middleware"
	"github.com/RoastedBrotato/TaskManagementSystem/internal/models"
	"github.com/RoastedBrotato/TaskManagementSystem/internal/policy"
	"github.com/RoastedBrotato/TaskManagementSystem/internal/repositories"
	"github.com/RoastedBrotato/TaskManagementSystem/internal/services"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type userFixture struct {
	router *gin.Engine
	users  services.UserService
	hasher services.PasswordHasher
}

func newUserFixture(t *testing.T, principal policy.Principal) *userFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	userRepo := repositories.NewUserRepository(db)
	taskRepo := repositories.NewTaskRepository(db)
	tokenRepo := repositories.NewRefreshTokenRepository(db)
	hasher := services.NewBcryptHasher(bcrypt.MinCost)

	f := &userFixture{
		users:  services.NewUserService(userRepo, taskRepo, tokenRepo, hasher),
		hasher: hasher,
	}

	handler := handlers.NewUserHandler(f.users)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		middleware.SetPrincipal(c, principal)
		c.Next()
	})
	router.GET("/users", handler.GetUsers)
	router.POST("/users", handler.CreateUser)
	router.GET("/users/:id", handler.GetUser)
	router.PUT("/users/:id", handler.UpdateUser)
	router.DELETE("/users/:id", handler.DeleteUser)
	f.router = router
	return f
}

func (f *userFixture) seedUser(t *testing.T, username string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Password: "secret123",
		Email:    username + "@example.com",
		Role:     role,
	}
	require.NoError(t, f.users.Create(user))
	return user
}

func (f *userFixture) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestListUsersAdminOnly(t *testing.T) {
	f := newUserFixture(t, ownerPrincipal)
	f.seedUser(t, "alice", models.RoleUser)

	w := f.do(http.MethodGet, "/users", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := newUserFixture(t, adminPrincipal)
	admin.seedUser(t, "alice", models.RoleUser)
	admin.seedUser(t, "bob", models.RoleUser)

	w = admin.do(http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var users []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	require.Len(t, users, 2)
	for _, u := range users {
		assert.NotContains(t, u, "password")
	}
}

func TestGetUserSelfOrAdmin(t *testing.T) {
	f := newUserFixture(t, policy.Principal{UserID: 1, Role: models.RoleUser})
	self := f.seedUser(t, "alice", models.RoleUser)
	other := f.seedUser(t, "bob", models.RoleUser)
	require.Equal(t, uint(1), self.ID)

	w := f.do(http.MethodGet, fmt.Sprintf("/users/%d", self.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, fmt.Sprintf("/users/%d", other.ID), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := newUserFixture(t, adminPrincipal)
	target := admin.seedUser(t, "carol", models.RoleUser)
	w = admin.do(http.MethodGet, fmt.Sprintf("/users/%d", target.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetUserMissingIs404(t *testing.T) {
	// The lookup happens before the self-or-admin check, so a plain user
	// probing an absent id still gets 404.
	f := newUserFixture(t, ownerPrincipal)

	w := f.do(http.MethodGet, "/users/42", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateUser(t *testing.T) {
	body := map[string]interface{}{
		"username": "newuser",
		"password": "secret123",
		"email":    "newuser@example.com",
		"role":     "User",
	}

	f := newUserFixture(t, ownerPrincipal)
	w := f.do(http.MethodPost, "/users", body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := newUserFixture(t, adminPrincipal)
	w = admin.do(http.MethodPost, "/users", body)
	require.Equal(t, http.StatusCreated, w.Code)

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "newuser", created["username"])
	assert.NotContains(t, created, "password")

	// Duplicate usernames conflict.
	w = admin.do(http.MethodPost, "/users", body)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateUserValidation(t *testing.T) {
	f := newUserFixture(t, adminPrincipal)

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{"short password", map[string]interface{}{
			"username": "u1234", "password": "abc", "email": "a@b.com", "role": "User",
		}},
		{"bad email", map[string]interface{}{
			"username": "u1234", "password": "secret123", "email": "nope", "role": "User",
		}},
		{"unknown role", map[string]interface{}{
			"username": "u1234", "password": "secret123", "email": "a@b.com", "role": "Owner",
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := f.do(http.MethodPost, "/users", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestUpdateUserAdminOnly(t *testing.T) {
	// Even a self-update goes through the admin gate.
	f := newUserFixture(t, policy.Principal{UserID: 1, Role: models.RoleUser})
	self := f.seedUser(t, "alice", models.RoleUser)

	w := f.do(http.MethodPut, fmt.Sprintf("/users/%d", self.ID), map[string]interface{}{
		"email": "new@example.com",
		"role":  "User",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateUserChangesEmailAndRole(t *testing.T) {
	f := newUserFixture(t, adminPrincipal)
	target := f.seedUser(t, "alice", models.RoleUser)

	w := f.do(http.MethodPut, fmt.Sprintf("/users/%d", target.ID), map[string]interface{}{
		"email": "promoted@example.com",
		"role":  "Admin",
	})
	require.Equal(t, http.StatusOK, w.Code)

	stored, err := f.users.GetByID(target.ID)
	require.NoError(t, err)
	assert.Equal(t, "promoted@example.com", stored.Email)
	assert.Equal(t, models.RoleAdmin, stored.Role)
	assert.True(t, f.hasher.Verify(stored.Password, "secret123"),
		"omitted password keeps the old credential")
}

func TestUpdateUserNewPassword(t *testing.T) {
	f := newUserFixture(t, adminPrincipal)
	target := f.seedUser(t, "alice", models.RoleUser)

	w := f.do(http.MethodPut, fmt.Sprintf("/users/%d", target.ID), map[string]interface{}{
		"email":    "alice@example.com",
		"role":     "User",
		"password": "replacement",
	})
	require.Equal(t, http.StatusOK, w.Code)

	stored, err := f.users.GetByID(target.ID)
	require.NoError(t, err)
	assert.True(t, f.hasher.Verify(stored.Password, "replacement"))
	assert.False(t, f.hasher.Verify(stored.Password, "secret123"))
}

func TestUpdateUserMissing(t *testing.T) {
	f := newUserFixture(t, adminPrincipal)

	w := f.do(http.MethodPut, "/users/42", map[string]interface{}{
		"email": "a@b.com",
		"role":  "User",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteUserAdminOnly(t *testing.T) {
	f := newUserFixture(t, ownerPrincipal)
	target := f.seedUser(t, "alice", models.RoleUser)

	w := f.do(http.MethodDelete, fmt.Sprintf("/users/%d", target.ID), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := newUserFixture(t, adminPrincipal)
	target = admin.seedUser(t, "bob", models.RoleUser)

	w = admin.do(http.MethodDelete, fmt.Sprintf("/users/%d", target.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = admin.do(http.MethodDelete, fmt.Sprintf("/users/%d", target.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvalidUserID(t *testing.T) {
	f := newUserFixture(t, adminPrincipal)

	w := f.do(http.MethodGet, "/users/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
