package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Role is the closed set of roles a user can hold. Authorization decisions
// switch exhaustively on this type.
type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	role := Role(s)
	if !role.Valid() {
		return fmt.Errorf("invalid role %q", s)
	}
	*r = role
	return nil
}

type User struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Username string `json:"username" gorm:"unique;not null"`
	Email    string `json:"email" gorm:"not null"`
	// Password holds the bcrypt digest once the user is persisted. It is
	// never serialized into responses.
	Password string `json:"-" gorm:"not null"`
	Role     Role   `json:"role" gorm:"not null;default:'User'"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Sanitized returns a copy safe to hand to the transport layer.
func (u User) Sanitized() User {
	u.Password = ""
	return u
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
