package models

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleUser:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

type UserProfile struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" gorm:"uniqueIndex;size:255" bson:"email"`
	Role      Role      `json:"role" gorm:"size:16" bson:"role"`
	Disabled  bool      `json:"disabled" bson:"disabled"`
	PhotoURL  string    `json:"photoURL,omitempty" bson:"photoURL,omitempty"`
	Address   string    `json:"address,omitempty" bson:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (UserProfile) TableName() string { return "users" }

func (u UserProfile) IsAdmin() bool { return u.Role == RoleAdmin }

// UnknownUser is the placeholder shown for orders whose owner cannot be resolved.
func UnknownUser(id string) UserProfile {
	return UserProfile{ID: id, Name: "Unknown user", Role: RoleUser}
}

// Credential is the identity record behind a profile. It never leaves the store layer
// except for password checks.
type Credential struct {
	UserID       string    `json:"-" gorm:"primaryKey;size:36" bson:"_id"`
	Email        string    `json:"-" gorm:"uniqueIndex;size:255" bson:"email"`
	PasswordHash string    `json:"-" bson:"passwordHash"`
	CreatedAt    time.Time `json:"-" bson:"createdAt"`
}

type SignupData struct {
	Name     string `json:"name" binding:"required,min=2"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

func (s SignupData) Validate() error {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	return validateStruct(s)
}

type LoginData struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ProfileUpdate carries the fields a user may change on their own profile.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Name     *string `json:"name" binding:"omitempty,min=2"`
	Address  *string `json:"address"`
	PhotoURL *string `json:"photoURL"`
}

func (p ProfileUpdate) Validate() error {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		p.Name = &name
	}
	return validateStruct(p)
}
