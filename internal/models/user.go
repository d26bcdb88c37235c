package models

import (
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model  `json:"-"`
	ID          uint   `json:"id" gorm:"primaryKey"`
	Username    string `json:"username" gorm:"uniqueIndex"`
	Email       string `json:"email" gorm:"uniqueIndex"` // Ensure email is unique across all users
	Locale      string `json:"locale" gorm:"size:10;default:'en'"`
	Password    string `json:"-"`                                         // Store hashed password, ignore for JSON serialization
	FirebaseUID string `json:"firebase_uid,omitempty" gorm:"uniqueIndex"` // Link to Firebase User UID
}

// UserCompact is the minimal user shape embedded in enriched API responses.
type UserCompact struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// ToCompact converts a User to its compact representation.
func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Username: u.Username}
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Locale   string `json:"locale,omitempty" validate:"omitempty,bcp47_language_tag"`
}

type CreateLocalUserRequest struct {
	Username string `json:"username" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Locale   string `json:"locale,omitempty" validate:"omitempty,bcp47_language_tag"`
	Password string `json:"password" validate:"required,min=8"`
}

// UpdateUserRequest defines the request body for updating a user profile.
type UpdateUserRequest struct {
	Username string `json:"username,omitempty" validate:"omitempty,min=2,max=50"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Locale   string `json:"locale,omitempty" validate:"omitempty,bcp47_language_tag"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims.
// The token ID doubles as the credential id that binds a device registration
// to one login session.
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// CredentialID returns the session identifier for this login.
func (c *JwtCustomClaims) CredentialID() string {
	return c.RegisteredClaims.ID
}
