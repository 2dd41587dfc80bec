package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User is an account that owns recipes and grocery lists. Its ID is the uid
// that namespaces every document path.
type User struct {
	ID           string    `gorm:"type:varchar(128);primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateUser inserts a new user, assigning an id when missing.
func CreateUser(db *gorm.DB, user *User) error {
	if user.ID == "" {
		user.ID = NewID()
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return db.Create(user).Error
}

// GetUser retrieves a user by ID
func GetUser(db *gorm.DB, id string) (*User, error) {
	var user User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by their (case-insensitive) email.
func GetUserByEmail(db *gorm.DB, email string) (*User, error) {
	var user User
	if err := db.First(&user, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes a user from the database
func DeleteUser(db *gorm.DB, id string) error {
	return db.Delete(&User{}, "id = ?", id).Error
}
