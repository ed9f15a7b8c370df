package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sign-in providers
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

// User 계정 (identity backend 저장용)
type User struct {
	ID           string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	Email        string    `gorm:"column:email;size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;size:255" json:"-"`
	DisplayName  string    `gorm:"column:display_name;size:100" json:"display_name"`
	Provider     string    `gorm:"column:provider;size:20;not null" json:"provider"`
	OAuthSubject *string   `gorm:"column:oauth_subject;size:255;uniqueIndex" json:"-"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns a UUID when the caller left the id empty.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// SessionUser is the signed-in user as seen by the rest of the application.
// Premium is always false; there is no subscription backend.
type SessionUser struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Provider    string `json:"provider"`
	Premium     bool   `json:"premium"`
}

// ToSessionUser converts the stored account into its session view
func (u *User) ToSessionUser() *SessionUser {
	return &SessionUser{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Provider:    u.Provider,
	}
}
