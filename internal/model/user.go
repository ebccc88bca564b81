package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoleUser is the role assigned at registration. Roles are carried on the
// record but no request is authorized based on them.
const RoleUser = "user"

// User represents a dashboard account.
type User struct {
	ID           string     `json:"_id" gorm:"type:varchar(36);primaryKey"`
	Name         string     `json:"name" gorm:"size:50;not null" validate:"required,max=50"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null" validate:"required,emailaddr"`
	Age          *int       `json:"age,omitempty" validate:"omitempty,min=0,max=150"`
	PasswordHash string     `json:"-" gorm:"column:password;size:255;not null"` // Never expose in JSON
	Role         string     `json:"role,omitempty" gorm:"size:20;default:'user'"`
	IsActive     bool       `json:"isActive" gorm:"default:true;index"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt" gorm:"index"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// Sanitized returns a copy of the user without the password hash.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.PasswordHash = ""
	return &cp
}

// HasPassword reports whether a password hash is loaded on the record.
func (u *User) HasPassword() bool {
	return u != nil && u.PasswordHash != ""
}
