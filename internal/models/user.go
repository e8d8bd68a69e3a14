package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRole determines what a user may do across the API surface.
type UserRole string

const (
	RoleStudent   UserRole = "student"
	RoleFaculty   UserRole = "faculty"
	RoleAuthority UserRole = "authority"
	RoleAdmin     UserRole = "admin"
)

// UserStatus is the account lifecycle state.
type UserStatus string

const (
	StatusActive    UserStatus = "active"
	StatusInactive  UserStatus = "inactive"
	StatusSuspended UserStatus = "suspended"
)

// User is an account provisioned on first Google sign-in. Users are never
// hard-deleted; status transitions cover deactivation.
type User struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email          string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	GoogleID       string     `gorm:"size:255;uniqueIndex;not null" json:"-"`
	Role           UserRole   `gorm:"size:16;not null;default:'student'" json:"role"`
	Status         UserStatus `gorm:"size:16;not null;default:'active'" json:"status"`
	FirstName      string     `gorm:"size:255;not null" json:"first_name"`
	LastName       string     `gorm:"size:255" json:"last_name"`
	ProfilePicture *string    `gorm:"size:512" json:"profile_picture"`
	RollNumber     *string    `gorm:"size:64" json:"roll_number"`
	BatchYear      *int       `json:"batch_year"`
	Program        *string    `gorm:"size:128" json:"program"`
	Department     *string    `gorm:"size:128" json:"department"`
	EmployeeID     *string    `gorm:"size:64" json:"employee_id"`
	Designation    *string    `gorm:"size:128" json:"designation"`
	LastLoginAt    *time.Time `json:"last_login_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// BeforeCreate assigns a UUID so the same models work on Postgres and the
// sqlite driver used in tests.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsActive reports whether the account may hold a session.
func (u User) IsActive() bool {
	return u.Status == StatusActive
}
