package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/aegis-go-api/internal/models"
)

// UserResponse is the public projection of a user, embedded wherever a
// person is referenced (submitter, instructor, poster, commenter).
type UserResponse struct {
	ID             uuid.UUID       `json:"id"`
	Email          string          `json:"email"`
	Role           models.UserRole `json:"role"`
	FirstName      string          `json:"first_name"`
	LastName       string          `json:"last_name"`
	ProfilePicture *string         `json:"profile_picture"`
	Department     *string         `json:"department"`
}

// NewUserResponse converts a model into its public projection.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:             user.ID,
		Email:          user.Email,
		Role:           user.Role,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		ProfilePicture: user.ProfilePicture,
		Department:     user.Department,
	}
}

// UserListResponse is the admin-facing projection, adding account state.
type UserListResponse struct {
	ID             uuid.UUID         `json:"id"`
	Email          string            `json:"email"`
	Role           models.UserRole   `json:"role"`
	Status         models.UserStatus `json:"status"`
	FirstName      string            `json:"first_name"`
	LastName       string            `json:"last_name"`
	ProfilePicture *string           `json:"profile_picture"`
	Department     *string           `json:"department"`
	LastLoginAt    *time.Time        `json:"last_login_at"`
	CreatedAt      time.Time         `json:"created_at"`
}

// NewUserListResponse converts a model into the admin projection.
func NewUserListResponse(user models.User) UserListResponse {
	return UserListResponse{
		ID:             user.ID,
		Email:          user.Email,
		Role:           user.Role,
		Status:         user.Status,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		ProfilePicture: user.ProfilePicture,
		Department:     user.Department,
		LastLoginAt:    user.LastLoginAt,
		CreatedAt:      user.CreatedAt,
	}
}

// UpdateRoleRequest changes a user's role.
type UpdateRoleRequest struct {
	Role models.UserRole `json:"role" validate:"required,oneof=student faculty authority admin"`
}

// UpdateStatusRequest changes a user's account status.
type UpdateStatusRequest struct {
	Status models.UserStatus `json:"status" validate:"required,oneof=active inactive suspended"`
}
