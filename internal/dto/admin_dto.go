package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/aegis-go-api/internal/models"
)

// UserFilter narrows the admin user listing.
type UserFilter struct {
	Role       string
	Status     string
	Department string
	Search     string
	Page       int
	Limit      int
}

// AuditLogFilter narrows the admin audit trail listing.
type AuditLogFilter struct {
	UserID     *uuid.UUID
	Action     string
	EntityType string
	Page       int
	Limit      int
}

// AuditLogResponse is a serialized audit trail entry.
type AuditLogResponse struct {
	ID         uuid.UUID      `json:"id"`
	User       *UserResponse  `json:"user,omitempty"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   *uuid.UUID     `json:"entity_id"`
	Metadata   map[string]any `json:"metadata"`
	IPAddress  *string        `json:"ip_address"`
	CreatedAt  time.Time      `json:"created_at"`
}

// NewAuditLogResponse converts an audit row plus the acting user when
// still resolvable.
func NewAuditLogResponse(log models.AuditLog, user *models.User) AuditLogResponse {
	resp := AuditLogResponse{
		ID:         log.ID,
		Action:     log.Action,
		EntityType: log.EntityType,
		EntityID:   log.EntityID,
		Metadata:   map[string]any(log.Metadata),
		IPAddress:  log.IPAddress,
		CreatedAt:  log.CreatedAt,
	}
	if user != nil {
		u := NewUserResponse(*user)
		resp.User = &u
	}
	return resp
}

// SystemStats is the admin dashboard aggregate snapshot.
type SystemStats struct {
	TotalUsers          int64            `json:"total_users"`
	ActiveUsers         int64            `json:"active_users"`
	UsersByRole         map[string]int64 `json:"users_by_role"`
	TotalGrievances     int64            `json:"total_grievances"`
	GrievancesByStatus  map[string]int64 `json:"grievances_by_status"`
	TotalCourses        int64            `json:"total_courses"`
	TotalOpportunities  int64            `json:"total_opportunities"`
	TotalApplications   int64            `json:"total_applications"`
}

// PaginatedResponse wraps a page of items with its cursor arithmetic.
type PaginatedResponse[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginatedResponse computes total_pages from the row count.
func NewPaginatedResponse[T any](items []T, total int64, page, limit int) PaginatedResponse[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return PaginatedResponse[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: pages,
	}
}
