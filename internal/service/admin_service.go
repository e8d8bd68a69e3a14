package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/aegis-go-api/internal/dto"
	"github.com/noah-isme/aegis-go-api/internal/models"
	"github.com/noah-isme/aegis-go-api/internal/repository"
)

var (
	// ErrUserNotFound covers missing accounts.
	ErrUserNotFound = errors.New("user not found")
	// ErrSelfChange rejects an admin changing their own role or status.
	ErrSelfChange = errors.New("cannot change your own role or status")
	// ErrDepartmentExists rejects duplicate department names.
	ErrDepartmentExists = errors.New("department already exists")
)

// AdminService exposes account administration, the audit trail and the
// dashboard stats. Handlers gate every call behind the admin role.
type AdminService interface {
	ListUsers(ctx context.Context, filter dto.UserFilter) (dto.PaginatedResponse[dto.UserListResponse], error)
	GetUser(ctx context.Context, userID uuid.UUID) (*dto.UserListResponse, error)
	UpdateUserRole(ctx context.Context, actor models.User, userID uuid.UUID, role models.UserRole, clientIP string) (*dto.UserListResponse, error)
	UpdateUserStatus(ctx context.Context, actor models.User, userID uuid.UUID, status models.UserStatus, clientIP string) (*dto.UserListResponse, error)
	ListAuditLogs(ctx context.Context, filter dto.AuditLogFilter) (dto.PaginatedResponse[dto.AuditLogResponse], error)
	Stats(ctx context.Context) (*dto.SystemStats, error)
	ListDepartments(ctx context.Context) ([]models.Department, error)
	CreateDepartment(ctx context.Context, actor models.User, name string, description *string) (*models.Department, error)
	SeedSampleData(ctx context.Context) error
}

type adminService struct {
	users       repository.UserRepository
	departments repository.DepartmentRepository
	audit       repository.AuditRepository
	stats       repository.AdminStatsRepository
	logger      zerolog.Logger
}

// NewAdminService constructs the admin service.
func NewAdminService(
	users repository.UserRepository,
	departments repository.DepartmentRepository,
	audit repository.AuditRepository,
	stats repository.AdminStatsRepository,
	logger zerolog.Logger,
) AdminService {
	return &adminService{
		users:       users,
		departments: departments,
		audit:       audit,
		stats:       stats,
		logger:      logger.With().Str("component", "admin_service").Logger(),
	}
}

func (s *adminService) ListUsers(ctx context.Context, filter dto.UserFilter) (dto.PaginatedResponse[dto.UserListResponse], error) {
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return dto.PaginatedResponse[dto.UserListResponse]{}, err
	}

	responses := make([]dto.UserListResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, dto.NewUserListResponse(user))
	}

	page, limit := repository.NormalizeUserPage(filter.Page, filter.Limit)
	return dto.NewPaginatedResponse(responses, total, page, limit), nil
}

func (s *adminService) GetUser(ctx context.Context, userID uuid.UUID) (*dto.UserListResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewUserListResponse(*user)
	return &resp, nil
}

func (s *adminService) UpdateUserRole(ctx context.Context, actor models.User, userID uuid.UUID, role models.UserRole, clientIP string) (*dto.UserListResponse, error) {
	if actor.ID == userID {
		return nil, ErrSelfChange
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	oldRole := user.Role
	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actor.ID, "user_role_changed", userID, clientIP, map[string]any{
		"old_role": string(oldRole),
		"new_role": string(role),
	})

	resp := dto.NewUserListResponse(*user)
	return &resp, nil
}

func (s *adminService) UpdateUserStatus(ctx context.Context, actor models.User, userID uuid.UUID, status models.UserStatus, clientIP string) (*dto.UserListResponse, error) {
	if actor.ID == userID {
		return nil, ErrSelfChange
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	oldStatus := user.Status
	user.Status = status
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actor.ID, "user_status_changed", userID, clientIP, map[string]any{
		"old_status": string(oldStatus),
		"new_status": string(status),
	})

	resp := dto.NewUserListResponse(*user)
	return &resp, nil
}

func (s *adminService) ListAuditLogs(ctx context.Context, filter dto.AuditLogFilter) (dto.PaginatedResponse[dto.AuditLogResponse], error) {
	entries, total, err := s.audit.List(ctx, filter)
	if err != nil {
		return dto.PaginatedResponse[dto.AuditLogResponse]{}, err
	}

	actorIDs := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		if e.UserID != nil {
			actorIDs = append(actorIDs, *e.UserID)
		}
	}
	actors, err := s.users.FindByIDs(ctx, actorIDs)
	if err != nil {
		return dto.PaginatedResponse[dto.AuditLogResponse]{}, err
	}

	responses := make([]dto.AuditLogResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, dto.NewAuditLogResponse(e, lookupUser(actors, e.UserID)))
	}

	page, limit := repository.NormalizeAuditPage(filter.Page, filter.Limit)
	return dto.NewPaginatedResponse(responses, total, page, limit), nil
}

func (s *adminService) Stats(ctx context.Context) (*dto.SystemStats, error) {
	return s.stats.Collect(ctx)
}

func (s *adminService) ListDepartments(ctx context.Context) ([]models.Department, error) {
	return s.departments.List(ctx)
}

func (s *adminService) CreateDepartment(ctx context.Context, actor models.User, name string, description *string) (*models.Department, error) {
	if _, err := s.departments.FindByName(ctx, name); err == nil {
		return nil, ErrDepartmentExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	department := models.Department{
		Name:        name,
		Description: description,
	}
	if err := s.departments.Create(ctx, &department); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actor.ID, "department_created", department.ID, "", map[string]any{
		"name": name,
	})
	return &department, nil
}

// SeedSampleData populates departments and one demo account per role so
// a fresh development database is immediately usable. Existing rows are
// left alone, so repeated calls are harmless.
func (s *adminService) SeedSampleData(ctx context.Context) error {
	for _, name := range []string{
		"Computer Science and Engineering",
		"Electrical Engineering",
		"Mechanical Engineering",
		"Student Affairs",
	} {
		if _, err := s.departments.FindByName(ctx, name); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := s.departments.Create(ctx, &models.Department{Name: name}); err != nil {
			return err
		}
	}

	for _, seed := range []struct {
		email string
		role  models.UserRole
	}{
		{"demo.student@students.iitmandi.ac.in", models.RoleStudent},
		{"demo.faculty@iitmandi.ac.in", models.RoleFaculty},
		{"demo.authority@iitmandi.ac.in", models.RoleAuthority},
		{"demo.admin@iitmandi.ac.in", models.RoleAdmin},
	} {
		if _, err := s.users.FindByEmail(ctx, seed.email); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		user := models.User{
			Email:     seed.email,
			GoogleID:  "seed:" + seed.email,
			Role:      seed.role,
			Status:    models.StatusActive,
			FirstName: "Demo",
			LastName:  string(seed.role),
		}
		if err := s.users.Create(ctx, &user); err != nil {
			return err
		}
	}

	s.logger.Info().Msg("seeded sample departments and accounts")
	return nil
}

func (s *adminService) findUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *adminService) recordAudit(ctx context.Context, actorID uuid.UUID, action string, entityID uuid.UUID, clientIP string, metadata map[string]any) {
	entry := models.AuditLog{
		UserID:     &actorID,
		Action:     action,
		EntityType: entityTypeForAction(action),
		EntityID:   &entityID,
		Metadata:   datatypes.JSONMap(metadata),
	}
	if clientIP != "" {
		entry.IPAddress = &clientIP
	}
	if err := s.audit.Create(ctx, &entry); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record audit entry")
	}
}

func entityTypeForAction(action string) string {
	switch action {
	case "department_created":
		return "department"
	default:
		return "user"
	}
}
