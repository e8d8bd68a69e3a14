package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/aegis-go-api/internal/models"
	"github.com/noah-isme/aegis-go-api/internal/repository"
	"github.com/noah-isme/aegis-go-api/internal/session"
	"github.com/noah-isme/aegis-go-api/pkg/google"
)

var (
	// ErrEmailDomainNotAllowed rejects sign-ins from outside the campus.
	ErrEmailDomainNotAllowed = errors.New("email domain is not allowed")
	// ErrAccountNotActive rejects sign-ins for suspended or deactivated
	// accounts.
	ErrAccountNotActive = errors.New("account is not active")
)

// GoogleAuthenticator is the slice of the OAuth client the auth service
// needs; tests substitute a stub.
type GoogleAuthenticator interface {
	AuthCodeURL(state string) string
	FetchProfile(ctx context.Context, code string) (*google.Profile, error)
}

// AuthService drives the Google sign-in flow and session lifecycle.
type AuthService interface {
	LoginURL(state string) string
	HandleCallback(ctx context.Context, code, clientIP string) (*models.User, string, error)
	Logout(ctx context.Context, token string) error
	DevLogin(ctx context.Context, email string) (*models.User, string, error)
	UpdateOwnRole(ctx context.Context, user models.User, role models.UserRole, clientIP string) (*models.User, error)
}

type authService struct {
	users          repository.UserRepository
	audit          repository.AuditRepository
	sessions       session.Store
	oauth          GoogleAuthenticator
	allowedDomains []string
	logger         zerolog.Logger
}

// NewAuthService constructs the auth service.
func NewAuthService(
	users repository.UserRepository,
	audit repository.AuditRepository,
	sessions session.Store,
	oauth GoogleAuthenticator,
	allowedDomains []string,
	logger zerolog.Logger,
) AuthService {
	return &authService{
		users:          users,
		audit:          audit,
		sessions:       sessions,
		oauth:          oauth,
		allowedDomains: allowedDomains,
		logger:         logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) LoginURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

func (s *authService) HandleCallback(ctx context.Context, code, clientIP string) (*models.User, string, error) {
	profile, err := s.oauth.FetchProfile(ctx, code)
	if err != nil {
		return nil, "", err
	}

	email := strings.ToLower(strings.TrimSpace(profile.Email))
	if !s.domainAllowed(email) {
		s.logger.Warn().Str("email", email).Msg("sign-in rejected: domain not allowed")
		return nil, "", ErrEmailDomainNotAllowed
	}

	user, err := s.upsertUser(ctx, profile, email)
	if err != nil {
		return nil, "", err
	}

	if !user.IsActive() {
		return nil, "", ErrAccountNotActive
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	s.recordAudit(ctx, user.ID, "user_login", clientIP, map[string]any{
		"email": user.Email,
	})

	return user, token, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Delete(ctx, token); err != nil && !errors.Is(err, session.ErrNotFound) {
		return err
	}
	return nil
}

// DevLogin mints a session for the user with the given email without the
// OAuth round-trip. It is only routed in non-production environments.
func (s *authService) DevLogin(ctx context.Context, email string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = &models.User{
			Email:     email,
			GoogleID:  "dev:" + email,
			Role:      roleForEmail(email),
			Status:    models.StatusActive,
			FirstName: "Dev",
			LastName:  "User",
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, "", err
		}
	} else if err != nil {
		return nil, "", err
	}

	if !user.IsActive() {
		return nil, "", ErrAccountNotActive
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// UpdateOwnRole lets a signed-in user reassign their own role. It is
// only routed in non-production environments, where switching between
// role perspectives beats maintaining four test accounts.
func (s *authService) UpdateOwnRole(ctx context.Context, user models.User, role models.UserRole, clientIP string) (*models.User, error) {
	oldRole := user.Role
	user.Role = role
	if err := s.users.Update(ctx, &user); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, user.ID, "user_role_self_changed", clientIP, map[string]any{
		"old_role": string(oldRole),
		"new_role": string(role),
	})
	return &user, nil
}

func (s *authService) upsertUser(ctx context.Context, profile *google.Profile, email string) (*models.User, error) {
	now := time.Now()

	user, err := s.users.FindByGoogleID(ctx, profile.ID)
	if err == nil {
		user.LastLoginAt = &now
		user.FirstName = profile.GivenName
		user.LastName = profile.FamilyName
		if profile.Picture != "" {
			user.ProfilePicture = &profile.Picture
		}
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = &models.User{
		Email:       email,
		GoogleID:    profile.ID,
		Role:        roleForEmail(email),
		Status:      models.StatusActive,
		FirstName:   profile.GivenName,
		LastName:    profile.FamilyName,
		LastLoginAt: &now,
	}
	if profile.Picture != "" {
		user.ProfilePicture = &profile.Picture
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("email", email).Str("role", string(user.Role)).Msg("provisioned new account")
	return user, nil
}

func (s *authService) domainAllowed(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := email[at+1:]
	for _, allowed := range s.allowedDomains {
		if strings.EqualFold(domain, allowed) {
			return true
		}
	}
	return false
}

func (s *authService) recordAudit(ctx context.Context, userID uuid.UUID, action, clientIP string, metadata map[string]any) {
	entry := models.AuditLog{
		UserID:     &userID,
		Action:     action,
		EntityType: "user",
		EntityID:   &userID,
		Metadata:   datatypes.JSONMap(metadata),
	}
	if clientIP != "" {
		entry.IPAddress = &clientIP
	}
	if err := s.audit.Create(ctx, &entry); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record audit entry")
	}
}

// roleForEmail maps the student subdomain to the student role; any other
// allowed domain defaults to faculty.
func roleForEmail(email string) models.UserRole {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return models.RoleStudent
	}
	if strings.HasPrefix(email[at+1:], "students.") {
		return models.RoleStudent
	}
	return models.RoleFaculty
}
