package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/aegis-go-api/internal/auth"
	"github.com/noah-isme/aegis-go-api/internal/dto"
	"github.com/noah-isme/aegis-go-api/internal/models"
	"github.com/noah-isme/aegis-go-api/internal/repository"
)

var (
	// ErrGrievanceNotFound hides both missing rows and rows the caller
	// may not see.
	ErrGrievanceNotFound = errors.New("grievance not found")
	// ErrGrievanceForbidden rejects actions the caller's role denies.
	ErrGrievanceForbidden = errors.New("not authorized for this grievance")
	// ErrPhotoLimitReached caps attachments per grievance.
	ErrPhotoLimitReached = errors.New("photo limit reached")
	// ErrAssigneeInvalid rejects assignment to a missing user or one
	// whose role cannot hold grievances.
	ErrAssigneeInvalid = errors.New("user cannot be assigned grievances")
)

const maxPhotosPerGrievance = 5

// PhotoUploader stores a grievance attachment and returns its URL; tests
// substitute a stub for the Cloudinary-backed implementation.
type PhotoUploader interface {
	UploadGrievancePhoto(ctx context.Context, grievanceID uuid.UUID, reader io.Reader) (string, error)
}

// GrievanceService exposes the grievance tracking operations.
type GrievanceService interface {
	Create(ctx context.Context, actor models.User, req dto.CreateGrievanceRequest) (*dto.GrievanceResponse, error)
	List(ctx context.Context, viewer *models.User, filter dto.GrievanceFilter) (dto.PaginatedResponse[dto.GrievanceResponse], error)
	Get(ctx context.Context, viewer *models.User, id uuid.UUID) (*dto.GrievanceResponse, error)
	Delete(ctx context.Context, actor models.User, id uuid.UUID) error

	UpdateStatus(ctx context.Context, actor models.User, id uuid.UUID, req dto.UpdateGrievanceStatusRequest) (*dto.GrievanceResponse, error)
	Assign(ctx context.Context, actor models.User, id uuid.UUID, req dto.AssignGrievanceRequest) (*dto.GrievanceResponse, error)
	Resolve(ctx context.Context, actor models.User, id uuid.UUID, req dto.ResolveGrievanceRequest) (*dto.GrievanceResponse, error)
	History(ctx context.Context, viewer models.User, id uuid.UUID) ([]dto.StatusHistoryResponse, error)

	AddComment(ctx context.Context, actor models.User, id uuid.UUID, req dto.CreateCommentRequest) (*dto.CommentResponse, error)
	ListComments(ctx context.Context, viewer models.User, id uuid.UUID) ([]dto.CommentResponse, error)

	ToggleUpvote(ctx context.Context, actor models.User, id uuid.UUID) (bool, int, error)
	UploadPhotos(ctx context.Context, actor models.User, id uuid.UUID, photos []io.Reader) (*dto.GrievanceResponse, error)
}

type grievanceService struct {
	grievances repository.GrievanceRepository
	users      repository.UserRepository
	audit      repository.AuditRepository
	uploader   PhotoUploader
	policy     *bluemonday.Policy
	logger     zerolog.Logger
}

// NewGrievanceService constructs the grievance service.
func NewGrievanceService(
	grievances repository.GrievanceRepository,
	users repository.UserRepository,
	audit repository.AuditRepository,
	uploader PhotoUploader,
	logger zerolog.Logger,
) GrievanceService {
	return &grievanceService{
		grievances: grievances,
		users:      users,
		audit:      audit,
		uploader:   uploader,
		policy:     bluemonday.StrictPolicy(),
		logger:     logger.With().Str("component", "grievance_service").Logger(),
	}
}

func (s *grievanceService) Create(ctx context.Context, actor models.User, req dto.CreateGrievanceRequest) (*dto.GrievanceResponse, error) {
	if !auth.CanSubmitGrievance(actor) {
		return nil, ErrGrievanceForbidden
	}

	grievance := models.Grievance{
		Title:           s.sanitize(req.Title),
		Description:     s.sanitize(req.Description),
		Category:        req.Category,
		Priority:        req.Priority,
		Status:          models.StatusSubmitted,
		LocationType:    sanitizeOptional(s.policy, req.LocationType),
		LocationDetails: sanitizeOptional(s.policy, req.LocationDetails),
		IsAnonymous:     req.IsAnonymous,
	}

	if req.IsAnonymous {
		identifier := anonymousIdentifier()
		grievance.AnonymousIdentifier = &identifier
	} else {
		grievance.SubmittedBy = &actor.ID
	}

	if err := s.grievances.Create(ctx, &grievance); err != nil {
		return nil, err
	}

	history := models.GrievanceStatusHistory{
		GrievanceID: grievance.ID,
		NewStatus:   models.StatusSubmitted,
		UpdatedBy:   &actor.ID,
		UpdatedByRole: &actor.Role,
	}
	if err := s.grievances.CreateStatusHistory(ctx, &history); err != nil {
		s.logger.Warn().Err(err).Str("grievance_id", grievance.ID.String()).Msg("failed to record initial status")
	}

	s.logger.Info().
		Str("grievance_id", grievance.ID.String()).
		Bool("anonymous", grievance.IsAnonymous).
		Msg("grievance submitted")

	resp := s.toResponse(ctx, grievance, &actor)
	return &resp, nil
}

func (s *grievanceService) List(ctx context.Context, viewer *models.User, filter dto.GrievanceFilter) (dto.PaginatedResponse[dto.GrievanceResponse], error) {
	items, total, err := s.grievances.List(ctx, filter)
	if err != nil {
		return dto.PaginatedResponse[dto.GrievanceResponse]{}, err
	}

	upvoted := map[uuid.UUID]bool{}
	if viewer != nil {
		ids := make([]uuid.UUID, 0, len(items))
		for _, g := range items {
			ids = append(ids, g.ID)
		}
		upvoted, err = s.grievances.ListUpvotedIDs(ctx, viewer.ID, ids)
		if err != nil {
			return dto.PaginatedResponse[dto.GrievanceResponse]{}, err
		}
	}

	users, err := s.relatedUsers(ctx, items)
	if err != nil {
		return dto.PaginatedResponse[dto.GrievanceResponse]{}, err
	}

	responses := make([]dto.GrievanceResponse, 0, len(items))
	for _, g := range items {
		responses = append(responses, dto.NewGrievanceResponse(g, lookupUser(users, g.SubmittedBy), lookupUser(users, g.AssignedTo), upvoted[g.ID]))
	}

	page, limit := repository.NormalizePage(filter.Page, filter.Limit)
	return dto.NewPaginatedResponse(responses, total, page, limit), nil
}

// Get returns the grievance detail and counts the view. Visibility is
// role-scoped; callers outside the grievance see not-found rather than
// forbidden.
func (s *grievanceService) Get(ctx context.Context, viewer *models.User, id uuid.UUID) (*dto.GrievanceResponse, error) {
	grievance, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if viewer == nil || !auth.CanViewGrievance(*viewer, *grievance) {
		return nil, ErrGrievanceNotFound
	}

	if err := s.grievances.IncrementViewCount(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("grievance_id", id.String()).Msg("failed to count view")
	} else {
		grievance.ViewCount++
	}

	resp := s.toResponse(ctx, *grievance, viewer)
	return &resp, nil
}

func (s *grievanceService) Delete(ctx context.Context, actor models.User, id uuid.UUID) error {
	grievance, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CanDeleteGrievance(actor, *grievance) {
		return ErrGrievanceForbidden
	}

	if err := s.grievances.Delete(ctx, id); err != nil {
		return err
	}

	s.recordAudit(ctx, actor.ID, "grievance_deleted", id, map[string]any{
		"title": grievance.Title,
	})
	return nil
}

func (s *grievanceService) UpdateStatus(ctx context.Context, actor models.User, id uuid.UUID, req dto.UpdateGrievanceStatusRequest) (*dto.GrievanceResponse, error) {
	grievance, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanModerateGrievances(actor) {
		return nil, ErrGrievanceForbidden
	}

	return s.transition(ctx, actor, grievance, req.Status, sanitizeOptional(s.policy, req.Remarks), func(g *models.Grievance) {})
}

func (s *grievanceService) Assign(ctx context.Context, actor models.User, id uuid.UUID, req dto.AssignGrievanceRequest) (*dto.GrievanceResponse, error) {
	if !auth.CanModerateGrievances(actor) {
		return nil, ErrGrievanceForbidden
	}

	grievance, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.AssignedTo != nil {
		assignee, err := s.users.FindByID(ctx, *req.AssignedTo)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAssigneeInvalid
			}
			return nil, err
		}
		if !auth.CanBeAssignedGrievance(*assignee) {
			return nil, ErrAssigneeInvalid
		}
		grievance.AssignedTo = &assignee.ID
	}
	if req.AssignedDepartment != nil {
		grievance.AssignedDepartment = sanitizeOptional(s.policy, req.AssignedDepartment)
	}

	if grievance.Status == models.StatusSubmitted {
		grievance.Status = models.StatusUnderReview
	}

	if err := s.grievances.Update(ctx, grievance); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actor.ID, "grievance_assigned", id, map[string]any{
		"assigned_to":         stringOrNil(req.AssignedTo),
		"assigned_department": grievance.AssignedDepartment,
	})

	resp := s.toResponse(ctx, *grievance, &actor)
	return &resp, nil
}

// Resolve closes out the grievance and appends the transition to the
// status history like any other status change.
func (s *grievanceService) Resolve(ctx context.Context, actor models.User, id uuid.UUID, req dto.ResolveGrievanceRequest) (*dto.GrievanceResponse, error) {
	grievance, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanModerateGrievances(actor) {
		return nil, ErrGrievanceForbidden
	}

	notes := s.sanitize(req.ResolutionNotes)
	return s.transition(ctx, actor, grievance, models.StatusResolved, &notes, func(g *models.Grievance) {
		now := time.Now()
		g.ResolutionNotes = &notes
		g.ResolvedAt = &now
		g.ResolvedBy = &actor.ID
	})
}

func (s *grievanceService) History(ctx context.Context, viewer models.User, id uuid.UUID) ([]dto.StatusHistoryResponse, error) {
	grievance, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanViewGrievance(viewer, *grievance) {
		return nil, ErrGrievanceNotFound
	}

	entries, err := s.grievances.ListStatusHistory(ctx, id)
	if err != nil {
		return nil, err
	}

	actorIDs := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		if e.UpdatedBy != nil {
			actorIDs = append(actorIDs, *e.UpdatedBy)
		}
	}
	actors, err := s.users.FindByIDs(ctx, actorIDs)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.StatusHistoryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, dto.NewStatusHistoryResponse(e, lookupUser(actors, e.UpdatedBy)))
	}
	return responses, nil
}

func (s *grievanceService) AddComment(ctx context.Context, actor models.User, id uuid.UUID, req dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	grievance, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanViewGrievance(actor, *grievance) {
		return nil, ErrGrievanceNotFound
	}

	comment := models.GrievanceComment{
		GrievanceID: id,
		UserID:      actor.ID,
		Comment:     s.sanitize(req.Comment),
		IsInternal:  req.IsInternal && auth.CanSeeInternalComments(actor),
	}
	if err := s.grievances.CreateComment(ctx, &comment); err != nil {
		return nil, err
	}

	resp := dto.NewCommentResponse(comment, actor)
	return &resp, nil
}

func (s *grievanceService) ListComments(ctx context.Context, viewer models.User, id uuid.UUID) ([]dto.CommentResponse, error) {
	grievance, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanViewGrievance(viewer, *grievance) {
		return nil, ErrGrievanceNotFound
	}

	comments, err := s.grievances.ListComments(ctx, id, auth.CanSeeInternalComments(viewer))
	if err != nil {
		return nil, err
	}

	authorIDs := make([]uuid.UUID, 0, len(comments))
	for _, c := range comments {
		authorIDs = append(authorIDs, c.UserID)
	}
	authors, err := s.users.FindByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CommentResponse, 0, len(comments))
	for _, c := range comments {
		responses = append(responses, dto.NewCommentResponse(c, authors[c.UserID]))
	}
	return responses, nil
}

// ToggleUpvote flips the caller's upvote and returns the new state plus
// the refreshed counter.
func (s *grievanceService) ToggleUpvote(ctx context.Context, actor models.User, id uuid.UUID) (bool, int, error) {
	if _, err := s.find(ctx, id); err != nil {
		return false, 0, err
	}

	upvoted, err := s.grievances.ToggleUpvote(ctx, id, actor.ID)
	if err != nil {
		return false, 0, err
	}

	grievance, err := s.find(ctx, id)
	if err != nil {
		return false, 0, err
	}
	return upvoted, grievance.UpvoteCount, nil
}

func (s *grievanceService) UploadPhotos(ctx context.Context, actor models.User, id uuid.UUID, photos []io.Reader) (*dto.GrievanceResponse, error) {
	grievance, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanModifyGrievance(actor, *grievance) {
		return nil, ErrGrievanceForbidden
	}
	if len(grievance.PhotoURLs)+len(photos) > maxPhotosPerGrievance {
		return nil, ErrPhotoLimitReached
	}

	urls := make([]string, 0, len(photos))
	for _, photo := range photos {
		url, err := s.uploader.UploadGrievancePhoto(ctx, id, photo)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}

	updated, err := s.grievances.AppendPhotoURLs(ctx, id, urls)
	if err != nil {
		return nil, err
	}

	resp := s.toResponse(ctx, *updated, &actor)
	return &resp, nil
}

func (s *grievanceService) transition(
	ctx context.Context,
	actor models.User,
	grievance *models.Grievance,
	newStatus models.GrievanceStatus,
	remarks *string,
	mutate func(*models.Grievance),
) (*dto.GrievanceResponse, error) {
	oldStatus := grievance.Status
	grievance.Status = newStatus
	mutate(grievance)

	if err := s.grievances.Update(ctx, grievance); err != nil {
		return nil, err
	}

	history := models.GrievanceStatusHistory{
		GrievanceID:   grievance.ID,
		OldStatus:     &oldStatus,
		NewStatus:     newStatus,
		Remarks:       remarks,
		UpdatedBy:     &actor.ID,
		UpdatedByRole: &actor.Role,
	}
	if err := s.grievances.CreateStatusHistory(ctx, &history); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actor.ID, "grievance_status_changed", grievance.ID, map[string]any{
		"old_status": string(oldStatus),
		"new_status": string(newStatus),
	})

	resp := s.toResponse(ctx, *grievance, &actor)
	return &resp, nil
}

func (s *grievanceService) find(ctx context.Context, id uuid.UUID) (*models.Grievance, error) {
	grievance, err := s.grievances.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGrievanceNotFound
	}
	if err != nil {
		return nil, err
	}
	return grievance, nil
}

func (s *grievanceService) toResponse(ctx context.Context, g models.Grievance, viewer *models.User) dto.GrievanceResponse {
	users, err := s.relatedUsers(ctx, []models.Grievance{g})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to resolve related users")
	}

	hasUpvoted := false
	if viewer != nil {
		if upvoted, err := s.grievances.HasUpvoted(ctx, g.ID, viewer.ID); err == nil {
			hasUpvoted = upvoted
		}
	}

	return dto.NewGrievanceResponse(g, lookupUser(users, g.SubmittedBy), lookupUser(users, g.AssignedTo), hasUpvoted)
}

func (s *grievanceService) relatedUsers(ctx context.Context, items []models.Grievance) (map[uuid.UUID]models.User, error) {
	ids := make([]uuid.UUID, 0, len(items)*2)
	for _, g := range items {
		if g.SubmittedBy != nil {
			ids = append(ids, *g.SubmittedBy)
		}
		if g.AssignedTo != nil {
			ids = append(ids, *g.AssignedTo)
		}
	}
	return s.users.FindByIDs(ctx, ids)
}

func (s *grievanceService) sanitize(text string) string {
	return strings.TrimSpace(s.policy.Sanitize(text))
}

func (s *grievanceService) recordAudit(ctx context.Context, actorID uuid.UUID, action string, entityID uuid.UUID, metadata map[string]any) {
	entry := models.AuditLog{
		UserID:     &actorID,
		Action:     action,
		EntityType: "grievance",
		EntityID:   &entityID,
		Metadata:   datatypes.JSONMap(metadata),
	}
	if err := s.audit.Create(ctx, &entry); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record audit entry")
	}
}

func sanitizeOptional(policy *bluemonday.Policy, value *string) *string {
	if value == nil {
		return nil
	}
	cleaned := strings.TrimSpace(policy.Sanitize(*value))
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

func lookupUser(users map[uuid.UUID]models.User, id *uuid.UUID) *models.User {
	if id == nil {
		return nil
	}
	if user, ok := users[*id]; ok {
		return &user
	}
	return nil
}

func stringOrNil(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

// anonymousIdentifier builds the public handle shown in place of an
// anonymous submitter's identity.
func anonymousIdentifier() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ANON-" + strings.ToUpper(raw[:8])
}
