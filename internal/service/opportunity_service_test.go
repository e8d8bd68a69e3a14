package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/aegis-go-api/internal/dto"
	"github.com/noah-isme/aegis-go-api/internal/models"
	"github.com/noah-isme/aegis-go-api/internal/repository"
)

func newOpportunityService(t *testing.T, db *gorm.DB) OpportunityService {
	t.Helper()
	return NewOpportunityService(
		repository.NewOpportunityRepository(db),
		repository.NewUserRepository(db),
		testLogger(),
	)
}

func postOpportunity(t *testing.T, svc OpportunityService, actor models.User, deadline *time.Time) *dto.OpportunityResponse {
	t.Helper()
	resp, err := svc.Create(context.Background(), actor, dto.CreateOpportunityRequest{
		Title:               "Research assistant",
		Description:         "Help run experiments in the systems lab",
		OpportunityType:     models.OpportunityResearch,
		Department:          "CSE",
		ApplicationDeadline: deadline,
	})
	require.NoError(t, err)
	return resp
}

func TestApplyTwiceFails(t *testing.T) {
	db := setupTestDB(t)
	svc := newOpportunityService(t, db)
	ctx := context.Background()

	faculty := seedUser(t, db, "prof@iitmandi.ac.in", models.RoleFaculty)
	student := seedUser(t, db, "student@students.iitmandi.ac.in", models.RoleStudent)
	posting := postOpportunity(t, svc, faculty, nil)

	app, err := svc.Apply(ctx, student, posting.ID, dto.ApplyRequest{})
	require.NoError(t, err)
	require.Equal(t, models.ApplicationPending, app.Status)

	_, err = svc.Apply(ctx, student, posting.ID, dto.ApplyRequest{})
	require.ErrorIs(t, err, ErrAlreadyApplied)

	_, err = svc.Apply(ctx, faculty, posting.ID, dto.ApplyRequest{})
	require.ErrorIs(t, err, ErrOpportunityForbidden)
}

func TestApplyAfterDeadlineFails(t *testing.T) {
	db := setupTestDB(t)
	svc := newOpportunityService(t, db)
	ctx := context.Background()

	faculty := seedUser(t, db, "prof@iitmandi.ac.in", models.RoleFaculty)
	student := seedUser(t, db, "student@students.iitmandi.ac.in", models.RoleStudent)

	passed := time.Now().Add(-time.Hour)
	posting := postOpportunity(t, svc, faculty, &passed)

	_, err := svc.Apply(ctx, student, posting.ID, dto.ApplyRequest{})
	require.ErrorIs(t, err, ErrDeadlinePassed)
}

func TestListMarksAppliedForStudentViewer(t *testing.T) {
	db := setupTestDB(t)
	svc := newOpportunityService(t, db)
	ctx := context.Background()

	faculty := seedUser(t, db, "prof@iitmandi.ac.in", models.RoleFaculty)
	student := seedUser(t, db, "student@students.iitmandi.ac.in", models.RoleStudent)
	applied := postOpportunity(t, svc, faculty, nil)
	skipped := postOpportunity(t, svc, faculty, nil)

	_, err := svc.Apply(ctx, student, applied.ID, dto.ApplyRequest{})
	require.NoError(t, err)

	items, err := svc.List(ctx, &student, dto.OpportunityFilter{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	byID := map[string]dto.OpportunityResponse{}
	for _, item := range items {
		byID[item.ID.String()] = item
	}
	require.True(t, byID[applied.ID.String()].HasApplied)
	require.False(t, byID[skipped.ID.String()].HasApplied)

	// Anonymous viewers never see an applied flag.
	items, err = svc.List(ctx, nil, dto.OpportunityFilter{})
	require.NoError(t, err)
	for _, item := range items {
		require.False(t, item.HasApplied)
	}
}

func TestDeactivateRequiresOwnership(t *testing.T) {
	db := setupTestDB(t)
	svc := newOpportunityService(t, db)
	ctx := context.Background()

	owner := seedUser(t, db, "prof@iitmandi.ac.in", models.RoleFaculty)
	other := seedUser(t, db, "other.prof@iitmandi.ac.in", models.RoleFaculty)
	admin := seedUser(t, db, "admin@iitmandi.ac.in", models.RoleAdmin)

	posting := postOpportunity(t, svc, owner, nil)
	require.ErrorIs(t, svc.Deactivate(ctx, other, posting.ID), ErrOpportunityForbidden)
	require.NoError(t, svc.Deactivate(ctx, admin, posting.ID))

	student := seedUser(t, db, "student@students.iitmandi.ac.in", models.RoleStudent)
	_, err := svc.Apply(ctx, student, posting.ID, dto.ApplyRequest{})
	require.ErrorIs(t, err, ErrOpportunityNotFound)
}

func TestUpdateApplicationStatus(t *testing.T) {
	db := setupTestDB(t)
	svc := newOpportunityService(t, db)
	ctx := context.Background()

	owner := seedUser(t, db, "prof@iitmandi.ac.in", models.RoleFaculty)
	other := seedUser(t, db, "other.prof@iitmandi.ac.in", models.RoleFaculty)
	student := seedUser(t, db, "student@students.iitmandi.ac.in", models.RoleStudent)

	posting := postOpportunity(t, svc, owner, nil)
	app, err := svc.Apply(ctx, student, posting.ID, dto.ApplyRequest{})
	require.NoError(t, err)

	remarks := "strong systems background"
	_, err = svc.UpdateApplicationStatus(ctx, other, app.ID, dto.UpdateApplicationStatusRequest{
		Status: models.ApplicationShortlisted,
	})
	require.ErrorIs(t, err, ErrOpportunityForbidden)

	updated, err := svc.UpdateApplicationStatus(ctx, owner, app.ID, dto.UpdateApplicationStatusRequest{
		Status:         models.ApplicationShortlisted,
		FacultyRemarks: &remarks,
	})
	require.NoError(t, err)
	require.Equal(t, models.ApplicationShortlisted, updated.Status)
	require.NotNil(t, updated.FacultyRemarks)

	applicants, err := svc.ListApplicants(ctx, owner, posting.ID)
	require.NoError(t, err)
	require.Len(t, applicants, 1)
	require.NotNil(t, applicants[0].Student)
	require.Equal(t, student.ID, applicants[0].Student.ID)

	mine, err := svc.MyApplications(ctx, student)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].Opportunity)
	require.Equal(t, posting.ID, mine[0].Opportunity.ID)
}
