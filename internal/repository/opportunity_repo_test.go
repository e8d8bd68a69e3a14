package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/aegis-go-api/internal/dto"
	"github.com/noah-isme/aegis-go-api/internal/models"
)

func seedOpportunity(t *testing.T, repo OpportunityRepository, poster models.User) *models.Opportunity {
	t.Helper()

	opportunity := &models.Opportunity{
		PostedBy:        poster.ID,
		Title:           "Summer research intern",
		Description:     "Work on distributed systems tooling",
		OpportunityType: models.OpportunityResearch,
		Department:      "CSE",
		IsActive:        true,
	}
	require.NoError(t, repo.Create(context.Background(), opportunity))
	return opportunity
}

func TestCreateApplicationRejectsDuplicates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOpportunityRepository(db)
	ctx := context.Background()

	faculty := seedUser(t, db, "prof@iitmandi.ac.in", models.RoleFaculty)
	student := seedUser(t, db, "student@students.iitmandi.ac.in", models.RoleStudent)
	opportunity := seedOpportunity(t, repo, faculty)

	created, err := repo.CreateApplication(ctx, &models.Application{
		OpportunityID: opportunity.ID,
		StudentID:     student.ID,
		Status:        models.ApplicationPending,
	})
	require.NoError(t, err)
	require.True(t, created)

	created, err = repo.CreateApplication(ctx, &models.Application{
		OpportunityID: opportunity.ID,
		StudentID:     student.ID,
		Status:        models.ApplicationPending,
	})
	require.NoError(t, err)
	require.False(t, created)

	applications, err := repo.ListApplicationsByOpportunity(ctx, opportunity.ID)
	require.NoError(t, err)
	require.Len(t, applications, 1)
}

func TestListActiveSkipsDeactivated(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOpportunityRepository(db)
	ctx := context.Background()

	faculty := seedUser(t, db, "prof@iitmandi.ac.in", models.RoleFaculty)
	kept := seedOpportunity(t, repo, faculty)
	closed := seedOpportunity(t, repo, faculty)

	require.NoError(t, repo.Deactivate(ctx, closed.ID))

	active, err := repo.ListActive(ctx, dto.OpportunityFilter{})
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, kept.ID, active[0].ID)

	active, err = repo.ListActive(ctx, dto.OpportunityFilter{Type: string(models.OpportunityTeaching)})
	require.NoError(t, err)
	require.Empty(t, active)
}

func TestListAppliedIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOpportunityRepository(db)
	ctx := context.Background()

	faculty := seedUser(t, db, "prof@iitmandi.ac.in", models.RoleFaculty)
	student := seedUser(t, db, "student@students.iitmandi.ac.in", models.RoleStudent)
	applied := seedOpportunity(t, repo, faculty)
	skipped := seedOpportunity(t, repo, faculty)

	_, err := repo.CreateApplication(ctx, &models.Application{
		OpportunityID: applied.ID,
		StudentID:     student.ID,
		Status:        models.ApplicationPending,
	})
	require.NoError(t, err)

	ids, err := repo.ListAppliedIDs(ctx, student.ID, []uuid.UUID{applied.ID, skipped.ID})
	require.NoError(t, err)
	require.True(t, ids[applied.ID])
	require.False(t, ids[skipped.ID])
}
