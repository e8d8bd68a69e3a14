package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/aegis-go-api/internal/dto"
	"github.com/noah-isme/aegis-go-api/internal/models"
	"github.com/noah-isme/aegis-go-api/internal/repository"
)

func TestTaskLifecycle(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTaskService(repository.NewTaskRepository(db), testLogger())
	ctx := context.Background()

	owner := seedUser(t, db, "owner@students.iitmandi.ac.in", models.RoleStudent)

	created, err := svc.Create(ctx, owner, dto.CreateTaskRequest{
		Title: "Prepare for viva",
	})
	require.NoError(t, err)
	require.Equal(t, models.TaskPending, created.Status)
	require.Equal(t, models.PriorityMedium, created.Priority)
	require.Zero(t, created.ProgressPercentage)

	status := models.TaskCompleted
	updated, err := svc.Update(ctx, owner, created.ID, dto.UpdateTaskRequest{Status: &status})
	require.NoError(t, err)
	require.Equal(t, models.TaskCompleted, updated.Status)
	require.Equal(t, 100, updated.ProgressPercentage)

	require.NoError(t, svc.Delete(ctx, owner, created.ID))
	require.ErrorIs(t, svc.Delete(ctx, owner, created.ID), ErrTaskNotFound)
}

func TestTaskProgressCompletesTask(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTaskService(repository.NewTaskRepository(db), testLogger())
	ctx := context.Background()

	owner := seedUser(t, db, "owner@students.iitmandi.ac.in", models.RoleStudent)

	created, err := svc.Create(ctx, owner, dto.CreateTaskRequest{Title: "Write report"})
	require.NoError(t, err)

	progress := 100
	updated, err := svc.Update(ctx, owner, created.ID, dto.UpdateTaskRequest{ProgressPercentage: &progress})
	require.NoError(t, err)
	require.Equal(t, models.TaskCompleted, updated.Status)
}

func TestTasksHiddenFromOtherUsers(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTaskService(repository.NewTaskRepository(db), testLogger())
	ctx := context.Background()

	owner := seedUser(t, db, "owner@students.iitmandi.ac.in", models.RoleStudent)
	other := seedUser(t, db, "other@students.iitmandi.ac.in", models.RoleStudent)

	created, err := svc.Create(ctx, owner, dto.CreateTaskRequest{Title: "Private note"})
	require.NoError(t, err)

	title := "hijacked"
	_, err = svc.Update(ctx, other, created.ID, dto.UpdateTaskRequest{Title: &title})
	require.ErrorIs(t, err, ErrTaskNotFound)

	require.ErrorIs(t, svc.Delete(ctx, other, created.ID), ErrTaskNotFound)

	tasks, err := svc.List(ctx, other, "")
	require.NoError(t, err)
	require.Empty(t, tasks)
}
