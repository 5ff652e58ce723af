package todos

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/taskory/taskory-api/internal/apperrors"
	"github.com/taskory/taskory-api/internal/database"
	"github.com/taskory/taskory-api/internal/models"
)

const (
	ownerID  = "owner-sub"
	otherID  = "other-sub"
	strTitle = "Buy milk"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	db, err := database.ConnectSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.CreateSchema(context.Background(), db))
	return db
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	db := newTestDB(t)
	seedUsers(t, db)
	return NewService(NewBunRepository(db))
}

func seedUsers(t *testing.T, db *bun.DB) {
	t.Helper()
	ctx := context.Background()
	for _, u := range []models.User{
		{ID: ownerID, Email: "owner@example.com", Username: "owner"},
		{ID: otherID, Email: "other@example.com", Username: "other"},
	} {
		_, err := db.NewInsert().Model(&u).Exec(ctx)
		require.NoError(t, err)
	}
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, ownerID, CreateInput{Title: strTitle})
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID, ownerID)
	require.NoError(t, err)
	require.Equal(t, strTitle, got.Title)
	require.Nil(t, got.Summary, "absent summary stays null")
	require.False(t, got.Completed, "completed defaults to false")
	require.Equal(t, ownerID, got.UserID)
}

func TestGetDistinguishesNotFoundFromForbidden(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, ownerID, CreateInput{Title: strTitle})
	require.NoError(t, err)

	// id not present anywhere: NotFound, never Forbidden
	_, err = svc.Get(ctx, uuid.NewString(), otherID)
	require.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	// id present but owned by someone else: Forbidden
	_, err = svc.Get(ctx, created.ID, otherID)
	require.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	// malformed id fails validation before touching the store
	_, err = svc.Get(ctx, "not-a-uuid", ownerID)
	require.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestUpdateEnforcesOwnership(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, ownerID, CreateInput{Title: strTitle})
	require.NoError(t, err)

	newTitle := "Buy oat milk"
	done := true
	_, err = svc.Update(ctx, created.ID, otherID, UpdateInput{Title: &newTitle})
	require.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	got, err := svc.Update(ctx, created.ID, ownerID, UpdateInput{Title: &newTitle, Completed: &done})
	require.NoError(t, err)
	require.Equal(t, newTitle, got.Title)
	require.True(t, got.Completed)
}

func TestDeleteEnforcesOwnership(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, ownerID, CreateInput{Title: strTitle})
	require.NoError(t, err)

	err = svc.Delete(ctx, created.ID, otherID)
	require.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	require.NoError(t, svc.Delete(ctx, created.ID, ownerID))

	err = svc.Delete(ctx, created.ID, ownerID)
	require.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestListPagination(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		_, err := svc.Create(ctx, ownerID, CreateInput{Title: fmt.Sprintf("task %02d", i)})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, ownerID, Query{Page: 2, Limit: 10, SortBy: "title", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, page.Data, 10)
	require.Equal(t, 25, page.Meta.Total)
	require.Equal(t, 3, page.Meta.TotalPages)
	require.Equal(t, 2, page.Meta.Page)
	require.Equal(t, "task 10", page.Data[0].Title, "ascending title sort, second page")
}

func TestListFiltersAndScoping(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	summary := "buy two liters of WHOLE milk"
	_, err := svc.Create(ctx, ownerID, CreateInput{Title: "groceries", Summary: &summary})
	require.NoError(t, err)
	done := true
	td, err := svc.Create(ctx, ownerID, CreateInput{Title: "laundry"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, td.ID, ownerID, UpdateInput{Completed: &done})
	require.NoError(t, err)
	_, err = svc.Create(ctx, otherID, CreateInput{Title: "groceries too"})
	require.NoError(t, err)

	// case-insensitive search over title and summary, scoped to the caller
	page, err := svc.List(ctx, ownerID, Query{Search: "whole MILK"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.Equal(t, "groceries", page.Data[0].Title)

	completed := true
	page, err = svc.List(ctx, ownerID, Query{Completed: &completed})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.Equal(t, "laundry", page.Data[0].Title)

	// the other user only ever sees their own todos
	page, err = svc.List(ctx, otherID, Query{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.Equal(t, "groceries too", page.Data[0].Title)
}

func TestListRejectsBadQuery(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.List(ctx, ownerID, Query{Page: -1})
	require.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = svc.List(ctx, ownerID, Query{SortBy: "password"})
	require.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = svc.List(ctx, ownerID, Query{SortOrder: "sideways"})
	require.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestStatistics(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	done := true
	for i := 0; i < 3; i++ {
		td, err := svc.Create(ctx, ownerID, CreateInput{Title: fmt.Sprintf("task %d", i)})
		require.NoError(t, err)
		if i == 0 {
			_, err = svc.Update(ctx, td.ID, ownerID, UpdateInput{Completed: &done})
			require.NoError(t, err)
		}
	}

	stats, err := svc.Statistics(ctx, ownerID)
	require.NoError(t, err)
	require.Equal(t, 3, stats.Total)
	require.Equal(t, 1, stats.Completed)
	require.Equal(t, 2, stats.Pending)
	require.Equal(t, 33, stats.CompletionRate)

	stats, err = svc.Statistics(ctx, otherID)
	require.NoError(t, err)
	require.Equal(t, 0, stats.Total)
	require.Equal(t, 0, stats.CompletionRate)
}
