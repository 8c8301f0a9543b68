package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guudweb/judicial-backend/internal/domain"
	"github.com/guudweb/judicial-backend/internal/mocks"
)

func seedCaseFile(t *testing.T, store *mocks.Store, number string, status domain.CaseFileStatus, dept uuid.UUID, assignee *uuid.UUID) {
	t.Helper()
	require.NoError(t, store.CaseFiles().Create(context.Background(), &domain.CaseFile{
		ID:           uuid.New(),
		CaseNumber:   number,
		Title:        number,
		Status:       status,
		CurrentLevel: domain.LevelJudge,
		DepartmentID: dept,
		CreatedBy:    uuid.New(),
		AssignedTo:   assignee,
		Version:      1,
	}))
}

func TestCaseFileStats_WithoutCache(t *testing.T) {
	store := mocks.NewStore()
	dept := uuid.New()
	me := uuid.New()

	seedCaseFile(t, store, "2026-00001", domain.CaseFileDraft, dept, nil)
	seedCaseFile(t, store, "2026-00002", domain.CaseFilePendingApproval, dept, &me)
	seedCaseFile(t, store, "2026-00003", domain.CaseFilePendingApproval, uuid.New(), nil)

	svc := NewService(store.CaseFiles(), store.News(), nil, time.Minute)
	ctx := context.Background()

	stats, err := svc.CaseFileStats(ctx, me, domain.CaseFileFilter{ScopeDepartmentID: &dept})
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.ByStatus[domain.CaseFilePendingApproval])
	assert.Equal(t, int64(1), stats.PendingForMe)

	svc.Invalidate(ctx)

	stats, err = svc.CaseFileStats(ctx, me, domain.CaseFileFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
}

func TestNewsStats_CountsThisMonth(t *testing.T) {
	store := mocks.NewStore()
	ctx := context.Background()
	now := time.Date(2026, time.May, 20, 12, 0, 0, 0, time.UTC)

	for i, at := range []time.Time{now.AddDate(0, 0, -2), now.AddDate(0, -1, 0)} {
		published := at
		require.NoError(t, store.News().Create(ctx, &domain.News{
			ID:          uuid.New(),
			Title:       "n",
			Slug:        []string{"a", "b"}[i],
			Type:        domain.NewsAdvisory,
			Status:      domain.NewsPublished,
			PublishedAt: &published,
			Version:     1,
		}))
	}
	require.NoError(t, store.News().Create(ctx, &domain.News{ID: uuid.New(), Slug: "c", Type: domain.NewsNotice, Status: domain.NewsDraft, Version: 1}))

	svc := NewService(store.CaseFiles(), store.News(), nil, time.Minute).(*service)
	svc.now = func() time.Time { return now }

	stats, err := svc.NewsStats(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.ByType[domain.NewsAdvisory])
	assert.Equal(t, int64(2), stats.ByStatus[domain.NewsPublished])
	assert.Equal(t, int64(1), stats.PublishedThisMonth)
}

func TestKeyWithoutRedis(t *testing.T) {
	svc := NewService(nil, nil, nil, time.Minute).(*service)
	assert.Equal(t, "stats:g0:news", svc.key(context.Background(), "news"))
}
