package notification

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/guudweb/judicial-backend/internal/domain"
	"github.com/guudweb/judicial-backend/internal/mocks"
)

type queueSpy struct {
	queued []*domain.Notification
}

func (q *queueSpy) Enqueue(n *domain.Notification) bool {
	q.queued = append(q.queued, n)
	return true
}

func TestNotify_PersistsUnreadAndQueuesEmail(t *testing.T) {
	repo := new(mocks.NotificationRepository)
	queue := &queueSpy{}
	svc := NewService(repo, queue)

	userID := uuid.New()
	caseFileID := uuid.New()
	comments := "missing signature"

	repo.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.UserID == userID && n.Status == domain.NotificationUnread
	})).Return(nil)

	notif, err := svc.Notify(context.Background(), domain.NotifyInput{
		UserID:     userID,
		Type:       domain.NotifCaseFileRejected,
		Title:      "Expediente rechazado",
		Message:    "El expediente 2026-00001 ha sido rechazado",
		EntityType: domain.EntityCaseFile,
		EntityID:   caseFileID,
		Metadata: domain.NotificationMetadata{
			CaseFile: &domain.CaseFileSnapshot{ID: caseFileID, CaseNumber: "2026-00001"},
			Comments: &comments,
		},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.EntityCaseFile, *notif.EntityType)
	assert.Equal(t, caseFileID, *notif.EntityID)

	var meta domain.NotificationMetadata
	require.NoError(t, json.Unmarshal(notif.Metadata, &meta))
	assert.Equal(t, "2026-00001", meta.CaseFile.CaseNumber)
	assert.Equal(t, comments, *meta.Comments)

	require.Len(t, queue.queued, 1)
	assert.Same(t, notif, queue.queued[0])
	repo.AssertExpectations(t)
}

func TestNotify_StoreFailureSkipsEmail(t *testing.T) {
	repo := new(mocks.NotificationRepository)
	queue := &queueSpy{}
	svc := NewService(repo, queue)

	repo.On("Create", mock.Anything, mock.Anything).Return(assert.AnError)

	_, err := svc.Notify(context.Background(), domain.NotifyInput{UserID: uuid.New(), Type: domain.NotifNewsPublished})

	require.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, queue.queued)
}

func TestGetByID_NotFound(t *testing.T) {
	repo := new(mocks.NotificationRepository)
	svc := NewService(repo, nil)

	id, userID := uuid.New(), uuid.New()
	repo.On("GetByID", mock.Anything, id, userID).Return(nil, nil)

	_, err := svc.GetByID(context.Background(), id, userID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMarkAsRead(t *testing.T) {
	t.Run("owned notification", func(t *testing.T) {
		repo := new(mocks.NotificationRepository)
		svc := NewService(repo, nil)
		id, userID := uuid.New(), uuid.New()
		repo.On("MarkAsRead", mock.Anything, id, userID).Return(true, nil)

		assert.NoError(t, svc.MarkAsRead(context.Background(), id, userID))
	})

	t.Run("someone else's notification", func(t *testing.T) {
		repo := new(mocks.NotificationRepository)
		svc := NewService(repo, nil)
		id, userID := uuid.New(), uuid.New()
		repo.On("MarkAsRead", mock.Anything, id, userID).Return(false, nil)

		assert.ErrorIs(t, svc.MarkAsRead(context.Background(), id, userID), domain.ErrNotFound)
	})
}

func TestMarkManyAsRead_RequiresIDs(t *testing.T) {
	repo := new(mocks.NotificationRepository)
	svc := NewService(repo, nil)

	_, err := svc.MarkManyAsRead(context.Background(), nil, uuid.New())

	assert.ErrorIs(t, err, domain.ErrValidationFailed)
	repo.AssertNotCalled(t, "MarkManyAsRead", mock.Anything, mock.Anything, mock.Anything)
}

func TestDelete_Missing(t *testing.T) {
	repo := new(mocks.NotificationRepository)
	svc := NewService(repo, nil)
	id, userID := uuid.New(), uuid.New()
	repo.On("SoftDelete", mock.Anything, id, userID).Return(false, nil)

	assert.ErrorIs(t, svc.Delete(context.Background(), id, userID), domain.ErrNotFound)
}

func TestList_NormalizesPagination(t *testing.T) {
	repo := new(mocks.NotificationRepository)
	svc := NewService(repo, nil)
	userID := uuid.New()
	filter := domain.NotificationFilter{UnreadOnly: true}

	repo.On("ListByUser", mock.Anything, userID, filter, domain.PaginationParams{Page: 1, Limit: 20}).
		Return([]domain.Notification{{ID: uuid.New()}}, int64(1), nil)

	page, err := svc.List(context.Background(), userID, filter, domain.PaginationParams{})

	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, int64(1), page.Pagination.Total)
	assert.Equal(t, 1, page.Pagination.TotalPages)
}
