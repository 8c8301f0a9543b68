package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/guudweb/judicial-backend/internal/domain"
	"github.com/guudweb/judicial-backend/internal/mocks"
)

func TestRecord_FillsRequestMeta(t *testing.T) {
	repo := new(mocks.AuditLogRepository)
	svc := NewService(repo)

	var written *domain.AuditLog
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.AuditLog")).
		Run(func(args mock.Arguments) { written = args.Get(1).(*domain.AuditLog) }).
		Return(nil)

	ctx := WithRequestMeta(context.Background(), domain.RequestMeta{IPAddress: "10.0.0.7", UserAgent: "curl/8.0"})
	svc.Record(ctx, domain.CreateAuditLogInput{
		UserID:     uuid.New(),
		Action:     domain.AuditApprove,
		EntityType: domain.EntityCaseFile,
		EntityID:   uuid.New(),
		OldValues:  map[string]interface{}{"status": "pending_approval"},
		NewValues:  map[string]interface{}{"status": "approved"},
	})

	require.NotNil(t, written)
	assert.NotEqual(t, uuid.Nil, written.ID)
	assert.Equal(t, "10.0.0.7", *written.IPAddress)
	assert.Equal(t, "curl/8.0", *written.UserAgent)
	assert.JSONEq(t, `{"status":"approved"}`, string(written.NewValues))
	assert.JSONEq(t, `{"status":"pending_approval"}`, string(written.OldValues))
}

func TestRecord_ExplicitValuesWin(t *testing.T) {
	repo := new(mocks.AuditLogRepository)
	svc := NewService(repo)

	ip := "192.168.1.1"
	repo.On("Create", mock.Anything, mock.MatchedBy(func(l *domain.AuditLog) bool {
		return *l.IPAddress == ip && l.UserAgent == nil && l.OldValues == nil
	})).Return(nil).Once()

	svc.Record(context.Background(), domain.CreateAuditLogInput{
		UserID:     uuid.New(),
		Action:     domain.AuditLogin,
		EntityType: domain.EntityUser,
		EntityID:   uuid.New(),
		IPAddress:  &ip,
	})

	repo.AssertExpectations(t)
}

func TestRecord_SwallowsStoreErrors(t *testing.T) {
	repo := new(mocks.AuditLogRepository)
	svc := NewService(repo)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	assert.NotPanics(t, func() {
		svc.Record(context.Background(), domain.CreateAuditLogInput{
			Action:    domain.AuditDelete,
			NewValues: json.RawMessage(`{}`),
		})
	})
}

func TestGetRecentActivities_ClampsLimit(t *testing.T) {
	repo := new(mocks.AuditLogRepository)
	svc := NewService(repo)
	repo.On("List", mock.Anything, domain.PaginationParams{Page: 1, Limit: 100}).Return([]domain.AuditLog{{ID: uuid.New()}}, int64(1), nil)

	logs, err := svc.GetRecentActivities(context.Background(), 500)

	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestListForEntity(t *testing.T) {
	repo := new(mocks.AuditLogRepository)
	svc := NewService(repo)
	id := uuid.New()
	repo.On("ListByEntity", mock.Anything, domain.EntityNews, id, domain.PaginationParams{Page: 2, Limit: 20}).
		Return([]domain.AuditLog{{ID: uuid.New()}}, int64(21), nil)

	page, err := svc.ListForEntity(context.Background(), domain.EntityNews, id, domain.PaginationParams{Page: 2})

	require.NoError(t, err)
	assert.Equal(t, int64(21), page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	assert.False(t, page.Pagination.HasNext)
}
