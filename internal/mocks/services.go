package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/guudweb/judicial-backend/internal/domain"
)

type NotificationService struct {
	mock.Mock
}

func (m *NotificationService) Notify(ctx context.Context, in domain.NotifyInput) (*domain.Notification, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *NotificationService) List(ctx context.Context, userID uuid.UUID, filter domain.NotificationFilter, params domain.PaginationParams) (domain.Page[domain.Notification], error) {
	args := m.Called(ctx, userID, filter, params)
	return args.Get(0).(domain.Page[domain.Notification]), args.Error(1)
}

func (m *NotificationService) GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Notification, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *NotificationService) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *NotificationService) MarkManyAsRead(ctx context.Context, ids []uuid.UUID, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ids, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *NotificationService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *NotificationService) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// Notified returns the inputs of every Notify call so far, in order.
func (m *NotificationService) Notified() []domain.NotifyInput {
	var inputs []domain.NotifyInput
	for _, call := range m.Calls {
		if call.Method == "Notify" {
			inputs = append(inputs, call.Arguments.Get(1).(domain.NotifyInput))
		}
	}
	return inputs
}

type AuditService struct {
	mock.Mock
}

func (m *AuditService) Record(ctx context.Context, input domain.CreateAuditLogInput) {
	m.Called(ctx, input)
}

func (m *AuditService) GetRecentActivities(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.AuditLog), args.Error(1)
}

func (m *AuditService) ListForEntity(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID, params domain.PaginationParams) (domain.Page[domain.AuditLog], error) {
	args := m.Called(ctx, entityType, entityID, params)
	return args.Get(0).(domain.Page[domain.AuditLog]), args.Error(1)
}

// Recorded returns the actions of every Record call so far, in order.
func (m *AuditService) Recorded() []domain.AuditAction {
	var actions []domain.AuditAction
	for _, call := range m.Calls {
		if call.Method == "Record" {
			actions = append(actions, call.Arguments.Get(1).(domain.CreateAuditLogInput).Action)
		}
	}
	return actions
}

type DashboardService struct {
	mock.Mock
}

func (m *DashboardService) CaseFileStats(ctx context.Context, userID uuid.UUID, scope domain.CaseFileFilter) (*domain.CaseFileStats, error) {
	args := m.Called(ctx, userID, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CaseFileStats), args.Error(1)
}

func (m *DashboardService) NewsStats(ctx context.Context) (*domain.NewsStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NewsStats), args.Error(1)
}

func (m *DashboardService) Invalidate(ctx context.Context) {
	m.Called(ctx)
}

type MediaService struct {
	mock.Mock
}

func (m *MediaService) Put(ctx context.Context, prefix string, file domain.FileUpload) (string, error) {
	args := m.Called(ctx, prefix, file)
	return args.String(0), args.Error(1)
}

func (m *MediaService) Remove(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MediaService) URL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

type EmailService struct {
	mock.Mock
}

func (m *EmailService) SendNotification(ctx context.Context, recipient *domain.User, n *domain.Notification) error {
	args := m.Called(ctx, recipient, n)
	return args.Error(0)
}
