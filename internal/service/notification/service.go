package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/guudweb/judicial-backend/internal/domain"
	"github.com/guudweb/judicial-backend/internal/repository"
)

type Service interface {
	// Notify stores an unread notification and queues its email.
	Notify(ctx context.Context, in domain.NotifyInput) (*domain.Notification, error)

	List(ctx context.Context, userID uuid.UUID, filter domain.NotificationFilter, params domain.PaginationParams) (domain.Page[domain.Notification], error)
	GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Notification, error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
	MarkManyAsRead(ctx context.Context, ids []uuid.UUID, userID uuid.UUID) (int64, error)
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
	GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

// Queue accepts notifications whose email should be sent.
type Queue interface {
	Enqueue(n *domain.Notification) bool
}

type service struct {
	notifRepo repository.NotificationRepository
	queue     Queue
}

func NewService(notifRepo repository.NotificationRepository, queue Queue) Service {
	return &service{
		notifRepo: notifRepo,
		queue:     queue,
	}
}

func (s *service) Notify(ctx context.Context, in domain.NotifyInput) (*domain.Notification, error) {
	metadata, err := json.Marshal(in.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode notification metadata: %w", err)
	}

	entityType := in.EntityType
	entityID := in.EntityID
	notif := &domain.Notification{
		ID:         uuid.New(),
		UserID:     in.UserID,
		Type:       in.Type,
		Title:      in.Title,
		Message:    in.Message,
		Status:     domain.NotificationUnread,
		EntityType: &entityType,
		EntityID:   &entityID,
		Metadata:   metadata,
	}

	if err := s.notifRepo.Create(ctx, notif); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	if s.queue != nil {
		s.queue.Enqueue(notif)
	}

	return notif, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, filter domain.NotificationFilter, params domain.PaginationParams) (domain.Page[domain.Notification], error) {
	params.Normalize()

	notifications, total, err := s.notifRepo.ListByUser(ctx, userID, filter, params)
	if err != nil {
		return domain.Page[domain.Notification]{}, err
	}

	return domain.NewPage(notifications, params, total), nil
}

func (s *service) GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Notification, error) {
	notif, err := s.notifRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if notif == nil {
		return nil, domain.NotFound("notification not found")
	}
	return notif, nil
}

func (s *service) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	ok, err := s.notifRepo.MarkAsRead(ctx, id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("notification not found")
	}
	return nil
}

func (s *service) MarkManyAsRead(ctx context.Context, ids []uuid.UUID, userID uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, domain.ValidationFailed("ids must not be empty")
	}
	return s.notifRepo.MarkManyAsRead(ctx, ids, userID)
}

func (s *service) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notifRepo.MarkAllAsRead(ctx, userID)
}

func (s *service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	ok, err := s.notifRepo.SoftDelete(ctx, id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("notification not found")
	}
	return nil
}

func (s *service) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notifRepo.CountUnread(ctx, userID)
}
