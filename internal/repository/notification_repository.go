package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/guudweb/judicial-backend/internal/domain"
)

// NotificationRepository scopes every read and write to the recipient, and
// never returns notifications in the deleted state.
type NotificationRepository interface {
	Create(ctx context.Context, notif *domain.Notification) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filter domain.NotificationFilter, params domain.PaginationParams) ([]domain.Notification, int64, error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) (bool, error)
	MarkManyAsRead(ctx context.Context, ids []uuid.UUID, userID uuid.UUID) (int64, error)
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
	SoftDelete(ctx context.Context, id, userID uuid.UUID) (bool, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notif *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, type, title, message, status, entity_type, entity_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`

	return conn(ctx, r.db).QueryRowxContext(ctx, query,
		notif.ID, notif.UserID, notif.Type, notif.Title, notif.Message, notif.Status,
		notif.EntityType, notif.EntityID, jsonParam(notif.Metadata),
	).Scan(&notif.CreatedAt)
}

func (r *notificationRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Notification, error) {
	var notif domain.Notification
	query := `SELECT * FROM notifications WHERE id = $1 AND user_id = $2 AND status <> $3`

	err := conn(ctx, r.db).GetContext(ctx, &notif, query, id, userID, domain.NotificationDeleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &notif, nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, filter domain.NotificationFilter, params domain.PaginationParams) ([]domain.Notification, int64, error) {
	params.Normalize()

	where := ` WHERE user_id = $1 AND status <> $2`
	args := []interface{}{userID, domain.NotificationDeleted}
	if filter.UnreadOnly {
		args = append(args, domain.NotificationUnread)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		where += fmt.Sprintf(" AND type = $%d", len(args))
	}

	var total int64
	if err := conn(ctx, r.db).GetContext(ctx, &total, `SELECT COUNT(*) FROM notifications`+where, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT * FROM notifications%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)

	var notifications []domain.Notification
	err := conn(ctx, r.db).SelectContext(ctx, &notifications, query, append(args, params.Limit, params.Offset())...)
	return notifications, total, err
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	query := `
		UPDATE notifications SET status = $1, read_at = COALESCE(read_at, NOW())
		WHERE id = $2 AND user_id = $3 AND status <> $4`

	res, err := conn(ctx, r.db).ExecContext(ctx, query, domain.NotificationRead, id, userID, domain.NotificationDeleted)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *notificationRepository) MarkManyAsRead(ctx context.Context, ids []uuid.UUID, userID uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}

	query := `
		UPDATE notifications SET status = $1, read_at = NOW()
		WHERE id = ANY($2::uuid[]) AND user_id = $3 AND status = $4`

	res, err := conn(ctx, r.db).ExecContext(ctx, query, domain.NotificationRead, pq.Array(strIDs), userID, domain.NotificationUnread)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `UPDATE notifications SET status = $1, read_at = NOW() WHERE user_id = $2 AND status = $3`

	res, err := conn(ctx, r.db).ExecContext(ctx, query, domain.NotificationRead, userID, domain.NotificationUnread)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *notificationRepository) SoftDelete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	query := `
		UPDATE notifications SET status = $1, deleted_at = NOW()
		WHERE id = $2 AND user_id = $3 AND status <> $1`

	res, err := conn(ctx, r.db).ExecContext(ctx, query, domain.NotificationDeleted, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND status = $2`
	err := conn(ctx, r.db).GetContext(ctx, &count, query, userID, domain.NotificationUnread)
	return count, err
}
