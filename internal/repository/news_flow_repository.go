package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/guudweb/judicial-backend/internal/domain"
)

type NewsFlowRepository interface {
	Append(ctx context.Context, t *domain.NewsTransition) error
	ListByNews(ctx context.Context, newsID uuid.UUID) ([]domain.NewsTransition, error)
}

type newsFlowRepository struct {
	db *sqlx.DB
}

func NewNewsFlowRepository(db *sqlx.DB) NewsFlowRepository {
	return &newsFlowRepository{db: db}
}

func (r *newsFlowRepository) Append(ctx context.Context, t *domain.NewsTransition) error {
	query := `
		INSERT INTO news_approval_flow (id, news_id, from_user_id, to_user_id, action, comments, from_status, to_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING seq, created_at`

	return conn(ctx, r.db).QueryRowxContext(ctx, query,
		t.ID, t.NewsID, t.FromUserID, t.ToUserID, t.Action, t.Comments, t.FromStatus, t.ToStatus,
	).Scan(&t.Seq, &t.CreatedAt)
}

func (r *newsFlowRepository) ListByNews(ctx context.Context, newsID uuid.UUID) ([]domain.NewsTransition, error) {
	query := `
		SELECT
			nf.*,
			fu.full_name AS from_user_name,
			tu.full_name AS to_user_name
		FROM news_approval_flow nf
		LEFT JOIN users fu ON nf.from_user_id = fu.id
		LEFT JOIN users tu ON nf.to_user_id = tu.id
		WHERE nf.news_id = $1
		ORDER BY nf.seq DESC`

	var rows []domain.NewsTransition
	err := conn(ctx, r.db).SelectContext(ctx, &rows, query, newsID)
	return rows, err
}
