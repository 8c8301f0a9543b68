package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/guudweb/judicial-backend/internal/domain"
)

type NewsRepository interface {
	Create(ctx context.Context, n *domain.News) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.News, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.News, error)
	GetBySlug(ctx context.Context, slug string) (*domain.News, error)
	// SlugExists ignores the row identified by excludeID, if any.
	SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, n *domain.News, expectedVersion int) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter domain.NewsFilter, params domain.PaginationParams) ([]domain.News, int64, error)
	CountByStatus(ctx context.Context) (map[domain.NewsStatus]int64, error)
	CountByType(ctx context.Context) (map[domain.NewsType]int64, error)
	CountPublishedSince(ctx context.Context, since time.Time) (int64, error)
}

type newsRepository struct {
	db *sqlx.DB
}

func NewNewsRepository(db *sqlx.DB) NewsRepository {
	return &newsRepository{db: db}
}

const newsSelect = `
	SELECT n.*, u.full_name AS author_name
	FROM news n
	LEFT JOIN users u ON n.author_id = u.id`

func (r *newsRepository) Create(ctx context.Context, n *domain.News) error {
	query := `
		INSERT INTO news (id, title, subtitle, slug, content, type, status, author_id,
			approved_by_director, approved_by_president, image_url, image_key, published_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at`

	err := conn(ctx, r.db).QueryRowxContext(ctx, query,
		n.ID, n.Title, n.Subtitle, n.Slug, n.Content, n.Type, n.Status, n.AuthorID,
		n.ApprovedByDirector, n.ApprovedByPresident, n.ImageURL, n.ImageKey, n.PublishedAt, n.Version,
	).Scan(&n.CreatedAt, &n.UpdatedAt)
	return translateError(err)
}

func (r *newsRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.News, error) {
	return r.getOne(ctx, newsSelect+` WHERE n.id = $1`, id)
}

func (r *newsRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.News, error) {
	return r.getOne(ctx, `SELECT * FROM news WHERE id = $1 FOR UPDATE`, id)
}

func (r *newsRepository) GetBySlug(ctx context.Context, slug string) (*domain.News, error) {
	return r.getOne(ctx, newsSelect+` WHERE n.slug = $1`, slug)
}

func (r *newsRepository) SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM news WHERE slug = $1 AND ($2::uuid IS NULL OR id <> $2))`
	err := conn(ctx, r.db).GetContext(ctx, &exists, query, slug, excludeID)
	return exists, err
}

func (r *newsRepository) Save(ctx context.Context, n *domain.News, expectedVersion int) error {
	query := `
		UPDATE news
		SET title = $1, subtitle = $2, slug = $3, content = $4, type = $5, status = $6,
			approved_by_director = $7, approved_by_president = $8, image_url = $9, image_key = $10,
			published_at = $11, version = version + 1, updated_at = NOW()
		WHERE id = $12 AND version = $13
		RETURNING version, updated_at`

	err := conn(ctx, r.db).QueryRowxContext(ctx, query,
		n.Title, n.Subtitle, n.Slug, n.Content, n.Type, n.Status,
		n.ApprovedByDirector, n.ApprovedByPresident, n.ImageURL, n.ImageKey,
		n.PublishedAt, n.ID, expectedVersion,
	).Scan(&n.Version, &n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrStaleVersion
	}
	return translateError(err)
}

func (r *newsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM news WHERE id = $1`, id)
	return err
}

func (r *newsRepository) List(ctx context.Context, filter domain.NewsFilter, params domain.PaginationParams) ([]domain.News, int64, error) {
	params.Normalize()
	where, args := newsWhere(filter)

	var total int64
	if err := conn(ctx, r.db).GetContext(ctx, &total, `SELECT COUNT(*) FROM news n`+where, args...); err != nil {
		return nil, 0, err
	}

	order := "n.created_at DESC"
	if filter.PublishedOnly {
		order = "n.published_at DESC"
	}
	query := fmt.Sprintf(`%s%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`, newsSelect, where, order, len(args)+1, len(args)+2)

	var items []domain.News
	err := conn(ctx, r.db).SelectContext(ctx, &items, query, append(args, params.Limit, params.Offset())...)
	return items, total, err
}

func (r *newsRepository) CountByStatus(ctx context.Context) (map[domain.NewsStatus]int64, error) {
	var rows []struct {
		Status domain.NewsStatus `db:"status"`
		Count  int64             `db:"count"`
	}
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, `SELECT status, COUNT(*) AS count FROM news GROUP BY status`); err != nil {
		return nil, err
	}

	counts := make(map[domain.NewsStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *newsRepository) CountByType(ctx context.Context) (map[domain.NewsType]int64, error) {
	var rows []struct {
		Type  domain.NewsType `db:"type"`
		Count int64           `db:"count"`
	}
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, `SELECT type, COUNT(*) AS count FROM news GROUP BY type`); err != nil {
		return nil, err
	}

	counts := make(map[domain.NewsType]int64, len(rows))
	for _, row := range rows {
		counts[row.Type] = row.Count
	}
	return counts, nil
}

func (r *newsRepository) CountPublishedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM news WHERE status = $1 AND published_at >= $2`
	err := conn(ctx, r.db).GetContext(ctx, &count, query, domain.NewsPublished, since)
	return count, err
}

func (r *newsRepository) getOne(ctx context.Context, query string, args ...interface{}) (*domain.News, error) {
	var n domain.News
	err := conn(ctx, r.db).GetContext(ctx, &n, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func newsWhere(filter domain.NewsFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.PublishedOnly {
		conds = append(conds, "n.status = "+arg(domain.NewsPublished))
	} else if filter.Status != nil {
		conds = append(conds, "n.status = "+arg(*filter.Status))
	}
	if filter.Type != nil {
		conds = append(conds, "n.type = "+arg(*filter.Type))
	}
	if filter.AuthorID != nil {
		conds = append(conds, "n.author_id = "+arg(*filter.AuthorID))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		p := arg("%" + s + "%")
		conds = append(conds, fmt.Sprintf("(n.title ILIKE %s OR n.content ILIKE %s)", p, p))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
