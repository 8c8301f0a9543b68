package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/guudweb/judicial-backend/internal/domain"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	ListByCaseFile(ctx context.Context, caseFileID uuid.UUID) ([]domain.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type documentRepository struct {
	db *sqlx.DB
}

func NewDocumentRepository(db *sqlx.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *domain.Document) error {
	query := `
		INSERT INTO documents (id, case_file_id, file_name, file_size, mime_type, storage_key, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	return conn(ctx, r.db).QueryRowxContext(ctx, query,
		doc.ID, doc.CaseFileID, doc.FileName, doc.FileSize, doc.MimeType, doc.StorageKey, doc.UploadedBy,
	).Scan(&doc.CreatedAt)
}

func (r *documentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := conn(ctx, r.db).GetContext(ctx, &doc, `SELECT * FROM documents WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) ListByCaseFile(ctx context.Context, caseFileID uuid.UUID) ([]domain.Document, error) {
	var docs []domain.Document
	query := `SELECT * FROM documents WHERE case_file_id = $1 ORDER BY created_at ASC`
	err := conn(ctx, r.db).SelectContext(ctx, &docs, query, caseFileID)
	return docs, err
}

func (r *documentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	return err
}
