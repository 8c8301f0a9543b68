package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/guudweb/judicial-backend/internal/domain"
)

type CaseFileRepository interface {
	// NextSequence atomically reserves the next case number sequence for year.
	NextSequence(ctx context.Context, year int) (int64, error)
	Create(ctx context.Context, cf *domain.CaseFile) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.CaseFile, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.CaseFile, error)
	// Save writes cf if the stored version still equals expectedVersion and
	// bumps cf.Version. It returns ErrStaleVersion otherwise.
	Save(ctx context.Context, cf *domain.CaseFile, expectedVersion int) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter domain.CaseFileFilter, params domain.PaginationParams) ([]domain.CaseFile, int64, error)
	CountByStatus(ctx context.Context, filter domain.CaseFileFilter) (map[domain.CaseFileStatus]int64, error)
	CountPendingFor(ctx context.Context, userID uuid.UUID) (int64, error)
}

type caseFileRepository struct {
	db *sqlx.DB
}

func NewCaseFileRepository(db *sqlx.DB) CaseFileRepository {
	return &caseFileRepository{db: db}
}

func (r *caseFileRepository) NextSequence(ctx context.Context, year int) (int64, error) {
	// The first reservation of a year starts after any numbers already issued,
	// so rows created before the counter table existed are never reused.
	query := `
		INSERT INTO case_number_sequences (year, last_value)
		VALUES ($1, (SELECT COUNT(*) FROM case_files WHERE case_number LIKE $2) + 1)
		ON CONFLICT (year) DO UPDATE SET last_value = case_number_sequences.last_value + 1
		RETURNING last_value`

	var seq int64
	err := conn(ctx, r.db).QueryRowxContext(ctx, query, year, fmt.Sprintf("%d-%%", year)).Scan(&seq)
	return seq, err
}

func (r *caseFileRepository) Create(ctx context.Context, cf *domain.CaseFile) error {
	query := `
		INSERT INTO case_files (id, case_number, title, description, status, current_level, department_id, created_by, assigned_to, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	err := conn(ctx, r.db).QueryRowxContext(ctx, query,
		cf.ID, cf.CaseNumber, cf.Title, cf.Description, cf.Status, cf.CurrentLevel,
		cf.DepartmentID, cf.CreatedBy, cf.AssignedTo, cf.Version,
	).Scan(&cf.CreatedAt, &cf.UpdatedAt)
	return translateError(err)
}

func (r *caseFileRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.CaseFile, error) {
	return r.getOne(ctx, `SELECT * FROM case_files WHERE id = $1`, id)
}

func (r *caseFileRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.CaseFile, error) {
	return r.getOne(ctx, `SELECT * FROM case_files WHERE id = $1 FOR UPDATE`, id)
}

func (r *caseFileRepository) Save(ctx context.Context, cf *domain.CaseFile, expectedVersion int) error {
	query := `
		UPDATE case_files
		SET title = $1, description = $2, status = $3, current_level = $4, assigned_to = $5,
			version = version + 1, updated_at = NOW()
		WHERE id = $6 AND version = $7
		RETURNING version, updated_at`

	err := conn(ctx, r.db).QueryRowxContext(ctx, query,
		cf.Title, cf.Description, cf.Status, cf.CurrentLevel, cf.AssignedTo,
		cf.ID, expectedVersion,
	).Scan(&cf.Version, &cf.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrStaleVersion
	}
	return err
}

func (r *caseFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM case_files WHERE id = $1`, id)
	return err
}

func (r *caseFileRepository) List(ctx context.Context, filter domain.CaseFileFilter, params domain.PaginationParams) ([]domain.CaseFile, int64, error) {
	params.Normalize()
	where, args := caseFileWhere(filter)

	var total int64
	countQuery := `SELECT COUNT(*) FROM case_files` + where
	if err := conn(ctx, r.db).GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT * FROM case_files%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)

	var files []domain.CaseFile
	err := conn(ctx, r.db).SelectContext(ctx, &files, query, append(args, params.Limit, params.Offset())...)
	return files, total, err
}

func (r *caseFileRepository) CountByStatus(ctx context.Context, filter domain.CaseFileFilter) (map[domain.CaseFileStatus]int64, error) {
	where, args := caseFileWhere(filter)

	var rows []struct {
		Status domain.CaseFileStatus `db:"status"`
		Count  int64                 `db:"count"`
	}
	query := `SELECT status, COUNT(*) AS count FROM case_files` + where + ` GROUP BY status`
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	counts := make(map[domain.CaseFileStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *caseFileRepository) CountPendingFor(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM case_files WHERE assigned_to = $1 AND status = $2`
	err := conn(ctx, r.db).GetContext(ctx, &count, query, userID, domain.CaseFilePendingApproval)
	return count, err
}

func (r *caseFileRepository) getOne(ctx context.Context, query string, args ...interface{}) (*domain.CaseFile, error) {
	var cf domain.CaseFile
	err := conn(ctx, r.db).GetContext(ctx, &cf, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cf, nil
}

func caseFileWhere(filter domain.CaseFileFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if s := strings.TrimSpace(filter.Search); s != "" {
		p := arg("%" + s + "%")
		conds = append(conds, fmt.Sprintf("(case_number ILIKE %s OR title ILIKE %s)", p, p))
	}
	if filter.Status != nil {
		conds = append(conds, "status = "+arg(*filter.Status))
	}
	if filter.DepartmentID != nil {
		conds = append(conds, "department_id = "+arg(*filter.DepartmentID))
	}
	if filter.ScopeDepartmentID != nil {
		conds = append(conds, "department_id = "+arg(*filter.ScopeDepartmentID))
	}
	if filter.ScopeUserID != nil {
		p := arg(*filter.ScopeUserID)
		conds = append(conds, fmt.Sprintf("(created_by = %s OR assigned_to = %s)", p, p))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
