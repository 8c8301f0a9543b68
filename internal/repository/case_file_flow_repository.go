package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/guudweb/judicial-backend/internal/domain"
)

// CaseFileFlowRepository is the append-only approval ledger of case files.
type CaseFileFlowRepository interface {
	Append(ctx context.Context, t *domain.CaseFileTransition) error
	// ListByCaseFile returns the ledger newest first.
	ListByCaseFile(ctx context.Context, caseFileID uuid.UUID) ([]domain.CaseFileTransition, error)
	// FindLatestMatching returns the newest row accepted by match, or nil.
	FindLatestMatching(ctx context.Context, caseFileID uuid.UUID, match domain.TransitionMatch) (*domain.CaseFileTransition, error)
}

type caseFileFlowRepository struct {
	db *sqlx.DB
}

func NewCaseFileFlowRepository(db *sqlx.DB) CaseFileFlowRepository {
	return &caseFileFlowRepository{db: db}
}

func (r *caseFileFlowRepository) Append(ctx context.Context, t *domain.CaseFileTransition) error {
	query := `
		INSERT INTO approval_flow (id, case_file_id, from_user_id, to_user_id, action, comments, from_level, to_level)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING seq, created_at`

	return conn(ctx, r.db).QueryRowxContext(ctx, query,
		t.ID, t.CaseFileID, t.FromUserID, t.ToUserID, t.Action, t.Comments, t.FromLevel, t.ToLevel,
	).Scan(&t.Seq, &t.CreatedAt)
}

func (r *caseFileFlowRepository) ListByCaseFile(ctx context.Context, caseFileID uuid.UUID) ([]domain.CaseFileTransition, error) {
	query := `
		SELECT
			af.*,
			fu.full_name AS from_user_name,
			tu.full_name AS to_user_name
		FROM approval_flow af
		LEFT JOIN users fu ON af.from_user_id = fu.id
		LEFT JOIN users tu ON af.to_user_id = tu.id
		WHERE af.case_file_id = $1
		ORDER BY af.seq DESC`

	var rows []domain.CaseFileTransition
	err := conn(ctx, r.db).SelectContext(ctx, &rows, query, caseFileID)
	return rows, err
}

func (r *caseFileFlowRepository) FindLatestMatching(ctx context.Context, caseFileID uuid.UUID, match domain.TransitionMatch) (*domain.CaseFileTransition, error) {
	conds := []string{"case_file_id = $1"}
	args := []interface{}{caseFileID}

	if match.ToLevel != nil {
		args = append(args, *match.ToLevel)
		conds = append(conds, fmt.Sprintf("to_level = $%d", len(args)))
	}
	if len(match.Actions) > 0 {
		actions := make([]string, len(match.Actions))
		for i, a := range match.Actions {
			actions[i] = string(a)
		}
		args = append(args, pq.Array(actions))
		conds = append(conds, fmt.Sprintf("action = ANY($%d)", len(args)))
	}

	query := `SELECT * FROM approval_flow WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY seq DESC LIMIT 1`

	var t domain.CaseFileTransition
	err := conn(ctx, r.db).GetContext(ctx, &t, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
