package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/guudweb/judicial-backend/internal/domain"
)

// UserRepository is the user directory the workflows resolve approvers from.
// Lookups return nil, nil when no active user matches.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByRole(ctx context.Context, role domain.Role) (*domain.User, error)
	FindByRoleAndDepartment(ctx context.Context, role domain.Role, departmentID uuid.UUID) (*domain.User, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, full_name, dni, phone, role, department_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := conn(ctx, r.db).QueryRowxContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.FullName,
		user.DNI, user.Phone, user.Role, user.DepartmentID, user.IsActive,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	return translateError(err)
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.getOne(ctx, `SELECT * FROM users WHERE id = $1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT * FROM users WHERE LOWER(email) = LOWER($1)`, email)
}

// FindByRole returns the longest-serving active holder of a global role.
func (r *userRepository) FindByRole(ctx context.Context, role domain.Role) (*domain.User, error) {
	query := `
		SELECT * FROM users
		WHERE role = $1 AND is_active = true
		ORDER BY created_at ASC
		LIMIT 1`
	return r.getOne(ctx, query, role)
}

func (r *userRepository) FindByRoleAndDepartment(ctx context.Context, role domain.Role, departmentID uuid.UUID) (*domain.User, error) {
	query := `
		SELECT * FROM users
		WHERE role = $1 AND department_id = $2 AND is_active = true
		ORDER BY created_at ASC
		LIMIT 1`
	return r.getOne(ctx, query, role, departmentID)
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE users SET last_login_at = NOW() WHERE id = $1`
	_, err := conn(ctx, r.db).ExecContext(ctx, query, id)
	return err
}

func (r *userRepository) getOne(ctx context.Context, query string, args ...interface{}) (*domain.User, error) {
	var user domain.User
	err := conn(ctx, r.db).GetContext(ctx, &user, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
