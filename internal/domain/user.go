package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FullName     string     `json:"full_name" db:"full_name"`
	DNI          *string    `json:"dni,omitempty" db:"dni"`
	Phone        *string    `json:"phone,omitempty" db:"phone"`
	Role         Role       `json:"role" db:"role"`
	DepartmentID *uuid.UUID `json:"department_id,omitempty" db:"department_id"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

type Department struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Code        string    `json:"code" db:"code"`
	Description *string   `json:"description,omitempty" db:"description"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshInput struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type Role string

const (
	RoleAdmin                Role = "admin"
	RoleCouncilPresident     Role = "presidente_cspj"
	RoleCouncilVicePresident Role = "vicepresidente_cspj"
	RoleSecretaryGeneral     Role = "secretario_general"
	RoleDeputySecretary      Role = "secretario_adjunto"
	RoleAppealsPresident     Role = "presidente_audiencia"
	RoleJudge                Role = "juez"
	RolePressTechnician      Role = "tecnico_prensa"
	RolePressDirector        Role = "director_prensa"
	RoleCitizen              Role = "ciudadano"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleCouncilPresident, RoleCouncilVicePresident, RoleSecretaryGeneral,
		RoleDeputySecretary, RoleAppealsPresident, RoleJudge, RolePressTechnician,
		RolePressDirector, RoleCitizen:
		return true
	default:
		return false
	}
}

// Actor is the authenticated caller of a workflow operation.
type Actor struct {
	ID           uuid.UUID
	Role         Role
	DepartmentID *uuid.UUID
	FullName     string
}

func (u *User) Actor() Actor {
	return Actor{
		ID:           u.ID,
		Role:         u.Role,
		DepartmentID: u.DepartmentID,
		FullName:     u.FullName,
	}
}
