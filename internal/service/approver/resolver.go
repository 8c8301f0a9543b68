package approver

import (
	"context"

	"github.com/google/uuid"

	"github.com/guudweb/judicial-backend/internal/domain"
	"github.com/guudweb/judicial-backend/internal/repository"
)

// Resolver finds the user who acts next in a workflow. A missing approver
// is a NotFound error; workflows never guess a substitute.
type Resolver interface {
	AppealsPresident(ctx context.Context, departmentID uuid.UUID) (*domain.User, error)
	SecretaryGeneral(ctx context.Context) (*domain.User, error)
	PressDirector(ctx context.Context) (*domain.User, error)
	CouncilPresident(ctx context.Context) (*domain.User, error)
}

type resolver struct {
	userRepo repository.UserRepository
}

func NewResolver(userRepo repository.UserRepository) Resolver {
	return &resolver{userRepo: userRepo}
}

func (r *resolver) AppealsPresident(ctx context.Context, departmentID uuid.UUID) (*domain.User, error) {
	user, err := r.userRepo.FindByRoleAndDepartment(ctx, domain.RoleAppealsPresident, departmentID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.NotFound("no appeals court president found for department %s", departmentID)
	}
	return user, nil
}

func (r *resolver) SecretaryGeneral(ctx context.Context) (*domain.User, error) {
	return r.byRole(ctx, domain.RoleSecretaryGeneral, "no secretary general found")
}

func (r *resolver) PressDirector(ctx context.Context) (*domain.User, error) {
	return r.byRole(ctx, domain.RolePressDirector, "no press director found")
}

func (r *resolver) CouncilPresident(ctx context.Context) (*domain.User, error) {
	return r.byRole(ctx, domain.RoleCouncilPresident, "no council president found")
}

func (r *resolver) byRole(ctx context.Context, role domain.Role, missing string) (*domain.User, error) {
	user, err := r.userRepo.FindByRole(ctx, role)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.NotFound("%s", missing)
	}
	return user, nil
}
