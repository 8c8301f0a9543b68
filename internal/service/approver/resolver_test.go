package approver

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guudweb/judicial-backend/internal/domain"
	"github.com/guudweb/judicial-backend/internal/mocks"
)

func TestResolver(t *testing.T) {
	store := mocks.NewStore()
	dept := uuid.New()
	otherDept := uuid.New()

	retired := store.AddUser(domain.User{Email: "old@example.org", Role: domain.RoleSecretaryGeneral, IsActive: false})
	first := store.AddUser(domain.User{Email: "sg1@example.org", Role: domain.RoleSecretaryGeneral, IsActive: true})
	store.AddUser(domain.User{Email: "sg2@example.org", Role: domain.RoleSecretaryGeneral, IsActive: true})
	president := store.AddUser(domain.User{Email: "pa@example.org", Role: domain.RoleAppealsPresident, DepartmentID: &dept, IsActive: true})

	r := NewResolver(store.Users())
	ctx := context.Background()

	t.Run("oldest active holder wins", func(t *testing.T) {
		got, err := r.SecretaryGeneral(ctx)
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)
		assert.NotEqual(t, retired.ID, got.ID)
	})

	t.Run("appeals president by department", func(t *testing.T) {
		got, err := r.AppealsPresident(ctx, dept)
		require.NoError(t, err)
		assert.Equal(t, president.ID, got.ID)

		_, err = r.AppealsPresident(ctx, otherDept)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("missing roles", func(t *testing.T) {
		_, err := r.PressDirector(ctx)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = r.CouncilPresident(ctx)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
