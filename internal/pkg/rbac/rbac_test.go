package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guudweb/judicial-backend/internal/domain"
)

func TestDefaultTable(t *testing.T) {
	tests := []struct {
		role    domain.Role
		action  Action
		allowed bool
	}{
		{domain.RoleJudge, CaseFilesCreate, true},
		{domain.RoleAppealsPresident, CaseFilesCreate, false},
		{domain.RoleAppealsPresident, CaseFilesApproveAudiencia, true},
		{domain.RoleSecretaryGeneral, CaseFilesApproveFinal, true},
		{domain.RoleSecretaryGeneral, CaseFilesEditAny, true},
		{domain.RoleAdmin, CaseFilesDeleteAny, true},
		{domain.RoleSecretaryGeneral, CaseFilesDeleteAny, false},
		{domain.RolePressTechnician, NewsCreate, true},
		{domain.RolePressTechnician, NewsApproveDirector, false},
		{domain.RoleCouncilPresident, NewsApprovePresident, true},
		{domain.RoleJudge, NewsCourtSubmission, true},
		{domain.RoleCitizen, AuditView, false},
		{domain.RoleAdmin, Action("unknown.action"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.action), func(t *testing.T) {
			assert.Equal(t, tt.allowed, Allows(tt.role, tt.action))
		})
	}
}

func TestPermissionsFor(t *testing.T) {
	roles := Default().PermissionsFor(AuditView)
	assert.Equal(t, []domain.Role{domain.RoleAdmin, domain.RoleCouncilPresident, domain.RoleSecretaryGeneral}, roles)
	assert.Empty(t, Default().PermissionsFor(Action("nope")))
}

func TestParseRejectsUnknownRole(t *testing.T) {
	_, err := Parse([]byte("permissions:\n  news.create: [editor]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "editor")
}

func TestParseCustomTable(t *testing.T) {
	table, err := Parse([]byte("permissions:\n  news.create: [ciudadano]\n"))
	require.NoError(t, err)
	assert.True(t, table.Allows(domain.RoleCitizen, NewsCreate))
	assert.False(t, table.Allows(domain.RolePressTechnician, NewsCreate))
}

func TestActionsFor(t *testing.T) {
	assert.Equal(t, []Action{NewsApproveDirector, NewsCreate, NewsEditAny}, ActionsFor(domain.RolePressDirector))
	assert.Empty(t, ActionsFor(domain.RoleCitizen))
}
