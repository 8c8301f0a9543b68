// Package rbac holds the role permission table. The table is data: it is
// parsed from YAML once and never changes afterwards.
package rbac

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/guudweb/judicial-backend/internal/domain"
)

type Action string

const (
	CaseFilesCreate           Action = "case_files.create"
	CaseFilesSubmit           Action = "case_files.submit"
	CaseFilesApproveAudiencia Action = "case_files.approve_audiencia"
	CaseFilesApproveFinal     Action = "case_files.approve_final"
	CaseFilesEditAny          Action = "case_files.edit_any"
	CaseFilesDeleteAny        Action = "case_files.delete_any"
	CaseFilesViewAll          Action = "case_files.view_all"
	NewsCreate                Action = "news.create"
	NewsEditAny               Action = "news.edit_any"
	NewsApproveDirector       Action = "news.approve_director"
	NewsApprovePresident      Action = "news.approve_president"
	NewsCourtSubmission       Action = "news.court_submission"
	AuditView                 Action = "audit.view"
)

//go:embed permissions.yaml
var defaultTable []byte

type Table struct {
	roles map[Action]map[domain.Role]struct{}
}

// Parse builds a table from YAML of the form {permissions: {action: [role]}}.
// Unknown roles are rejected so a typo cannot silently lock an action.
func Parse(data []byte) (*Table, error) {
	var doc struct {
		Permissions map[Action][]domain.Role `yaml:"permissions"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse permission table: %w", err)
	}

	t := &Table{roles: make(map[Action]map[domain.Role]struct{}, len(doc.Permissions))}
	for action, roles := range doc.Permissions {
		set := make(map[domain.Role]struct{}, len(roles))
		for _, role := range roles {
			if !role.IsValid() {
				return nil, fmt.Errorf("permission %s: unknown role %q", action, role)
			}
			set[role] = struct{}{}
		}
		t.roles[action] = set
	}
	return t, nil
}

var (
	defaultOnce  sync.Once
	defaultValue *Table
)

// Default returns the table compiled into the binary.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := Parse(defaultTable)
		if err != nil {
			panic(err)
		}
		defaultValue = t
	})
	return defaultValue
}

// PermissionsFor returns the roles allowed to perform action, sorted.
func (t *Table) PermissionsFor(action Action) []domain.Role {
	set := t.roles[action]
	roles := make([]domain.Role, 0, len(set))
	for role := range set {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}

func (t *Table) Allows(role domain.Role, action Action) bool {
	_, ok := t.roles[action][role]
	return ok
}

func Allows(role domain.Role, action Action) bool {
	return Default().Allows(role, action)
}

// ActionsFor returns the actions role may perform, sorted.
func (t *Table) ActionsFor(role domain.Role) []Action {
	actions := make([]Action, 0)
	for action, set := range t.roles {
		if _, ok := set[role]; ok {
			actions = append(actions, action)
		}
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })
	return actions
}

func ActionsFor(role domain.Role) []Action {
	return Default().ActionsFor(role)
}
