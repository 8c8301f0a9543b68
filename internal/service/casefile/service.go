package casefile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/guudweb/judicial-backend/internal/domain"
	"github.com/guudweb/judicial-backend/internal/pkg/rbac"
	"github.com/guudweb/judicial-backend/internal/repository"
	"github.com/guudweb/judicial-backend/internal/service/approver"
	"github.com/guudweb/judicial-backend/internal/service/audit"
	"github.com/guudweb/judicial-backend/internal/service/dashboard"
	"github.com/guudweb/judicial-backend/internal/service/media"
	"github.com/guudweb/judicial-backend/internal/service/notification"
)

const createAttempts = 3

type Service interface {
	Create(ctx context.Context, actor domain.Actor, input domain.CreateCaseFileInput) (*domain.CaseFile, error)
	GetByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.CaseFile, error)
	List(ctx context.Context, actor domain.Actor, filter domain.CaseFileFilter, params domain.PaginationParams) (domain.Page[domain.CaseFile], error)
	Update(ctx context.Context, actor domain.Actor, id uuid.UUID, input domain.UpdateCaseFileInput) (*domain.CaseFile, error)
	Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error

	Submit(ctx context.Context, actor domain.Actor, id uuid.UUID, comments *string) (*domain.CaseFile, error)
	Approve(ctx context.Context, actor domain.Actor, id uuid.UUID, comments *string) (*domain.CaseFile, error)
	Reject(ctx context.Context, actor domain.Actor, id uuid.UUID, comments string) (*domain.CaseFile, error)
	Return(ctx context.Context, actor domain.Actor, id uuid.UUID, comments string) (*domain.CaseFile, error)

	History(ctx context.Context, actor domain.Actor, id uuid.UUID) ([]domain.CaseFileTransition, error)
	Statistics(ctx context.Context, actor domain.Actor) (*domain.CaseFileStats, error)

	AddDocument(ctx context.Context, actor domain.Actor, id uuid.UUID, file domain.FileUpload) (*domain.Document, error)
	ListDocuments(ctx context.Context, actor domain.Actor, id uuid.UUID) ([]domain.Document, error)
	RemoveDocument(ctx context.Context, actor domain.Actor, id, documentID uuid.UUID) error
}

type service struct {
	tx           repository.Transactor
	caseFileRepo repository.CaseFileRepository
	flowRepo     repository.CaseFileFlowRepository
	documentRepo repository.DocumentRepository
	approvers    approver.Resolver
	notifier     notification.Service
	auditSvc     audit.Service
	stats        dashboard.Service
	storage      media.Service
	locale       string
	now          func() time.Time
}

func NewService(
	tx repository.Transactor,
	caseFileRepo repository.CaseFileRepository,
	flowRepo repository.CaseFileFlowRepository,
	documentRepo repository.DocumentRepository,
	approvers approver.Resolver,
	notifier notification.Service,
	auditSvc audit.Service,
	stats dashboard.Service,
	storage media.Service,
	locale string,
) Service {
	return &service{
		tx:           tx,
		caseFileRepo: caseFileRepo,
		flowRepo:     flowRepo,
		documentRepo: documentRepo,
		approvers:    approvers,
		notifier:     notifier,
		auditSvc:     auditSvc,
		stats:        stats,
		storage:      storage,
		locale:       locale,
		now:          time.Now,
	}
}

func (s *service) Create(ctx context.Context, actor domain.Actor, input domain.CreateCaseFileInput) (*domain.CaseFile, error) {
	if !rbac.Allows(actor.Role, rbac.CaseFilesCreate) {
		return nil, domain.Forbidden("only judges can create case files")
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	departmentID := input.DepartmentID
	if departmentID == nil {
		departmentID = actor.DepartmentID
	}
	if departmentID == nil {
		return nil, domain.ValidationFailed("department_id is required")
	}

	year := s.now().Year()
	assignee := actor.ID

	var cf *domain.CaseFile
	for attempt := 1; ; attempt++ {
		err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
			seq, err := s.caseFileRepo.NextSequence(ctx, year)
			if err != nil {
				return fmt.Errorf("failed to reserve case number: %w", err)
			}

			cf = &domain.CaseFile{
				ID:           uuid.New(),
				CaseNumber:   domain.FormatCaseNumber(year, seq),
				Title:        strings.TrimSpace(input.Title),
				Description:  input.Description,
				Status:       domain.CaseFileDraft,
				CurrentLevel: domain.LevelJudge,
				DepartmentID: *departmentID,
				CreatedBy:    actor.ID,
				AssignedTo:   &assignee,
				Version:      1,
			}
			return s.caseFileRepo.Create(ctx, cf)
		})
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrDuplicateKey) && attempt < createAttempts {
			log.Printf("case number collision for year %d, retrying (attempt %d)", year, attempt)
			continue
		}
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, domain.Conflict("could not allocate a case number, try again")
		}
		return nil, err
	}

	s.auditSvc.Record(ctx, domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     domain.AuditCreate,
		EntityType: domain.EntityCaseFile,
		EntityID:   cf.ID,
		NewValues:  cf,
	})
	s.stats.Invalidate(ctx)

	return cf, nil
}

func (s *service) GetByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.CaseFile, error) {
	cf, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	docs, err := s.documentRepo.ListByCaseFile(ctx, cf.ID)
	if err != nil {
		return nil, err
	}
	cf.Documents = s.withURLs(ctx, docs)

	return cf, nil
}

func (s *service) List(ctx context.Context, actor domain.Actor, filter domain.CaseFileFilter, params domain.PaginationParams) (domain.Page[domain.CaseFile], error) {
	params.Normalize()

	scope := scopeFor(actor)
	filter.ScopeDepartmentID = scope.ScopeDepartmentID
	filter.ScopeUserID = scope.ScopeUserID

	files, total, err := s.caseFileRepo.List(ctx, filter, params)
	if err != nil {
		return domain.Page[domain.CaseFile]{}, err
	}
	return domain.NewPage(files, params, total), nil
}

func (s *service) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, input domain.UpdateCaseFileInput) (*domain.CaseFile, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var before domain.CaseFile
	cf, err := s.mutate(ctx, id, func(ctx context.Context, cf *domain.CaseFile) (*domain.CaseFileTransition, error) {
		if !cf.IsEditable() {
			return nil, domain.InvalidState("case file %s can only be edited in draft or rejected status", cf.CaseNumber)
		}
		if !canEdit(actor, cf) {
			return nil, domain.Forbidden("you cannot edit this case file")
		}

		before = *cf
		if input.Title != nil {
			cf.Title = strings.TrimSpace(*input.Title)
		}
		if input.Description != nil {
			cf.Description = input.Description
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Record(ctx, domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     domain.AuditUpdate,
		EntityType: domain.EntityCaseFile,
		EntityID:   cf.ID,
		OldValues:  map[string]interface{}{"title": before.Title, "description": before.Description},
		NewValues:  map[string]interface{}{"title": cf.Title, "description": cf.Description},
	})

	return cf, nil
}

func (s *service) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	var (
		cf   *domain.CaseFile
		docs []domain.Document
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		cf, err = s.caseFileRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if cf == nil {
			return domain.NotFound("case file not found")
		}
		if cf.Status != domain.CaseFileDraft || cf.AwaitingReview() {
			return domain.InvalidState("only draft case files can be deleted")
		}
		if cf.CreatedBy != actor.ID && !rbac.Allows(actor.Role, rbac.CaseFilesDeleteAny) {
			return domain.Forbidden("you cannot delete this case file")
		}

		if docs, err = s.documentRepo.ListByCaseFile(ctx, cf.ID); err != nil {
			return err
		}
		return s.caseFileRepo.Delete(ctx, cf.ID)
	})
	if err != nil {
		return err
	}

	for _, doc := range docs {
		if err := s.storage.Remove(ctx, doc.StorageKey); err != nil {
			log.Printf("failed to remove document %s of deleted case file %s: %v", doc.ID, cf.ID, err)
		}
	}

	s.auditSvc.Record(ctx, domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     domain.AuditDelete,
		EntityType: domain.EntityCaseFile,
		EntityID:   cf.ID,
		OldValues:  cf,
	})
	s.stats.Invalidate(ctx)

	return nil
}

func (s *service) History(ctx context.Context, actor domain.Actor, id uuid.UUID) ([]domain.CaseFileTransition, error) {
	cf, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	history, err := s.flowRepo.ListByCaseFile(ctx, cf.ID)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []domain.CaseFileTransition{}
	}
	return history, nil
}

func (s *service) Statistics(ctx context.Context, actor domain.Actor) (*domain.CaseFileStats, error) {
	return s.stats.CaseFileStats(ctx, actor.ID, scopeFor(actor))
}

// load fetches a case file the actor is allowed to see.
func (s *service) load(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.CaseFile, error) {
	cf, err := s.caseFileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cf == nil {
		return nil, domain.NotFound("case file not found")
	}
	if !canView(actor, cf) {
		return nil, domain.Forbidden("you cannot view this case file")
	}
	return cf, nil
}

// mutate runs fn on a locked copy of the case file and saves the result
// against the version the request first observed. If another request
// committed in between, the call fails with Conflict before fn runs. A
// non-nil transition returned by fn is appended to the ledger in the same
// transaction.
func (s *service) mutate(ctx context.Context, id uuid.UUID, fn func(ctx context.Context, cf *domain.CaseFile) (*domain.CaseFileTransition, error)) (*domain.CaseFile, error) {
	seen, err := s.caseFileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if seen == nil {
		return nil, domain.NotFound("case file not found")
	}

	var cf *domain.CaseFile
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		loaded, err := s.caseFileRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if loaded == nil {
			return domain.NotFound("case file not found")
		}

		version := loaded.Version
		if version != seen.Version {
			return domain.Conflict("case file %s was modified by another request", loaded.CaseNumber)
		}
		entry, err := fn(ctx, loaded)
		if err != nil {
			return err
		}

		if err := s.caseFileRepo.Save(ctx, loaded, version); err != nil {
			if errors.Is(err, repository.ErrStaleVersion) {
				return domain.Conflict("case file %s was modified by another request", loaded.CaseNumber)
			}
			return fmt.Errorf("failed to save case file: %w", err)
		}

		if entry != nil {
			entry.ID = uuid.New()
			entry.CaseFileID = loaded.ID
			if err := s.flowRepo.Append(ctx, entry); err != nil {
				return fmt.Errorf("failed to append approval flow: %w", err)
			}
		}

		cf = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cf, nil
}

func scopeFor(actor domain.Actor) domain.CaseFileFilter {
	if rbac.Allows(actor.Role, rbac.CaseFilesViewAll) {
		return domain.CaseFileFilter{}
	}
	if actor.Role == domain.RoleAppealsPresident && actor.DepartmentID != nil {
		return domain.CaseFileFilter{ScopeDepartmentID: actor.DepartmentID}
	}
	id := actor.ID
	return domain.CaseFileFilter{ScopeUserID: &id}
}

func canView(actor domain.Actor, cf *domain.CaseFile) bool {
	if rbac.Allows(actor.Role, rbac.CaseFilesViewAll) {
		return true
	}
	if cf.CreatedBy == actor.ID || cf.IsAssignedTo(actor.ID) {
		return true
	}
	return actor.Role == domain.RoleAppealsPresident && actor.DepartmentID != nil && *actor.DepartmentID == cf.DepartmentID
}

func canEdit(actor domain.Actor, cf *domain.CaseFile) bool {
	return cf.CreatedBy == actor.ID || cf.IsAssignedTo(actor.ID) || rbac.Allows(actor.Role, rbac.CaseFilesEditAny)
}
