package news

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
	"github.com/guudweb/judicial-backend/internal/pkg/slug"
	"github.com/guudweb/judicial-backend/internal/repository"
	"github.com/guudweb/judicial-backend/internal/service/approver"
	"github.com/guudweb/judicial-backend/internal/service/audit"
	"github.com/guudweb/judicial-backend/internal/service/dashboard"
	"github.com/guudweb/judicial-backend/internal/service/media"
	"github.com/guudweb/judicial-backend/internal/service/notification"
)

const (
	fallbackSlug = "news"
	slugAttempts = 3
)

type Service interface {
	Create(ctx context.Context, actor domain.Actor, input domain.CreateNewsInput, image *domain.FileUpload) (*domain.News, error)
	CourtSubmission(ctx context.Context, actor domain.Actor, input domain.CreateNewsInput, image *domain.FileUpload) (*domain.News, error)
	GetByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.News, error)
	GetBySlug(ctx context.Context, slug string) (*domain.News, error)
	List(ctx context.Context, actor domain.Actor, filter domain.NewsFilter, params domain.PaginationParams) (domain.Page[domain.News], error)
	ListPublished(ctx context.Context, filter domain.NewsFilter, params domain.PaginationParams) (domain.Page[domain.News], error)
	Update(ctx context.Context, actor domain.Actor, id uuid.UUID, input domain.UpdateNewsInput, image *domain.FileUpload) (*domain.News, error)
	Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error

	SubmitToDirector(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.News, error)
	ApproveByDirector(ctx context.Context, actor domain.Actor, id uuid.UUID, comments *string) (*domain.News, error)
	ApproveByPresident(ctx context.Context, actor domain.Actor, id uuid.UUID, comments *string) (*domain.News, error)
	Reject(ctx context.Context, actor domain.Actor, id uuid.UUID, comments string) (*domain.News, error)

	History(ctx context.Context, actor domain.Actor, id uuid.UUID) ([]domain.NewsTransition, error)
	Statistics(ctx context.Context) (*domain.NewsStats, error)
}

type service struct {
	tx        repository.Transactor
	newsRepo  repository.NewsRepository
	flowRepo  repository.NewsFlowRepository
	approvers approver.Resolver
	notifier  notification.Service
	auditSvc  audit.Service
	stats     dashboard.Service
	storage   media.Service
	locale    string
	now       func() time.Time
}

func NewService(
	tx repository.Transactor,
	newsRepo repository.NewsRepository,
	flowRepo repository.NewsFlowRepository,
	approvers approver.Resolver,
	notifier notification.Service,
	auditSvc audit.Service,
	stats dashboard.Service,
	storage media.Service,
	locale string,
) Service {
	return &service{
		tx:        tx,
		newsRepo:  newsRepo,
		flowRepo:  flowRepo,
		approvers: approvers,
		notifier:  notifier,
		auditSvc:  auditSvc,
		stats:     stats,
		storage:   storage,
		locale:    locale,
		now:       time.Now,
	}
}

func (s *service) Create(ctx context.Context, actor domain.Actor, input domain.CreateNewsInput, image *domain.FileUpload) (*domain.News, error) {
	if !rbac.Allows(actor.Role, rbac.NewsCreate) {
		return nil, domain.Forbidden("you cannot create news")
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	n, err := s.insert(ctx, actor, input, image, domain.NewsDraft, nil)
	if err != nil {
		return nil, err
	}

	s.auditSvc.Record(ctx, domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     domain.AuditCreate,
		EntityType: domain.EntityNews,
		EntityID:   n.ID,
		NewValues:  map[string]interface{}{"title": n.Title, "slug": n.Slug, "type": n.Type, "status": n.Status},
	})
	s.stats.Invalidate(ctx)

	return n, nil
}

// insert stores a new item with a unique slug and an optional image. When
// entry is set it is appended to the ledger in the same transaction.
func (s *service) insert(ctx context.Context, actor domain.Actor, input domain.CreateNewsInput, image *domain.FileUpload, status domain.NewsStatus, entry *domain.NewsTransition) (*domain.News, error) {
	var imageKey, imageURL *string
	if image != nil {
		key, url, err := s.putImage(ctx, *image)
		if err != nil {
			return nil, err
		}
		imageKey, imageURL = &key, &url
	}

	title := strings.TrimSpace(input.Title)
	var n *domain.News
	for attempt := 1; ; attempt++ {
		err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
			unique, err := s.uniqueSlug(ctx, title, nil)
			if err != nil {
				return err
			}

			n = &domain.News{
				ID:       uuid.New(),
				Title:    title,
				Subtitle: input.Subtitle,
				Slug:     unique,
				Content:  input.Content,
				Type:     input.Type,
				Status:   status,
				AuthorID: actor.ID,
				ImageKey: imageKey,
				ImageURL: imageURL,
				Version:  1,
			}
			if err := s.newsRepo.Create(ctx, n); err != nil {
				return err
			}

			if entry != nil {
				entry.ID = uuid.New()
				entry.NewsID = n.ID
				if err := s.flowRepo.Append(ctx, entry); err != nil {
					return fmt.Errorf("failed to append news approval flow: %w", err)
				}
			}
			return nil
		})
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrDuplicateKey) && attempt < slugAttempts {
			continue
		}

		if imageKey != nil {
			s.removeImage(ctx, *imageKey)
		}
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, domain.Conflict("could not allocate a unique slug, try again")
		}
		return nil, err
	}

	name := actor.FullName
	n.AuthorName = &name
	return n, nil
}

func (s *service) GetByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.News, error) {
	n, err := s.newsRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, domain.NotFound("news not found")
	}
	if !canView(actor, n) {
		return nil, domain.Forbidden("you cannot view this news item")
	}
	return n, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*domain.News, error) {
	n, err := s.newsRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if n == nil || n.Status != domain.NewsPublished {
		return nil, domain.NotFound("news not found")
	}
	return n, nil
}

func (s *service) List(ctx context.Context, actor domain.Actor, filter domain.NewsFilter, params domain.PaginationParams) (domain.Page[domain.News], error) {
	if !isNewsroom(actor.Role) {
		id := actor.ID
		filter.AuthorID = &id
	}
	return s.list(ctx, filter, params)
}

func (s *service) ListPublished(ctx context.Context, filter domain.NewsFilter, params domain.PaginationParams) (domain.Page[domain.News], error) {
	filter.PublishedOnly = true
	filter.Status = nil
	filter.AuthorID = nil
	return s.list(ctx, filter, params)
}

func (s *service) list(ctx context.Context, filter domain.NewsFilter, params domain.PaginationParams) (domain.Page[domain.News], error) {
	params.Normalize()

	items, total, err := s.newsRepo.List(ctx, filter, params)
	if err != nil {
		return domain.Page[domain.News]{}, err
	}
	return domain.NewPage(items, params, total), nil
}

func (s *service) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, input domain.UpdateNewsInput, image *domain.FileUpload) (*domain.News, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var newKey, newURL *string
	if image != nil {
		key, url, err := s.putImage(ctx, *image)
		if err != nil {
			return nil, err
		}
		newKey, newURL = &key, &url
	}

	var (
		before   domain.News
		staleKey *string
	)
	n, err := s.mutate(ctx, id, func(ctx context.Context, n *domain.News) (*domain.NewsTransition, error) {
		if n.Status != domain.NewsDraft {
			return nil, domain.InvalidState("only draft news can be edited")
		}
		if !canEdit(actor, n) {
			return nil, domain.Forbidden("you cannot edit this news item")
		}

		before = *n
		if input.Title != nil {
			title := strings.TrimSpace(*input.Title)
			if title != n.Title {
				unique, err := s.uniqueSlug(ctx, title, &n.ID)
				if err != nil {
					return nil, err
				}
				n.Title = title
				n.Slug = unique
			}
		}
		if input.Subtitle != nil {
			n.Subtitle = input.Subtitle
		}
		if input.Content != nil {
			n.Content = *input.Content
		}
		if input.Type != nil {
			n.Type = *input.Type
		}

		switch {
		case newKey != nil:
			staleKey = n.ImageKey
			n.ImageKey, n.ImageURL = newKey, newURL
		case input.RemoveImage:
			staleKey = n.ImageKey
			n.ImageKey, n.ImageURL = nil, nil
		}
		return nil, nil
	})
	if err != nil {
		if newKey != nil {
			s.removeImage(ctx, *newKey)
		}
		return nil, err
	}

	if staleKey != nil {
		s.removeImage(ctx, *staleKey)
	}

	s.auditSvc.Record(ctx, domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     domain.AuditUpdate,
		EntityType: domain.EntityNews,
		EntityID:   n.ID,
		OldValues:  map[string]interface{}{"title": before.Title, "slug": before.Slug, "type": before.Type},
		NewValues:  map[string]interface{}{"title": n.Title, "slug": n.Slug, "type": n.Type},
	})
	s.stats.Invalidate(ctx)

	return n, nil
}

func (s *service) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	var n *domain.News
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		n, err = s.newsRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if n == nil {
			return domain.NotFound("news not found")
		}
		if n.Status != domain.NewsDraft {
			return domain.InvalidState("only draft news can be deleted")
		}
		if !canEdit(actor, n) {
			return domain.Forbidden("you cannot delete this news item")
		}
		return s.newsRepo.Delete(ctx, n.ID)
	})
	if err != nil {
		return err
	}

	if n.ImageKey != nil {
		s.removeImage(ctx, *n.ImageKey)
	}

	s.auditSvc.Record(ctx, domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     domain.AuditDelete,
		EntityType: domain.EntityNews,
		EntityID:   n.ID,
		OldValues:  map[string]interface{}{"title": n.Title, "slug": n.Slug, "type": n.Type},
	})
	s.stats.Invalidate(ctx)

	return nil
}

func (s *service) History(ctx context.Context, actor domain.Actor, id uuid.UUID) ([]domain.NewsTransition, error) {
	n, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	history, err := s.flowRepo.ListByNews(ctx, n.ID)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []domain.NewsTransition{}
	}
	return history, nil
}

func (s *service) Statistics(ctx context.Context) (*domain.NewsStats, error) {
	return s.stats.NewsStats(ctx)
}

// mutate runs fn on a locked copy of the item and saves it against the
// version the request first observed, appending the transition fn returns,
// if any. A write committed by another request in between is a Conflict.
func (s *service) mutate(ctx context.Context, id uuid.UUID, fn func(ctx context.Context, n *domain.News) (*domain.NewsTransition, error)) (*domain.News, error) {
	seen, err := s.newsRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if seen == nil {
		return nil, domain.NotFound("news not found")
	}

	var n *domain.News
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		loaded, err := s.newsRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if loaded == nil {
			return domain.NotFound("news not found")
		}

		version := loaded.Version
		if version != seen.Version {
			return domain.Conflict("news item was modified by another request")
		}
		entry, err := fn(ctx, loaded)
		if err != nil {
			return err
		}

		if err := s.newsRepo.Save(ctx, loaded, version); err != nil {
			if errors.Is(err, repository.ErrStaleVersion) {
				return domain.Conflict("news item was modified by another request")
			}
			if errors.Is(err, repository.ErrDuplicateKey) {
				return domain.Conflict("slug %q is already taken", loaded.Slug)
			}
			return fmt.Errorf("failed to save news: %w", err)
		}

		if entry != nil {
			entry.ID = uuid.New()
			entry.NewsID = loaded.ID
			if err := s.flowRepo.Append(ctx, entry); err != nil {
				return fmt.Errorf("failed to append news approval flow: %w", err)
			}
		}

		n = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (s *service) uniqueSlug(ctx context.Context, title string, excludeID *uuid.UUID) (string, error) {
	base := slug.Make(title)
	if base == "" {
		base = fallbackSlug
	}
	return slug.Unique(ctx, base, func(ctx context.Context, candidate string) (bool, error) {
		return s.newsRepo.SlugExists(ctx, candidate, excludeID)
	})
}

func (s *service) putImage(ctx context.Context, image domain.FileUpload) (string, string, error) {
	key, err := s.storage.Put(ctx, media.NewsPrefix, image)
	if err != nil {
		return "", "", err
	}
	url, err := s.storage.URL(ctx, key)
	if err != nil {
		s.removeImage(ctx, key)
		return "", "", err
	}
	return key, url, nil
}

func (s *service) removeImage(ctx context.Context, key string) {
	if err := s.storage.Remove(ctx, key); err != nil {
		log.Printf("failed to remove news image %s: %v", key, err)
	}
}

func isNewsroom(role domain.Role) bool {
	switch role {
	case domain.RoleAdmin, domain.RolePressDirector, domain.RolePressTechnician, domain.RoleCouncilPresident:
		return true
	default:
		return false
	}
}

func canView(actor domain.Actor, n *domain.News) bool {
	return n.Status == domain.NewsPublished || n.AuthorID == actor.ID || isNewsroom(actor.Role)
}

func canEdit(actor domain.Actor, n *domain.News) bool {
	return n.AuthorID == actor.ID || rbac.Allows(actor.Role, rbac.NewsEditAny)
}
